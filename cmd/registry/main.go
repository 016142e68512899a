// Command registry inspects and exports the callsign registry: overall
// statistics, per-callsign sighting schedules, and a CSV export.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/marcoculver/adsb-logger/internal/config"
	"github.com/marcoculver/adsb-logger/internal/registry"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	dbPath := flag.String("db", "", "Registry database path (overrides config)")
	statsFlag := flag.Bool("stats", false, "Print summary statistics")
	exportCSV := flag.String("export-csv", "", "Export all callsigns to this CSV path")
	airlineFilter := flag.String("airline", "", "Restrict export/stats to this airline")
	scheduleFor := flag.String("schedule", "", "Print the sighting-frequency schedule for this callsign")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *dbPath != "" {
		cfg.Registry.Path = *dbPath
	}

	store, err := registry.Open(cfg.Registry.Path)
	if err != nil {
		log.Fatalf("✗ Failed to open registry: %v", err)
	}
	defer store.Close()

	ranAction := false

	if *statsFlag {
		ranAction = true
		stats, err := store.Stats()
		if err != nil {
			log.Fatalf("✗ Stats failed: %v", err)
		}
		fmt.Printf("Total callsigns: %d\n", stats.TotalCallsigns)
		fmt.Println("By airline:")
		for _, a := range stats.ByAirline {
			fmt.Printf("  %-20s %d\n", a.Airline, a.Count)
		}
		fmt.Println("Top 10 by sightings:")
		for _, c := range stats.Top10 {
			fmt.Printf("  %-10s %-20s %d sightings\n", c.Callsign, c.Airline, c.SightingCount)
		}
	}

	if *exportCSV != "" {
		ranAction = true
		if err := store.ExportCSV(*exportCSV, *airlineFilter); err != nil {
			log.Fatalf("✗ Export failed: %v", err)
		}
		log.Printf("✓ Exported registry to %s", *exportCSV)
	}

	if *scheduleFor != "" {
		ranAction = true
		sched, err := store.GetSchedule(*scheduleFor)
		if err != nil {
			log.Fatalf("✗ Schedule lookup failed: %v", err)
		}
		printSchedule(sched)
	}

	if !ranAction {
		fmt.Fprintln(os.Stderr, "usage: registry [--stats] [--export-csv path] [--schedule callsign] [--airline name]")
		os.Exit(1)
	}
}

func printSchedule(sched registry.Schedule) {
	days := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	fmt.Printf("Schedule for %s (%d total sightings):\n", sched.Callsign, sched.Total)
	for d := 0; d < 7; d++ {
		fmt.Printf("  %s: ", days[d])
		for h := 0; h < 24; h++ {
			if sched.Counts[d][h] > 0 {
				fmt.Printf("%02d:00=%d ", h, sched.Counts[d][h])
			}
		}
		fmt.Println()
	}
}
