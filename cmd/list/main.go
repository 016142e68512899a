// Command list prints the distinct callsigns observed on a given date.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/marcoculver/adsb-logger/internal/config"
	"github.com/marcoculver/adsb-logger/internal/extractsvc"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	outdir := flag.String("outdir", "", "Archive directory (overrides config)")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: list <date:YYYY-MM-DD>")
		os.Exit(1)
	}

	date, err := time.Parse("2006-01-02", args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid date %q: %v\n", args[0], err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *outdir != "" {
		cfg.Archive.OutDir = *outdir
	}

	svc := extractsvc.New(cfg.Archive.OutDir)
	callsigns, err := svc.ListCallsigns(date)
	if err != nil {
		log.Fatalf("✗ Failed to list callsigns: %v", err)
	}

	names := make([]string, 0, len(callsigns))
	for c := range callsigns {
		names = append(names, c)
	}
	sort.Strings(names)

	for _, c := range names {
		fmt.Println(c)
	}
	log.Printf("ℹ %d unique callsign(s) on %s", len(names), args[0])
}
