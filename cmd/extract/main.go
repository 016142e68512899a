// Command extract reconstructs one callsign's flight for a given date
// and writes metadata.json, summary.txt, flight_data.csv, and
// flight_path.kml under <export-dir>/YYYYMMDD_CALLSIGN/ (--outdir names
// the archive directory to read).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/marcoculver/adsb-logger/internal/config"
	"github.com/marcoculver/adsb-logger/internal/extractsvc"
)

const (
	exitOK    = 0
	exitError = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to configuration file")
	outdir := flag.String("outdir", "", "Archive directory (overrides config)")
	exportDir := flag.String("export-dir", "./extracted", "Directory to write extraction outputs into")
	noCrossover := flag.Bool("no-crossover", false, "Disable midnight-crossover resolution")
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: extract <callsign> <date:YYYY-MM-DD> [--no-crossover]")
		return exitError
	}
	callsign, dateArg := args[0], args[1]

	date, err := time.Parse("2006-01-02", dateArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid date %q: %v\n", dateArg, err)
		return exitError
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("✗ Failed to load configuration: %v", err)
		return exitError
	}
	if *outdir != "" {
		cfg.Archive.OutDir = *outdir
	}

	svc := extractsvc.New(cfg.Archive.OutDir)
	result, err := svc.Extract(callsign, date, !*noCrossover)
	if err != nil {
		log.Printf("✗ Extraction failed: %v", err)
		return exitError
	}

	if len(result.Bundle.Records) == 0 {
		log.Printf("ℹ No records found for %s on %s", callsign, dateArg)
		return exitOK
	}

	written, err := result.WriteOutput(*exportDir, callsign, time.Now().UTC())
	if err != nil {
		log.Printf("✗ Failed to write extraction output: %v", err)
		return exitError
	}

	log.Printf("✓ Extracted %d records for %s (%s .. %s) into %s",
		len(result.Bundle.Records), callsign, result.ActualStart.Format("2006-01-02"), result.ActualEnd.Format("2006-01-02"), written)
	if result.Detected {
		log.Printf("ℹ Crossover detected: actual span %s .. %s", result.ActualStart.Format("2006-01-02"), result.ActualEnd.Format("2006-01-02"))
	}
	return exitOK
}
