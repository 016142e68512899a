// Command prune deletes archive segments older than a retention window.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/marcoculver/adsb-logger/internal/config"
	"github.com/marcoculver/adsb-logger/pkg/archive"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	outdir := flag.String("outdir", "", "Archive directory (overrides config)")
	keepDays := flag.Int("keep-days", 0, "Retention window in days (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *outdir != "" {
		cfg.Archive.OutDir = *outdir
	}
	if *keepDays > 0 {
		cfg.Archive.KeepDays = *keepDays
	}

	log.Printf("Pruning %s, keeping %d days", cfg.Archive.OutDir, cfg.Archive.KeepDays)

	store := archive.NewStore(cfg.Archive.OutDir)
	deleted, err := store.Prune(cfg.Archive.KeepDays, time.Now().UTC())
	if err != nil {
		log.Fatalf("✗ Prune failed: %v", err)
	}

	if len(deleted) == 0 {
		log.Println("ℹ No segments older than the retention window")
		return
	}
	for _, f := range deleted {
		log.Printf("✓ Deleted %s", f)
	}
	log.Printf("✓ Pruned %d segment(s)", len(deleted))
}
