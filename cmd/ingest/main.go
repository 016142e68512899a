// Command ingest runs the ADS-B ingest loop: poll the upstream decoder's
// aircraft.json, project recognized fields, and append them to the
// hour-segmented archive.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marcoculver/adsb-logger/internal/config"
	"github.com/marcoculver/adsb-logger/internal/ingestsvc"
	"github.com/marcoculver/adsb-logger/internal/registry"
	"github.com/marcoculver/adsb-logger/pkg/archive"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (defaults are used if omitted)")
	url := flag.String("url", "", "Aircraft state URL (overrides config)")
	outdir := flag.String("outdir", "", "Archive output directory (overrides config)")
	tick := flag.Float64("tick", 0, "Poll period in seconds (overrides config)")
	timeout := flag.Float64("timeout", 0, "Per-request timeout in seconds (overrides config)")
	fsyncEvery := flag.Float64("fsync-every", 0, "Fsync interval in seconds (overrides config)")
	liveRegistry := flag.Bool("live-registry", false, "Feed the callsign registry inline from the ingest stream")
	quiet := flag.Bool("quiet", false, "Suppress the startup banner")
	flag.Parse()

	if !*quiet {
		log.Println("===========================================")
		log.Println("  ADS-B Archive Ingest Service")
		log.Println("===========================================")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *url != "" {
		cfg.Snapshot.URL = *url
	}
	if *outdir != "" {
		cfg.Archive.OutDir = *outdir
	}
	if *tick > 0 {
		cfg.Snapshot.TickSeconds = *tick
	}
	if *timeout > 0 {
		cfg.Snapshot.TimeoutSeconds = *timeout
	}
	if *fsyncEvery > 0 {
		cfg.Archive.FsyncEverySeconds = *fsyncEvery
	}

	log.Printf("Snapshot URL: %s", cfg.Snapshot.URL)
	log.Printf("Archive directory: %s", cfg.Archive.OutDir)
	log.Printf("Poll period: %.1fs, timeout: %.1fs, fsync every: %.1fs",
		cfg.Snapshot.TickSeconds, cfg.Snapshot.TimeoutSeconds, cfg.Archive.FsyncEverySeconds)

	release, err := lockArchive(cfg.Archive.OutDir)
	if err != nil {
		log.Fatalf("Failed to acquire archive lock: %v", err)
	}
	defer release()

	var reg *registry.Store
	if *liveRegistry {
		reg, err = registry.Open(cfg.Registry.Path)
		if err != nil {
			log.Fatalf("Failed to open registry: %v", err)
		}
		defer reg.Close()
		log.Printf("✓ Live-tailing into registry: %s", cfg.Registry.Path)
	}

	svc, err := ingestsvc.New(ingestsvc.Config{
		URL:        cfg.Snapshot.URL,
		Timeout:    time.Duration(cfg.Snapshot.TimeoutSeconds * float64(time.Second)),
		Tick:       time.Duration(cfg.Snapshot.TickSeconds * float64(time.Second)),
		ArchiveDir: cfg.Archive.OutDir,
		FsyncEvery: time.Duration(cfg.Archive.FsyncEverySeconds * float64(time.Second)),
		Registry:   reg,
	})
	if err != nil {
		log.Fatalf("Failed to initialize ingest service: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	doneChan := make(chan error, 1)
	go func() {
		doneChan <- svc.Run(ctx)
	}()

	log.Println("✓ Ingest service started. Press Ctrl+C to stop.")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		cancel()
		<-doneChan
	case err := <-doneChan:
		if err != nil {
			log.Printf("✗ Ingest loop exited with error: %v", err)
		}
	}

	log.Println("Shutting down gracefully...")
	if err := svc.Close(); err != nil {
		log.Printf("✗ Error finalizing archive: %v", err)
	}
	log.Println("✓ Ingest service stopped")
}

func lockArchive(dir string) (func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return archive.AcquireLock(dir)
}
