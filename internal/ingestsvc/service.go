// Package ingestsvc wires the Pacer, Snapshot Fetcher, Record Projector,
// and Segment Writer into the ingest loop (C1-C5), with escalating
// failure logging per spec and an optional live feed into the callsign
// registry (C10), grounded in the original's monitor.py tailing mode.
package ingestsvc

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/marcoculver/adsb-logger/internal/apperr"
	"github.com/marcoculver/adsb-logger/internal/registry"
	"github.com/marcoculver/adsb-logger/pkg/archive"
	"github.com/marcoculver/adsb-logger/pkg/clock"
	"github.com/marcoculver/adsb-logger/pkg/record"
	"github.com/marcoculver/adsb-logger/pkg/snapshot"
)

// Config configures a Service.
type Config struct {
	URL         string
	Timeout     time.Duration
	Tick        time.Duration
	ArchiveDir  string
	FsyncEvery  time.Duration

	// Registry, if non-nil, is fed inline from every tick's projected
	// records -- the live-tail mode from the original's monitor.py,
	// as opposed to a later historical batch traversal via C7.
	Registry *registry.Store
}

// Service runs the ingest loop described by spec.md §2/§3: poll, project,
// persist, on a fixed cadence.
type Service struct {
	cfg     Config
	fetcher *snapshot.Fetcher
	pacer   *clock.Pacer
	writer  *archive.Writer

	pollIdx int64

	// consecutiveFailures drives the escalating-log disposition from
	// spec.md §4.2: warn on the first failure, error at the 10th, then
	// a throttled error every 60th thereafter.
	consecutiveFailures int
}

// New constructs a Service. The archive writer's directory is created
// (and any crash state recovered) immediately.
func New(cfg Config) (*Service, error) {
	writer, err := archive.NewWriter(cfg.ArchiveDir, cfg.FsyncEvery)
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:     cfg,
		fetcher: snapshot.NewFetcher(cfg.Timeout),
		pacer:   clock.NewPacer(cfg.Tick),
		writer:  writer,
	}, nil
}

// Close finalizes the currently active segment.
func (s *Service) Close() error {
	return s.writer.Close()
}

// Run drives the ingest loop until ctx is canceled or the pacer's body
// returns a fatal error. Transient fetch/projection/write failures are
// logged and the loop continues -- only ctx cancellation stops it
// cleanly.
func (s *Service) Run(ctx context.Context) error {
	err := s.pacer.Run(ctx, s.tick)
	if err == context.Canceled || err == context.DeadlineExceeded {
		return nil
	}
	return err
}

func (s *Service) tick(ctx context.Context) error {
	now := time.Now().UTC()

	snap, err := s.fetcher.Fetch(ctx, s.cfg.URL)
	if err != nil {
		s.logFailure(err)
		return nil
	}
	s.consecutiveFailures = 0

	s.pollIdx++
	base := record.NewFromTick(now, s.pollIdx)

	written := 0
	for _, entry := range snap.Aircraft {
		rec, ok := record.Project(entry, base)
		if !ok {
			continue
		}

		line, err := json.Marshal(rec)
		if err != nil {
			log.Printf("✗ marshal record for hex=%s: %v", rec.Hex(), err)
			continue
		}
		if err := s.writer.Tick(now, line); err != nil {
			log.Printf("✗ write record for hex=%s: %v", rec.Hex(), err)
			continue
		}
		written++

		if s.cfg.Registry != nil {
			s.feedRegistry(rec, now)
		}
	}

	log.Printf("ℹ poll #%d: %d aircraft, %d records written", s.pollIdx, len(snap.Aircraft), written)
	return nil
}

func (s *Service) feedRegistry(rec record.Record, now time.Time) {
	flight := rec.Flight()
	if flight == "" {
		return
	}
	fields := registry.CallsignFields{Hex: rec.Hex()}
	if reg, ok := rec.Registration(); ok {
		fields.Registration = reg
	}
	if t, ok := rec.AircraftType(); ok {
		fields.AircraftType = t
	}
	if _, err := s.cfg.Registry.Upsert(flight, "", fields, now); err != nil {
		log.Printf("✗ registry upsert for flight=%s: %v", flight, err)
		return
	}
	if err := s.cfg.Registry.AddSighting(flight, rec.Hex(), now); err != nil {
		log.Printf("✗ registry sighting for flight=%s: %v", flight, err)
	}
}

// logFailure implements spec.md §4.2's escalating disposition: warn on
// the first consecutive failure, error at the 10th, then a throttled
// error every 60th thereafter.
func (s *Service) logFailure(err error) {
	s.consecutiveFailures++
	kind := apperr.KindOf(err)

	switch {
	case s.consecutiveFailures == 1:
		log.Printf("⚠ snapshot fetch failed (kind=%s): %v", kind, err)
	case s.consecutiveFailures == 10:
		log.Printf("✗ snapshot fetch failed %d times consecutively (kind=%s): %v", s.consecutiveFailures, kind, err)
	case s.consecutiveFailures > 10 && s.consecutiveFailures%60 == 0:
		log.Printf("✗ snapshot fetch still failing after %d consecutive attempts (kind=%s): %v", s.consecutiveFailures, kind, err)
	}
}
