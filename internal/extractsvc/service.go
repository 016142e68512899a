// Package extractsvc wires the Scan Orchestrator, Crossover Resolver,
// and Flight Reconstructor (C7-C9) into the on-demand extraction path:
// given a callsign and a requested date, it resolves the actual date
// span, pulls every matching record, picks the leg covering the
// requested date, and writes the export bundle.
package extractsvc

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/marcoculver/adsb-logger/pkg/archive"
	"github.com/marcoculver/adsb-logger/pkg/flight"
	"github.com/marcoculver/adsb-logger/pkg/scan"
)

// Service runs extractions against an archive store.
type Service struct {
	store           *archive.Store
	crossoverCfg    flight.CrossoverConfig
	gapThresholdSec int64
}

// New builds a Service reading segments under archiveDir.
func New(archiveDir string) *Service {
	return &Service{
		store:           archive.NewStore(archiveDir),
		crossoverCfg:    flight.DefaultCrossoverConfig(),
		gapThresholdSec: flight.DefaultGapThresholdSeconds,
	}
}

// Result is one extraction's outcome.
type Result struct {
	Bundle      flight.ExportBundle
	ActualStart time.Time
	ActualEnd   time.Time
	Detected    bool
	SourceFiles []string
}

// ListCallsigns runs the Scan Orchestrator's callsign discovery (the
// `list <date>` CLI command) over every segment for date.
func (s *Service) ListCallsigns(date time.Time) (map[string]struct{}, error) {
	files, err := s.store.SegmentsForDate(date)
	if err != nil {
		return nil, fmt.Errorf("resolve segments: %w", err)
	}
	return scan.GetUniqueCallsigns(files, nil), nil
}

// Extract runs C7+C8+C9 for callsign around requestedDate. When
// useCrossover is false, the resolver step is skipped and only
// requestedDate's own segments are scanned (the `--no-crossover` CLI
// flag).
func (s *Service) Extract(callsign string, requestedDate time.Time, useCrossover bool) (Result, error) {
	requestedDate = truncateToDate(requestedDate)

	start, end := requestedDate, requestedDate
	detected := false

	if useCrossover {
		resolver := flight.NewResolver(s.store, s.crossoverCfg)
		resolved, err := resolver.Resolve(callsign, requestedDate)
		if err != nil {
			return Result{}, fmt.Errorf("resolve crossover: %w", err)
		}
		start, end = resolved.ActualStart, resolved.ActualEnd
		detected = resolved.Detected(requestedDate)
	}

	var allFiles []string
	seen := make(map[string]struct{})
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		files, err := s.store.SegmentsForDate(d)
		if err != nil {
			return Result{}, fmt.Errorf("resolve segments for %s: %w", d.Format("2006-01-02"), err)
		}
		for _, f := range files {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			allFiles = append(allFiles, f)
		}
	}
	sort.Strings(allFiles)

	records := scan.ExtractFlight(allFiles, callsign, "", nil)
	// Keep only the leg covering requestedDate: the first hex/gap split
	// run with a record on, or spanning, that UTC day.
	dayStart, dayEnd := requestedDate.Unix(), requestedDate.AddDate(0, 0, 1).Unix()
	for _, leg := range flight.Split(records, s.gapThresholdSec) {
		if leg[len(leg)-1].TS >= dayStart && leg[0].TS < dayEnd {
			records = leg
			break
		}
	}
	metadata := flight.ComputeMetadata(records)

	bundle := flight.ExportBundle{
		Callsign:          callsign,
		Metadata:          metadata,
		Records:           records,
		ActualStartDate:   start.Format("2006-01-02"),
		ActualEndDate:     end.Format("2006-01-02"),
		CrossoverDetected: detected,
		SourceFiles:       allFiles,
	}

	return Result{
		Bundle:      bundle,
		ActualStart: start,
		ActualEnd:   end,
		Detected:    detected,
		SourceFiles: allFiles,
	}, nil
}

// WriteOutput writes the extraction's export bundle under
// <outdir>/YYYYMMDD_CALLSIGN/, stamping ExtractedAt to now.
func (r Result) WriteOutput(outdir, callsign string, now time.Time) (string, error) {
	dir := filepath.Join(outdir, fmt.Sprintf("%s_%s", r.ActualStart.Format("20060102"), callsign))
	r.Bundle.ExtractedAt = now.UTC().Format("2006-01-02T15:04:05Z")
	if err := r.Bundle.WriteAll(dir); err != nil {
		return "", err
	}
	return dir, nil
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
