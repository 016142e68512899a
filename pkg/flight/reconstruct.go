// Package flight reconstructs individual flight legs out of a
// timestamp-sorted record list: splitting on hex/gap boundaries,
// computing per-leg metadata, detecting UTC midnight crossovers, running
// descent analytics, and exporting the result in the formats downstream
// tooling consumes.
package flight

import (
	"time"

	"github.com/marcoculver/adsb-logger/pkg/geo"
	"github.com/marcoculver/adsb-logger/pkg/record"
)

// DefaultGapThresholdSeconds is the maximum allowed gap, in seconds,
// between consecutive records of the same flight before they're
// considered separate legs.
const DefaultGapThresholdSeconds = 300

// SameFlight reports whether r2 continues r1's flight: equal
// lowercased-trimmed hex and a time gap no larger than gapThreshold.
// Position continuity is intentionally out of scope.
func SameFlight(r1, r2 record.Record, gapThresholdSeconds int64) bool {
	if r1.Hex() != r2.Hex() {
		return false
	}
	gap := r2.TS - r1.TS
	if gap < 0 {
		gap = -gap
	}
	return gap <= gapThresholdSeconds
}

// Split partitions a timestamp-sorted record list into maximal runs
// where SameFlight holds on every consecutive pair. Concatenating the
// result yields the original list.
func Split(recs []record.Record, gapThresholdSeconds int64) [][]record.Record {
	if len(recs) == 0 {
		return nil
	}
	var runs [][]record.Record
	cur := []record.Record{recs[0]}
	for i := 1; i < len(recs); i++ {
		if SameFlight(recs[i-1], recs[i], gapThresholdSeconds) {
			cur = append(cur, recs[i])
		} else {
			runs = append(runs, cur)
			cur = []record.Record{recs[i]}
		}
	}
	runs = append(runs, cur)
	return runs
}

// Position is a timestamped geographic fix pulled out of a run.
type Position struct {
	TS int64
	Pt geo.Point
}

// Metadata summarizes one reconstructed flight leg.
type Metadata struct {
	Hex      string
	Reg      string // r
	Type     string // t
	Operator string // ownOp

	FirstSeen int64
	LastSeen  int64

	FirstPosition *Position
	LastPosition  *Position

	MaxAltitudeFt    *float64
	MinAltitudeFt    *float64
	MaxGroundSpeedKt *float64

	DurationMinutes float64
	PointCount      int
}

// ComputeMetadata summarizes a single run (as produced by Split).
func ComputeMetadata(run []record.Record) Metadata {
	if len(run) == 0 {
		return Metadata{}
	}

	m := Metadata{
		FirstSeen:  run[0].TS,
		LastSeen:   run[len(run)-1].TS,
		PointCount: len(run),
	}
	m.DurationMinutes = float64(m.LastSeen-m.FirstSeen) / 60.0

	for _, r := range run {
		if m.Hex == "" {
			if h := r.Hex(); h != "" {
				m.Hex = h
			}
		}
		if m.Reg == "" {
			if v, ok := r.Registration(); ok {
				m.Reg = v
			}
		}
		if m.Type == "" {
			if v, ok := r.AircraftType(); ok {
				m.Type = v
			}
		}
		if m.Operator == "" {
			if v, ok := r.Operator(); ok {
				m.Operator = v
			}
		}

		if lat, okLat := r.Lat(); okLat {
			if lon, okLon := r.Lon(); okLon {
				pos := &Position{TS: r.TS, Pt: geo.Point{Lat: lat, Lon: lon}}
				if m.FirstPosition == nil {
					m.FirstPosition = pos
				}
				m.LastPosition = pos
			}
		}

		if alt, ok := r.BaroAltitudeFt(); ok {
			if m.MaxAltitudeFt == nil || alt > *m.MaxAltitudeFt {
				v := alt
				m.MaxAltitudeFt = &v
			}
			if m.MinAltitudeFt == nil || alt < *m.MinAltitudeFt {
				v := alt
				m.MinAltitudeFt = &v
			}
		}

		if gs, ok := r.GroundSpeedKts(); ok {
			if m.MaxGroundSpeedKt == nil || gs > *m.MaxGroundSpeedKt {
				v := gs
				m.MaxGroundSpeedKt = &v
			}
		}
	}

	return m
}

// FirstSeenTime and LastSeenTime expose the metadata timestamps as
// time.Time for callers building human-readable output.
func (m Metadata) FirstSeenTime() time.Time { return time.Unix(m.FirstSeen, 0).UTC() }
func (m Metadata) LastSeenTime() time.Time  { return time.Unix(m.LastSeen, 0).UTC() }
