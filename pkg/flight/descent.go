package flight

import (
	"math"

	"github.com/marcoculver/adsb-logger/pkg/geo"
	"github.com/marcoculver/adsb-logger/pkg/record"
)

// DescentConfig exposes the descent-analytics heuristics as
// configuration, per the spec's open question flagging these as
// domain-tunable constants rather than fixed literals.
type DescentConfig struct {
	EnterAltitudeCeilingFt float64 // default 40000
	EnterAltitudeFloorFt   float64 // default 15000 (also the close threshold)
	TMARadiusNM            float64 // default 150
	BaroRateThresholdFPM   float64 // default -100
	TMACenter              geo.Point
}

// DefaultDescentConfig returns the spec's default heuristic constants.
// Callers must still supply a TMACenter; the zero-value Point is not a
// meaningful destination.
func DefaultDescentConfig(tmaCenter geo.Point) DescentConfig {
	return DescentConfig{
		EnterAltitudeCeilingFt: 40000,
		EnterAltitudeFloorFt:   15000,
		TMARadiusNM:            150,
		BaroRateThresholdFPM:   -100,
		TMACenter:              tmaCenter,
	}
}

// DescentSegment is one contiguous in-descent run extracted from a
// flight leg, with summary statistics.
type DescentSegment struct {
	StartTS int64
	EndTS   int64

	AvgTAS, MinTAS, MaxTAS float64
	AvgIAS, MinIAS, MaxIAS float64
	AvgGS, MinGS, MaxGS    float64

	MaxAltitudeFt, MinAltitudeFt float64
	DurationMinutes              float64
	PointCount                   int
}

// ComputeDescents runs the descent-analytics pass described in the spec
// over a timestamp-sorted run: it enters "in descent" when altitude is
// between the floor and ceiling, the point is inside the TMA radius, and
// the barometric rate is below the threshold; it closes the segment once
// altitude reaches the floor. Segments with fewer than 2 points are
// rejected.
func ComputeDescents(run []record.Record, cfg DescentConfig) []DescentSegment {
	var segments []DescentSegment
	var current []record.Record
	inDescent := false

	flush := func() {
		if len(current) >= 2 {
			segments = append(segments, summarizeDescent(current))
		}
		current = nil
		inDescent = false
	}

	for _, r := range run {
		alt, hasAlt := r.BaroAltitudeFt()
		rate, hasRate := r.BaroRateFPM()
		lat, hasLat := r.Lat()
		lon, hasLon := r.Lon()

		if inDescent {
			if !hasAlt || alt <= cfg.EnterAltitudeFloorFt {
				if hasAlt {
					current = append(current, r)
				}
				flush()
				continue
			}
			current = append(current, r)
			continue
		}

		if !hasAlt || !hasRate || !hasLat || !hasLon {
			continue
		}
		if alt >= cfg.EnterAltitudeCeilingFt || alt <= cfg.EnterAltitudeFloorFt {
			continue
		}
		if rate >= cfg.BaroRateThresholdFPM {
			continue
		}
		dist := geo.DistanceNM(geo.Point{Lat: lat, Lon: lon}, cfg.TMACenter)
		if dist >= cfg.TMARadiusNM {
			continue
		}

		inDescent = true
		current = []record.Record{r}
	}
	if inDescent {
		flush()
	}

	return segments
}

func summarizeDescent(run []record.Record) DescentSegment {
	seg := DescentSegment{
		StartTS:    run[0].TS,
		EndTS:      run[len(run)-1].TS,
		PointCount: len(run),
	}
	seg.DurationMinutes = float64(seg.EndTS-seg.StartTS) / 60.0

	var tasSum, iasSum, gsSum float64
	var tasN, iasN, gsN int
	seg.MinTAS, seg.MinIAS, seg.MinGS = math.Inf(1), math.Inf(1), math.Inf(1)
	seg.MaxAltitudeFt = math.Inf(-1)
	seg.MinAltitudeFt = math.Inf(1)

	for _, r := range run {
		if alt, ok := r.BaroAltitudeFt(); ok {
			if alt > seg.MaxAltitudeFt {
				seg.MaxAltitudeFt = alt
			}
			if alt < seg.MinAltitudeFt {
				seg.MinAltitudeFt = alt
			}
		}
		if v, ok := r.TASKts(); ok {
			tasSum += v
			tasN++
			if v < seg.MinTAS {
				seg.MinTAS = v
			}
			if v > seg.MaxTAS {
				seg.MaxTAS = v
			}
		}
		if v, ok := r.IASKts(); ok {
			iasSum += v
			iasN++
			if v < seg.MinIAS {
				seg.MinIAS = v
			}
			if v > seg.MaxIAS {
				seg.MaxIAS = v
			}
		}
		if v, ok := r.GroundSpeedKts(); ok {
			gsSum += v
			gsN++
			if v < seg.MinGS {
				seg.MinGS = v
			}
			if v > seg.MaxGS {
				seg.MaxGS = v
			}
		}
	}

	if tasN > 0 {
		seg.AvgTAS = tasSum / float64(tasN)
	} else {
		seg.MinTAS = 0
	}
	if iasN > 0 {
		seg.AvgIAS = iasSum / float64(iasN)
	} else {
		seg.MinIAS = 0
	}
	if gsN > 0 {
		seg.AvgGS = gsSum / float64(gsN)
	} else {
		seg.MinGS = 0
	}
	if math.IsInf(seg.MaxAltitudeFt, -1) {
		seg.MaxAltitudeFt = 0
	}
	if math.IsInf(seg.MinAltitudeFt, 1) {
		seg.MinAltitudeFt = 0
	}

	return seg
}
