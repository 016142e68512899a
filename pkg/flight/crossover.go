package flight

import (
	"time"

	"github.com/marcoculver/adsb-logger/pkg/archive"
	"github.com/marcoculver/adsb-logger/pkg/record"
	"github.com/marcoculver/adsb-logger/pkg/scan"
)

// CrossoverConfig bundles the tunables the resolver uses; all have
// spec-mandated defaults.
type CrossoverConfig struct {
	WindowHours        int   // W: hours scanned at the edge of requested_date, default 3
	GapThresholdSec    int64 // default 300
	MidnightWindowSec  int64 // default 1800 (30 min)
	MaxCrossoverHours  int   // default 6
}

// DefaultCrossoverConfig returns the spec's default tunables.
func DefaultCrossoverConfig() CrossoverConfig {
	return CrossoverConfig{
		WindowHours:       3,
		GapThresholdSec:   300,
		MidnightWindowSec: 1800,
		MaxCrossoverHours: 6,
	}
}

// Result is the resolved span for a requested date.
type Result struct {
	ActualStart time.Time
	ActualEnd   time.Time
}

// Detected reports whether either boundary moved off the requested date.
func (r Result) Detected(requested time.Time) bool {
	return !sameDate(r.ActualStart, requested) || !sameDate(r.ActualEnd, requested)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// Resolver looks up segments to detect a flight's actual start/end date
// when it straddles UTC midnight on either side of requested_date.
type Resolver struct {
	store *archive.Store
	cfg   CrossoverConfig
}

// NewResolver builds a Resolver over store using cfg.
func NewResolver(store *archive.Store, cfg CrossoverConfig) *Resolver {
	return &Resolver{store: store, cfg: cfg}
}

// Resolve returns (actual_start, actual_end) for callsign around
// requestedDate (UTC, time-of-day ignored).
func (res *Resolver) Resolve(callsign string, requestedDate time.Time) (Result, error) {
	requestedDate = truncateToDate(requestedDate)

	start := requestedDate
	end := requestedDate

	forwardEnd, err := res.forwardCheck(callsign, requestedDate)
	if err != nil {
		return Result{}, err
	}
	if forwardEnd.After(end) {
		end = forwardEnd
	}

	backwardStart, err := res.backwardCheck(callsign, requestedDate)
	if err != nil {
		return Result{}, err
	}
	if backwardStart.Before(start) {
		start = backwardStart
	}

	return Result{ActualStart: start, ActualEnd: end}, nil
}

// forwardCheck scans the last WindowHours of requestedDate; if the
// callsign runs close enough to midnight, it calls findEnd to walk
// forward into the next day(s).
func (res *Resolver) forwardCheck(callsign string, requestedDate time.Time) (time.Time, error) {
	recs, err := res.scanWindow(callsign, requestedDate, 24-res.cfg.WindowHours, 23)
	if err != nil {
		return requestedDate, err
	}
	if len(recs) == 0 {
		return requestedDate, nil
	}

	lastTS := recs[len(recs)-1].TS
	midnight := requestedDate.AddDate(0, 0, 1)
	if float64(midnight.Unix()-lastTS) > float64(res.cfg.MidnightWindowSec) {
		return requestedDate, nil
	}

	return res.findBoundary(callsign, requestedDate.AddDate(0, 0, 1), lastTS, +1)
}

// backwardCheck is the mirror of forwardCheck: scans the first
// WindowHours of requestedDate and, if the callsign starts close enough
// after midnight, walks backward into the prior day(s).
func (res *Resolver) backwardCheck(callsign string, requestedDate time.Time) (time.Time, error) {
	recs, err := res.scanWindow(callsign, requestedDate, 0, res.cfg.WindowHours-1)
	if err != nil {
		return requestedDate, err
	}
	if len(recs) == 0 {
		return requestedDate, nil
	}

	firstTS := recs[0].TS
	midnight := requestedDate.Unix()
	if float64(firstTS-midnight) > float64(res.cfg.MidnightWindowSec) {
		return requestedDate, nil
	}

	return res.findBoundary(callsign, requestedDate.AddDate(0, 0, -1), firstTS, -1)
}

// findBoundary walks one hour at a time (direction +1 forward or -1
// backward) starting at probeDate, scanning each hour's segments for
// callsign. It stops -- and returns the last date on which a
// gap-connected record was seen -- the first time the gap to the
// previous observed timestamp exceeds GapThresholdSec, or once
// MaxCrossoverHours have been examined.
func (res *Resolver) findBoundary(callsign string, probeDate time.Time, lastKnownTS int64, direction int) (time.Time, error) {
	prevTS := lastKnownTS
	lastGoodDate := probeDate.AddDate(0, 0, -direction)

	hour := 0
	if direction < 0 {
		hour = 23
	}
	currentDate := probeDate

	for i := 0; i < res.cfg.MaxCrossoverHours; i++ {
		recs, err := res.scanWindow(callsign, currentDate, hour, hour)
		if err != nil {
			return lastGoodDate, err
		}

		if direction < 0 {
			reverse(recs)
		}

		for _, r := range recs {
			gap := r.TS - prevTS
			if gap < 0 {
				gap = -gap
			}
			if gap > res.cfg.GapThresholdSec {
				return lastGoodDate, nil
			}
			prevTS = r.TS
			lastGoodDate = currentDate
		}

		hour += direction
		if hour > 23 {
			hour = 0
			currentDate = currentDate.AddDate(0, 0, 1)
		} else if hour < 0 {
			hour = 23
			currentDate = currentDate.AddDate(0, 0, -1)
		}
	}

	return lastGoodDate, nil
}

func reverse(recs []record.Record) {
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
}

func (res *Resolver) scanWindow(callsign string, date time.Time, hLo, hHi int) ([]record.Record, error) {
	files, err := res.store.SegmentsForHours(date, hLo, hHi)
	if err != nil {
		return nil, err
	}
	recs := scan.ExtractFlight(files, callsign, "", nil)
	return recs, nil
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
