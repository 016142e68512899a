// Package scan orchestrates reading across many segment files: ordered
// concatenation, a stable _ts sort, callsign discovery, and the
// predicate-driven flight extraction used to pull one aircraft's history
// out of a date range of segments.
package scan

import (
	"sort"
	"strings"

	"github.com/marcoculver/adsb-logger/pkg/archive"
	"github.com/marcoculver/adsb-logger/pkg/record"
)

// ProgressFunc is invoked before opening each file during Scan, with the
// 0-based index, total file count, and the file's path.
type ProgressFunc func(i, n int, path string)

// Scan reads every file in order, applying pred to each Record, and
// returns the matches sorted ascending by _ts. The sort is stable so
// records that share a timestamp keep their original concatenation
// order (same-poll records stay contiguous).
func Scan(files []string, pred archive.Predicate, progress ProgressFunc) []record.Record {
	var out []record.Record
	for i, path := range files {
		if progress != nil {
			progress(i, len(files), path)
		}
		for rec := range archive.StreamRecords(path, pred) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TS < out[j].TS })
	return out
}

// GetUniqueCallsigns scans files and returns the set of distinct,
// trimmed, non-empty flight values observed.
func GetUniqueCallsigns(files []string, progress ProgressFunc) map[string]struct{} {
	seen := make(map[string]struct{})
	recs := Scan(files, archive.Predicate{}, progress)
	for _, rec := range recs {
		flight := strings.TrimSpace(rec.Flight())
		if flight == "" {
			continue
		}
		seen[flight] = struct{}{}
	}
	return seen
}

// ExtractFlight scans files for records matching callsign (uppercased,
// trimmed comparison against flight) and, if hex is non-empty,
// additionally requires the lowercased trimmed hex to match. The
// RequiredSubstring prefilter is set from whichever of callsign/hex is
// present so large segments skip JSON parsing for lines that can't
// possibly match.
func ExtractFlight(files []string, callsign, hex string, progress ProgressFunc) []record.Record {
	wantCallsign := strings.ToUpper(strings.TrimSpace(callsign))
	wantHex := strings.ToLower(strings.TrimSpace(hex))

	prefilter := strings.ToLower(wantCallsign)
	if prefilter == "" {
		prefilter = wantHex
	}

	pred := archive.Predicate{
		RequiredSubstring: prefilter,
		Match: func(r record.Record) bool {
			if strings.ToUpper(strings.TrimSpace(r.Flight())) != wantCallsign {
				return false
			}
			if wantHex != "" && r.Hex() != wantHex {
				return false
			}
			return true
		},
	}
	return Scan(files, pred, progress)
}
