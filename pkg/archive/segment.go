// Package archive implements the on-disk segment format: naming and key
// parsing, the single-writer state machine that owns the active hour
// (Writer), the directory-keyed view used for lookups and pruning
// (Store), and the streaming reader used by scans and extraction
// (StreamRecords).
package archive

import (
	"fmt"
	"strings"
	"time"
)

const (
	filePrefix   = "adsb_state_"
	plainSuffix  = ".jsonl"
	gzSuffix     = ".jsonl.gz"
	partSuffix   = ".jsonl.gz.part"
	keyLayout    = "2006-01-02_15"
	keyLen       = 13 // "YYYY-MM-DD_HH"
)

// KeyForHour formats t (truncated to the hour, in UTC) as a segment key.
func KeyForHour(t time.Time) string {
	return t.UTC().Format(keyLayout)
}

// PlainName returns the flat plain-file name for key.
func PlainName(key string) string { return filePrefix + key + plainSuffix }

// GzName returns the flat finalized-file name for key.
func GzName(key string) string { return filePrefix + key + gzSuffix }

// PartName returns the flat in-progress finalize name for key.
func PartName(key string) string { return filePrefix + key + partSuffix }

// ParseKey extracts the "YYYY-MM-DD_HH" key from a segment file name
// (either the plain or gzip-finalized form). Any deviation from the
// expected "adsb_state_<key>.jsonl[.gz]" shape yields ok=false -- callers
// must skip, never delete, names they can't parse.
func ParseKey(name string) (key string, ok bool) {
	base := name
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}

	var rest string
	switch {
	case strings.HasSuffix(base, gzSuffix):
		rest = strings.TrimSuffix(base, gzSuffix)
	case strings.HasSuffix(base, plainSuffix):
		rest = strings.TrimSuffix(base, plainSuffix)
	default:
		return "", false
	}

	if !strings.HasPrefix(rest, filePrefix) {
		return "", false
	}
	key = strings.TrimPrefix(rest, filePrefix)
	if !validKey(key) {
		return "", false
	}
	return key, true
}

// validKey checks the fixed "YYYY-MM-DD_HH" shape and that it parses as a
// real UTC hour.
func validKey(key string) bool {
	if len(key) != keyLen {
		return false
	}
	if key[4] != '-' || key[7] != '-' || key[10] != '_' {
		return false
	}
	if _, err := KeyToTime(key); err != nil {
		return false
	}
	return true
}

// KeyToTime parses a segment key back into the UTC hour it names.
func KeyToTime(key string) (time.Time, error) {
	t, err := time.Parse(keyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse segment key %q: %w", key, err)
	}
	return t.UTC(), nil
}

// HourOf extracts just the hour-of-day component from a valid key.
func HourOf(key string) (int, error) {
	t, err := KeyToTime(key)
	if err != nil {
		return 0, err
	}
	return t.Hour(), nil
}

// DatePrefix returns the "YYYY-MM-DD" portion of a valid key.
func DatePrefix(key string) string {
	if len(key) < 10 {
		return ""
	}
	return key[:10]
}

// hierarchicalDir returns the "<root>/YYYY/MM/DD" directory for key,
// relative to no particular root (callers join with their archive root).
func hierarchicalDir(key string) (string, error) {
	t, err := KeyToTime(key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d/%02d/%02d", t.Year(), t.Month(), t.Day()), nil
}
