package archive

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marcoculver/adsb-logger/pkg/record"
)

func writeLines(t *testing.T, path string, lines []string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		for _, l := range lines {
			fmt.Fprintln(gz, l)
		}
		return
	}
	w := bufio.NewWriter(f)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	w.Flush()
}

func TestStreamRecordsPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "adsb_state_2025-01-01_00.jsonl")
	writeLines(t, path, []string{
		`{"_ts":1,"_ts_iso":"2025-01-01T00:00:00Z","_poll":0,"hex":"a1"}`,
		`{"_ts":2,"_ts_iso":"2025-01-01T00:00:01Z","_poll":1,"hex":"a2"}`,
	})

	var got []record.Record
	for rec := range StreamRecords(path, Predicate{}) {
		got = append(got, rec)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
}

func TestStreamRecordsGzipFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "adsb_state_2025-01-01_00.jsonl.gz")
	writeLines(t, path, []string{
		`{"_ts":1,"_ts_iso":"2025-01-01T00:00:00Z","_poll":0,"hex":"a1"}`,
	})

	var got []record.Record
	for rec := range StreamRecords(path, Predicate{}) {
		got = append(got, rec)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
}

func TestStreamRecordsSkipsCorruptLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "adsb_state_2025-01-01_00.jsonl")
	writeLines(t, path, []string{
		`{"_ts":1,"_ts_iso":"2025-01-01T00:00:00Z","_poll":0,"hex":"a1"}`,
		`not valid json`,
		`{"_ts":2,"_ts_iso":"2025-01-01T00:00:01Z","_poll":1,"hex":"a2"}`,
	})

	var got []record.Record
	for rec := range StreamRecords(path, Predicate{}) {
		got = append(got, rec)
	}
	if len(got) != 2 {
		t.Fatalf("expected corrupt line skipped, 2 valid records remain, got %d", len(got))
	}
}

func TestStreamRecordsPrefilterLimitsParsing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "adsb_state_2025-01-01_00.jsonl")

	var lines []string
	for i := 0; i < 100000; i++ {
		if i%2000 == 0 {
			lines = append(lines, fmt.Sprintf(`{"_ts":%d,"_ts_iso":"2025-01-01T00:00:00Z","_poll":%d,"hex":"a1","flight":"FDB8876"}`, i, i))
		} else {
			lines = append(lines, fmt.Sprintf(`{"_ts":%d,"_ts_iso":"2025-01-01T00:00:00Z","_poll":%d,"hex":"b2"}`, i, i))
		}
	}
	writeLines(t, path, lines)

	var parseCount int
	matchFn := func(r record.Record) bool {
		parseCount++
		return r.Flight() == "FDB8876"
	}

	var got []record.Record
	for rec := range StreamRecords(path, Predicate{RequiredSubstring: "fdb8876", Match: matchFn}) {
		got = append(got, rec)
	}

	if len(got) != 50 {
		t.Fatalf("expected 50 matches, got %d", len(got))
	}
	// The prefilter should reject the other ~99950 lines by substring
	// test before they ever reach JSON parsing/Match.
	if parseCount > 60 {
		t.Errorf("expected prefilter to hold parse count near 50, got %d", parseCount)
	}
}

func TestStreamRecordsMissingFileLogsAndEndsCleanly(t *testing.T) {
	var got []record.Record
	for rec := range StreamRecords("/nonexistent/path.jsonl", Predicate{}) {
		got = append(got, rec)
	}
	if len(got) != 0 {
		t.Errorf("expected empty sequence for missing file, got %d records", len(got))
	}
}
