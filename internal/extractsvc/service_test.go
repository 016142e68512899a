package extractsvc

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSegment(t *testing.T, dir string, date time.Time, hour int, lines []string) {
	t.Helper()
	key := fmt.Sprintf("%s_%02d", date.Format("2006-01-02"), hour)
	path := filepath.Join(dir, "adsb_state_"+key+".jsonl")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	for _, l := range lines {
		fmt.Fprintln(f, l)
	}
}

func recLine(ts int64, flight string, lat, lon float64) string {
	return fmt.Sprintf(`{"_ts":%d,"_ts_iso":"x","_poll":0,"hex":"abcdef","flight":"%s","lat":%f,"lon":%f}`, ts, flight, lat, lon)
}

func TestListCallsignsReturnsDistinctFlights(t *testing.T) {
	dir := t.TempDir()
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	writeSegment(t, dir, date, 12, []string{
		recLine(date.Add(12*time.Hour).Unix(), "FDB8876", 25.1, 55.2),
		recLine(date.Add(12*time.Hour+10*time.Second).Unix(), "UAE123", 25.2, 55.3),
	})

	svc := New(dir)
	callsigns, err := svc.ListCallsigns(date)
	if err != nil {
		t.Fatalf("ListCallsigns: %v", err)
	}
	if _, ok := callsigns["FDB8876"]; !ok {
		t.Errorf("expected FDB8876 in %v", callsigns)
	}
	if _, ok := callsigns["UAE123"]; !ok {
		t.Errorf("expected UAE123 in %v", callsigns)
	}
}

func TestExtractWithoutCrossoverOnlyScansRequestedDate(t *testing.T) {
	dir := t.TempDir()
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	nextDate := date.AddDate(0, 0, 1)

	writeSegment(t, dir, date, 23, []string{
		recLine(date.Add(23*time.Hour).Unix(), "FDB8876", 25.1, 55.2),
	})
	writeSegment(t, dir, nextDate, 0, []string{
		recLine(nextDate.Unix(), "FDB8876", 25.2, 55.3),
	})

	svc := New(dir)
	result, err := svc.Extract("FDB8876", date, false)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Bundle.Records) != 1 {
		t.Fatalf("expected only requested date's record without crossover, got %d", len(result.Bundle.Records))
	}
	if result.Detected {
		t.Errorf("expected no crossover detection when disabled")
	}
}

func TestExtractWithCrossoverSpansBothDates(t *testing.T) {
	dir := t.TempDir()
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	nextDate := date.AddDate(0, 0, 1)

	var linesD0 []string
	start := date.Add(23*time.Hour + 30*time.Minute).Unix()
	end := date.Add(23*time.Hour + 59*time.Minute + 59*time.Second).Unix()
	for ts := start; ts <= end; ts += 30 {
		linesD0 = append(linesD0, recLine(ts, "FDB8876", 25.1, 55.2))
	}
	writeSegment(t, dir, date, 23, linesD0)

	var linesD1 []string
	start2 := nextDate.Unix()
	end2 := nextDate.Add(45 * time.Minute).Unix()
	for ts := start2; ts <= end2; ts += 30 {
		linesD1 = append(linesD1, recLine(ts, "FDB8876", 25.2, 55.3))
	}
	writeSegment(t, dir, nextDate, 0, linesD1)

	svc := New(dir)
	result, err := svc.Extract("FDB8876", date, true)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !result.Detected {
		t.Errorf("expected crossover detected")
	}
	if !result.ActualEnd.Equal(nextDate) {
		t.Errorf("expected actual end %v, got %v", nextDate, result.ActualEnd)
	}
	if len(result.Bundle.Records) != len(linesD0)+len(linesD1) {
		t.Errorf("expected records from both dates, got %d", len(result.Bundle.Records))
	}
}

func TestWriteOutputCreatesNamedDirectory(t *testing.T) {
	dir := t.TempDir()
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	writeSegment(t, dir, date, 12, []string{
		recLine(date.Add(12*time.Hour).Unix(), "FDB8876", 25.1, 55.2),
	})

	svc := New(dir)
	result, err := svc.Extract("FDB8876", date, true)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	outdir := t.TempDir()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	written, err := result.WriteOutput(outdir, "FDB8876", now)
	if err != nil {
		t.Fatalf("WriteOutput: %v", err)
	}

	expected := filepath.Join(outdir, "20250601_FDB8876")
	if written != expected {
		t.Errorf("expected output dir %s, got %s", expected, written)
	}
	if _, err := os.Stat(filepath.Join(written, "metadata.json")); err != nil {
		t.Errorf("expected metadata.json to exist: %v", err)
	}
}
