package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertInsertsNewRow(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	isNew, err := s.Upsert("FDB8876", "Emirates", CallsignFields{Hex: "4ba9c1"}, now)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !isNew {
		t.Fatalf("expected isNew=true for first sighting")
	}

	row, ok, err := s.GetCallsign("FDB8876")
	if err != nil || !ok {
		t.Fatalf("GetCallsign: ok=%v err=%v", ok, err)
	}
	if row.SightingCount != 1 || row.Airline != "Emirates" || row.Hex != "4ba9c1" {
		t.Errorf("unexpected row: %+v", row)
	}
	if !row.FirstSeen.Equal(now) || !row.LastSeen.Equal(now) {
		t.Errorf("expected first/last seen = now, got %v / %v", row.FirstSeen, row.LastSeen)
	}
}

func TestUpsertUpdatesExistingRowWithCoalesceSemantics(t *testing.T) {
	s := openTestStore(t)
	t0 := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(10 * time.Minute)

	if _, err := s.Upsert("FDB8876", "Emirates", CallsignFields{Hex: "4ba9c1"}, t0); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}

	isNew, err := s.Upsert("FDB8876", "", CallsignFields{Route: "DXB-LHR"}, t1)
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if isNew {
		t.Errorf("expected isNew=false on second sighting")
	}

	row, ok, err := s.GetCallsign("FDB8876")
	if err != nil || !ok {
		t.Fatalf("GetCallsign: ok=%v err=%v", ok, err)
	}
	if row.SightingCount != 2 {
		t.Errorf("expected sighting_count=2, got %d", row.SightingCount)
	}
	if row.Airline != "Emirates" {
		t.Errorf("expected airline to be preserved via COALESCE, got %q", row.Airline)
	}
	if row.Route != "DXB-LHR" {
		t.Errorf("expected route to be set, got %q", row.Route)
	}
	if row.Hex != "4ba9c1" {
		t.Errorf("expected hex preserved, got %q", row.Hex)
	}
	if !row.FirstSeen.Equal(t0) {
		t.Errorf("expected first_seen unchanged, got %v", row.FirstSeen)
	}
	if !row.LastSeen.Equal(t1) {
		t.Errorf("expected last_seen advanced, got %v", row.LastSeen)
	}
}

func TestGetAllCallsignsOrderedBySightingCountDesc(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	s.Upsert("AAA111", "Emirates", CallsignFields{}, now)
	s.Upsert("BBB222", "Emirates", CallsignFields{}, now)
	s.Upsert("BBB222", "", CallsignFields{}, now.Add(time.Minute))
	s.Upsert("BBB222", "", CallsignFields{}, now.Add(2*time.Minute))

	rows, err := s.GetAllCallsigns("")
	if err != nil {
		t.Fatalf("GetAllCallsigns: %v", err)
	}
	if len(rows) != 2 || rows[0].Callsign != "BBB222" {
		t.Fatalf("expected BBB222 first by sighting count, got %+v", rows)
	}
}

func TestExportCSVFixedColumnOrderAndNullAsEmpty(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	if _, err := s.Upsert("FDB8876", "Emirates", CallsignFields{}, now); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	path := filepath.Join(t.TempDir(), "export.csv")
	if err := s.ExportCSV(path, ""); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	wantHeader := "callsign,flight_number,route,origin,destination,airline,hex_code,aircraft_type,registration,first_seen,last_seen,sighting_count"
	if !strings.HasPrefix(string(data), wantHeader) {
		t.Errorf("expected header %q, got %q", wantHeader, string(data))
	}
}

func TestStatsTotalsAndTop10(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		s.Upsert(callsignName(i), "Emirates", CallsignFields{}, now)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalCallsigns != 12 {
		t.Errorf("expected 12 total, got %d", stats.TotalCallsigns)
	}
	if len(stats.Top10) != 10 {
		t.Errorf("expected top10 capped at 10, got %d", len(stats.Top10))
	}
	if len(stats.ByAirline) != 1 || stats.ByAirline[0].Count != 12 {
		t.Errorf("expected single airline bucket with 12, got %+v", stats.ByAirline)
	}
}

func callsignName(i int) string {
	letters := "ABCDEFGHIJKL"
	return string(letters[i]) + string(letters[i]) + string(letters[i]) + "000"
}
