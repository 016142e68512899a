package ingestsvc

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/marcoculver/adsb-logger/internal/registry"
)

func snapshotJSON(now int64, hexes ...string) string {
	var aircraft []string
	for _, h := range hexes {
		aircraft = append(aircraft, fmt.Sprintf(`{"hex":"%s","flight":"FDB8876 ","lat":25.1,"lon":55.2}`, h))
	}
	return fmt.Sprintf(`{"now":%d,"aircraft":[%s]}`, now, strings.Join(aircraft, ","))
}

func TestServiceWritesRecordsAcrossTicks(t *testing.T) {
	requestCount := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		w.Write([]byte(snapshotJSON(time.Now().Unix(), "4ba9c1")))
	}))
	defer srv.Close()

	dir := t.TempDir()
	svc, err := New(Config{
		URL:        srv.URL,
		Timeout:    2 * time.Second,
		Tick:       20 * time.Millisecond,
		ArchiveDir: dir,
		FsyncEvery: time.Second,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Millisecond)
	defer cancel()
	if err := svc.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if requestCount < 2 {
		t.Fatalf("expected multiple polls, got %d", requestCount)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	found := false
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".jsonl.gz") {
			found = true
			lines := readGzLineCount(t, filepath.Join(dir, e.Name()))
			if lines == 0 {
				t.Errorf("expected at least one record in %s", e.Name())
			}
		}
	}
	if !found {
		t.Fatalf("expected a finalized segment in %v", entries)
	}
}

func TestServiceFeedsRegistryOnLiveTail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(snapshotJSON(time.Now().Unix(), "4ba9c1")))
	}))
	defer srv.Close()

	dir := t.TempDir()
	reg, err := registry.Open(filepath.Join(dir, "registry.db"))
	if err != nil {
		t.Fatalf("registry.Open: %v", err)
	}
	defer reg.Close()

	svc, err := New(Config{
		URL:        srv.URL,
		Timeout:    2 * time.Second,
		Tick:       20 * time.Millisecond,
		ArchiveDir: filepath.Join(dir, "archive"),
		FsyncEvery: time.Second,
		Registry:   reg,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	svc.Run(ctx)
	svc.Close()

	row, ok, err := reg.GetCallsign("FDB8876")
	if err != nil {
		t.Fatalf("GetCallsign: %v", err)
	}
	if !ok {
		t.Fatalf("expected registry to have been fed from live tail")
	}
	if row.Hex != "4ba9c1" {
		t.Errorf("unexpected registry row: %+v", row)
	}
}

func TestServiceContinuesAfterTransientFetchFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(snapshotJSON(time.Now().Unix(), "4ba9c1")))
	}))
	defer srv.Close()

	dir := t.TempDir()
	svc, err := New(Config{
		URL:        srv.URL,
		Timeout:    2 * time.Second,
		Tick:       15 * time.Millisecond,
		ArchiveDir: dir,
		FsyncEvery: time.Second,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	if err := svc.Run(ctx); err != nil {
		t.Fatalf("expected transient failure to not abort Run: %v", err)
	}
	svc.Close()

	if calls < 2 {
		t.Fatalf("expected the loop to keep polling after a transient failure, got %d calls", calls)
	}
}

func readGzLineCount(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip reader %s: %v", path, err)
	}
	defer gz.Close()
	scanner := bufio.NewScanner(gz)
	count := 0
	for scanner.Scan() {
		count++
	}
	return count
}
