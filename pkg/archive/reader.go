package archive

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"io"
	"iter"
	"log"
	"os"
	"strings"

	"github.com/marcoculver/adsb-logger/pkg/record"
)

// Predicate filters Records during a stream. RequiredSubstring, when
// non-empty, lets StreamRecords skip JSON-parsing any line that doesn't
// contain it (case-insensitive) -- the prefilter optimization required
// for scanning large segments for one callsign or hex.
type Predicate struct {
	RequiredSubstring string
	Match             func(record.Record) bool
}

// StreamRecords lazily decodes path (transparently decompressing if it
// ends in .gz) and yields Records matching pred. A corrupt line is
// logged and skipped; a corrupt/unreadable file is logged and the
// sequence simply ends early rather than panicking or propagating the
// error to the orchestrator.
func StreamRecords(path string, pred Predicate) iter.Seq[record.Record] {
	return func(yield func(record.Record) bool) {
		f, err := os.Open(path)
		if err != nil {
			log.Printf("archive: open %s: %v", path, err)
			return
		}
		defer f.Close()

		var r io.Reader = f
		if strings.HasSuffix(path, ".gz") {
			gz, err := gzip.NewReader(f)
			if err != nil {
				log.Printf("archive: gzip reader for %s: %v", path, err)
				return
			}
			defer gz.Close()
			r = gz
		}

		requiredLower := strings.ToLower(pred.RequiredSubstring)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			line := strings.TrimRight(scanner.Text(), "\r\n")
			if line == "" {
				continue
			}
			if requiredLower != "" && !strings.Contains(strings.ToLower(line), requiredLower) {
				continue
			}

			var rec record.Record
			if err := json.Unmarshal([]byte(line), &rec); err != nil {
				log.Printf("archive: corrupt line in %s, skipping: %v", path, err)
				continue
			}

			if pred.Match != nil && !pred.Match(rec) {
				continue
			}
			if !yield(rec) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			log.Printf("archive: read error in %s, stopping: %v", path, err)
		}
	}
}
