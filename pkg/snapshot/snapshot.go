// Package snapshot fetches the aircraft-state document published by the
// upstream decoder over HTTP: a bounded-timeout GET, decoded as UTF-8
// with replacement on invalid bytes, classified into network-transient
// or malformed failures.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/marcoculver/adsb-logger/internal/apperr"
)

// Snapshot is the decoded aircraft.json document. Aircraft is kept as
// map[string]any (numbers as json.Number) so record.Project can pick
// recognized fields out of it without a second decode pass.
type Snapshot struct {
	Aircraft []map[string]any
	Now      json.Number
}

// DefaultURL is the upstream decoder's default state endpoint.
const DefaultURL = "http://127.0.0.1:8080/data/aircraft.json"

// Fetcher retrieves Snapshots over HTTP with a bounded per-request timeout.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher builds a Fetcher. The supplied timeout bounds every request
// made through Fetch; callers that want per-call control can instead pass
// a context with its own deadline.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{httpClient: &http.Client{Timeout: timeout}}
}

// Fetch retrieves and decodes one snapshot document from url. Returned
// errors are always *apperr.Error with Kind NetworkTransient or Malformed;
// both are meant to be logged and retried by the caller on the next tick.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.New(apperr.NetworkTransient, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, apperr.New(apperr.NetworkTransient, fmt.Errorf("fetch %s: %w", url, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, apperr.New(apperr.NetworkTransient, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.New(apperr.Malformed, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.New(apperr.NetworkTransient, fmt.Errorf("read body: %w", err))
	}
	body = sanitizeUTF8(body)

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc struct {
		Aircraft []map[string]any `json:"aircraft"`
		Now      json.Number      `json:"now"`
	}
	if err := dec.Decode(&doc); err != nil {
		return nil, apperr.New(apperr.Malformed, fmt.Errorf("decode snapshot: %w", err))
	}

	return &Snapshot{Aircraft: doc.Aircraft, Now: doc.Now}, nil
}

// sanitizeUTF8 rewrites invalid byte sequences using the replacement
// character, mirroring the decode-with-replacement behavior of reading
// a response body as UTF-8 text.
func sanitizeUTF8(b []byte) []byte {
	if utf8.Valid(b) {
		return b
	}
	out := make([]byte, 0, len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			out = append(out, []byte(string(utf8.RuneError))...)
			b = b[1:]
			continue
		}
		out = append(out, b[:size]...)
		b = b[size:]
	}
	return out
}
