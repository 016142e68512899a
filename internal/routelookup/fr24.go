// Package routelookup implements the Route Lookup Client (C11): a
// FlightRadar24 live-positions wrapper with client-side rate limiting
// and a permanent-unavailable latch, plus a heuristic fallback for when
// the API can't be reached.
package routelookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the FlightRadar24 API root.
	DefaultBaseURL = "https://fr24api.flightradar24.com/api"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent identifies this client to the API.
	DefaultUserAgent = "adsb-logger/1.0"

	// rateLimitedSleep is how long a 429 response tells us to back off.
	rateLimitedSleep = 60 * time.Second
)

// RouteInfo is a resolved callsign-to-route lookup.
type RouteInfo struct {
	FlightNumber string
	Route        string
	Origin       string
	Destination  string
	AircraftType string
	Registration string
	Airline      string
}

// Client wraps the FR24 live-positions endpoint with the spec's
// client-side throttle and availability latch, grounded in the
// teacher's FlightAware client (pkg/flightaware/client.go): a
// golang.org/x/time/rate limiter stands in for the manual
// last-request-timestamp throttle in the original Python client.
type Client struct {
	token       string
	baseURL     string
	userAgent   string
	httpClient  *http.Client
	rateLimiter *rate.Limiter

	// unavailable latches permanently once the API answers 400/401/403.
	// There is no unlatch operation -- the spec requires a process
	// restart to retry.
	unavailable bool
}

// Config configures a new Client.
type Config struct {
	Token                     string
	BaseURL                   string
	UserAgent                 string
	Timeout                   time.Duration
	MinRequestIntervalSeconds float64
}

// NewClient builds a Client from cfg, filling in spec defaults for any
// zero-valued fields.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	interval := cfg.MinRequestIntervalSeconds
	if interval <= 0 {
		interval = 1.0
	}

	return &Client{
		token:     cfg.Token,
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(1.0/interval), 1),
	}
}

// Unavailable reports whether the API has latched permanently
// unavailable for the lifetime of this process.
func (c *Client) Unavailable() bool {
	return c.unavailable
}

type fr24Response struct {
	Data []fr24Flight `json:"data"`
}

type fr24Flight struct {
	Flight   string `json:"flight"`
	Aircraft struct {
		Model struct {
			Code string `json:"code"`
		} `json:"model"`
		Registration string `json:"registration"`
	} `json:"aircraft"`
	Airport struct {
		Origin struct {
			Code struct {
				IATA string `json:"iata"`
			} `json:"code"`
		} `json:"origin"`
		Destination struct {
			Code struct {
				IATA string `json:"iata"`
			} `json:"code"`
		} `json:"destination"`
	} `json:"airport"`
	Airline struct {
		Name string `json:"name"`
	} `json:"airline"`
}

// LookupRoute looks up callsign via the live flight-positions endpoint.
// It returns nil, nil (not an error) on a cache-style miss: no data,
// network failure, malformed response, or an already-latched
// unavailable API. It returns nil, nil after handling a 429 (having
// slept 60s) and after latching on 400/401/403.
func (c *Client) LookupRoute(ctx context.Context, callsign string) (*RouteInfo, error) {
	if c.unavailable {
		return nil, nil
	}

	callsign = strings.ToUpper(strings.TrimSpace(callsign))
	if callsign == "" {
		return nil, nil
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := c.do(ctx, "live/flight-positions/full", map[string]string{"callsigns": callsign})
	if err != nil {
		return nil, nil
	}
	if resp == nil {
		return nil, nil
	}

	var parsed fr24Response
	if err := json.Unmarshal(resp, &parsed); err != nil {
		return nil, nil
	}
	if len(parsed.Data) == 0 {
		return nil, nil
	}

	flight := parsed.Data[0]
	info := &RouteInfo{
		FlightNumber: flight.Flight,
		Origin:       flight.Airport.Origin.Code.IATA,
		Destination:  flight.Airport.Destination.Code.IATA,
		AircraftType: flight.Aircraft.Model.Code,
		Registration: flight.Aircraft.Registration,
		Airline:      flight.Airline.Name,
	}
	if info.Origin != "" && info.Destination != "" {
		info.Route = info.Origin + "-" + info.Destination
	}
	return info, nil
}

// TestConnection probes connectivity with a lightweight request.
// Success sets nothing (there is no "available" latch, only the
// unavailable one), and failure doesn't latch -- only 400/401/403 do.
func (c *Client) TestConnection(ctx context.Context) bool {
	if c.unavailable {
		return false
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return false
	}
	resp, err := c.do(ctx, "live/flight-positions/light", map[string]string{"limit": "1"})
	return err == nil && resp != nil
}

// do performs a single authenticated GET, applying the spec's
// disposition table for non-2xx responses. A nil, nil return means
// "no usable data, caller should treat as a miss."
func (c *Client) do(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	if len(params) > 0 {
		var parts []string
		for k, v := range params {
			parts = append(parts, k+"="+v)
		}
		url = url + "?" + strings.Join(parts, "&")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Version", "v1")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		select {
		case <-time.After(rateLimitedSleep):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return nil, nil
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.unavailable = true
		return nil, nil
	default:
		return nil, fmt.Errorf("FR24 API error %d: %s", resp.StatusCode, string(body))
	}
}

// ConvertCallsignToFlightNumber derives a flight number from the airline
// prefix without calling the API: UAE123 -> EK123, FDB123 -> FZ123,
// FDB1AB -> FZ1 (only the leading digits are kept). Returns "" when no
// prefix matches. LookupRoute does not call it.
func ConvertCallsignToFlightNumber(callsign string) string {
	callsign = strings.ToUpper(strings.TrimSpace(callsign))

	if strings.HasPrefix(callsign, "UAE") {
		suffix := strings.TrimLeft(callsign[3:], "0")
		if isDigits(suffix) {
			return "EK" + suffix
		}
		return "EK" + callsign[3:]
	}

	if strings.HasPrefix(callsign, "FDB") {
		suffix := callsign[3:]
		var numeric strings.Builder
		for _, r := range suffix {
			if r < '0' || r > '9' {
				break
			}
			numeric.WriteRune(r)
		}
		if numeric.Len() > 0 {
			trimmed := strings.TrimLeft(numeric.String(), "0")
			if trimmed == "" {
				trimmed = "0"
			}
			return "FZ" + trimmed
		}
		return "FZ" + suffix
	}

	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}
