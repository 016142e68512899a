package registry

import (
	"database/sql"
	"time"
)

// DefaultRouteCacheTTL is how long a cached route lookup is trusted
// before the Route Lookup Client should refetch it.
const DefaultRouteCacheTTL = 24 * time.Hour

// RouteInfo is the result of a route lookup, cached to avoid hammering
// the FR24 API for callsigns seen repeatedly.
type RouteInfo struct {
	FlightNumber string
	Route        string
	Origin       string
	Destination  string
	AircraftType string
	Registration string
	CachedAt     time.Time
}

// CacheRoute stores (or replaces) the cached route lookup for callsign.
func (s *Store) CacheRoute(callsign string, info RouteInfo, now time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO route_cache (callsign, flight_number, route, origin, destination, aircraft_type, registration, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(callsign) DO UPDATE SET
			flight_number = excluded.flight_number,
			route         = excluded.route,
			origin        = excluded.origin,
			destination   = excluded.destination,
			aircraft_type = excluded.aircraft_type,
			registration  = excluded.registration,
			cached_at     = excluded.cached_at`,
		callsign, nullIfEmpty(info.FlightNumber), nullIfEmpty(info.Route), nullIfEmpty(info.Origin),
		nullIfEmpty(info.Destination), nullIfEmpty(info.AircraftType), nullIfEmpty(info.Registration),
		now.UTC().Format(timeLayout),
	)
	return storeErr(err)
}

// GetCachedRoute returns the cached route for callsign if present and
// younger than ttl. A miss (absent or stale) returns ok=false, never an
// error -- callers fall through to a live lookup.
func (s *Store) GetCachedRoute(callsign string, ttl time.Duration, now time.Time) (RouteInfo, bool, error) {
	var row struct {
		FlightNumber sql.NullString `db:"flight_number"`
		Route        sql.NullString `db:"route"`
		Origin       sql.NullString `db:"origin"`
		Destination  sql.NullString `db:"destination"`
		AircraftType sql.NullString `db:"aircraft_type"`
		Registration sql.NullString `db:"registration"`
		CachedAt     string         `db:"cached_at"`
	}
	err := s.db.Get(&row, `SELECT flight_number, route, origin, destination, aircraft_type, registration, cached_at
		FROM route_cache WHERE callsign = ?`, callsign)
	if err == sql.ErrNoRows {
		return RouteInfo{}, false, nil
	}
	if err != nil {
		return RouteInfo{}, false, storeErr(err)
	}

	cachedAt, err := time.Parse(timeLayout, row.CachedAt)
	if err != nil {
		return RouteInfo{}, false, nil
	}
	if now.Sub(cachedAt) > ttl {
		return RouteInfo{}, false, nil
	}

	return RouteInfo{
		FlightNumber: row.FlightNumber.String,
		Route:        row.Route.String,
		Origin:       row.Origin.String,
		Destination:  row.Destination.String,
		AircraftType: row.AircraftType.String,
		Registration: row.Registration.String,
		CachedAt:     cachedAt,
	}, true, nil
}
