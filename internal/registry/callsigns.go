package registry

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"time"
)

// CallsignFields are the optional fields Upsert may set or refresh.
// Unset (empty-string) fields leave the existing stored value untouched
// -- COALESCE semantics, matching the spec's null-means-no-change rule.
type CallsignFields struct {
	Hex           string
	AircraftType  string
	Registration  string
	FlightNumber  string
	Route         string
	Origin        string
	Destination   string
}

// Callsign is one row of the callsigns table.
type Callsign struct {
	Callsign       string
	Airline        string
	Hex            string
	AircraftType   string
	Registration   string
	FlightNumber   string
	Route          string
	Origin         string
	Destination    string
	SightingCount  int
	FirstSeen      time.Time
	LastSeen       time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const timeLayout = time.RFC3339

// Upsert inserts a new callsign row or updates an existing one: on
// update, last_seen advances to now, sighting_count increments by
// exactly one, and each optional field in fields is overwritten only if
// non-empty (COALESCE semantics -- an empty field leaves the stored
// value as-is). Returns true if the row was newly created.
func (s *Store) Upsert(callsign, airline string, fields CallsignFields, now time.Time) (isNew bool, err error) {
	nowStr := now.UTC().Format(timeLayout)

	tx, err := s.db.Beginx()
	if err != nil {
		return false, storeErr(err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.Get(&exists, `SELECT 1 FROM callsigns WHERE callsign = ?`, callsign); err != nil && err != sql.ErrNoRows {
		return false, storeErr(err)
	} else {
		exists = err == nil
	}

	if !exists {
		_, err := tx.Exec(`
			INSERT INTO callsigns
				(callsign, airline, hex, aircraft_type, registration, flight_number, route, origin, destination,
				 sighting_count, first_seen, last_seen, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?)`,
			callsign, nullIfEmpty(airline), nullIfEmpty(fields.Hex), nullIfEmpty(fields.AircraftType),
			nullIfEmpty(fields.Registration), nullIfEmpty(fields.FlightNumber), nullIfEmpty(fields.Route),
			nullIfEmpty(fields.Origin), nullIfEmpty(fields.Destination),
			nowStr, nowStr, nowStr, nowStr,
		)
		if err != nil {
			return false, storeErr(err)
		}
		return true, storeErr(tx.Commit())
	}

	_, err = tx.Exec(`
		UPDATE callsigns SET
			airline        = COALESCE(?, airline),
			hex            = COALESCE(?, hex),
			aircraft_type  = COALESCE(?, aircraft_type),
			registration   = COALESCE(?, registration),
			flight_number  = COALESCE(?, flight_number),
			route          = COALESCE(?, route),
			origin         = COALESCE(?, origin),
			destination    = COALESCE(?, destination),
			sighting_count = sighting_count + 1,
			last_seen      = ?,
			updated_at     = ?
		WHERE callsign = ?`,
		nullIfEmpty(airline), nullIfEmpty(fields.Hex), nullIfEmpty(fields.AircraftType),
		nullIfEmpty(fields.Registration), nullIfEmpty(fields.FlightNumber), nullIfEmpty(fields.Route),
		nullIfEmpty(fields.Origin), nullIfEmpty(fields.Destination),
		nowStr, nowStr, callsign,
	)
	if err != nil {
		return false, storeErr(err)
	}
	return false, storeErr(tx.Commit())
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type callsignRow struct {
	Callsign      string         `db:"callsign"`
	Airline       sql.NullString `db:"airline"`
	Hex           sql.NullString `db:"hex"`
	AircraftType  sql.NullString `db:"aircraft_type"`
	Registration  sql.NullString `db:"registration"`
	FlightNumber  sql.NullString `db:"flight_number"`
	Route         sql.NullString `db:"route"`
	Origin        sql.NullString `db:"origin"`
	Destination   sql.NullString `db:"destination"`
	SightingCount int            `db:"sighting_count"`
	FirstSeen     string         `db:"first_seen"`
	LastSeen      string         `db:"last_seen"`
	CreatedAt     string         `db:"created_at"`
	UpdatedAt     string         `db:"updated_at"`
}

func (row callsignRow) toCallsign() Callsign {
	parse := func(s string) time.Time {
		t, _ := time.Parse(timeLayout, s)
		return t
	}
	return Callsign{
		Callsign:      row.Callsign,
		Airline:       row.Airline.String,
		Hex:           row.Hex.String,
		AircraftType:  row.AircraftType.String,
		Registration:  row.Registration.String,
		FlightNumber:  row.FlightNumber.String,
		Route:         row.Route.String,
		Origin:        row.Origin.String,
		Destination:   row.Destination.String,
		SightingCount: row.SightingCount,
		FirstSeen:     parse(row.FirstSeen),
		LastSeen:      parse(row.LastSeen),
		CreatedAt:     parse(row.CreatedAt),
		UpdatedAt:     parse(row.UpdatedAt),
	}
}

// GetCallsign returns the stored row, or ok=false if not present.
func (s *Store) GetCallsign(callsign string) (Callsign, bool, error) {
	var row callsignRow
	err := s.db.Get(&row, `SELECT * FROM callsigns WHERE callsign = ?`, callsign)
	if err == sql.ErrNoRows {
		return Callsign{}, false, nil
	}
	if err != nil {
		return Callsign{}, false, storeErr(err)
	}
	return row.toCallsign(), true, nil
}

// GetAllCallsigns returns every callsign, optionally filtered by
// airline, ordered by sighting_count descending.
func (s *Store) GetAllCallsigns(airline string) ([]Callsign, error) {
	var rows []callsignRow
	var err error
	if airline == "" {
		err = s.db.Select(&rows, `SELECT * FROM callsigns ORDER BY sighting_count DESC`)
	} else {
		err = s.db.Select(&rows, `SELECT * FROM callsigns WHERE airline = ? ORDER BY sighting_count DESC`, airline)
	}
	if err != nil {
		return nil, storeErr(err)
	}
	out := make([]Callsign, len(rows))
	for i, r := range rows {
		out[i] = r.toCallsign()
	}
	return out, nil
}

// ExportCSV writes every callsign row (optionally filtered by airline)
// to path in the spec's fixed column order, with null fields rendered
// as empty strings.
func (s *Store) ExportCSV(path, airline string) error {
	rows, err := s.GetAllCallsigns(airline)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"callsign", "flight_number", "route", "origin", "destination",
		"airline", "hex_code", "aircraft_type", "registration", "first_seen", "last_seen", "sighting_count",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, c := range rows {
		record := []string{
			c.Callsign, c.FlightNumber, c.Route, c.Origin, c.Destination,
			c.Airline, c.Hex, c.AircraftType, c.Registration,
			c.FirstSeen.Format(timeLayout), c.LastSeen.Format(timeLayout),
			fmt.Sprintf("%d", c.SightingCount),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	return nil
}

// AirlineCount is one row of Stats' by-airline breakdown.
type AirlineCount struct {
	Airline string
	Count   int
}

// Stats summarizes the registry: totals, a by-airline breakdown, and the
// top 10 callsigns by sighting count.
type Stats struct {
	TotalCallsigns int
	ByAirline      []AirlineCount
	Top10          []Callsign
}

func (s *Store) Stats() (Stats, error) {
	all, err := s.GetAllCallsigns("")
	if err != nil {
		return Stats{}, err
	}

	byAirline := make(map[string]int)
	for _, c := range all {
		key := c.Airline
		if key == "" {
			key = "unknown"
		}
		byAirline[key]++
	}
	var breakdown []AirlineCount
	for airline, count := range byAirline {
		breakdown = append(breakdown, AirlineCount{Airline: airline, Count: count})
	}
	sort.Slice(breakdown, func(i, j int) bool { return breakdown[i].Count > breakdown[j].Count })

	top := all
	if len(top) > 10 {
		top = top[:10]
	}

	return Stats{
		TotalCallsigns: len(all),
		ByAirline:      breakdown,
		Top10:          top,
	}, nil
}
