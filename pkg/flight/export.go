package flight

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/marcoculver/adsb-logger/pkg/record"
)

// ExportBundle is the set of files written per extraction, matching the
// persisted per-extraction output directory boundary in the spec:
// metadata.json, summary.txt, flight_data.csv, flight_path.kml.
type ExportBundle struct {
	Callsign string
	Metadata Metadata
	Records  []record.Record

	// The remaining fields round out FlightMetadata's extraction
	// envelope (spec.md §3): the actual date span a crossover-aware
	// extraction covered, whether a crossover was detected, which
	// source segments were scanned, and when the extraction ran. All
	// are optional -- a zero value is simply omitted from metadata.json.
	ActualStartDate   string
	ActualEndDate     string
	CrossoverDetected bool
	SourceFiles       []string
	ExtractedAt       string
}

// WriteAll creates dir (if missing) and writes all four output files.
func (b ExportBundle) WriteAll(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := b.writeMetadataJSON(filepath.Join(dir, "metadata.json")); err != nil {
		return err
	}
	if err := b.writeSummaryText(filepath.Join(dir, "summary.txt")); err != nil {
		return err
	}
	if err := b.writeCSV(filepath.Join(dir, "flight_data.csv")); err != nil {
		return err
	}
	if err := b.writeKML(filepath.Join(dir, "flight_path.kml")); err != nil {
		return err
	}
	return nil
}

type metadataJSON struct {
	Callsign        string   `json:"callsign"`
	Hex             string   `json:"hex"`
	Registration    string   `json:"registration,omitempty"`
	AircraftType    string   `json:"aircraft_type,omitempty"`
	Operator        string   `json:"operator,omitempty"`
	FirstSeenISO    string   `json:"first_seen"`
	LastSeenISO     string   `json:"last_seen"`
	DurationMinutes float64  `json:"duration_minutes"`
	PointCount      int      `json:"point_count"`
	MaxAltitudeFt   *float64 `json:"max_altitude_ft,omitempty"`
	MinAltitudeFt   *float64 `json:"min_altitude_ft,omitempty"`
	MaxGroundSpeed  *float64 `json:"max_ground_speed_kts,omitempty"`

	ActualStartDate   string   `json:"actual_start_date,omitempty"`
	ActualEndDate     string   `json:"actual_end_date,omitempty"`
	CrossoverDetected bool     `json:"crossover_detected,omitempty"`
	SourceFiles       []string `json:"source_files,omitempty"`
	ExtractedAt       string   `json:"extracted_at,omitempty"`
}

func (b ExportBundle) writeMetadataJSON(path string) error {
	m := b.Metadata
	doc := metadataJSON{
		Callsign:        b.Callsign,
		Hex:             m.Hex,
		Registration:    m.Reg,
		AircraftType:    m.Type,
		Operator:        m.Operator,
		FirstSeenISO:    m.FirstSeenTime().Format("2006-01-02T15:04:05Z"),
		LastSeenISO:     m.LastSeenTime().Format("2006-01-02T15:04:05Z"),
		DurationMinutes: m.DurationMinutes,
		PointCount:      m.PointCount,
		MaxAltitudeFt:   m.MaxAltitudeFt,
		MinAltitudeFt:   m.MinAltitudeFt,
		MaxGroundSpeed:  m.MaxGroundSpeedKt,

		ActualStartDate:   b.ActualStartDate,
		ActualEndDate:     b.ActualEndDate,
		CrossoverDetected: b.CrossoverDetected,
		SourceFiles:       b.SourceFiles,
		ExtractedAt:       b.ExtractedAt,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (b ExportBundle) writeSummaryText(path string) error {
	m := b.Metadata
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "Flight Summary: %s\n", b.Callsign)
	fmt.Fprintf(f, "================================\n\n")
	fmt.Fprintf(f, "Hex:          %s\n", m.Hex)
	if m.Reg != "" {
		fmt.Fprintf(f, "Registration: %s\n", m.Reg)
	}
	if m.Type != "" {
		fmt.Fprintf(f, "Aircraft:     %s\n", m.Type)
	}
	if m.Operator != "" {
		fmt.Fprintf(f, "Operator:     %s\n", m.Operator)
	}
	fmt.Fprintf(f, "First seen:   %s\n", m.FirstSeenTime().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(f, "Last seen:    %s\n", m.LastSeenTime().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(f, "Duration:     %.1f minutes\n", m.DurationMinutes)
	fmt.Fprintf(f, "Points:       %d\n", m.PointCount)
	if m.MaxAltitudeFt != nil {
		fmt.Fprintf(f, "Max altitude: %.0f ft\n", *m.MaxAltitudeFt)
	}
	if m.MinAltitudeFt != nil {
		fmt.Fprintf(f, "Min altitude: %.0f ft\n", *m.MinAltitudeFt)
	}
	if m.MaxGroundSpeedKt != nil {
		fmt.Fprintf(f, "Max ground speed: %.0f kts\n", *m.MaxGroundSpeedKt)
	}
	return nil
}

var csvColumns = []string{
	"_ts", "_ts_iso", "hex", "flight", "lat", "lon",
	"alt_baro", "alt_geom", "gs", "ias", "tas", "track", "baro_rate",
	"squawk", "category", "r", "t", "ownOp",
}

func (b ExportBundle) writeCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range b.Records {
		row := make([]string, len(csvColumns))
		row[0] = strconv.FormatInt(r.TS, 10)
		row[1] = r.TSISO
		row[2] = r.Hex()
		row[3] = r.Flight()
		for i, col := range csvColumns[4:] {
			row[i+4] = csvFieldString(r, col)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	return nil
}

func csvFieldString(r record.Record, key string) string {
	v, ok := r.Fields[key]
	if !ok || v.IsAbsent() {
		return ""
	}
	switch v.Kind {
	case record.KindNumber:
		return string(v.Num)
	case record.KindBool:
		if v.B {
			return "true"
		}
		return "false"
	case record.KindString:
		return v.Str
	default:
		return ""
	}
}

func (b ExportBundle) writeKML(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create kml: %w", err)
	}
	defer f.Close()

	fmt.Fprintln(f, `<?xml version="1.0" encoding="UTF-8"?>`)
	fmt.Fprintln(f, `<kml xmlns="http://www.opengis.net/kml/2.2">`)
	fmt.Fprintln(f, `<Document>`)
	fmt.Fprintf(f, "<name>%s</name>\n", xmlEscape(b.Callsign))
	fmt.Fprintln(f, `<Placemark>`)
	fmt.Fprintf(f, "<name>%s track</name>\n", xmlEscape(b.Callsign))
	fmt.Fprintln(f, `<LineString>`)
	fmt.Fprintln(f, `<altitudeMode>absolute</altitudeMode>`)
	fmt.Fprint(f, `<coordinates>`)
	for _, r := range b.Records {
		lat, okLat := r.Lat()
		lon, okLon := r.Lon()
		if !okLat || !okLon {
			continue
		}
		altM := 0.0
		if alt, ok := r.BaroAltitudeFt(); ok {
			altM = alt * 0.3048
		}
		fmt.Fprintf(f, "%f,%f,%f ", lon, lat, altM)
	}
	fmt.Fprintln(f, `</coordinates>`)
	fmt.Fprintln(f, `</LineString>`)
	fmt.Fprintln(f, `</Placemark>`)
	fmt.Fprintln(f, `</Document>`)
	fmt.Fprintln(f, `</kml>`)
	return nil
}

func xmlEscape(s string) string {
	var b []byte
	for _, r := range s {
		switch r {
		case '&':
			b = append(b, []byte("&amp;")...)
		case '<':
			b = append(b, []byte("&lt;")...)
		case '>':
			b = append(b, []byte("&gt;")...)
		default:
			b = append(b, []byte(string(r))...)
		}
	}
	return string(b)
}
