// Package record defines the canonical per-aircraft observation persisted
// to the archive (Record) and the logic that projects a raw snapshot
// entry into one.
package record

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// RecognizedFields is the bounded set of snapshot keys the projector
// copies verbatim when present. Anything outside this set is dropped.
// Mirrors the upstream decoder's KEEP_FIELDS list.
var RecognizedFields = []string{
	"hex", "flight",
	"lat", "lon",
	"alt_baro", "alt_geom",
	"gs", "ias", "tas", "mach",
	"track", "track_rate",
	"mag_heading", "true_heading", "calc_track",
	"roll",
	"baro_rate", "geom_rate",
	"wd", "ws", "oat", "tat",
	"squawk", "category", "emergency",
	"nav_qnh", "nav_heading", "nav_altitude_mcp", "nav_altitude_fms",
	"nic", "nac_p", "nac_v", "sil", "gva", "sda",
	"rssi", "seen", "seen_pos", "messages",
	"r_dst", "r_dir",
	"mlat", "tisb",
	"t", "r", "desc", "ownOp",
}

var recognizedSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(RecognizedFields))
	for _, k := range RecognizedFields {
		m[k] = struct{}{}
	}
	return m
}()

// Record is one persisted ADS-B observation.
type Record struct {
	TS     int64            // _ts: UTC seconds at poll time
	TSISO  string           // _ts_iso: derived ISO-8601 "Z" string
	Poll   int64            // _poll: monotonic poll index
	Src    string           // src: original "type" field, if present
	HasSrc bool
	Fields map[string]Value // recognized-field set, keyed by snapshot name
}

// NewFromTick builds the header portion of a Record for the given poll.
func NewFromTick(ts time.Time, pollIdx int64) Record {
	return Record{
		TS:     ts.Unix(),
		TSISO:  ts.UTC().Format("2006-01-02T15:04:05Z"),
		Poll:   pollIdx,
		Fields: make(map[string]Value, len(RecognizedFields)),
	}
}

// Hex returns the lowercased, trimmed hex field. Callers that need the
// raw stored value should read Fields["hex"] directly.
func (r Record) Hex() string {
	v, ok := r.Fields["hex"]
	if !ok {
		return ""
	}
	s, _ := v.String()
	return strings.ToLower(strings.TrimSpace(s))
}

// Flight returns the trimmed flight/callsign field, in its original case.
func (r Record) Flight() string {
	v, ok := r.Fields["flight"]
	if !ok {
		return ""
	}
	s, _ := v.String()
	return strings.TrimSpace(s)
}

// Lat/Lon return the position, if present and numeric.
func (r Record) Lat() (float64, bool) { return r.numeric("lat") }
func (r Record) Lon() (float64, bool) { return r.numeric("lon") }

// HasPosition reports whether both lat and lon are present.
func (r Record) HasPosition() bool {
	_, okLat := r.Lat()
	_, okLon := r.Lon()
	return okLat && okLon
}

// BaroAltitudeFt returns the barometric altitude in feet, treating the
// "ground" sentinel as absent.
func (r Record) BaroAltitudeFt() (float64, bool) {
	v, ok := r.Fields["alt_baro"]
	if !ok || v.IsGroundSentinel() {
		return 0, false
	}
	return v.Float()
}

// BaroRateFPM returns the barometric vertical rate in ft/min, if numeric.
func (r Record) BaroRateFPM() (float64, bool) { return r.numeric("baro_rate") }

// GroundSpeedKts returns ground speed in knots, if numeric.
func (r Record) GroundSpeedKts() (float64, bool) { return r.numeric("gs") }

// IASKts / TASKts return indicated/true airspeed in knots, if numeric.
func (r Record) IASKts() (float64, bool) { return r.numeric("ias") }
func (r Record) TASKts() (float64, bool) { return r.numeric("tas") }

// Registration, AircraftType, Operator return the identity fields, trimmed.
func (r Record) Registration() (string, bool)  { return r.stringField("r") }
func (r Record) AircraftType() (string, bool)  { return r.stringField("t") }
func (r Record) Operator() (string, bool)      { return r.stringField("ownOp") }
func (r Record) Description() (string, bool)   { return r.stringField("desc") }

func (r Record) numeric(key string) (float64, bool) {
	v, ok := r.Fields[key]
	if !ok {
		return 0, false
	}
	return v.Float()
}

func (r Record) stringField(key string) (string, bool) {
	v, ok := r.Fields[key]
	if !ok {
		return "", false
	}
	s, isStr := v.String()
	if !isStr {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// MarshalJSON writes the compact, single-line representation appended to
// segment files.
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(r.Fields)+4)

	put := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		m[key] = b
		return nil
	}
	if err := put("_ts", r.TS); err != nil {
		return nil, err
	}
	if err := put("_ts_iso", r.TSISO); err != nil {
		return nil, err
	}
	if err := put("_poll", r.Poll); err != nil {
		return nil, err
	}
	if r.HasSrc {
		if err := put("src", r.Src); err != nil {
			return nil, err
		}
	}
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := put(k, r.Fields[k]); err != nil {
			return nil, err
		}
	}

	var buf strings.Builder
	buf.WriteByte('{')
	first := true
	// Deterministic order: header first, then sorted recognized fields.
	order := append([]string{"_ts", "_ts_iso", "_poll"}, func() []string {
		if r.HasSrc {
			return append([]string{"src"}, keys...)
		}
		return keys
	}()...)
	for _, k := range order {
		raw, ok := m[k]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return []byte(buf.String()), nil
}

// UnmarshalJSON parses one archive line back into a Record, separating
// header fields from the recognized-field set.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := make(map[string]Value, len(raw))
	for k, v := range raw {
		switch k {
		case "_ts":
			if err := json.Unmarshal(v, &r.TS); err != nil {
				return err
			}
		case "_ts_iso":
			if err := json.Unmarshal(v, &r.TSISO); err != nil {
				return err
			}
		case "_poll":
			if err := json.Unmarshal(v, &r.Poll); err != nil {
				return err
			}
		case "src":
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return err
			}
			r.Src = s
			r.HasSrc = true
		default:
			if _, recognized := recognizedSet[k]; !recognized {
				continue
			}
			var val Value
			if err := json.Unmarshal(v, &val); err != nil {
				return err
			}
			fields[k] = val
		}
	}
	r.Fields = fields
	return nil
}
