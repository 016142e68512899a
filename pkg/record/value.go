package record

import (
	"bytes"
	"encoding/json"
)

// Kind identifies which alternative of Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindBool
	KindString
)

// Value is the dynamic scalar carried by a Record's recognized-field set.
// ADS-B snapshot fields are untyped at the source (a field may be absent,
// numeric, boolean, or the sentinel string "ground" for altitudes), so
// Value preserves whatever shape the upstream decoder sent rather than
// coercing it. Numbers keep their original textual form via json.Number so
// round-tripping through the archive never perturbs precision or
// int-vs-float formatting.
type Value struct {
	Kind Kind
	Num  json.Number
	B    bool
	Str  string
}

// Null is the absent/JSON-null value.
var Null = Value{Kind: KindNull}

// NumberOf builds a numeric Value from a json.Number.
func NumberOf(n json.Number) Value { return Value{Kind: KindNumber, Num: n} }

// StringOf builds a string Value, preserving sentinels like "ground" as-is.
func StringOf(s string) Value { return Value{Kind: KindString, Str: s} }

// BoolOf builds a boolean Value.
func BoolOf(b bool) Value { return Value{Kind: KindBool, B: b} }

// FromAny converts a decoded JSON value (as produced by a
// json.Decoder with UseNumber enabled) into a Value. Unsupported dynamic
// types (arrays, objects) decode to Null since no recognized field is
// ever shaped that way.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null
	case json.Number:
		return NumberOf(t)
	case string:
		return StringOf(t)
	case bool:
		return BoolOf(t)
	case float64:
		// Only reachable if the caller didn't enable UseNumber; format
		// with the shortest round-trippable representation.
		return NumberOf(json.Number(formatFloat(t)))
	default:
		return Null
	}
}

// IsAbsent reports whether the value is null/unset.
func (v Value) IsAbsent() bool { return v.Kind == KindNull }

// IsGroundSentinel reports whether the value is the ADS-B "ground" altitude
// sentinel (a string, not a number).
func (v Value) IsGroundSentinel() bool {
	return v.Kind == KindString && v.Str == "ground"
}

// Float returns the numeric value as a float64, if the Value is numeric.
func (v Value) Float() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	f, err := v.Num.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// String returns the raw string contents, if the Value is a string.
func (v Value) String() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.Str, true
}

// MarshalJSON emits the value in its original shape.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindNumber:
		if v.Num == "" {
			return []byte("0"), nil
		}
		return []byte(string(v.Num)), nil
	case KindBool:
		if v.B {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case KindString:
		return json.Marshal(v.Str)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON parses a value while preserving its original shape
// (number tokens are kept as json.Number, not widened to float64).
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*v = Null
	case bytes.Equal(trimmed, []byte("true")):
		*v = BoolOf(true)
	case bytes.Equal(trimmed, []byte("false")):
		*v = BoolOf(false)
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = StringOf(s)
	default:
		*v = NumberOf(json.Number(trimmed))
	}
	return nil
}

func formatFloat(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}
