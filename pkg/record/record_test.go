package record

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func fixedTime() time.Time {
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

func decodeEntry(t *testing.T, raw string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	return m
}

func TestProjectSkipsEmptyHex(t *testing.T) {
	entry := decodeEntry(t, `{"hex":"  ","flight":"FDB123"}`)
	if _, ok := Project(entry, Record{}); ok {
		t.Fatal("expected entry with blank hex to be skipped")
	}
}

func TestProjectKeepsRecognizedFieldsOnly(t *testing.T) {
	entry := decodeEntry(t, `{"hex":"A12345","flight":"FDB123 ","alt_baro":"ground","lat":25.1,"lon":55.2,"unknown_field":"x","type":"adsb_icao"}`)
	rec, ok := Project(entry, NewFromTick(fixedTime(), 7))
	if !ok {
		t.Fatal("expected projection to succeed")
	}
	if rec.Hex() != "a12345" {
		t.Errorf("expected normalized hex a12345, got %q", rec.Hex())
	}
	if !rec.HasSrc || rec.Src != "adsb_icao" {
		t.Errorf("expected src adsb_icao, got %q (hasSrc=%v)", rec.Src, rec.HasSrc)
	}
	if _, ok := rec.Fields["unknown_field"]; ok {
		t.Error("unrecognized field leaked into Fields")
	}
	alt, ok := rec.Fields["alt_baro"]
	if !ok || !alt.IsGroundSentinel() {
		t.Error("expected alt_baro ground sentinel to be preserved")
	}
}

func TestRecordJSONRoundTrip(t *testing.T) {
	entry := decodeEntry(t, `{"hex":"a12345","flight":"FDB123","alt_baro":35000,"gs":450.5,"nic":8}`)
	rec, ok := Project(entry, NewFromTick(fixedTime(), 3))
	if !ok {
		t.Fatal("expected projection to succeed")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if back.TS != rec.TS || back.Poll != rec.Poll {
		t.Errorf("header mismatch: got %+v want %+v", back, rec)
	}
	if back.Hex() != "a12345" {
		t.Errorf("expected hex a12345, got %q", back.Hex())
	}
	altBefore, _ := rec.Fields["alt_baro"].Float()
	altAfter, _ := back.Fields["alt_baro"].Float()
	if altBefore != altAfter {
		t.Errorf("alt_baro mismatch: %v != %v", altBefore, altAfter)
	}
	for k, v := range rec.Fields {
		bv, ok := back.Fields[k]
		if !ok {
			t.Errorf("field %q missing after round-trip", k)
			continue
		}
		if v.Kind != bv.Kind {
			t.Errorf("field %q kind mismatch: %v != %v", k, v.Kind, bv.Kind)
		}
	}
}

func TestRecordJSONPreservesGroundSentinel(t *testing.T) {
	entry := decodeEntry(t, `{"hex":"a12345","alt_baro":"ground"}`)
	rec, _ := Project(entry, NewFromTick(fixedTime(), 1))

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Contains(data, []byte(`"alt_baro":"ground"`)) {
		t.Errorf("expected ground sentinel preserved verbatim, got %s", data)
	}
}
