package record

import "strings"

// Project implements the Record Projector (rules in spec §4.3): it turns
// one raw snapshot entry into a Record, or reports ok=false if the entry
// has no usable hex and must be skipped.
//
// entry is expected to have been decoded with a json.Decoder configured
// via UseNumber, so numeric fields arrive as json.Number rather than
// float64 -- this is what lets Value preserve the source's original
// formatting on the way back out.
func Project(entry map[string]any, base Record) (Record, bool) {
	hexRaw, _ := entry["hex"].(string)
	if strings.TrimSpace(strings.ToLower(hexRaw)) == "" {
		return Record{}, false
	}

	rec := base
	rec.Fields = make(map[string]Value, len(RecognizedFields))

	if t, ok := entry["type"]; ok {
		if s, ok := t.(string); ok {
			rec.Src = s
			rec.HasSrc = true
		}
	}

	for _, key := range RecognizedFields {
		v, present := entry[key]
		if !present {
			continue
		}
		rec.Fields[key] = FromAny(v)
	}

	return rec, true
}
