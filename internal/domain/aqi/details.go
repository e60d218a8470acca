package aqi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Pollutant is one sub-reading keyed by its pollutant code (pm25, no2, ...).
type Pollutant struct {
	Code  string
	Value *float64
}

// Details keeps pollutant sub-readings in the order they were received.
// On the wire it is an object of {"<code>": {"v": <number>}}.
type Details []Pollutant

type pollutantWire struct {
	V *float64 `json:"v,omitempty"`
}

// MarshalJSON writes the entries as a JSON object preserving order.
func (d Details) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Code)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(pollutantWire{V: p.Value})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object in document order. Entries whose value is
// not an object with a numeric "v" are kept with a nil Value.
func (d *Details) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*d = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("details must be a JSON object")
	}

	out := make(Details, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		code, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected details key %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var wire pollutantWire
		if err := json.Unmarshal(raw, &wire); err != nil {
			wire.V = nil
		}
		out = append(out, Pollutant{Code: code, Value: wire.V})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*d = out
	return nil
}
