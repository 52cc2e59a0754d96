package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DefaultParamKey is the reserved parameter key holding the global multiplier.
const DefaultParamKey = "default"

// Param is a single custom multiplier entry.
type Param struct {
	Key   string
	Value float64
}

// CustomParams holds caller-supplied multiplier overrides in JSON document
// order. Order is part of the contract: indicator overrides resolve first
// match wins.
type CustomParams []Param

// Default returns the global multiplier, or 1 when no default key is present.
func (p CustomParams) Default() float64 {
	for _, entry := range p {
		if entry.Key == DefaultParamKey {
			return entry.Value
		}
	}
	return 1.0
}

// IndicatorMultiplier returns the value of the first non-default entry whose
// normalized key is a substring of the normalized indicator name, scanning in
// stored order. The second return reports whether any entry matched.
func (p CustomParams) IndicatorMultiplier(indicator string) (float64, bool) {
	name := NormalizeIndicator(indicator)
	for _, entry := range p {
		if entry.Key == DefaultParamKey {
			continue
		}
		key := NormalizeIndicator(entry.Key)
		if key != "" && strings.Contains(name, key) {
			return entry.Value, true
		}
	}
	return 1.0, false
}

// NormalizeIndicator lowercases a name and removes spaces and underscores.
func NormalizeIndicator(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

// UnmarshalJSON decodes a JSON object into params preserving key order.
// Entries whose value is neither a number nor a numeric string are skipped.
func (p *CustomParams) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode custom params: %w", err)
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decode custom params: expected object, got %v", tok)
	}

	out := CustomParams{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode custom params: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("decode custom params: non-string key %v", keyTok)
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode custom params: value for %q: %w", key, err)
		}
		switch v := raw.(type) {
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				continue
			}
			out = append(out, Param{Key: key, Value: f})
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				continue
			}
			out = append(out, Param{Key: key, Value: f})
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode custom params: %w", err)
	}

	*p = out
	return nil
}

// MarshalJSON encodes params as a JSON object in stored order.
func (p CustomParams) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, fmt.Errorf("encode custom params: %w", err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("encode custom params key %q: %w", entry.Key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
