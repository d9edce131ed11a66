package domain

import (
	"bytes"
	"encoding/json"
)

// Payload is a job result as delivered by a crawl job: embedded page-state
// JSON, a raw record array, or HTML. It is decoded once so that every
// strategy inspects the same value.
type Payload struct {
	// Raw is the payload exactly as received.
	Raw []byte

	// Data is the decoded JSON value, or nil if Raw is not JSON.
	// Numbers are kept as json.Number.
	Data any
}

// NewPayload decodes raw into a Payload. Non-JSON input is kept as text.
func NewPayload(raw []byte) Payload {
	p := Payload{Raw: raw}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return p
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return p
	}
	p.Data = v
	return p
}

// IsJSON reports whether the payload decoded as structured JSON, i.e. an
// object or an array. A bare JSON string is treated as text.
func (p Payload) IsJSON() bool {
	switch p.Data.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

// Text returns the payload as text. A payload that is a JSON string
// (HTML wrapped by the job runner) is unwrapped.
func (p Payload) Text() string {
	if s, ok := p.Data.(string); ok {
		return s
	}
	return string(p.Raw)
}

// Object returns the payload as a JSON object, if it is one.
func (p Payload) Object() (map[string]any, bool) {
	m, ok := p.Data.(map[string]any)
	return m, ok
}

// Array returns the payload as a JSON array, if it is one.
func (p Payload) Array() ([]any, bool) {
	a, ok := p.Data.([]any)
	return a, ok
}
