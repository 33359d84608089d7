package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Tank identifiers accepted by the ingest endpoint.
const (
	Tank1 = "tank1"
	Tank2 = "tank2"
)

// ErrMalformedBody is returned when a request body is not valid JSON at all.
var ErrMalformedBody = errors.New("malformed JSON body")

// Reading is one water-quality sample for a single tank.
type Reading struct {
	TDS       float64 `json:"tds"`       // ppm
	PH        float64 `json:"ph"`
	Turbidity float64 `json:"turbidity"` // NTU
}

// TankSet is the full payload posted by the field device.
type TankSet struct {
	Tank1 Reading `json:"tank1"`
	Tank2 Reading `json:"tank2"`
}

// TankReading pairs a reading with the tank it belongs to.
type TankReading struct {
	ID      string
	Reading Reading
}

// Tanks returns the readings in a fixed tank1, tank2 order.
func (s TankSet) Tanks() []TankReading {
	return []TankReading{
		{ID: Tank1, Reading: s.Tank1},
		{ID: Tank2, Reading: s.Tank2},
	}
}

// FieldError describes one rejected field of a request body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field problem found while decoding a body.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// DecodeTankSet parses a POST /data body. Both tanks and all three metrics
// are required; numeric strings are coerced to numbers.
func DecodeTankSet(body []byte) (TankSet, error) {
	if !json.Valid(body) {
		return TankSet{}, ErrMalformedBody
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return TankSet{}, &ValidationError{Fields: []FieldError{{Field: "body", Message: "must be a JSON object"}}}
	}

	verr := &ValidationError{}
	var set TankSet
	set.Tank1 = decodeReading(Tank1, raw[Tank1], verr)
	set.Tank2 = decodeReading(Tank2, raw[Tank2], verr)
	if len(verr.Fields) > 0 {
		return TankSet{}, verr
	}
	return set, nil
}

// DecodeObject parses an arbitrary JSON object, as accepted by the stub endpoints.
func DecodeObject(body []byte) (map[string]any, error) {
	if !json.Valid(body) {
		return nil, ErrMalformedBody
	}
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "body", Message: "must be a JSON object"}}}
	}
	return obj, nil
}

func decodeReading(tank string, data json.RawMessage, verr *ValidationError) Reading {
	if len(data) == 0 {
		verr.add(tank, "field required")
		return Reading{}
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		verr.add(tank, "must be an object")
		return Reading{}
	}

	var r Reading
	r.TDS = decodeNumber(tank+".tds", raw["tds"], verr)
	r.PH = decodeNumber(tank+".ph", raw["ph"], verr)
	r.Turbidity = decodeNumber(tank+".turbidity", raw["turbidity"], verr)
	return r
}

func decodeNumber(field string, data json.RawMessage, verr *ValidationError) float64 {
	if len(data) == 0 {
		verr.add(field, "field required")
		return 0
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil && string(data) != "null" {
		return f
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
	}

	verr.add(field, "value is not a valid float")
	return 0
}
