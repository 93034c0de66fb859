package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DecodeState reads a stored record. A report the record lacks keeps its
// default model; unknown fields such as lastUpdated are ignored.
func DecodeState(raw []byte, now time.Time) (AppState, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return AppState{}, fmt.Errorf("decode state: %w", err)
	}
	s := DefaultAppState(now)
	parts := []struct {
		key  string
		dest any
	}{
		{"reportType", &s.ActiveReport},
		{"g3022", &s.Summary},
		{"g3026", &s.Observation},
		{"g3027", &s.Findings},
	}
	for _, p := range parts {
		v, ok := fields[p.key]
		if !ok || string(v) == "null" {
			continue
		}
		if err := decodePart(v, p.dest); err != nil {
			return AppState{}, fmt.Errorf("decode state %s: %w", p.key, err)
		}
	}
	if err := ValidateState(s); err != nil {
		return AppState{}, err
	}
	return s, nil
}

// decodePart decodes into a zeroed value so no default item survives inside
// a stored list.
func decodePart(raw json.RawMessage, dest any) error {
	switch d := dest.(type) {
	case *ReportCode:
		return json.Unmarshal(raw, d)
	case *SummaryReport:
		var v SummaryReport
		err := json.Unmarshal(raw, &v)
		*d = v
		return err
	case *ObservationReport:
		var v ObservationReport
		err := json.Unmarshal(raw, &v)
		*d = v
		return err
	case *FindingsReport:
		var v FindingsReport
		err := json.Unmarshal(raw, &v)
		*d = v
		return err
	}
	return fmt.Errorf("unsupported part %T", dest)
}

// EncodeState is the record body saved for a user, before stamping.
func EncodeState(s AppState) (json.RawMessage, error) {
	return json.Marshal(s)
}
