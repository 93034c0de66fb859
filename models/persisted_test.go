package models

import (
	"strings"
	"testing"
)

func TestDecodeState(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		check   func(t *testing.T, s AppState)
	}{
		{
			name: "missing reports keep defaults",
			raw:  `{"reportType":"G-3026","lastUpdated":"2024-03-05T00:00:00.000Z"}`,
			check: func(t *testing.T, s AppState) {
				if s.ActiveReport != ReportCodeObservation {
					t.Errorf("active = %q", s.ActiveReport)
				}
				if len(s.Summary.Checklist) == 0 || s.Findings.BasicInfo.Stage != StageS1 {
					t.Error("defaults were not kept")
				}
			},
		},
		{
			name: "stored list replaces the seed",
			raw:  `{"g3026":{"basicInfo":{"stage":"S1"},"checklist":[{"id":"1","name":"only"}]}}`,
			check: func(t *testing.T, s AppState) {
				if len(s.Observation.Checklist) != 1 || s.Observation.Checklist[0].Name != "only" {
					t.Errorf("checklist = %+v", s.Observation.Checklist)
				}
			},
		},
		{name: "invalid finding stage", raw: `{"g3027":{"findings":[{"id":"x","stage":"S7"}]}}`, wantErr: true},
		{name: "not an object", raw: `[]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := DecodeState([]byte(tt.raw), testDay)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if tt.check != nil {
				tt.check(t, s)
			}
		})
	}
}

func TestEncodeStateUsesWireNames(t *testing.T) {
	raw, err := EncodeState(DefaultAppState(testDay))
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"reportType"`, `"g3022"`, `"g3026"`, `"g3027"`} {
		if !strings.Contains(string(raw), key) {
			t.Errorf("encoded state lacks %s", key)
		}
	}
}
