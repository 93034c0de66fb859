package models

import (
	"reflect"
	"testing"
	"time"
)

var testDay = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

func TestSyncMapping(t *testing.T) {
	tests := []struct {
		name   string
		source ReportCode
		edit   func(*AppState)
		check  func(t *testing.T, s AppState)
	}{
		{
			name:   "summary case number and client reach every report",
			source: ReportCodeSummary,
			edit: func(s *AppState) {
				s.Summary.BasicInfo.CaseNumber = "113-T-0099"
				s.Summary.BasicInfo.ClientName = "Acme"
			},
			check: func(t *testing.T, s AppState) {
				if s.Observation.BasicInfo.CaseNumber != "113-T-0099" || s.Findings.BasicInfo.CaseNumber != "113-T-0099" {
					t.Errorf("case numbers: %q %q", s.Observation.BasicInfo.CaseNumber, s.Findings.BasicInfo.CaseNumber)
				}
				if s.Observation.BasicInfo.ClientName != "Acme" {
					t.Errorf("observation client = %q", s.Observation.BasicInfo.ClientName)
				}
			},
		},
		{
			name:   "findings visit date maps to check date",
			source: ReportCodeFindings,
			edit:   func(s *AppState) { s.Findings.BasicInfo.Date = "2024-04-01" },
			check: func(t *testing.T, s AppState) {
				if s.Observation.BasicInfo.CheckDate != "2024-04-01" || s.Summary.BasicInfo.VisitDate != "2024-04-01" {
					t.Errorf("dates: %q %q", s.Observation.BasicInfo.CheckDate, s.Summary.BasicInfo.VisitDate)
				}
			},
		},
		{
			name:   "summary document names do not reach observation",
			source: ReportCodeSummary,
			edit:   func(s *AppState) { s.Summary.BasicInfo.ReportName = "2023 GHG report" },
			check: func(t *testing.T, s AppState) {
				if s.Observation.BasicInfo.ReportInfo != "2023 GHG report" {
					t.Errorf("report info = %q", s.Observation.BasicInfo.ReportInfo)
				}
			},
		},
		{
			name:   "findings never overwrite summary document names",
			source: ReportCodeFindings,
			edit: func(s *AppState) {
				s.Summary.BasicInfo.InventoryName = "inventory v2"
				s.Observation.BasicInfo.InventoryInfo = "inventory v1"
			},
			check: func(t *testing.T, s AppState) {
				if s.Summary.BasicInfo.InventoryName != "inventory v2" {
					t.Errorf("summary inventory = %q", s.Summary.BasicInfo.InventoryName)
				}
				if s.Observation.BasicInfo.InventoryInfo != "inventory v2" {
					t.Errorf("observation inventory = %q", s.Observation.BasicInfo.InventoryInfo)
				}
			},
		},
		{
			name:   "client rep goes from findings to summary",
			source: ReportCodeFindings,
			edit:   func(s *AppState) { s.Findings.BasicInfo.AuditeeRep = "Chen" },
			check: func(t *testing.T, s AppState) {
				if s.Summary.Conclusion.ClientRepName != "Chen" {
					t.Errorf("client rep = %q", s.Summary.Conclusion.ClientRepName)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultAppState(testDay)
			tt.edit(&s)
			tt.check(t, Sync(tt.source, s))
		})
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	s := DefaultAppState(testDay)
	s.Observation.BasicInfo.CaseNumber = "113-T-0100"
	s.Observation.BasicInfo.ClientName = "Acme"
	s.Observation.LeadVerifierName = "Lin"
	for _, src := range AllReportCodes {
		once := Sync(src, s)
		twice := Sync(src, once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Sync(%s) is not idempotent", src)
		}
	}
}

func TestSyncLeavesCollectionsAlone(t *testing.T) {
	s := DefaultAppState(testDay)
	s.Findings.Findings = []FindingItem{{ID: "f1", Stage: StageS1}}
	before := len(s.Summary.Checklist)
	out := Sync(ReportCodeFindings, s)
	if len(out.Summary.Checklist) != before || len(out.Findings.Findings) != 1 {
		t.Error("Sync changed a collection")
	}
}

func TestSyncIgnoresUnknownSource(t *testing.T) {
	s := DefaultAppState(testDay)
	s.Summary.BasicInfo.CaseNumber = "x"
	if out := Sync("G-0000", s); out.Observation.BasicInfo.CaseNumber == "x" {
		t.Error("unknown source was synchronized")
	}
}
