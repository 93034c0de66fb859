package models

import "fmt"

// ResetConfirmation must be passed to Reset for it to change anything.
const ResetConfirmation = "RESET"

// ResetReport restores the working content of one report to its defaults.
// Basic info and signer names or dates stay as they are.
type ResetReport struct {
	Report  ReportCode `json:"report" validate:"required"`
	Confirm string     `json:"confirm"`
}

func (a ResetReport) Source() ReportCode { return a.Report }

func (a ResetReport) Apply(s AppState) (AppState, error) {
	if a.Confirm != ResetConfirmation {
		return s, ErrResetNotConfirmed
	}
	switch a.Report {
	case ReportCodeSummary:
		c := s.Summary.Conclusion
		s.Summary.Checklist = SeedChecklist(ReportCodeSummary)
		s.Summary.Emissions = Emissions{}
		s.Summary.Conclusion = defaultSummaryConclusion()
		s.Summary.Conclusion.VerifierName = c.VerifierName
		s.Summary.Conclusion.LeadVerifierName = c.LeadVerifierName
		s.Summary.Conclusion.ClientRepName = c.ClientRepName
	case ReportCodeObservation:
		s.Observation.Checklist = SeedChecklist(ReportCodeObservation)
		s.Observation.SamplingResults = []SamplingResult{}
		s.Observation.EmissionFactors = []EmissionFactor{}
		s.Observation.OtherObservation = ""
	case ReportCodeFindings:
		c := s.Findings.Conclusion
		s.Findings.Findings = []FindingItem{}
		s.Findings.Stats = emptyFindingStats()
		s.Findings.Conclusion = FindingsConclusion{
			ProtocolChange: No,
			AuditeeDate:    c.AuditeeDate,
			VerifierDate:   c.VerifierDate,
		}
	default:
		return s, fmt.Errorf("reset %q: %w", a.Report, ErrUnknownReport)
	}
	return s, nil
}

// Reset is ResetReport run through Reduce.
func Reset(state AppState, code ReportCode, confirm string) (AppState, error) {
	return Reduce(state, ResetReport{Report: code, Confirm: confirm})
}
