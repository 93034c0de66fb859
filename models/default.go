package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultCaseNumber = "113-T-0001"
	isoDateLayout     = "2006-01-02"
)

// NewItemID generates ids for list items added through actions.
var NewItemID = func() string {
	return uuid.NewString()
}

func emptyFindingStats() FindingStats {
	zero := FindingCounts{NonConformity: "0", Observation: "0", Suggestion: "0"}
	return FindingStats{S1: zero, S2: zero}
}

func defaultSummaryConclusion() SummaryConclusion {
	return SummaryConclusion{
		ConflictOfInterest: No,
		Summary:            FinalConclusionPass,
		Interviews:         []InterviewRecord{},
		PendingItems:       []PendingItem{},
	}
}

// DefaultAppState is the state of a user without a stored record.
func DefaultAppState(now time.Time) AppState {
	today := now.Format(isoDateLayout)
	return AppState{
		ActiveReport: ReportCodeSummary,
		Summary: SummaryReport{
			BasicInfo: SummaryBasicInfo{
				ReviewDate:        today,
				VisitDate:         today,
				CaseNumber:        DefaultCaseNumber,
				ReasonableScopes:  []string{"cat1", "cat2"},
				LimitedScopes:     []string{"cat3", "cat4", "cat5", "cat6"},
				Materiality:       "5%",
				BaseYear:          "2022",
				BaseYearEmissions: "0",
				VerificationYear:  "2023",
				IntendedUser:      "預期使用者",
			},
			Checklist:  SeedChecklist(ReportCodeSummary),
			Conclusion: defaultSummaryConclusion(),
		},
		Observation: ObservationReport{
			BasicInfo: ObservationBasicInfo{
				CaseNumber: DefaultCaseNumber,
				Stage:      StageS1,
				Year:       "113",
				CheckDate:  today,
			},
			Checklist:       SeedChecklist(ReportCodeObservation),
			SamplingResults: []SamplingResult{},
			EmissionFactors: []EmissionFactor{},
		},
		Findings: FindingsReport{
			BasicInfo: FindingsBasicInfo{
				CaseNumber:       DefaultCaseNumber,
				Stage:            StageS1,
				VerificationYear: "113",
				Date:             today,
			},
			Findings: []FindingItem{},
			Stats:    emptyFindingStats(),
			Conclusion: FindingsConclusion{
				ProtocolChange: No,
			},
		},
	}
}
