package models

import (
	"encoding/json"
	"errors"
	"strings"
)

type ReportCode string

const (
	ReportCodeSummary     ReportCode = "G-3022"
	ReportCodeObservation ReportCode = "G-3026"
	ReportCodeFindings    ReportCode = "G-3027"
)

var AllReportCodes = []ReportCode{ReportCodeSummary, ReportCodeObservation, ReportCodeFindings}

func (c ReportCode) IsValid() bool {
	switch c {
	case ReportCodeSummary, ReportCodeObservation, ReportCodeFindings:
		return true
	}
	return false
}

func (c ReportCode) String() string {
	return string(c)
}

// ParseReportCode accepts "G-3022", "g3022" and "3022".
func ParseReportCode(s string) (ReportCode, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.TrimPrefix(strings.ReplaceAll(v, "-", ""), "G")
	switch v {
	case "3022":
		return ReportCodeSummary, nil
	case "3026":
		return ReportCodeObservation, nil
	case "3027":
		return ReportCodeFindings, nil
	}
	return "", ErrUnknownReport
}

func (c *ReportCode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.New("report code must be string")
	}
	if s == "" {
		*c = ""
		return nil
	}
	code, err := ParseReportCode(s)
	if err != nil {
		return err
	}
	*c = code
	return nil
}

type ComplianceStatus string

const (
	ComplianceStatusCompliant    ComplianceStatus = "符合"
	ComplianceStatusNonCompliant ComplianceStatus = "不符合"
	ComplianceStatusClarify      ComplianceStatus = "待釐清"
	ComplianceStatusNA           ComplianceStatus = "不適用"
)

func (s ComplianceStatus) IsValid() bool {
	switch s {
	case ComplianceStatusCompliant, ComplianceStatusNonCompliant, ComplianceStatusClarify, ComplianceStatusNA:
		return true
	}
	return false
}

type Stage string

const (
	StageS1 Stage = "S1"
	StageS2 Stage = "S2"
)

func (s Stage) IsValid() bool {
	return s == StageS1 || s == StageS2
}

// Terminal reports whether no later stage follows.
func (s Stage) Terminal() bool {
	return s == StageS2
}

type FindingType string

const (
	FindingTypeNone FindingType = ""
	FindingTypeCAR  FindingType = "CAR"
	FindingTypeCR   FindingType = "CR"
	FindingTypeFAR  FindingType = "FAR"
	FindingTypeOBS  FindingType = "OBS"
)

type FindingResult string

const (
	FindingResultNone  FindingResult = ""
	FindingResultClose FindingResult = "Close"
	FindingResultKeep  FindingResult = "Keep"
)

type FindingLocation string

const (
	FindingLocationNone    FindingLocation = ""
	FindingLocationOnSite  FindingLocation = "OnSite"
	FindingLocationOffSite FindingLocation = "OffSite"
)

type FinalConclusion string

const (
	FinalConclusionPass    FinalConclusion = "通過 (Pass)"
	FinalConclusionReduced FinalConclusion = "減少人天 (Reduced Days)"
	FinalConclusionPending FinalConclusion = "待釐清/補正 (Pending)"
)

type YesNo string

const (
	Yes YesNo = "Yes"
	No  YesNo = "No"
)

type S1Result string

const (
	S1ResultNone       S1Result = "None"
	S1ResultNoEffect   S1Result = "NoEffect"
	S1ResultAdjustDays S1Result = "AdjustDays"
	S1ResultUndecided  S1Result = "Undecided"
)

type S2Result string

const (
	S2ResultCorrected  S2Result = "Corrected"
	S2ResultAgree      S2Result = "Agree"
	S2ResultNoFindings S2Result = "NoFindings"
)

// ScopeKind selects the assurance-level scope list of a summary report.
type ScopeKind string

const (
	ScopeKindReasonable ScopeKind = "reasonable"
	ScopeKindLimited    ScopeKind = "limited"
)

// EmissionCategories are the ISO 14064-1 category keys in report order.
var EmissionCategories = []string{"cat1", "cat2", "cat3", "cat4", "cat5", "cat6"}
