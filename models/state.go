package models

import "slices"

type ChecklistItem struct {
	ID       string           `json:"id" validate:"required"`
	Name     string           `json:"name"`
	DocRef   string           `json:"docRef"`
	FieldObs string           `json:"fieldObs,omitempty"`
	Status   ComplianceStatus `json:"status" validate:"omitempty,oneof=符合 不符合 待釐清 不適用"`
}

type InterviewRecord struct {
	ID     string `json:"id" validate:"required"`
	Topic  string `json:"topic"`
	Record string `json:"record"`
	Result string `json:"result"`
}

type PendingItem struct {
	ID       string `json:"id" validate:"required"`
	Content  string `json:"content"`
	Response string `json:"response"`
}

type SamplingResult struct {
	ID      string `json:"id" validate:"required"`
	Area    string `json:"area"`
	Value   string `json:"value"`
	Source  string `json:"source"`
	Type    string `json:"type"`
	Ratio   string `json:"ratio"`
	Remarks string `json:"remarks"`
}

type EmissionFactor struct {
	ID          string `json:"id" validate:"required"`
	Item        string `json:"item"`
	Source      string `json:"source"`
	Description string `json:"description"`
	Remarks     string `json:"remarks"`
}

type FindingItem struct {
	ID               string          `json:"id" validate:"required"`
	Stage            Stage           `json:"stage" validate:"oneof=S1 S2"`
	Type             FindingType     `json:"type" validate:"omitempty,oneof=CAR CR FAR OBS"`
	Description      string          `json:"description"`
	Reporter         string          `json:"reporter"`
	CorrectiveAction string          `json:"correctiveAction"`
	ReviewOpinion    string          `json:"reviewOpinion"`
	Reviewer         string          `json:"reviewer"`
	Result           FindingResult   `json:"result" validate:"omitempty,oneof=Close Keep"`
	Location         FindingLocation `json:"location" validate:"omitempty,oneof=OnSite OffSite"`
}

// ---------------------------------------------------------------- G-3022

type SummaryBasicInfo struct {
	ClientName        string   `json:"clientName"`
	ClientAddress     string   `json:"clientAddress"`
	ReviewDate        string   `json:"reviewDate"`
	VisitDate         string   `json:"visitDate"`
	CaseNumber        string   `json:"caseNumber"`
	ReasonableScopes  []string `json:"reasonableScopes"`
	LimitedScopes     []string `json:"limitedScopes"`
	Materiality       string   `json:"materiality"`
	BaseYear          string   `json:"baseYear"`
	BaseYearEmissions string   `json:"baseYearEmissions"`
	VerificationYear  string   `json:"verificationYear"`
	IntendedUser      string   `json:"intendedUser"`
	ReportName        string   `json:"reportName"`
	InventoryName     string   `json:"inventoryName"`
	ProcedureName     string   `json:"procedureName"`
}

type Emissions struct {
	Cat1             float64 `json:"cat1"`
	Cat2             float64 `json:"cat2"`
	Cat3             float64 `json:"cat3"`
	Cat4             float64 `json:"cat4"`
	Cat5             float64 `json:"cat5"`
	Cat6             float64 `json:"cat6"`
	UncertaintyUpper string  `json:"uncertaintyUpper"`
	UncertaintyLower string  `json:"uncertaintyLower"`
}

// Categories returns cat1..cat6 in report order.
func (e Emissions) Categories() []float64 {
	return []float64{e.Cat1, e.Cat2, e.Cat3, e.Cat4, e.Cat5, e.Cat6}
}

type SummaryConclusion struct {
	ConflictOfInterest YesNo             `json:"conflictOfInterest" validate:"omitempty,oneof=Yes No"`
	ConflictDetail     string            `json:"conflictDetail"`
	Summary            FinalConclusion   `json:"summary"`
	OtherNote          string            `json:"otherNote"`
	MemoCorrection     bool              `json:"memoCorrection"`
	Interviews         []InterviewRecord `json:"interviews" validate:"dive"`
	PendingItems       []PendingItem     `json:"pendingItems" validate:"dive"`
	VerifierName       string            `json:"verifierName"`
	LeadVerifierName   string            `json:"leadVerifierName"`
	ClientRepName      string            `json:"clientRepName"`
}

// SummaryReport is the G-3022 verification summary.
type SummaryReport struct {
	BasicInfo  SummaryBasicInfo  `json:"basicInfo"`
	Emissions  Emissions         `json:"emissions"`
	Checklist  []ChecklistItem   `json:"checklist" validate:"dive"`
	Conclusion SummaryConclusion `json:"conclusion"`
}

// ---------------------------------------------------------------- G-3026

type ObservationBasicInfo struct {
	CaseNumber      string `json:"caseNumber"`
	Stage           Stage  `json:"stage" validate:"omitempty,oneof=S1 S2"`
	Year            string `json:"year"`
	CheckDate       string `json:"checkDate"`
	ReportInfo      string `json:"reportInfo"`
	InventoryInfo   string `json:"inventoryInfo"`
	PowerFactorInfo string `json:"powerFactorInfo"`
	OtherInfo       string `json:"otherInfo"`
	ClientName      string `json:"clientName"`
	ClientAddress   string `json:"clientAddress"`
}

// ObservationReport is the G-3026 observation record.
type ObservationReport struct {
	BasicInfo        ObservationBasicInfo `json:"basicInfo"`
	Checklist        []ChecklistItem      `json:"checklist" validate:"dive"`
	SamplingResults  []SamplingResult     `json:"samplingResults" validate:"dive"`
	EmissionFactors  []EmissionFactor     `json:"emissionFactors" validate:"dive"`
	OtherObservation string               `json:"otherObservation"`
	LeadVerifierName string               `json:"leadVerifierName"`
}

// ---------------------------------------------------------------- G-3027

type FindingsBasicInfo struct {
	CaseNumber       string `json:"caseNumber"`
	Stage            Stage  `json:"stage" validate:"omitempty,oneof=S1 S2"`
	VerificationYear string `json:"verificationYear"`
	LeadVerifier     string `json:"leadVerifier"`
	AuditeeRep       string `json:"auditeeRep"`
	Date             string `json:"date"`
}

type FindingCounts struct {
	NonConformity string `json:"nonConformity"`
	Observation   string `json:"observation"`
	Suggestion    string `json:"suggestion"`
}

type FindingStats struct {
	S1 FindingCounts `json:"s1"`
	S2 FindingCounts `json:"s2"`
}

// ForStage returns the counts of one stage.
func (s FindingStats) ForStage(stage Stage) FindingCounts {
	if stage == StageS2 {
		return s.S2
	}
	return s.S1
}

type FindingsConclusion struct {
	S1Result           S1Result `json:"s1Result" validate:"omitempty,oneof=None NoEffect AdjustDays Undecided"`
	S1Note             string   `json:"s1Note"`
	S2Result           S2Result `json:"s2Result" validate:"omitempty,oneof=Corrected Agree NoFindings"`
	ProtocolChange     YesNo    `json:"protocolChange" validate:"omitempty,oneof=Yes No"`
	ProtocolChangeNote string   `json:"protocolChangeNote"`
	ReservedOpinion    string   `json:"reservedOpinion"`
	OtherNote          string   `json:"otherNote"`
	AuditeeDate        string   `json:"auditeeDate"`
	VerifierDate       string   `json:"verifierDate"`
}

// FindingsReport is the G-3027 findings and conclusion summary.
type FindingsReport struct {
	BasicInfo  FindingsBasicInfo  `json:"basicInfo"`
	Findings   []FindingItem      `json:"findings" validate:"dive"`
	Stats      FindingStats       `json:"stats"`
	Conclusion FindingsConclusion `json:"conclusion"`
}

// ---------------------------------------------------------------- state

// AppState is the full persisted form state of one user.
type AppState struct {
	ActiveReport ReportCode        `json:"reportType"`
	Summary      SummaryReport     `json:"g3022"`
	Observation  ObservationReport `json:"g3026"`
	Findings     FindingsReport    `json:"g3027"`
}

// Clone returns a copy that shares no slices with s.
func (s AppState) Clone() AppState {
	out := s
	out.Summary = s.Summary.Clone()
	out.Observation = s.Observation.Clone()
	out.Findings = s.Findings.Clone()
	return out
}

func (r SummaryReport) Clone() SummaryReport {
	out := r
	out.BasicInfo.ReasonableScopes = slices.Clone(r.BasicInfo.ReasonableScopes)
	out.BasicInfo.LimitedScopes = slices.Clone(r.BasicInfo.LimitedScopes)
	out.Checklist = slices.Clone(r.Checklist)
	out.Conclusion.Interviews = slices.Clone(r.Conclusion.Interviews)
	out.Conclusion.PendingItems = slices.Clone(r.Conclusion.PendingItems)
	return out
}

func (r ObservationReport) Clone() ObservationReport {
	out := r
	out.Checklist = slices.Clone(r.Checklist)
	out.SamplingResults = slices.Clone(r.SamplingResults)
	out.EmissionFactors = slices.Clone(r.EmissionFactors)
	return out
}

func (r FindingsReport) Clone() FindingsReport {
	out := r
	out.Findings = slices.Clone(r.Findings)
	return out
}
