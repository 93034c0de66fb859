package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Action is one edit of the application state. Source names the report whose
// model the action edits; it is empty for selection-only actions.
type Action interface {
	Source() ReportCode
	Apply(state AppState) (AppState, error)
}

// Reduce applies an action to a copy of state and runs the derived steps:
// findings statistics and cross-form sync. On error the input state is
// returned unchanged.
func Reduce(state AppState, action Action) (AppState, error) {
	next, err := action.Apply(state.Clone())
	if err != nil {
		return state, err
	}
	src := action.Source()
	if src == "" {
		return next, nil
	}
	if src == ReportCodeFindings {
		next.Findings = normalizeFindings(state.Findings.BasicInfo.Stage, next.Findings, NewItemID)
	}
	return Sync(src, next), nil
}

// ---------------------------------------------------------------- selection

type SetActiveReport struct {
	Report ReportCode `json:"report" validate:"required"`
}

func (a SetActiveReport) Source() ReportCode { return "" }

func (a SetActiveReport) Apply(s AppState) (AppState, error) {
	if !a.Report.IsValid() {
		return s, ErrUnknownReport
	}
	s.ActiveReport = a.Report
	return s, nil
}

// ---------------------------------------------------------------- whole-report edits

type ReplaceSummary struct {
	Report SummaryReport `json:"report"`
}

func (a ReplaceSummary) Source() ReportCode { return ReportCodeSummary }

func (a ReplaceSummary) Apply(s AppState) (AppState, error) {
	s.Summary = a.Report.Clone()
	return s, nil
}

type ReplaceObservation struct {
	Report ObservationReport `json:"report"`
}

func (a ReplaceObservation) Source() ReportCode { return ReportCodeObservation }

func (a ReplaceObservation) Apply(s AppState) (AppState, error) {
	s.Observation = a.Report.Clone()
	return s, nil
}

type ReplaceFindings struct {
	Report FindingsReport `json:"report"`
}

func (a ReplaceFindings) Source() ReportCode { return ReportCodeFindings }

func (a ReplaceFindings) Apply(s AppState) (AppState, error) {
	s.Findings = a.Report.Clone()
	return s, nil
}

// ---------------------------------------------------------------- checklist

type SetChecklistStatus struct {
	Report ReportCode       `json:"report" validate:"required"`
	ItemID string           `json:"itemId" validate:"required"`
	Status ComplianceStatus `json:"status" validate:"required"`
}

func (a SetChecklistStatus) Source() ReportCode { return a.Report }

func (a SetChecklistStatus) Apply(s AppState) (AppState, error) {
	items, err := checklistOf(&s, a.Report)
	if err != nil {
		return s, err
	}
	return s, setChecklistStatus(*items, a.ItemID, a.Status)
}

// UpdateChecklistItem edits the free-text columns of one item. Nil fields are left as is.
type UpdateChecklistItem struct {
	Report   ReportCode `json:"report" validate:"required"`
	ItemID   string     `json:"itemId" validate:"required"`
	DocRef   *string    `json:"docRef"`
	FieldObs *string    `json:"fieldObs"`
}

func (a UpdateChecklistItem) Source() ReportCode { return a.Report }

func (a UpdateChecklistItem) Apply(s AppState) (AppState, error) {
	items, err := checklistOf(&s, a.Report)
	if err != nil {
		return s, err
	}
	i := findChecklistItem(*items, a.ItemID)
	if i < 0 {
		return s, ErrItemNotFound
	}
	if a.DocRef != nil {
		(*items)[i].DocRef = *a.DocRef
	}
	if a.FieldObs != nil {
		(*items)[i].FieldObs = *a.FieldObs
	}
	return s, nil
}

type SetAllCompliant struct {
	Report ReportCode `json:"report" validate:"required"`
}

func (a SetAllCompliant) Source() ReportCode { return a.Report }

func (a SetAllCompliant) Apply(s AppState) (AppState, error) {
	items, err := checklistOf(&s, a.Report)
	if err != nil {
		return s, err
	}
	markAllCompliant(*items)
	return s, nil
}

func checklistOf(s *AppState, code ReportCode) (*[]ChecklistItem, error) {
	switch code {
	case ReportCodeSummary:
		return &s.Summary.Checklist, nil
	case ReportCodeObservation:
		return &s.Observation.Checklist, nil
	}
	return nil, fmt.Errorf("%s has no checklist: %w", code, ErrUnknownReport)
}

// ---------------------------------------------------------------- G-3022 fields

type ToggleScope struct {
	Kind  ScopeKind `json:"kind" validate:"oneof=reasonable limited"`
	Scope string    `json:"scope" validate:"required"`
}

func (a ToggleScope) Source() ReportCode { return ReportCodeSummary }

func (a ToggleScope) Apply(s AppState) (AppState, error) {
	list := &s.Summary.BasicInfo.ReasonableScopes
	if a.Kind == ScopeKindLimited {
		list = &s.Summary.BasicInfo.LimitedScopes
	}
	if i := slices.Index(*list, a.Scope); i >= 0 {
		*list = slices.Delete(*list, i, i+1)
	} else {
		*list = append(*list, a.Scope)
	}
	return s, nil
}

// SetEmission sets one emissions field. Category values that do not parse become 0.
type SetEmission struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

func (a SetEmission) Source() ReportCode { return ReportCodeSummary }

func (a SetEmission) Apply(s AppState) (AppState, error) {
	e := &s.Summary.Emissions
	switch a.Field {
	case "uncertaintyUpper":
		e.UncertaintyUpper = a.Value
		return s, nil
	case "uncertaintyLower":
		e.UncertaintyLower = a.Value
		return s, nil
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
	if err != nil {
		num = 0
	}
	switch a.Field {
	case "cat1":
		e.Cat1 = num
	case "cat2":
		e.Cat2 = num
	case "cat3":
		e.Cat3 = num
	case "cat4":
		e.Cat4 = num
	case "cat5":
		e.Cat5 = num
	case "cat6":
		e.Cat6 = num
	default:
		return s, ErrInvalidEmissionKey
	}
	return s, nil
}

type AddInterview struct{}

func (a AddInterview) Source() ReportCode { return ReportCodeSummary }

func (a AddInterview) Apply(s AppState) (AppState, error) {
	s.Summary.Conclusion.Interviews = append(s.Summary.Conclusion.Interviews, InterviewRecord{ID: NewItemID()})
	return s, nil
}

type UpdateInterview struct {
	Item InterviewRecord `json:"item"`
}

func (a UpdateInterview) Source() ReportCode { return ReportCodeSummary }

func (a UpdateInterview) Apply(s AppState) (AppState, error) {
	return s, replaceByID(s.Summary.Conclusion.Interviews, a.Item)
}

type RemoveInterview struct {
	ID string `json:"id" validate:"required"`
}

func (a RemoveInterview) Source() ReportCode { return ReportCodeSummary }

func (a RemoveInterview) Apply(s AppState) (AppState, error) {
	var err error
	s.Summary.Conclusion.Interviews, err = removeByID(s.Summary.Conclusion.Interviews, a.ID)
	return s, err
}

type AddPendingItem struct{}

func (a AddPendingItem) Source() ReportCode { return ReportCodeSummary }

func (a AddPendingItem) Apply(s AppState) (AppState, error) {
	s.Summary.Conclusion.PendingItems = append(s.Summary.Conclusion.PendingItems, PendingItem{ID: NewItemID()})
	return s, nil
}

type UpdatePendingItem struct {
	Item PendingItem `json:"item"`
}

func (a UpdatePendingItem) Source() ReportCode { return ReportCodeSummary }

func (a UpdatePendingItem) Apply(s AppState) (AppState, error) {
	return s, replaceByID(s.Summary.Conclusion.PendingItems, a.Item)
}

type RemovePendingItem struct {
	ID string `json:"id" validate:"required"`
}

func (a RemovePendingItem) Source() ReportCode { return ReportCodeSummary }

func (a RemovePendingItem) Apply(s AppState) (AppState, error) {
	var err error
	s.Summary.Conclusion.PendingItems, err = removeByID(s.Summary.Conclusion.PendingItems, a.ID)
	return s, err
}

// ---------------------------------------------------------------- G-3026 collections

type AddSamplingResult struct{}

func (a AddSamplingResult) Source() ReportCode { return ReportCodeObservation }

func (a AddSamplingResult) Apply(s AppState) (AppState, error) {
	s.Observation.SamplingResults = append(s.Observation.SamplingResults, SamplingResult{ID: NewItemID()})
	return s, nil
}

type UpdateSamplingResult struct {
	Item SamplingResult `json:"item"`
}

func (a UpdateSamplingResult) Source() ReportCode { return ReportCodeObservation }

func (a UpdateSamplingResult) Apply(s AppState) (AppState, error) {
	return s, replaceByID(s.Observation.SamplingResults, a.Item)
}

type RemoveSamplingResult struct {
	ID string `json:"id" validate:"required"`
}

func (a RemoveSamplingResult) Source() ReportCode { return ReportCodeObservation }

func (a RemoveSamplingResult) Apply(s AppState) (AppState, error) {
	var err error
	s.Observation.SamplingResults, err = removeByID(s.Observation.SamplingResults, a.ID)
	return s, err
}

type AddEmissionFactor struct{}

func (a AddEmissionFactor) Source() ReportCode { return ReportCodeObservation }

func (a AddEmissionFactor) Apply(s AppState) (AppState, error) {
	s.Observation.EmissionFactors = append(s.Observation.EmissionFactors, EmissionFactor{ID: NewItemID()})
	return s, nil
}

type UpdateEmissionFactor struct {
	Item EmissionFactor `json:"item"`
}

func (a UpdateEmissionFactor) Source() ReportCode { return ReportCodeObservation }

func (a UpdateEmissionFactor) Apply(s AppState) (AppState, error) {
	return s, replaceByID(s.Observation.EmissionFactors, a.Item)
}

type RemoveEmissionFactor struct {
	ID string `json:"id" validate:"required"`
}

func (a RemoveEmissionFactor) Source() ReportCode { return ReportCodeObservation }

func (a RemoveEmissionFactor) Apply(s AppState) (AppState, error) {
	var err error
	s.Observation.EmissionFactors, err = removeByID(s.Observation.EmissionFactors, a.ID)
	return s, err
}

// ---------------------------------------------------------------- G-3027 findings

type AddFinding struct {
	Stage Stage `json:"stage" validate:"oneof=S1 S2"`
}

func (a AddFinding) Source() ReportCode { return ReportCodeFindings }

func (a AddFinding) Apply(s AppState) (AppState, error) {
	if !a.Stage.IsValid() {
		return s, ErrInvalidStage
	}
	s.Findings.Findings = append(s.Findings.Findings, FindingItem{ID: NewItemID(), Stage: a.Stage})
	return s, nil
}

type UpdateFinding struct {
	Item FindingItem `json:"item"`
}

func (a UpdateFinding) Source() ReportCode { return ReportCodeFindings }

func (a UpdateFinding) Apply(s AppState) (AppState, error) {
	return s, replaceByID(s.Findings.Findings, a.Item)
}

type RemoveFinding struct {
	ID string `json:"id" validate:"required"`
}

func (a RemoveFinding) Source() ReportCode { return ReportCodeFindings }

func (a RemoveFinding) Apply(s AppState) (AppState, error) {
	var err error
	s.Findings.Findings, err = removeByID(s.Findings.Findings, a.ID)
	return s, err
}

// SetFindingsStage switches the active verification stage of G-3027.
// Advancing to S2 carries over the kept S1 findings.
type SetFindingsStage struct {
	Stage Stage `json:"stage" validate:"oneof=S1 S2"`
}

func (a SetFindingsStage) Source() ReportCode { return ReportCodeFindings }

func (a SetFindingsStage) Apply(s AppState) (AppState, error) {
	if !a.Stage.IsValid() {
		return s, ErrInvalidStage
	}
	s.Findings.BasicInfo.Stage = a.Stage
	return s, nil
}

// CarryOverFindings runs the S1 to S2 carry-over on demand.
type CarryOverFindings struct{}

func (a CarryOverFindings) Source() ReportCode { return ReportCodeFindings }

func (a CarryOverFindings) Apply(s AppState) (AppState, error) {
	s.Findings.Findings, _ = CarryOverKeptFindings(s.Findings.Findings, NewItemID)
	return s, nil
}

// ---------------------------------------------------------------- helpers

type identified interface {
	itemID() string
}

func (r InterviewRecord) itemID() string { return r.ID }
func (r PendingItem) itemID() string     { return r.ID }
func (r SamplingResult) itemID() string  { return r.ID }
func (r EmissionFactor) itemID() string  { return r.ID }
func (r FindingItem) itemID() string     { return r.ID }

func replaceByID[T identified](items []T, item T) error {
	for i := range items {
		if items[i].itemID() == item.itemID() {
			items[i] = item
			return nil
		}
	}
	return fmt.Errorf("%s: %w", item.itemID(), ErrItemNotFound)
}

func removeByID[T identified](items []T, id string) ([]T, error) {
	for i := range items {
		if items[i].itemID() == id {
			return slices.Delete(items, i, i+1), nil
		}
	}
	return items, fmt.Errorf("%s: %w", id, ErrItemNotFound)
}

// ---------------------------------------------------------------- decoding

// ActionEnvelope is the wire form of an action.
type ActionEnvelope struct {
	Type    string          `json:"type" validate:"required"`
	Payload json.RawMessage `json:"payload"`
}

var actionRegistry = map[string]func() Action{
	"setActiveReport":      func() Action { return &SetActiveReport{} },
	"replaceSummary":       func() Action { return &ReplaceSummary{} },
	"replaceObservation":   func() Action { return &ReplaceObservation{} },
	"replaceFindings":      func() Action { return &ReplaceFindings{} },
	"setChecklistStatus":   func() Action { return &SetChecklistStatus{} },
	"updateChecklistItem":  func() Action { return &UpdateChecklistItem{} },
	"setAllCompliant":      func() Action { return &SetAllCompliant{} },
	"toggleScope":          func() Action { return &ToggleScope{} },
	"setEmission":          func() Action { return &SetEmission{} },
	"addInterview":         func() Action { return &AddInterview{} },
	"updateInterview":      func() Action { return &UpdateInterview{} },
	"removeInterview":      func() Action { return &RemoveInterview{} },
	"addPendingItem":       func() Action { return &AddPendingItem{} },
	"updatePendingItem":    func() Action { return &UpdatePendingItem{} },
	"removePendingItem":    func() Action { return &RemovePendingItem{} },
	"addSamplingResult":    func() Action { return &AddSamplingResult{} },
	"updateSamplingResult": func() Action { return &UpdateSamplingResult{} },
	"removeSamplingResult": func() Action { return &RemoveSamplingResult{} },
	"addEmissionFactor":    func() Action { return &AddEmissionFactor{} },
	"updateEmissionFactor": func() Action { return &UpdateEmissionFactor{} },
	"removeEmissionFactor": func() Action { return &RemoveEmissionFactor{} },
	"addFinding":           func() Action { return &AddFinding{} },
	"updateFinding":        func() Action { return &UpdateFinding{} },
	"removeFinding":        func() Action { return &RemoveFinding{} },
	"setFindingsStage":     func() Action { return &SetFindingsStage{} },
	"carryOverFindings":    func() Action { return &CarryOverFindings{} },
	"resetReport":          func() Action { return &ResetReport{} },
}

// DecodeAction resolves an envelope to a validated action.
func DecodeAction(env ActionEnvelope) (Action, error) {
	newAction, ok := actionRegistry[env.Type]
	if !ok {
		return nil, fmt.Errorf("%q: %w", env.Type, ErrUnknownAction)
	}
	action := newAction()
	if len(env.Payload) > 0 && string(env.Payload) != "null" {
		if err := json.Unmarshal(env.Payload, action); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
	}
	if err := ValidateStruct(action); err != nil {
		return nil, err
	}
	return action, nil
}

// ActionTypes lists the registered action names.
func ActionTypes() []string {
	names := make([]string, 0, len(actionRegistry))
	for name := range actionRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
