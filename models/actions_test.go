package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeAction(t *testing.T) {
	tests := []struct {
		name    string
		env     ActionEnvelope
		want    Action
		wantErr error
	}{
		{
			name: "stage",
			env:  ActionEnvelope{Type: "setFindingsStage", Payload: json.RawMessage(`{"stage":"S2"}`)},
			want: &SetFindingsStage{Stage: StageS2},
		},
		{
			name: "no payload",
			env:  ActionEnvelope{Type: "addInterview"},
			want: &AddInterview{},
		},
		{
			name:    "unknown type",
			env:     ActionEnvelope{Type: "dropTables"},
			wantErr: ErrUnknownAction,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeAction(tt.env)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			gotJSON, _ := json.Marshal(got)
			wantJSON, _ := json.Marshal(tt.want)
			if string(gotJSON) != string(wantJSON) {
				t.Errorf("action = %s, want %s", gotJSON, wantJSON)
			}
		})
	}
}

func TestDecodeActionValidates(t *testing.T) {
	_, err := DecodeAction(ActionEnvelope{Type: "setFindingsStage", Payload: json.RawMessage(`{"stage":"S9"}`)})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if len(verr.Fields) == 0 {
		t.Error("no field errors reported")
	}
}

func TestEveryRegisteredActionDecodes(t *testing.T) {
	for _, name := range ActionTypes() {
		if _, ok := actionRegistry[name]; !ok {
			t.Errorf("%s listed but not registered", name)
		}
	}
	if len(ActionTypes()) != len(actionRegistry) {
		t.Error("ActionTypes is incomplete")
	}
}

func TestChecklistActions(t *testing.T) {
	s := DefaultAppState(testDay)
	var header, child string
	for _, it := range s.Summary.Checklist {
		if it.IsHeader() && header == "" {
			header = it.ID
		}
		if !it.IsHeader() && child == "" {
			child = it.ID
		}
	}

	tests := []struct {
		name    string
		action  Action
		wantErr error
	}{
		{"mark child", SetChecklistStatus{Report: ReportCodeSummary, ItemID: child, Status: ComplianceStatusNonCompliant}, nil},
		{"mark header", SetChecklistStatus{Report: ReportCodeSummary, ItemID: header, Status: ComplianceStatusCompliant}, ErrHeaderNotMarkable},
		{"unknown item", SetChecklistStatus{Report: ReportCodeSummary, ItemID: "99.99", Status: ComplianceStatusCompliant}, ErrItemNotFound},
		{"bad status", SetChecklistStatus{Report: ReportCodeSummary, ItemID: child, Status: "maybe"}, ErrInvalidStatus},
		{"findings has no checklist", SetAllCompliant{Report: ReportCodeFindings}, ErrUnknownReport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Reduce(s, tt.action)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			i := findChecklistItem(out.Summary.Checklist, child)
			if out.Summary.Checklist[i].Status != ComplianceStatusNonCompliant {
				t.Errorf("status = %q", out.Summary.Checklist[i].Status)
			}
			j := findChecklistItem(s.Summary.Checklist, child)
			if s.Summary.Checklist[j].Status == ComplianceStatusNonCompliant {
				t.Error("Reduce modified its input")
			}
		})
	}
}

func TestSetAllCompliantSkipsHeaders(t *testing.T) {
	s, err := Reduce(DefaultAppState(testDay), SetAllCompliant{Report: ReportCodeObservation})
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range s.Observation.Checklist {
		if it.IsHeader() && it.Status == ComplianceStatusCompliant {
			t.Errorf("header %s marked", it.ID)
		}
		if !it.IsHeader() && it.Status != ComplianceStatusCompliant {
			t.Errorf("item %s = %q", it.ID, it.Status)
		}
	}
}

func TestGroupChecklist(t *testing.T) {
	items := []ChecklistItem{
		{ID: "1"}, {ID: "1.1"}, {ID: "1.2"},
		{ID: "2.1"},
		{ID: "3"}, {ID: "3.1"}, {ID: "1.3"},
	}
	groups := GroupChecklist(items)
	if len(groups) != 3 {
		t.Fatalf("groups = %d", len(groups))
	}
	if groups[0].Header == nil || len(groups[0].Children) != 3 {
		t.Errorf("group 1 = %+v", groups[0])
	}
	if groups[1].Header != nil || len(groups[1].Rows()) != 1 {
		t.Errorf("group 2 = %+v", groups[1])
	}
	if got := groups[0].Rows()[0].ID; got != "1" {
		t.Errorf("first row = %q", got)
	}
}

func TestRemoveMissingItem(t *testing.T) {
	_, err := Reduce(DefaultAppState(testDay), RemoveSamplingResult{ID: "nope"})
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("err = %v", err)
	}
}
