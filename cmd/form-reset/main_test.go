package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mmdatafocus/ghg_reports/models"
	"github.com/mmdatafocus/ghg_reports/storage"
)

func seedStore(t *testing.T, now time.Time) storage.Store {
	t.Helper()
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "data.json"))
	if err != nil {
		t.Fatal(err)
	}
	state := models.DefaultAppState(now)
	state.Findings.Findings = []models.FindingItem{
		{ID: "f1", Stage: models.StageS1, Description: "meter calibration missing"},
		{ID: "f2", Stage: models.StageS1, Description: "boundary unclear"},
	}
	body, err := models.EncodeState(state)
	if err != nil {
		t.Fatal(err)
	}
	record, err := storage.Stamp(body, now)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(context.Background(), "alice", record); err != nil {
		t.Fatal(err)
	}
	return store
}

func storedFindings(t *testing.T, store storage.Store, now time.Time) int {
	t.Helper()
	raw, err := store.Load(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	s, err := models.DecodeState(raw, now)
	if err != nil {
		t.Fatal(err)
	}
	return len(s.Findings.Findings)
}

func TestResetRecord(t *testing.T) {
	now := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		dry  bool
		want int
	}{
		{name: "dry run keeps record", dry: true, want: 2},
		{name: "reset clears findings", dry: false, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seedStore(t, now)
			var out bytes.Buffer
			if err := resetRecord(context.Background(), store, &out, "alice", models.ReportCodeFindings, tt.dry, now); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out.String(), "2 -> 0") {
				t.Errorf("output = %q", out.String())
			}
			if got := storedFindings(t, store, now); got != tt.want {
				t.Errorf("stored findings = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResetRecordMissingUser(t *testing.T) {
	store := seedStore(t, time.Now())
	err := resetRecord(context.Background(), store, &bytes.Buffer{}, "bob", models.ReportCodeSummary, true, time.Now())
	if err == nil || !strings.Contains(err.Error(), "no record") {
		t.Fatalf("err = %v", err)
	}
}
