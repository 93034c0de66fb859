package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmdatafocus/ghg_reports/models"
)

func TestParseCodes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"all", 3, false},
		{"G-3022", 1, false},
		{"3026, g3027", 2, false},
		{"G-1000", 0, true},
		{" , ", 0, true},
	}
	for _, tt := range tests {
		got, err := parseCodes(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: err = %v", tt.in, err)
			continue
		}
		if len(got) != tt.want {
			t.Errorf("%q: %d codes, want %d", tt.in, len(got), tt.want)
		}
	}
}

func TestRenderAll(t *testing.T) {
	dir := t.TempDir()
	state := models.DefaultAppState(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	written, err := renderAll(state, models.AllReportCodes, dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"G-3022_Report_113-T-0001.xlsx",
		"G-3026_Report_113-T-0001.xlsx",
		"G-3027_Report_113-T-0001_S1.xlsx",
	}
	if len(written) != len(want) {
		t.Fatalf("written = %v", written)
	}
	for i, name := range want {
		if written[i] != filepath.Join(dir, name) {
			t.Errorf("written[%d] = %q, want %q", i, written[i], name)
		}
		if fi, err := os.Stat(written[i]); err != nil || fi.Size() == 0 {
			t.Errorf("%s: %v", name, err)
		}
	}
}
