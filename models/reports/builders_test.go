package reports

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mmdatafocus/ghg_reports/models"
	"github.com/mmdatafocus/ghg_reports/models/reports/layout"
	"github.com/xuri/excelize/v2"
)

func testState() models.AppState {
	return models.DefaultAppState(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
}

// tableWithColumns finds the first table of sec with the given column count.
func tableWithColumns(t *testing.T, sec layout.Section, n int) *layout.Table {
	t.Helper()
	for _, tbl := range sec.Tables() {
		if len(tbl.Columns) == n {
			return tbl
		}
	}
	t.Fatalf("section %q has no %d-column table", sec.Name, n)
	return nil
}

func finding(id string, stage models.Stage, typ models.FindingType, result models.FindingResult) models.FindingItem {
	return models.FindingItem{ID: id, Stage: stage, Type: typ, Description: "desc " + id, Result: result}
}

func TestFindingsSectionOmittedAtEmptyS2(t *testing.T) {
	cases := []struct {
		name     string
		stage    models.Stage
		findings []models.FindingItem
		want     []string
	}{
		{
			name:  "S1 without findings keeps the page",
			stage: models.StageS1,
			want:  []string{FindingsSectionFindings, FindingsSectionConclusion},
		},
		{
			name:     "S2 with only S1 findings drops the page",
			stage:    models.StageS2,
			findings: []models.FindingItem{finding("a", models.StageS1, models.FindingTypeCAR, models.FindingResultClose)},
			want:     []string{FindingsSectionConclusion},
		},
		{
			name:     "S2 with S2 findings keeps the page",
			stage:    models.StageS2,
			findings: []models.FindingItem{finding("b", models.StageS2, models.FindingTypeOBS, "")},
			want:     []string{FindingsSectionFindings, FindingsSectionConclusion},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := testState().Findings
			r.BasicInfo.Stage = c.stage
			r.Findings = c.findings
			got := BuildFindingsDocument(r).SectionNames()
			if strings.Join(got, "|") != strings.Join(c.want, "|") {
				t.Fatalf("sections = %v, want %v", got, c.want)
			}
		})
	}
}

func TestFindingsTablePadsToMinimum(t *testing.T) {
	r := testState().Findings
	r.Findings = []models.FindingItem{
		finding("1", models.StageS1, models.FindingTypeCAR, models.FindingResultKeep),
		finding("2", models.StageS2, models.FindingTypeFAR, ""),
	}
	doc := BuildFindingsDocument(r)
	sec, ok := doc.Section(FindingsSectionFindings)
	if !ok {
		t.Fatal("findings section missing")
	}
	tbl := tableWithColumns(t, sec, len(findingsColumns))
	data := tbl.RowsOfKind(layout.RowData)
	padding := tbl.RowsOfKind(layout.RowPadding)
	if len(data) != 1 || len(padding) != FindingsMinRows-1 {
		t.Fatalf("data=%d padding=%d", len(data), len(padding))
	}
	if got := data[0].Cells[0].Text(); got != "1" {
		t.Errorf("first index = %q", got)
	}
	if got := data[0].Cells[2].Text(); got != "desc 1" {
		t.Errorf("description = %q", got)
	}
	for _, row := range padding {
		if got := row.Cells[0].Text(); got != "" {
			t.Errorf("padding row index = %q", got)
		}
	}
}

func TestFindingsTableGrowsPastMinimum(t *testing.T) {
	r := testState().Findings
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		r.Findings = append(r.Findings, finding(id, models.StageS1, models.FindingTypeCR, ""))
	}
	sec, _ := BuildFindingsDocument(r).Section(FindingsSectionFindings)
	tbl := tableWithColumns(t, sec, len(findingsColumns))
	if got := len(tbl.RowsOfKind(layout.RowData)); got != 5 {
		t.Fatalf("data rows = %d", got)
	}
	if got := len(tbl.RowsOfKind(layout.RowPadding)); got != 0 {
		t.Fatalf("padding rows = %d", got)
	}
}

func TestFindingsStatsIgnoreStoredCounts(t *testing.T) {
	r := testState().Findings
	r.Findings = []models.FindingItem{
		finding("1", models.StageS1, models.FindingTypeCAR, ""),
		finding("2", models.StageS1, models.FindingTypeCR, ""),
		finding("3", models.StageS2, models.FindingTypeOBS, ""),
		finding("4", models.StageS2, models.FindingTypeFAR, ""),
	}
	r.Stats.S1.NonConformity = "99"
	sec, _ := BuildFindingsDocument(r).Section(FindingsSectionConclusion)
	tbl := tableWithColumns(t, sec, 5)
	rows := tbl.RowsOfKind(layout.RowData)
	want := [][2]string{{"1", "0"}, {"1", "1"}, {"0", "1"}}
	for i, w := range want {
		s1, s2 := rows[i].Cells[2].Text(), rows[i].Cells[4].Text()
		if s1 != w[0] || s2 != w[1] {
			t.Errorf("%s = %s/%s, want %s/%s", rows[i].Cells[0].Text(), s1, s2, w[0], w[1])
		}
	}
}

func TestObservationChecklistGroups(t *testing.T) {
	r := testState().Observation
	r.Checklist = []models.ChecklistItem{
		{ID: "1", Name: "組織邊界"},
		{ID: "1.1", Name: "a", Status: models.ComplianceStatusCompliant},
		{ID: "1.2", Name: "b", Status: models.ComplianceStatusClarify},
		{ID: "2", Name: "報告邊界"},
		{ID: "2.1", Name: "c", Status: models.ComplianceStatusNA},
		{ID: "7.1", Name: "orphan"},
	}
	sec, ok := BuildObservationDocument(r, nil).Section(ObservationSectionChecklist)
	if !ok {
		t.Fatal("checklist section missing")
	}
	tbl := tableWithColumns(t, sec, 5)

	var spans []int
	var titles []string
	var glyphs []string
	for _, row := range tbl.Rows {
		if row.Kind != layout.RowData && row.Kind != layout.RowSection {
			continue
		}
		if first := row.Cells[0]; first.RowSpan > 0 {
			spans = append(spans, first.RowSpan)
			titles = append(titles, first.Text())
		}
		if row.Kind == layout.RowData {
			glyphs = append(glyphs, row.Cells[len(row.Cells)-1].Text())
		}
	}
	if got, want := spans, []int{3, 2, 1}; len(got) != len(want) || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Fatalf("group spans = %v, want %v", got, want)
	}
	if titles[0] != "1.組織邊界" || titles[1] != "2.報告邊界" || titles[2] != "7" {
		t.Fatalf("group titles = %v", titles)
	}
	if strings.Join(glyphs, "") != "OX――" {
		t.Fatalf("glyphs = %v", glyphs)
	}
	if got := len(tbl.RowsOfKind(layout.RowSection)); got != 2 {
		t.Fatalf("header rows = %d", got)
	}
}

func TestObservationSummaryUsesObservationLegend(t *testing.T) {
	s := testState()
	s.Summary.Checklist = []models.ChecklistItem{
		{ID: "1", Name: "header"},
		{ID: "1.1", Name: "child", Status: models.ComplianceStatusCompliant},
	}
	sec, _ := BuildObservationDocument(s.Observation, &s.Summary).Section(ObservationSectionSummary)
	tbl := tableWithColumns(t, sec, 3)
	data := tbl.RowsOfKind(layout.RowData)
	if len(data) != 1 || data[0].Cells[1].Text() != "O" {
		t.Fatalf("summary rows = %+v", data)
	}
	if got := len(tbl.RowsOfKind(layout.RowSection)); got != 1 {
		t.Fatalf("section rows = %d", got)
	}
}

func TestObservationAppendicesAreLandscape(t *testing.T) {
	r := testState().Observation
	r.SamplingResults = []models.SamplingResult{{ID: "s", Area: "A", Type: "電費單", Ratio: "12/12"}}
	doc := BuildObservationDocument(r, nil)
	for _, name := range []string{ObservationSectionSampling, ObservationSectionFactors} {
		sec, ok := doc.Section(name)
		if !ok || sec.Orientation != layout.Landscape {
			t.Errorf("%s missing or not landscape", name)
		}
	}
	sec, _ := doc.Section(ObservationSectionSampling)
	row := tableWithColumns(t, sec, 7).RowsOfKind(layout.RowData)[0]
	if row.Cells[4].Text() != "電費單" || row.Cells[5].Text() != "12/12" {
		t.Fatalf("type/ratio = %q/%q", row.Cells[4].Text(), row.Cells[5].Text())
	}
}

func TestSummaryInterviewAppendixIsConditional(t *testing.T) {
	r := testState().Summary
	doc := BuildSummaryDocument(r)
	if _, ok := doc.Section(SummarySectionInterviews); ok {
		t.Fatal("interview appendix present without interviews")
	}
	if _, ok := doc.Section(SummarySectionPending); !ok {
		t.Fatal("pending section must always be present")
	}
	sec, _ := doc.Section(SummarySectionPending)
	if got := len(tableWithColumns(t, sec, 3).RowsOfKind(layout.RowPadding)); got != 1 {
		t.Fatalf("empty pending table padding rows = %d", got)
	}

	r.Conclusion.Interviews = []models.InterviewRecord{{ID: "i1", Topic: "邊界", Record: "ok", Result: "符合"}}
	doc = BuildSummaryDocument(r)
	want := []string{SummarySectionMain, SummarySectionInterviews, SummarySectionPending}
	if got := doc.SectionNames(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("sections = %v", got)
	}
}

func TestSummaryChecklistGlyphs(t *testing.T) {
	r := testState().Summary
	r.Checklist = []models.ChecklistItem{
		{ID: "1", Name: "邊界"},
		{ID: "1.1", Name: "x", Status: models.ComplianceStatusCompliant},
		{ID: "1.2", Name: "y", Status: models.ComplianceStatusClarify},
		{ID: "1.3", Name: "z"},
	}
	sec, _ := BuildSummaryDocument(r).Section(SummarySectionMain)
	tbl := tableWithColumns(t, sec, 4)
	var glyphs []string
	for _, row := range tbl.RowsOfKind(layout.RowData) {
		glyphs = append(glyphs, row.Cells[3].Text())
	}
	if strings.Join(glyphs, "") != "○X―" {
		t.Fatalf("glyphs = %v", glyphs)
	}
}

func TestGenerateRendersEveryReport(t *testing.T) {
	s := testState()
	s.Summary.Emissions = models.Emissions{Cat1: 1200.5, Cat2: 300}
	s.Findings.Findings = []models.FindingItem{finding("1", models.StageS1, models.FindingTypeCAR, models.FindingResultKeep)}
	for _, code := range models.AllReportCodes {
		b, err := Generate(code, s)
		if err != nil {
			t.Fatalf("Generate(%s): %v", code, err)
		}
		f, err := excelize.OpenReader(bytes.NewReader(b))
		if err != nil {
			t.Fatalf("OpenReader(%s): %v", code, err)
		}
		doc, _ := BuildDocument(code, s)
		if got := len(f.GetSheetList()); got != len(doc.Sections) {
			t.Errorf("%s sheets = %d, want %d", code, got, len(doc.Sections))
		}
		props, err := f.GetDocProps()
		if err != nil {
			t.Fatalf("GetDocProps(%s): %v", code, err)
		}
		if !strings.HasPrefix(props.Title, code.String()) {
			t.Errorf("%s title = %q", code, props.Title)
		}
		f.Close()
	}
	if _, err := Generate("G-9999", s); err == nil {
		t.Fatal("expected error for an unknown report")
	}
}

func TestGenerateWithLongCJKCaseNumber(t *testing.T) {
	for _, caseNumber := range []string{"113-T-0001", strings.Repeat("案", 10), strings.Repeat("案", 20), strings.Repeat("案", 40)} {
		s := testState()
		s.Summary.BasicInfo.CaseNumber = caseNumber
		s.Observation.BasicInfo.CaseNumber = caseNumber
		s.Findings.BasicInfo.CaseNumber = caseNumber
		for _, code := range models.AllReportCodes {
			if _, err := Generate(code, s); err != nil {
				t.Errorf("Generate(%s, %d runes): %v", code, len([]rune(caseNumber)), err)
			}
		}
	}
}
