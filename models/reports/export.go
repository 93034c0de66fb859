package reports

import (
	"fmt"
	"strings"

	"github.com/mmdatafocus/ghg_reports/models"
	"github.com/mmdatafocus/ghg_reports/models/reports/layout"
)

const (
	ContentType   = layout.ContentTypeXLSX
	FileExtension = "xlsx"
	draftName     = "Draft"
)

var unsafeFilenameChars = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

// ExportFilename is {Code}_Report_{caseNumber|Draft}[_{stage}].xlsx. Only
// G-3027 carries the stage suffix.
func ExportFilename(code models.ReportCode, s models.AppState) string {
	caseNumber := strings.TrimSpace(CaseNumber(code, s))
	if caseNumber == "" {
		caseNumber = draftName
	}
	name := code.String() + "_Report_" + unsafeFilenameChars.Replace(caseNumber)
	if code == models.ReportCodeFindings {
		stage := s.Findings.BasicInfo.Stage
		if !stage.IsValid() {
			stage = models.StageS1
		}
		name += "_" + string(stage)
	}
	return name + "." + FileExtension
}

// CaseNumber is the case number shown in the report header of code.
func CaseNumber(code models.ReportCode, s models.AppState) string {
	switch code {
	case models.ReportCodeSummary:
		return s.Summary.BasicInfo.CaseNumber
	case models.ReportCodeObservation:
		return s.Observation.BasicInfo.CaseNumber
	case models.ReportCodeFindings:
		return s.Findings.BasicInfo.CaseNumber
	}
	return ""
}

// BuildDocument builds the document of one report from the full state.
// G-3026 reads the G-3022 checklist for its summary table.
func BuildDocument(code models.ReportCode, s models.AppState) (layout.Document, error) {
	switch code {
	case models.ReportCodeSummary:
		return BuildSummaryDocument(s.Summary), nil
	case models.ReportCodeObservation:
		summary := s.Summary
		return BuildObservationDocument(s.Observation, &summary), nil
	case models.ReportCodeFindings:
		return BuildFindingsDocument(s.Findings), nil
	}
	return layout.Document{}, fmt.Errorf("build %q: %w", code, models.ErrUnknownReport)
}

// Generate renders one report of s to workbook bytes.
func Generate(code models.ReportCode, s models.AppState) ([]byte, error) {
	doc, err := BuildDocument(code, s)
	if err != nil {
		return nil, err
	}
	b, err := layout.Render(doc)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", code, err)
	}
	return b, nil
}
