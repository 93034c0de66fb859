package reports

import "github.com/mmdatafocus/ghg_reports/models"

// Legend maps a compliance status to the symbol a document prints for it.
// Each document variant carries its own legend, printed in its table header.
type Legend struct {
	Name    string
	Symbols map[models.ComplianceStatus]string
	// Fallback covers an empty or unknown status.
	Fallback string
}

// Glyph returns the legend symbol for status.
func (l Legend) Glyph(status models.ComplianceStatus) string {
	if g, ok := l.Symbols[status]; ok {
		return g
	}
	return l.Fallback
}

// SummaryLegend is the G-3022 checklist legend: ○ compliant, X needs
// clarification or is non-compliant, ― not applicable.
var SummaryLegend = Legend{
	Name: "G-3022",
	Symbols: map[models.ComplianceStatus]string{
		models.ComplianceStatusCompliant:    "○",
		models.ComplianceStatusNonCompliant: "X",
		models.ComplianceStatusClarify:      "X",
		models.ComplianceStatusNA:           "―",
	},
	Fallback: "―",
}

// ObservationLegend is the G-3026 legend, used for its own checklist and
// for the G-3022 summary it reprints.
var ObservationLegend = Legend{
	Name: "G-3026",
	Symbols: map[models.ComplianceStatus]string{
		models.ComplianceStatusCompliant:    "O",
		models.ComplianceStatusNonCompliant: "X",
		models.ComplianceStatusClarify:      "X",
		models.ComplianceStatusNA:           "―",
	},
	Fallback: "―",
}

// CheckboxStyle is a pair of checked and unchecked glyphs.
type CheckboxStyle struct {
	On, Off string
}

var (
	// FilledBox is used by G-3022.
	FilledBox = CheckboxStyle{On: "■", Off: "□"}
	// TickedBox is used by G-3026 and G-3027.
	TickedBox = CheckboxStyle{On: "☑", Off: "□"}
)

func (c CheckboxStyle) Glyph(checked bool) string {
	if checked {
		return c.On
	}
	return c.Off
}
