// Package reports builds the G-3022, G-3026 and G-3027 verification
// documents from the form models. Builders return a layout.Document and never
// fail; rendering to bytes happens in Generate*.
package reports

import (
	"strconv"

	"github.com/mmdatafocus/ghg_reports/models"
	"github.com/mmdatafocus/ghg_reports/models/reports/layout"
)

const (
	companyName   = "旭威認證股份有限公司 查驗機構"
	formVersion   = "1141017 版"
	criteriaText  = "ISO 14064-1(2018 年版)/CNS 14064-1(2021 年版)"
	headerCaseMax = 20
	documentBy    = "ghg_reports"
)

var documentFont = layout.Font{Latin: "Times New Roman", EastAsia: "標楷體", Size: 12}

// A4 printable widths for 1.5 cm side margins.
const (
	portraitWidth  = 10205
	landscapeWidth = 15136
)

var standardMargins = layout.Margins{Top: 1134, Bottom: 1134, Left: 851, Right: 851, Header: 454, Footer: 454}

func newDocument(code models.ReportCode, title string) layout.Document {
	return layout.Document{
		Title:   code.String() + " " + title,
		Subject: title,
		Creator: documentBy,
		Font:    documentFont,
	}
}

// pageNumberFooter is the version | page / pages | form code strip shared by
// every form.
func pageNumberFooter(code models.ReportCode, leftLines ...string) layout.HeaderFooter {
	left := make([]layout.Run, 0, len(leftLines)+1)
	for _, l := range leftLines {
		left = append(left, layout.Run{Text: l + "\n", Size: 10})
	}
	left = append(left, layout.Run{Text: formVersion, Size: 10})
	return layout.HeaderFooter{
		Left: left,
		Center: []layout.Run{
			{Field: layout.FieldPage, Size: 10},
			{Text: " / ", Size: 10},
			{Field: layout.FieldPages, Size: 10},
		},
		Right: []layout.Run{{Text: code.String(), Size: 10}},
	}
}

func caseNumberLine(caseNumber string) string {
	return "案件編號：" + truncate(caseNumber, headerCaseMax)
}

func shrinkable(r layout.Run) layout.Run {
	r.Shrink = true
	return r
}

func text(s string, size float64) layout.Run {
	return layout.Run{Text: s, Size: size}
}

func bold(s string, size float64) layout.Run {
	return layout.Run{Text: s, Size: size, Bold: true}
}

func box(style CheckboxStyle, checked bool, size float64) layout.Run {
	return layout.Run{Text: style.Glyph(checked), Size: size}
}

func para(runs ...layout.Run) layout.Paragraph {
	return layout.Para(runs...)
}

// centeredLines renders each string as its own centered paragraph.
func centeredLines(lines ...string) []layout.Paragraph {
	out := make([]layout.Paragraph, 0, len(lines))
	for _, l := range lines {
		out = append(out, layout.Centered(layout.Plain(l)))
	}
	return out
}

func blankCell() layout.Cell {
	return layout.NewCell(para(layout.Plain(" ")))
}

func indexLabel(i int) string {
	return strconv.Itoa(i + 1)
}

// sizedLines is layout.Lines with a font size.
func sizedLines(s string, size float64, align layout.Align) []layout.Paragraph {
	ps := layout.Lines(s, align)
	for i := range ps {
		for j := range ps[i].Runs {
			ps[i].Runs[j].Size = size
		}
	}
	return ps
}

const (
	lineThick = layout.BorderThick
	lineStd   = layout.BorderStd
	lineThin  = layout.BorderThin
	lineNone  = layout.BorderNone
)

func frame(top, bottom, left, right layout.Border) layout.Borders {
	return layout.Borders{Top: top, Bottom: bottom, Left: left, Right: right}
}
