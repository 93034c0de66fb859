package reports

import (
	"github.com/mmdatafocus/ghg_reports/models"
	"github.com/mmdatafocus/ghg_reports/models/reports/layout"
)

// Section names of the G-3026 document.
const (
	ObservationSectionSummary   = "查驗項目一覽表"
	ObservationSectionChecklist = "查驗檢核表"
	ObservationSectionSampling  = "附件一 查驗取樣結果"
	ObservationSectionFactors   = "附件二 排放係數確認"
)

const (
	observationWidth     = 10093
	observationGray      = "BFBFBF"
	observationLightGray = "D9D9D9"
)

var observationMargins = layout.Margins{Top: 1134, Bottom: 1134, Left: 851, Right: 851, Header: 425, Footer: 425}

// observationGroupTitles are the printed labels of the checklist groups.
var observationGroupTitles = map[string]string{
	"1": "1.組織邊界",
	"2": "2.報告邊界",
	"3": "3.量化方法",
	"4": "4.基準年排放量",
	"5": "5.數據品質管理",
}

// BuildObservationDocument lays out the G-3026 observation report. summary
// is only read for its checklist, reprinted with the G-3026 legend; nil
// leaves that table with its header row only.
func BuildObservationDocument(r models.ObservationReport, summary *models.SummaryReport) layout.Document {
	doc := newDocument(models.ReportCodeObservation, "查驗觀察報告")
	header := observationHeader(r.BasicInfo)
	footer := pageNumberFooter(models.ReportCodeObservation)

	var summaryItems []models.ChecklistItem
	if summary != nil {
		summaryItems = summary.Checklist
	}

	doc.Sections = []layout.Section{
		{
			Name:    ObservationSectionSummary,
			Margins: observationMargins,
			Width:   observationWidth,
			Header:  header,
			Footer:  footer,
			Blocks: []layout.Block{
				observationBasicInfoTable(r.BasicInfo),
				&layout.Paragraph{Runs: []layout.Run{bold("查驗項目一覽表", 16)}, Align: layout.AlignCenter, Height: 720},
				observationSummaryTable(summaryItems),
			},
		},
		{
			Name:    ObservationSectionChecklist,
			Margins: observationMargins,
			Width:   observationWidth,
			Header:  header,
			Footer:  footer,
			Blocks: []layout.Block{
				&layout.Paragraph{Runs: []layout.Run{text("查驗檢核表", 16)}, Align: layout.AlignCenter, Height: 720},
				observationChecklistTable(r),
			},
		},
		{
			Name:        ObservationSectionSampling,
			Orientation: layout.Landscape,
			Margins:     observationMargins,
			Width:       landscapeWidth,
			Header:      header,
			Footer:      footer,
			Blocks: []layout.Block{
				&layout.Paragraph{Runs: []layout.Run{text("附件一 查驗取樣結果", 16)}, Height: 720},
				samplingTable(r.SamplingResults),
			},
		},
		{
			Name:        ObservationSectionFactors,
			Orientation: layout.Landscape,
			Margins:     observationMargins,
			Width:       landscapeWidth,
			Header:      header,
			Footer:      footer,
			Blocks: []layout.Block{
				&layout.Paragraph{Runs: []layout.Run{text("附件二 排放係數確認", 16)}, Height: 720},
				emissionFactorTable(r.EmissionFactors),
			},
		},
	}
	return doc
}

// GenerateObservationReport renders the G-3026 document to workbook bytes.
func GenerateObservationReport(r models.ObservationReport, summary *models.SummaryReport) ([]byte, error) {
	return layout.Render(BuildObservationDocument(r, summary))
}

func observationHeader(b models.ObservationBasicInfo) layout.HeaderFooter {
	return layout.HeaderFooter{
		Center: []layout.Run{
			bold(companyName+"\n", 18),
			box(TickedBox, b.Stage == models.StageS1, 16),
			text("S1  ", 16),
			box(TickedBox, b.Stage == models.StageS2, 16),
			text("S2 查驗觀察報告", 16),
		},
		Left: []layout.Run{{Text: "\n\n" + caseNumberLine(b.CaseNumber), Underline: true, Shrink: true}},
	}
}

func observationBasicInfoTable(b models.ObservationBasicInfo) *layout.Table {
	check := SplitROCDate(b.CheckDate)
	t := layout.NewTable([]int{observationWidth}, lineNone)
	u := func(s string) layout.Run { return layout.Run{Text: " " + s + " ", Size: 14, Underline: true} }
	row := func(first, last bool, runs ...layout.Run) {
		top, bottom := lineNone, lineNone
		if first {
			top = lineThick
		}
		if last {
			bottom = lineThick
		}
		t.Add(layout.RowData, 0, layout.RunsCell(layout.AlignLeft, runs...).WithBorders(frame(top, bottom, lineThick, lineThick)))
	}
	row(true, false,
		text("查驗年度：中華民國 ", 14), u(b.Year),
		text(" 年    查驗日期：中華民國 ", 14),
		u(check.Year), text(" 年 ", 14),
		u(check.Month), text(" 月 ", 14),
		u(check.Day), text(" 日", 14))
	t.Rows[0].Height = 600
	row(false, false, layout.Plain("本次查驗活動報告係依據下列標準與文件據以查核，並依廠商現況，以抽樣原則執行："))
	row(false, false, layout.Plain("查驗依據 : "+criteriaText))
	row(false, false, box(TickedBox, b.ReportInfo != "", 0), layout.Plain(" 溫室氣體報告（編號／版次／發行日期）："), layout.Plain(b.ReportInfo))
	row(false, false, box(TickedBox, b.InventoryInfo != "", 0), layout.Plain(" 盤查清冊（編號／版次／發行日期）: "), layout.Plain(b.InventoryInfo))
	row(false, false, box(TickedBox, b.PowerFactorInfo != "", 0), layout.Plain(" 溫室氣體資訊管理程序（版次或公布日期）："), layout.Plain(b.PowerFactorInfo))
	row(false, true, box(TickedBox, b.OtherInfo != "", 0), layout.Plain(" 其他："), layout.Plain(b.OtherInfo))
	return t
}

// observationSummaryTable reprints the G-3022 checklist with this form's
// legend.
func observationSummaryTable(items []models.ChecklistItem) *layout.Table {
	t := layout.NewTable([]int{5046, 2523, 2524}, lineStd)
	t.Add(layout.RowHeader, 0,
		layout.TextCell("ISO 14064-1:2018 規定項目", layout.AlignCenter).Shade(observationGray).WithBorders(frame(lineThick, lineThick, lineThick, lineStd)),
		layout.NewCell(sizedLines("符合項目以 O 註記\n不符合項目以 X 註記\n不適用以―註記", 10, layout.AlignCenter)...).Shade(observationGray).WithBorders(frame(lineThick, lineThick, lineStd, lineStd)),
		layout.TextCell("備註", layout.AlignCenter).Shade(observationGray).WithBorders(frame(lineThick, lineThick, lineStd, lineThick)),
	)
	for i, item := range items {
		bottom := lineStd
		if i == len(items)-1 {
			bottom = lineThick
		}
		label := item.ID + " " + item.Name
		if item.IsHeader() {
			t.Add(layout.RowSection, 0,
				layout.RunsCell(layout.AlignLeft, layout.Strong(label)).Span(3).Shade(observationLightGray).WithBorders(frame(lineStd, bottom, lineThick, lineThick)))
			continue
		}
		t.Add(layout.RowData, 0,
			layout.NewCell(para(SubscriptCO2e(label, 12, false)...)).WithBorders(frame(lineStd, bottom, lineThick, lineStd)),
			layout.TextCell(ObservationLegend.Glyph(item.Status), layout.AlignCenter).WithBorders(frame(lineStd, bottom, lineStd, lineStd)),
			layout.NewCell().WithBorders(frame(lineStd, bottom, lineStd, lineThick)),
		)
	}
	return t
}

func observationGroupTitle(g models.ChecklistGroup) string {
	if title, ok := observationGroupTitles[g.Prefix]; ok {
		return title
	}
	if g.Header != nil {
		return g.Prefix + "." + g.Header.Name
	}
	return g.Prefix
}

// observationChecklistTable groups the checklist by root id segment with the
// group title merged down the first column.
func observationChecklistTable(r models.ObservationReport) *layout.Table {
	t := layout.NewTable([]int{500, 3000, 2500, 2800, 1200}, lineStd)
	gray := func(c layout.Cell, b layout.Borders) layout.Cell { return c.Shade(observationGray).WithBorders(b) }
	t.Add(layout.RowHeader, 0,
		gray(layout.TextCell("查驗\n重點", layout.AlignCenter).Down(2), frame(lineThick, lineStd, lineThick, lineStd)),
		gray(layout.TextCell("查 證 內 容", layout.AlignCenter), frame(lineThick, lineStd, lineStd, lineStd)),
		gray(layout.NewCell(
			layout.Centered(layout.Plain("查 驗 情 形")),
			layout.Centered(text("(符合項目以O註記，不符合項目以X註記，不適用以―註記)", 10)),
		).Span(3), frame(lineThick, lineStd, lineStd, lineThick)),
	)
	t.Add(layout.RowHeader, 0,
		gray(layout.TextCell("項目", layout.AlignCenter), frame(lineStd, lineThick, lineStd, lineStd)),
		gray(layout.TextCell("查驗文件", layout.AlignCenter), frame(lineStd, lineThick, lineStd, lineStd)),
		gray(layout.TextCell("現場觀察說明", layout.AlignCenter), frame(lineStd, lineThick, lineStd, lineStd)),
		gray(layout.TextCell("符合\n與否", layout.AlignCenter), frame(lineStd, lineThick, lineStd, lineThick)),
	)

	for _, g := range models.GroupChecklist(r.Checklist) {
		rows := g.Rows()
		for i, item := range rows {
			var cells []layout.Cell
			if i == 0 {
				cells = append(cells, layout.TextCell(observationGroupTitle(g), layout.AlignCenter).
					Down(len(rows)).Stacked().Shade(observationLightGray).WithBorders(frame(lineStd, lineStd, lineThick, lineStd)))
			}
			label := item.ID + " " + item.Name
			if item.IsHeader() {
				cells = append(cells, layout.NewCell(para(SubscriptCO2e(label, 10, true)...)).
					Span(4).Shade(observationLightGray).WithBorders(frame(lineStd, lineStd, lineStd, lineThick)))
				t.Add(layout.RowSection, 0, cells...)
				continue
			}
			cells = append(cells,
				layout.NewCell(para(SubscriptCO2e(label, 10, false)...)).Top(),
				layout.TextCell(item.DocRef, layout.AlignLeft).Top(),
				layout.TextCell(item.FieldObs, layout.AlignLeft).Top(),
				layout.TextCell(ObservationLegend.Glyph(item.Status), layout.AlignCenter).WithBorders(frame(lineStd, lineStd, lineStd, lineThick)),
			)
			t.Add(layout.RowData, 0, cells...)
		}
	}

	t.Add(layout.RowFooter, 0, layout.TextCell("其他觀察事項說明:", layout.AlignLeft).Span(5).
		Shade(observationGray).WithBorders(frame(lineThick, lineStd, lineThick, lineThick)))
	t.Add(layout.RowFooter, 1800, layout.TextCell(r.OtherObservation, layout.AlignLeft).Span(5).Top().
		WithBorders(frame(lineStd, lineStd, lineThick, lineThick)))
	t.Add(layout.RowFooter, 1800, layout.RunsCell(layout.AlignLeft,
		layout.Plain("主導查驗員簽名："), layout.Plain(" "+r.LeadVerifierName+" ")).Span(5).
		WithBorders(frame(lineStd, lineThick, lineThick, lineThick)))
	return t
}

// appendixTable builds a numbered landscape table with a gray header row.
func appendixTable(columns []int, headers []string, rows [][]string) *layout.Table {
	t := layout.NewTable(columns, lineStd)
	last := len(columns) - 1
	edge := func(i int, top, bottom layout.Border) layout.Borders {
		left, right := lineStd, lineStd
		if i == 0 {
			left = lineThick
		}
		if i == last {
			right = lineThick
		}
		return frame(top, bottom, left, right)
	}
	head := make([]layout.Cell, len(headers))
	for i, h := range headers {
		head[i] = layout.TextCell(h, layout.AlignCenter).Shade(observationGray).WithBorders(edge(i, lineThick, lineStd))
	}
	t.Add(layout.RowHeader, 0, head...)
	for n, values := range rows {
		bottom := lineStd
		if n == len(rows)-1 {
			bottom = lineThick
		}
		cells := []layout.Cell{layout.TextCell(indexLabel(n), layout.AlignCenter).WithBorders(edge(0, lineStd, bottom))}
		for i, v := range values {
			cells = append(cells, layout.TextCell(v, layout.AlignLeft).Top().WithBorders(edge(i+1, lineStd, bottom)))
		}
		t.Add(layout.RowData, 0, cells...)
	}
	return t
}

func samplingTable(items []models.SamplingResult) *layout.Table {
	rows := make([][]string, 0, len(items))
	for _, s := range items {
		rows = append(rows, []string{s.Area, s.Value, s.Source, s.Type, s.Ratio, s.Remarks})
	}
	return appendixTable(
		[]int{700, 3000, 2500, 3000, 2500, 1500, 1936},
		[]string{"NO.", "區域/\n排放源", "抽樣活動數據\n數值/排放量\n(含單位)", "活動數據來源", "活動數據類型\n抽樣比例\n(抽樣數/母數)", "排放源佔總\n排放量比", "備註"},
		rows,
	)
}

func emissionFactorTable(items []models.EmissionFactor) *layout.Table {
	rows := make([][]string, 0, len(items))
	for _, f := range items {
		rows = append(rows, []string{f.Item, f.Source, f.Description, f.Remarks})
	}
	return appendixTable(
		[]int{700, 3500, 3500, 5000, 2436},
		[]string{"NO.", "排放係數項目", "排放係數來源", "排放係數說明", "備註"},
		rows,
	)
}
