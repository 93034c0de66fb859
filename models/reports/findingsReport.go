package reports

import (
	"github.com/mmdatafocus/ghg_reports/models"
	"github.com/mmdatafocus/ghg_reports/models/reports/layout"
)

// Section names of the G-3027 document.
const (
	FindingsSectionFindings   = "不符合事項摘要表"
	FindingsSectionConclusion = "查驗結論"
)

// FindingsMinRows is the least number of data rows the findings table prints.
const FindingsMinRows = 3

const (
	findingsLandscapeWidth = 14700
	findingsPortraitWidth  = 10000
	findingsGray           = "D9D9D9"
)

var (
	findingsLandscapeMargins = layout.Margins{Top: 1247, Bottom: 720, Left: 720, Right: 720, Header: 284, Footer: 624}
	findingsPortraitMargins  = layout.Margins{Top: 720, Bottom: 720, Left: 720, Right: 720, Header: 284, Footer: 624}
)

// BuildFindingsDocument lays out the G-3027 findings summary. The findings
// page lists only the current stage and is left out at S2 when that stage
// has no findings. Stage counts are recomputed from every finding.
func BuildFindingsDocument(r models.FindingsReport) layout.Document {
	doc := newDocument(models.ReportCodeFindings, "不符合事項/觀察事項摘要表")
	stage := r.BasicInfo.Stage
	if !stage.IsValid() {
		stage = models.StageS1
	}
	current := models.FindingsForStage(r.Findings, stage)
	header := findingsHeader(stage)
	footer := pageNumberFooter(models.ReportCodeFindings)

	if !(stage.Terminal() && len(current) == 0) {
		doc.Sections = append(doc.Sections, layout.Section{
			Name:        FindingsSectionFindings,
			Orientation: layout.Landscape,
			Margins:     findingsLandscapeMargins,
			Width:       findingsLandscapeWidth,
			Header:      header,
			Footer:      footer,
			Blocks: []layout.Block{
				findingsBasicInfoTable(r.BasicInfo),
				&layout.Paragraph{},
				findingsTable(r, current),
			},
		})
	}

	doc.Sections = append(doc.Sections, layout.Section{
		Name:    FindingsSectionConclusion,
		Margins: findingsPortraitMargins,
		Width:   findingsPortraitWidth,
		Header:  header,
		Footer:  footer,
		Blocks: []layout.Block{
			&layout.Paragraph{Runs: []layout.Run{layout.Plain("案件編號：" + r.BasicInfo.CaseNumber)}},
			&layout.Paragraph{Runs: []layout.Run{layout.Plain("本階段現場查證結果(以下內容參照不符合事項/觀察事項摘要表)如下：")}},
			&layout.Paragraph{},
			findingsSummaryTable(models.ComputeFindingStats(r.Findings), r.Conclusion),
		},
	})
	return doc
}

// GenerateFindingsReport renders the G-3027 document to workbook bytes.
func GenerateFindingsReport(r models.FindingsReport) ([]byte, error) {
	return layout.Render(BuildFindingsDocument(r))
}

func findingsHeader(stage models.Stage) layout.HeaderFooter {
	return layout.HeaderFooter{
		Center: []layout.Run{
			bold(companyName+"\n", 18),
			bold("不符合事項/觀察事項摘要表 ", 16),
			box(TickedBox, stage == models.StageS1, 16),
			text("第一階段(S-1) ", 16),
			box(TickedBox, stage == models.StageS2, 16),
			text("第二階段(S-2)", 16),
		},
	}
}

func findingsBasicInfoTable(b models.FindingsBasicInfo) *layout.Table {
	date := SplitROCDate(b.Date)
	t := layout.NewTable([]int{4500, 6200, 4000}, lineNone)
	t.Add(layout.RowData, 0,
		layout.TextCell("案件編號："+b.CaseNumber, layout.AlignLeft),
		blankCell(),
		layout.TextCell("查驗年度： "+b.VerificationYear+" 年", layout.AlignLeft),
	)
	t.Add(layout.RowData, 0,
		layout.TextCell("主導查驗員："+b.LeadVerifier, layout.AlignLeft),
		layout.TextCell("受查驗方代表："+b.AuditeeRep, layout.AlignLeft),
		layout.TextCell("查驗日期： "+date.Year+" 年 "+date.Month+" 月 "+date.Day+" 日", layout.AlignLeft),
	)
	return t
}

var findingsColumns = []int{600, 1400, 2800, 1000, 2800, 2800, 1100, 1100, 1100}

func findingsTable(r models.FindingsReport, current []models.FindingItem) *layout.Table {
	t := layout.NewTable(findingsColumns, lineThin)
	last := len(findingsColumns) - 1
	edge := func(i int, top, bottom layout.Border) layout.Borders {
		left, right := lineThin, lineThin
		if i == 0 {
			left = lineThick
		}
		if i == last {
			right = lineThick
		}
		return frame(top, bottom, left, right)
	}
	head := func(s string, b layout.Borders) layout.Cell {
		return layout.TextCell(s, layout.AlignCenter).Shade(findingsGray).WithBorders(b)
	}

	t.Add(layout.RowHeader, 0,
		head("編號", edge(0, lineThick, lineThick)).Down(2),
		head("查驗機構查驗發現", frame(lineThick, lineThin, lineThin, lineThin)).Span(3),
		head("受查驗方回覆", frame(lineThick, lineThin, lineThin, lineThin)),
		head("查驗機構審查", frame(lineThick, lineThin, lineThin, lineThick)).Span(4),
	)
	labels := []string{"發現事項之分類", "不符合事項描述", "填報查\n驗人員", "矯正措施/澄清說明", "審查意見", "查驗員", "審查結果", "審查地點"}
	second := make([]layout.Cell, len(labels))
	for i, l := range labels {
		second[i] = head(l, edge(i+1, lineThin, lineThick))
	}
	t.Add(layout.RowHeader, 0, second...)

	rows := max(len(current), FindingsMinRows)
	for i := 0; i < rows; i++ {
		kind := layout.RowPadding
		var f models.FindingItem
		index := ""
		if i < len(current) {
			kind = layout.RowData
			f = current[i]
			index = indexLabel(i)
		}
		cell := func(col int, s string, align layout.Align) layout.Cell {
			c := layout.TextCell(s, align).WithBorders(edge(col, lineThin, lineThin))
			if align == layout.AlignLeft {
				c = c.Top()
			}
			return c
		}
		t.Add(kind, 900,
			cell(0, index, layout.AlignCenter),
			cell(1, string(f.Type), layout.AlignCenter),
			cell(2, f.Description, layout.AlignLeft),
			cell(3, f.Reporter, layout.AlignCenter),
			cell(4, f.CorrectiveAction, layout.AlignLeft),
			cell(5, f.ReviewOpinion, layout.AlignLeft),
			cell(6, f.Reviewer, layout.AlignCenter),
			layout.NewCell(
				para(box(TickedBox, f.Result == models.FindingResultClose, 12), layout.Plain(" 結案")),
				para(box(TickedBox, f.Result == models.FindingResultKeep, 12), layout.Plain(" 保留")),
			).WithBorders(edge(7, lineThin, lineThin)),
			layout.NewCell(
				para(box(TickedBox, f.Location == models.FindingLocationOnSite, 12), layout.Plain(" 現場")),
				para(box(TickedBox, f.Location == models.FindingLocationOffSite, 12), layout.Plain(" 非現場")),
			).WithBorders(edge(8, lineThin, lineThin)),
		)
	}

	auditee := SplitROCDate(r.Conclusion.AuditeeDate)
	date := SplitROCDate(r.BasicInfo.Date)
	span := len(findingsColumns)
	t.Add(layout.RowFooter, 0, layout.NewCell(
		para(layout.Plain("發現事項之分類：")),
		para(layout.Plain("矯正措施要求(Corrective Action Request，CAR)、澄清要求(Clarification Request，CR)與後續行動要求(Forward Action Request，FAR)")),
	).Span(span).Shade(findingsGray).WithBorders(frame(lineThick, lineNone, lineThick, lineThick)))
	t.Add(layout.RowFooter, 0, layout.NewCell(
		para(layout.Plain("備註:")),
		para(layout.Plain("(S-1 適用)請於第 2 階段(S-2)查驗前提送不符合事項及觀察事項因應處理方案。")),
		para(layout.Plain("(S-2 適用)請提送修正後經核章之溫室氣體報告書及不符合事項及觀察事項因應處理方案)依序表列彙整， 並於 10 日內以電子郵件逕寄旭威認證股份有限公司查驗機構窗口，未送達前不予複審。")),
		para(text("➢ 矯正措施要求：若不符合相關規定、構成實質差異、個別或累積之錯誤、遺漏及誤導構成實質性之部分，查驗人員應對受查驗者提出此要求，請受查驗者進行矯正。", 10)),
		para(text("➢ 澄清要求：若資訊不夠充分或不明確，無法確定是否符合相關規定時，查驗人員應對受查驗者提出此要求，請受查驗者提出說明以澄清。", 10)),
		para(text("➢ 後續行動要求：針對下個查驗期間溫室氣體數據蒐集及報告特別注意或調整的部分，提出此要求。(*後續行動要求無須填寫矯正措施說明。)", 10)),
		para(text("正本：旭威認證股份有限公司 查證機構存檔；影本：廠商存參", 10)),
	).Span(span).Top().WithBorders(frame(lineNone, lineNone, lineThick, lineThick)))
	t.Add(layout.RowFooter, 0,
		layout.TextCell("受查驗方代表："+r.BasicInfo.AuditeeRep, layout.AlignLeft).Span(3).WithBorders(frame(lineNone, lineThick, lineThick, lineNone)),
		layout.TextCell("回覆日期："+auditee.Year+"年"+auditee.Month+"月"+auditee.Day+"日", layout.AlignLeft).Span(2).WithBorders(frame(lineNone, lineThick, lineNone, lineNone)),
		layout.TextCell("主導查驗員："+r.BasicInfo.LeadVerifier, layout.AlignLeft).Span(2).WithBorders(frame(lineNone, lineThick, lineNone, lineNone)),
		layout.TextCell("審查日期："+date.Year+"年"+date.Month+"月"+date.Day+"日", layout.AlignLeft).Span(2).WithBorders(frame(lineNone, lineThick, lineNone, lineThick)),
	)
	return t
}

var statLabels = []struct {
	label string
	count func(models.FindingCounts) string
}{
	{"不符合事項數量", func(c models.FindingCounts) string { return c.NonConformity }},
	{"觀察事項數量", func(c models.FindingCounts) string { return c.Observation }},
	{"建議事項數量", func(c models.FindingCounts) string { return c.Suggestion }},
}

func findingsSummaryTable(stats models.FindingStats, c models.FindingsConclusion) *layout.Table {
	t := layout.NewTable(layout.Split(findingsPortraitWidth, 20, 20, 20, 20, 20), lineThin)

	for i, s := range statLabels {
		top, bottom := lineThin, lineThin
		if i == 0 {
			top = lineThick
		}
		if i == len(statLabels)-1 {
			bottom = lineThick
		}
		values := []string{s.label, "第一階段(S-1)", s.count(stats.S1), "第二階段(S-2)", s.count(stats.S2)}
		cells := make([]layout.Cell, len(values))
		for j, v := range values {
			left, right := lineThin, lineThin
			if j == 0 {
				left = lineThick
			}
			if j == len(values)-1 {
				right = lineThick
			}
			cells[j] = layout.TextCell(v, layout.AlignCenter).WithBorders(frame(top, bottom, left, right))
		}
		t.Add(layout.RowData, 0, cells...)
	}

	t.Add(layout.RowData, 0,
		layout.NewCell(
			para(layout.Plain("第一階段適用:")),
			para(box(TickedBox, c.S1Result == models.S1ResultNone, 0), layout.Plain("未發現相關問題，按原訂計畫執行第二階段查證。")),
			para(box(TickedBox, c.S1Result == models.S1ResultNoEffect, 0), layout.Plain("本階段所發現之問題不影響第二階段查證。")),
			para(box(TickedBox, c.S1Result == models.S1ResultAdjustDays, 0), layout.Plain("現場查證人天或第二階段查證日期需調節。")),
			para(layout.Plain(" 說明："+c.S1Note)),
			para(box(TickedBox, c.S1Result == models.S1ResultUndecided, 0), layout.Plain("目前的情況無法決定。")),
		).Span(3).Top().WithBorders(frame(lineNone, lineThin, lineThick, lineThin)),
		layout.NewCell(
			para(layout.Plain("第二階段適用:")),
			para(layout.Plain("不符合事項與觀察事項，是否已於第二階段前完成改正")),
			para(box(TickedBox, c.S2Result == models.S2ResultCorrected, 0), layout.Plain("是 "),
				box(TickedBox, c.S2Result == models.S2ResultAgree, 0), layout.Plain("否(待組織回覆矯正措施審查)")),
			para(box(TickedBox, c.S2Result == models.S2ResultNoFindings, 0), layout.Plain("無相關發現")),
		).Span(2).Top().WithBorders(frame(lineNone, lineThin, lineThin, lineThick)),
	)

	labelled := func(label string, content layout.Cell) {
		t.Add(layout.RowData, 0,
			layout.TextCell(label, layout.AlignLeft).WithBorders(frame(lineThin, lineThin, lineThick, lineThin)),
			content.Span(4).Top().WithBorders(frame(lineThin, lineThin, lineThin, lineThick)),
		)
	}
	labelled("查證協議資訊變更", layout.NewCell(
		para(box(TickedBox, c.ProtocolChange == models.No, 0), layout.Plain("無變更")),
		para(box(TickedBox, c.ProtocolChange == models.Yes, 0), layout.Plain("查證協議變更")),
		para(layout.Plain(" 請說明："+c.ProtocolChangeNote)),
	))
	labelled("保留意見", layout.TextCell(c.ReservedOpinion, layout.AlignLeft))
	labelled("其他說明", layout.TextCell(c.OtherNote, layout.AlignLeft))

	auditee := SplitROCDate(c.AuditeeDate)
	verifier := SplitROCDate(c.VerifierDate)
	boxed := layout.AllBorders(lineThick)
	t.Add(layout.RowFooter, 0, layout.NewCell(
		para(layout.Strong("受查組織")),
		para(layout.Plain("組織代表瞭解並接受查證結果以及不符合報告的內容。組織代表亦能陳述對此次查證不滿意之處。")),
		para(layout.Strong("組織代表簽名處：")),
		para(),
		para(),
		layout.Paragraph{Runs: []layout.Run{layout.Plain("日期：" + auditee.Year + "年" + auditee.Month + "月" + auditee.Day + "日")}, Align: layout.AlignRight},
	).Span(5).Top().WithBorders(boxed))
	t.Add(layout.RowFooter, 0, layout.NewCell(
		para(layout.Strong("查證機構")),
		para(layout.Plain("考慮到文件呈現方式、查證的場址，以及對問題的回應，主導查證員的簽名並不表示查證小組的查證人員或查證機構須負責意外事件或在查證程序發生後其客戶所造成的錯誤。")),
		para(layout.Strong("此階段查證機構人員簽名處：")),
		para(layout.Strong("(查證小組/技術專家/觀察員/見證員)")),
		para(),
		para(),
		layout.Paragraph{Runs: []layout.Run{layout.Plain("日期：" + verifier.Year + "年" + verifier.Month + "月" + verifier.Day + "日")}, Align: layout.AlignRight},
	).Span(5).Top().WithBorders(boxed))
	return t
}
