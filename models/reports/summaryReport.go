package reports

import (
	"github.com/mmdatafocus/ghg_reports/models"
	"github.com/mmdatafocus/ghg_reports/models/reports/layout"
)

// Section names of the G-3022 document.
const (
	SummarySectionMain       = "總結報告"
	SummarySectionInterviews = "現場訪談"
	SummarySectionPending    = "待釐清補正事項"
)

const (
	summaryTitle     = "查驗書面審查-赴廠訪談總結報告(2018 年版)"
	summaryAppendix  = "書面審查/現場訪談報告"
	summaryShading   = "C5E0B3"
	summaryRowHeight = 600
	summaryLabelCol  = 2750
)

var categoryLabels = []string{"類別一", "類別二", "類別三", "類別四", "類別五", "類別六"}

// BuildSummaryDocument lays out the G-3022 summary report. The interview
// appendix is present only when interviews were recorded; the pending items
// page is always present.
func BuildSummaryDocument(r models.SummaryReport) layout.Document {
	doc := newDocument(models.ReportCodeSummary, summaryTitle)
	footer := pageNumberFooter(models.ReportCodeSummary, "正本：旭威認證股份有限公司查驗機構存檔")

	main := layout.Section{
		Name:    SummarySectionMain,
		Margins: standardMargins,
		Width:   portraitWidth,
		Header:  summaryHeader(r.BasicInfo.CaseNumber, summaryTitle),
		Footer:  footer,
	}
	main.Blocks = append(main.Blocks, summaryClientBlock(r.BasicInfo)...)
	main.Blocks = append(main.Blocks,
		&layout.Paragraph{Runs: []layout.Run{bold("一、基本資料：", 14)}},
		summaryBasicInfoTable(r.BasicInfo, r.Emissions),
	)
	main.Blocks = append(main.Blocks, summaryDocumentBlock(r.BasicInfo)...)
	main.Blocks = append(main.Blocks,
		summaryChecklistTable(r.Checklist),
		&layout.Paragraph{},
		&layout.Paragraph{Runs: []layout.Run{bold("三、綜合結論", 14)}},
		summaryConclusionTable(r.Conclusion),
	)
	doc.Sections = append(doc.Sections, main)

	appendixHeader := summaryHeader(r.BasicInfo.CaseNumber, summaryAppendix)
	if len(r.Conclusion.Interviews) > 0 {
		visit := SplitROCDate(r.BasicInfo.VisitDate)
		doc.Sections = append(doc.Sections, layout.Section{
			Name:    SummarySectionInterviews,
			Margins: standardMargins,
			Width:   portraitWidth,
			Header:  appendixHeader,
			Footer:  footer,
			Blocks: []layout.Block{
				&layout.Paragraph{Runs: []layout.Run{layout.Plain("查驗準則：" + criteriaText)}},
				&layout.Paragraph{Runs: []layout.Run{layout.Plain(
					"現場訪談日期：     " + visit.Year + "    年     " + visit.Month + "    月     " + visit.Day + "    日")}},
				summaryInterviewTable(r.Conclusion.Interviews),
				signatureStrip(),
				&layout.Paragraph{Runs: []layout.Run{text("註：本頁為附件，由查驗人員視實際需要調整頁數及行距。", 10)}},
			},
		})
	}

	review := SplitROCDate(r.BasicInfo.ReviewDate)
	doc.Sections = append(doc.Sections, layout.Section{
		Name:    SummarySectionPending,
		Margins: standardMargins,
		Width:   portraitWidth,
		Header:  appendixHeader,
		Footer:  footer,
		Blocks: []layout.Block{
			&layout.Paragraph{Runs: []layout.Run{bold("待釐清/補正事項摘要表", 14)}, Align: layout.AlignCenter},
			&layout.Paragraph{Runs: []layout.Run{layout.Plain("查驗準則：" + criteriaText)}},
			&layout.Paragraph{Runs: []layout.Run{layout.Plain(
				"書面審查日期：     " + review.Year + "    年     " + review.Month + "    月     " + review.Day + "    日")}},
			summaryPendingTable(r.Conclusion.PendingItems),
			summaryPendingSignatures(r.Conclusion),
		},
	})
	return doc
}

// GenerateSummaryReport renders the G-3022 document to workbook bytes.
func GenerateSummaryReport(r models.SummaryReport) ([]byte, error) {
	return layout.Render(BuildSummaryDocument(r))
}

func summaryHeader(caseNumber, title string) layout.HeaderFooter {
	return layout.HeaderFooter{
		Center: []layout.Run{bold(companyName+"\n"+title, 18)},
		Left:   []layout.Run{shrinkable(bold("\n\n"+caseNumberLine(caseNumber), 12))},
	}
}

func summaryClientBlock(b models.SummaryBasicInfo) []layout.Block {
	review := SplitROCDate(b.ReviewDate)
	visit := SplitROCDate(b.VisitDate)
	return []layout.Block{
		&layout.Paragraph{Runs: []layout.Run{layout.Plain("查驗準則：" + criteriaText)}, Height: 600},
		&layout.Paragraph{Runs: []layout.Run{layout.Plain("委託單位名稱：" + b.ClientName)}},
		&layout.Paragraph{Runs: []layout.Run{layout.Plain("委託單位地址：" + b.ClientAddress)}},
		&layout.Paragraph{Runs: []layout.Run{
			box(FilledBox, true, 0),
			layout.Plain("書面審查日期： " + review.Year + " 年 " + review.Month + " 月 " + review.Day + " 日      "),
			box(FilledBox, true, 0),
			layout.Plain("赴廠訪談日期： " + visit.Year + " 年 " + visit.Month + " 月 " + visit.Day + " 日"),
		}},
		&layout.Paragraph{Runs: []layout.Run{layout.Plain(" ")}},
	}
}

func summaryLabel(lines ...string) layout.Cell {
	ps := make([]layout.Paragraph, 0, len(lines))
	for _, l := range lines {
		ps = append(ps, para(layout.Plain(l)))
	}
	return layout.NewCell(ps...).Shade(summaryShading)
}

func summaryBasicInfoTable(b models.SummaryBasicInfo, e models.Emissions) *layout.Table {
	total := EmissionTotal(e)
	t := layout.NewTable([]int{summaryLabelCol, portraitWidth - summaryLabelCol}, layout.BorderThin)

	t.Add(layout.RowData, summaryRowHeight,
		summaryLabel("1.保證等級"),
		layout.NewCell(
			para(box(FilledBox, len(b.ReasonableScopes) > 0, 0), layout.Plain("合理等級："), layout.Plain(ScopesText(b.ReasonableScopes))),
			para(box(FilledBox, len(b.LimitedScopes) > 0, 0), layout.Plain("有限等級："), layout.Plain(ScopesText(b.LimitedScopes))),
		))
	t.Add(layout.RowData, summaryRowHeight,
		summaryLabel("2.實質性門檻"),
		layout.TextCell("依雙方協議訂為 "+b.Materiality, layout.AlignLeft))
	t.Add(layout.RowData, summaryRowHeight,
		summaryLabel("3.基準年及基準年溫室氣體排放資訊"),
		layout.NewCell(
			para(layout.Plain("基準年設定為： "+b.BaseYear+" 年")),
			para(CO2eRuns("總排放量： "+FormatNumber(b.BaseYearEmissions)+" 公噸 ", "")...),
		))

	// The verification-year label spans the total row, six category rows
	// and the uncertainty row.
	t.Add(layout.RowData, summaryRowHeight,
		summaryLabel("4.申請查驗年度及查驗年度溫室氣體排放資訊").Down(2+len(categoryLabels)),
		layout.NewCell(
			para(layout.Plain("查驗年度： "+b.VerificationYear+" 年")),
			para(CO2eRuns("總排放量： "+formatDecimal(total)+" 公噸 ", "")...),
		))
	for i, v := range e.Categories() {
		t.Add(layout.RowData, summaryRowHeight, layout.NewCell(para(CO2eRuns(
			categoryLabels[i]+"：排放量 "+FormatFloat(v)+" 公噸 ",
			"，佔總排放比例： "+Percent(v, total)+" %",
		)...)))
	}
	t.Add(layout.RowData, summaryRowHeight, layout.TextCell(
		"盤查清冊之不確定性上、下限：上限 "+e.UncertaintyUpper+" %，下限 "+e.UncertaintyLower+" %", layout.AlignLeft))
	t.Add(layout.RowData, summaryRowHeight,
		summaryLabel("5.溫室氣體報告", "預期使用者"),
		layout.TextCell(b.IntendedUser, layout.AlignLeft))
	return t
}

func summaryDocumentBlock(b models.SummaryBasicInfo) []layout.Block {
	return []layout.Block{
		&layout.Paragraph{PageBreakBefore: true},
		&layout.Paragraph{Runs: []layout.Run{bold("二、相關文件與標準條文對照審查", 14)}},
		&layout.Paragraph{Runs: []layout.Run{layout.Plain("溫室氣體報告名稱/版次/日期： " + b.ReportName)}, Height: 520},
		&layout.Paragraph{Runs: []layout.Run{layout.Plain("溫室氣體盤查清冊名稱/版次/日期： " + b.InventoryName)}, Height: 520},
		&layout.Paragraph{Runs: []layout.Run{layout.Plain("溫室氣體資訊管理程序名稱/版次/日期： " + b.ProcedureName)}, Height: 520},
		&layout.Paragraph{Runs: []layout.Run{layout.Plain(" ")}},
	}
}

func summaryChecklistTable(items []models.ChecklistItem) *layout.Table {
	const clause, doc, result = 3500, 4000, 2165
	t := layout.NewTable([]int{portraitWidth - clause - doc - result, clause, doc, result}, layout.BorderThin)
	t.Add(layout.RowHeader, 0,
		layout.TextCell("項目\n編號", layout.AlignCenter).Shade(summaryShading),
		layout.TextCell("ISO 14064-1: 2018 條文項目", layout.AlignCenter).Shade(summaryShading),
		layout.TextCell("相關文件編號\n及對照章/節/頁", layout.AlignCenter).Shade(summaryShading),
		layout.NewCell(
			layout.Centered(layout.Plain("審 查 結 果")),
			layout.Centered(text("(符合項目以○註記，\n待釐清項目以 X 註記，\n不適用以―註記)", 9)),
		).Shade(summaryShading),
	)
	for _, item := range items {
		if item.IsHeader() {
			t.Add(layout.RowSection, 0,
				layout.RunsCell(layout.AlignCenter, layout.Strong(item.ID)).Shade(summaryShading).Top(),
				layout.RunsCell(layout.AlignLeft, layout.Strong(item.Name)).Shade(summaryShading).Span(3).Top(),
			)
			continue
		}
		t.Add(layout.RowData, 0,
			layout.TextCell(item.ID, layout.AlignCenter).Top(),
			layout.NewCell(para(SubscriptCO2e(item.Name, 0, false)...)).Top(),
			layout.TextCell(item.DocRef, layout.AlignLeft).Top(),
			layout.TextCell(SummaryLegend.Glyph(item.Status), layout.AlignCenter),
		)
	}
	return t
}

func summaryConclusionTable(c models.SummaryConclusion) *layout.Table {
	t := layout.NewTable([]int{portraitWidth}, layout.BorderThin)
	t.Add(layout.RowSection, 0, layout.TextCell(
		"(一)書面審查及/或訪談結果，對於查驗過程中是否可能與本機構之組織或個人存在潛在利益衝突", layout.AlignLeft).Shade(summaryShading))

	detail := "________________________"
	if c.ConflictOfInterest == models.Yes {
		detail = c.ConflictDetail
	}
	t.Add(layout.RowData, 0, layout.RunsCell(layout.AlignLeft,
		box(FilledBox, c.ConflictOfInterest == models.No, 0), layout.Plain("否；"),
		box(FilledBox, c.ConflictOfInterest == models.Yes, 0), layout.Plain("是，說明如後："),
		layout.Plain(detail),
	))

	t.Add(layout.RowSection, 0, layout.TextCell("(二)經書面審查及/或訪談結果，綜合結論如下：", layout.AlignLeft).Shade(summaryShading))
	t.Add(layout.RowData, 2000, layout.NewCell(
		para(box(FilledBox, c.Summary == models.FinalConclusionPass, 0),
			layout.Plain("書面審查及/或訪談結果通過，可據以辦理後續第 1 階段查驗。")),
		para(box(FilledBox, c.Summary == models.FinalConclusionReduced, 0),
			layout.Plain("組織層級查驗符合下述情況，最低現場查驗人天數得少於 4 人天(含)但不得少於 1 人天(含)。")),
		para(text(" 邊界及溫室氣體排放型態單純，如工廠或大樓為單一組織控制，邊界內未有涉及區域或樓層租借的狀況(即電力不須採用分配方式計算)、90 %以上溫室氣體排放量來自能源間接、無複雜之製程排放源…等情形。", 10)),
		para(box(FilledBox, c.Summary == models.FinalConclusionPending, 0),
			layout.Plain("書面審查及/或訪談結果，尚有部分事項待釐清/補正。(參見待釐清/補正事項摘要表)")),
	).Top())
	t.Add(layout.RowData, 1500, layout.TextCell("其它："+c.OtherNote, layout.AlignLeft).Top())
	return t
}

func summaryInterviewTable(records []models.InterviewRecord) *layout.Table {
	t := layout.NewTable([]int{1000, 2400, 5305, 1500}, layout.BorderThin)
	t.Add(layout.RowHeader, 0,
		layout.TextCell("系統編號", layout.AlignCenter).Shade(summaryShading),
		layout.TextCell("現場訪談事項", layout.AlignCenter).Shade(summaryShading),
		layout.TextCell("查 核 紀 錄", layout.AlignCenter).Shade(summaryShading),
		layout.TextCell("結 果", layout.AlignCenter).Shade(summaryShading),
	)
	for i, iv := range records {
		t.Add(layout.RowData, 1800,
			layout.TextCell(indexLabel(i), layout.AlignCenter).Top(),
			layout.TextCell(iv.Topic, layout.AlignLeft).Top(),
			layout.TextCell(iv.Record, layout.AlignLeft).Top(),
			layout.TextCell(iv.Result, layout.AlignLeft).Top(),
		)
	}
	return t
}

// signatureStrip is the verifier / lead verifier signing row under the
// interview table.
func signatureStrip() *layout.Table {
	t := layout.NewTable(layout.Split(portraitWidth, 25, 25, 25, 25), layout.BorderThin)
	open := layout.Borders{Bottom: layout.BorderThin, Left: layout.BorderThin, Right: layout.BorderThin}
	t.Add(layout.RowFooter, 1200,
		layout.NewCell(centeredLines("查驗員", "簽 名")...).WithBorders(open),
		layout.NewCell().WithBorders(open),
		layout.NewCell(centeredLines("主導查驗員", "簽 名")...).WithBorders(open),
		layout.NewCell().WithBorders(open),
	)
	return t
}

func summaryPendingTable(items []models.PendingItem) *layout.Table {
	t := layout.NewTable([]int{1000, 4602, 4603}, layout.BorderThin)
	t.Add(layout.RowHeader, 0,
		layout.TextCell("項次", layout.AlignCenter).Shade(summaryShading),
		layout.TextCell("待釐清/補正事項事項內容", layout.AlignCenter).Shade(summaryShading),
		layout.TextCell("組織回覆", layout.AlignCenter).Shade(summaryShading),
	)
	if len(items) == 0 {
		t.Add(layout.RowPadding, 1800, blankCell(), blankCell(), blankCell())
		return t
	}
	for i, p := range items {
		t.Add(layout.RowData, 1800,
			layout.TextCell(indexLabel(i), layout.AlignCenter).Top(),
			layout.TextCell(p.Content, layout.AlignLeft).Top(),
			layout.TextCell(p.Response, layout.AlignLeft).Top(),
		)
	}
	return t
}

func summaryPendingSignatures(c models.SummaryConclusion) *layout.Table {
	t := layout.NewTable(layout.Split(portraitWidth, 33, 33, 34), layout.BorderThin)
	signer := func(label, name string) layout.Cell {
		return layout.NewCell(
			para(layout.Plain(label)),
			para(),
			layout.Centered(text(name, 16)),
		).Top().WithBorders(layout.Borders{Bottom: layout.BorderThin, Left: layout.BorderThin, Right: layout.BorderThin})
	}
	t.Add(layout.RowFooter, 1500,
		signer("填報之查驗人員簽名:", c.VerifierName),
		signer("主導查驗員簽名:", c.LeadVerifierName),
		signer("委託單位代表簽名:", c.ClientRepName),
	)
	t.Add(layout.RowFooter, 0, layout.NewCell(
		para(layout.Strong("備註:")),
		para(box(FilledBox, c.MemoCorrection, 0),
			layout.Strong("書面審查及/或訪談結果，尚有上述事項待釐清/補正，請於第一階段(S-1)前說明或提送補正資料。")),
	).Span(3))
	return t
}
