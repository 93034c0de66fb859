package layout

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/xuri/excelize/v2"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	FileExtXLSX     = "xlsx"

	paperA4 = 9
	// Column edges closer than this collapse into one grid line.
	edgeSnap = 60
	// Excel caps the encoded header/footer text, counted in UTF-16 units.
	maxHeaderFooterLen = 255
)

// Render writes the document as an xlsx workbook, one worksheet per section.
func Render(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderTo(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderTo streams the workbook to w.
func RenderTo(doc Document, w io.Writer) error {
	if len(doc.Sections) == 0 {
		return fmt.Errorf("document %q has no sections", doc.Title)
	}
	f := excelize.NewFile()
	defer f.Close()

	r := &renderer{f: f, doc: doc, styles: make(map[styleKey]int)}
	if doc.Font.Latin != "" {
		if err := f.SetDefaultFont(doc.Font.Latin); err != nil {
			return err
		}
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   doc.Title,
		Subject: doc.Subject,
		Creator: doc.Creator,
	}); err != nil {
		return err
	}

	used := make(map[string]int)
	for i, sec := range doc.Sections {
		name := sheetName(sec.Name, i, used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}
		if err := r.section(name, sec); err != nil {
			return fmt.Errorf("section %q: %w", sec.Name, err)
		}
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

type styleKey struct {
	fill     string
	borders  Borders
	align    Align
	valign   VAlign
	vertical bool
	size     float64
}

type renderer struct {
	f      *excelize.File
	doc    Document
	styles map[styleKey]int
}

func (r *renderer) section(sheet string, sec Section) error {
	f := r.f
	grid := newGrid(sec)
	for i, width := range grid.widths() {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, columnWidth(width)); err != nil {
			return err
		}
	}

	orientation := "portrait"
	if sec.Orientation == Landscape {
		orientation = "landscape"
	}
	size, fitWidth, fitHeight := paperA4, 1, 0
	if err := f.SetPageLayout(sheet, &excelize.PageLayoutOptions{
		Size:        &size,
		Orientation: &orientation,
		FitToWidth:  &fitWidth,
		FitToHeight: &fitHeight,
	}); err != nil {
		return err
	}
	fitToPage := true
	if err := f.SetSheetProps(sheet, &excelize.SheetPropsOptions{FitToPage: &fitToPage}); err != nil {
		return err
	}
	m := sec.Margins
	top, bottom, left, right := inches(m.Top), inches(m.Bottom), inches(m.Left), inches(m.Right)
	header, footer := inches(m.Header), inches(m.Footer)
	if err := f.SetPageMargins(sheet, &excelize.PageLayoutMarginsOptions{
		Top: &top, Bottom: &bottom, Left: &left, Right: &right, Header: &header, Footer: &footer,
	}); err != nil {
		return err
	}
	oddHeader, err := r.fitHeaderFooter(sec.Header)
	if err != nil {
		return fmt.Errorf("header: %w", err)
	}
	oddFooter, err := r.fitHeaderFooter(sec.Footer)
	if err != nil {
		return fmt.Errorf("footer: %w", err)
	}
	if err := f.SetHeaderFooter(sheet, &excelize.HeaderFooterOptions{
		OddHeader: oddHeader,
		OddFooter: oddFooter,
	}); err != nil {
		return err
	}

	row := 1
	lastCol := grid.columns()
	for _, b := range sec.Blocks {
		switch blk := b.(type) {
		case *Paragraph:
			if blk.PageBreakBefore && row > 1 {
				if err := f.InsertPageBreak(sheet, cellName(1, row)); err != nil {
					return err
				}
			}
			cell := Cell{Paragraphs: []Paragraph{*blk}}
			if err := r.cell(sheet, cell, 1, row, lastCol, row, Borders{}); err != nil {
				return err
			}
			if blk.Height > 0 {
				if err := f.SetRowHeight(sheet, row, points(blk.Height)); err != nil {
					return err
				}
			}
			row++
		case *Table:
			n, err := r.table(sheet, blk, grid, row)
			if err != nil {
				return err
			}
			row += n
		}
	}
	return nil
}

// table places the table rows starting at sheet row top and returns the
// number of sheet rows used.
func (r *renderer) table(sheet string, t *Table, g grid, top int) (int, error) {
	edges := make([]int, len(t.Columns)+1)
	for i, w := range t.Columns {
		edges[i+1] = edges[i] + w
	}
	ncols := len(t.Columns)
	occupied := make(map[[2]int]bool)
	for ri, row := range t.Rows {
		col := 0
		for _, c := range row.Cells {
			for occupied[[2]int{ri, col}] {
				col++
			}
			if col >= ncols {
				break
			}
			span := min(c.colSpan(), ncols-col)
			down := min(c.rowSpan(), len(t.Rows)-ri)
			for dr := 0; dr < down; dr++ {
				for dc := 0; dc < span; dc++ {
					occupied[[2]int{ri + dr, col + dc}] = true
				}
			}
			x1 := g.index(edges[col]) + 1
			x2 := g.index(edges[col+span])
			if x2 < x1 {
				x2 = x1
			}
			borders := t.Borders
			if c.Borders != nil {
				borders = *c.Borders
			}
			if err := r.cell(sheet, c, x1, top+ri, x2, top+ri+down-1, borders); err != nil {
				return 0, err
			}
			col += span
		}
		if row.Height > 0 {
			if err := r.f.SetRowHeight(sheet, top+ri, points(row.Height)); err != nil {
				return 0, err
			}
		}
	}
	return len(t.Rows), nil
}

// cell writes one cell over the inclusive range (x1,y1)-(x2,y2).
func (r *renderer) cell(sheet string, c Cell, x1, y1, x2, y2 int, borders Borders) error {
	f := r.f
	from, to := cellName(x1, y1), cellName(x2, y2)
	if from != to {
		if err := f.MergeCell(sheet, from, to); err != nil {
			return err
		}
	}
	align := AlignLeft
	if len(c.Paragraphs) > 0 {
		align = c.Paragraphs[0].Align
	}
	style, err := r.style(styleKey{
		fill:     c.Shading,
		borders:  borders,
		align:    align,
		valign:   c.VAlign,
		vertical: c.Vertical,
		size:     r.doc.Font.Size,
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, from, to, style); err != nil {
		return err
	}
	runs := r.richText(c.Paragraphs)
	if len(runs) == 0 {
		return nil
	}
	return f.SetCellRichText(sheet, from, runs)
}

func (r *renderer) richText(paragraphs []Paragraph) []excelize.RichTextRun {
	var out []excelize.RichTextRun
	for i, p := range paragraphs {
		if i > 0 {
			if len(out) == 0 {
				out = append(out, excelize.RichTextRun{Text: "", Font: r.font(Run{}, "")})
			}
			out[len(out)-1].Text += "\n"
		}
		for _, run := range p.Runs {
			text := run.Text
			switch run.Field {
			case FieldPage, FieldPages:
				// fields only exist in headers and footers
				continue
			}
			if text == "" {
				continue
			}
			out = append(out, excelize.RichTextRun{Text: text, Font: r.font(run, text)})
		}
	}
	hasText := false
	for _, run := range out {
		if strings.TrimSpace(run.Text) != "" {
			hasText = true
			break
		}
	}
	if !hasText {
		return nil
	}
	return out
}

func (r *renderer) font(run Run, text string) *excelize.Font {
	size := run.Size
	if size == 0 {
		size = r.doc.Font.Size
	}
	ft := &excelize.Font{
		Bold:   run.Bold,
		Italic: run.Italic,
		Family: r.family(text),
		Size:   size,
		Color:  "000000",
	}
	if run.Underline {
		ft.Underline = "single"
	}
	if run.Subscript {
		ft.VertAlign = "subscript"
	}
	return ft
}

// family picks the East Asian font for text containing Han characters.
func (r *renderer) family(text string) string {
	if r.doc.Font.EastAsia != "" {
		for _, ch := range text {
			if unicode.Is(unicode.Han, ch) || unicode.In(ch, unicode.Bopomofo) || (ch >= 0xFF00 && ch <= 0xFFEF) {
				return r.doc.Font.EastAsia
			}
		}
	}
	return r.doc.Font.Latin
}

func hasWordChars(text string) bool {
	for _, ch := range text {
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
			return true
		}
	}
	return false
}

func (r *renderer) style(k styleKey) (int, error) {
	if id, ok := r.styles[k]; ok {
		return id, nil
	}
	st := &excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: horizontal(k.align),
			Vertical:   vertical(k.valign),
			WrapText:   true,
		},
		Font: &excelize.Font{Family: r.doc.Font.Latin, Size: k.size},
	}
	if k.vertical {
		st.Alignment.TextRotation = 255
	}
	for _, side := range []struct {
		name   string
		weight Border
	}{
		{"top", k.borders.Top},
		{"bottom", k.borders.Bottom},
		{"left", k.borders.Left},
		{"right", k.borders.Right},
	} {
		if s := borderStyle(side.weight); s > 0 {
			st.Border = append(st.Border, excelize.Border{Type: side.name, Color: "000000", Style: s})
		}
	}
	if k.fill != "" {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#" + strings.TrimPrefix(k.fill, "#")}}
	}
	id, err := r.f.NewStyle(st)
	if err != nil {
		return 0, err
	}
	r.styles[k] = id
	return id, nil
}

func headerFooterLen(code string) int {
	return len(utf16.Encode([]rune(code)))
}

// fitHeaderFooter encodes hf within maxHeaderFooterLen. Shrink runs lose
// trailing characters first, longest run first; after that the font codes
// are dropped.
func (r *renderer) fitHeaderFooter(hf HeaderFooter) (string, error) {
	code := r.headerFooterCode(hf)
	if headerFooterLen(code) < maxHeaderFooterLen {
		return code, nil
	}
	hf = HeaderFooter{
		Left:   append([]Run(nil), hf.Left...),
		Center: append([]Run(nil), hf.Center...),
		Right:  append([]Run(nil), hf.Right...),
	}
	for headerFooterLen(code) >= maxHeaderFooterLen {
		run := longestShrinkRun(hf)
		if run == nil {
			break
		}
		text := []rune(run.Text)
		run.Text = string(text[:len(text)-1])
		code = r.headerFooterCode(hf)
	}
	if headerFooterLen(code) < maxHeaderFooterLen {
		return code, nil
	}
	code = plainHeaderFooterCode(hf)
	if n := headerFooterLen(code); n >= maxHeaderFooterLen {
		return "", fmt.Errorf("%d characters exceed the limit of %d", n, maxHeaderFooterLen)
	}
	return code, nil
}

func longestShrinkRun(hf HeaderFooter) *Run {
	var best *Run
	bestLen := 0
	for _, zone := range [][]Run{hf.Left, hf.Center, hf.Right} {
		for i := range zone {
			if n := len([]rune(zone[i].Text)); zone[i].Shrink && n > bestLen {
				best, bestLen = &zone[i], n
			}
		}
	}
	return best
}

// plainHeaderFooterCode is headerFooterCode without font switches.
func plainHeaderFooterCode(hf HeaderFooter) string {
	var b strings.Builder
	for _, z := range []struct {
		code string
		runs []Run
	}{{"&L", hf.Left}, {"&C", hf.Center}, {"&R", hf.Right}} {
		if len(z.runs) == 0 {
			continue
		}
		b.WriteString(z.code)
		for _, run := range z.runs {
			b.WriteString(fieldCode(run))
		}
	}
	return b.String()
}

func fieldCode(run Run) string {
	switch run.Field {
	case FieldPage:
		return "&P"
	case FieldPages:
		return "&N"
	default:
		return strings.ReplaceAll(run.Text, "&", "&&")
	}
}

// headerFooterCode encodes a header or footer with the spreadsheet
// header/footer control codes (&L &C &R zones, &P page, &N pages).
func (r *renderer) headerFooterCode(hf HeaderFooter) string {
	var b strings.Builder
	zones := []struct {
		code string
		runs []Run
	}{{"&L", hf.Left}, {"&C", hf.Center}, {"&R", hf.Right}}
	for _, z := range zones {
		if len(z.runs) == 0 {
			continue
		}
		b.WriteString(z.code)
		font, family := "", r.doc.Font.Latin
		for _, run := range z.runs {
			style := "Regular"
			if run.Bold {
				style = "Bold"
			}
			// Symbols and spaces keep the current family.
			if run.Field != FieldNone || hasWordChars(run.Text) {
				family = r.family(run.Text)
			}
			code := fmt.Sprintf("&\"%s,%s\"", family, style)
			if run.Size > 0 {
				code += fmt.Sprintf("&%d", int(run.Size))
			}
			if code != font {
				b.WriteString(code)
				font = code
			}
			b.WriteString(fieldCode(run))
		}
	}
	return b.String()
}

// grid is the sorted set of column edges shared by every table of a section.
type grid struct {
	edges []int
}

func newGrid(sec Section) grid {
	set := map[int]bool{0: true}
	if sec.Width > 0 {
		set[sec.Width] = true
	}
	for _, t := range sec.Tables() {
		x := 0
		for _, w := range t.Columns {
			x += w
			set[x] = true
		}
	}
	all := make([]int, 0, len(set))
	for e := range set {
		all = append(all, e)
	}
	sort.Ints(all)
	kept := []int{all[0]}
	for _, e := range all[1:] {
		if e-kept[len(kept)-1] >= edgeSnap {
			kept = append(kept, e)
		}
	}
	if len(kept) == 1 {
		kept = append(kept, TwipsPerInch)
	}
	return grid{edges: kept}
}

// index returns the grid line nearest to x.
func (g grid) index(x int) int {
	i := sort.SearchInts(g.edges, x)
	if i >= len(g.edges) {
		return len(g.edges) - 1
	}
	if i > 0 && x-g.edges[i-1] < g.edges[i]-x {
		return i - 1
	}
	return i
}

func (g grid) columns() int {
	return len(g.edges) - 1
}

func (g grid) widths() []int {
	out := make([]int, g.columns())
	for i := range out {
		out[i] = g.edges[i+1] - g.edges[i]
	}
	return out
}

func sheetName(name string, i int, used map[string]int) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	if clean == "" {
		clean = fmt.Sprintf("Section %d", i+1)
	}
	if rs := []rune(clean); len(rs) > 28 {
		clean = string(rs[:28])
	}
	used[clean]++
	if n := used[clean]; n > 1 {
		clean = fmt.Sprintf("%s %d", clean, n)
	}
	return clean
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// columnWidth converts twips to spreadsheet character units (7px per char plus 5px padding at 96dpi).
func columnWidth(twips int) float64 {
	px := float64(twips) / 15
	w := (px - 5) / 7
	if w < 0.5 {
		return 0.5
	}
	if w > 255 {
		return 255
	}
	return w
}

func points(twips int) float64 {
	p := float64(twips) / TwipsPerPoint
	if p > 409 {
		return 409
	}
	return p
}

func inches(twips int) float64 {
	return float64(twips) / TwipsPerInch
}

func horizontal(a Align) string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "justify"
	}
	return "left"
}

func vertical(v VAlign) string {
	switch v {
	case VAlignTop:
		return "top"
	case VAlignBottom:
		return "bottom"
	}
	return "center"
}

func borderStyle(b Border) int {
	switch {
	case b <= 0:
		return 0
	case b < BorderThick:
		return 1
	}
	return 2
}
