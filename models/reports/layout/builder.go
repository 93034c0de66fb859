package layout

import "strings"

func Plain(text string) Run {
	return Run{Text: text}
}

func Strong(text string) Run {
	return Run{Text: text, Bold: true}
}

// Para is a left aligned paragraph.
func Para(runs ...Run) Paragraph {
	return Paragraph{Runs: runs}
}

func Centered(runs ...Run) Paragraph {
	return Paragraph{Runs: runs, Align: AlignCenter}
}

// Lines splits text on newlines into paragraphs with one run each.
func Lines(text string, align Align) []Paragraph {
	parts := strings.Split(text, "\n")
	out := make([]Paragraph, 0, len(parts))
	for _, p := range parts {
		out = append(out, Paragraph{Runs: []Run{Plain(p)}, Align: align})
	}
	return out
}

func NewCell(paragraphs ...Paragraph) Cell {
	return Cell{Paragraphs: paragraphs}
}

func TextCell(text string, align Align) Cell {
	return Cell{Paragraphs: Lines(text, align)}
}

func RunsCell(align Align, runs ...Run) Cell {
	return Cell{Paragraphs: []Paragraph{{Runs: runs, Align: align}}}
}

func (c Cell) Span(cols int) Cell {
	c.ColSpan = cols
	return c
}

func (c Cell) Down(rows int) Cell {
	c.RowSpan = rows
	return c
}

func (c Cell) Shade(hex string) Cell {
	c.Shading = hex
	return c
}

func (c Cell) WithBorders(b Borders) Cell {
	c.Borders = &b
	return c
}

func (c Cell) Top() Cell {
	c.VAlign = VAlignTop
	return c
}

func (c Cell) Stacked() Cell {
	c.Vertical = true
	return c
}

func NewTable(columns []int, border Border) *Table {
	return &Table{Columns: columns, Borders: AllBorders(border)}
}

// Add appends a row and returns the table for chaining.
func (t *Table) Add(kind RowKind, height int, cells ...Cell) *Table {
	t.Rows = append(t.Rows, Row{Cells: cells, Height: height, Kind: kind})
	return t
}

// Split divides total by the given percentages; the last column absorbs rounding.
func Split(total int, percents ...float64) []int {
	out := make([]int, len(percents))
	used := 0
	for i, p := range percents {
		if i == len(percents)-1 {
			out[i] = total - used
			break
		}
		out[i] = int(float64(total) * p / 100)
		used += out[i]
	}
	return out
}
