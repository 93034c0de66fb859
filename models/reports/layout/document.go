// Package layout is a small declarative document model (document, sections,
// paragraphs and tables made of rows, cells and text runs) plus the renderer
// that turns it into a workbook. Builders describe what a page holds; only
// the renderer knows about the output format.
package layout

import "strings"

// Lengths are in twips (1/20 pt, the unit Word calls DXA) unless noted.
const (
	TwipsPerPoint = 20
	TwipsPerInch  = 1440
	TwipsPerCm    = 567
)

type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
	AlignJustify
)

type VAlign int

const (
	VAlignCenter VAlign = iota
	VAlignTop
	VAlignBottom
)

// Field is a value substituted at print time.
type Field int

const (
	FieldNone Field = iota
	FieldPage
	FieldPages
)

type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	Subscript bool
	// Size in points; 0 uses the document default.
	Size  float64
	Field Field
	// Shrink lets a header or footer cut this text short to stay within
	// the spreadsheet length limit.
	Shrink bool
}

type Paragraph struct {
	Runs            []Run
	Align           Align
	PageBreakBefore bool
	// Height is the minimum row height; 0 lets the renderer decide.
	Height int
}

// Text returns the paragraph as plain text; fields render as their markers.
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		switch r.Field {
		case FieldPage:
			b.WriteString("{PAGE}")
		case FieldPages:
			b.WriteString("{PAGES}")
		default:
			b.WriteString(r.Text)
		}
	}
	return b.String()
}

// Border is a line weight in eighths of a point; 0 draws nothing.
type Border int

const (
	BorderNone  Border = 0
	BorderThin  Border = 4
	BorderStd   Border = 12
	BorderThick Border = 18
)

type Borders struct {
	Top, Bottom, Left, Right Border
}

func AllBorders(b Border) Borders {
	return Borders{Top: b, Bottom: b, Left: b, Right: b}
}

type Cell struct {
	Paragraphs []Paragraph
	ColSpan    int
	RowSpan    int
	// Shading is an RGB hex fill such as "C5E0B3"; empty means none.
	Shading string
	// Borders overrides the table default when set.
	Borders *Borders
	VAlign  VAlign
	// Vertical stacks the characters top to bottom.
	Vertical bool
}

// Text joins the cell paragraphs with newlines.
func (c Cell) Text() string {
	lines := make([]string, 0, len(c.Paragraphs))
	for _, p := range c.Paragraphs {
		lines = append(lines, p.Text())
	}
	return strings.Join(lines, "\n")
}

func (c Cell) colSpan() int {
	if c.ColSpan < 1 {
		return 1
	}
	return c.ColSpan
}

func (c Cell) rowSpan() int {
	if c.RowSpan < 1 {
		return 1
	}
	return c.RowSpan
}

// RowKind tags rows so callers can tell content from layout rows.
type RowKind int

const (
	RowData RowKind = iota
	RowHeader
	RowSection
	RowPadding
	RowFooter
)

type Row struct {
	Cells  []Cell
	Height int
	Kind   RowKind
}

type Table struct {
	// Columns holds the column widths.
	Columns []int
	Rows    []Row
	Borders Borders
}

// Width is the sum of the column widths.
func (t *Table) Width() int {
	w := 0
	for _, c := range t.Columns {
		w += c
	}
	return w
}

// RowsOfKind returns the rows tagged with kind.
func (t *Table) RowsOfKind(kind RowKind) []Row {
	var out []Row
	for _, r := range t.Rows {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Block is a Paragraph or a Table.
type Block interface {
	block()
}

func (*Paragraph) block() {}
func (*Table) block()     {}

type Margins struct {
	Top, Bottom, Left, Right, Header, Footer int
}

// HeaderFooter holds the three print zones of a page header or footer.
// A "\n" inside a run starts a new line.
type HeaderFooter struct {
	Left, Center, Right []Run
}

type Section struct {
	// Name becomes the worksheet name.
	Name        string
	Orientation Orientation
	Margins     Margins
	// Width is the printable width; paragraphs span it.
	Width  int
	Header HeaderFooter
	Footer HeaderFooter
	Blocks []Block
}

// Tables returns the tables of the section in order.
func (s Section) Tables() []*Table {
	var out []*Table
	for _, b := range s.Blocks {
		if t, ok := b.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

// Paragraphs returns the top-level paragraphs of the section in order.
func (s Section) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, b := range s.Blocks {
		if p, ok := b.(*Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

type Font struct {
	Latin    string
	EastAsia string
	// Size in points.
	Size float64
}

type Document struct {
	Title    string
	Subject  string
	Creator  string
	Font     Font
	Sections []Section
}

// Section looks a section up by name.
func (d Document) Section(name string) (Section, bool) {
	for _, s := range d.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// SectionNames lists the section names in order.
func (d Document) SectionNames() []string {
	names := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		names = append(names, s.Name)
	}
	return names
}
