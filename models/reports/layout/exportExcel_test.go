package layout

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func testDocument() Document {
	t := NewTable([]int{1000, 1000}, BorderThin)
	t.Add(RowHeader, 0, TextCell("head", AlignCenter).Span(2))
	t.Add(RowData, 400, TextCell("a", AlignLeft), TextCell("b", AlignLeft))
	t.Add(RowData, 0, TextCell("group", AlignCenter).Down(2).Stacked(), TextCell("c", AlignLeft))
	t.Add(RowData, 0, TextCell("d", AlignLeft))
	return Document{
		Title: "test",
		Font:  Font{Latin: "Times New Roman", EastAsia: "標楷體", Size: 12},
		Sections: []Section{
			{
				Name:  "Main",
				Width: 2000,
				Header: HeaderFooter{
					Center: []Run{{Text: "Title", Bold: true, Size: 16}},
				},
				Footer: HeaderFooter{
					Center: []Run{{Field: FieldPage}, {Text: " / "}, {Field: FieldPages}},
				},
				Blocks: []Block{t},
			},
			{
				Name:        "Wide/Appendix",
				Orientation: Landscape,
				Blocks:      []Block{&Paragraph{Runs: []Run{Plain("appendix")}}},
			},
		},
	}
}

func TestRenderMergesSpans(t *testing.T) {
	b, err := Render(testDocument())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 2 || got[0] != "Main" || got[1] != "Wide-Appendix" {
		t.Fatalf("sheets = %v", got)
	}

	merges, err := f.GetMergeCells("Main")
	if err != nil {
		t.Fatalf("GetMergeCells: %v", err)
	}
	want := map[string]string{"A1": "B1", "A3": "A4"}
	if len(merges) != len(want) {
		t.Fatalf("merges = %d, want %d", len(merges), len(want))
	}
	for _, m := range merges {
		end, ok := want[m.GetStartAxis()]
		if !ok || end != m.GetEndAxis() {
			t.Errorf("unexpected merge %s:%s", m.GetStartAxis(), m.GetEndAxis())
		}
	}

	cases := []struct {
		cell string
		want string
	}{
		{"A1", "head"},
		{"A2", "a"},
		{"B2", "b"},
		{"A3", "group"},
		{"B3", "c"},
		{"B4", "d"},
	}
	for _, c := range cases {
		got, err := f.GetCellValue("Main", c.cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", c.cell, err)
		}
		if got != c.want {
			t.Errorf("%s = %q, want %q", c.cell, got, c.want)
		}
	}
}

func TestRenderRejectsEmptyDocument(t *testing.T) {
	if _, err := Render(Document{Title: "empty"}); err == nil {
		t.Fatal("expected error for a document without sections")
	}
}

func TestHeaderFooterCode(t *testing.T) {
	r := &renderer{doc: Document{Font: Font{Latin: "Times New Roman", EastAsia: "標楷體"}}}
	code := r.headerFooterCode(HeaderFooter{
		Left:   []Run{{Text: "A&B"}},
		Center: []Run{{Field: FieldPage}, {Text: " / "}, {Field: FieldPages}},
		Right:  []Run{{Text: "G-3022"}},
	})
	for _, part := range []string{"&L", "&C", "&R", "&P", "&N", "A&&B", "G-3022"} {
		if !strings.Contains(code, part) {
			t.Errorf("code %q missing %q", code, part)
		}
	}
}

func TestFitHeaderFooter(t *testing.T) {
	r := &renderer{doc: Document{Font: Font{Latin: "Times New Roman", EastAsia: "標楷體"}}}
	tests := []struct {
		name     string
		hf       HeaderFooter
		wantErr  bool
		wantText string
		shrunk   bool
	}{
		{
			name:     "cjk counted per character",
			hf:       HeaderFooter{Center: []Run{{Text: strings.Repeat("案", 120), Size: 16}}},
			wantText: strings.Repeat("案", 120),
		},
		{
			name:   "shrink run is cut",
			hf:     HeaderFooter{Left: []Run{{Text: "案件編號：" + strings.Repeat("案", 300), Shrink: true}}, Center: []Run{{Text: "查驗觀察報告"}}},
			shrunk: true,
		},
		{
			name:    "fixed text too long",
			hf:      HeaderFooter{Center: []Run{{Text: strings.Repeat("案", 300)}}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := HeaderFooter{Left: append([]Run(nil), tt.hf.Left...)}
			code, err := r.fitHeaderFooter(tt.hf)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d characters", headerFooterLen(code))
				}
				return
			}
			if err != nil {
				t.Fatalf("fitHeaderFooter: %v", err)
			}
			if n := headerFooterLen(code); n >= maxHeaderFooterLen {
				t.Errorf("length = %d", n)
			}
			if tt.wantText != "" && !strings.Contains(code, tt.wantText) {
				t.Errorf("code %q lost its text", code)
			}
			if tt.shrunk {
				if !strings.Contains(code, "查驗觀察報告") || !strings.Contains(code, "案件編號：案") {
					t.Errorf("code %q dropped fixed text", code)
				}
				if tt.hf.Left[0].Text != before.Left[0].Text {
					t.Error("input runs were modified")
				}
			}
		})
	}
}

func TestSplitAbsorbsRounding(t *testing.T) {
	got := Split(10000, 33, 33, 34)
	sum := 0
	for _, w := range got {
		sum += w
	}
	if sum != 10000 {
		t.Fatalf("Split sum = %d", sum)
	}
	if got[0] != 3300 || got[2] != 3400 {
		t.Fatalf("Split = %v", got)
	}
}

func TestSheetNameDeduplicates(t *testing.T) {
	used := map[string]int{}
	first := sheetName("附件", 0, used)
	second := sheetName("附件", 1, used)
	blank := sheetName("  ", 2, used)
	if first != "附件" || second != "附件 2" || blank != "Section 3" {
		t.Fatalf("names = %q %q %q", first, second, blank)
	}
}
