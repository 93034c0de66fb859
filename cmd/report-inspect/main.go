package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/xuri/excelize/v2"
)

func main() {
	maxCells := flag.Int("max-cells", 200, "Cells to print per sheet (0 prints all)")
	sheet := flag.String("sheet", "", "Only this sheet")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: report-inspect [--sheet name] [--max-cells n] file.xlsx")
		os.Exit(1)
	}
	f, err := excelize.OpenFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := inspect(color.Output, f, *sheet, *maxCells); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// inspect prints document properties, then per sheet its merged ranges and
// non-empty cells.
func inspect(w io.Writer, f *excelize.File, only string, maxCells int) error {
	bold := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint)

	if props, err := f.GetDocProps(); err == nil {
		_, _ = fmt.Fprintf(w, "%s %s\n", bold.Sprint("Title:"), props.Title)
	}

	for _, name := range f.GetSheetList() {
		if only != "" && name != only {
			continue
		}
		_, _ = fmt.Fprintln(w, bold.Sprint(name))

		merges, err := f.GetMergeCells(name)
		if err != nil {
			return fmt.Errorf("%s: merged cells: %w", name, err)
		}
		if len(merges) > 0 {
			ranges := make([]string, 0, len(merges))
			for _, m := range merges {
				ranges = append(ranges, m.GetStartAxis()+":"+m.GetEndAxis())
			}
			_, _ = fmt.Fprintf(w, "%s %s\n", faint.Sprint("merged:"), strings.Join(ranges, " "))
		}

		rows, err := f.GetRows(name)
		if err != nil {
			return fmt.Errorf("%s: rows: %w", name, err)
		}
		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.MaxColWidth = 60
		tbl.Wrap = true
		printed := 0
	rowLoop:
		for r, row := range rows {
			for c, value := range row {
				if strings.TrimSpace(value) == "" {
					continue
				}
				if maxCells > 0 && printed >= maxCells {
					tbl.AddRow(faint.Sprint("..."), faint.Sprint("truncated"))
					break rowLoop
				}
				axis, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					return err
				}
				tbl.AddRow(axis, value)
				printed++
			}
		}
		tbl.RightAlign(0)
		_, _ = fmt.Fprintln(w, tbl)
		_, _ = fmt.Fprintln(w)
	}
	return nil
}
