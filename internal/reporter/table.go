package reporter

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderSummaryTable writes a Filename / Call Count table with one row per
// file, in tally order, paths relativized to basePath
func RenderSummaryTable(w io.Writer, files Counts, basePath string) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleDefault)
	tbl.Style().Format.Header = text.FormatDefault

	tbl.AppendHeader(table.Row{"Filename", "Call Count"})
	for _, file := range files.Keys() {
		tbl.AppendRow(table.Row{RelativePath(file, basePath), files.Get(file)})
	}

	_, err := io.WriteString(w, tbl.Render()+"\n")
	return err
}
