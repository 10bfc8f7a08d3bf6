package docfill

import (
	"github.com/benjaminschreck/docfill/pkg/docfill/xml"
)

// ReplicateRow appends count deep clones of template after the last row of
// table and returns the number of rows added. template does not need to be
// the last row.
//
// Clones carry copies of the row, cell, paragraph and run properties and the
// run text. Nested tables are cloned recursively. Drawings, fields,
// bookmarks and other non-text content carry document-unique identifiers and
// are not copied. Of the row, cell and table attributes only namespace
// declarations are kept.
func ReplicateRow(table *xml.Table, template *xml.Row, count int) int {
	if table == nil || template == nil || count <= 0 {
		return 0
	}
	for i := 0; i < count; i++ {
		table.AddRow(cloneRow(template))
	}
	return count
}

func cloneRow(src *xml.Row) *xml.Row {
	row := &xml.Row{
		Attrs:      xml.Declarations(src.Attrs),
		Exceptions: src.Exceptions.Clone(),
		Properties: src.Properties.Clone(),
		Cells:      make([]*xml.Cell, 0, len(src.Cells)),
	}
	for _, cell := range src.Cells {
		row.AddCell(cloneCell(cell))
	}
	return row
}

func cloneCell(src *xml.Cell) *xml.Cell {
	cell := &xml.Cell{Attrs: xml.Declarations(src.Attrs), Properties: src.Properties.Clone()}
	hasParagraph := false
	for _, elem := range src.Content {
		switch el := elem.(type) {
		case *xml.Paragraph:
			cell.Content = append(cell.Content, cloneParagraph(el))
			hasParagraph = true
		case *xml.Table:
			cell.Content = append(cell.Content, cloneTable(el))
		}
	}
	if !hasParagraph {
		cell.AddParagraph()
	}
	return cell
}

func cloneParagraph(src *xml.Paragraph) *xml.Paragraph {
	para := &xml.Paragraph{Properties: src.Properties.Clone()}
	for _, run := range src.Runs() {
		if clone := cloneRun(run); clone != nil {
			para.AddRun(clone)
		}
	}
	return para
}

// cloneRun returns nil for a run without text content
func cloneRun(src *xml.Run) *xml.Run {
	run := &xml.Run{Properties: src.Properties.Clone()}
	for _, content := range src.Content {
		switch c := content.(type) {
		case *xml.Text:
			run.Content = append(run.Content, &xml.Text{Value: c.Value, Preserve: c.Preserve})
		case *xml.Tab:
			run.Content = append(run.Content, &xml.Tab{})
		case *xml.Break:
			run.Content = append(run.Content, &xml.Break{Attrs: append(c.Attrs[:0:0], c.Attrs...), CarriageReturn: c.CarriageReturn})
		}
	}
	if len(run.Content) == 0 {
		return nil
	}
	return run
}

func cloneTable(src *xml.Table) *xml.Table {
	table := &xml.Table{
		Attrs:      xml.Declarations(src.Attrs),
		Properties: src.Properties.Clone(),
		Grid:       src.Grid.Clone(),
		Rows:       make([]*xml.Row, 0, len(src.Rows)),
	}
	for _, row := range src.Rows {
		table.AddRow(cloneRow(row))
	}
	return table
}
