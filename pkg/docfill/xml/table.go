package xml

import (
	"encoding/xml"
	"strings"
)

// Table represents a table in the document
type Table struct {
	Attrs []xml.Attr
	// Properties is the opaque table formatting block (w:tblPr)
	Properties *RawXMLElement
	// Grid is the opaque column definition block (w:tblGrid)
	Grid *RawXMLElement
	Rows []*Row
	// Extra keeps non-row children (bookmarks, custom XML); they are written
	// after the rows.
	Extra []*RawXMLElement
}

func (*Table) isBodyElement() {}

// decodeTable reads a w:tbl element
func decodeTable(d *xml.Decoder, start xml.StartElement, ns namespaces) (*Table, error) {
	scope := ns.scoped(start.Attr)
	table := &Table{Attrs: scope.attrs(start.Attr)}

	err := decodeChildren(d, func(t xml.StartElement) error {
		if isMain(t.Name, "tr") {
			row, err := decodeRow(d, t, scope)
			if err != nil {
				return err
			}
			table.Rows = append(table.Rows, row)
			return nil
		}

		raw, err := decodeRaw(d, t, scope)
		if err != nil {
			return err
		}
		switch {
		case isMain(t.Name, "tblPr"):
			table.Properties = raw
		case isMain(t.Name, "tblGrid"):
			table.Grid = raw
		default:
			table.Extra = append(table.Extra, raw)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// MarshalXML implements custom XML marshaling for Table to ensure proper namespacing
func (t Table) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start = mainStart("tbl", t.Attrs)
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if t.Properties != nil {
		if err := e.Encode(t.Properties); err != nil {
			return err
		}
	}
	if t.Grid != nil {
		if err := e.Encode(t.Grid); err != nil {
			return err
		}
	}
	if err := encodeAll(e, t.Rows); err != nil {
		return err
	}
	if err := encodeAll(e, t.Extra); err != nil {
		return err
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// AddRow appends a row at the end of the table
func (t *Table) AddRow(row *Row) {
	t.Rows = append(t.Rows, row)
}

// LastRow returns the last row, or nil for a table without rows
func (t *Table) LastRow() *Row {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[len(t.Rows)-1]
}

// Row represents a row in a table
type Row struct {
	Attrs []xml.Attr
	// Exceptions holds table property exceptions for this row (w:tblPrEx)
	Exceptions *RawXMLElement
	// Properties is the opaque row formatting block (w:trPr)
	Properties *RawXMLElement
	Cells      []*Cell
	Extra      []*RawXMLElement
}

// decodeRow reads a w:tr element
func decodeRow(d *xml.Decoder, start xml.StartElement, ns namespaces) (*Row, error) {
	scope := ns.scoped(start.Attr)
	row := &Row{Attrs: scope.attrs(start.Attr)}

	err := decodeChildren(d, func(t xml.StartElement) error {
		if isMain(t.Name, "tc") {
			cell, err := decodeCell(d, t, scope)
			if err != nil {
				return err
			}
			row.Cells = append(row.Cells, cell)
			return nil
		}

		raw, err := decodeRaw(d, t, scope)
		if err != nil {
			return err
		}
		switch {
		case isMain(t.Name, "tblPrEx"):
			row.Exceptions = raw
		case isMain(t.Name, "trPr"):
			row.Properties = raw
		default:
			row.Extra = append(row.Extra, raw)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// MarshalXML implements custom XML marshaling for Row to ensure proper namespacing
func (r Row) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start = mainStart("tr", r.Attrs)
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if r.Exceptions != nil {
		if err := e.Encode(r.Exceptions); err != nil {
			return err
		}
	}
	if r.Properties != nil {
		if err := e.Encode(r.Properties); err != nil {
			return err
		}
	}
	if err := encodeAll(e, r.Cells); err != nil {
		return err
	}
	if err := encodeAll(e, r.Extra); err != nil {
		return err
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// AddCell appends a cell and returns it
func (r *Row) AddCell(cell *Cell) *Cell {
	r.Cells = append(r.Cells, cell)
	return cell
}

// Cell represents a cell in a table. A cell holds paragraphs and nested
// tables in document order.
type Cell struct {
	Attrs []xml.Attr
	// Properties is the opaque cell formatting block (w:tcPr)
	Properties *RawXMLElement
	Content    []BodyElement
}

// decodeCell reads a w:tc element
func decodeCell(d *xml.Decoder, start xml.StartElement, ns namespaces) (*Cell, error) {
	scope := ns.scoped(start.Attr)
	cell := &Cell{Attrs: scope.attrs(start.Attr)}

	err := decodeChildren(d, func(t xml.StartElement) error {
		if isMain(t.Name, "tcPr") {
			props, err := decodeRaw(d, t, scope)
			if err != nil {
				return err
			}
			cell.Properties = props
			return nil
		}

		elem, err := decodeBodyElement(d, t, scope)
		if err != nil {
			return err
		}
		cell.Content = append(cell.Content, elem)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cell, nil
}

// MarshalXML implements custom XML marshaling for Cell to ensure proper namespacing
func (c Cell) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start = mainStart("tc", c.Attrs)
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if c.Properties != nil {
		if err := e.Encode(c.Properties); err != nil {
			return err
		}
	}
	if err := encodeAll(e, c.Content); err != nil {
		return err
	}
	// A cell must end with a paragraph
	if !endsWithParagraph(c.Content) {
		if err := e.Encode(NewParagraph()); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

func endsWithParagraph(content []BodyElement) bool {
	for i := len(content) - 1; i >= 0; i-- {
		switch content[i].(type) {
		case *Paragraph:
			return true
		case *Table:
			return false
		}
	}
	return false
}

// Paragraphs returns the paragraphs directly inside the cell
func (c *Cell) Paragraphs() []*Paragraph {
	var paras []*Paragraph
	for _, elem := range c.Content {
		if para, ok := elem.(*Paragraph); ok {
			paras = append(paras, para)
		}
	}
	return paras
}

// Tables returns the tables nested directly inside the cell
func (c *Cell) Tables() []*Table {
	var tables []*Table
	for _, elem := range c.Content {
		if table, ok := elem.(*Table); ok {
			tables = append(tables, table)
		}
	}
	return tables
}

// AddParagraph appends an empty paragraph and returns it
func (c *Cell) AddParagraph() *Paragraph {
	para := NewParagraph()
	c.Content = append(c.Content, para)
	return para
}

// GetText returns the concatenated text of all paragraphs in a cell
func (c *Cell) GetText() string {
	var texts []string
	for _, para := range c.Paragraphs() {
		if text := para.GetText(); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n")
}
