package docfill

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/docfill/pkg/docfill/xml"
)

// Markup builders for test documents

func textRun(text string) string {
	return `<w:r><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

func para(text string) string {
	return `<w:p>` + textRun(text) + `</w:p>`
}

func cell(content ...string) string {
	return `<w:tc>` + strings.Join(content, "") + `</w:tc>`
}

func textCell(text string) string {
	return cell(para(text))
}

func row(cells ...string) string {
	return `<w:tr>` + strings.Join(cells, "") + `</w:tr>`
}

func textRow(texts ...string) string {
	cells := make([]string, 0, len(texts))
	for _, text := range texts {
		cells = append(cells, textCell(text))
	}
	return row(cells...)
}

func table(rows ...string) string {
	return `<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/></w:tblPr>` + strings.Join(rows, "") + `</w:tbl>`
}

// parseTestBody parses body markup into a document tree
func parseTestBody(t *testing.T, body string) *xml.Document {
	t.Helper()
	doc, err := xml.ParseDocument(strings.NewReader(WrapTestBody(body)))
	require.NoError(t, err)
	return doc
}

// readDocx extracts and parses the main document part of a package
func readDocx(t *testing.T, docx []byte) *xml.Document {
	t.Helper()
	doc, err := parseMain(docx)
	require.NoError(t, err)
	return doc
}

func parseMain(docx []byte) (*xml.Document, error) {
	reader, err := DocxReaderFromBytes(docx)
	if err != nil {
		return nil, err
	}
	part, err := reader.MainDocumentPart()
	if err != nil {
		return nil, err
	}
	content, err := reader.GetPart(part)
	if err != nil {
		return nil, err
	}
	return xml.ParseDocument(bytes.NewReader(content))
}

// rowTexts returns the text of every cell of every row of table
func rowTexts(table *xml.Table) [][]string {
	texts := make([][]string, 0, len(table.Rows))
	for _, r := range table.Rows {
		cells := make([]string, 0, len(r.Cells))
		for _, c := range r.Cells {
			cells = append(cells, c.GetText())
		}
		texts = append(texts, cells)
	}
	return texts
}

func marshalParagraph(t *testing.T, p *xml.Paragraph) string {
	t.Helper()
	doc := xml.NewDocument()
	doc.Body.Elements = append(doc.Body.Elements, p)
	out, err := xml.Marshal(doc)
	require.NoError(t, err)
	return string(out)
}

func quietLogger() *Logger {
	return NewLogger(nil, LogOff)
}
