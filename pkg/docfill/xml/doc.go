// Package xml provides the in-memory document tree for the main part of a DOCX
// package (word/document.xml).
//
// DOCX files are ZIP archives whose main part is a WordprocessingML document.
// This package decodes that part into a mutable tree, lets callers edit text
// and grow tables, and encodes the tree back to XML.
//
// # Structure Organization
//
//   - types.go: core interfaces (BodyElement, ParagraphContent, RunContent)
//   - namespace.go: namespace URI to prefix resolution used by the codec
//   - raw.go: RawXMLElement, the verbatim container for everything not modelled
//   - document.go: Document and Body, ParseDocument and Marshal
//   - paragraph.go: Paragraph
//   - run.go: Run, Text, Tab, Break and RunProperties
//   - table.go: Table, Row and Cell
//
// # Key Concepts
//
// Formatting blocks (w:pPr, w:trPr, w:tcPr, w:tblPr, w:tblGrid) are opaque:
// they are kept as RawXMLElement values and only ever copied with Clone, so
// two rows never share a formatting block.
//
// Cells hold paragraphs and nested tables in document order. Anything the
// tree does not model (bookmarks, hyperlinks, drawings, section properties)
// is preserved verbatim and written back unchanged.
//
// Example of building a document by hand:
//
//	doc := xml.NewDocument()
//	p := xml.NewParagraph()
//	p.AddText("Hello {name}")
//	doc.Body.Elements = append(doc.Body.Elements, p)
//
// # XML Namespaces
//
// Elements of the WordprocessingML main namespace are always written with
// the w: prefix. Other elements keep the prefix declared in the source part.
package xml
