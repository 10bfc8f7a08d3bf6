package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// Header is the XML declaration Word writes in front of document.xml
const Header = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// ErrNoBody is returned when a document part has no w:body element
var ErrNoBody = errors.New("document has no body")

// Document represents a Word document structure
type Document struct {
	// Attrs preserves the root element attributes (namespace declarations,
	// mc:Ignorable)
	Attrs []xml.Attr
	// Leading keeps children of w:document that precede the body
	// (w:background)
	Leading []*RawXMLElement
	Body    *Body
	// Trailing keeps children of w:document that follow the body
	Trailing []*RawXMLElement

	mainNamespace string
}

// NewDocument creates a document with an empty body
func NewDocument() *Document {
	return &Document{
		Attrs: []xml.Attr{{Name: xml.Name{Space: "xmlns", Local: prefixMain}, Value: NamespaceMain}},
		Body:  &Body{},
	}
}

// UnmarshalXML reads a w:document element
func (doc *Document) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if !isMain(start.Name, "document") {
		return fmt.Errorf("unexpected root element %q", start.Name.Local)
	}

	ns := newNamespaces(start.Attr)
	doc.Attrs = ns.attrs(start.Attr)
	doc.mainNamespace = start.Name.Space

	return decodeChildren(d, func(t xml.StartElement) error {
		if isMain(t.Name, "body") {
			body, err := decodeBody(d, t, ns)
			if err != nil {
				return err
			}
			doc.Body = body
			return nil
		}

		raw, err := decodeRaw(d, t, ns)
		if err != nil {
			return err
		}
		if doc.Body == nil {
			doc.Leading = append(doc.Leading, raw)
		} else {
			doc.Trailing = append(doc.Trailing, raw)
		}
		return nil
	})
}

// MarshalXML writes the document, declaring the w prefix if the source did
// not.
func (doc Document) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	attrs := doc.Attrs
	if !declaresMain(attrs) {
		uri := doc.mainNamespace
		if uri == "" {
			uri = NamespaceMain
		}
		attrs = append([]xml.Attr{{Name: xml.Name{Space: "xmlns", Local: prefixMain}, Value: uri}}, attrs...)
	}

	start = mainStart("document", attrs)
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeAll(e, doc.Leading); err != nil {
		return err
	}
	if doc.Body != nil {
		if err := e.Encode(doc.Body); err != nil {
			return err
		}
	}
	if err := encodeAll(e, doc.Trailing); err != nil {
		return err
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

func declaresMain(attrs []xml.Attr) bool {
	for _, attr := range attrs {
		if attr.Name.Space == "xmlns" && attr.Name.Local == prefixMain {
			return true
		}
	}
	return false
}

// Paragraphs returns the top-level paragraphs of the body
func (doc *Document) Paragraphs() []*Paragraph {
	if doc.Body == nil {
		return nil
	}
	var paras []*Paragraph
	for _, elem := range doc.Body.Elements {
		if para, ok := elem.(*Paragraph); ok {
			paras = append(paras, para)
		}
	}
	return paras
}

// Tables returns the top-level tables of the body in document order
func (doc *Document) Tables() []*Table {
	if doc.Body == nil {
		return nil
	}
	var tables []*Table
	for _, elem := range doc.Body.Elements {
		if table, ok := elem.(*Table); ok {
			tables = append(tables, table)
		}
	}
	return tables
}

// Body represents the document body
type Body struct {
	// Elements maintains the order of all body elements, including the
	// trailing section properties (w:sectPr)
	Elements []BodyElement
}

func decodeBody(d *xml.Decoder, start xml.StartElement, ns namespaces) (*Body, error) {
	scope := ns.scoped(start.Attr)
	body := &Body{}
	err := decodeChildren(d, func(t xml.StartElement) error {
		elem, err := decodeBodyElement(d, t, scope)
		if err != nil {
			return err
		}
		body.Elements = append(body.Elements, elem)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// decodeBodyElement reads a block-level element: a paragraph, a table or
// anything else, preserved as is.
func decodeBodyElement(d *xml.Decoder, start xml.StartElement, ns namespaces) (BodyElement, error) {
	switch {
	case isMain(start.Name, "p"):
		return decodeParagraph(d, start, ns)
	case isMain(start.Name, "tbl"):
		return decodeTable(d, start, ns)
	default:
		return decodeRaw(d, start, ns)
	}
}

// MarshalXML implements custom XML marshaling to preserve element order
func (b Body) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start = mainStart("body", nil)
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeAll(e, b.Elements); err != nil {
		return err
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// AddParagraph appends an empty paragraph to the body
func (b *Body) AddParagraph() *Paragraph {
	para := NewParagraph()
	b.Elements = append(b.Elements, para)
	return para
}

// AddTable appends a table to the body
func (b *Body) AddTable(table *Table) {
	b.Elements = append(b.Elements, table)
}

// ParseDocument parses a Word document XML
func ParseDocument(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if doc.Body == nil {
		return nil, ErrNoBody
	}

	return &doc, nil
}

// Marshal serializes a document part, XML declaration included
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Header)

	encoder := xml.NewEncoder(&buf)
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return buf.Bytes(), nil
}
