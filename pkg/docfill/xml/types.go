package xml

import (
	"encoding/xml"
	"io"
)

// BodyElement represents any element that can appear in a document body or
// in a table cell: *Paragraph, *Table or *RawXMLElement.
type BodyElement interface {
	isBodyElement()
}

// ParagraphContent represents any content that can appear in a paragraph:
// *Run or *RawXMLElement.
type ParagraphContent interface {
	isParagraphContent()
}

// RunContent represents any content that can appear in a run:
// *Text, *Tab, *Break or *RawXMLElement.
type RunContent interface {
	isRunContent()
}

// decodeChildren calls fn for every child element of the element whose start
// token was just consumed. fn must consume the child entirely. It returns
// once the parent's end token has been read.
func decodeChildren(d *xml.Decoder, fn func(start xml.StartElement) error) error {
	for {
		token, err := d.Token()
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if err := fn(t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// encodeAll writes each value through its MarshalXML implementation
func encodeAll[T any](e *xml.Encoder, values []T) error {
	for _, v := range values {
		if err := e.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

// attrValue returns the value of the first attribute with the given local
// name, regardless of its namespace.
func attrValue(attrs []xml.Attr, local string) string {
	for _, attr := range attrs {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}
