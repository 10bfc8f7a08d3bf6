package xml

import (
	"encoding/xml"
)

// RawXMLElement represents an element that we preserve but don't parse.
//
// Name and Attrs are stored in prefix form (Name.Space holds the namespace
// prefix, not the URI). Inner holds the element content exactly as it was
// read. RawXMLElement has value semantics: use Clone to copy it.
type RawXMLElement struct {
	Name  xml.Name
	Attrs []xml.Attr
	Inner []byte
}

func (*RawXMLElement) isBodyElement()      {}
func (*RawXMLElement) isParagraphContent() {}
func (*RawXMLElement) isRunContent()       {}

// innerXML captures or writes element content verbatim
type innerXML struct {
	Content []byte `xml:",innerxml"`
}

// NewRawXMLElement creates an element in the main namespace
func NewRawXMLElement(local string, inner string, attrs ...xml.Attr) *RawXMLElement {
	return &RawXMLElement{Name: mainName(local), Attrs: attrs, Inner: []byte(inner)}
}

// decodeRaw reads the element started by start without interpreting it
func decodeRaw(d *xml.Decoder, start xml.StartElement, ns namespaces) (*RawXMLElement, error) {
	scope := ns.scoped(start.Attr)

	var inner innerXML
	if err := d.DecodeElement(&inner, &start); err != nil {
		return nil, err
	}

	return &RawXMLElement{
		Name:  scope.name(start.Name),
		Attrs: scope.attrs(start.Attr),
		Inner: append([]byte(nil), inner.Content...),
	}, nil
}

// MarshalXML writes the element back with its original content
func (r RawXMLElement) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: qualified(r.Name)}
	start.Attr = qualifiedAttrs(r.Attrs)
	return e.EncodeElement(innerXML{Content: r.Inner}, start)
}

// Clone returns a deep copy of the element. Clone of nil is nil.
func (r *RawXMLElement) Clone() *RawXMLElement {
	if r == nil {
		return nil
	}
	return &RawXMLElement{
		Name:  r.Name,
		Attrs: append([]xml.Attr(nil), r.Attrs...),
		Inner: append([]byte(nil), r.Inner...),
	}
}

// Is reports whether the element is the main namespace element local
func (r *RawXMLElement) Is(local string) bool {
	return r != nil && r.Name.Space == prefixMain && r.Name.Local == local
}

// Attr returns the value of the attribute with the given local name
func (r *RawXMLElement) Attr(local string) string {
	if r == nil {
		return ""
	}
	return attrValue(r.Attrs, local)
}

// SetAttr sets a main namespace attribute, replacing an existing one
func (r *RawXMLElement) SetAttr(local, value string) {
	for i, attr := range r.Attrs {
		if attr.Name.Local == local {
			r.Attrs[i].Value = value
			return
		}
	}
	r.Attrs = append(r.Attrs, xml.Attr{Name: mainName(local), Value: value})
}

// cloneAll deep-copies a slice of raw elements
func cloneAll(elems []*RawXMLElement) []*RawXMLElement {
	if len(elems) == 0 {
		return nil
	}
	out := make([]*RawXMLElement, 0, len(elems))
	for _, el := range elems {
		out = append(out, el.Clone())
	}
	return out
}
