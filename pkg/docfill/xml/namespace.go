package xml

import (
	"encoding/xml"
	"strings"
)

const (
	// NamespaceMain is the WordprocessingML main namespace (transitional).
	NamespaceMain = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	// NamespaceMainStrict is the WordprocessingML main namespace (strict).
	NamespaceMainStrict = "http://purl.oclc.org/ooxml/wordprocessingml/main"

	namespaceXML = "http://www.w3.org/XML/1998/namespace"
	prefixMain   = "w"
)

// wellKnownPrefixes holds the conventional prefix of namespaces that commonly
// appear in document.xml. Declarations found in the part take precedence.
var wellKnownPrefixes = map[string]string{
	NamespaceMain:       prefixMain,
	NamespaceMainStrict: prefixMain,
	namespaceXML:        "xml",
	"http://schemas.openxmlformats.org/officeDocument/2006/relationships":    "r",
	"http://schemas.openxmlformats.org/officeDocument/2006/math":             "m",
	"http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing": "wp",
	"http://schemas.openxmlformats.org/drawingml/2006/main":                  "a",
	"http://schemas.openxmlformats.org/drawingml/2006/picture":               "pic",
	"http://schemas.openxmlformats.org/markup-compatibility/2006":            "mc",
	"urn:schemas-microsoft-com:vml":                                          "v",
	"urn:schemas-microsoft-com:office:office":                                "o",
	"urn:schemas-microsoft-com:office:word":                                  "w10",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingDrawing":    "wp14",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingShape":      "wps",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingCanvas":     "wpc",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingGroup":      "wpg",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingInk":        "wpi",
	"http://schemas.microsoft.com/office/word/2010/wordml":                   "w14",
	"http://schemas.microsoft.com/office/word/2012/wordml":                   "w15",
	"http://schemas.microsoft.com/office/word/2015/wordml/symex":             "w16se",
	"http://schemas.microsoft.com/office/word/2016/wordml/cid":               "w16cid",
	"http://schemas.microsoft.com/office/word/2018/wordml":                   "w16",
	"http://schemas.microsoft.com/office/word/2018/wordml/cex":               "w16cex",
	"http://schemas.microsoft.com/office/word/2006/wordml":                   "wne",
}

// namespaces maps namespace URIs to the prefix used when writing them back.
// encoding/xml resolves prefixes to URIs while decoding; the tree stores
// prefixes instead so that it can be written without namespace bookkeeping.
type namespaces map[string]string

// newNamespaces builds the resolver for a part from the declarations on its
// root element.
func newNamespaces(rootAttrs []xml.Attr) namespaces {
	ns := make(namespaces, len(wellKnownPrefixes)+len(rootAttrs))
	for uri, prefix := range wellKnownPrefixes {
		ns[uri] = prefix
	}
	declare(ns, rootAttrs)
	// Main namespace elements are always written as w:*
	ns[NamespaceMain] = prefixMain
	ns[NamespaceMainStrict] = prefixMain
	return ns
}

// scoped returns ns extended with the declarations in attrs. ns is not
// modified; when attrs declares nothing, ns itself is returned.
func (ns namespaces) scoped(attrs []xml.Attr) namespaces {
	if !hasDeclarations(attrs) {
		return ns
	}
	out := make(namespaces, len(ns)+len(attrs))
	for uri, prefix := range ns {
		out[uri] = prefix
	}
	declare(out, attrs)
	return out
}

// name converts a decoded name (URI form) to prefix form
func (ns namespaces) name(n xml.Name) xml.Name {
	if n.Space == "" || n.Space == "xmlns" {
		return n
	}
	if prefix, ok := ns[n.Space]; ok {
		return xml.Name{Space: prefix, Local: n.Local}
	}
	if strings.ContainsAny(n.Space, ":/") {
		// Undeclared URI: drop it rather than writing it as a prefix
		return xml.Name{Local: n.Local}
	}
	// Undeclared prefix, encoding/xml leaves it untranslated
	return n
}

// attrs converts decoded attributes to prefix form
func (ns namespaces) attrs(attrs []xml.Attr) []xml.Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]xml.Attr, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, xml.Attr{Name: ns.name(attr.Name), Value: attr.Value})
	}
	return out
}

func declare(ns namespaces, attrs []xml.Attr) {
	for _, attr := range attrs {
		switch {
		case attr.Name.Space == "xmlns":
			ns[attr.Value] = attr.Name.Local
		case attr.Name.Space == "" && attr.Name.Local == "xmlns":
			ns[attr.Value] = ""
		}
	}
}

// Declarations returns a copy of the namespace declarations in attrs, or nil
func Declarations(attrs []xml.Attr) []xml.Attr {
	var out []xml.Attr
	for _, attr := range attrs {
		if isDeclaration(attr) {
			out = append(out, attr)
		}
	}
	return out
}

func isDeclaration(attr xml.Attr) bool {
	return attr.Name.Space == "xmlns" || (attr.Name.Space == "" && attr.Name.Local == "xmlns")
}

func hasDeclarations(attrs []xml.Attr) bool {
	for _, attr := range attrs {
		if isDeclaration(attr) {
			return true
		}
	}
	return false
}

// isMain reports whether name is the main-namespace element local
func isMain(name xml.Name, local string) bool {
	return name.Local == local && (name.Space == NamespaceMain || name.Space == NamespaceMainStrict)
}

// qualified renders a prefix-form name as it appears in markup
func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// qualifiedAttrs renders prefix-form attributes for the encoder, which then
// writes them literally.
func qualifiedAttrs(attrs []xml.Attr) []xml.Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]xml.Attr, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, xml.Attr{Name: xml.Name{Local: qualified(attr.Name)}, Value: attr.Value})
	}
	return out
}

// mainName returns the prefix-form name of a main namespace element
func mainName(local string) xml.Name {
	return xml.Name{Space: prefixMain, Local: local}
}

// mainStart returns a start element for a main namespace element as the
// encoder expects it.
func mainStart(local string, attrs []xml.Attr) xml.StartElement {
	return xml.StartElement{Name: xml.Name{Local: prefixMain + ":" + local}, Attr: qualifiedAttrs(attrs)}
}
