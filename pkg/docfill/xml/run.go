package xml

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Run represents a run of text with common properties
type Run struct {
	Attrs      []xml.Attr
	Properties *RunProperties
	// Content keeps text, tabs, breaks and preserved elements in order
	Content []RunContent
}

func (*Run) isParagraphContent() {}

// NewRun creates a run holding text with default formatting
func NewRun(text string) *Run {
	run := &Run{}
	run.SetText(text)
	return run
}

// decodeRun reads a w:r element
func decodeRun(d *xml.Decoder, start xml.StartElement, ns namespaces) (*Run, error) {
	scope := ns.scoped(start.Attr)
	run := &Run{Attrs: scope.attrs(start.Attr)}

	err := decodeChildren(d, func(t xml.StartElement) error {
		switch {
		case isMain(t.Name, "rPr"):
			props, err := decodeRunProperties(d, t, scope)
			if err != nil {
				return err
			}
			run.Properties = props
		case isMain(t.Name, "t"):
			var text struct {
				Space string `xml:"space,attr"`
				Value string `xml:",chardata"`
			}
			if err := d.DecodeElement(&text, &t); err != nil {
				return err
			}
			run.Content = append(run.Content, &Text{Value: text.Value, Preserve: text.Space == "preserve"})
		case isMain(t.Name, "tab"):
			if err := d.Skip(); err != nil {
				return err
			}
			run.Content = append(run.Content, &Tab{})
		case isMain(t.Name, "br"), isMain(t.Name, "cr"):
			br := &Break{Attrs: scope.attrs(t.Attr), CarriageReturn: t.Name.Local == "cr"}
			if err := d.Skip(); err != nil {
				return err
			}
			run.Content = append(run.Content, br)
		default:
			raw, err := decodeRaw(d, t, scope)
			if err != nil {
				return err
			}
			run.Content = append(run.Content, raw)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// MarshalXML implements custom XML marshaling for Run to ensure proper namespacing
func (r Run) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start = mainStart("r", r.Attrs)
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if r.Properties != nil {
		if err := e.Encode(r.Properties); err != nil {
			return err
		}
	}

	if err := encodeAll(e, r.Content); err != nil {
		return err
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// GetText returns the text content of a run. Tabs read as "\t" and breaks
// as "\n".
func (r *Run) GetText() string {
	var sb strings.Builder
	for _, content := range r.Content {
		switch c := content.(type) {
		case *Text:
			sb.WriteString(c.Value)
		case *Tab:
			sb.WriteByte('\t')
		case *Break:
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// SetText replaces the text content of the run. "\t" becomes a tab and "\n"
// a line break. Preserved elements such as drawings are dropped.
func (r *Run) SetText(text string) {
	r.Content = nil
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			r.Content = append(r.Content, &Break{})
		}
		for j, segment := range strings.Split(line, "\t") {
			if j > 0 {
				r.Content = append(r.Content, &Tab{})
			}
			if segment != "" {
				r.Content = append(r.Content, NewText(segment))
			}
		}
	}
}

// Text represents text content
type Text struct {
	Value string
	// Preserve keeps leading and trailing whitespace (xml:space="preserve")
	Preserve bool
}

func (*Text) isRunContent() {}

// NewText creates a text element, preserving whitespace when needed
func NewText(value string) *Text {
	return &Text{
		Value:    value,
		Preserve: strings.TrimSpace(value) != value,
	}
}

// MarshalXML implements custom XML marshaling for Text to ensure proper namespacing
func (t Text) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start = mainStart("t", nil)
	if t.Preserve {
		start.Attr = []xml.Attr{{Name: xml.Name{Local: "xml:space"}, Value: "preserve"}}
	}
	return e.EncodeElement(t.Value, start)
}

// Tab represents a tab character inside a run
type Tab struct{}

func (*Tab) isRunContent() {}

// MarshalXML writes an empty w:tab element
func (t Tab) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return e.EncodeElement(struct{}{}, mainStart("tab", nil))
}

// Break represents a line break (w:br) or a carriage return (w:cr)
type Break struct {
	Attrs          []xml.Attr
	CarriageReturn bool
}

func (*Break) isRunContent() {}

// Type returns the break type (page, column, textWrapping); empty means a
// text wrapping break.
func (b *Break) Type() string {
	return attrValue(b.Attrs, "type")
}

// MarshalXML writes an empty w:br, or w:cr for a carriage return
func (b Break) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	local := "br"
	if b.CarriageReturn {
		local = "cr"
	}
	return e.EncodeElement(struct{}{}, mainStart(local, b.Attrs))
}

// rPrOrder is the schema order of run property children (CT_RPr)
var rPrOrder = func() map[string]int {
	names := []string{
		"rStyle", "rFonts", "b", "bCs", "i", "iCs", "caps", "smallCaps", "strike",
		"dstrike", "outline", "shadow", "emboss", "imprint", "noProof", "snapToGrid",
		"vanish", "webHidden", "color", "spacing", "w", "kern", "position", "sz",
		"szCs", "highlight", "u", "effect", "bdr", "shd", "fitText", "vertAlign",
		"rtl", "cs", "em", "lang", "eastAsianLayout", "specVanish", "oMath", "rPrChange",
	}
	order := make(map[string]int, len(names))
	for i, name := range names {
		order[name] = i
	}
	return order
}()

// RunProperties represents run formatting properties (w:rPr).
//
// The children are kept in document order so that properties the tree does
// not interpret survive a round trip. Accessors cover the character
// attributes docfill needs: bold, italic, underline, font family, font size
// and color.
type RunProperties struct {
	Elements []*RawXMLElement
}

// decodeRunProperties reads a w:rPr element
func decodeRunProperties(d *xml.Decoder, start xml.StartElement, ns namespaces) (*RunProperties, error) {
	scope := ns.scoped(start.Attr)
	props := &RunProperties{}
	err := decodeChildren(d, func(t xml.StartElement) error {
		raw, err := decodeRaw(d, t, scope)
		if err != nil {
			return err
		}
		props.Elements = append(props.Elements, raw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return props, nil
}

// MarshalXML implements custom XML marshaling for RunProperties
func (p RunProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start = mainStart("rPr", nil)
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeAll(e, p.Elements); err != nil {
		return err
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Clone returns a deep copy. Clone of nil is nil.
func (p *RunProperties) Clone() *RunProperties {
	if p == nil {
		return nil
	}
	return &RunProperties{Elements: cloneAll(p.Elements)}
}

func (p *RunProperties) find(local string) *RawXMLElement {
	if p == nil {
		return nil
	}
	for _, el := range p.Elements {
		if el.Is(local) {
			return el
		}
	}
	return nil
}

// set replaces the element local or inserts it at its schema position
func (p *RunProperties) set(el *RawXMLElement) {
	for i, existing := range p.Elements {
		if existing.Is(el.Name.Local) {
			p.Elements[i] = el
			return
		}
	}

	pos, ok := rPrOrder[el.Name.Local]
	if !ok {
		p.Elements = append(p.Elements, el)
		return
	}
	at := len(p.Elements)
	for i, existing := range p.Elements {
		if order, known := rPrOrder[existing.Name.Local]; known && existing.Name.Space == prefixMain && order > pos {
			at = i
			break
		}
	}
	p.Elements = append(p.Elements, nil)
	copy(p.Elements[at+1:], p.Elements[at:])
	p.Elements[at] = el
}

func (p *RunProperties) remove(local string) {
	kept := p.Elements[:0]
	for _, el := range p.Elements {
		if !el.Is(local) {
			kept = append(kept, el)
		}
	}
	p.Elements = kept
}

// toggle reads an on/off property such as w:b
func (p *RunProperties) toggle(local string) bool {
	el := p.find(local)
	if el == nil {
		return false
	}
	switch el.Attr("val") {
	case "0", "false", "off":
		return false
	}
	return true
}

func (p *RunProperties) setToggle(local string, on bool) {
	if on {
		p.set(NewRawXMLElement(local, ""))
		return
	}
	p.remove(local)
}

func (p *RunProperties) value(local string) string {
	return p.find(local).Attr("val")
}

func (p *RunProperties) setValue(local, value string) {
	if value == "" {
		p.remove(local)
		return
	}
	p.set(NewRawXMLElement(local, "", xml.Attr{Name: mainName("val"), Value: value}))
}

// Bold reports whether the run is bold
func (p *RunProperties) Bold() bool { return p.toggle("b") }

// SetBold sets or clears bold
func (p *RunProperties) SetBold(on bool) { p.setToggle("b", on) }

// Italic reports whether the run is italic
func (p *RunProperties) Italic() bool { return p.toggle("i") }

// SetItalic sets or clears italic
func (p *RunProperties) SetItalic(on bool) { p.setToggle("i", on) }

// Underline returns the underline style (single, double, ...), or "" if none
func (p *RunProperties) Underline() string { return p.value("u") }

// SetUnderline sets the underline style; "" clears it
func (p *RunProperties) SetUnderline(style string) { p.setValue("u", style) }

// Color returns the text color as hex RGB or "auto", or "" if unset
func (p *RunProperties) Color() string { return p.value("color") }

// SetColor sets the text color; "" clears it
func (p *RunProperties) SetColor(color string) { p.setValue("color", color) }

// FontFamily returns the font used for ASCII text, or "" if unset
func (p *RunProperties) FontFamily() string {
	fonts := p.find("rFonts")
	if fonts == nil {
		return ""
	}
	if ascii := fonts.Attr("ascii"); ascii != "" {
		return ascii
	}
	return fonts.Attr("hAnsi")
}

// SetFontFamily sets the ASCII and high ANSI fonts; "" clears them
func (p *RunProperties) SetFontFamily(family string) {
	if family == "" {
		p.remove("rFonts")
		return
	}
	p.set(NewRawXMLElement("rFonts", "",
		xml.Attr{Name: mainName("ascii"), Value: family},
		xml.Attr{Name: mainName("hAnsi"), Value: family},
	))
}

// FontSize returns the font size in half-points, or 0 if unset
func (p *RunProperties) FontSize() int {
	size, err := strconv.Atoi(p.value("sz"))
	if err != nil {
		return 0
	}
	return size
}

// SetFontSize sets the font size in half-points; 0 clears it
func (p *RunProperties) SetFontSize(halfPoints int) {
	if halfPoints <= 0 {
		p.remove("sz")
		return
	}
	p.setValue("sz", strconv.Itoa(halfPoints))
}
