package xml

import (
	"encoding/xml"
	"strings"
)

// Paragraph represents a paragraph in the document
type Paragraph struct {
	Attrs []xml.Attr
	// Properties is the opaque paragraph formatting block (w:pPr)
	Properties *RawXMLElement
	// Content maintains the order of runs and preserved elements
	// (bookmarks, hyperlinks, proofing marks, ...)
	Content []ParagraphContent
}

func (*Paragraph) isBodyElement() {}

// NewParagraph creates an empty paragraph
func NewParagraph() *Paragraph {
	return &Paragraph{}
}

// decodeParagraph reads a w:p element
func decodeParagraph(d *xml.Decoder, start xml.StartElement, ns namespaces) (*Paragraph, error) {
	scope := ns.scoped(start.Attr)
	para := &Paragraph{Attrs: scope.attrs(start.Attr)}

	err := decodeChildren(d, func(t xml.StartElement) error {
		switch {
		case isMain(t.Name, "pPr"):
			props, err := decodeRaw(d, t, scope)
			if err != nil {
				return err
			}
			para.Properties = props
		case isMain(t.Name, "r"):
			run, err := decodeRun(d, t, scope)
			if err != nil {
				return err
			}
			para.Content = append(para.Content, run)
		default:
			raw, err := decodeRaw(d, t, scope)
			if err != nil {
				return err
			}
			para.Content = append(para.Content, raw)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return para, nil
}

// MarshalXML implements custom XML marshaling for Paragraph to ensure proper namespacing
func (p Paragraph) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start = mainStart("p", p.Attrs)
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if p.Properties != nil {
		if err := e.Encode(p.Properties); err != nil {
			return err
		}
	}

	if err := encodeAll(e, p.Content); err != nil {
		return err
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Runs returns the runs of the paragraph in order
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	for _, content := range p.Content {
		if run, ok := content.(*Run); ok {
			runs = append(runs, run)
		}
	}
	return runs
}

// GetText returns the concatenated text of all runs in a paragraph
func (p *Paragraph) GetText() string {
	var sb strings.Builder
	for _, run := range p.Runs() {
		sb.WriteString(run.GetText())
	}
	return sb.String()
}

// FirstRunIndex returns the content index of the first run, or -1 when the
// paragraph has none.
func (p *Paragraph) FirstRunIndex() int {
	for i, content := range p.Content {
		if _, ok := content.(*Run); ok {
			return i
		}
	}
	return -1
}

// InsertRun places run at content index i. An index outside the content
// appends.
func (p *Paragraph) InsertRun(i int, run *Run) {
	if i < 0 || i >= len(p.Content) {
		p.AddRun(run)
		return
	}
	p.Content = append(p.Content, nil)
	copy(p.Content[i+1:], p.Content[i:])
	p.Content[i] = run
}

// RemoveRuns deletes every run and returns how many were removed. Other
// content keeps its relative order.
func (p *Paragraph) RemoveRuns() int {
	kept := make([]ParagraphContent, 0, len(p.Content))
	for _, content := range p.Content {
		if _, ok := content.(*Run); !ok {
			kept = append(kept, content)
		}
	}
	removed := len(p.Content) - len(kept)
	p.Content = kept
	return removed
}

// AddRun appends a run at the end of the paragraph
func (p *Paragraph) AddRun(run *Run) {
	p.Content = append(p.Content, run)
}

// AddText appends a new default-formatted run holding text
func (p *Paragraph) AddText(text string) *Run {
	run := NewRun(text)
	p.AddRun(run)
	return run
}
