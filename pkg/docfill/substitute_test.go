package docfill

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/benjaminschreck/docfill/pkg/docfill/xml"
)

func TestReplacementsOrder(t *testing.T) {
	r := NewReplacements(map[string]string{
		"{a}":     "1",
		"{name}":  "World",
		"{b}":     "2",
		"":        "ignored",
		"{name}s": "Worlds",
	})

	assert.Equal(t, []string{"{name}s", "{name}", "{a}", "{b}"}, r.Keys())
	assert.Equal(t, 4, r.Len())

	value, ok := r.Value("{name}")
	assert.True(t, ok)
	assert.Equal(t, "World", value)
	_, ok = r.Value("")
	assert.False(t, ok)
}

func TestReplacementsApply(t *testing.T) {
	tests := []struct {
		name         string
		replacements map[string]string
		input        string
		expected     string
	}{
		{
			name:         "single placeholder",
			replacements: map[string]string{"{name}": "World"},
			input:        "Hello {name}",
			expected:     "Hello World",
		},
		{
			name:         "every occurrence",
			replacements: map[string]string{"{x}": "1"},
			input:        "{x}+{x}={x}{x}",
			expected:     "1+1=11",
		},
		{
			name:         "longest key wins",
			replacements: map[string]string{"{name}": "A", "{name}s": "B"},
			input:        "{name}s and {name}",
			expected:     "B and A",
		},
		{
			name:         "values are not substituted again",
			replacements: map[string]string{"{a}": "{b}", "{b}": "{a}"},
			input:        "{a} {b}",
			expected:     "{b} {a}",
		},
		{
			name:         "empty key ignored",
			replacements: map[string]string{"": "x", "k": "v"},
			input:        "kk",
			expected:     "vv",
		},
		{
			name:         "no match",
			replacements: map[string]string{"{missing}": "x"},
			input:        "plain text",
			expected:     "plain text",
		},
		{
			name:         "empty set",
			replacements: nil,
			input:        "{name}",
			expected:     "{name}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewReplacements(tt.replacements).Apply(tt.input))
		})
	}
}

func TestNilReplacements(t *testing.T) {
	var r *Replacements
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Matches("{name}"))
	assert.Equal(t, "{name}", r.Apply("{name}"))
	assert.Nil(t, r.Keys())
}

func TestSubstituteParagraph(t *testing.T) {
	doc := parseTestBody(t, `<w:p><w:pPr><w:jc w:val="center"/></w:pPr>`+
		`<w:bookmarkStart w:id="1" w:name="greeting"/>`+
		`<w:r><w:t xml:space="preserve">Hello </w:t></w:r>`+
		`<w:r><w:rPr><w:b/></w:rPr><w:t>{na</w:t></w:r><w:r><w:t>me}!</w:t></w:r>`+
		`<w:bookmarkEnd w:id="1"/></w:p>`)
	p := doc.Paragraphs()[0]

	changed, err := SubstituteParagraph(p, NewReplacements(map[string]string{"{name}": "World"}))
	require.NoError(t, err)
	assert.True(t, changed)

	runs := p.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, "Hello World!", runs[0].GetText())
	assert.Nil(t, runs[0].Properties)
	assert.Equal(t, "Hello World!", p.GetText())

	require.NotNil(t, p.Properties)
	assert.Equal(t, `<w:jc w:val="center"/>`, string(p.Properties.Inner))

	require.Len(t, p.Content, 3)
	assert.True(t, p.Content[0].(*xml.RawXMLElement).Is("bookmarkStart"))
	assert.Same(t, runs[0], p.Content[1])
	assert.True(t, p.Content[2].(*xml.RawXMLElement).Is("bookmarkEnd"))
}

func TestSubstituteParagraphKeepsPreservedContent(t *testing.T) {
	doc := parseTestBody(t, `<w:p>`+
		`<w:bookmarkStart w:id="2" w:name="who"/>`+
		`<w:r><w:rPr><w:b/></w:rPr><w:t>{name}</w:t></w:r>`+
		`<w:bookmarkEnd w:id="2"/>`+
		`<w:hyperlink r:id="rId9"><w:r><w:t>{name}</w:t></w:r></w:hyperlink>`+
		`<w:r><w:t xml:space="preserve"> tail</w:t></w:r>`+
		`</w:p>`)
	p := doc.Paragraphs()[0]
	assert.Equal(t, "{name} tail", p.GetText())

	changed, err := SubstituteParagraph(p, NewReplacements(map[string]string{"{name}": "World"}))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "World tail", p.GetText())

	require.Len(t, p.Content, 4)
	assert.True(t, p.Content[0].(*xml.RawXMLElement).Is("bookmarkStart"))
	run := p.Content[1].(*xml.Run)
	assert.Equal(t, "World tail", run.GetText())
	assert.Nil(t, run.Properties)
	assert.True(t, p.Content[2].(*xml.RawXMLElement).Is("bookmarkEnd"))
	link := p.Content[3].(*xml.RawXMLElement)
	assert.True(t, link.Is("hyperlink"))
	// hyperlink text is not paragraph text
	assert.Contains(t, string(link.Inner), "{name}")

	out := marshalParagraph(t, p)
	start := strings.Index(out, "bookmarkStart")
	text := strings.Index(out, "World tail")
	end := strings.Index(out, "bookmarkEnd")
	assert.True(t, start < text && text < end, "bookmark does not enclose the text: %s", out)
}

func TestSubstituteParagraphWithoutPlaceholder(t *testing.T) {
	doc := parseTestBody(t, `<w:p><w:r><w:rPr><w:i/></w:rPr><w:t>no</w:t></w:r><w:r><w:t xml:space="preserve"> placeholders</w:t></w:r></w:p>`)
	p := doc.Paragraphs()[0]
	before := marshalParagraph(t, p)

	changed, err := SubstituteParagraph(p, NewReplacements(map[string]string{"{name}": "World"}))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, before, marshalParagraph(t, p))
	assert.Len(t, p.Runs(), 2)
}

func TestSubstituteParagraphErrors(t *testing.T) {
	_, err := SubstituteParagraph(nil, NewReplacements(map[string]string{"a": "b"}))
	assert.Error(t, err)
}

func TestSubstituteParagraphMultiline(t *testing.T) {
	p := xml.NewParagraph()
	p.AddText("{address}")

	changed, err := SubstituteParagraph(p, NewReplacements(map[string]string{"{address}": "1 Main St\nSpringfield"}))
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, p.Runs(), 1)
	assert.Equal(t, "1 Main St\nSpringfield", p.GetText())
}

// runsFor splits text into runs at the given cut points
func runsFor(text string, cuts []int) *xml.Paragraph {
	p := xml.NewParagraph()
	last := 0
	for _, cut := range cuts {
		if cut <= last || cut >= len(text) {
			continue
		}
		p.AddText(text[last:cut]).Properties = &xml.RunProperties{}
		last = cut
	}
	p.AddText(text[last:])
	return p
}

func TestSubstituteParagraphProperties(t *testing.T) {
	keys := []string{"{a}", "{bb}", "{name}", "{a}{bb}"}

	rapid.Check(t, func(t *rapid.T) {
		values := make(map[string]string)
		for _, key := range keys {
			if rapid.Bool().Draw(t, "use "+key) {
				values[key] = rapid.StringMatching(`[a-z{}]{0,6}`).Draw(t, "value "+key)
			}
		}
		replacements := NewReplacements(values)

		var sb strings.Builder
		for i, n := 0, rapid.IntRange(0, 6).Draw(t, "pieces"); i < n; i++ {
			sb.WriteString(rapid.SampledFrom([]string{"x", " ", "{", "}", "{a}", "{bb}", "{name}", "a"}).Draw(t, "piece"))
		}
		text := sb.String()
		cuts := rapid.SliceOfN(rapid.IntRange(0, 40), 0, 4).Draw(t, "cuts")

		p := runsFor(text, cuts)
		before := p.Runs()

		changed, err := SubstituteParagraph(p, replacements)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !replacements.Matches(text) {
			if changed {
				t.Fatalf("paragraph %q changed without a placeholder", text)
			}
			after := p.Runs()
			if len(after) != len(before) {
				t.Fatalf("runs changed: %d -> %d", len(before), len(after))
			}
			for i := range after {
				if after[i] != before[i] {
					t.Fatalf("run %d replaced", i)
				}
			}
			return
		}

		if !changed {
			t.Fatalf("paragraph %q not changed", text)
		}
		if n := len(p.Runs()); n != 1 {
			t.Fatalf("got %d runs, want 1", n)
		}
		if got, want := p.GetText(), replacements.Apply(text); got != want {
			t.Fatalf("text = %q, want %q", got, want)
		}
	})
}
