package docfill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		marker   string
		expected TableKind
	}{
		{
			name:     "no marker",
			body:     table(textRow("Name", "Value"), textRow("{name}", "{value}")),
			marker:   DefaultListingMarker,
			expected: KindStandard,
		},
		{
			name:     "marker in first row",
			body:     table(textRow("Related Party Details"), textRow("x")),
			marker:   DefaultListingMarker,
			expected: KindMarkedListing,
		},
		{
			name:     "marker inside text",
			body:     table(textRow("a", "Disclosure of Related Party transactions")),
			marker:   DefaultListingMarker,
			expected: KindMarkedListing,
		},
		{
			name:     "marker split across runs",
			body:     table(row(cell(`<w:p>` + textRun("Related ") + textRun("Party") + `</w:p>`))),
			marker:   DefaultListingMarker,
			expected: KindMarkedListing,
		},
		{
			name:     "marker in nested table",
			body:     table(row(cell(para("outer"), table(textRow("Related Party"))))),
			marker:   DefaultListingMarker,
			expected: KindMarkedListing,
		},
		{
			name: "marker two levels deep",
			body: table(row(cell(para("outer"),
				table(row(cell(para("middle"), table(textRow("Related Party")))))))),
			marker:   DefaultListingMarker,
			expected: KindMarkedListing,
		},
		{
			name:     "case sensitive",
			body:     table(textRow("related party")),
			marker:   DefaultListingMarker,
			expected: KindStandard,
		},
		{
			name:     "custom marker",
			body:     table(textRow("Directors")),
			marker:   "Directors",
			expected: KindMarkedListing,
		},
		{
			name:     "empty marker",
			body:     table(textRow("Related Party")),
			marker:   "",
			expected: KindStandard,
		},
		{
			name:     "empty table",
			body:     `<w:tbl></w:tbl>`,
			marker:   DefaultListingMarker,
			expected: KindStandard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseTestBody(t, tt.body)
			tbl := doc.Tables()[0]
			before := rowTexts(tbl)

			assert.Equal(t, tt.expected, Classify(tbl, tt.marker))
			assert.Equal(t, before, rowTexts(tbl))
		})
	}
}

func TestClassifyNil(t *testing.T) {
	assert.Equal(t, KindStandard, Classify(nil, DefaultListingMarker))
}

func TestTableKindString(t *testing.T) {
	assert.Equal(t, "standard", KindStandard.String())
	assert.Equal(t, "listing", KindMarkedListing.String())
	assert.Equal(t, "unknown", TableKind(7).String())
}
