package docfill

import (
	"fmt"

	"github.com/benjaminschreck/docfill/pkg/docfill/xml"
)

// Report summarizes what a fill did to a document
type Report struct {
	// StandardTables and ListingTables count top-level tables by kind
	StandardTables int
	ListingTables  int
	// ParagraphsSubstituted counts paragraphs whose runs were rewritten
	ParagraphsSubstituted int
	// ParagraphsSkipped counts paragraphs that failed and were left as is
	ParagraphsSkipped int
	RowsAdded         int
}

// Tables returns the number of top-level tables processed
func (r Report) Tables() int {
	return r.StandardTables + r.ListingTables
}

// filler walks one document and applies substitution and replication. It is
// used for a single fill and never shared.
type filler struct {
	replacements *Replacements
	listing      listingPlan
	logger       *Logger
	report       Report
}

// listingPlan is the resolved listing configuration of an engine
type listingPlan struct {
	marker      string
	templateRow int
	values      *Replacements
}

func newListingPlan(config ListingConfig) listingPlan {
	return listingPlan{
		marker:      config.Marker,
		templateRow: config.TemplateRow,
		values:      NewReplacements(config.Values),
	}
}

func (f *filler) fillDocument(doc *xml.Document, additionalRows int) {
	if doc == nil || doc.Body == nil {
		return
	}

	tableIndex, paraIndex := 0, 0
	for _, elem := range doc.Body.Elements {
		switch el := elem.(type) {
		case *xml.Paragraph:
			f.substitute(el, f.replacements, fmt.Sprintf("paragraph %d", paraIndex))
			paraIndex++
		case *xml.Table:
			f.fillTable(el, additionalRows, fmt.Sprintf("table %d", tableIndex))
			tableIndex++
		}
	}
}

// fillTable classifies a top-level table and dispatches on its kind
func (f *filler) fillTable(table *xml.Table, additionalRows int, loc string) {
	kind := Classify(table, f.listing.marker)
	f.logger.Debug("%s classified as %s (%d rows)", loc, kind, len(table.Rows))

	switch kind {
	case KindMarkedListing:
		f.report.ListingTables++
		f.fillListing(table, additionalRows, loc)
	default:
		f.report.StandardTables++
		f.fillStandard(table, additionalRows, loc)
	}
}

// fillStandard substitutes every paragraph of table, nested tables
// included, then grows table from its last row. Nested tables never grow.
func (f *filler) fillStandard(table *xml.Table, additionalRows int, loc string) {
	for r, row := range table.Rows {
		for c, cell := range row.Cells {
			cellLoc := fmt.Sprintf("%s row %d cell %d", loc, r, c)
			paraIndex, tableIndex := 0, 0
			for _, elem := range cell.Content {
				switch el := elem.(type) {
				case *xml.Paragraph:
					f.substitute(el, f.replacements, fmt.Sprintf("%s paragraph %d", cellLoc, paraIndex))
					paraIndex++
				case *xml.Table:
					f.fillStandard(el, 0, fmt.Sprintf("%s > table %d", cellLoc, tableIndex))
					tableIndex++
				}
			}
		}
	}

	if additionalRows > 0 && len(table.Rows) > 0 {
		added := ReplicateRow(table, table.LastRow(), additionalRows)
		f.report.RowsAdded += added
		f.logger.Debug("%s grew by %d rows", loc, added)
	}
}

// fillListing substitutes the paragraphs of the outer table, then processes
// every nested table as a listing.
func (f *filler) fillListing(table *xml.Table, additionalRows int, loc string) {
	for r, row := range table.Rows {
		for c, cell := range row.Cells {
			cellLoc := fmt.Sprintf("%s row %d cell %d", loc, r, c)
			for p, para := range cell.Paragraphs() {
				f.substitute(para, f.replacements, fmt.Sprintf("%s paragraph %d", cellLoc, p))
			}
			for t, nested := range cell.Tables() {
				f.fillListingRows(nested, additionalRows, fmt.Sprintf("%s > table %d", cellLoc, t))
			}
		}
	}
}

// fillListingRows fills a nested listing table with the caller's
// replacements, then clones the template row and applies the listing values
// to the template row and every row after it.
func (f *filler) fillListingRows(table *xml.Table, additionalRows int, loc string) {
	f.fillStandard(table, 0, loc)

	template := f.listing.templateRow
	if additionalRows <= 0 || template < 1 || len(table.Rows) <= template {
		return
	}

	added := ReplicateRow(table, table.Rows[template], additionalRows)
	f.report.RowsAdded += added
	f.logger.Debug("%s grew by %d rows from row %d", loc, added, template)

	for r := template; r < len(table.Rows); r++ {
		for c, cell := range table.Rows[r].Cells {
			for p, para := range cell.Paragraphs() {
				f.substitute(para, f.listing.values, fmt.Sprintf("%s row %d cell %d paragraph %d", loc, r, c, p))
			}
		}
	}
}

// substitute runs SubstituteParagraph and contains its failures: an error or
// a panic is logged and the paragraph is left as it was.
func (f *filler) substitute(para *xml.Paragraph, replacements *Replacements, loc string) {
	defer func() {
		if r := recover(); r != nil {
			f.skip(loc, RecoverError(r))
		}
	}()

	changed, err := SubstituteParagraph(para, replacements)
	if err != nil {
		f.skip(loc, err)
		return
	}
	if changed {
		f.report.ParagraphsSubstituted++
	}
}

func (f *filler) skip(loc string, err error) {
	f.report.ParagraphsSkipped++
	f.logger.Warn("skipping paragraph: %v", WithContext(err, "substitute", map[string]interface{}{"location": loc}))
}
