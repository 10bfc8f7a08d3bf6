package docfill

import (
	"strings"

	"github.com/benjaminschreck/docfill/pkg/docfill/xml"
)

// TableKind is the processing policy selected for a table
type TableKind int

const (
	// KindStandard tables are filled and grown from their last row
	KindStandard TableKind = iota
	// KindMarkedListing tables contain the listing marker; their nested
	// tables are grown from the template row and filled with the listing
	// values.
	KindMarkedListing
)

func (k TableKind) String() string {
	switch k {
	case KindStandard:
		return "standard"
	case KindMarkedListing:
		return "listing"
	default:
		return "unknown"
	}
}

// Classify returns KindMarkedListing if the text of any paragraph in table,
// nested tables included, contains marker. An empty marker never matches.
func Classify(table *xml.Table, marker string) TableKind {
	if table == nil || marker == "" {
		return KindStandard
	}
	if containsMarker(table, marker) {
		return KindMarkedListing
	}
	return KindStandard
}

// containsMarker scans rows in order, and within a cell its own paragraphs
// before its nested tables.
func containsMarker(table *xml.Table, marker string) bool {
	for _, row := range table.Rows {
		for _, cell := range row.Cells {
			for _, para := range cell.Paragraphs() {
				if strings.Contains(para.GetText(), marker) {
					return true
				}
			}
			for _, nested := range cell.Tables() {
				if containsMarker(nested, marker) {
					return true
				}
			}
		}
	}
	return false
}
