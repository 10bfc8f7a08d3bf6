// Package docfill fills Word (DOCX) document templates.
//
// A fill replaces placeholders in the text of paragraphs and grows tables by
// cloning a template row:
//
//	out, err := docfill.Process(docxBytes, map[string]string{
//	    "{name}": "World",
//	}, 2)
//
// Top-level tables are classified before they are filled. A table containing
// the listing marker (default "Related Party") is a listing table: its
// nested tables are grown from their template row (the second row by
// default) and the grown rows receive the listing values. Every other table
// is a standard table and grows from its last row.
//
// A paragraph that contains a placeholder loses its run formatting: its runs
// are replaced by a single default-formatted run. Paragraph properties are
// kept. Paragraphs without placeholders are never touched.
package docfill

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/benjaminschreck/docfill/pkg/docfill/xml"
)

// Engine fills documents. It is safe for concurrent use; each call works on
// its own document tree.
type Engine struct {
	mu      sync.RWMutex
	config  *Config
	listing listingPlan
}

// New creates a new engine with the global configuration.
func New() *Engine {
	return NewWithConfig(GetGlobalConfig())
}

// NewWithConfig creates a new engine with custom configuration. Unset fields
// take their default values.
func NewWithConfig(config *Config) *Engine {
	config = NewConfigWithDefaults(config)
	return &Engine{
		config:  config,
		listing: newListingPlan(config.Listing),
	}
}

// Config returns a copy of the engine configuration
func (e *Engine) Config() *Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config.Clone()
}

// SetConfig validates config and swaps it in. Fills already running keep
// the configuration they started with.
func (e *Engine) SetConfig(config *Config) error {
	config = NewConfigWithDefaults(config)
	if err := config.Validate(); err != nil {
		return err
	}

	listing := newListingPlan(config.Listing)
	e.mu.Lock()
	e.config = config
	e.listing = listing
	e.mu.Unlock()
	return nil
}

func (e *Engine) currentListing() listingPlan {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.listing
}

// Fill applies replacements and row growth to doc in place
func (e *Engine) Fill(doc *xml.Document, replacements map[string]string, additionalRows int) Report {
	return e.FillContext(context.Background(), doc, replacements, additionalRows)
}

// FillContext is Fill with the logger carried by ctx
func (e *Engine) FillContext(ctx context.Context, doc *xml.Document, replacements map[string]string, additionalRows int) Report {
	f := &filler{
		replacements: NewReplacements(replacements),
		listing:      e.currentListing(),
		logger:       LoggerFromContext(ctx),
	}
	f.fillDocument(doc, additionalRows)
	return f.report
}

// Process fills a DOCX package and returns the new package
func (e *Engine) Process(documentBytes []byte, replacements map[string]string, additionalRows int) ([]byte, error) {
	out, _, err := e.ProcessWithReport(context.Background(), documentBytes, replacements, additionalRows)
	return out, err
}

// ProcessWithReport fills a DOCX package and reports what was done. Any
// failure to read or write the package is a *DocumentError and no output is
// returned.
func (e *Engine) ProcessWithReport(ctx context.Context, documentBytes []byte, replacements map[string]string, additionalRows int) ([]byte, Report, error) {
	start := time.Now()
	logger := LoggerFromContext(ctx)

	reader, err := DocxReaderFromBytes(documentBytes)
	if err != nil {
		return nil, Report{}, NewDocumentError(OpRead, "", err)
	}

	partName, err := reader.MainDocumentPart()
	if err != nil {
		return nil, Report{}, NewDocumentError(OpExtract, "", err)
	}
	content, err := reader.GetPart(partName)
	if err != nil {
		return nil, Report{}, NewDocumentError(OpExtract, partName, err)
	}

	doc, err := xml.ParseDocument(bytes.NewReader(content))
	if err != nil {
		return nil, Report{}, NewDocumentError(OpParse, partName, err)
	}

	report := e.FillContext(ctx, doc, replacements, additionalRows)

	filled, err := xml.Marshal(doc)
	if err != nil {
		return nil, Report{}, NewDocumentError(OpMarshal, partName, err)
	}

	var buf bytes.Buffer
	if err := reader.Rewrite(&buf, map[string][]byte{partName: filled}); err != nil {
		return nil, Report{}, NewDocumentError(OpWrite, partName, err)
	}

	logger.WithFields(Fields{
		"tables":      report.Tables(),
		"substituted": report.ParagraphsSubstituted,
		"skipped":     report.ParagraphsSkipped,
		"rows_added":  report.RowsAdded,
	}).Info("filled document with %d replacements in %v", len(replacements), time.Since(start))

	return buf.Bytes(), report, nil
}

var (
	defaultEngine     *Engine
	defaultEngineOnce sync.Once
)

// DefaultEngine returns the engine used by the package-level functions
func DefaultEngine() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = New()
	})
	return defaultEngine
}

// Process fills a DOCX package with the default engine
func Process(documentBytes []byte, replacements map[string]string, additionalRows int) ([]byte, error) {
	return DefaultEngine().Process(documentBytes, replacements, additionalRows)
}

// ProcessWithReport fills a DOCX package with the default engine and reports
// what was done
func ProcessWithReport(ctx context.Context, documentBytes []byte, replacements map[string]string, additionalRows int) ([]byte, Report, error) {
	return DefaultEngine().ProcessWithReport(ctx, documentBytes, replacements, additionalRows)
}
