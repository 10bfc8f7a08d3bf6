package docfill

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
)

// DefaultMainPart is the conventional location of the main document part
const DefaultMainPart = "word/document.xml"

// Relationship types that designate the main document part
const (
	RelTypeOfficeDocument       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RelTypeOfficeDocumentStrict = "http://purl.oclc.org/ooxml/officeDocument/relationships/officeDocument"
)

// ErrNoMainPart is returned for packages without a main document part
var ErrNoMainPart = errors.New("not a valid DOCX file: no main document part")

// DocxReader handles reading DOCX packages
type DocxReader struct {
	reader *zip.Reader
	Parts  map[string]*zip.File
}

// Relationship represents a relationship in the DOCX package
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// Relationships represents the collection of relationships
type Relationships struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Relationship []Relationship `xml:"Relationship"`
}

// NewDocxReader creates a new DOCX reader
func NewDocxReader(r io.ReaderAt, size int64) (*DocxReader, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip file: %w", err)
	}

	dr := &DocxReader{
		reader: zipReader,
		Parts:  make(map[string]*zip.File, len(zipReader.File)),
	}

	// Index all parts by name
	for _, file := range zipReader.File {
		dr.Parts[file.Name] = file
	}

	return dr, nil
}

// DocxReaderFromBytes creates a DocxReader over an in-memory package
func DocxReaderFromBytes(content []byte) (*DocxReader, error) {
	return NewDocxReader(bytes.NewReader(content), int64(len(content)))
}

// DocxReaderFromFile creates a DocxReader from a file path
func DocxReaderFromFile(path string) (*DocxReader, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return DocxReaderFromBytes(content)
}

// GetPart retrieves the content of a specific part
func (dr *DocxReader) GetPart(partName string) ([]byte, error) {
	file, ok := dr.Parts[partName]
	if !ok {
		return nil, fmt.Errorf("part %s not found", partName)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %s: %w", partName, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read part %s: %w", partName, err)
	}

	return content, nil
}

// GetRelationships retrieves relationships for a given part. Use "" for the
// package relationships (_rels/.rels).
func (dr *DocxReader) GetRelationships(partName string) ([]Relationship, error) {
	// e.g. "word/document.xml" -> "word/_rels/document.xml.rels"
	dir, base := path.Split(partName)
	relPath := dir + "_rels/" + base + ".rels"

	if _, ok := dr.Parts[relPath]; !ok {
		// Missing relationships file is not an error, just return empty
		return []Relationship{}, nil
	}

	content, err := dr.GetPart(relPath)
	if err != nil {
		return nil, err
	}

	var rels Relationships
	if err := xml.Unmarshal(content, &rels); err != nil {
		return nil, fmt.Errorf("failed to parse relationships: %w", err)
	}

	return rels.Relationship, nil
}

// MainDocumentPart returns the name of the main document part, as declared
// by the package relationships. Packages without a declaration fall back to
// word/document.xml.
func (dr *DocxReader) MainDocumentPart() (string, error) {
	rels, err := dr.GetRelationships("")
	if err != nil {
		return "", err
	}

	for _, rel := range rels {
		if rel.Type != RelTypeOfficeDocument && rel.Type != RelTypeOfficeDocumentStrict {
			continue
		}
		name := strings.TrimPrefix(path.Clean("/"+rel.Target), "/")
		if _, ok := dr.Parts[name]; ok {
			return name, nil
		}
	}

	if _, ok := dr.Parts[DefaultMainPart]; ok {
		return DefaultMainPart, nil
	}
	return "", ErrNoMainPart
}

// ListParts returns the names of all parts, sorted
func (dr *DocxReader) ListParts() []string {
	parts := make([]string, 0, len(dr.Parts))
	for name := range dr.Parts {
		parts = append(parts, name)
	}
	sort.Strings(parts)
	return parts
}

// Rewrite writes the package to w in its original part order. Parts named
// in replaced get the new content; every other part is copied without being
// recompressed.
func (dr *DocxReader) Rewrite(w io.Writer, replaced map[string][]byte) error {
	zw := zip.NewWriter(w)

	for _, file := range dr.reader.File {
		content, ok := replaced[file.Name]
		if !ok {
			if err := zw.Copy(file); err != nil {
				return fmt.Errorf("failed to copy %s: %w", file.Name, err)
			}
			continue
		}

		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     file.Name,
			Method:   zip.Deflate,
			Modified: file.Modified,
		})
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", file.Name, err)
		}
		if _, err := fw.Write(content); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize package: %w", err)
	}
	return nil
}
