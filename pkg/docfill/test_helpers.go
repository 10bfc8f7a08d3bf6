// test_helpers.go contains functions that are exposed only for testing purposes.
// These should not be used in production code.

package docfill

import (
	"archive/zip"
	"bytes"
	"io"
)

// TestStylesXML is the styles part written by NewTestDocx
const TestStylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:style w:type="paragraph" w:styleId="Normal"><w:name w:val="Normal"/></w:style></w:styles>`

// WrapTestBody wraps body content in a minimal document.xml
func WrapTestBody(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>` +
		body +
		`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr></w:body></w:document>`
}

// NewTestDocx creates a minimal DOCX package whose body is body
func NewTestDocx(body string) []byte {
	return NewTestDocxParts(map[string]string{"word/document.xml": WrapTestBody(body)})
}

// NewTestDocxParts creates a DOCX package with the standard parts, with
// parts overriding or adding entries by name
func NewTestDocxParts(parts map[string]string) []byte {
	entries := []struct{ name, content string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
  <Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`},
		{"_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`},
		{"word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`},
		{"word/document.xml", WrapTestBody("")},
		{"word/styles.xml", TestStylesXML},
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	written := make(map[string]bool, len(entries))
	write := func(name, content string) {
		f, _ := w.Create(name)
		io.WriteString(f, content)
		written[name] = true
	}

	for _, entry := range entries {
		content := entry.content
		if override, ok := parts[entry.name]; ok {
			content = override
		}
		write(entry.name, content)
	}
	for name, content := range parts {
		if !written[name] {
			write(name, content)
		}
	}

	w.Close()
	return buf.Bytes()
}
