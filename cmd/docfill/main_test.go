package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/docfill/pkg/docfill"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseSetPairs(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected map[string]string
		wantErr  bool
	}{
		{
			name:     "simple pairs",
			input:    []string{"{name}=Ada", "{city}=London"},
			expected: map[string]string{"{name}": "Ada", "{city}": "London"},
		},
		{
			name:     "value containing equals",
			input:    []string{"{formula}=a=b"},
			expected: map[string]string{"{formula}": "a=b"},
		},
		{
			name:     "empty value",
			input:    []string{"{blank}="},
			expected: map[string]string{"{blank}": ""},
		},
		{
			name:     "last pair wins",
			input:    []string{"{x}=1", "{x}=2"},
			expected: map[string]string{"{x}": "2"},
		},
		{
			name:    "missing separator",
			input:   []string{"{name}"},
			wantErr: true,
		},
		{
			name:    "empty placeholder",
			input:   []string{"=value"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSetPairs(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFillCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "template.docx")
	out := filepath.Join(dir, "out.docx")
	values := filepath.Join(dir, "values.yaml")

	body := `<w:p><w:r><w:t>{greeting} {name}</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>{name}</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`
	require.NoError(t, os.WriteFile(in, docfill.NewTestDocx(body), 0o600))
	require.NoError(t, os.WriteFile(values, []byte("\"{greeting}\": Hello\n\"{name}\": file\n"), 0o600))

	output, err := execute(t, "fill", in, out,
		"--values", values, "--set", "{name}=Ada", "--rows", "2", "--log-level", "off")
	require.NoError(t, err)
	assert.Contains(t, output, "1 standard and 0 listing tables")
	assert.Contains(t, output, "2 rows added")

	reader, err := docfill.DocxReaderFromFile(out)
	require.NoError(t, err)
	main, err := reader.GetPart(docfill.DefaultMainPart)
	require.NoError(t, err)
	assert.Contains(t, string(main), "Hello Ada")
	assert.Equal(t, 3, strings.Count(string(main), ">Ada<"))
}

func TestFillCommandErrors(t *testing.T) {
	dir := t.TempDir()
	notDocx := filepath.Join(dir, "notes.docx")
	require.NoError(t, os.WriteFile(notDocx, []byte("plain"), 0o600))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing arguments", []string{"fill", "only-one.docx"}, "accepts 2 arg(s)"},
		{"missing template", []string{"fill", filepath.Join(dir, "none.docx"), filepath.Join(dir, "o.docx")}, "document error during read"},
		{"not a package", []string{"fill", notDocx, filepath.Join(dir, "o.docx")}, "document error during read"},
		{"bad set pair", []string{"fill", notDocx, filepath.Join(dir, "o.docx"), "--set", "novalue"}, "invalid --set"},
		{"bad log level", []string{"fill", notDocx, filepath.Join(dir, "o.docx"), "--log-level", "loud"}, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := os.Stat(filepath.Join(dir, "o.docx"))
	assert.True(t, os.IsNotExist(err), "no output on failure")
}

func TestVersionCommand(t *testing.T) {
	output, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "docfill version "+version+"\n", output)
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docfill.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listing:\n  markr: typo\n"), 0o600))

	_, err := execute(t, "serve", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}
