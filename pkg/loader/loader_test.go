package loader

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExtractText_PlainText(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		want     string
	}{
		{
			name:     "txt passthrough",
			filename: "notes.txt",
			content:  "Alice works at Acme.",
			want:     "Alice works at Acme.",
		},
		{
			name:     "markdown passthrough",
			filename: "README.md",
			content:  "# Title\n\nBody.",
			want:     "# Title\n\nBody.",
		},
		{
			name:     "windows line endings normalized",
			filename: "crlf.txt",
			content:  "line one\r\nline two\r\n",
			want:     "line one\nline two",
		},
		{
			name:     "surrounding whitespace trimmed",
			filename: "pad.txt",
			content:  "\n\n  text  \n\n",
			want:     "text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractText(context.Background(), tt.filename, []byte(tt.content))
			if err != nil {
				t.Fatalf("ExtractText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractText_UnsupportedFormat(t *testing.T) {
	for _, filename := range []string{"image.png", "archive.tar.gz", "noext"} {
		_, err := ExtractText(context.Background(), filename, []byte("data"))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("ExtractText(%q) error = %v, want ErrUnsupportedFormat", filename, err)
		}
	}
}

func TestExtractText_CaseInsensitiveExtension(t *testing.T) {
	got, err := ExtractText(context.Background(), "NOTES.TXT", []byte("hello"))
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if got != "hello" {
		t.Errorf("ExtractText() = %q, want %q", got, "hello")
	}
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("failed to create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("failed to write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractText_Docx(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second</w:t></w:r><w:r><w:tab/></w:r><w:r><w:t>column.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	got, err := ExtractText(context.Background(), "report.docx", buildDocx(t, doc))
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if !strings.Contains(got, "First paragraph.") {
		t.Errorf("missing first paragraph in %q", got)
	}
	if !strings.Contains(got, "Second\tcolumn.") {
		t.Errorf("missing tabbed run in %q", got)
	}
	if strings.Index(got, "First") > strings.Index(got, "Second") {
		t.Errorf("paragraph order lost in %q", got)
	}
}

func TestExtractText_DocxMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/other.xml")
	_, _ = w.Write([]byte("<x/>"))
	_ = zw.Close()

	_, err := ExtractText(context.Background(), "broken.docx", buf.Bytes())
	if err == nil {
		t.Fatal("expected error for docx without document.xml")
	}
}
