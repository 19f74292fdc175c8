// Package loader extracts plain text from uploaded documents. It is the
// boundary between raw file bytes and the extraction pipeline: every
// supported format yields a single text string, anything else fails with
// ErrUnsupportedFormat.
package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when a file's extension does not map to
// any known text extractor.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ExtractText extracts the plain text content from a document identified by
// its filename extension. Supported formats are .txt, .md, .pdf and .docx.
func ExtractText(ctx context.Context, filename string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".txt", ".md":
		return normalizeText(string(content)), nil
	case ".pdf":
		text, err := parsePDF(ctx, content)
		if err != nil {
			return "", fmt.Errorf("failed to extract text from PDF: %w", err)
		}
		return text, nil
	case ".docx":
		text, err := parseDocx(content)
		if err != nil {
			return "", fmt.Errorf("failed to extract text from docx: %w", err)
		}
		return normalizeText(text), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}
