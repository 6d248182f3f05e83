// Package parser extracts plain text from uploaded documents. Every failure
// wraps types.ErrParse so callers can treat malformed input uniformly.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"docqa/types"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeTXT  = "text/plain"
)

// Extract dispatches on content type, falling back to the file extension
// the way browsers sometimes force it to.
func Extract(data []byte, filename, contentType string) (string, error) {
	switch {
	case contentType == mimePDF || hasExt(filename, ".pdf"):
		return ExtractPDF(data)
	case contentType == mimeDOCX || hasExt(filename, ".docx"):
		return ExtractDOCX(data)
	case strings.HasPrefix(contentType, mimeTXT) || hasExt(filename, ".txt"):
		return ExtractTXT(data)
	default:
		return "", fmt.Errorf("%w: unsupported file type %q", types.ErrParse, contentType)
	}
}

func hasExt(filename, ext string) bool {
	return strings.EqualFold(filepath.Ext(filename), ext)
}
