// Package ingestion reads the corpus directory and turns documents into the
// filtered, ordered chunk set the vector index is built from.
package ingestion

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat reports a document whose extension maps to no known
// format. Callers treat it as a bad input, not an internal failure.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// DocumentFormat enumerates supported document payload formats.
type DocumentFormat string

const (
	// FormatUnknown represents an unsupported or undetected format.
	FormatUnknown DocumentFormat = ""
	// FormatText represents plain text documents.
	FormatText DocumentFormat = "text"
	// FormatPDF represents PDF documents.
	FormatPDF DocumentFormat = "pdf"
	// FormatDOCX represents Word documents.
	FormatDOCX DocumentFormat = "docx"
)

// DetectFormat infers a document format from the provided path's extension.
func DetectFormat(path string) DocumentFormat {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt":
		return FormatText
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	default:
		return FormatUnknown
	}
}
