package ingestion

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText returns the full plain text of a supported document file.
func ExtractText(path string) (string, error) {
	switch DetectFormat(path) {
	case FormatText:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read text file: %w", err)
		}
		return string(data), nil
	case FormatPDF:
		return extractPDF(path)
	case FormatDOCX:
		return extractDOCX(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func extractPDF(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return sb.String(), nil
}

// docx files are zip archives; the body text lives in word/document.xml as
// paragraphs of runs.
type docxDocument struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []struct {
		Texts []string `xml:"t"`
	} `xml:"r"`
}

func extractDOCX(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}
	defer archive.Close()

	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open docx document.xml: %w", err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read docx document.xml: %w", err)
		}

		var doc docxDocument
		if err := xml.Unmarshal(data, &doc); err != nil {
			return "", fmt.Errorf("parse docx document.xml: %w", err)
		}

		lines := make([]string, 0, len(doc.Body.Paragraphs))
		for _, paragraph := range doc.Body.Paragraphs {
			var sb strings.Builder
			for _, run := range paragraph.Runs {
				for _, text := range run.Texts {
					sb.WriteString(text)
				}
			}
			lines = append(lines, sb.String())
		}
		return strings.Join(lines, "\n"), nil
	}

	return "", fmt.Errorf("docx has no word/document.xml: %s", path)
}
