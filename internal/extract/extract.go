// Package extract pulls plain text out of uploaded document files.
// Extraction runs before chunking; if it fails, ingestion never starts.
package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Text extracts the plain text content of the file at path. The format is
// chosen from the file extension; unknown extensions are read as plain
// text.
func Text(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	switch ext {
	case "pdf":
		return fromPDF(path)
	case "docx":
		return fromZipXML(path, isDocxDocumentPart)
	case "pptx":
		return fromZipXML(path, isPptxSlidePart)
	case "xlsx":
		return fromZipXML(path, isXlsxSharedStringsPart)
	case "csv":
		return fromCSV(path)
	default:
		return fromPlainText(path)
	}
}

func fromPlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func fromPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	b, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading pdf text from %s: %w", path, err)
	}

	data, err := io.ReadAll(b)
	if err != nil {
		return "", fmt.Errorf("buffering pdf text from %s: %w", path, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("no text extracted from pdf %s", path)
	}
	return text, nil
}

// fromCSV renders each row as one line with cells joined by " | ", so
// row context survives chunking.
func fromCSV(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening csv %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var lines []string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading csv %s: %w", path, err)
		}
		lines = append(lines, strings.Join(row, " | "))
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
