package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Office Open XML files (docx, pptx, xlsx) are zip archives of XML parts.
// Text lives in <w:t>/<a:t>/<t> elements; paragraphs are <w:p>/<a:p>.
// Scanning those is enough for retrieval purposes — layout, styling and
// embedded media are irrelevant to the index.

func isDocxDocumentPart(name string) bool {
	return name == "word/document.xml"
}

func isPptxSlidePart(name string) bool {
	return strings.HasPrefix(name, "ppt/slides/slide") && strings.HasSuffix(name, ".xml")
}

func isXlsxSharedStringsPart(name string) bool {
	return name == "xl/sharedStrings.xml"
}

func fromZipXML(path string, isTextPart func(string) bool) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer archive.Close()

	var parts []*zip.File
	for _, f := range archive.File {
		if isTextPart(f.Name) {
			parts = append(parts, f)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts found in %s", path)
	}

	// Slide parts arrive in archive order; sort by name so slide2 never
	// precedes slide1.
	sort.Slice(parts, func(i, j int) bool { return parts[i].Name < parts[j].Name })

	var sections []string
	for _, part := range parts {
		text, err := textFromXMLPart(part)
		if err != nil {
			return "", fmt.Errorf("reading part %s of %s: %w", part.Name, path, err)
		}
		if text != "" {
			sections = append(sections, text)
		}
	}

	text := strings.TrimSpace(strings.Join(sections, "\n"))
	if text == "" {
		return "", fmt.Errorf("no text extracted from %s", path)
	}
	return text, nil
}

func textFromXMLPart(part *zip.File) (string, error) {
	r, err := part.Open()
	if err != nil {
		return "", err
	}
	defer r.Close()

	decoder := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p", "si":
				// Paragraph (docx/pptx) or shared string (xlsx)
				// boundary.
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(el)
			}
		}
	}

	return strings.TrimSpace(sb.String()), nil
}
