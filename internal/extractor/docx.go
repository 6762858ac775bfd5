package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	docxBodyPart  = "word/document.xml"
)

// extractDOCX returns the text of every top-level body paragraph, each
// followed by a newline. Headers, footers and table cells are not included.
func extractDOCX(ctx context.Context, data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open DOCX archive: %w", err)
	}

	part, err := archive.Open(docxBodyPart)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docxBodyPart, err)
	}
	defer func() { _ = part.Close() }()

	paragraphs, err := bodyParagraphs(part)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", docxBodyPart, err)
	}

	if err = ctx.Err(); err != nil {
		return "", err
	}

	var b strings.Builder
	for _, p := range paragraphs {
		b.WriteString(p)
		b.WriteByte('\n')
	}

	return b.String(), nil
}

// bodyParagraphs walks w:body and collects the run text of its w:p children.
// Inside a run w:tab becomes a tab and a line break becomes a newline. Tab
// stops declared in paragraph properties are not runs and are skipped.
func bodyParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		path       []string
		paragraphs []string
		current    *strings.Builder
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode token: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := wordName(t.Name)
			parent := lastName(path)

			switch {
			case name == "p" && parent == "body":
				current = &strings.Builder{}
			case current != nil && parent == "r":
				writeRunControl(current, t)
			}

			path = append(path, name)
		case xml.EndElement:
			if len(path) == 0 {
				continue
			}
			path = path[:len(path)-1]

			if current != nil && wordName(t.Name) == "p" && lastName(path) == "body" {
				paragraphs = append(paragraphs, current.String())
				current = nil
			}
		case xml.CharData:
			if current != nil && len(path) >= 2 && path[len(path)-1] == "t" && path[len(path)-2] == "r" {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}

func writeRunControl(b *strings.Builder, el xml.StartElement) {
	switch wordName(el.Name) {
	case "tab":
		b.WriteByte('\t')
	case "cr":
		b.WriteByte('\n')
	case "br":
		if isTextWrappingBreak(el) {
			b.WriteByte('\n')
		}
	}
}

// Page and column breaks carry no text.
func isTextWrappingBreak(el xml.StartElement) bool {
	for _, attr := range el.Attr {
		if attr.Name.Space == wordNamespace && attr.Name.Local == "type" {
			return attr.Value == "textWrapping"
		}
	}

	return true
}

func wordName(name xml.Name) string {
	if name.Space != wordNamespace {
		return ""
	}

	return name.Local
}

func lastName(path []string) string {
	if len(path) == 0 {
		return ""
	}

	return path[len(path)-1]
}
