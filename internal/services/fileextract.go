package services

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultMaxPDFPages caps how many pages are read from very large PDFs.
const DefaultMaxPDFPages = 40

var ErrNoExtractableText = errors.New("no extractable text found (the PDF might be an image)")

// Extraction is the text pulled from an uploaded document.
type Extraction struct {
	Text      string
	PagesRead int
}

type FileExtractService struct {
	maxPDFPages int
}

func NewFileExtractService(maxPDFPages int) *FileExtractService {
	if maxPDFPages <= 0 {
		maxPDFPages = DefaultMaxPDFPages
	}
	return &FileExtractService{maxPDFPages: maxPDFPages}
}

// Extract reads text from data, choosing the format by filename extension.
func (s *FileExtractService) Extract(filename string, data []byte) (*Extraction, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".txt", ".md":
		return s.extractTXT(data)
	case ".pdf":
		return s.extractPDF(data)
	case ".docx":
		return s.extractDOCX(data)
	default:
		return nil, fmt.Errorf("unsupported file type for text extraction: %s", ext)
	}
}

// SupportedExtension reports whether Extract handles filename.
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".pdf", ".docx":
		return true
	}
	return false
}

func (s *FileExtractService) extractTXT(data []byte) (*Extraction, error) {
	text := normalizeExtractedText(string(data))
	if text == "" {
		return nil, fmt.Errorf("text file is empty")
	}
	return &Extraction{Text: text}, nil
}

func (s *FileExtractService) extractPDF(data []byte) (*Extraction, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}

	var b strings.Builder
	totalPage := min(reader.NumPage(), s.maxPDFPages)
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	text := normalizeExtractedText(b.String())
	if text == "" {
		return nil, ErrNoExtractableText
	}

	return &Extraction{Text: text, PagesRead: totalPage}, nil
}

func (s *FileExtractService) extractDOCX(data []byte) (*Extraction, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	var documentXML []byte
	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		documentXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		break
	}

	if len(documentXML) == 0 {
		return nil, fmt.Errorf("docx document.xml not found")
	}

	text := normalizeExtractedText(stripDOCXML(documentXML))
	if text == "" {
		return nil, fmt.Errorf("no extractable text found in docx")
	}

	return &Extraction{Text: text}, nil
}

var xmlTagPattern = regexp.MustCompile(`<[^>]+>`)

func stripDOCXML(src []byte) string {
	s := string(src)

	// DOCX paragraphs and line breaks
	s = strings.ReplaceAll(s, "</w:p>", "\n")
	s = strings.ReplaceAll(s, "<w:br/>", "\n")
	s = strings.ReplaceAll(s, "<w:br />", "\n")
	s = strings.ReplaceAll(s, "<w:tab/>", "\t")

	s = xmlTagPattern.ReplaceAllString(s, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
	return replacer.Replace(s)
}

// normalizeExtractedText unifies line endings, trims each line and
// collapses runs of blank lines to one.
func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	buf := bytes.Buffer{}

	emptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			emptyCount++
			if emptyCount > 1 {
				continue
			}
			buf.WriteString("\n")
			continue
		}
		emptyCount = 0
		buf.WriteString(trimmed)
		buf.WriteString("\n")
	}

	return strings.TrimSpace(buf.String())
}
