// Package extractor turns an uploaded PDF into overlapping text chunks.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"medassist-backend/pkg/logger"
)

const pdfMIME = "application/pdf"

func init() {
	// pdfcpu would otherwise create a config directory under the user's home.
	api.DisableConfigDir()
}

// Document is an uploaded file held in memory for the duration of one request.
type Document struct {
	Name string
	Data []byte
}

type Extractor struct {
	chunker *Chunker
	conf    *pdfmodel.Configuration
}

func New(chunkSize, chunkOverlap int) (*Extractor, error) {
	chunker, err := NewChunker(chunkSize, chunkOverlap)
	if err != nil {
		return nil, err
	}

	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	return &Extractor{chunker: chunker, conf: conf}, nil
}

// IsPDF reports whether filename carries a .pdf extension, ignoring case.
func IsPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// Extract validates doc, pulls its text page by page and splits it into chunks.
func (e *Extractor) Extract(ctx context.Context, doc Document) ([]Chunk, error) {
	text, err := e.ExtractText(ctx, doc)
	if err != nil {
		return nil, err
	}

	chunks := e.chunker.Split(text)
	logger.WithFields(logger.Fields{
		"document": doc.Name,
		"chars":    len([]rune(text)),
		"chunks":   len(chunks),
	}).Debug("document chunked")

	return chunks, nil
}

// ExtractText returns the document text with pages joined by a newline.
func (e *Extractor) ExtractText(ctx context.Context, doc Document) (string, error) {
	if !IsPDF(doc.Name) {
		return "", fmt.Errorf("%w: %q is not a .pdf file", ErrUnsupportedFormat, doc.Name)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if mt := mimetype.Detect(doc.Data); !mt.Is(pdfMIME) {
		return "", fmt.Errorf("%w: content is %s, not a PDF", ErrExtraction, mt.String())
	}
	if err := api.Validate(bytes.NewReader(doc.Data), e.conf); err != nil {
		return "", fmt.Errorf("%w: invalid PDF structure: %v", ErrExtraction, err)
	}

	pages, err := readPages(doc.Data)
	if err != nil {
		return "", err
	}

	text := strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no extractable text in %q", ErrExtraction, doc.Name)
	}
	return text, nil
}

// readPages extracts plain text for every page. The PDF reader panics on some
// malformed inputs, so panics are turned into extraction errors.
func readPages(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: pdf reader panic: %v", ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %v", ErrExtraction, err)
	}

	total := reader.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrExtraction, i, err)
		}
		pages = append(pages, content)
	}
	return pages, nil
}
