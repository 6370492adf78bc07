package ingest

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"deskrag/internal/apperr"
)

// IngestPDF implements spec.md §4.6's ingest_pdf variant: extract text
// from the PDF bytes, infer page count by counting form-feed characters,
// then delegate to IngestText. PDF byte-to-text extraction is out of
// scope per spec.md §1 for the contract itself, but deskrag wires a
// concrete default using ledongthuc/pdf, grounded on bbiangul-go-reason's
// PDF ingestion path.
func (c *Coordinator) IngestPDF(ctx context.Context, title string, data []byte) (Result, error) {
	text, err := pdfToText(data)
	if err != nil {
		return Result{}, apperr.BadInput("ingest.IngestPDF", err)
	}
	pages := strings.Count(text, "\f") + 1

	result, err := c.IngestText(ctx, title, text)
	if err != nil {
		return Result{}, err
	}
	result.Pages = pages
	return result, nil
}

func pdfToText(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	r, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	totalPages := r.NumPage()
	for i := 1; i <= totalPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil && err != io.EOF {
			return "", err
		}
		buf.WriteString(text)
		if i < totalPages {
			buf.WriteString("\f")
		}
	}
	return buf.String(), nil
}
