package content

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"decoder/internal/text"
)

// FromPDF extracts the plain text of a PDF. Page count is estimated from the
// text length, as the page tree of scanned or odd files is unreliable.
func (e *Extractor) FromPDF(data []byte) (string, error) {
	if len(data) > MaxPDFBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	s := string(raw)
	if pages := text.EstimatePages(s); pages > e.maxPDFPages {
		return "", fmt.Errorf("%w: about %d pages, max %d", ErrTooLarge, pages, e.maxPDFPages)
	}
	s = text.Clean(s)
	if utf8.RuneCountInString(s) < text.MinContentLength {
		return "", ErrInsufficientContent
	}
	return s, nil
}
