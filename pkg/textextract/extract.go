// Package textextract reads the text layer of PDF uploads. Scanned
// documents with a usable text layer skip the OCR round-trip entirely.
package textextract

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

type ExtractedText struct {
	Content string
	Pages   int
}

// FromPDF pulls the embedded text out of a PDF. A result shorter than
// MinUsableLength means the document is most likely a pure scan and the
// caller should fall back to OCR.
func FromPDF(data io.ReaderAt, size int64) (*ExtractedText, error) {
	reader, err := pdf.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	var buf strings.Builder
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	return &ExtractedText{
		Content: strings.TrimSpace(buf.String()),
		Pages:   numPages,
	}, nil
}

// MinUsableLength is the threshold below which a text layer is treated
// as absent.
const MinUsableLength = 50

func (e *ExtractedText) Usable() bool {
	return e != nil && len(e.Content) >= MinUsableLength
}
