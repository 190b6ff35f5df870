package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/zipduck/subscription-assistant/internal/core/ports"
)

// Extractor pulls the embedded text layer out of a PDF. Scanned
// announcements carry little or no text layer, so anything below
// minTextLength is flagged for OCR.
type Extractor struct {
	minTextLength int
}

func New(minTextLength int) *Extractor {
	if minTextLength <= 0 {
		minTextLength = 100
	}
	return &Extractor{minTextLength: minTextLength}
}

func (e *Extractor) Extract(ctx context.Context, r io.Reader, size int64) (ports.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return ports.Extraction{}, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return ports.Extraction{}, fmt.Errorf("read pdf: %w", err)
	}
	if size <= 0 {
		size = int64(len(data))
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), size)
	if err != nil {
		return ports.Extraction{}, fmt.Errorf("pdf reader: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return ports.Extraction{}, fmt.Errorf("pdf plaintext: %w", err)
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return ports.Extraction{}, fmt.Errorf("read plaintext: %w", err)
	}

	text := strings.TrimSpace(string(raw))
	return ports.Extraction{
		Text:      text,
		PageCount: reader.NumPage(),
		NeedsOCR:  e.needsOCR(text),
	}, nil
}

func (e *Extractor) needsOCR(text string) bool {
	return len([]rune(text)) < e.minTextLength
}
