// Package ocr turns document images into raw text through external
// recognition providers. A gateway routes between the configured primary
// and fallback provider with a bounded retry policy.
package ocr

import (
	"context"
	"errors"
)

// Provider abstracts one OCR backend (ocr.space, vision models, ...).
type Provider interface {
	// Recognize returns the raw recognized text for one image.
	Recognize(ctx context.Context, image []byte, mimeType string) (string, error)
	Name() string
}

// Error taxonomy surfaced to the caller so the UI can distinguish a slow
// provider from a broken one.
var (
	ErrTimeout  = errors.New("ocr: request timed out")
	ErrProvider = errors.New("ocr: provider reported a processing error")
)
