// Package ocr defines the engine-agnostic text recognition layer. Engines are
// interchangeable behind the Engine interface so downstream stages never learn
// which backend ran; the Adapter handles multi-page joining and the minimum
// usable text check.
package ocr

import (
	"context"
	"image"
)

// Result is the recognition output for a single page image. Confidence is a
// mean word confidence in [0,1]; zero means the engine reported none.
type Result struct {
	Text       string
	Confidence float64
}

// Engine is the OCR provider contract: one page image in, one result out.
// Implementations must be safe for concurrent use, or be wrapped by an
// Adapter configured to serialize calls.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image) (Result, error)
}
