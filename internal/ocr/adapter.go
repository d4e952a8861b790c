package ocr

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/certvault/cert-extractor/constants"
	"github.com/certvault/cert-extractor/internal/common"
)

// RecognizedText is the raw OCR output for a whole document: per-page text in
// page order joined with the page separator.
type RecognizedText struct {
	Text  string
	Pages int
}

// Adapter drives an Engine over a sequence of page images and enforces the
// minimum usable text postcondition. Construct one per process and share it;
// it carries no per-request state.
type Adapter struct {
	engine Engine
	mu     *sync.Mutex
	logger *slog.Logger
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithSerializedCalls guards every engine call with a mutex, for engines that
// are not safely reentrant.
func WithSerializedCalls() AdapterOption {
	return func(a *Adapter) { a.mu = &sync.Mutex{} }
}

func NewAdapter(engine Engine, logger *slog.Logger, opts ...AdapterOption) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Adapter{engine: engine, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// EngineName reports which engine this adapter drives.
func (a *Adapter) EngineName() string { return a.engine.Name() }

// RecognizePages recognizes each page independently, in order, and joins the
// results. Engine failure on any page fails the whole document; recognized
// text shorter than the usable minimum is reported as insufficient so the
// interpretation backend is never called on near-empty input.
func (a *Adapter) RecognizePages(ctx context.Context, pages []image.Image) (RecognizedText, error) {
	start := time.Now()
	texts := make([]string, 0, len(pages))

	for i, img := range pages {
		select {
		case <-ctx.Done():
			return RecognizedText{}, ctx.Err()
		default:
		}
		res, err := a.recognize(ctx, img)
		if err != nil {
			a.logger.Error("ocr.page.failed", "engine", a.engine.Name(), "page", i+1, "error", err)
			return RecognizedText{}, common.NewPipelineError(common.KindRecognitionFailed,
				fmt.Sprintf("recognize page %d/%d", i+1, len(pages)), err)
		}
		a.logger.Debug("ocr.page.ok", "engine", a.engine.Name(), "page", i+1,
			"bytes", len(res.Text), "confidence", res.Confidence)
		texts = append(texts, strings.TrimSpace(res.Text))
	}

	joined := strings.Join(texts, constants.PageSeparator)
	if len(strings.TrimSpace(joined)) < constants.MinRecognizedTextLen {
		return RecognizedText{}, common.NewPipelineError(common.KindInsufficientText,
			"no usable text could be recognized; supply a clearer scan", nil)
	}

	a.logger.Info("ocr.ok",
		"engine", a.engine.Name(),
		"pages", len(pages),
		"bytes", len(joined),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return RecognizedText{Text: joined, Pages: len(pages)}, nil
}

func (a *Adapter) recognize(ctx context.Context, img image.Image) (Result, error) {
	if a.mu != nil {
		a.mu.Lock()
		defer a.mu.Unlock()
	}
	return a.engine.Recognize(ctx, img)
}
