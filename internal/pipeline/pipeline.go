// Package pipeline wires the extraction stages into one request-scoped flow:
// bytes -> page images -> preprocessed pages -> recognized text -> normalized
// record. Data flows strictly forward; a failed stage fails the request.
package pipeline

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/certvault/cert-extractor/internal/artifact"
	"github.com/certvault/cert-extractor/internal/decode"
	"github.com/certvault/cert-extractor/internal/llm"
	"github.com/certvault/cert-extractor/internal/ocr"
	"github.com/certvault/cert-extractor/internal/preprocess"
)

// Result is the terminal artifact of one extraction request.
type Result struct {
	Status       string     `json:"status"`
	Filename     string     `json:"filename"`
	Pages        int        `json:"pages"`
	TextLength   int        `json:"extracted_text_length"`
	Record       llm.Record `json:"metadata"`
	ArtifactPath string     `json:"json_file,omitempty"`
}

// Pipeline holds the stage collaborators. Build one at startup and share it;
// every Process call is independent and carries no state across requests.
type Pipeline struct {
	decoder   *decode.Decoder
	ocr       *ocr.Adapter
	extractor *llm.Extractor
	artifacts *artifact.Store // nil disables the side artifact
	logger    *slog.Logger
}

func New(dec *decode.Decoder, adapter *ocr.Adapter, ext *llm.Extractor, store *artifact.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{decoder: dec, ocr: adapter, extractor: ext, artifacts: store, logger: logger}
}

// Process runs the full extraction flow for one uploaded document. Every
// returned error is classified (common.KindOf) for the response boundary.
func (p *Pipeline) Process(ctx context.Context, doc decode.Document) (Result, error) {
	rid := uuid.New().String()
	start := time.Now()
	p.logger.Info("pipeline.start", "req_id", rid, "filename", doc.Filename, "bytes", len(doc.Data))

	pages, err := p.decoder.Decode(ctx, doc)
	if err != nil {
		p.logger.Error("pipeline.decode.failed", "req_id", rid, "filename", doc.Filename, "error", err)
		return Result{}, err
	}
	p.logger.Debug("pipeline.decode.ok", "req_id", rid, "pages", len(pages))

	prepped := make([]image.Image, len(pages))
	for i, pg := range pages {
		prepped[i] = preprocess.Apply(pg.Image)
	}

	text, err := p.ocr.RecognizePages(ctx, prepped)
	if err != nil {
		p.logger.Error("pipeline.ocr.failed", "req_id", rid, "filename", doc.Filename, "error", err)
		return Result{}, err
	}
	p.logger.Info("pipeline.ocr.ok", "req_id", rid, "pages", text.Pages, "text_len", len(text.Text))

	rec, _, err := p.extractor.ExtractRecord(ctx, text.Text)
	if err != nil {
		p.logger.Error("pipeline.extract.failed", "req_id", rid, "filename", doc.Filename, "error", err)
		return Result{}, err
	}

	res := Result{
		Status:     "success",
		Filename:   doc.Filename,
		Pages:      text.Pages,
		TextLength: len(text.Text),
		Record:     rec,
	}

	// The response already carries the record; the artifact is best-effort.
	if p.artifacts != nil {
		if path, aerr := p.artifacts.Save(rec, doc.Filename); aerr != nil {
			p.logger.Warn("pipeline.artifact.failed", "req_id", rid, "filename", doc.Filename, "error", aerr)
		} else {
			res.ArtifactPath = path
		}
	}

	p.logger.Info("pipeline.ok",
		"req_id", rid,
		"filename", doc.Filename,
		"pages", text.Pages,
		"text_len", res.TextLength,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
