// Package app assembles the pipeline from configuration. The command
// binaries share this wiring so engine and backend selection behave the same
// everywhere.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/certvault/cert-extractor/internal/artifact"
	"github.com/certvault/cert-extractor/internal/common"
	"github.com/certvault/cert-extractor/internal/decode"
	"github.com/certvault/cert-extractor/internal/llm"
	"github.com/certvault/cert-extractor/internal/llm/gemini"
	"github.com/certvault/cert-extractor/internal/llm/openai"
	"github.com/certvault/cert-extractor/internal/ocr"
	"github.com/certvault/cert-extractor/internal/pipeline"
)

// App holds the assembled collaborators plus anything that needs closing at
// exit.
type App struct {
	Config   *common.Config
	Decoder  *decode.Decoder
	Adapter  *ocr.Adapter
	Pipeline *pipeline.Pipeline
	Logger   *slog.Logger

	closers []func() error
}

// Build constructs the full pipeline per cfg. cfg must already be validated.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{Config: cfg, Logger: logger}

	a.Decoder = decode.NewDecoder(decode.Config{
		Pdftoppm: cfg.OCR.Pdftoppm,
		DPI:      cfg.Pipeline.PDFRasterDPI,
		MaxPages: cfg.Pipeline.MaxPages,
	}, logger)

	engine, err := buildEngine(cfg)
	if err != nil {
		return nil, err
	}
	var opts []ocr.AdapterOption
	if cfg.OCR.SerializeCalls {
		opts = append(opts, ocr.WithSerializedCalls())
	}
	a.Adapter = ocr.NewAdapter(engine, logger, opts...)

	completer, err := a.buildCompleter(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	extractor := llm.NewExtractor(completer, cfg.Pipeline.SchemaVariant, logger)

	var store *artifact.Store
	if cfg.Artifacts.Enabled {
		store = artifact.NewStore(cfg.Artifacts.Dir, logger)
	}

	a.Pipeline = pipeline.New(a.Decoder, a.Adapter, extractor, store, logger)
	return a, nil
}

func buildEngine(cfg *common.Config) (ocr.Engine, error) {
	switch cfg.OCR.Engine {
	case "tesseract":
		return ocr.NewTesseractEngine(ocr.TesseractConfig{
			Language:    cfg.OCR.Language,
			TessdataDir: cfg.OCR.TessdataDir,
			PSM:         cfg.OCR.PSM,
		}), nil
	case "easyocr":
		return ocr.NewEasyOCREngine(ocr.EasyOCRConfig{
			Binary:   cfg.OCR.EasyOCRBinary,
			Language: cfg.OCR.Language,
		}), nil
	default:
		return nil, fmt.Errorf("unknown OCR engine %q", cfg.OCR.Engine)
	}
}

func (a *App) buildCompleter(ctx context.Context, cfg *common.Config, logger *slog.Logger) (llm.Completer, error) {
	switch cfg.LLM.Provider {
	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger), nil
	case "gemini":
		client, err := gemini.NewClient(ctx, gemini.Config{
			ProjectID:   cfg.LLM.ProjectID,
			Region:      cfg.LLM.Region,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("build gemini client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return client, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
	}
}

// Close releases backend resources.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.Logger.Warn("app.close.error", "error", err)
		}
	}
}
