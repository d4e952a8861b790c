package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/certvault/cert-extractor/internal/decode"
)

// EasyOCRConfig holds settings for the neural engine.
type EasyOCRConfig struct {
	Binary   string // binary name or absolute path; if empty -> "easyocr"
	Language string // single language code, default "en"
}

// EasyOCREngine is the neural engine, shelling out to the easyocr CLI. The
// process reloads its model per invocation, which keeps the engine reentrant
// at the cost of startup latency; deployments that care use the in-process
// tesseract engine instead.
type EasyOCREngine struct {
	cfg    EasyOCRConfig
	runner decode.Runner
}

func NewEasyOCREngine(cfg EasyOCRConfig) *EasyOCREngine {
	if cfg.Binary == "" {
		cfg.Binary = "easyocr"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &EasyOCREngine{cfg: cfg, runner: decode.ExecRunner{}}
}

func (e *EasyOCREngine) Name() string { return "easyocr" }

// SetRunner replaces the external command runner; tests use this to stub the
// easyocr binary.
func (e *EasyOCREngine) SetRunner(r decode.Runner) {
	e.runner = r
}

func (e *EasyOCREngine) Recognize(ctx context.Context, img image.Image) (Result, error) {
	tmpDir, err := os.MkdirTemp("", "certx-ocr-*")
	if err != nil {
		return Result{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "page.png")
	f, err := os.Create(path)
	if err != nil {
		return Result{}, fmt.Errorf("spool page: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return Result{}, fmt.Errorf("encode page: %w", err)
	}
	if err := f.Close(); err != nil {
		return Result{}, fmt.Errorf("spool page: %w", err)
	}

	// easyocr -l <lang> -f <file> --detail 0 --gpu False
	out, errb, err := e.runner.Run(ctx, e.cfg.Binary,
		"-l", e.cfg.Language, "-f", path, "--detail", "0", "--gpu", "False")
	if err != nil {
		return Result{}, fmt.Errorf("easyocr: %w: %s", err, truncate(string(errb), 512))
	}

	// One recognized span per output line; join into a single text stream.
	var spans []string
	for _, line := range strings.Split(string(out), "\n") {
		if s := strings.TrimSpace(line); s != "" {
			spans = append(spans, s)
		}
	}
	return Result{Text: strings.Join(spans, " ")}, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
