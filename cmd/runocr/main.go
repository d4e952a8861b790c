// runocr decodes one document, preprocesses every page and prints the
// recognized text. Useful for tuning engine settings without touching the
// interpretation backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/certvault/cert-extractor/internal/common"
	"github.com/certvault/cert-extractor/internal/decode"
	"github.com/certvault/cert-extractor/internal/ocr"
	"github.com/certvault/cert-extractor/internal/preprocess"
)

func main() {
	engineFlag := flag.String("engine", "", "OCR engine override (tesseract|easyocr)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-engine name] <file>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *engineFlag != "" {
		cfg.OCR.Engine = *engineFlag
	}

	path := flag.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read.failed", "path", path, "error", err)
		os.Exit(1)
	}

	dec := decode.NewDecoder(decode.Config{
		Pdftoppm: cfg.OCR.Pdftoppm,
		DPI:      cfg.Pipeline.PDFRasterDPI,
		MaxPages: cfg.Pipeline.MaxPages,
	}, logger)

	var engine ocr.Engine
	switch cfg.OCR.Engine {
	case "tesseract":
		engine = ocr.NewTesseractEngine(ocr.TesseractConfig{
			Language:    cfg.OCR.Language,
			TessdataDir: cfg.OCR.TessdataDir,
			PSM:         cfg.OCR.PSM,
		})
	case "easyocr":
		engine = ocr.NewEasyOCREngine(ocr.EasyOCRConfig{
			Binary:   cfg.OCR.EasyOCRBinary,
			Language: cfg.OCR.Language,
		})
	default:
		logger.Error("config.invalid", "error", "OCR_ENGINE must be tesseract or easyocr")
		os.Exit(1)
	}
	adapter := ocr.NewAdapter(engine, logger)

	ctx := context.Background()
	pages, err := dec.Decode(ctx, decode.Document{Filename: filepath.Base(path), Data: data})
	if err != nil {
		logger.Error("decode.failed", "path", path, "error", err)
		os.Exit(1)
	}

	prepped := make([]image.Image, len(pages))
	for i, pg := range pages {
		prepped[i] = preprocess.Apply(pg.Image)
	}

	text, err := adapter.RecognizePages(ctx, prepped)
	if err != nil {
		logger.Error("ocr.failed", "path", path, "error", err)
		os.Exit(1)
	}

	fmt.Println(text.Text)
}
