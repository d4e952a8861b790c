// certbatch runs the pipeline over every supported document in a directory
// and writes the results to an XLSX workbook, one row per document. Failed
// documents are logged and skipped so one bad scan never sinks the batch.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/certvault/cert-extractor/constants"
	"github.com/certvault/cert-extractor/internal/app"
	"github.com/certvault/cert-extractor/internal/common"
	"github.com/certvault/cert-extractor/internal/decode"
	"github.com/certvault/cert-extractor/internal/export"
	"github.com/certvault/cert-extractor/internal/pipeline"
)

func main() {
	dir := flag.String("dir", ".", "directory of documents to process")
	out := flag.String("out", "certificates.xlsx", "output workbook path")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config.invalid", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup.failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	entries, err := os.ReadDir(*dir)
	if err != nil {
		logger.Error("readdir.failed", "dir", *dir, "error", err)
		os.Exit(1)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := constants.NormalizeExt(filepath.Ext(e.Name()))
		if _, ok := constants.AllowedExtensions[ext]; ok {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		logger.Error("batch.empty", "dir", *dir, "accepted_types", constants.AllowedExtensionList())
		os.Exit(1)
	}

	var results []pipeline.Result
	failed := 0
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(*dir, name))
		if err != nil {
			logger.Warn("batch.read.failed", "file", name, "error", err)
			failed++
			continue
		}
		res, err := a.Pipeline.Process(ctx, decode.Document{Filename: name, Data: data})
		if err != nil {
			logger.Warn("batch.extract.failed", "file", name, "error", err)
			failed++
			continue
		}
		results = append(results, res)
	}

	workbook, err := export.RecordsXLSX(results, cfg.Pipeline.SchemaVariant)
	if err != nil {
		logger.Error("export.failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, workbook, 0o644); err != nil {
		logger.Error("write.failed", "path", *out, "error", err)
		os.Exit(1)
	}

	fmt.Printf("processed %d/%d documents -> %s\n", len(results), len(files), *out)
	if failed > 0 {
		os.Exit(1)
	}
}
