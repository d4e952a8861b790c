// extract runs the full pipeline on one local document and prints the
// normalized record as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/certvault/cert-extractor/internal/app"
	"github.com/certvault/cert-extractor/internal/common"
	"github.com/certvault/cert-extractor/internal/decode"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <file>\n", filepath.Base(os.Args[0]))
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

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

	path := flag.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read.failed", "path", path, "error", err)
		os.Exit(1)
	}

	res, err := a.Pipeline.Process(ctx, decode.Document{Filename: filepath.Base(path), Data: data})
	if err != nil {
		logger.Error("extract.failed", "path", path, "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(res.Record); err != nil {
		logger.Error("encode.failed", "error", err)
		os.Exit(1)
	}
}
