package decode

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/certvault/cert-extractor/internal/common"
)

// decodePDF rasterizes every embedded page at the configured DPI. The upload
// is spooled to a temp file for the external tools; the whole temp dir is
// removed on every exit path.
func (d *Decoder) decodePDF(ctx context.Context, doc Document) ([]PageImage, error) {
	tmpDir, err := os.MkdirTemp("", "certx-pdf-*")
	if err != nil {
		return nil, common.NewPipelineError(common.KindDecodeFailed, "create temp dir", err)
	}
	defer func() {
		if rerr := os.RemoveAll(tmpDir); rerr != nil {
			d.logger.Warn("decode.pdf.cleanup_failed", "dir", tmpDir, "error", rerr)
		}
	}()

	src := filepath.Join(tmpDir, "upload.pdf")
	if err := os.WriteFile(src, doc.Data, 0o600); err != nil {
		return nil, common.NewPipelineError(common.KindDecodeFailed, "spool upload", err)
	}

	// pdfcpu parses the document here, so malformed bytes fail before any
	// rasterization work is spent.
	pageCount, err := api.PageCountFile(src)
	if err != nil {
		return nil, common.NewPipelineError(common.KindDecodeFailed,
			fmt.Sprintf("parse PDF %q", doc.Filename), err)
	}
	if pageCount == 0 {
		return nil, common.NewPipelineError(common.KindDecodeFailed,
			fmt.Sprintf("PDF %q has no pages", doc.Filename), nil)
	}

	prefix := filepath.Join(tmpDir, "page")
	if _, errb, err := d.runner.Run(ctx, d.cfg.Pdftoppm, d.pdftoppmArgs(src, prefix)...); err != nil {
		return nil, common.NewPipelineError(common.KindDecodeFailed,
			fmt.Sprintf("rasterize PDF %q: %s", doc.Filename, truncate(string(errb), 512)), err)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if d.cfg.MaxPages > 0 && len(matches) > d.cfg.MaxPages {
		matches = matches[:d.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, common.NewPipelineError(common.KindDecodeFailed,
			fmt.Sprintf("rasterizing PDF %q produced no pages", doc.Filename), nil)
	}

	pages := make([]PageImage, 0, len(matches))
	for i, path := range matches {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		img, err := decodePNGFile(path)
		if err != nil {
			return nil, common.NewPipelineError(common.KindDecodeFailed,
				fmt.Sprintf("decode rasterized page %d of %q", i+1, doc.Filename), err)
		}
		pages = append(pages, PageImage{Index: i, Image: img})
	}

	d.logger.Debug("decode.pdf.ok", "filename", doc.Filename,
		"pages", len(pages), "dpi", d.cfg.DPI)
	return pages, nil
}

// pdftoppmArgs builds the rasterizer invocation:
// pdftoppm -r <dpi> -png [-f 1 -l <max>] <in.pdf> <prefix>.
// A page cap goes to pdftoppm itself, so capped-off pages are never rendered.
func (d *Decoder) pdftoppmArgs(src, prefix string) []string {
	args := []string{"-r", strconv.Itoa(d.cfg.DPI), "-png"}
	if d.cfg.MaxPages > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(d.cfg.MaxPages))
	}
	return append(args, src, prefix)
}

func decodePNGFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}
