package decode

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"path/filepath"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/certvault/cert-extractor/constants"
	"github.com/certvault/cert-extractor/internal/common"
)

// Document is an uploaded file: raw bytes plus the declared filename. The
// declared extension alone decides how the bytes are decoded.
type Document struct {
	Filename string
	Data     []byte
}

// Ext returns the normalized declared extension.
func (d Document) Ext() string {
	return constants.NormalizeExt(filepath.Ext(d.Filename))
}

// PageImage is one rasterized page, the unit of work for OCR.
type PageImage struct {
	Index int
	Image image.Image
}

// Config holds decoder settings.
type Config struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"
	DPI      int    // rasterization DPI for PDFs, default 300
	MaxPages int    // 0 = no limit
}

// Decoder turns uploaded bytes into page images, dispatching on the declared
// extension.
type Decoder struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewDecoder(cfg Config, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = constants.DefaultPDFRasterDPI
	}
	return &Decoder{cfg: cfg, runner: ExecRunner{}, logger: logger}
}

// SetRunner replaces the external command runner; tests use this to stub
// pdftoppm.
func (d *Decoder) SetRunner(r Runner) {
	d.runner = r
}

// Decode produces the ordered page images for a document. The extension is
// validated against the allow-list before any bytes are touched.
func (d *Decoder) Decode(ctx context.Context, doc Document) ([]PageImage, error) {
	ext := doc.Ext()
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		return d.decodePDF(ctx, doc)
	case constants.IMAGE:
		return d.decodeImage(doc)
	default:
		d.logger.Warn("decode.unsupported_extension", "filename", doc.Filename, "ext", ext)
		return nil, common.UnsupportedFormatError("." + ext)
	}
}

// decodeImage decodes a single raster page and normalizes it to NRGBA so every
// engine sees three-channel color input.
func (d *Decoder) decodeImage(doc Document) ([]PageImage, error) {
	img, format, err := image.Decode(bytes.NewReader(doc.Data))
	if err != nil {
		return nil, common.NewPipelineError(common.KindDecodeFailed,
			fmt.Sprintf("decode image %q", doc.Filename), err)
	}
	d.logger.Debug("decode.image.ok", "filename", doc.Filename, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return []PageImage{{Index: 0, Image: toNRGBA(img)}}, nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if m, ok := img.(*image.NRGBA); ok {
		return m
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
