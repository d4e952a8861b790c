package constants

import (
	"sort"
	"strings"
)

// Format is the coarse document family used to pick a decoding strategy.
type Format string

const (
	PDF   Format = "PDF"
	IMAGE Format = "IMAGE"
)

// AllowedExtensions holds the declared file extensions accepted at the request
// boundary. Validation is by declared extension only; content is never sniffed.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tiff": {},
	"bmp":  {},
}

const (
	// MaxUploadBytes caps an uploaded document at 10 MiB, enforced before decode.
	MaxUploadBytes = 10 << 20

	// MinRecognizedTextLen is the smallest OCR output (after trimming) worth
	// sending to the interpretation backend. Anything shorter is treated as a
	// recognition failure.
	MinRecognizedTextLen = 10

	// PageSeparator joins per-page OCR text so page boundaries stay visible in
	// the raw recognized text.
	PageSeparator = "\n\n"

	// DefaultPDFRasterDPI is the fixed rasterization resolution for PDF pages.
	DefaultPDFRasterDPI = 300

	// MinOCRWidth is the smallest page width (px) fed to OCR; narrower pages
	// are upscaled isotropically to this width during preprocessing.
	MinOCRWidth = 1000
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the decoding family for a normalized extension, or ""
// when the extension is not in the allow-list.
func MapExtToFormat(ext string) Format {
	ext = NormalizeExt(ext)
	if _, ok := AllowedExtensions[ext]; !ok {
		return ""
	}
	if ext == "pdf" {
		return PDF
	}
	return IMAGE
}

// AllowedExtensionList returns the allow-list in stable order with leading
// dots, for user-facing rejection messages.
func AllowedExtensionList() []string {
	out := make([]string, 0, len(AllowedExtensions))
	for ext := range AllowedExtensions {
		out = append(out, "."+ext)
	}
	sort.Strings(out)
	return out
}
