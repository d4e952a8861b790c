package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/certvault/cert-extractor/constants"
	"github.com/certvault/cert-extractor/internal/common"
)

// Record is the normalized extraction output: every canonical field of the
// active schema variant mapped to a string value. Absent values carry the
// variant's sentinel, never a missing key and never a null.
type Record map[string]string

// Completer is the black-box text-interpretation backend contract: one prompt
// in, one text reply out. The reply may be pure JSON, fenced JSON, or
// line-oriented text; the normalizer tolerates all observed forms.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Extractor turns recognized text into a normalized Record through a fixed,
// versioned prompt template and the response normalizer.
type Extractor struct {
	completer Completer
	tmpl      PromptTemplate
	logger    *slog.Logger
}

func NewExtractor(c Completer, variant constants.SchemaVariant, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{completer: c, tmpl: TemplateFor(variant), logger: logger}
}

// Variant reports the schema variant this extractor produces.
func (e *Extractor) Variant() constants.SchemaVariant { return e.tmpl.Variant }

// ExtractRecord sends the recognized text to the backend and normalizes the
// reply. The raw backend text is always returned, including on failure, so
// callers can retain it for diagnosis.
func (e *Extractor) ExtractRecord(ctx context.Context, text string) (Record, string, error) {
	rid := uuid.New().String()
	start := time.Now()

	e.logger.Info("llm.extract.start",
		"req_id", rid,
		"prompt_version", e.tmpl.Version,
		"grammar", string(e.tmpl.Grammar),
		"text_len", len(text),
	)

	raw, err := e.completer.Complete(ctx, e.tmpl.Render(text))
	if err != nil {
		e.logger.Error("llm.extract.backend_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, common.NewBackendError(common.KindBackendFailed,
			"text interpretation backend call failed", raw, err)
	}

	rec, err := NormalizeResponse(raw, e.tmpl.Variant)
	if err != nil {
		e.logger.Error("llm.extract.normalize_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, err
	}

	e.logger.Info("llm.extract.ok",
		"req_id", rid,
		"fields", len(rec),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, raw, nil
}
