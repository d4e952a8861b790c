package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/certvault/cert-extractor/constants"
)

// Kind classifies a pipeline failure. Every error that crosses the pipeline
// boundary carries exactly one kind.
type Kind string

const (
	KindUnsupportedFormat      Kind = "UNSUPPORTED_FORMAT"
	KindDecodeFailed           Kind = "DECODE_FAILED"
	KindRecognitionFailed      Kind = "RECOGNITION_FAILED"
	KindInsufficientText       Kind = "INSUFFICIENT_TEXT"
	KindBackendFailed          Kind = "BACKEND_FAILED"
	KindInvalidBackendResponse Kind = "INVALID_BACKEND_RESPONSE"
)

// PipelineError is the single error shape surfaced by the extraction pipeline.
// Raw holds the untouched backend reply for the two backend kinds so failed
// responses stay available for diagnosis.
type PipelineError struct {
	Kind    Kind
	Message string
	Raw     string
	Cause   error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// NewPipelineError builds a classified error.
func NewPipelineError(kind Kind, message string, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Cause: cause}
}

// NewBackendError builds a classified error that retains the raw backend text.
func NewBackendError(kind Kind, message, raw string, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Raw: raw, Cause: cause}
}

// KindOf returns the classification of err, or "" when err carries none.
func KindOf(err error) Kind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps a classified error onto the response boundary: document
// problems are the caller's to fix, engine and backend problems are ours.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindUnsupportedFormat, KindDecodeFailed, KindInsufficientText:
		return http.StatusBadRequest
	case KindRecognitionFailed, KindBackendFailed, KindInvalidBackendResponse:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// UnsupportedFormatError builds the standard rejection for a disallowed
// extension, listing the accepted types.
func UnsupportedFormatError(ext string) *PipelineError {
	return NewPipelineError(KindUnsupportedFormat,
		fmt.Sprintf("invalid file type %q; allowed types: %s",
			ext, strings.Join(constants.AllowedExtensionList(), ", ")),
		nil)
}
