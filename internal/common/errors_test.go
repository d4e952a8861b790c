package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestKindOfThroughWrapping(t *testing.T) {
	base := NewPipelineError(KindDecodeFailed, "parse PDF", errors.New("bad xref"))
	wrapped := fmt.Errorf("process document: %w", base)

	if got := KindOf(wrapped); got != KindDecodeFailed {
		t.Errorf("KindOf(wrapped) = %q, want %q", got, KindDecodeFailed)
	}
	if !IsKind(wrapped, KindDecodeFailed) {
		t.Error("IsKind(wrapped, DECODE_FAILED) = false")
	}
	if IsKind(wrapped, KindBackendFailed) {
		t.Error("IsKind matched the wrong kind")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("KindOf(plain error) should be empty")
	}
}

func TestErrorStringCarriesKindAndCause(t *testing.T) {
	err := NewPipelineError(KindRecognitionFailed, "recognize page 2/3", errors.New("engine crashed"))
	msg := err.Error()
	for _, want := range []string{"RECOGNITION_FAILED", "recognize page 2/3", "engine crashed"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestBackendErrorRetainsRaw(t *testing.T) {
	err := NewBackendError(KindInvalidBackendResponse, "bad reply", "```json garbage", errors.New("unexpected token"))
	if err.Raw != "```json garbage" {
		t.Errorf("Raw = %q", err.Raw)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindUnsupportedFormat, http.StatusBadRequest},
		{KindDecodeFailed, http.StatusBadRequest},
		{KindInsufficientText, http.StatusBadRequest},
		{KindRecognitionFailed, http.StatusInternalServerError},
		{KindBackendFailed, http.StatusInternalServerError},
		{KindInvalidBackendResponse, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		err := NewPipelineError(tt.kind, "x", nil)
		if got := HTTPStatus(err); got != tt.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
	if got := HTTPStatus(errors.New("unclassified")); got != http.StatusInternalServerError {
		t.Errorf("HTTPStatus(unclassified) = %d, want 500", got)
	}
}

func TestUnsupportedFormatErrorListsAcceptedTypes(t *testing.T) {
	err := UnsupportedFormatError(".txt")
	if err.Kind != KindUnsupportedFormat {
		t.Fatalf("Kind = %q", err.Kind)
	}
	for _, want := range []string{".txt", ".pdf", ".jpg", ".jpeg", ".png", ".tiff", ".bmp"} {
		if !strings.Contains(err.Message, want) {
			t.Errorf("message %q missing %q", err.Message, want)
		}
	}
}
