package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/certvault/cert-extractor/constants"
	"github.com/certvault/cert-extractor/internal/artifact"
	"github.com/certvault/cert-extractor/internal/common"
	"github.com/certvault/cert-extractor/internal/decode"
	"github.com/certvault/cert-extractor/internal/llm"
	"github.com/certvault/cert-extractor/internal/ocr"
)

const recognizedText = "Certificate No C-101 awarded to Priya Sharma, B.Tech CSE, 2019"

type fixedEngine struct {
	text string
	err  error
}

func (f *fixedEngine) Name() string { return "fixed" }

func (f *fixedEngine) Recognize(_ context.Context, _ image.Image) (ocr.Result, error) {
	if f.err != nil {
		return ocr.Result{}, f.err
	}
	return ocr.Result{Text: f.text}, nil
}

type fixedCompleter struct {
	reply string
	err   error
}

func (f *fixedCompleter) Complete(_ context.Context, _ string) (string, error) {
	return f.reply, f.err
}

func pngDoc(t *testing.T, filename string) decode.Document {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return decode.Document{Filename: filename, Data: buf.Bytes()}
}

func newTestPipeline(t *testing.T, engine ocr.Engine, completer llm.Completer, artifactDir string) *Pipeline {
	t.Helper()
	dec := decode.NewDecoder(decode.Config{}, nil)
	adapter := ocr.NewAdapter(engine, nil)
	ext := llm.NewExtractor(completer, constants.SchemaCertificate, nil)
	var store *artifact.Store
	if artifactDir != "" {
		store = artifact.NewStore(artifactDir, nil)
	}
	return New(dec, adapter, ext, store, nil)
}

func TestProcessSuccess(t *testing.T) {
	dir := t.TempDir()
	p := newTestPipeline(t,
		&fixedEngine{text: recognizedText},
		&fixedCompleter{reply: `{"name": "Priya Sharma", "certificateNo": "C-101"}`},
		dir,
	)

	res, err := p.Process(context.Background(), pngDoc(t, "scan.png"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != "success" {
		t.Errorf("Status = %q", res.Status)
	}
	if res.Filename != "scan.png" {
		t.Errorf("Filename = %q", res.Filename)
	}
	if res.Pages != 1 {
		t.Errorf("Pages = %d", res.Pages)
	}
	if res.TextLength != len(recognizedText) {
		t.Errorf("TextLength = %d, want %d", res.TextLength, len(recognizedText))
	}
	if res.Record["name"] != "Priya Sharma" {
		t.Errorf("Record = %v", res.Record)
	}

	wantPath := filepath.Join(dir, "metadata_scan_png.json")
	if res.ArtifactPath != wantPath {
		t.Errorf("ArtifactPath = %q, want %q", res.ArtifactPath, wantPath)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	if !strings.Contains(string(data), "Priya Sharma") {
		t.Errorf("artifact content = %s", data)
	}
}

func TestProcessUnsupportedExtension(t *testing.T) {
	p := newTestPipeline(t, &fixedEngine{text: recognizedText},
		&fixedCompleter{reply: "{}"}, "")

	_, err := p.Process(context.Background(), decode.Document{Filename: "notes.txt", Data: []byte("hello")})
	if !common.IsKind(err, common.KindUnsupportedFormat) {
		t.Errorf("kind = %q, want UNSUPPORTED_FORMAT", common.KindOf(err))
	}
}

func TestProcessInsufficientText(t *testing.T) {
	p := newTestPipeline(t, &fixedEngine{text: "hi"}, &fixedCompleter{reply: "{}"}, "")

	_, err := p.Process(context.Background(), pngDoc(t, "scan.png"))
	if !common.IsKind(err, common.KindInsufficientText) {
		t.Errorf("kind = %q, want INSUFFICIENT_TEXT", common.KindOf(err))
	}
}

func TestProcessEngineFailure(t *testing.T) {
	p := newTestPipeline(t, &fixedEngine{err: errors.New("engine crashed")},
		&fixedCompleter{reply: "{}"}, "")

	_, err := p.Process(context.Background(), pngDoc(t, "scan.png"))
	if !common.IsKind(err, common.KindRecognitionFailed) {
		t.Errorf("kind = %q, want RECOGNITION_FAILED", common.KindOf(err))
	}
}

func TestProcessBackendFailure(t *testing.T) {
	p := newTestPipeline(t, &fixedEngine{text: recognizedText},
		&fixedCompleter{err: errors.New("connection refused")}, "")

	_, err := p.Process(context.Background(), pngDoc(t, "scan.png"))
	if !common.IsKind(err, common.KindBackendFailed) {
		t.Errorf("kind = %q, want BACKEND_FAILED", common.KindOf(err))
	}
}

func TestProcessInvalidBackendReply(t *testing.T) {
	p := newTestPipeline(t, &fixedEngine{text: recognizedText},
		&fixedCompleter{reply: "not json at all"}, "")

	_, err := p.Process(context.Background(), pngDoc(t, "scan.png"))
	if !common.IsKind(err, common.KindInvalidBackendResponse) {
		t.Errorf("kind = %q, want INVALID_BACKEND_RESPONSE", common.KindOf(err))
	}
}

func TestProcessArtifactFailureIsNotFatal(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does", "not", "exist")
	p := newTestPipeline(t, &fixedEngine{text: recognizedText},
		&fixedCompleter{reply: `{"name": "Priya Sharma"}`}, missing)

	res, err := p.Process(context.Background(), pngDoc(t, "scan.png"))
	if err != nil {
		t.Fatalf("artifact failure should not fail the request: %v", err)
	}
	if res.ArtifactPath != "" {
		t.Errorf("ArtifactPath = %q, want empty on write failure", res.ArtifactPath)
	}
	if res.Record["name"] != "Priya Sharma" {
		t.Errorf("Record = %v", res.Record)
	}
}

func TestProcessDisabledArtifacts(t *testing.T) {
	p := newTestPipeline(t, &fixedEngine{text: recognizedText},
		&fixedCompleter{reply: `{"name": "Priya Sharma"}`}, "")

	res, err := p.Process(context.Background(), pngDoc(t, "scan.png"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ArtifactPath != "" {
		t.Errorf("ArtifactPath = %q, want empty when artifacts are disabled", res.ArtifactPath)
	}
}
