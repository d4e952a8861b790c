// Package artifact persists the normalized record as a JSON side artifact,
// one file per processed document.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/certvault/cert-extractor/internal/llm"
)

// Store writes metadata files under a fixed directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		dir = "."
	}
	return &Store{dir: dir, logger: logger}
}

// FileNameFor derives the artifact name from the source filename, with dots
// replaced so the original extension stays readable inside the name.
func FileNameFor(sourceFilename string) string {
	return "metadata_" + strings.ReplaceAll(sourceFilename, ".", "_") + ".json"
}

// Save writes the record as pretty-printed UTF-8 JSON with non-ASCII
// characters preserved unescaped. Returns the written path.
func (s *Store) Save(rec llm.Record, sourceFilename string) (string, error) {
	path := filepath.Join(s.dir, FileNameFor(sourceFilename))

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(rec); err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Info("artifact.saved", "path", path, "bytes", buf.Len())
	return path, nil
}
