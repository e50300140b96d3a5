package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/josinaldojr/news-chat-rag/internal/rag"
)

// FileSource reads a JSON array of {title, url, full_text} objects.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) ListDocuments(_ context.Context) ([]rag.Document, error) {
	data, err := os.ReadFile(filepath.Clean(f.path))
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", f.path, err)
	}

	var docs []rag.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", f.path, err)
	}
	return docs, nil
}

// WriteFile writes docs in the FileSource format, replacing path atomically.
func WriteFile(path string, docs []rag.Document) error {
	type entry struct {
		Title    string `json:"title"`
		URL      string `json:"url"`
		FullText string `json:"full_text"`
	}

	entries := make([]entry, len(docs))
	for i, d := range docs {
		entries[i] = entry{Title: d.Title, URL: d.URL, FullText: d.FullText}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create corpus dir: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace corpus: %w", err)
	}
	return nil
}

var _ Source = (*FileSource)(nil)
var _ Source = (*rag.PgRepository)(nil)
