// internal/adapter/storage/file_store.go

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"trendradar/internal/domain/trend"
)

// IndexFile is the name of the index artifact inside the data directory.
// Normalized keys are lowercase alphanumerics only, so no trend can map onto it.
const IndexFile = "_index.json"

// FileStore keeps one JSON document per trend key in a directory
type FileStore struct {
	dir string
}

// NewFileStore creates the data directory if needed and returns a store over it
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the data directory
func (s *FileStore) Dir() string {
	return s.dir
}

// Get reads the document stored under key
func (s *FileStore) Get(ctx context.Context, key string) (*trend.Document, error) {
	if !validKey(key) {
		return nil, trend.ErrNotFound
	}
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, trend.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading trend %s: %w", key, err)
	}

	var doc trend.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error decoding trend %s: %w", key, err)
	}
	return &doc, nil
}

// Save writes doc under its key, replacing any previous version
func (s *FileStore) Save(ctx context.Context, doc trend.Document) error {
	if !validKey(doc.Key) {
		return fmt.Errorf("invalid document key %q", doc.Key)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding trend %s: %w", doc.Key, err)
	}
	return s.writeAtomic(s.path(doc.Key), data)
}

// Keys lists every stored key, sorted
func (s *FileStore) Keys(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("error listing data directory: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		key := strings.TrimSuffix(name, ".json")
		if !validKey(key) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// WriteIndex replaces the index file atomically
func (s *FileStore) WriteIndex(ctx context.Context, index trend.Index) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding index: %w", err)
	}
	return s.writeAtomic(filepath.Join(s.dir, IndexFile), data)
}

// ReadIndex reads the index file
func (s *FileStore) ReadIndex(ctx context.Context) (trend.Index, error) {
	var index trend.Index
	data, err := os.ReadFile(filepath.Join(s.dir, IndexFile))
	if errors.Is(err, fs.ErrNotExist) {
		return index, trend.ErrNotFound
	}
	if err != nil {
		return index, fmt.Errorf("error reading index: %w", err)
	}
	if err := json.Unmarshal(data, &index); err != nil {
		return index, fmt.Errorf("error decoding index: %w", err)
	}
	return index, nil
}

// FindTrends loads every stored document and applies the filter.
// Documents that fail to decode are skipped.
func (s *FileStore) FindTrends(ctx context.Context, filter trend.Filter) ([]trend.Document, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]trend.Document, 0, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := s.Get(ctx, key)
		if err != nil {
			continue
		}
		docs = append(docs, *doc)
	}
	return filter.Apply(docs), nil
}

// validKey reports whether key is a non-empty normalized key
func validKey(key string) bool {
	return key != "" && trend.NormalizeKey(key) == key
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// writeAtomic writes to a temp file in the same directory and renames it over path
func (s *FileStore) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("error creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("error replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}
