package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/internal/metrics"
)

// LoadDocuments processes and indexes a file or every supported file directly inside a directory.
// Per-file failures are reported in the result map; only an unusable path returns an error.
func (s *service) LoadDocuments(ctx context.Context, path string) (map[string]commonModels.LoadResult, error) {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY)

	files, err := s.collectFiles(path)
	if err != nil {
		log.Warn("Rejected document path", "path", path, "error", err)
		return nil, err
	}
	log.Info("Loading documents", "path", path, "files", len(files))

	results := make(map[string]commonModels.LoadResult, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result := s.loadFile(ctx, file)
		metrics.IncrementDocumentsLoaded(result.Success)
		results[file] = result
	}
	return results, nil
}

func (s *service) collectFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}

	if !info.IsDir() {
		if !s.processor.SupportsFile(path) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(path))
		}
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPath, path, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		full := filepath.Join(path, e.Name())
		if s.processor.SupportsFile(full) {
			files = append(files, full)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSupportedFiles, path)
	}
	return files, nil
}

func (s *service) loadFile(ctx context.Context, path string) commonModels.LoadResult {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("file", path)
	fileCtx, cancel := context.WithTimeout(ctx, config.IngestFileTimeout)
	defer cancel()

	start := time.Now()
	doc, err := s.processor.ProcessDocument(fileCtx, path)
	if err != nil {
		log.Error("Failed to process document", "error", err)
		return failedLoad(path, err)
	}

	stats, err := s.store.AddDocument(fileCtx, doc)
	if err != nil {
		log.Error("Failed to index document", "error", err)
		return failedLoad(path, err)
	}
	s.register(doc)

	words := doc.WordCount()
	log.Info("Loaded document", "words", words, "chunks", stats.Chunks, "added", stats.Added, "elapsed", time.Since(start))
	return commonModels.LoadResult{
		Path:      path,
		Success:   true,
		Message:   fmt.Sprintf("[OK] Success: %d words", words),
		WordCount: words,
		Chunks:    stats.Chunks,
	}
}

func failedLoad(path string, err error) commonModels.LoadResult {
	return commonModels.LoadResult{
		Path:    path,
		Success: false,
		Message: fmt.Sprintf("[ERROR] Error: %v", err),
	}
}

func (s *service) register(doc commonModels.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.Id] = doc
}
