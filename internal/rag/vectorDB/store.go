package vectorDB

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/internal/metrics"
	"github.com/akolanti/insightRAG/internal/rag/chunker"
	"github.com/akolanti/insightRAG/internal/rag/embedding"
	"github.com/akolanti/insightRAG/pkg/logger_i"
)

var ErrEmbeddingCount = errors.New("embedder returned a different number of vectors")

type AddStats struct {
	Chunks  int
	Added   int
	Skipped int
}

// Store chunks, embeds and indexes documents and answers similarity queries.
type Store struct {
	index     Index
	embedder  embedding.Embedder
	chunker   *chunker.Chunker
	batchSize int
	logger    *logger_i.Logger
}

func NewStore(index Index, embedder embedding.Embedder, ch *chunker.Chunker) *Store {
	return &Store{
		index:     index,
		embedder:  embedder,
		chunker:   ch,
		batchSize: config.EmbeddingBatchSize,
		logger:    logger_i.NewLogger("VectorStore"),
	}
}

type pendingChunk struct {
	id    string
	chunk commonModels.TextChunk
}

// AddDocument indexes every chunk of doc that is not already present.
func (s *Store) AddDocument(ctx context.Context, doc commonModels.Document) (AddStats, error) {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY).With("docId", doc.Id)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("index_document", time.Since(start)) }()

	chunks := s.chunker.CreateChunks(doc.Content)
	stats := AddStats{Chunks: len(chunks)}

	var pending []pendingChunk
	for _, c := range chunks {
		id := ChunkID(doc.Id, c.Index)
		exists, err := s.index.Exists(ctx, id)
		if err != nil {
			return stats, fmt.Errorf("checking chunk %s: %w", id, err)
		}
		if exists {
			stats.Skipped++
			continue
		}
		pending = append(pending, pendingChunk{id: id, chunk: c})
	}

	for i := 0; i < len(pending); i += s.batchSize {
		end := min(i+s.batchSize, len(pending))
		batch := pending[i:end]

		texts := make([]string, len(batch))
		for j, p := range batch {
			texts[j] = p.chunk.Content
		}
		vectors, err := s.embedder.BatchEmbedding(ctx, texts, false)
		if err != nil {
			return stats, fmt.Errorf("embedding batch failed: %w", err)
		}
		if len(vectors) != len(batch) {
			return stats, fmt.Errorf("%w: %d for %d chunks", ErrEmbeddingCount, len(vectors), len(batch))
		}

		for j, p := range batch {
			inserted, err := s.index.Insert(ctx, ChunkRecord{
				Id:            p.id,
				Content:       p.chunk.Content,
				Vector:        vectors[j],
				DocId:         doc.Id,
				DocumentTitle: doc.Title,
				Filename:      doc.Filename(),
			})
			if err != nil {
				return stats, fmt.Errorf("inserting chunk %s: %w", p.id, err)
			}
			if inserted {
				stats.Added++
			} else {
				stats.Skipped++
			}
		}
	}

	log.Info("Indexed document", "chunks", stats.Chunks, "added", stats.Added, "skipped", stats.Skipped)
	return stats, nil
}

// Search never fails: an unavailable index or embedder yields no results.
func (s *Store) Search(ctx context.Context, query string, maxResults int) []commonModels.SearchResult {
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	if maxResults <= 0 {
		return nil
	}
	vector, err := s.embedder.GetEmbedding(ctx, query)
	if err != nil {
		log.Warn("Query embedding failed, no document context", "error", err)
		return []commonModels.SearchResult{}
	}
	hits, err := s.index.Query(ctx, vector, maxResults)
	if err != nil {
		log.Warn("Vector query failed, no document context", "error", err)
		return []commonModels.SearchResult{}
	}

	results := make([]commonModels.SearchResult, 0, len(hits))
	for i, h := range hits {
		results = append(results, commonModels.SearchResult{
			Content: h.Content,
			Source:  h.Filename,
			Score:   Similarity(h.Distance),
			Metadata: map[string]any{
				"doc_id":         h.DocId,
				"document_title": h.DocumentTitle,
				"filename":       h.Filename,
				"chunk_id":       h.Id,
			},
			SourceType: commonModels.SourceDocument,
			Rank:       i + 1,
		})
	}
	log.Debug("Vector search done", "results", len(results))
	return results
}

func (s *Store) Count(ctx context.Context) (int, error) {
	return s.index.Count(ctx)
}

func (s *Store) EmbeddingModel() string {
	return s.embedder.ModelName()
}

func (s *Store) Close() error {
	return s.index.Close()
}

// Similarity maps a cosine distance onto [0,1].
func Similarity(distance float64) float64 {
	return math.Min(1, math.Max(0, 1-distance))
}
