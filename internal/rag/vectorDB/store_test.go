package vectorDB

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/akolanti/insightRAG/internal/domain/commonModels"
	"github.com/akolanti/insightRAG/internal/rag/chunker"
	"github.com/akolanti/insightRAG/internal/rag/embedding"
	"github.com/akolanti/insightRAG/internal/rag/embedding/localEmbedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryIndex struct {
	mu       sync.Mutex
	records  map[string]ChunkRecord
	OnQuery  func() error
	inserted int
}

func newMemoryIndex() *memoryIndex {
	return &memoryIndex{records: map[string]ChunkRecord{}}
}

func (m *memoryIndex) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[id]
	return ok, nil
}

func (m *memoryIndex) Insert(ctx context.Context, r ChunkRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[r.Id]; ok {
		return false, nil
	}
	m.records[r.Id] = r
	m.inserted++
	return true, nil
}

func (m *memoryIndex) Query(ctx context.Context, vector []float32, limit int) ([]Hit, error) {
	if m.OnQuery != nil {
		if err := m.OnQuery(); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var hits []Hit
	for _, r := range m.records {
		sim, err := embedding.CosineSimilarity(vector, r.Vector)
		if err != nil {
			return nil, err
		}
		hits = append(hits, Hit{Id: r.Id, Content: r.Content, DocId: r.DocId, DocumentTitle: r.DocumentTitle, Filename: r.Filename, Distance: 1 - sim})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (m *memoryIndex) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}

func (m *memoryIndex) Close() error { return nil }

type failingEmbedder struct {
	embedding.Embedder
}

func (f failingEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return nil, errors.New("embedding service down")
}

func newTestStore(t *testing.T, size, overlap int) (*Store, *memoryIndex) {
	t.Helper()
	ch, err := chunker.New(size, overlap)
	require.NoError(t, err)
	idx := newMemoryIndex()
	return NewStore(idx, localEmbedding.New("local-hash-64", 64), ch), idx
}

func testDocument(id, content string) commonModels.Document {
	return commonModels.Document{
		Id:       id,
		Title:    "lease",
		Content:  content,
		Metadata: map[string]any{"filename": "lease.pdf"},
	}
}

func TestAddDocument_Idempotent(t *testing.T) {
	s, idx := newTestStore(t, 40, 10)
	doc := testDocument("doc1", strings.Repeat("rent is due on the first day of each month. ", 5))

	first, err := s.AddDocument(context.Background(), doc)
	require.NoError(t, err)
	assert.Greater(t, first.Chunks, 1)
	assert.Equal(t, first.Chunks, first.Added)
	assert.Equal(t, 0, first.Skipped)

	second, err := s.AddDocument(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, first.Chunks, second.Skipped)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Chunks, n)
	assert.Equal(t, first.Chunks, idx.inserted)

	_, ok := idx.records[ChunkID("doc1", 0)]
	assert.True(t, ok)
}

func TestSearch_ExactChunkRanksFirst(t *testing.T) {
	s, _ := newTestStore(t, 1000, 200)
	ctx := context.Background()

	_, err := s.AddDocument(ctx, testDocument("lease", "The tenant must give thirty days written notice before termination."))
	require.NoError(t, err)
	other := testDocument("recipe", "Whisk eggs with sugar and fold in the flour gently.")
	other.Metadata = map[string]any{"filename": "recipe.txt"}
	_, err = s.AddDocument(ctx, other)
	require.NoError(t, err)

	results := s.Search(ctx, "The tenant must give thirty days written notice before termination.", 5)
	require.Len(t, results, 2)

	top := results[0]
	assert.Equal(t, 1, top.Rank)
	assert.Equal(t, 2, results[1].Rank)
	assert.Equal(t, commonModels.SourceDocument, top.SourceType)
	assert.Equal(t, "lease.pdf", top.Source)
	assert.Greater(t, top.Score, 0.9)
	assert.Equal(t, "lease", top.Metadata["doc_id"])
	assert.Equal(t, ChunkID("lease", 0), top.Metadata["chunk_id"])
	assert.GreaterOrEqual(t, top.Score, results[1].Score)

	assert.Len(t, s.Search(ctx, "notice", 1), 1)
}

func TestSearch_FailuresYieldEmpty(t *testing.T) {
	s, idx := newTestStore(t, 100, 10)
	ctx := context.Background()
	_, err := s.AddDocument(ctx, testDocument("d", "some content to index"))
	require.NoError(t, err)

	idx.OnQuery = func() error { return errors.New("index unavailable") }
	results := s.Search(ctx, "content", 5)
	assert.NotNil(t, results)
	assert.Empty(t, results)

	idx.OnQuery = nil
	s.embedder = failingEmbedder{Embedder: s.embedder}
	results = s.Search(ctx, "content", 5)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearch_EmptyIndex(t *testing.T) {
	s, _ := newTestStore(t, 100, 10)
	assert.Empty(t, s.Search(context.Background(), "anything", 5))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity(0))
	assert.Equal(t, 0.0, Similarity(1.5))
	assert.InDelta(t, 0.75, Similarity(0.25), 1e-9)
	assert.Equal(t, 1.0, Similarity(-0.1))
}
