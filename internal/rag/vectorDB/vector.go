package vectorDB

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmbeddingMismatch means an existing index was built for another embedding model or size.
var ErrEmbeddingMismatch = errors.New("index was built with a different embedding model")

// ChunkRecord is one embedded chunk as stored in an index.
type ChunkRecord struct {
	Id            string
	Content       string
	Vector        []float32
	DocId         string
	DocumentTitle string
	Filename      string
}

// Hit is a nearest neighbour, Distance is cosine distance (0 identical, up to 2 opposite).
type Hit struct {
	Id            string
	Content       string
	DocId         string
	DocumentTitle string
	Filename      string
	Distance      float64
}

// Index is the persistent nearest neighbour store behind Store.
type Index interface {
	Exists(ctx context.Context, id string) (bool, error)
	// Insert stores the record unless the id is already present, first writer wins.
	Insert(ctx context.Context, record ChunkRecord) (bool, error)
	Query(ctx context.Context, vector []float32, limit int) ([]Hit, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

func ChunkID(docId string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", docId, index)
}
