package qdrantDB

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/rag/vectorDB"
	"github.com/akolanti/insightRAG/pkg/logger_i"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// chunk ids are not uuids, qdrant only accepts uuids or integers as point ids
var pointNamespace = uuid.MustParse("5b0c6f2e-8d1a-4c55-9a43-4f7a3f1e2d10")

// DB is an Index backed by a qdrant collection. Points carry the embedding model in
// their payload and queries only match points from the same model.
type DB struct {
	client     *qdrant.Client
	collection string
	model      string
	dimension  uint64
	logger     *logger_i.Logger
}

func New(ctx context.Context, settings *config.Settings, model string, dimension int) (*DB, error) {
	logger := logger_i.NewLogger("Qdrant")
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     settings.QdrantHost,
		Port:     settings.QdrantPort,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("could not instantiate qdrant client: %w", err)
	}

	db := &DB{
		client:     client,
		collection: config.EmbeddingDBName,
		model:      model,
		dimension:  uint64(dimension),
		logger:     logger,
	}
	if err := db.createCollection(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not create collection %s: %w", db.collection, err)
	}
	logger.Info("Connected to qdrant", "host", settings.QdrantHost, "port", settings.QdrantPort, "collection", db.collection)
	return db, nil
}

func (db *DB) createCollection(ctx context.Context) error {
	if db.collection == "" {
		return errors.New("empty collection name")
	}
	exists, err := db.client.CollectionExists(ctx, db.collection)
	if err != nil {
		return err
	}
	if exists {
		info, err := db.client.GetCollectionInfo(ctx, db.collection)
		if err != nil {
			return err
		}
		return checkVectorSize(info, db.dimension)
	}
	return db.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: db.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     db.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

// checkVectorSize rejects a reused collection whose vectors do not match the embedder.
func checkVectorSize(info *qdrant.CollectionInfo, want uint64) error {
	got := info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
	if got != want {
		return fmt.Errorf("%w: collection vector size is %d, embedder produces %d", vectorDB.ErrEmbeddingMismatch, got, want)
	}
	return nil
}

func (db *DB) modelFilter() *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatch("embedding_model", db.model)},
	}
}

func PointID(chunkId string) string {
	return uuid.NewSHA1(pointNamespace, []byte(chunkId)).String()
}

func (db *DB) Exists(ctx context.Context, id string) (bool, error) {
	points, err := db.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: db.collection,
		Ids:            []*qdrant.PointId{qdrant.NewID(PointID(id))},
	})
	if err != nil {
		return false, err
	}
	return len(points) > 0, nil
}

// Insert skips ids that are already stored. Point ids are derived from chunk ids so a
// racing duplicate upsert rewrites the same chunk with the same content.
func (db *DB) Insert(ctx context.Context, r vectorDB.ChunkRecord) (bool, error) {
	exists, err := db.Exists(ctx, r.Id)
	if err != nil || exists {
		return false, err
	}

	_, err = db.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collection,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewID(PointID(r.Id)),
			Vectors: qdrant.NewVectors(r.Vector...),
			Payload: qdrant.NewValueMap(payload(r, db.model)),
		}},
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return false, fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return true, nil
}

func payload(r vectorDB.ChunkRecord, model string) map[string]any {
	return map[string]any{
		"chunk_id":        r.Id,
		"content":         r.Content,
		"doc_id":          r.DocId,
		"document_title":  r.DocumentTitle,
		"filename":        r.Filename,
		"embedding_model": model,
	}
}

func (db *DB) Query(ctx context.Context, vector []float32, limit int) ([]vectorDB.Hit, error) {
	log := db.logger.WithTrace(ctx, config.TRACE_ID_KEY)
	result, err := db.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         db.modelFilter(),
	})
	if err != nil {
		log.Error("Error querying Qdrant", "error", err)
		return nil, err
	}

	hits := make([]vectorDB.Hit, 0, len(result))
	for _, p := range result {
		hits = append(hits, vectorDB.Hit{
			Id:            p.Payload["chunk_id"].GetStringValue(),
			Content:       p.Payload["content"].GetStringValue(),
			DocId:         p.Payload["doc_id"].GetStringValue(),
			DocumentTitle: p.Payload["document_title"].GetStringValue(),
			Filename:      p.Payload["filename"].GetStringValue(),
			Distance:      1 - float64(p.Score),
		})
	}
	log.Debug("Qdrant matches", "count", len(hits))
	return hits, nil
}

func (db *DB) Count(ctx context.Context) (int, error) {
	n, err := db.client.Count(ctx, db.countRequest())
	return int(n), err
}

// countRequest only counts points written by the configured embedding model, matching Query.
func (db *DB) countRequest() *qdrant.CountPoints {
	return &qdrant.CountPoints{
		CollectionName: db.collection,
		Filter:         db.modelFilter(),
		Exact:          qdrant.PtrOf(true),
	}
}

func (db *DB) Close() error {
	db.logger.Info("Shutting down Qdrant")
	return db.client.Close()
}
