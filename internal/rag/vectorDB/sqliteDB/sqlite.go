package sqliteDB

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/akolanti/insightRAG/internal/config"
	"github.com/akolanti/insightRAG/internal/rag/embedding"
	"github.com/akolanti/insightRAG/internal/rag/vectorDB"
	"github.com/akolanti/insightRAG/pkg/logger_i"
	_ "modernc.org/sqlite"
)

var ErrEmbeddingMismatch = vectorDB.ErrEmbeddingMismatch

const schema = `
CREATE TABLE IF NOT EXISTS index_meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS chunks (
    id             TEXT PRIMARY KEY,
    doc_id         TEXT NOT NULL,
    document_title TEXT,
    filename       TEXT,
    content        TEXT NOT NULL,
    vector         BLOB NOT NULL,
    created_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_chunks_doc_id ON chunks(doc_id);
`

// DB is the on-disk index. Search is a brute force cosine scan.
type DB struct {
	conn      *sql.DB
	path      string
	dimension int
	logger    *logger_i.Logger
}

// Open creates or opens dir/index.db and pins it to one embedding model and dimension.
func Open(ctx context.Context, dir, model string, dimension int) (*DB, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	path := filepath.Join(dir, config.SqliteIndexFile)

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	// single writer, avoids SQLITE_BUSY between pooled connections
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, path: path, dimension: dimension, logger: logger_i.NewLogger("SqliteIndex")}
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := db.pinEmbedding(ctx, model, dimension); err != nil {
		conn.Close()
		return nil, err
	}
	db.logger.Info("Opened vector index", "path", path, "model", model, "dimension", dimension)
	return db, nil
}

func (db *DB) pinEmbedding(ctx context.Context, model string, dimension int) error {
	want := map[string]string{
		"embedding_model":     model,
		"embedding_dimension": strconv.Itoa(dimension),
	}
	for key, value := range want {
		if _, err := db.conn.ExecContext(ctx,
			`INSERT INTO index_meta(key, value) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`, key, value); err != nil {
			return fmt.Errorf("writing index metadata: %w", err)
		}
		var stored string
		if err := db.conn.QueryRowContext(ctx, `SELECT value FROM index_meta WHERE key = ?`, key).Scan(&stored); err != nil {
			return fmt.Errorf("reading index metadata: %w", err)
		}
		if stored != value {
			return fmt.Errorf("%w: %s is %q, configured %q", ErrEmbeddingMismatch, key, stored, value)
		}
	}
	return nil
}

func (db *DB) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx, `SELECT 1 FROM chunks WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (db *DB) Insert(ctx context.Context, r vectorDB.ChunkRecord) (bool, error) {
	if len(r.Vector) != db.dimension {
		return false, fmt.Errorf("%w: got %d, index holds %d", embedding.ErrDimensionMismatch, len(r.Vector), db.dimension)
	}
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO chunks(id, doc_id, document_title, filename, content, vector)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		r.Id, r.DocId, r.DocumentTitle, r.Filename, r.Content, serializeVector(r.Vector))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (db *DB) Query(ctx context.Context, vector []float32, limit int) ([]vectorDB.Hit, error) {
	if len(vector) != db.dimension {
		return nil, fmt.Errorf("%w: query has %d, index holds %d", embedding.ErrDimensionMismatch, len(vector), db.dimension)
	}
	rows, err := db.conn.QueryContext(ctx, `SELECT id, doc_id, document_title, filename, content, vector FROM chunks`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var hits []vectorDB.Hit
	for rows.Next() {
		var (
			h           vectorDB.Hit
			title, file sql.NullString
			blob        []byte
		)
		if err := rows.Scan(&h.Id, &h.DocId, &title, &file, &h.Content, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		sim, err := embedding.CosineSimilarity(vector, deserializeVector(blob))
		if err != nil {
			db.logger.Warn("Skipping chunk with foreign dimension", "id", h.Id)
			continue
		}
		h.DocumentTitle = title.String
		h.Filename = file.String
		h.Distance = 1 - sim
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func serializeVector(vector []float32) []byte {
	buf := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func deserializeVector(data []byte) []float32 {
	vector := make([]float32, len(data)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vector
}
