package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/didi/gendry/builder"
	"github.com/pgvector/pgvector-go"

	"github.com/xxxsen/semsearch/internal/model"
	"github.com/xxxsen/semsearch/internal/pkg/dbutil"
)

// ANNIndexName is deterministic so existence can be checked in pg_indexes.
const ANNIndexName = "document_chunks_embedding_idx"

type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// InsertChunk stores one chunk row and returns its assigned id. No
// deduplication: identical text produces distinct rows.
func (r *ChunkRepo) InsertChunk(ctx context.Context, chunk *model.DocumentChunk) (int64, error) {
	return insertChunk(ctx, r.db, chunk)
}

func insertChunk(ctx context.Context, db execer, chunk *model.DocumentChunk) (int64, error) {
	data := map[string]interface{}{
		"document_id":   chunk.DocumentID,
		"document_name": chunk.DocumentName,
		"chunk_index":   chunk.ChunkIndex,
		"text":          chunk.Text,
		"embedding":     pgvector.NewVector(chunk.Embedding),
		"created_at":    chunk.CreatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("document_chunks", []map[string]interface{}{data})
	if err != nil {
		return 0, err
	}
	sqlStr = dbutil.Rebind(sqlStr) + " RETURNING id"
	var id int64
	if err := db.QueryRowContext(ctx, sqlStr, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// InsertDocumentChunks stores all chunks of one document in a single
// transaction, in chunk order. Either every chunk commits or none does.
func (r *ChunkRepo) InsertDocumentChunks(ctx context.Context, chunks []*model.DocumentChunk) ([]int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	ids := make([]int64, 0, len(chunks))
	for _, chunk := range chunks {
		id, err := insertChunk(ctx, tx, chunk)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// SearchSimilar returns up to limit chunks ordered by ascending cosine
// distance to the query vector, ties broken by id for determinism. A
// smaller corpus simply returns fewer rows.
func (r *ChunkRepo) SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]model.SearchHit, error) {
	const query = `
		SELECT text, embedding <=> $1 AS distance, document_name
		FROM document_chunks
		ORDER BY distance, id
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, pgvector.NewVector(queryEmbedding), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var hits []model.SearchHit
	for rows.Next() {
		var hit model.SearchHit
		if err := rows.Scan(&hit.Text, &hit.Distance, &hit.DocumentName); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func (r *ChunkRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_chunks`).Scan(&count)
	return count, err
}

// ListByDocument returns a document's chunks in chunk_index order, without
// embeddings.
func (r *ChunkRepo) ListByDocument(ctx context.Context, documentID string) ([]model.DocumentChunk, error) {
	const query = `
		SELECT id, document_id, document_name, chunk_index, text, created_at
		FROM document_chunks
		WHERE document_id = $1
		ORDER BY chunk_index
	`
	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var chunks []model.DocumentChunk
	for rows.Next() {
		var c model.DocumentChunk
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.DocumentName, &c.ChunkIndex, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (r *ChunkRepo) IndexExists(ctx context.Context) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, ANNIndexName).Scan(&exists)
	return exists, err
}

// EnsureANNIndex creates the hnsw index over the embedding column once the
// chunk count exceeds threshold. Building over too little data is wasted
// effort and trains the graph on less of the corpus, so creation is
// deferred until the threshold crossing. Returns whether an index was
// created by this call. Safe under concurrent callers: the existence check
// plus IF NOT EXISTS plus duplicate-object tolerance make creation
// idempotent.
func (r *ChunkRepo) EnsureANNIndex(ctx context.Context, threshold int) (bool, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return false, err
	}
	if count <= int64(threshold) {
		return false, nil
	}
	exists, err := r.IndexExists(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	createStmt := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s
		ON document_chunks
		USING hnsw (embedding vector_cosine_ops)
		WITH (m = 16, ef_construction = 64)
	`, ANNIndexName)
	if _, err := r.db.ExecContext(ctx, createStmt); err != nil {
		if dbutil.IsDuplicateObject(err) || strings.Contains(err.Error(), "already exists") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DropANNIndex is a debug-only maintenance action; the index is never
// dropped in normal operation.
func (r *ChunkRepo) DropANNIndex(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`DROP INDEX IF EXISTS %s`, ANNIndexName))
	return err
}
