package service

import (
	"context"

	"github.com/xxxsen/semsearch/internal/model"
)

// ChunkStore is the persistence surface the pipelines need. Satisfied by
// *repo.ChunkRepo; substituted with fakes in tests.
type ChunkStore interface {
	InsertDocumentChunks(ctx context.Context, chunks []*model.DocumentChunk) ([]int64, error)
	SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]model.SearchHit, error)
	EnsureANNIndex(ctx context.Context, threshold int) (bool, error)
	ListByDocument(ctx context.Context, documentID string) ([]model.DocumentChunk, error)
}
