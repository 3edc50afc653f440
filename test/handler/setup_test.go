package handler_test

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/xxxsen/semsearch/internal/ai"
	"github.com/xxxsen/semsearch/internal/config"
	"github.com/xxxsen/semsearch/internal/handler"
	"github.com/xxxsen/semsearch/internal/middleware"
	"github.com/xxxsen/semsearch/internal/model"
	"github.com/xxxsen/semsearch/internal/service"
)

const stubDim = 8

type stubEmbedder struct{}

func (e *stubEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *stubEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		sum := sha256.Sum256([]byte(text))
		vec := make([]float32, stubDim)
		for i := range vec {
			bits := binary.BigEndian.Uint32(sum[i*4 : i*4+4])
			vec[i] = float32(bits%1000)/1000 + 0.001
		}
		out = append(out, vec)
	}
	return out, nil
}

func (e *stubEmbedder) ModelName() string { return "stub-embed" }
func (e *stubEmbedder) Dimension() int    { return stubDim }

type memStore struct {
	mu     sync.Mutex
	rows   []model.DocumentChunk
	nextID int64
}

func (s *memStore) InsertDocumentChunks(ctx context.Context, chunks []*model.DocumentChunk) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(chunks))
	for _, chunk := range chunks {
		s.nextID++
		row := *chunk
		row.ID = s.nextID
		s.rows = append(s.rows, row)
		ids = append(ids, row.ID)
	}
	return ids, nil
}

func (s *memStore) SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]model.SearchHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hits := make([]model.SearchHit, 0, len(s.rows))
	for _, row := range s.rows {
		hits = append(hits, model.SearchHit{
			Text:         row.Text,
			Distance:     cosineDistance(queryEmbedding, row.Embedding),
			DocumentName: row.DocumentName,
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *memStore) EnsureANNIndex(ctx context.Context, threshold int) (bool, error) {
	return false, nil
}

func (s *memStore) ListByDocument(ctx context.Context, documentID string) ([]model.DocumentChunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.DocumentChunk
	for _, row := range s.rows {
		if row.DocumentID == documentID {
			out = append(out, row)
		}
	}
	return out, nil
}

func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

type stubSynthesizer struct{}

func (s *stubSynthesizer) Answer(ctx context.Context, query string, contexts []ai.Candidate) (string, error) {
	for _, c := range contexts {
		if strings.Contains(c.Text, query) || strings.Contains(query, c.Text) {
			return "Based on the context: " + c.Text, nil
		}
	}
	return "The supplied context does not contain an answer to this query.", nil
}

func (s *stubSynthesizer) ProviderName() string { return "stub-llm" }

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.SearchConfig{
		EmbeddingDim:         stubDim,
		ChunkSize:            500,
		ChunkOverlap:         50,
		EmbedBatchSize:       32,
		IndexThreshold:       1000,
		DefaultTopK:          5,
		RerankPoolMultiplier: 4,
	}
	store := &memStore{}
	embedder := &stubEmbedder{}

	ingestService := service.NewIngestService(store, embedder, nil, cfg, 1<<20)
	searchService := service.NewSearchService(store, embedder, nil, &stubSynthesizer{}, cfg)

	deps := handler.RouterDeps{
		Ingest: handler.NewIngestHandler(ingestService),
		Search: handler.NewSearchHandler(searchService),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)
	return engine
}
