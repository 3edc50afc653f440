package service_test

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/xxxsen/semsearch/internal/ai"
	"github.com/xxxsen/semsearch/internal/model"
)

const fakeDim = 8

// deterministic per-text vectors so equality and ordering are testable
type fakeEmbedder struct {
	mu    sync.Mutex
	calls [][]string
	fail  error
}

func embedText(text string) []float32 {
	sum := sha256.Sum256([]byte(text))
	vec := make([]float32, fakeDim)
	for i := range vec {
		vec[i] = float32(sum[i]) + 1
	}
	return vec
}

func (f *fakeEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), texts...))
	f.mu.Unlock()
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		out = append(out, embedText(text))
	}
	return out, nil
}

func (f *fakeEmbedder) ModelName() string { return "fake-embed" }
func (f *fakeEmbedder) Dimension() int    { return fakeDim }

type fakeStore struct {
	mu           sync.Mutex
	chunks       []*model.DocumentChunk
	nextID       int64
	insertErr    error
	searchErr    error
	indexCreated bool
	ensureCalls  int
	searchLimits []int
}

func (f *fakeStore) InsertDocumentChunks(ctx context.Context, chunks []*model.DocumentChunk) ([]int64, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, 0, len(chunks))
	for _, chunk := range chunks {
		f.nextID++
		stored := *chunk
		stored.ID = f.nextID
		f.chunks = append(f.chunks, &stored)
		ids = append(ids, f.nextID)
	}
	return ids, nil
}

func (f *fakeStore) SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]model.SearchHit, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchLimits = append(f.searchLimits, limit)
	type row struct {
		hit model.SearchHit
		id  int64
	}
	rows := make([]row, 0, len(f.chunks))
	for _, chunk := range f.chunks {
		rows = append(rows, row{
			hit: model.SearchHit{
				Text:         chunk.Text,
				Distance:     cosineDistance(queryEmbedding, chunk.Embedding),
				DocumentName: chunk.DocumentName,
			},
			id: chunk.ID,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].hit.Distance != rows[j].hit.Distance {
			return rows[i].hit.Distance < rows[j].hit.Distance
		}
		return rows[i].id < rows[j].id
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	hits := make([]model.SearchHit, 0, len(rows))
	for _, r := range rows {
		hits = append(hits, r.hit)
	}
	return hits, nil
}

func (f *fakeStore) EnsureANNIndex(ctx context.Context, threshold int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureCalls++
	if len(f.chunks) <= threshold || f.indexCreated {
		return false, nil
	}
	f.indexCreated = true
	return true, nil
}

func (f *fakeStore) ListByDocument(ctx context.Context, documentID string) ([]model.DocumentChunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.DocumentChunk
	for _, chunk := range f.chunks {
		if chunk.DocumentID == documentID {
			out = append(out, *chunk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
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

type fakeReranker struct {
	fail error
}

func (f *fakeReranker) Rerank(ctx context.Context, query string, candidates []ai.Candidate, topK int) ([]model.ScoredChunk, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	scored := make([]model.ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		score := 0.0
		if strings.Contains(strings.ToLower(c.Text), strings.ToLower(query)) {
			score = 1.0
		}
		scored = append(scored, model.ScoredChunk{Text: c.Text, DocumentName: c.DocumentName, Score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

// answers only from supplied context, refusing when nothing matches
type fakeSynthesizer struct {
	fail error
}

const refusalAnswer = "The supplied context does not contain an answer to this query."

func (f *fakeSynthesizer) Answer(ctx context.Context, query string, contexts []ai.Candidate) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	for _, c := range contexts {
		if strings.Contains(strings.ToLower(c.Text), strings.ToLower(query)) {
			return fmt.Sprintf("The document %s mentions %q.", c.DocumentName, query), nil
		}
	}
	return refusalAnswer, nil
}

func (f *fakeSynthesizer) ProviderName() string { return "fake-llm" }
