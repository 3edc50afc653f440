package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/semsearch/internal/model"
	apperrors "github.com/xxxsen/semsearch/internal/pkg/errors"
	"github.com/xxxsen/semsearch/internal/service"
)

func seedStore(t *testing.T, store *fakeStore, texts ...string) {
	t.Helper()
	chunks := make([]*model.DocumentChunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, &model.DocumentChunk{
			DocumentID:   "seed-doc",
			DocumentName: fmt.Sprintf("d%d", i+1),
			ChunkIndex:   i,
			Text:         text,
			Embedding:    embedText(text),
		})
	}
	_, err := store.InsertDocumentChunks(context.Background(), chunks)
	require.NoError(t, err)
}

func TestSearchEmptyCorpus(t *testing.T) {
	svc := service.NewSearchService(&fakeStore{}, &fakeEmbedder{}, nil, &fakeSynthesizer{}, testSearchConfig())
	_, err := svc.Search(context.Background(), "anything", 5)
	require.ErrorIs(t, err, apperrors.ErrNoResults)
}

func TestSearchExactMatchRanksFirstAtZeroDistance(t *testing.T) {
	store := &fakeStore{}
	seedStore(t, store, "cat food", "space travel", "garden tools")
	svc := service.NewSearchService(store, &fakeEmbedder{}, nil, &fakeSynthesizer{}, testSearchConfig())

	hits, err := svc.Search(context.Background(), "space travel", 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	require.Equal(t, "space travel", hits[0].Text)
	require.InDelta(t, 0, hits[0].Distance, 1e-6)
	for i := 1; i < len(hits); i++ {
		require.GreaterOrEqual(t, hits[i].Distance, hits[i-1].Distance)
	}
}

func TestSearchFewerRowsThanTopK(t *testing.T) {
	store := &fakeStore{}
	seedStore(t, store, "only chunk")
	svc := service.NewSearchService(store, &fakeEmbedder{}, nil, &fakeSynthesizer{}, testSearchConfig())

	hits, err := svc.Search(context.Background(), "query", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestSearchDefaultTopK(t *testing.T) {
	store := &fakeStore{}
	seedStore(t, store, "a", "b", "c")
	svc := service.NewSearchService(store, &fakeEmbedder{}, nil, &fakeSynthesizer{}, testSearchConfig())

	_, err := svc.Search(context.Background(), "query", 0)
	require.NoError(t, err)
	require.Equal(t, []int{5}, store.searchLimits)
}

func TestSearchWithAnswerWidensPoolWhenReranking(t *testing.T) {
	store := &fakeStore{}
	seedStore(t, store, "cat food", "space travel")
	svc := service.NewSearchService(store, &fakeEmbedder{}, &fakeReranker{}, &fakeSynthesizer{}, testSearchConfig())

	_, err := svc.SearchWithAnswer(context.Background(), "cat food", 2, "")
	require.NoError(t, err)
	require.Equal(t, []int{8}, store.searchLimits)
}

func TestSearchWithAnswerNoRerankerKeepsPoolNarrow(t *testing.T) {
	store := &fakeStore{}
	seedStore(t, store, "cat food", "space travel")
	svc := service.NewSearchService(store, &fakeEmbedder{}, nil, &fakeSynthesizer{}, testSearchConfig())

	result, err := svc.SearchWithAnswer(context.Background(), "cat food", 2, "")
	require.NoError(t, err)
	require.Equal(t, []int{2}, store.searchLimits)
	// relevance without reranking is defined as 1 - cosine distance
	for _, chunk := range result.Chunks {
		distance := cosineDistance(embedText("cat food"), embedText(chunk.Text))
		require.InDelta(t, 1, chunk.Score+distance, 1e-6)
	}
}

func TestSearchWithAnswerRerankedChunksFeedSynthesis(t *testing.T) {
	store := &fakeStore{}
	seedStore(t, store, "space travel", "cat food")
	svc := service.NewSearchService(store, &fakeEmbedder{}, &fakeReranker{}, &fakeSynthesizer{}, testSearchConfig())

	result, err := svc.SearchWithAnswer(context.Background(), "cat food", 1, "")
	require.NoError(t, err)
	require.Len(t, result.Chunks, 1)
	require.Equal(t, "cat food", result.Chunks[0].Text)
	require.Contains(t, result.Answer, "cat food")
}

func TestSearchWithAnswerGroundedRefusal(t *testing.T) {
	store := &fakeStore{}
	seedStore(t, store, "quarterly revenue figures", "office seating chart")
	svc := service.NewSearchService(store, &fakeEmbedder{}, nil, &fakeSynthesizer{}, testSearchConfig())

	result, err := svc.SearchWithAnswer(context.Background(), "submarine propulsion", 2, "")
	require.NoError(t, err)
	require.Equal(t, refusalAnswer, result.Answer)
}

func TestSearchWithAnswerProviderEcho(t *testing.T) {
	store := &fakeStore{}
	seedStore(t, store, "cat food")
	svc := service.NewSearchService(store, &fakeEmbedder{}, nil, &fakeSynthesizer{}, testSearchConfig())

	result, err := svc.SearchWithAnswer(context.Background(), "cat food", 1, "anthropic")
	require.NoError(t, err)
	require.Equal(t, "anthropic", result.ProviderUsed)

	result, err = svc.SearchWithAnswer(context.Background(), "cat food", 1, "")
	require.NoError(t, err)
	require.Equal(t, "fake-llm", result.ProviderUsed)
}

func TestSearchWithAnswerEmptyCorpus(t *testing.T) {
	svc := service.NewSearchService(&fakeStore{}, &fakeEmbedder{}, &fakeReranker{}, &fakeSynthesizer{}, testSearchConfig())
	_, err := svc.SearchWithAnswer(context.Background(), "anything", 3, "")
	require.ErrorIs(t, err, apperrors.ErrNoResults)
}

func TestSearchWithAnswerSynthesisFailure(t *testing.T) {
	store := &fakeStore{}
	seedStore(t, store, "cat food")
	svc := service.NewSearchService(store, &fakeEmbedder{}, nil, &fakeSynthesizer{fail: apperrors.ErrSynthesisBackend}, testSearchConfig())
	_, err := svc.SearchWithAnswer(context.Background(), "cat food", 1, "")
	require.ErrorIs(t, err, apperrors.ErrSynthesisBackend)
}
