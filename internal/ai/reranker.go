package ai

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xxxsen/semsearch/internal/model"
	apperrors "github.com/xxxsen/semsearch/internal/pkg/errors"
)

// Candidate is one (text, source) pair fed to reranking or synthesis.
type Candidate struct {
	Text         string
	DocumentName string
}

type IReranker interface {
	Rerank(ctx context.Context, query string, candidates []Candidate, topK int) ([]model.ScoredChunk, error)
}

// Reranker scores each candidate against the query with a cross-encoder
// backend and keeps the topK best. It is stateless across calls.
type Reranker struct {
	provider IRerankProvider
	model    string
	timeout  time.Duration
}

func NewReranker(provider IRerankProvider, model string, timeout time.Duration) *Reranker {
	return &Reranker{provider: provider, model: model, timeout: timeout}
}

func (r *Reranker) Rerank(ctx context.Context, query string, candidates []Candidate, topK int) ([]model.ScoredChunk, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	texts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		texts = append(texts, c.Text)
	}
	scores, err := r.provider.Rerank(ctx, r.model, query, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrRerankBackend, err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("%w: got %d scores for %d candidates",
			apperrors.ErrRerankBackend, len(scores), len(candidates))
	}
	ranked := make([]model.ScoredChunk, 0, len(candidates))
	for i, c := range candidates {
		ranked = append(ranked, model.ScoredChunk{
			Text:         c.Text,
			DocumentName: c.DocumentName,
			Score:        scores[i],
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}
