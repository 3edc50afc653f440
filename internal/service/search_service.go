package service

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/semsearch/internal/ai"
	"github.com/xxxsen/semsearch/internal/config"
	"github.com/xxxsen/semsearch/internal/model"
	apperrors "github.com/xxxsen/semsearch/internal/pkg/errors"
)

// SearchService runs the query pipeline: embed the query, fetch nearest
// chunks, optionally rerank, optionally synthesize a grounded answer.
type SearchService struct {
	store       ChunkStore
	embedder    ai.IEmbedder
	reranker    ai.IReranker
	synthesizer ai.ISynthesizer
	cfg         config.SearchConfig
}

// NewSearchService wires the query pipeline. reranker may be nil, which
// disables the rerank stage and the pool widening that feeds it.
func NewSearchService(store ChunkStore, embedder ai.IEmbedder, reranker ai.IReranker, synthesizer ai.ISynthesizer, cfg config.SearchConfig) *SearchService {
	return &SearchService{
		store:       store,
		embedder:    embedder,
		reranker:    reranker,
		synthesizer: synthesizer,
		cfg:         cfg,
	}
}

// Search is the semantic-only variant: ranked (text, distance) pairs,
// ascending by cosine distance.
func (s *SearchService) Search(ctx context.Context, query string, topK int) ([]model.SearchHit, error) {
	if topK <= 0 {
		topK = s.cfg.DefaultTopK
	}
	queryVec, err := s.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, err
	}
	hits, err := s.store.SearchSimilar(ctx, queryVec, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", apperrors.ErrStorage, err)
	}
	if len(hits) == 0 {
		return nil, apperrors.ErrNoResults
	}
	return hits, nil
}

// SearchWithAnswer fetches a candidate pool, optionally reranks it down to
// topK, and feeds the survivors to the synthesizer. When reranking is
// enabled the first-stage fetch is widened by the configured multiplier:
// the first stage is cheap but approximate in relevance, and a wider pool
// gives the cross-encoder more to correct.
func (s *SearchService) SearchWithAnswer(ctx context.Context, query string, topK int, providerHint string) (*model.AnswerResult, error) {
	if topK <= 0 {
		topK = s.cfg.DefaultTopK
	}
	queryVec, err := s.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, err
	}
	multiplier := 1
	if s.reranker != nil {
		multiplier = s.cfg.RerankPoolMultiplier
		if multiplier < 1 {
			multiplier = 1
		}
	}
	hits, err := s.store.SearchSimilar(ctx, queryVec, topK*multiplier)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", apperrors.ErrStorage, err)
	}
	if len(hits) == 0 {
		return nil, apperrors.ErrNoResults
	}

	var scored []model.ScoredChunk
	if s.reranker != nil {
		candidates := make([]ai.Candidate, 0, len(hits))
		for _, hit := range hits {
			candidates = append(candidates, ai.Candidate{Text: hit.Text, DocumentName: hit.DocumentName})
		}
		scored, err = s.reranker.Rerank(ctx, query, candidates, topK)
		if err != nil {
			return nil, err
		}
	} else {
		if len(hits) > topK {
			hits = hits[:topK]
		}
		scored = make([]model.ScoredChunk, 0, len(hits))
		for _, hit := range hits {
			scored = append(scored, model.ScoredChunk{
				Text:         hit.Text,
				DocumentName: hit.DocumentName,
				Score:        1 - hit.Distance,
			})
		}
	}

	contexts := make([]ai.Candidate, 0, len(scored))
	for _, chunk := range scored {
		contexts = append(contexts, ai.Candidate{Text: chunk.Text, DocumentName: chunk.DocumentName})
	}
	answer, err := s.synthesizer.Answer(ctx, query, contexts)
	if err != nil {
		return nil, err
	}
	provider := providerHint
	if provider == "" {
		provider = s.synthesizer.ProviderName()
	}
	logutil.GetLogger(ctx).Info("answer synthesized",
		zap.String("provider", provider),
		zap.Int("pool", len(hits)),
		zap.Int("chunks_used", len(scored)),
	)
	return &model.AnswerResult{
		Answer:       answer,
		Chunks:       scored,
		ProviderUsed: provider,
	}, nil
}
