package ai

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/xxxsen/semsearch/internal/pkg/errors"
)

type IEmbedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
	// EmbedMany returns one vector per input text, order preserved
	// one-to-one. It never reorders or deduplicates.
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
	Dimension() int
}

type Embedder struct {
	provider  IEmbedProvider
	model     string
	dim       int
	batchSize int
	timeout   time.Duration
}

func NewEmbedder(provider IEmbedProvider, model string, dim int, batchSize int, timeout time.Duration) *Embedder {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &Embedder{
		provider:  provider,
		model:     model,
		dim:       dim,
		batchSize: batchSize,
		timeout:   timeout,
	}
}

func (e *Embedder) ModelName() string {
	return e.model
}

func (e *Embedder) Dimension() int {
	return e.dim
}

func (e *Embedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *Embedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	result := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		result = append(result, vecs...)
	}
	for i, vec := range result {
		if len(vec) != e.dim {
			return nil, fmt.Errorf("%w: embedding %d has dimension %d, expected %d",
				apperrors.ErrConfiguration, i, len(vec), e.dim)
		}
	}
	return result, nil
}

func (e *Embedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	vecs, err := e.provider.EmbedBatch(ctx, e.model, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrEmbeddingBackend, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts",
			apperrors.ErrEmbeddingBackend, len(vecs), len(texts))
	}
	return vecs, nil
}
