package embedcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/semsearch/internal/ai"
)

// WrapLruCacheToEmbedder memoizes per-text embeddings in front of the
// backend. Repeated ingestion of similar documents and repeated queries
// skip the embed call entirely.
func WrapLruCacheToEmbedder(e ai.IEmbedder, size int, ttl time.Duration) ai.IEmbedder {
	if e == nil || size <= 0 || ttl <= 0 {
		return e
	}
	return &lruEmbedder{
		next:  e,
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

type lruEmbedder struct {
	next  ai.IEmbedder
	cache *expirable.LRU[string, []float32]
}

func (l *lruEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vecs, err := l.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (l *lruEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	result := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		if cached, ok := l.cache.Get(l.cacheKey(text)); ok {
			result[i] = cloneEmbedding(cached)
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		logutil.GetLogger(ctx).Debug("embedding cache full hit", zap.Int("texts", len(texts)))
		return result, nil
	}
	vecs, err := l.next.EmbedMany(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, vec := range vecs {
		result[missIdx[j]] = vec
		l.cache.Add(l.cacheKey(missTexts[j]), cloneEmbedding(vec))
	}
	return result, nil
}

func (l *lruEmbedder) ModelName() string {
	return l.next.ModelName()
}

func (l *lruEmbedder) Dimension() int {
	return l.next.Dimension()
}

func (l *lruEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(l.next.ModelName() + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func cloneEmbedding(values []float32) []float32 {
	if len(values) == 0 {
		return nil
	}
	clone := make([]float32, len(values))
	copy(clone, values)
	return clone
}
