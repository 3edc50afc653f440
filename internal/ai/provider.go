package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrUnavailable = errors.New("ai provider unavailable")

type IEmbedProvider interface {
	Name() string
	// EmbedBatch returns one vector per input text, preserving input order.
	EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error)
}

type IGenProvider interface {
	Name() string
	Generate(ctx context.Context, model string, prompt string) (string, error)
}

type IRerankProvider interface {
	Name() string
	// Rerank scores every text against the query, one score per text in
	// input order.
	Rerank(ctx context.Context, model string, query string, texts []string) ([]float64, error)
}

type EmbedFactory func(args interface{}) (IEmbedProvider, error)
type GenFactory func(args interface{}) (IGenProvider, error)
type RerankFactory func(args interface{}) (IRerankProvider, error)

var (
	embedRegistry  = map[string]EmbedFactory{}
	genRegistry    = map[string]GenFactory{}
	rerankRegistry = map[string]RerankFactory{}
)

func RegisterEmbed(name string, factory EmbedFactory) {
	key := registryKey(name)
	if key == "" || factory == nil {
		return
	}
	embedRegistry[key] = factory
}

func Register(name string, factory GenFactory) {
	key := registryKey(name)
	if key == "" || factory == nil {
		return
	}
	genRegistry[key] = factory
}

func RegisterRerank(name string, factory RerankFactory) {
	key := registryKey(name)
	if key == "" || factory == nil {
		return
	}
	rerankRegistry[key] = factory
}

func NewEmbedProvider(name string, args interface{}) (IEmbedProvider, error) {
	key := registryKey(name)
	if key == "" {
		return nil, fmt.Errorf("ai.embed.provider is required")
	}
	factory := embedRegistry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported embed provider: %s", name)
	}
	return factory(args)
}

func NewGenProvider(name string, args interface{}) (IGenProvider, error) {
	key := registryKey(name)
	if key == "" {
		return nil, fmt.Errorf("ai.generate.provider is required")
	}
	factory := genRegistry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported generate provider: %s", name)
	}
	return factory(args)
}

func NewRerankProvider(name string, args interface{}) (IRerankProvider, error) {
	key := registryKey(name)
	if key == "" {
		return nil, fmt.Errorf("ai.rerank.provider is required")
	}
	factory := rerankRegistry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported rerank provider: %s", name)
	}
	return factory(args)
}

func registryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("ai provider config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}
