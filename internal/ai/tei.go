package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// tei talks to a HuggingFace text-embeddings-inference server. The server
// hosts a single model (e.g. all-MiniLM-L6-v2 for embeddings or a
// cross-encoder for reranking), so the model argument is not sent on the
// wire; base_url selects the deployment.
type teiConfig struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
}

type teiEmbedProvider struct {
	baseURL string
	apiKey  string
}

type teiEmbedRequest struct {
	Inputs   []string `json:"inputs"`
	Truncate bool     `json:"truncate"`
}

func (p *teiEmbedProvider) Name() string {
	return "tei"
}

func (p *teiEmbedProvider) EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error) {
	_ = model
	if p.baseURL == "" {
		return nil, ErrUnavailable
	}
	endpoint := strings.TrimRight(p.baseURL, "/") + "/embed"
	reqBody := teiEmbedRequest{Inputs: texts, Truncate: true}
	var out [][]float32
	if err := teiPost(ctx, endpoint, p.apiKey, reqBody, &out); err != nil {
		return nil, err
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(out))
	}
	return out, nil
}

type teiRerankProvider struct {
	baseURL string
	apiKey  string
}

type teiRerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type teiRerankItem struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

func (p *teiRerankProvider) Name() string {
	return "tei"
}

func (p *teiRerankProvider) Rerank(ctx context.Context, model string, query string, texts []string) ([]float64, error) {
	_ = model
	if p.baseURL == "" {
		return nil, ErrUnavailable
	}
	if len(texts) == 0 {
		return nil, nil
	}
	endpoint := strings.TrimRight(p.baseURL, "/") + "/rerank"
	reqBody := teiRerankRequest{Query: query, Texts: texts}
	var out []teiRerankItem
	if err := teiPost(ctx, endpoint, p.apiKey, reqBody, &out); err != nil {
		return nil, err
	}
	scores := make([]float64, len(texts))
	for _, item := range out {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, fmt.Errorf("rerank index %d out of range", item.Index)
		}
		scores[item.Index] = item.Score
	}
	return scores, nil
}

func teiPost(ctx context.Context, endpoint string, apiKey string, reqBody interface{}, out interface{}) error {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tei request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func createTEIEmbedFactory(args interface{}) (IEmbedProvider, error) {
	cfg := &teiConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("tei base_url is required")
	}
	return &teiEmbedProvider{baseURL: strings.TrimSpace(cfg.BaseURL), apiKey: strings.TrimSpace(cfg.APIKey)}, nil
}

func createTEIRerankFactory(args interface{}) (IRerankProvider, error) {
	cfg := &teiConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("tei base_url is required")
	}
	return &teiRerankProvider{baseURL: strings.TrimSpace(cfg.BaseURL), apiKey: strings.TrimSpace(cfg.APIKey)}, nil
}

func init() {
	RegisterEmbed("tei", createTEIEmbedFactory)
	RegisterRerank("tei", createTEIRerankFactory)
}
