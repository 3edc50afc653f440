package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/xxxsen/semsearch/internal/pkg/errors"
)

type ISynthesizer interface {
	Answer(ctx context.Context, query string, contexts []Candidate) (string, error)
	ProviderName() string
}

// Synthesizer turns a query plus ranked context chunks into a grounded
// natural-language answer. The prompt forbids answering outside the
// supplied context and requires an explicit statement when the context
// holds no answer.
type Synthesizer struct {
	provider IGenProvider
	model    string
	timeout  time.Duration
}

func NewSynthesizer(provider IGenProvider, model string, timeout time.Duration) *Synthesizer {
	return &Synthesizer{provider: provider, model: model, timeout: timeout}
}

func (s *Synthesizer) ProviderName() string {
	return s.provider.Name()
}

func (s *Synthesizer) Answer(ctx context.Context, query string, contexts []Candidate) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	prompt := buildAnswerPrompt(query, contexts)
	answer, err := s.provider.Generate(ctx, s.model, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrSynthesisBackend, err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("%w: empty answer", apperrors.ErrSynthesisBackend)
	}
	return answer, nil
}

func buildAnswerPrompt(query string, contexts []Candidate) string {
	blocks := make([]string, 0, len(contexts))
	for _, c := range contexts {
		blocks = append(blocks, fmt.Sprintf("Document Name: %s\nText: %q", c.DocumentName, c.Text))
	}
	context := strings.Join(blocks, "\n\n---\n\n")
	return fmt.Sprintf(`The user is querying for something in a list of documents.
Tell the user where they can find what they are looking for in the context documents, if it exists.
Provide both the document name and a short quote that answers their query.
For instance, if the user queries 'senior python dev' and the context indicates that document 'JohnSmithResume01' has '8yrs python experience', tell the user that the document JohnSmithResume01 lists '8yrs python experience'.
Only use information from the context.
If the answer is not in the context, say so.

Context Documents:
%s

Query: %s

Answer: `, context, query)
}
