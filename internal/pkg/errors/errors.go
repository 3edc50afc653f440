package errors

import "errors"

// Pipeline error kinds. Validation errors are detected before any backend
// call is made; backend failures wrap one of the stage sentinels so callers
// can tell which stage failed and decide on retry.
var (
	ErrEmptyDocument    = errors.New("empty document")
	ErrUnsupportedInput = errors.New("unsupported input")
	ErrNoResults        = errors.New("no results found")
	ErrEmbeddingBackend = errors.New("embedding backend failure")
	ErrStorage          = errors.New("storage failure")
	ErrRerankBackend    = errors.New("rerank backend failure")
	ErrSynthesisBackend = errors.New("synthesis backend failure")
	ErrConfiguration    = errors.New("configuration error")
	ErrInvalid          = errors.New("invalid")
	ErrTooMany          = errors.New("too many requests")
	ErrDocumentTooLarge = errors.New("document too large")
)

func IsNoResults(err error) bool {
	return errors.Is(err, ErrNoResults)
}

func IsEmptyDocument(err error) bool {
	return errors.Is(err, ErrEmptyDocument)
}

func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
