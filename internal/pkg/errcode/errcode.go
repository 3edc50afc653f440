package errcode

const (
	ErrUnknown = 20000000 + iota
	ErrInvalid
	ErrNotFound
	ErrTooMany
	ErrInternal
	ErrEmptyDocument
	ErrUnsupportedInput
	ErrDocumentTooLarge
	ErrNoResults
	ErrEmbeddingBackend
	ErrStorageBackend
	ErrRerankBackend
	ErrSynthesisBackend
	ErrConfiguration
)
