package model

// DocumentChunk is the atomic retrievable unit: one bounded, overlapping
// slice of a document's normalized text plus its embedding.
type DocumentChunk struct {
	ID           int64     `json:"id"`
	DocumentID   string    `json:"document_id"`
	DocumentName string    `json:"document_name"`
	ChunkIndex   int       `json:"chunk_index"`
	Text         string    `json:"text"`
	Embedding    []float32 `json:"embedding"`
	CreatedAt    int64     `json:"created_at"`
}

// SearchHit is one first-stage nearest-neighbor result, ordered by
// ascending cosine distance.
type SearchHit struct {
	Text         string  `json:"text"`
	Distance     float64 `json:"distance"`
	DocumentName string  `json:"document_name"`
}

// ScoredChunk is a chunk after relevance scoring, ordered by descending
// score.
type ScoredChunk struct {
	Text         string  `json:"text"`
	DocumentName string  `json:"document_name"`
	Score        float64 `json:"score"`
}
