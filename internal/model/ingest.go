package model

// IngestResult summarizes one ingestion call. ChunkIDs are in chunk order.
type IngestResult struct {
	DocumentID    string  `json:"document_id"`
	DocumentName  string  `json:"document_name"`
	ChunksCreated int     `json:"chunks_created"`
	ChunkIDs      []int64 `json:"chunk_ids"`
}

// AnswerResult bundles a grounded answer with the chunks actually fed to
// the synthesizer.
type AnswerResult struct {
	Answer       string        `json:"answer"`
	Chunks       []ScoredChunk `json:"chunks"`
	ProviderUsed string        `json:"provider_used"`
}
