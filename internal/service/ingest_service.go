package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/semsearch/internal/ai"
	"github.com/xxxsen/semsearch/internal/config"
	"github.com/xxxsen/semsearch/internal/extract"
	"github.com/xxxsen/semsearch/internal/filestore"
	"github.com/xxxsen/semsearch/internal/model"
	apperrors "github.com/xxxsen/semsearch/internal/pkg/errors"
	"github.com/xxxsen/semsearch/internal/pkg/timeutil"
	"github.com/xxxsen/semsearch/internal/textproc"
)

// IngestService runs the ingestion pipeline: normalize+chunk, batch-embed,
// store. Chunking failures are reported before any backend work happens;
// a failed batch embed inserts nothing; inserts for one document share a
// transaction, so a document is either fully searchable or absent.
type IngestService struct {
	store          ChunkStore
	embedder       ai.IEmbedder
	files          filestore.Store
	cfg            config.SearchConfig
	maxUploadBytes int64
}

func NewIngestService(store ChunkStore, embedder ai.IEmbedder, files filestore.Store, cfg config.SearchConfig, maxUploadBytes int64) *IngestService {
	return &IngestService{
		store:          store,
		embedder:       embedder,
		files:          files,
		cfg:            cfg,
		maxUploadBytes: maxUploadBytes,
	}
}

func (s *IngestService) IngestText(ctx context.Context, text string, documentName string) (*model.IngestResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("document_name", documentName))
	chunks := textproc.Chunk(text, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if len(chunks) == 0 {
		return nil, apperrors.ErrEmptyDocument
	}

	// Index creation is checked before inserting so the build sees the
	// corpus as it was at the threshold crossing; before that point search
	// runs as an exact scan with identical results.
	created, err := s.store.EnsureANNIndex(ctx, s.cfg.IndexThreshold)
	if err != nil {
		return nil, fmt.Errorf("%w: ensure index: %v", apperrors.ErrStorage, err)
	}
	if created {
		logger.Info("ann index created", zap.Int("threshold", s.cfg.IndexThreshold))
	}

	embeddings, err := s.embedder.EmbedMany(ctx, chunks)
	if err != nil {
		return nil, err
	}

	documentID := uuid.NewString()
	now := timeutil.NowUnix()
	rows := make([]*model.DocumentChunk, 0, len(chunks))
	for idx, chunk := range chunks {
		rows = append(rows, &model.DocumentChunk{
			DocumentID:   documentID,
			DocumentName: documentName,
			ChunkIndex:   idx,
			Text:         chunk,
			Embedding:    embeddings[idx],
			CreatedAt:    now,
		})
	}
	ids, err := s.store.InsertDocumentChunks(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("%w: insert chunks: %v", apperrors.ErrStorage, err)
	}
	logger.Info("document ingested",
		zap.String("document_id", documentID),
		zap.Int("chunks", len(chunks)),
	)
	return &model.IngestResult{
		DocumentID:    documentID,
		DocumentName:  documentName,
		ChunksCreated: len(chunks),
		ChunkIDs:      ids,
	}, nil
}

// IngestFile extracts plain text from an uploaded file and runs the text
// pipeline. The raw bytes are archived to the file store when one is
// configured; an archive failure does not undo a successful ingestion.
func (s *IngestService) IngestFile(ctx context.Context, filename string, data []byte, documentName string) (*model.IngestResult, error) {
	if documentName == "" {
		documentName = filename
	}
	if s.maxUploadBytes > 0 && int64(len(data)) > s.maxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes, max %d", apperrors.ErrDocumentTooLarge, len(data), s.maxUploadBytes)
	}
	text, err := extract.Text(filename, data)
	if err != nil {
		return nil, err
	}
	result, err := s.IngestText(ctx, text, documentName)
	if err != nil {
		return nil, err
	}
	if s.files != nil {
		key := result.DocumentID + filepath.Ext(filename)
		if err := s.files.Save(ctx, key, bytes.NewReader(data), int64(len(data))); err != nil {
			logutil.GetLogger(ctx).Warn("archive raw document failed",
				zap.String("document_id", result.DocumentID),
				zap.Error(err),
			)
		}
	}
	return result, nil
}

// ListDocumentChunks exposes a document's stored chunk sequence for
// provenance inspection.
func (s *IngestService) ListDocumentChunks(ctx context.Context, documentID string) ([]model.DocumentChunk, error) {
	chunks, err := s.store.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w: list chunks: %v", apperrors.ErrStorage, err)
	}
	return chunks, nil
}
