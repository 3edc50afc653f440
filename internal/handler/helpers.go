package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/semsearch/internal/pkg/errcode"
	apperrors "github.com/xxxsen/semsearch/internal/pkg/errors"
	"github.com/xxxsen/semsearch/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, apperrors.ErrEmptyDocument):
		response.Error(c, errcode.ErrEmptyDocument, "empty document")
	case errors.Is(err, apperrors.ErrUnsupportedInput):
		response.Error(c, errcode.ErrUnsupportedInput, "unsupported input")
	case errors.Is(err, apperrors.ErrDocumentTooLarge):
		response.Error(c, errcode.ErrDocumentTooLarge, "document too large")
	case errors.Is(err, apperrors.ErrNoResults):
		response.Error(c, errcode.ErrNoResults, "no documents found")
	case errors.Is(err, apperrors.ErrConfiguration):
		response.Error(c, errcode.ErrConfiguration, "configuration error")
	case errors.Is(err, apperrors.ErrEmbeddingBackend):
		response.Error(c, errcode.ErrEmbeddingBackend, "embedding backend failure")
	case errors.Is(err, apperrors.ErrStorage):
		response.Error(c, errcode.ErrStorageBackend, "storage failure")
	case errors.Is(err, apperrors.ErrRerankBackend):
		response.Error(c, errcode.ErrRerankBackend, "rerank backend failure")
	case errors.Is(err, apperrors.ErrSynthesisBackend):
		response.Error(c, errcode.ErrSynthesisBackend, "synthesis backend failure")
	case errors.Is(err, apperrors.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
