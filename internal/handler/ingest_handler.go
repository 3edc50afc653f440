package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/semsearch/internal/pkg/errcode"
	"github.com/xxxsen/semsearch/internal/pkg/response"
	"github.com/xxxsen/semsearch/internal/service"
)

type IngestHandler struct {
	ingest *service.IngestService
}

func NewIngestHandler(ingest *service.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

type ingestTextRequest struct {
	Text         string `json:"text" binding:"required"`
	DocumentName string `json:"document_name" binding:"required"`
}

func (h *IngestHandler) UploadText(c *gin.Context) {
	var req ingestTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.ingest.IngestText(c.Request.Context(), req.Text, req.DocumentName)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *IngestHandler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "file is required")
		return
	}
	documentName := c.PostForm("document_name")
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "cannot open upload")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "cannot read upload")
		return
	}
	result, err := h.ingest.IngestFile(c.Request.Context(), fileHeader.Filename, data, documentName)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *IngestHandler) ListChunks(c *gin.Context) {
	documentID := c.Param("id")
	if documentID == "" {
		response.Error(c, errcode.ErrInvalid, "document id is required")
		return
	}
	chunks, err := h.ingest.ListDocumentChunks(c.Request.Context(), documentID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"chunks": chunks})
}
