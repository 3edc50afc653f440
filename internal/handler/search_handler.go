package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/semsearch/internal/pkg/errcode"
	"github.com/xxxsen/semsearch/internal/pkg/response"
	"github.com/xxxsen/semsearch/internal/service"
)

type SearchHandler struct {
	search *service.SearchService
}

func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k"`
}

type searchAnswerRequest struct {
	Query    string `json:"query" binding:"required"`
	TopK     int    `json:"top_k"`
	Provider string `json:"provider"`
}

func (h *SearchHandler) SemanticOnly(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	hits, err := h.search.Search(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"chunks": hits})
}

func (h *SearchHandler) WithAnswer(c *gin.Context) {
	var req searchAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.search.SearchWithAnswer(c.Request.Context(), req.Query, req.TopK, req.Provider)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
