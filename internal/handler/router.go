package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/semsearch/internal/pkg/response"
)

type RouterDeps struct {
	Ingest *IngestHandler
	Search *SearchHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/healthz", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})

	api.POST("/ingest/text", deps.Ingest.UploadText)
	api.POST("/ingest/file", deps.Ingest.UploadFile)
	api.GET("/documents/:id/chunks", deps.Ingest.ListChunks)

	api.POST("/search/semantic", deps.Search.SemanticOnly)
	api.POST("/search/answer", deps.Search.WithAnswer)
}
