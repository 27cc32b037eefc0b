package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/graphrecall"
	"github.com/soundprediction/graphrecall/pkg/server/dto"
)

// EmbedHandler exposes the embedding provider over HTTP
type EmbedHandler struct {
	client graphrecall.EmbeddingService
}

// NewEmbedHandler creates a new embed handler
func NewEmbedHandler(client graphrecall.EmbeddingService) *EmbedHandler {
	return &EmbedHandler{
		client: client,
	}
}

// Embed handles POST /embed
func (h *EmbedHandler) Embed(c *gin.Context) {
	var req dto.EmbedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	vectors, err := h.client.EmbedBatch(c.Request.Context(), req.Texts)
	if err != nil {
		respondError(c, err)
		return
	}

	dimension := 0
	if len(vectors) > 0 {
		dimension = len(vectors[0])
	}

	c.JSON(http.StatusOK, dto.EmbedResponse{
		Vectors:   vectors,
		Dimension: dimension,
	})
}
