package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/graphrecall"
	"github.com/soundprediction/graphrecall/pkg/server/dto"
)

// IndexHandler handles vector index administration requests
type IndexHandler struct {
	client graphrecall.IndexAdmin
}

// NewIndexHandler creates a new index handler
func NewIndexHandler(client graphrecall.IndexAdmin) *IndexHandler {
	return &IndexHandler{
		client: client,
	}
}

// Create handles POST /indexes
func (h *IndexHandler) Create(c *gin.Context) {
	var req dto.CreateIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.client.CreateIndex(c.Request.Context(), req.Descriptor()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.Result{Success: true})
}

// List handles GET /indexes
func (h *IndexHandler) List(c *gin.Context) {
	indexes, err := h.client.ListIndexes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListIndexesResponse{
		Indexes: indexes,
		Count:   len(indexes),
	})
}

// Drop handles DELETE /indexes/:name
func (h *IndexHandler) Drop(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		badRequest(c, dto.ErrEmptyIndexName)
		return
	}

	if err := h.client.DropIndex(c.Request.Context(), name); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Result{Success: true})
}

// Backfill handles POST /indexes/backfill
func (h *IndexHandler) Backfill(c *gin.Context) {
	var req dto.BackfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	embedded, err := h.client.Backfill(c.Request.Context(),
		req.Label, req.IDProp, req.TextProp, req.VectorProp, req.BatchSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BackfillResponse{Embedded: embedded})
}
