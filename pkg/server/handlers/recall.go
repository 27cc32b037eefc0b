package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/graphrecall"
	"github.com/soundprediction/graphrecall/pkg/server/dto"
)

// RecallHandler handles recall query requests
type RecallHandler struct {
	client graphrecall.Recaller
}

// NewRecallHandler creates a new recall handler
func NewRecallHandler(client graphrecall.Recaller) *RecallHandler {
	return &RecallHandler{
		client: client,
	}
}

// Similar handles POST /recall/similar
func (h *RecallHandler) Similar(c *gin.Context) {
	var req dto.SimilarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	results, err := h.client.Similar(c.Request.Context(), req.Text, req.TopK, req.Filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRecallResponse(results))
}

// Suggestions handles POST /recall/suggestions
func (h *RecallHandler) Suggestions(c *gin.Context) {
	var req dto.SuggestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	results, err := h.client.ReviewSuggestions(c.Request.Context(), req.Text, req.Department, req.TopK)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRecallResponse(results))
}

// Risks handles POST /recall/risks
func (h *RecallHandler) Risks(c *gin.Context) {
	var req dto.RisksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	results, err := h.client.IdentifyRisks(c.Request.Context(), req.Text, req.TopK)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRecallResponse(results))
}

// Knowledge handles POST /recall/knowledge
func (h *RecallHandler) Knowledge(c *gin.Context) {
	var req dto.KnowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	results, err := h.client.KnowledgeBase(c.Request.Context(), req.Text, req.Label, req.TopK, req.Filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRecallResponse(results))
}

// Hybrid handles POST /recall/hybrid
func (h *RecallHandler) Hybrid(c *gin.Context) {
	var req dto.HybridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	results, err := h.client.Hybrid(c.Request.Context(), req.Text, req.Filters, req.TopK)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRecallResponse(results))
}

// Context handles GET /documents/:id/context
func (h *RecallHandler) Context(c *gin.Context) {
	documentID := c.Param("id")
	if documentID == "" {
		badRequest(c, dto.ErrEmptyText)
		return
	}

	docContext, err := h.client.Context(c.Request.Context(), documentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Result{Success: true, Data: docContext})
}
