package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jaehyun/stocklens/internal/domain"
	"github.com/jaehyun/stocklens/internal/service"
)

// ConfirmHandler handles reconciliation of confirmed matches.
type ConfirmHandler struct {
	reconcileService *service.ReconcileService
}

// NewConfirmHandler creates a new confirm handler.
// Parameters:
//   - reconcileService: reconciliation service instance.
// Returns:
//   - *ConfirmHandler: initialized handler.
func NewConfirmHandler(reconcileService *service.ReconcileService) *ConfirmHandler {
	return &ConfirmHandler{
		reconcileService: reconcileService,
	}
}

type confirmRequest struct {
	StoreID string                  `json:"store_id" binding:"required"`
	Items   []service.ConfirmedItem `json:"items" binding:"required"`
}

// Confirm handles POST /api/v1/receipts/:seq/confirm.
// Reconciles the confirmed items of one raw receipt: records permanent match
// rows and adjusts inventory stock with audit log entries. Returns on the first
// failing item; items reconciled before it stay committed.
func (h *ConfirmHandler) Confirm(c *gin.Context) {
	seq, err := strconv.ParseUint(c.Param("seq"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receipt seq"})
		return
	}

	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	matches, err := h.reconcileService.Confirm(c.Request.Context(), req.StoreID, uint(seq), req.Items)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "reconciled": len(matches)})
		case errors.Is(err, domain.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reconciled": len(matches)})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "reconciled": len(matches)})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reconciled": len(matches),
		"matches":    matches,
	})
}
