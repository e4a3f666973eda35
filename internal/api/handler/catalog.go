package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jaehyun/stocklens/internal/repository"
)

// CatalogHandler serves catalog and audit reads backing the manual-match UI.
type CatalogHandler struct {
	catalog   *repository.CatalogRepository
	inventory *repository.InventoryRepository
}

// NewCatalogHandler creates a new catalog handler.
// Parameters:
//   - catalog: catalog repository instance.
//   - inventory: inventory repository instance.
// Returns:
//   - *CatalogHandler: initialized handler.
func NewCatalogHandler(catalog *repository.CatalogRepository, inventory *repository.InventoryRepository) *CatalogHandler {
	return &CatalogHandler{
		catalog:   catalog,
		inventory: inventory,
	}
}

// ListProducts handles GET /api/v1/stores/:storeId/products.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	storeID := c.Param("storeId")

	products, err := h.catalog.ListProductsForStore(c.Request.Context(), storeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(products),
		"products": products,
	})
}

// ListInventoryLogs handles GET /api/v1/inventories/:id/logs.
func (h *CatalogHandler) ListInventoryLogs(c *gin.Context) {
	id := c.Param("id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logs, err := h.inventory.ListLogs(c.Request.Context(), id, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list inventory logs: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(logs),
		"logs":  logs,
	})
}
