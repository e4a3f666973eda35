package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jaehyun/stocklens/internal/api/handler"
	"github.com/jaehyun/stocklens/internal/api/middleware"
	"github.com/jaehyun/stocklens/internal/repository"
	"github.com/jaehyun/stocklens/internal/service"
)

// RouterConfig carries router-level settings.
type RouterConfig struct {
	Mode string
	CORS middleware.CORSConfig
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	scanService *service.ScanService,
	reconcileService *service.ReconcileService,
	catalogRepo *repository.CatalogRepository,
	inventoryRepo *repository.InventoryRepository,
	cfg *RouterConfig,
) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS))

	healthHandler := handler.NewHealthHandler()
	scanHandler := handler.NewScanHandler(scanService)
	confirmHandler := handler.NewConfirmHandler(reconcileService)
	catalogHandler := handler.NewCatalogHandler(catalogRepo, inventoryRepo)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		// Scan submission and status
		v1.POST("/stores/:storeId/receipts/scan", scanHandler.Scan)
		v1.POST("/stores/:storeId/receipts/scan/batch", scanHandler.ScanBatch)
		v1.GET("/receipts/jobs/:jobId", scanHandler.Status)

		// Reconciliation
		v1.POST("/receipts/:seq/confirm", confirmHandler.Confirm)

		// Catalog and audit reads
		v1.GET("/stores/:storeId/products", catalogHandler.ListProducts)
		v1.GET("/inventories/:id/logs", catalogHandler.ListInventoryLogs)
	}

	return r
}
