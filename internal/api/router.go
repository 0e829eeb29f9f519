package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mtaasisi/POS-sub062/internal/api/handlers"
	"github.com/Mtaasisi/POS-sub062/internal/api/middleware"
	"github.com/Mtaasisi/POS-sub062/internal/auth"
	"github.com/Mtaasisi/POS-sub062/internal/config"
	"github.com/Mtaasisi/POS-sub062/internal/repository"
	"github.com/Mtaasisi/POS-sub062/internal/service"
)

// Dependencies are the collaborators the handlers need
type Dependencies struct {
	Repos     *repository.Repositories
	Shipments *service.ShipmentService
	Cargo     *service.CargoService
	Tokens    *auth.Tokens
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, deps Dependencies, logger *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Shipment Tracking API",
			"endpoints": []string{
				"GET /health",
				"POST /v1/shipments",
				"GET /v1/shipments",
				"GET /v1/shipments/:id",
				"PATCH /v1/shipments/:id",
				"POST /v1/shipments/:id/status",
				"GET /v1/shipments/:id/events",
				"GET /v1/shipments/:id/next-statuses",
				"GET|POST /v1/shipments/:id/cargo",
				"GET /v1/purchase-orders/:id/shipment",
				"GET /v1/products/:id/shipments",
				"GET /v1/exports/shipments",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes (require authentication)
	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(deps.Tokens, deps.Repos.APIClient, logger))
	{
		shipments := v1.Group("/shipments")
		{
			shipments.POST("", handlers.HandleCreateShipment(deps.Shipments, logger))
			shipments.GET("", handlers.HandleListShipments(deps.Shipments, logger))
			shipments.GET("/:id", handlers.HandleGetShipment(deps.Shipments, logger))
			shipments.PATCH("/:id", handlers.HandleUpdateShipment(deps.Shipments, logger))
			shipments.POST("/:id/status",
				middleware.IdempotencyMiddleware(deps.Repos.IdempotencyKey, logger),
				handlers.HandleAdvanceStatus(deps.Shipments, logger))
			shipments.GET("/:id/events", handlers.HandleListEvents(deps.Shipments, logger))
			shipments.GET("/:id/next-statuses", handlers.HandleNextStatuses(deps.Shipments, logger))
			shipments.GET("/:id/cargo", handlers.HandleListCargo(deps.Cargo, logger))
			shipments.POST("/:id/cargo", handlers.HandleAddCargo(deps.Cargo, logger))
		}

		v1.GET("/purchase-orders/:id/shipment", handlers.HandleGetPurchaseOrderShipment(deps.Shipments, logger))
		v1.GET("/products/:id/shipments", handlers.HandleListProductShipments(deps.Shipments, logger))
		v1.GET("/exports/shipments", handlers.HandleExportShipments(deps.Shipments, logger))
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if actor, ok := middleware.GetActorFromContext(c); ok {
			fields = append(fields, zap.String("actor_id", actor.ID.String()))
		}
		logger.Info("HTTP request", fields...)
	}
}
