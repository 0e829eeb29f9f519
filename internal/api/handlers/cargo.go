package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mtaasisi/POS-sub062/internal/service"
)

// HandleAddCargo handles POST /v1/shipments/:id/cargo
func HandleAddCargo(svc *service.CargoService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		var req service.AddCargoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		items, err := svc.AddCargoItems(c.Request.Context(), id, req)
		if err != nil {
			respondError(c, logger, "add cargo items", err)
			return
		}

		ids := make([]string, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ID.String())
		}
		c.JSON(http.StatusCreated, gin.H{"shipment_id": id.String(), "item_ids": ids})
	}
}

// HandleListCargo handles GET /v1/shipments/:id/cargo
func HandleListCargo(svc *service.CargoService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		items, err := svc.ListCargo(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, "list cargo", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"cargo": toCargoResponses(items)})
	}
}
