package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Mtaasisi/POS-sub062/internal/api/middleware"
	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/internal/service"
)

// HandleCreateShipment handles POST /v1/shipments
func HandleCreateShipment(svc *service.ShipmentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreateShipmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		rec, created, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			respondError(c, logger, "create shipment", err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, toShipmentResponse(rec))
	}
}

// HandleListShipments handles GET /v1/shipments
func HandleListShipments(svc *service.ShipmentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := parseShipmentFilter(c)
		if !ok {
			return
		}

		recs, err := svc.List(c.Request.Context(), filter)
		if err != nil {
			respondError(c, logger, "list shipments", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"shipments": toShipmentResponses(recs),
			"limit":     filter.Limit,
			"offset":    filter.Offset,
		})
	}
}

// HandleGetShipment handles GET /v1/shipments/:id
func HandleGetShipment(svc *service.ShipmentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		d, err := svc.GetDetail(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, "get shipment", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"shipment":      toShipmentResponse(d.Record),
			"events":        toEventResponses(d.Events),
			"cargo":         toCargoResponses(d.Cargo),
			"next_statuses": statusList(d.NextStatuses),
		})
	}
}

// HandleUpdateShipment handles PATCH /v1/shipments/:id
func HandleUpdateShipment(svc *service.ShipmentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		var req service.UpdateShipmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		rec, err := svc.Update(c.Request.Context(), id, req)
		if err != nil {
			respondError(c, logger, "update shipment", err)
			return
		}
		c.JSON(http.StatusOK, toShipmentResponse(rec))
	}
}

// HandleAdvanceStatus handles POST /v1/shipments/:id/status
func HandleAdvanceStatus(svc *service.ShipmentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		// Check if this is an idempotent request
		key, requestHash, existing := middleware.GetIdempotencyInfo(c)
		if existing != nil {
			if existing.ShipmentID != id {
				c.JSON(http.StatusConflict, gin.H{"error": "idempotency key was used for another shipment"})
				return
			}
			rec, ev, err := svc.ReplayStatusUpdate(c.Request.Context(), existing)
			if err != nil {
				respondError(c, logger, "replay status update", err)
				return
			}
			logger.Info("Replaying status update", zap.String("shipment_id", id.String()), zap.String("event_id", ev.ID.String()))
			c.JSON(http.StatusOK, gin.H{"shipment": toShipmentResponse(rec), "event": toEventResponse(ev)})
			return
		}

		var req service.StatusUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}
		req.IdempotencyKey = key
		req.RequestHash = requestHash

		rec, ev, err := svc.AdvanceStatus(c.Request.Context(), id, req)
		if err != nil {
			respondError(c, logger, "advance shipment status", err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"shipment": toShipmentResponse(rec), "event": toEventResponse(ev)})
	}
}

// HandleListEvents handles GET /v1/shipments/:id/events
func HandleListEvents(svc *service.ShipmentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		evs, err := svc.History(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, "list shipment events", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": toEventResponses(evs)})
	}
}

// HandleNextStatuses handles GET /v1/shipments/:id/next-statuses
func HandleNextStatuses(svc *service.ShipmentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		next, err := svc.NextStatuses(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, "next statuses", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"next_statuses": statusList(next)})
	}
}

// HandleGetPurchaseOrderShipment handles GET /v1/purchase-orders/:id/shipment.
// An order without a shipment yields a null shipment, not a 404.
func HandleGetPurchaseOrderShipment(svc *service.ShipmentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		rec, err := svc.GetByPurchaseOrder(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, "get purchase order shipment", err)
			return
		}
		if rec == nil {
			c.JSON(http.StatusOK, gin.H{"shipment": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"shipment": toShipmentResponse(rec)})
	}
}

// HandleListProductShipments handles GET /v1/products/:id/shipments
func HandleListProductShipments(svc *service.ShipmentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		recs, err := svc.ListByProduct(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, "list product shipments", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"shipments": toShipmentResponses(recs)})
	}
}

// parseShipmentFilter reads the list query parameters, writing a 400 when one
// is malformed
func parseShipmentFilter(c *gin.Context) (domain.ShipmentFilter, bool) {
	filter := domain.ShipmentFilter{Status: domain.ShipmentStatus(c.Query("status"))}

	limitStr := c.DefaultQuery("limit", "50")
	offsetStr := c.DefaultQuery("offset", "0")

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		offset = 0
	}
	filter.Limit = limit
	filter.Offset = offset

	for _, p := range []struct {
		name string
		dst  **uuid.UUID
	}{
		{"carrier_id", &filter.CarrierID},
		{"agent_id", &filter.AgentID},
	} {
		if v := c.Query(p.name); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + p.name + ": must be a UUID"})
				return filter, false
			}
			*p.dst = &id
		}
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"created_from", &filter.CreatedFrom},
		{"created_to", &filter.CreatedTo},
	} {
		if v := c.Query(p.name); v != "" {
			t, err := parseTimeParam(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + p.name + ": use RFC3339 or YYYY-MM-DD"})
				return filter, false
			}
			*p.dst = &t
		}
	}
	return filter, true
}

func parseTimeParam(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, v)
}

func statusList(statuses []domain.ShipmentStatus) []domain.ShipmentStatus {
	if statuses == nil {
		return []domain.ShipmentStatus{}
	}
	return statuses
}
