package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mtaasisi/POS-sub062/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HandleExportShipments handles GET /v1/exports/shipments. Takes the list
// filters and returns every matching shipment as an xlsx workbook.
func HandleExportShipments(svc *service.ShipmentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := parseShipmentFilter(c)
		if !ok {
			return
		}

		// Buffer so a failure can still become a JSON error
		var buf bytes.Buffer
		n, err := svc.ExportShipments(c.Request.Context(), filter, &buf)
		if err != nil {
			respondError(c, logger, "export shipments", err)
			return
		}

		filename := fmt.Sprintf("shipments-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Header("X-Row-Count", strconv.Itoa(n))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}
