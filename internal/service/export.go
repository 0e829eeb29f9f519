package service

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
)

const exportSheet = "Shipments"

var exportHeader = []interface{}{
	"Shipment ID", "Purchase Order", "Status", "Tracking Number", "Shipping Method",
	"Carrier", "Agent", "Total CBM", "Total Shipping Cost", "Currency",
	"Estimated Delivery", "Actual Delivery", "Created At", "Updated At",
}

// ExportShipments writes the shipments matching filter as an xlsx workbook.
// Pages through the whole result regardless of filter.Limit.
func (s *ShipmentService) ExportShipments(ctx context.Context, filter domain.ShipmentFilter, w io.Writer) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return 0, err
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return 0, err
	}
	if err := sw.SetRow("A1", exportHeader); err != nil {
		return 0, err
	}

	filter.Limit = maxListLimit
	filter.Offset = 0
	row := 2
	for {
		page, err := s.List(ctx, filter)
		if err != nil {
			return 0, err
		}
		for _, rec := range page {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := sw.SetRow(cell, exportRow(rec)); err != nil {
				return 0, err
			}
			row++
		}
		if len(page) < filter.Limit {
			break
		}
		filter.Offset += filter.Limit
	}

	if err := sw.Flush(); err != nil {
		return 0, err
	}
	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	return row - 2, nil
}

func exportRow(rec *domain.ShipmentRecord) []interface{} {
	return []interface{}{
		rec.ID.String(),
		rec.PurchaseOrderID.String(),
		rec.Status.Label(),
		rec.TrackingNumber,
		string(rec.ShippingMethod),
		partyName(rec.Carrier),
		partyName(rec.Agent),
		rec.TotalCBM.InexactFloat64(),
		rec.TotalShippingCost.InexactFloat64(),
		rec.Currency,
		formatTime(rec.EstimatedDelivery),
		formatTime(rec.ActualDelivery),
		formatTime(&rec.CreatedAt),
		formatTime(&rec.UpdatedAt),
	}
}

func partyName(ref *domain.PartyRef) string {
	if ref == nil {
		return ""
	}
	return ref.Name
}
