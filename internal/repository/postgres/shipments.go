package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/pkg/errors"
)

type shipmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewShipmentRepository creates a new shipment record repository
func NewShipmentRepository(db *sql.DB, logger *zap.Logger) *shipmentRepository {
	return &shipmentRepository{
		db:     db,
		logger: logger,
	}
}

const selectShipment = `
	SELECT s.id, s.purchase_order_id, s.carrier_id, s.agent_id, s.manager_id,
		c.name, c.email, c.phone,
		a.name, a.email, a.phone,
		m.name, m.email, m.phone,
		s.shipping_method,
		s.port_of_loading, s.port_of_discharge, s.vessel_name, s.container_number, s.bill_of_lading,
		s.departure_date, s.arrival_date,
		s.flight_number, s.departure_airport, s.arrival_airport, s.departure_time, s.arrival_time,
		s.cargo_type, s.item_description, s.quantity, s.unit_price, s.total_cost,
		s.departure_terminal, s.arrival_terminal, s.route_number,
		s.cargo_boxes, s.total_cbm, s.price_per_cbm,
		s.freight_cost, s.delivery_cost, s.insurance_cost, s.customs_cost, s.handling_cost,
		s.total_shipping_cost, s.shipping_cost_currency,
		s.status, s.tracking_number, s.estimated_delivery, s.actual_delivery,
		s.products_updated_at, s.inventory_received_at,
		s.require_signature, s.enable_insurance, s.insurance_value,
		s.created_by, s.updated_by, s.created_at, s.updated_at
	FROM shipment_records s
	LEFT JOIN carriers c ON c.id = s.carrier_id
	LEFT JOIN shipping_agents a ON a.id = s.agent_id
	LEFT JOIN users m ON m.id = s.manager_id
`

// columnValue is one column assignment of an INSERT or UPDATE
type columnValue struct {
	column string
	value  interface{}
}

func (r *shipmentRepository) Create(ctx context.Context, rec *domain.ShipmentRecord) error {
	now := time.Now()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	if rec.ShippingMethod == "" {
		rec.ShippingMethod = domain.ShippingMethodStandard
	}
	if rec.Currency == "" {
		rec.Currency = "USD"
	}

	cargoBoxesJSON, err := marshalCargoBoxes(rec.CargoBoxes)
	if err != nil {
		return err
	}

	cols := []columnValue{
		{"id", rec.ID},
		{"purchase_order_id", rec.PurchaseOrderID},
		{"carrier_id", rec.CarrierID},
		{"agent_id", rec.AgentID},
		{"manager_id", rec.ManagerID},
		{"shipping_method", rec.ShippingMethod.Normalize()},
	}
	cols = append(cols, modeColumns(rec.Mode, true)...)
	cols = append(cols,
		columnValue{"cargo_boxes", cargoBoxesJSON},
		columnValue{"total_cbm", rec.TotalCBM},
		columnValue{"price_per_cbm", rec.PricePerCBM},
		columnValue{"freight_cost", rec.Costs.Freight},
		columnValue{"delivery_cost", rec.Costs.Delivery},
		columnValue{"insurance_cost", rec.Costs.Insurance},
		columnValue{"customs_cost", rec.Costs.Customs},
		columnValue{"handling_cost", rec.Costs.Handling},
		columnValue{"total_shipping_cost", rec.TotalShippingCost},
		columnValue{"shipping_cost_currency", rec.Currency},
		columnValue{"status", rec.Status},
		columnValue{"tracking_number", rec.TrackingNumber},
		columnValue{"estimated_delivery", rec.EstimatedDelivery},
		columnValue{"actual_delivery", rec.ActualDelivery},
		columnValue{"products_updated_at", rec.ProductsUpdatedAt},
		columnValue{"inventory_received_at", rec.InventoryReceivedAt},
		columnValue{"require_signature", rec.RequireSignature},
		columnValue{"enable_insurance", rec.EnableInsurance},
		columnValue{"insurance_value", rec.InsuranceValue},
		columnValue{"created_by", rec.CreatedBy},
		columnValue{"updated_by", rec.UpdatedBy},
		columnValue{"created_at", rec.CreatedAt},
		columnValue{"updated_at", rec.UpdatedAt},
	)

	names := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	args := make([]interface{}, len(cols))
	for i, c := range cols {
		names[i] = c.column
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = c.value
	}
	query := fmt.Sprintf("INSERT INTO shipment_records (%s) VALUES (%s)",
		strings.Join(names, ", "), strings.Join(placeholders, ", "))

	if _, err := conn(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to create shipment record",
			zap.String("purchase_order_id", rec.PurchaseOrderID.String()),
			zap.Error(err))
		return classifyError("create shipment", err)
	}

	return nil
}

func (r *shipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ShipmentRecord, error) {
	rec, err := scanShipment(conn(ctx, r.db).QueryRowContext(ctx, selectShipment+" WHERE s.id = $1", id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "shipment", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get shipment by ID", zap.Error(err))
		return nil, classifyError("get shipment", err)
	}
	return rec, nil
}

func (r *shipmentRepository) GetByPurchaseOrderID(ctx context.Context, purchaseOrderID uuid.UUID) (*domain.ShipmentRecord, error) {
	rec, err := scanShipment(conn(ctx, r.db).QueryRowContext(ctx, selectShipment+" WHERE s.purchase_order_id = $1", purchaseOrderID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get shipment by purchase order ID", zap.Error(err))
		return nil, classifyError("get shipment by purchase order", err)
	}
	return rec, nil
}

func (r *shipmentRepository) Update(ctx context.Context, id uuid.UUID, patch *domain.ShipmentPatch) (*domain.ShipmentRecord, error) {
	sets, err := patchColumns(patch)
	if err != nil {
		return nil, err
	}
	sets = append(sets, columnValue{"updated_at", time.Now()})

	clauses := make([]string, len(sets))
	args := make([]interface{}, 0, len(sets)+2)
	for i, s := range sets {
		clauses[i] = fmt.Sprintf("%s = $%d", s.column, i+1)
		args = append(args, s.value)
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE shipment_records SET %s WHERE id = $%d", strings.Join(clauses, ", "), len(args))
	if patch.ExpectedStatus != nil {
		args = append(args, *patch.ExpectedStatus)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	result, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update shipment record", zap.String("shipment_id", id.String()), zap.Error(err))
		return nil, classifyError("update shipment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, classifyError("update shipment", err)
	}
	if rowsAffected == 0 {
		// Either the shipment is gone or its status moved under us
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		if patch.ExpectedStatus != nil {
			return nil, &errors.ErrStaleStatus{Expected: *patch.ExpectedStatus}
		}
	}

	return r.GetByID(ctx, id)
}

func (r *shipmentRepository) TrackingNumberExists(ctx context.Context, carrierID *uuid.UUID, trackingNumber string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM shipment_records
			WHERE carrier_id IS NOT DISTINCT FROM $1 AND tracking_number = $2
		)
	`

	var exists bool
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, carrierID, trackingNumber).Scan(&exists); err != nil {
		r.logger.Error("Failed to check tracking number", zap.Error(err))
		return false, classifyError("check tracking number", err)
	}
	return exists, nil
}

func (r *shipmentRepository) List(ctx context.Context, filter domain.ShipmentFilter) ([]*domain.ShipmentRecord, error) {
	var where []string
	var args []interface{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != "" {
		add("s.status = $%d", filter.Status)
	}
	if filter.CarrierID != nil {
		add("s.carrier_id = $%d", *filter.CarrierID)
	}
	if filter.AgentID != nil {
		add("s.agent_id = $%d", *filter.AgentID)
	}
	if filter.CreatedFrom != nil {
		add("s.created_at >= $%d", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		add("s.created_at <= $%d", *filter.CreatedTo)
	}

	query := selectShipment
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY s.created_at DESC, s.id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return r.query(ctx, "list shipments", query, args...)
}

func (r *shipmentRepository) ListByPurchaseOrderIDs(ctx context.Context, purchaseOrderIDs []uuid.UUID) ([]*domain.ShipmentRecord, error) {
	if len(purchaseOrderIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(purchaseOrderIDs))
	for i, id := range purchaseOrderIDs {
		ids[i] = id.String()
	}

	query := selectShipment + " WHERE s.purchase_order_id = ANY($1::uuid[]) ORDER BY s.created_at DESC, s.id"
	return r.query(ctx, "list shipments by purchase orders", query, pq.Array(ids))
}

func (r *shipmentRepository) query(ctx context.Context, op, query string, args ...interface{}) ([]*domain.ShipmentRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to "+op, zap.Error(err))
		return nil, classifyError(op, err)
	}
	defer rows.Close()

	var records []*domain.ShipmentRecord
	for rows.Next() {
		rec, err := scanShipment(rows)
		if err != nil {
			return nil, classifyError(op, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(op, err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanShipment(row rowScanner) (*domain.ShipmentRecord, error) {
	var rec domain.ShipmentRecord
	var carrierID, agentID, managerID, createdBy, updatedBy uuid.NullUUID
	var carrierName, carrierEmail, carrierPhone sql.NullString
	var agentName, agentEmail, agentPhone sql.NullString
	var managerName, managerEmail, managerPhone sql.NullString
	var portOfLoading, portOfDischarge, vesselName, containerNumber, billOfLading sql.NullString
	var departureDate, arrivalDate sql.NullTime
	var flightNumber, departureAirport, arrivalAirport sql.NullString
	var departureTime, arrivalTime sql.NullTime
	var cargoType, itemDescription sql.NullString
	var quantity sql.NullInt64
	var unitPrice, totalCost decimal.NullDecimal
	var departureTerminal, arrivalTerminal, routeNumber sql.NullString
	var cargoBoxesJSON []byte
	var estimatedDelivery, actualDelivery, productsUpdatedAt, inventoryReceivedAt sql.NullTime

	err := row.Scan(
		&rec.ID,
		&rec.PurchaseOrderID,
		&carrierID,
		&agentID,
		&managerID,
		&carrierName, &carrierEmail, &carrierPhone,
		&agentName, &agentEmail, &agentPhone,
		&managerName, &managerEmail, &managerPhone,
		&rec.ShippingMethod,
		&portOfLoading, &portOfDischarge, &vesselName, &containerNumber, &billOfLading,
		&departureDate, &arrivalDate,
		&flightNumber, &departureAirport, &arrivalAirport, &departureTime, &arrivalTime,
		&cargoType, &itemDescription, &quantity, &unitPrice, &totalCost,
		&departureTerminal, &arrivalTerminal, &routeNumber,
		&cargoBoxesJSON,
		&rec.TotalCBM,
		&rec.PricePerCBM,
		&rec.Costs.Freight,
		&rec.Costs.Delivery,
		&rec.Costs.Insurance,
		&rec.Costs.Customs,
		&rec.Costs.Handling,
		&rec.TotalShippingCost,
		&rec.Currency,
		&rec.Status,
		&rec.TrackingNumber,
		&estimatedDelivery,
		&actualDelivery,
		&productsUpdatedAt,
		&inventoryReceivedAt,
		&rec.RequireSignature,
		&rec.EnableInsurance,
		&rec.InsuranceValue,
		&createdBy,
		&updatedBy,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.CarrierID = uuidPtr(carrierID)
	rec.AgentID = uuidPtr(agentID)
	rec.ManagerID = uuidPtr(managerID)
	rec.CreatedBy = uuidPtr(createdBy)
	rec.UpdatedBy = uuidPtr(updatedBy)
	rec.Carrier = partyRef(carrierID, carrierName, carrierEmail, carrierPhone)
	rec.Agent = partyRef(agentID, agentName, agentEmail, agentPhone)
	rec.Manager = partyRef(managerID, managerName, managerEmail, managerPhone)

	rec.EstimatedDelivery = timePtr(estimatedDelivery)
	rec.ActualDelivery = timePtr(actualDelivery)
	rec.ProductsUpdatedAt = timePtr(productsUpdatedAt)
	rec.InventoryReceivedAt = timePtr(inventoryReceivedAt)

	if len(cargoBoxesJSON) > 0 {
		if err := json.Unmarshal(cargoBoxesJSON, &rec.CargoBoxes); err != nil {
			return nil, err
		}
	}

	// Only the columns of the selected mode are read back
	switch rec.ShippingMethod {
	case domain.ShippingMethodSea:
		d := domain.SeaDetails{
			PortOfLoading:   portOfLoading.String,
			PortOfDischarge: portOfDischarge.String,
			VesselName:      vesselName.String,
			ContainerNumber: containerNumber.String,
			BillOfLading:    billOfLading.String,
			DepartureDate:   timePtr(departureDate),
			ArrivalDate:     timePtr(arrivalDate),
		}
		if d != (domain.SeaDetails{}) {
			rec.Mode = &d
		}
	case domain.ShippingMethodAir:
		d := domain.AirDetails{
			FlightNumber:     flightNumber.String,
			DepartureAirport: departureAirport.String,
			ArrivalAirport:   arrivalAirport.String,
			DepartureTime:    timePtr(departureTime),
			ArrivalTime:      timePtr(arrivalTime),
			CargoType:        cargoType.String,
			ItemDescription:  itemDescription.String,
		}
		if quantity.Valid {
			q := int(quantity.Int64)
			d.Quantity = &q
		}
		if unitPrice.Valid {
			d.UnitPrice = &unitPrice.Decimal
		}
		if totalCost.Valid {
			d.TotalCost = &totalCost.Decimal
		}
		if d != (domain.AirDetails{}) {
			rec.Mode = &d
		}
	case domain.ShippingMethodStandard:
		d := domain.GroundDetails{
			DepartureTerminal: departureTerminal.String,
			ArrivalTerminal:   arrivalTerminal.String,
			RouteNumber:       routeNumber.String,
		}
		if d != (domain.GroundDetails{}) {
			rec.Mode = &d
		}
	}

	return &rec, nil
}

// patchColumns lists the assignments for every supplied field of patch
func patchColumns(patch *domain.ShipmentPatch) ([]columnValue, error) {
	var cols []columnValue
	if patch.Status != nil {
		cols = append(cols, columnValue{"status", *patch.Status})
	}
	if patch.CarrierID != nil {
		cols = append(cols, columnValue{"carrier_id", *patch.CarrierID})
	}
	if patch.AgentID != nil {
		cols = append(cols, columnValue{"agent_id", *patch.AgentID})
	}
	if patch.ManagerID != nil {
		cols = append(cols, columnValue{"manager_id", *patch.ManagerID})
	}
	if patch.ShippingMethod != nil {
		cols = append(cols, columnValue{"shipping_method", patch.ShippingMethod.Normalize()})
	}
	cols = append(cols, modeColumns(patch.Mode, false)...)
	if patch.CargoBoxes != nil {
		b, err := marshalCargoBoxes(patch.CargoBoxes)
		if err != nil {
			return nil, err
		}
		cols = append(cols, columnValue{"cargo_boxes", b})
	}
	cols = appendDecimal(cols, "total_cbm", patch.TotalCBM)
	cols = appendDecimal(cols, "price_per_cbm", patch.PricePerCBM)
	cols = appendDecimal(cols, "freight_cost", patch.FreightCost)
	cols = appendDecimal(cols, "delivery_cost", patch.DeliveryCost)
	cols = appendDecimal(cols, "insurance_cost", patch.InsuranceCost)
	cols = appendDecimal(cols, "customs_cost", patch.CustomsCost)
	cols = appendDecimal(cols, "handling_cost", patch.HandlingCost)
	cols = appendDecimal(cols, "total_shipping_cost", patch.TotalShippingCost)
	if patch.Currency != nil {
		cols = append(cols, columnValue{"shipping_cost_currency", *patch.Currency})
	}
	if patch.TrackingNumber != nil {
		cols = append(cols, columnValue{"tracking_number", *patch.TrackingNumber})
	}
	cols = appendTime(cols, "estimated_delivery", patch.EstimatedDelivery)
	cols = appendTime(cols, "actual_delivery", patch.ActualDelivery)
	cols = appendTime(cols, "products_updated_at", patch.ProductsUpdatedAt)
	cols = appendTime(cols, "inventory_received_at", patch.InventoryReceivedAt)
	if patch.RequireSignature != nil {
		cols = append(cols, columnValue{"require_signature", *patch.RequireSignature})
	}
	if patch.EnableInsurance != nil {
		cols = append(cols, columnValue{"enable_insurance", *patch.EnableInsurance})
	}
	cols = appendDecimal(cols, "insurance_value", patch.InsuranceValue)
	if patch.UpdatedBy != nil {
		cols = append(cols, columnValue{"updated_by", *patch.UpdatedBy})
	}
	return cols, nil
}

// modeColumns maps a mode payload onto its flat columns. With all set, every
// column of the mode is returned and empty values become NULL; otherwise only
// supplied values are returned.
func modeColumns(m domain.ModeDetails, all bool) []columnValue {
	var cols []columnValue
	str := func(col, v string) {
		if v != "" {
			cols = append(cols, columnValue{col, v})
		} else if all {
			cols = append(cols, columnValue{col, nil})
		}
	}
	tm := func(col string, v *time.Time) {
		if v != nil || all {
			cols = append(cols, columnValue{col, v})
		}
	}

	switch d := m.(type) {
	case *domain.SeaDetails:
		str("port_of_loading", d.PortOfLoading)
		str("port_of_discharge", d.PortOfDischarge)
		str("vessel_name", d.VesselName)
		str("container_number", d.ContainerNumber)
		str("bill_of_lading", d.BillOfLading)
		tm("departure_date", d.DepartureDate)
		tm("arrival_date", d.ArrivalDate)
	case *domain.AirDetails:
		str("flight_number", d.FlightNumber)
		str("departure_airport", d.DepartureAirport)
		str("arrival_airport", d.ArrivalAirport)
		tm("departure_time", d.DepartureTime)
		tm("arrival_time", d.ArrivalTime)
		str("cargo_type", d.CargoType)
		str("item_description", d.ItemDescription)
		if d.Quantity != nil || all {
			cols = append(cols, columnValue{"quantity", d.Quantity})
		}
		if d.UnitPrice != nil || all {
			cols = append(cols, columnValue{"unit_price", d.UnitPrice})
		}
		if d.TotalCost != nil || all {
			cols = append(cols, columnValue{"total_cost", d.TotalCost})
		}
	case *domain.GroundDetails:
		str("departure_terminal", d.DepartureTerminal)
		str("arrival_terminal", d.ArrivalTerminal)
		str("route_number", d.RouteNumber)
	}
	return cols
}

func appendDecimal(cols []columnValue, col string, v *decimal.Decimal) []columnValue {
	if v == nil {
		return cols
	}
	return append(cols, columnValue{col, *v})
}

func appendTime(cols []columnValue, col string, v *time.Time) []columnValue {
	if v == nil {
		return cols
	}
	return append(cols, columnValue{col, *v})
}

func marshalCargoBoxes(boxes []domain.CargoBox) ([]byte, error) {
	if boxes == nil {
		boxes = []domain.CargoBox{}
	}
	return json.Marshal(boxes)
}

func uuidPtr(v uuid.NullUUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := v.UUID
	return &id
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func partyRef(id uuid.NullUUID, name, email, phone sql.NullString) *domain.PartyRef {
	if !id.Valid {
		return nil
	}
	return &domain.PartyRef{
		ID:    id.UUID,
		Name:  name.String,
		Email: email.String,
		Phone: phone.String,
	}
}
