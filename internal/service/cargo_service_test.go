package service

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Mtaasisi/POS-sub062/internal/repository/memory"
	"github.com/Mtaasisi/POS-sub062/pkg/errors"
)

func TestAddCargoItems(t *testing.T) {
	f := newFixture(t)
	rec := f.createShipment(t, ShipmentFields{})

	product := memory.Product{ID: uuid.New(), Name: "Thermal Printer", SKU: "TP-80"}
	f.store.AddProduct(product)
	variantID := uuid.New()
	f.store.AddVariant(variantID, "USB")
	line := memory.PurchaseOrderLine{
		ID:              uuid.New(),
		PurchaseOrderID: rec.PurchaseOrderID,
		ProductID:       product.ID,
		VariantID:       &variantID,
		Quantity:        40,
	}
	f.store.AddPurchaseOrderLine(line)

	items, err := f.cargo.AddCargoItems(f.ctx, rec.ID, AddCargoRequest{Items: []CargoItemInput{
		{ProductID: product.ID, VariantID: &variantID, PurchaseOrderItemID: &line.ID, Quantity: 25},
		{ProductID: product.ID},
	}})
	if err != nil {
		t.Fatalf("AddCargoItems failed: %v", err)
	}
	if len(items) != 2 || items[1].Quantity != 1 {
		t.Fatalf("expected a default quantity of 1, got %+v", items)
	}

	listed, err := f.cargo.ListCargo(f.ctx, rec.ID)
	if err != nil {
		t.Fatalf("ListCargo failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 items, got %d", len(listed))
	}
	first := listed[0]
	if first.ProductName != "Thermal Printer" || first.SKU != "TP-80" || first.VariantName != "USB" {
		t.Errorf("product detail not joined: %+v", first)
	}
	if first.OrderedQuantity == nil || *first.OrderedQuantity != 40 {
		t.Errorf("expected ordered quantity 40, got %v", first.OrderedQuantity)
	}
}

func TestAddCargoItems_Rejections(t *testing.T) {
	f := newFixture(t)
	rec := f.createShipment(t, ShipmentFields{})

	_, err := f.cargo.AddCargoItems(f.ctx, rec.ID, AddCargoRequest{Items: []CargoItemInput{{ProductID: uuid.New()}}})
	var ref *errors.ErrInvalidReference
	if !stderrors.As(err, &ref) || ref.Field != "product_id" {
		t.Errorf("expected ErrInvalidReference on product_id, got %v", err)
	}

	_, err = f.cargo.AddCargoItems(f.ctx, rec.ID, AddCargoRequest{Items: []CargoItemInput{{ProductID: uuid.New(), Quantity: -2}}})
	var verr *errors.ErrValidation
	if !stderrors.As(err, &verr) {
		t.Errorf("expected ErrValidation for a negative quantity, got %v", err)
	}

	_, err = f.cargo.AddCargoItems(f.ctx, rec.ID, AddCargoRequest{})
	if !stderrors.As(err, &verr) {
		t.Errorf("expected ErrValidation for an empty batch, got %v", err)
	}

	_, err = f.cargo.AddCargoItems(f.ctx, uuid.New(), AddCargoRequest{Items: []CargoItemInput{{ProductID: uuid.New()}}})
	var notFound *errors.ErrNotFound
	if !stderrors.As(err, &notFound) {
		t.Errorf("expected ErrNotFound for an unknown shipment, got %v", err)
	}

	_, err = f.cargo.AddCargoItems(context.Background(), rec.ID, AddCargoRequest{Items: []CargoItemInput{{ProductID: uuid.New()}}})
	var authErr *errors.ErrAuthenticationRequired
	if !stderrors.As(err, &authErr) {
		t.Errorf("expected ErrAuthenticationRequired, got %v", err)
	}
}
