package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Mtaasisi/POS-sub062/internal/auth"
	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/pkg/errors"
)

type shipmentEventRepository struct {
	s *Store
}

func (r *shipmentEventRepository) Append(ctx context.Context, event *domain.ShipmentEvent) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.shipments[event.ShipmentID]; !ok {
		return &errors.ErrInvalidReference{Field: "shipment_id"}
	}
	stored := *event
	r.s.events[event.ShipmentID] = append(r.s.events[event.ShipmentID], &stored)
	return nil
}

func (r *shipmentEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ShipmentEvent, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, events := range r.s.events {
		for _, ev := range events {
			if ev.ID == id {
				out := *ev
				return &out, nil
			}
		}
	}
	return nil, &errors.ErrNotFound{Resource: "shipment event", ID: id.String()}
}

func (r *shipmentEventRepository) ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]*domain.ShipmentEvent, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	events := r.s.events[shipmentID]
	out := make([]*domain.ShipmentEvent, len(events))
	for i, ev := range events {
		c := *ev
		out[i] = &c
	}
	r.s.mu.RUnlock()

	// append order breaks timestamp ties
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

type cargoItemRepository struct {
	s *Store
}

func (r *cargoItemRepository) CreateBatch(ctx context.Context, items []*domain.CargoItem) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// validate the whole batch first so a bad line inserts nothing
	for _, item := range items {
		if _, ok := r.s.shipments[item.ShipmentID]; !ok {
			return &errors.ErrInvalidReference{Field: "shipment_id"}
		}
		if _, ok := r.s.products[item.ProductID]; !ok {
			return &errors.ErrInvalidReference{Field: "product_id"}
		}
		if item.VariantID != nil {
			if _, ok := r.s.variants[*item.VariantID]; !ok {
				return &errors.ErrInvalidReference{Field: "variant_id"}
			}
		}
		if item.PurchaseOrderItemID != nil {
			if _, ok := r.s.orderLines[*item.PurchaseOrderItemID]; !ok {
				return &errors.ErrInvalidReference{Field: "purchase_order_item_id"}
			}
		}
	}

	now := time.Now()
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		stored := *item
		r.s.cargo[item.ShipmentID] = append(r.s.cargo[item.ShipmentID], &stored)
	}
	return nil
}

func (r *cargoItemRepository) ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]*domain.CargoItemDetail, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := r.s.cargo[shipmentID]
	out := make([]*domain.CargoItemDetail, 0, len(items))
	for _, item := range items {
		d := &domain.CargoItemDetail{CargoItem: *item}
		p := r.s.products[item.ProductID]
		d.ProductName = p.Name
		d.SKU = p.SKU
		if item.VariantID != nil {
			d.VariantName = r.s.variants[*item.VariantID]
		}
		if item.PurchaseOrderItemID != nil {
			if line, ok := r.s.orderLines[*item.PurchaseOrderItemID]; ok {
				q := line.Quantity
				d.OrderedQuantity = &q
			}
		}
		out = append(out, d)
	}
	return out, nil
}

type directoryRepository struct {
	s *Store
}

func (r *directoryRepository) Get(ctx context.Context, kind domain.DirectoryKind, id uuid.UUID) (*domain.PartyRef, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ref := r.s.lookup(kind, &id)
	if ref == nil {
		return nil, &errors.ErrNotFound{Resource: string(kind), ID: id.String()}
	}
	return ref, nil
}

type purchaseOrderLineRepository struct {
	s *Store
}

func (r *purchaseOrderLineRepository) ListOrderIDsByProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, line := range r.s.orderLines {
		if line.ProductID == productID && !seen[line.PurchaseOrderID] {
			seen[line.PurchaseOrderID] = true
			ids = append(ids, line.PurchaseOrderID)
		}
	}
	return ids, nil
}

type apiClientRepository struct {
	s *Store
}

func (r *apiClientRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.APIClient, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	client, ok := r.s.apiClients[auth.APIKeyLookupHash(apiKey)]
	r.s.mu.RUnlock()

	if !ok || !client.IsActive || !auth.VerifyAPIKey(apiKey, client.APIKeyHash) {
		return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
	}
	out := *client
	return &out, nil
}

func (r *apiClientRepository) Create(ctx context.Context, client *domain.APIClient) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	now := time.Now()
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	if client.UpdatedAt.IsZero() {
		client.UpdatedAt = now
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.apiClients[client.APIKeyLookup]; exists {
		return &errors.ErrConflict{Message: "api key already registered"}
	}
	stored := *client
	r.s.apiClients[client.APIKeyLookup] = &stored
	return nil
}

func (r *apiClientRepository) List(ctx context.Context) ([]*domain.APIClient, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.APIClient, 0, len(r.s.apiClients))
	for _, c := range r.s.apiClients {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type idempotencyKeyRepository struct {
	s *Store
}

func (r *idempotencyKeyRepository) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	k, ok := r.s.idempotency[key]
	if !ok {
		return nil, nil
	}
	out := *k
	return &out, nil
}

func (r *idempotencyKeyRepository) Create(ctx context.Context, key *domain.IdempotencyKey) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now()
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.idempotency[key.Key]; exists {
		return &errors.ErrConflict{Message: "idempotency key already used"}
	}
	stored := *key
	r.s.idempotency[key.Key] = &stored
	return nil
}
