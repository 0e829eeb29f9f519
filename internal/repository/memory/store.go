// Package memory keeps every repository in process memory. It backs the
// service tests and STORAGE=memory.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/internal/repository"
)

// Product is the slice of the product catalog cargo listings join against
type Product struct {
	ID   uuid.UUID
	Name string
	SKU  string
}

// PurchaseOrderLine is one line of a purchase order
type PurchaseOrderLine struct {
	ID              uuid.UUID
	PurchaseOrderID uuid.UUID
	ProductID       uuid.UUID
	VariantID       *uuid.UUID
	Quantity        int
}

// Store holds the state shared by the repositories returned from NewRepositories
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	shipments map[uuid.UUID]*domain.ShipmentRecord
	seq       map[uuid.UUID]int64
	nextSeq   int64
	events    map[uuid.UUID][]*domain.ShipmentEvent
	cargo     map[uuid.UUID][]*domain.CargoItem

	directory  map[domain.DirectoryKind]map[uuid.UUID]domain.PartyRef
	products   map[uuid.UUID]Product
	variants   map[uuid.UUID]string
	orderLines map[uuid.UUID]PurchaseOrderLine

	apiClients  map[string]*domain.APIClient // by lookup hash
	idempotency map[string]*domain.IdempotencyKey
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		shipments: make(map[uuid.UUID]*domain.ShipmentRecord),
		seq:       make(map[uuid.UUID]int64),
		events:    make(map[uuid.UUID][]*domain.ShipmentEvent),
		cargo:     make(map[uuid.UUID][]*domain.CargoItem),
		directory: map[domain.DirectoryKind]map[uuid.UUID]domain.PartyRef{
			domain.DirectoryCarrier: {},
			domain.DirectoryAgent:   {},
			domain.DirectoryManager: {},
		},
		products:    make(map[uuid.UUID]Product),
		variants:    make(map[uuid.UUID]string),
		orderLines:  make(map[uuid.UUID]PurchaseOrderLine),
		apiClients:  make(map[string]*domain.APIClient),
		idempotency: make(map[string]*domain.IdempotencyKey),
	}
}

// NewRepositories wires every repository over one store
func NewRepositories(s *Store) *repository.Repositories {
	return &repository.Repositories{
		Shipment:          &shipmentRepository{s: s},
		ShipmentEvent:     &shipmentEventRepository{s: s},
		CargoItem:         &cargoItemRepository{s: s},
		Directory:         &directoryRepository{s: s},
		PurchaseOrderLine: &purchaseOrderLineRepository{s: s},
		APIClient:         &apiClientRepository{s: s},
		IdempotencyKey:    &idempotencyKeyRepository{s: s},
		Tx:                &txManager{s: s},
	}
}

// AddDirectoryEntry registers a carrier, agent or manager
func (s *Store) AddDirectoryEntry(kind domain.DirectoryKind, ref domain.PartyRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.directory[kind] == nil {
		s.directory[kind] = make(map[uuid.UUID]domain.PartyRef)
	}
	s.directory[kind][ref.ID] = ref
}

// AddProduct registers a product
func (s *Store) AddProduct(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// AddVariant registers a product variant
func (s *Store) AddVariant(id uuid.UUID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variants[id] = name
}

// AddPurchaseOrderLine registers a purchase order line
func (s *Store) AddPurchaseOrderLine(line PurchaseOrderLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderLines[line.ID] = line
}

type snapshot struct {
	shipments   map[uuid.UUID]*domain.ShipmentRecord
	seq         map[uuid.UUID]int64
	nextSeq     int64
	events      map[uuid.UUID][]*domain.ShipmentEvent
	cargo       map[uuid.UUID][]*domain.CargoItem
	apiClients  map[string]*domain.APIClient
	idempotency map[string]*domain.IdempotencyKey
}

// snapshot copies the mutable state. Events and cargo items are never
// modified in place, so copying the slices is enough.
func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		shipments:   make(map[uuid.UUID]*domain.ShipmentRecord, len(s.shipments)),
		seq:         make(map[uuid.UUID]int64, len(s.seq)),
		nextSeq:     s.nextSeq,
		events:      make(map[uuid.UUID][]*domain.ShipmentEvent, len(s.events)),
		cargo:       make(map[uuid.UUID][]*domain.CargoItem, len(s.cargo)),
		apiClients:  make(map[string]*domain.APIClient, len(s.apiClients)),
		idempotency: make(map[string]*domain.IdempotencyKey, len(s.idempotency)),
	}
	for k, v := range s.shipments {
		snap.shipments[k] = v.Clone()
	}
	for k, v := range s.seq {
		snap.seq[k] = v
	}
	for k, v := range s.events {
		snap.events[k] = append([]*domain.ShipmentEvent(nil), v...)
	}
	for k, v := range s.cargo {
		snap.cargo[k] = append([]*domain.CargoItem(nil), v...)
	}
	for k, v := range s.apiClients {
		snap.apiClients[k] = v
	}
	for k, v := range s.idempotency {
		snap.idempotency[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shipments = snap.shipments
	s.seq = snap.seq
	s.nextSeq = snap.nextSeq
	s.events = snap.events
	s.cargo = snap.cargo
	s.apiClients = snap.apiClients
	s.idempotency = snap.idempotency
}

type txKey struct{}

type txManager struct {
	s *Store
}

// RunInTx serializes transactions and restores the pre-transaction state
// when fn fails or panics. Nested calls join the outer transaction.
func (tm *txManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	tm.s.txMu.Lock()
	defer tm.s.txMu.Unlock()

	snap := tm.s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			tm.s.restore(snap)
			panic(p)
		} else if err != nil {
			tm.s.restore(snap)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

func checkCtx(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
