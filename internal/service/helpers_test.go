package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Mtaasisi/POS-sub062/internal/auth"
	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/internal/events"
	"github.com/Mtaasisi/POS-sub062/internal/repository"
	"github.com/Mtaasisi/POS-sub062/internal/repository/memory"
)

type fakePublisher struct {
	mu   sync.Mutex
	msgs []events.StatusChangedMessage
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, _ string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if msg, ok := value.(events.StatusChangedMessage); ok {
		p.msgs = append(p.msgs, msg)
	}
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) messages() []events.StatusChangedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.StatusChangedMessage(nil), p.msgs...)
}

// fixedTracking hands out numbers in order, then numbered fallbacks
type fixedTracking struct {
	mu      sync.Mutex
	numbers []string
	calls   int
}

func (g *fixedTracking) Generate(carrierName string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if len(g.numbers) > 0 {
		n := g.numbers[0]
		if len(g.numbers) > 1 {
			g.numbers = g.numbers[1:]
		}
		return n
	}
	return fmt.Sprintf("%s-GEN-%d", carrierPrefix(carrierName), g.calls)
}

// clock advances one second per reading so event order is visible
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	svc       *ShipmentService
	cargo     *CargoService
	store     *memory.Store
	repos     *repository.Repositories
	publisher *fakePublisher
	tracking  *fixedTracking
	carrier   domain.PartyRef
	ctx       context.Context
	actor     *domain.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	carrier := domain.PartyRef{ID: uuid.New(), Name: "DHL Express"}
	store.AddDirectoryEntry(domain.DirectoryCarrier, carrier)

	repos := memory.NewRepositories(store)
	pub := &fakePublisher{}
	gen := &fixedTracking{}
	svc := NewShipmentService(repos, pub, gen, zap.NewNop())
	c := &clock{t: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
	svc.now = c.now

	actor := &domain.Actor{ID: uuid.New(), Name: "ops@example.com", Role: "operator"}
	return &fixture{
		svc:       svc,
		cargo:     NewCargoService(repos, zap.NewNop()),
		store:     store,
		repos:     repos,
		publisher: pub,
		tracking:  gen,
		carrier:   carrier,
		ctx:       auth.WithActor(context.Background(), actor),
		actor:     actor,
	}
}

// createShipment creates a pending shipment for a fresh purchase order
func (f *fixture) createShipment(t *testing.T, fields ShipmentFields) *domain.ShipmentRecord {
	t.Helper()
	rec, created, err := f.svc.Create(f.ctx, CreateShipmentRequest{
		PurchaseOrderID: uuid.New(),
		ShipmentFields:  fields,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !created {
		t.Fatal("expected a new shipment")
	}
	return rec
}

func (f *fixture) advance(t *testing.T, id uuid.UUID, update StatusUpdate) (*domain.ShipmentRecord, *domain.ShipmentEvent) {
	t.Helper()
	rec, ev, err := f.svc.AdvanceStatus(f.ctx, id, update)
	if err != nil {
		t.Fatalf("AdvanceStatus(%s) failed: %v", update.Status, err)
	}
	return rec, ev
}

func (f *fixture) history(t *testing.T, id uuid.UUID) []*domain.ShipmentEvent {
	t.Helper()
	evs, err := f.repos.ShipmentEvent.ListByShipment(context.Background(), id)
	if err != nil {
		t.Fatalf("ListByShipment failed: %v", err)
	}
	return evs
}

func ptr[T any](v T) *T { return &v }
