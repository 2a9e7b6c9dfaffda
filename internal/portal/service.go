package portal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"atelierhq.io/internal/ids"
)

// Store describes persistence operations required by the portal.
type Store interface {
	CreateOrganization(ctx context.Context, org *Organization) error
	GetOrganization(ctx context.Context, id string) (Organization, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)
	DeleteOrganization(ctx context.Context, id string) error

	CreateOrder(ctx context.Context, order *Order) error
	GetOrder(ctx context.Context, id string) (Order, error)
	ListOrdersByOrganization(ctx context.Context, orgID string) ([]Order, error)
	UpdateOrderStage(ctx context.Context, id string, stage Stage) (Order, error)

	ListInvoicesByOrganization(ctx context.Context, orgID string) ([]Invoice, error)
}

// Service validates input and applies the stage state machine on top of a
// Store. It carries no authorization logic; the decision engine gates every
// call before it reaches here.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs a Service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidInput)
	}
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *Service) CreateOrganization(ctx context.Context, name string) (Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Organization{}, fmt.Errorf("%w: organization name is required", ErrInvalidInput)
	}
	org := Organization{ID: ids.New(), Name: name, CreatedAt: s.now()}
	if err := s.store.CreateOrganization(ctx, &org); err != nil {
		return Organization{}, err
	}
	return org, nil
}

func (s *Service) GetOrganization(ctx context.Context, id string) (Organization, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Organization{}, fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}
	return s.store.GetOrganization(ctx, id)
}

func (s *Service) ListOrganizations(ctx context.Context) ([]Organization, error) {
	return s.store.ListOrganizations(ctx)
}

// DeleteOrganization removes a tenant and its orders. Audit history is a
// soft reference and is left untouched.
func (s *Service) DeleteOrganization(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}
	return s.store.DeleteOrganization(ctx, id)
}

func (s *Service) CreateOrder(ctx context.Context, orgID, reference, costume, notes string) (Order, error) {
	orgID = strings.TrimSpace(orgID)
	reference = strings.TrimSpace(reference)
	costume = strings.TrimSpace(costume)
	if orgID == "" {
		return Order{}, fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}
	if reference == "" {
		return Order{}, fmt.Errorf("%w: order reference is required", ErrInvalidInput)
	}
	if costume == "" {
		return Order{}, fmt.Errorf("%w: costume description is required", ErrInvalidInput)
	}
	if _, err := s.store.GetOrganization(ctx, orgID); err != nil {
		return Order{}, err
	}

	now := s.now()
	order := Order{
		ID:             ids.New(),
		OrganizationID: orgID,
		Reference:      reference,
		Costume:        costume,
		Stage:          StageMeasuring,
		Notes:          strings.TrimSpace(notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateOrder(ctx, &order); err != nil {
		return Order{}, err
	}
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Order{}, fmt.Errorf("%w: order id is required", ErrInvalidInput)
	}
	return s.store.GetOrder(ctx, id)
}

func (s *Service) ListOrdersByOrganization(ctx context.Context, orgID string) ([]Order, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}
	return s.store.ListOrdersByOrganization(ctx, orgID)
}

// AdvanceOrderStage moves an order to its next manufacturing stage.
func (s *Service) AdvanceOrderStage(ctx context.Context, id string) (Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return Order{}, err
	}
	next, err := NextStage(order.Stage)
	if err != nil {
		return Order{}, err
	}
	return s.store.UpdateOrderStage(ctx, order.ID, next)
}

func (s *Service) ListInvoicesByOrganization(ctx context.Context, orgID string) ([]Invoice, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}
	return s.store.ListInvoicesByOrganization(ctx, orgID)
}

// InMemory implements Store with in-process concurrency safety. Used by
// tests and DSN-less runs.
type InMemory struct {
	mu       sync.RWMutex
	orgs     map[string]Organization
	orders   map[string]Order
	invoices map[string][]Invoice
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{
		orgs:     make(map[string]Organization),
		orders:   make(map[string]Order),
		invoices: make(map[string][]Invoice),
	}
}

func (m *InMemory) CreateOrganization(ctx context.Context, org *Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.orgs {
		if existing.Name == org.Name {
			return ErrConflict
		}
	}
	m.orgs[org.ID] = *org
	return nil
}

func (m *InMemory) GetOrganization(ctx context.Context, id string) (Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	org, ok := m.orgs[id]
	if !ok {
		return Organization{}, ErrNotFound
	}
	return org, nil
}

func (m *InMemory) ListOrganizations(ctx context.Context) ([]Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Organization, 0, len(m.orgs))
	for _, org := range m.orgs {
		out = append(out, org)
	}
	return out, nil
}

func (m *InMemory) DeleteOrganization(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orgs[id]; !ok {
		return ErrNotFound
	}
	delete(m.orgs, id)
	for oid, order := range m.orders {
		if order.OrganizationID == id {
			delete(m.orders, oid)
		}
	}
	delete(m.invoices, id)
	return nil
}

func (m *InMemory) CreateOrder(ctx context.Context, order *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = *order
	return nil
}

func (m *InMemory) GetOrder(ctx context.Context, id string) (Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return order, nil
}

func (m *InMemory) ListOrdersByOrganization(ctx context.Context, orgID string) ([]Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Order
	for _, order := range m.orders {
		if order.OrganizationID == orgID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (m *InMemory) UpdateOrderStage(ctx context.Context, id string, stage Stage) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	order.Stage = stage
	order.UpdatedAt = time.Now().UTC()
	m.orders[id] = order
	return order, nil
}

func (m *InMemory) ListInvoicesByOrganization(ctx context.Context, orgID string) ([]Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Invoice(nil), m.invoices[orgID]...), nil
}

// AddInvoice seeds an invoice. Test helper.
func (m *InMemory) AddInvoice(inv Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[inv.OrganizationID] = append(m.invoices[inv.OrganizationID], inv)
}
