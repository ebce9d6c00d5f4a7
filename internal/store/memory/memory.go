// Package memory is an in-process Repository used for development, demos and
// tests. Records keep their insertion order.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"rentdesk/internal/core"
	"rentdesk/internal/store"
)

type Store struct {
	mu            sync.Mutex
	properties    []core.Property
	tenants       []core.Tenant
	payments      []core.Payment
	notifications []core.Notification
	messages      []core.Message
}

var _ store.Repository = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// NewSeeded returns a store holding the demo portfolio: two properties, two
// tenants and their January 2025 payments.
func NewSeeded() *Store {
	s := New()
	s.properties = []core.Property{
		{ID: "1", Name: "Sunset Apartments", Address: "123 Sunset Blvd", Units: 24},
		{ID: "2", Name: "Ocean View Complex", Address: "456 Ocean Drive", Units: 16},
	}
	s.tenants = []core.Tenant{
		{
			ID: "1", PropertyID: "1", Name: "John Doe", Email: "john@example.com",
			Phone: "+254712345678", Unit: "101", Rent: core.Money{Cents: 1500000},
			MoveInDate: core.NewDate(2024, 1, 1), RentDueDay: core.DefaultRentDueDay,
		},
		{
			ID: "2", PropertyID: "1", Name: "Jane Smith", Email: "jane@example.com",
			Phone: "+254723456789", Unit: "102", Rent: core.Money{Cents: 1800000},
			MoveInDate: core.NewDate(2024, 2, 1), RentDueDay: core.DefaultRentDueDay,
		},
	}
	s.payments = []core.Payment{
		{ID: "1", TenantID: "1", Amount: core.Money{Cents: 1500000}, Date: core.NewDate(2025, 1, 1), Status: core.StatusCompleted, Method: core.MethodMpesa, Reference: "MPESA123456"},
		{ID: "2", TenantID: "2", Amount: core.Money{Cents: 1800000}, Date: core.NewDate(2025, 1, 1), Status: core.StatusPending, Method: core.MethodBank, Reference: "BANK789012"},
	}
	return s
}

func (s *Store) Close() error { return nil }

func (s *Store) ListProperties(_ context.Context) ([]core.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.properties), nil
}

func (s *Store) GetProperty(_ context.Context, id string) (core.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.properties, func(p core.Property) bool { return p.ID == id })
	if i < 0 {
		return core.Property{}, fmt.Errorf("property %s: %w", id, store.ErrNotFound)
	}
	return s.properties[i], nil
}

func (s *Store) CreateProperty(_ context.Context, p core.Property) (core.Property, error) {
	if err := p.Validate(); err != nil {
		return core.Property{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.properties = append(s.properties, p)
	return p, nil
}

func (s *Store) UpdateProperty(_ context.Context, p core.Property) (core.Property, error) {
	if err := p.Validate(); err != nil {
		return core.Property{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.properties, func(x core.Property) bool { return x.ID == p.ID })
	if i < 0 {
		return core.Property{}, fmt.Errorf("property %s: %w", p.ID, store.ErrNotFound)
	}
	s.properties[i] = p
	return p, nil
}

// DeleteProperty removes the property only. Tenants pointing at it keep
// their reference and resolve as unknown in reports.
func (s *Store) DeleteProperty(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.properties)
	s.properties = slices.DeleteFunc(s.properties, func(p core.Property) bool { return p.ID == id })
	if len(s.properties) == n {
		return fmt.Errorf("property %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListTenants(_ context.Context) ([]core.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tenants), nil
}

func (s *Store) GetTenant(_ context.Context, id string) (core.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.tenants, func(t core.Tenant) bool { return t.ID == id })
	if i < 0 {
		return core.Tenant{}, fmt.Errorf("tenant %s: %w", id, store.ErrNotFound)
	}
	return s.tenants[i], nil
}

func (s *Store) CreateTenant(_ context.Context, t core.Tenant) (core.Tenant, error) {
	if err := t.Validate(); err != nil {
		return core.Tenant{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants = append(s.tenants, t)
	return t, nil
}

func (s *Store) UpdateTenant(_ context.Context, t core.Tenant) (core.Tenant, error) {
	if err := t.Validate(); err != nil {
		return core.Tenant{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.tenants, func(x core.Tenant) bool { return x.ID == t.ID })
	if i < 0 {
		return core.Tenant{}, fmt.Errorf("tenant %s: %w", t.ID, store.ErrNotFound)
	}
	s.tenants[i] = t
	return t, nil
}

// DeleteTenant keeps the tenant's payments; they count toward totals but no
// longer toward any property.
func (s *Store) DeleteTenant(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.tenants)
	s.tenants = slices.DeleteFunc(s.tenants, func(t core.Tenant) bool { return t.ID == id })
	if len(s.tenants) == n {
		return fmt.Errorf("tenant %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListPayments(_ context.Context) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.payments), nil
}

func (s *Store) ListTenantPayments(_ context.Context, tenantID string) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Payment
	for _, p := range s.payments {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) GetPayment(_ context.Context, id string) (core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.payments, func(p core.Payment) bool { return p.ID == id })
	if i < 0 {
		return core.Payment{}, fmt.Errorf("payment %s: %w", id, store.ErrNotFound)
	}
	return s.payments[i], nil
}

func (s *Store) RecordPayment(_ context.Context, p core.Payment) (core.Payment, error) {
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = append(s.payments, p)
	return p, nil
}

func (s *Store) UpdatePaymentStatus(_ context.Context, id string, status core.PaymentStatus) (core.Payment, error) {
	if err := status.Validate(); err != nil {
		return core.Payment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.payments, func(p core.Payment) bool { return p.ID == id })
	if i < 0 {
		return core.Payment{}, fmt.Errorf("payment %s: %w", id, store.ErrNotFound)
	}
	s.payments[i].Status = status
	return s.payments[i], nil
}

func (s *Store) ListNotifications(_ context.Context, tenantID string) ([]core.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Notification
	for _, n := range s.notifications {
		if n.TenantID == tenantID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *Store) CreateNotification(_ context.Context, n core.Notification) (core.Notification, error) {
	if err := n.Validate(); err != nil {
		return core.Notification{}, err
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return n, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id && s.notifications[i].TenantID == tenantID {
			s.notifications[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id, store.ErrNotFound)
}

func (s *Store) HasNotification(_ context.Context, tenantID string, typ core.NotificationType, date core.Date) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.TenantID == tenantID && n.Type == typ && n.Date.Equal(date.Time) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListMessages(_ context.Context, tenantID string) ([]core.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Message
	for _, m := range s.messages {
		if m.TenantID == tenantID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) CreateMessage(_ context.Context, m core.Message) (core.Message, error) {
	if err := m.Validate(); err != nil {
		return core.Message{}, err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
	return m, nil
}
