// Package storage is the SQLite Repository. The schema is owned by the
// embedded migrations.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"rentdesk/internal/core"
	"rentdesk/internal/log"
	"rentdesk/internal/store"

	_ "modernc.org/sqlite"
)

// ErrCorruptRow marks a stored row that no longer decodes into a domain value.
var ErrCorruptRow = errors.New("corrupt stored row")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
}

var _ store.Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db), logger: logger.WithComponent(log.ComponentStorage)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func notFound(kind, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
	}
	return fmt.Errorf("get %s: %w", kind, err)
}

func affected(kind, id string, n int64, err error) error {
	if err != nil {
		return fmt.Errorf("write %s: %w", kind, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
	}
	return nil
}

// parseStoredDate decodes a date column. Empty is the zero Date; anything
// else that does not parse is ErrCorruptRow.
func parseStoredDate(kind, id, column, s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: %s %s %s=%q: %v", ErrCorruptRow, kind, id, column, s, err)
	}
	return d, nil
}

// Properties

func propertyFromRow(p PropertyRow) core.Property {
	return core.Property{ID: p.ID, Name: p.Name, Address: p.Address, Units: int(p.Units), ImageURL: p.ImageURL}
}

func propertyToRow(p core.Property) PropertyRow {
	return PropertyRow{ID: p.ID, Name: p.Name, Address: p.Address, Units: int64(p.Units), ImageURL: p.ImageURL}
}

func (r *SQLiteRepository) ListProperties(ctx context.Context) ([]core.Property, error) {
	rows, err := r.queries.ListProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	out := make([]core.Property, len(rows))
	for i, p := range rows {
		out[i] = propertyFromRow(p)
	}
	return out, nil
}

func (r *SQLiteRepository) GetProperty(ctx context.Context, id string) (core.Property, error) {
	row, err := r.queries.GetProperty(ctx, id)
	if err != nil {
		return core.Property{}, notFound("property", id, err)
	}
	return propertyFromRow(row), nil
}

func (r *SQLiteRepository) CreateProperty(ctx context.Context, p core.Property) (core.Property, error) {
	if err := p.Validate(); err != nil {
		return core.Property{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := r.queries.InsertProperty(ctx, propertyToRow(p)); err != nil {
		return core.Property{}, fmt.Errorf("create property: %w", err)
	}
	r.logger.InfoContext(ctx, "Property saved to SQLite", "id", p.ID, "name", p.Name)
	return p, nil
}

func (r *SQLiteRepository) UpdateProperty(ctx context.Context, p core.Property) (core.Property, error) {
	if err := p.Validate(); err != nil {
		return core.Property{}, err
	}
	n, err := r.queries.UpdateProperty(ctx, propertyToRow(p))
	if err := affected("property", p.ID, n, err); err != nil {
		return core.Property{}, err
	}
	return p, nil
}

func (r *SQLiteRepository) DeleteProperty(ctx context.Context, id string) error {
	n, err := r.queries.DeleteProperty(ctx, id)
	return affected("property", id, n, err)
}

// Tenants

func tenantFromRow(t TenantRow) (core.Tenant, error) {
	moveIn, err := parseStoredDate("tenant", t.ID, "move_in_date", t.MoveInDate)
	if err != nil {
		return core.Tenant{}, err
	}
	return core.Tenant{
		ID:         t.ID,
		PropertyID: t.PropertyID,
		Name:       t.Name,
		Email:      t.Email,
		Phone:      t.Phone,
		Unit:       t.Unit,
		Rent:       core.Money{Cents: t.RentCents},
		MoveInDate: moveIn,
		RentDueDay: int(t.RentDueDay),
	}, nil
}

func tenantToRow(t core.Tenant) TenantRow {
	return TenantRow{
		ID:         t.ID,
		PropertyID: t.PropertyID,
		Name:       t.Name,
		Email:      t.Email,
		Phone:      t.Phone,
		Unit:       t.Unit,
		RentCents:  t.Rent.Cents,
		MoveInDate: t.MoveInDate.String(),
		RentDueDay: int64(t.RentDueDay),
	}
}

func (r *SQLiteRepository) ListTenants(ctx context.Context) ([]core.Tenant, error) {
	rows, err := r.queries.ListTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	out := make([]core.Tenant, len(rows))
	for i, row := range rows {
		if out[i], err = tenantFromRow(row); err != nil {
			return nil, fmt.Errorf("list tenants: %w", err)
		}
	}
	return out, nil
}

func (r *SQLiteRepository) GetTenant(ctx context.Context, id string) (core.Tenant, error) {
	row, err := r.queries.GetTenant(ctx, id)
	if err != nil {
		return core.Tenant{}, notFound("tenant", id, err)
	}
	return tenantFromRow(row)
}

func (r *SQLiteRepository) CreateTenant(ctx context.Context, t core.Tenant) (core.Tenant, error) {
	if err := t.Validate(); err != nil {
		return core.Tenant{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := r.queries.InsertTenant(ctx, tenantToRow(t)); err != nil {
		return core.Tenant{}, fmt.Errorf("create tenant: %w", err)
	}
	r.logger.InfoContext(ctx, "Tenant saved to SQLite", "id", t.ID, "property_id", t.PropertyID, "unit", t.Unit)
	return t, nil
}

func (r *SQLiteRepository) UpdateTenant(ctx context.Context, t core.Tenant) (core.Tenant, error) {
	if err := t.Validate(); err != nil {
		return core.Tenant{}, err
	}
	n, err := r.queries.UpdateTenant(ctx, tenantToRow(t))
	if err := affected("tenant", t.ID, n, err); err != nil {
		return core.Tenant{}, err
	}
	return t, nil
}

func (r *SQLiteRepository) DeleteTenant(ctx context.Context, id string) error {
	n, err := r.queries.DeleteTenant(ctx, id)
	return affected("tenant", id, n, err)
}

// Payments

func paymentFromRow(p PaymentRow) (core.Payment, error) {
	paidOn, err := parseStoredDate("payment", p.ID, "paid_on", p.PaidOn)
	if err != nil {
		return core.Payment{}, err
	}
	return core.Payment{
		ID:        p.ID,
		TenantID:  p.TenantID,
		Amount:    core.Money{Cents: p.AmountCents},
		Date:      paidOn,
		Status:    core.PaymentStatus(p.Status),
		Method:    core.PaymentMethod(p.Method),
		Reference: p.Reference,
	}, nil
}

func paymentsFromRows(rows []PaymentRow) ([]core.Payment, error) {
	out := make([]core.Payment, len(rows))
	for i, row := range rows {
		var err error
		if out[i], err = paymentFromRow(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *SQLiteRepository) ListPayments(ctx context.Context) ([]core.Payment, error) {
	rows, err := r.queries.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	out, err := paymentsFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) ListTenantPayments(ctx context.Context, tenantID string) ([]core.Payment, error) {
	rows, err := r.queries.ListTenantPayments(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list tenant payments: %w", err)
	}
	out, err := paymentsFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("list tenant payments: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetPayment(ctx context.Context, id string) (core.Payment, error) {
	row, err := r.queries.GetPayment(ctx, id)
	if err != nil {
		return core.Payment{}, notFound("payment", id, err)
	}
	return paymentFromRow(row)
}

func (r *SQLiteRepository) RecordPayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	err := r.queries.InsertPayment(ctx, PaymentRow{
		ID:          p.ID,
		TenantID:    p.TenantID,
		AmountCents: p.Amount.Cents,
		PaidOn:      p.Date.String(),
		Status:      string(p.Status),
		Method:      string(p.Method),
		Reference:   p.Reference,
	})
	if err != nil {
		return core.Payment{}, fmt.Errorf("record payment: %w", err)
	}
	r.logger.InfoContext(ctx, "Payment saved to SQLite",
		"id", p.ID,
		"tenant_id", p.TenantID,
		"amount_cents", p.Amount.Cents,
		"status", p.Status)
	return p, nil
}

func (r *SQLiteRepository) UpdatePaymentStatus(ctx context.Context, id string, status core.PaymentStatus) (core.Payment, error) {
	if err := status.Validate(); err != nil {
		return core.Payment{}, err
	}
	n, err := r.queries.UpdatePaymentStatus(ctx, id, string(status))
	if err := affected("payment", id, n, err); err != nil {
		return core.Payment{}, err
	}
	return r.GetPayment(ctx, id)
}

// Notifications

func (r *SQLiteRepository) ListNotifications(ctx context.Context, tenantID string) ([]core.Notification, error) {
	rows, err := r.queries.ListNotifications(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]core.Notification, len(rows))
	for i, n := range rows {
		date, err := parseStoredDate("notification", n.ID, "notify_on", n.NotifyOn)
		if err != nil {
			return nil, fmt.Errorf("list notifications: %w", err)
		}
		out[i] = core.Notification{
			ID:       n.ID,
			TenantID: n.TenantID,
			Type:     core.NotificationType(n.Type),
			Content:  n.Content,
			Date:     date,
			Read:     n.Read,
		}
	}
	return out, nil
}

func (r *SQLiteRepository) CreateNotification(ctx context.Context, n core.Notification) (core.Notification, error) {
	if err := n.Validate(); err != nil {
		return core.Notification{}, err
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	err := r.queries.InsertNotification(ctx, NotificationRow{
		ID:       n.ID,
		TenantID: n.TenantID,
		Type:     string(n.Type),
		Content:  n.Content,
		NotifyOn: n.Date.String(),
		Read:     n.Read,
	})
	if err != nil {
		return core.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) MarkNotificationRead(ctx context.Context, tenantID, id string) error {
	n, err := r.queries.MarkNotificationRead(ctx, tenantID, id)
	return affected("notification", id, n, err)
}

func (r *SQLiteRepository) HasNotification(ctx context.Context, tenantID string, typ core.NotificationType, date core.Date) (bool, error) {
	n, err := r.queries.CountNotifications(ctx, tenantID, string(typ), date.String())
	if err != nil {
		return false, fmt.Errorf("count notifications: %w", err)
	}
	return n > 0, nil
}

// Messages

func (r *SQLiteRepository) ListMessages(ctx context.Context, tenantID string) ([]core.Message, error) {
	rows, err := r.queries.ListMessages(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	out := make([]core.Message, len(rows))
	for i, m := range rows {
		out[i] = core.Message{ID: m.ID, TenantID: m.TenantID, FromAdmin: m.FromAdmin, Content: m.Content, SentAt: m.SentAt}
	}
	return out, nil
}

func (r *SQLiteRepository) CreateMessage(ctx context.Context, m core.Message) (core.Message, error) {
	if err := m.Validate(); err != nil {
		return core.Message{}, err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}
	err := r.queries.InsertMessage(ctx, MessageRow{
		ID: m.ID, TenantID: m.TenantID, FromAdmin: m.FromAdmin, Content: m.Content, SentAt: m.SentAt,
	})
	if err != nil {
		return core.Message{}, fmt.Errorf("create message: %w", err)
	}
	return m, nil
}
