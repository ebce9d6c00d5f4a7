package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the hand-written statements of the rentdesk schema.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type PropertyRow struct {
	ID       string
	Name     string
	Address  string
	Units    int64
	ImageURL string
}

type TenantRow struct {
	ID         string
	PropertyID string
	Name       string
	Email      string
	Phone      string
	Unit       string
	RentCents  int64
	MoveInDate string
	RentDueDay int64
}

type PaymentRow struct {
	ID          string
	TenantID    string
	AmountCents int64
	PaidOn      string
	Status      string
	Method      string
	Reference   string
}

type NotificationRow struct {
	ID       string
	TenantID string
	Type     string
	Content  string
	NotifyOn string
	Read     bool
}

type MessageRow struct {
	ID        string
	TenantID  string
	FromAdmin bool
	Content   string
	SentAt    time.Time
}

const listProperties = `SELECT id, name, address, units, image_url FROM properties ORDER BY seq`

func (q *Queries) ListProperties(ctx context.Context) ([]PropertyRow, error) {
	rows, err := q.db.QueryContext(ctx, listProperties)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PropertyRow
	for rows.Next() {
		var i PropertyRow
		if err := rows.Scan(&i.ID, &i.Name, &i.Address, &i.Units, &i.ImageURL); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getProperty = `SELECT id, name, address, units, image_url FROM properties WHERE id = ?`

func (q *Queries) GetProperty(ctx context.Context, id string) (PropertyRow, error) {
	var i PropertyRow
	err := q.db.QueryRowContext(ctx, getProperty, id).Scan(&i.ID, &i.Name, &i.Address, &i.Units, &i.ImageURL)
	return i, err
}

const insertProperty = `INSERT INTO properties (id, name, address, units, image_url) VALUES (?, ?, ?, ?, ?)`

func (q *Queries) InsertProperty(ctx context.Context, p PropertyRow) error {
	_, err := q.db.ExecContext(ctx, insertProperty, p.ID, p.Name, p.Address, p.Units, p.ImageURL)
	return err
}

const updateProperty = `UPDATE properties SET name = ?, address = ?, units = ?, image_url = ? WHERE id = ?`

func (q *Queries) UpdateProperty(ctx context.Context, p PropertyRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateProperty, p.Name, p.Address, p.Units, p.ImageURL, p.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteProperty = `DELETE FROM properties WHERE id = ?`

func (q *Queries) DeleteProperty(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteProperty, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const tenantColumns = `id, property_id, name, email, phone, unit, rent_cents, move_in_date, rent_due_day`

func scanTenant(sc interface{ Scan(...any) error }) (TenantRow, error) {
	var i TenantRow
	err := sc.Scan(&i.ID, &i.PropertyID, &i.Name, &i.Email, &i.Phone, &i.Unit, &i.RentCents, &i.MoveInDate, &i.RentDueDay)
	return i, err
}

func (q *Queries) ListTenants(ctx context.Context) ([]TenantRow, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TenantRow
	for rows.Next() {
		i, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (q *Queries) GetTenant(ctx context.Context, id string) (TenantRow, error) {
	return scanTenant(q.db.QueryRowContext(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id))
}

const insertTenant = `INSERT INTO tenants (` + tenantColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertTenant(ctx context.Context, t TenantRow) error {
	_, err := q.db.ExecContext(ctx, insertTenant,
		t.ID, t.PropertyID, t.Name, t.Email, t.Phone, t.Unit, t.RentCents, t.MoveInDate, t.RentDueDay)
	return err
}

const updateTenant = `UPDATE tenants
SET property_id = ?, name = ?, email = ?, phone = ?, unit = ?, rent_cents = ?, move_in_date = ?, rent_due_day = ?
WHERE id = ?`

func (q *Queries) UpdateTenant(ctx context.Context, t TenantRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTenant,
		t.PropertyID, t.Name, t.Email, t.Phone, t.Unit, t.RentCents, t.MoveInDate, t.RentDueDay, t.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteTenant(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const paymentColumns = `id, tenant_id, amount_cents, paid_on, status, method, reference`

func scanPayment(sc interface{ Scan(...any) error }) (PaymentRow, error) {
	var i PaymentRow
	err := sc.Scan(&i.ID, &i.TenantID, &i.AmountCents, &i.PaidOn, &i.Status, &i.Method, &i.Reference)
	return i, err
}

func (q *Queries) listPayments(ctx context.Context, query string, args ...any) ([]PaymentRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PaymentRow
	for rows.Next() {
		i, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (q *Queries) ListPayments(ctx context.Context) ([]PaymentRow, error) {
	return q.listPayments(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY seq`)
}

func (q *Queries) ListTenantPayments(ctx context.Context, tenantID string) ([]PaymentRow, error) {
	return q.listPayments(ctx, `SELECT `+paymentColumns+` FROM payments WHERE tenant_id = ? ORDER BY seq`, tenantID)
}

func (q *Queries) GetPayment(ctx context.Context, id string) (PaymentRow, error) {
	return scanPayment(q.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id))
}

func (q *Queries) InsertPayment(ctx context.Context, p PaymentRow) error {
	_, err := q.db.ExecContext(ctx, `INSERT INTO payments (`+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TenantID, p.AmountCents, p.PaidOn, p.Status, p.Method, p.Reference)
	return err
}

const updatePaymentStatus = `UPDATE payments SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

func (q *Queries) UpdatePaymentStatus(ctx context.Context, id, status string) (int64, error) {
	res, err := q.db.ExecContext(ctx, updatePaymentStatus, status, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) ListNotifications(ctx context.Context, tenantID string) ([]NotificationRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, tenant_id, type, content, notify_on, read FROM notifications WHERE tenant_id = ? ORDER BY seq`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []NotificationRow
	for rows.Next() {
		var i NotificationRow
		if err := rows.Scan(&i.ID, &i.TenantID, &i.Type, &i.Content, &i.NotifyOn, &i.Read); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (q *Queries) InsertNotification(ctx context.Context, n NotificationRow) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO notifications (id, tenant_id, type, content, notify_on, read) VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.TenantID, n.Type, n.Content, n.NotifyOn, n.Read)
	return err
}

func (q *Queries) MarkNotificationRead(ctx context.Context, tenantID, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) CountNotifications(ctx context.Context, tenantID, typ, notifyOn string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE tenant_id = ? AND type = ? AND notify_on = ?`,
		tenantID, typ, notifyOn).Scan(&n)
	return n, err
}

func (q *Queries) ListMessages(ctx context.Context, tenantID string) ([]MessageRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, tenant_id, from_admin, content, sent_at FROM messages WHERE tenant_id = ? ORDER BY seq`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MessageRow
	for rows.Next() {
		var i MessageRow
		if err := rows.Scan(&i.ID, &i.TenantID, &i.FromAdmin, &i.Content, &i.SentAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (q *Queries) InsertMessage(ctx context.Context, m MessageRow) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO messages (id, tenant_id, from_admin, content, sent_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.TenantID, m.FromAdmin, m.Content, m.SentAt)
	return err
}
