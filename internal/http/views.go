package http

import (
	"time"

	"rentdesk/internal/core"
	"rentdesk/internal/revenue"
)

// money is the wire form of an amount: KSH units plus exact cents.
type money struct {
	Amount float64 `json:"amount"`
	Cents  int64   `json:"amount_cents"`
}

func moneyOf(m core.Money) money {
	return money{Amount: m.Units(), Cents: m.Cents}
}

type propertyView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Units    int    `json:"units"`
	ImageURL string `json:"image_url,omitempty"`
}

func propertyViewOf(p core.Property) propertyView {
	return propertyView{ID: p.ID, Name: p.Name, Address: p.Address, Units: p.Units, ImageURL: p.ImageURL}
}

type tenantView struct {
	ID         string  `json:"id"`
	PropertyID string  `json:"property_id"`
	Name       string  `json:"name"`
	Email      string  `json:"email,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	Unit       string  `json:"unit"`
	Rent       float64 `json:"rent"`
	RentCents  int64   `json:"rent_cents"`
	MoveInDate string  `json:"move_in_date,omitempty"`
	RentDueDay int     `json:"rent_due_day"`
}

func tenantViewOf(t core.Tenant) tenantView {
	return tenantView{
		ID:         t.ID,
		PropertyID: t.PropertyID,
		Name:       t.Name,
		Email:      t.Email,
		Phone:      t.Phone,
		Unit:       t.Unit,
		Rent:       t.Rent.Units(),
		RentCents:  t.Rent.Cents,
		MoveInDate: t.MoveInDate.String(),
		RentDueDay: t.RentDueDay,
	}
}

type paymentView struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	money
	Date      string `json:"date"`
	Status    string `json:"status"`
	Method    string `json:"method,omitempty"`
	Reference string `json:"reference,omitempty"`
}

func paymentViewOf(p core.Payment) paymentView {
	return paymentView{
		ID:        p.ID,
		TenantID:  p.TenantID,
		money:     moneyOf(p.Amount),
		Date:      p.Date.String(),
		Status:    string(p.Status),
		Method:    string(p.Method),
		Reference: p.Reference,
	}
}

type notificationView struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Content string `json:"content"`
	Date    string `json:"date"`
	Read    bool   `json:"read"`
}

func notificationViewOf(n core.Notification) notificationView {
	return notificationView{ID: n.ID, Type: string(n.Type), Content: n.Content, Date: n.Date.String(), Read: n.Read}
}

type messageView struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	FromAdmin bool      `json:"from_admin"`
	Content   string    `json:"content"`
	SentAt    time.Time `json:"sent_at"`
}

func messageViewOf(m core.Message) messageView {
	return messageView{ID: m.ID, TenantID: m.TenantID, FromAdmin: m.FromAdmin, Content: m.Content, SentAt: m.SentAt}
}

type reportRowView struct {
	PaymentID string `json:"payment_id"`
	Tenant    string `json:"tenant"`
	Property  string `json:"property"`
	Unit      string `json:"unit"`
	money
	Date      string `json:"date"`
	Status    string `json:"status"`
	Method    string `json:"method,omitempty"`
	Reference string `json:"reference,omitempty"`
}

type propertyRevenueView struct {
	PropertyID string `json:"property_id"`
	Name       string `json:"name"`
	money
}

// reportView is the revenue dashboard payload. total covers every filtered
// payment; summary_total only those attributed to a known property.
type reportView struct {
	Period       string                `json:"period"`
	Label        string                `json:"label"`
	Property     string                `json:"property"`
	GeneratedAt  time.Time             `json:"generated_at"`
	Total        money                 `json:"total"`
	SummaryTotal money                 `json:"summary_total"`
	AllTimeTotal money                 `json:"all_time_total"`
	ByProperty   []propertyRevenueView `json:"by_property"`
	ByStatus     map[string]money      `json:"by_status"`
	Rows         []reportRowView       `json:"rows"`
}

func reportViewOf(r revenue.Report) reportView {
	v := reportView{
		Period:       r.Period.String(),
		Label:        r.Period.Label(),
		Property:     string(r.Filter),
		GeneratedAt:  r.GeneratedAt,
		Total:        moneyOf(r.PeriodTotal),
		SummaryTotal: moneyOf(r.SummaryTotal),
		AllTimeTotal: moneyOf(r.AllTimeTotal),
		ByProperty:   make([]propertyRevenueView, 0, len(r.ByProperty)),
		ByStatus:     make(map[string]money, len(r.ByStatus)),
		Rows:         make([]reportRowView, 0, len(r.Rows)),
	}
	for _, p := range r.ByProperty {
		v.ByProperty = append(v.ByProperty, propertyRevenueView{PropertyID: p.PropertyID, Name: p.Label(), money: moneyOf(p.Amount)})
	}
	for status, amount := range r.ByStatus {
		v.ByStatus[string(status)] = moneyOf(amount)
	}
	for _, row := range r.Rows {
		v.Rows = append(v.Rows, reportRowView{
			PaymentID: row.PaymentID,
			Tenant:    row.TenantLabel(),
			Property:  row.PropertyLabel(),
			Unit:      row.Unit,
			money:     moneyOf(row.Amount),
			Date:      row.Date.String(),
			Status:    string(row.Status),
			Method:    string(row.Method),
			Reference: row.Reference,
		})
	}
	return v
}
