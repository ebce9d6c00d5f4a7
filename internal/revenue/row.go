package revenue

import "rentdesk/internal/core"

// UnknownLabel is shown in place of a tenant or property that cannot be
// resolved.
const UnknownLabel = "Unknown"

// ReportRow is one flattened line of the payment report.
type ReportRow struct {
	PaymentID        string
	TenantName       string
	PropertyName     string
	Unit             string
	Amount           core.Money
	Date             core.Date
	Status           core.PaymentStatus
	Method           core.PaymentMethod
	Reference        string
	TenantResolved   bool
	PropertyResolved bool
}

// BuildReportRow joins a payment with its tenant and the tenant's property.
// Missing references leave the corresponding fields empty.
func BuildReportRow(payment core.Payment, tenants []core.Tenant, properties []core.Property) ReportRow {
	return NewIndex(tenants, properties).Row(payment)
}

// Row is BuildReportRow over a prebuilt index.
func (i Index) Row(payment core.Payment) ReportRow {
	row := ReportRow{
		PaymentID: payment.ID,
		Amount:    payment.Amount,
		Date:      payment.Date,
		Status:    payment.Status,
		Method:    payment.Method,
		Reference: payment.Reference,
	}
	tenant, ok := i.Tenant(payment.TenantID)
	if !ok {
		return row
	}
	row.TenantResolved = true
	row.TenantName = tenant.Name
	row.Unit = tenant.Unit
	if property, ok := i.Property(tenant.PropertyID); ok {
		row.PropertyResolved = true
		row.PropertyName = property.Name
	}
	return row
}

func (r ReportRow) TenantLabel() string {
	if !r.TenantResolved {
		return UnknownLabel
	}
	return r.TenantName
}

func (r ReportRow) PropertyLabel() string {
	if !r.PropertyResolved {
		return UnknownLabel
	}
	return r.PropertyName
}

// StatusLabel is the upper-case status badge text.
func (r ReportRow) StatusLabel() string {
	switch r.Status {
	case core.StatusCompleted:
		return "COMPLETED"
	case core.StatusPending:
		return "PENDING"
	case core.StatusFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}
