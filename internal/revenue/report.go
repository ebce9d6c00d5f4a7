package revenue

import (
	"sort"
	"time"

	"rentdesk/internal/core"
)

// ReportInput carries everything BuildReport reads.
type ReportInput struct {
	Period     core.Period
	Filter     PropertyFilter
	Payments   []core.Payment
	Tenants    []core.Tenant
	Properties []core.Property
	// GeneratedAt is stamped on the report; zero means time.Now.
	GeneratedAt time.Time
}

// PropertyRevenue is one line of the per-property summary.
type PropertyRevenue struct {
	PropertyID string
	Name       string // empty when the property is not in the reference data
	Amount     core.Money
}

// Label returns the property name or UnknownLabel.
func (p PropertyRevenue) Label() string {
	if p.Name == "" {
		return UnknownLabel
	}
	return p.Name
}

// Report is the consolidated view of one month.
//
// PeriodTotal covers the filtered payments only. AllTimeTotal covers every
// payment given to BuildReport, the figure the dashboard's headline tile
// shows. SummaryTotal is the sum of ByProperty and differs from PeriodTotal
// by the payments whose tenant is unresolved.
type Report struct {
	Period       core.Period
	Filter       PropertyFilter
	GeneratedAt  time.Time
	Payments     []core.Payment
	Rows         []ReportRow
	ByProperty   []PropertyRevenue
	ByStatus     map[core.PaymentStatus]core.Money
	PeriodTotal  core.Money
	SummaryTotal core.Money
	AllTimeTotal core.Money
}

// BuildReport filters, aggregates and joins in a single pass over shared
// lookups.
func BuildReport(in ReportInput) Report {
	idx := NewIndex(in.Tenants, in.Properties)
	filter := in.Filter
	if filter == "" {
		filter = AllProperties
	}
	generated := in.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	filtered := filterByMonth(in.Payments, in.Period, filter, idx)
	rows := make([]ReportRow, 0, len(filtered))
	for _, p := range filtered {
		rows = append(rows, idx.Row(p))
	}

	perProperty := perPropertyRevenue(filtered, idx)
	byProperty := make([]PropertyRevenue, 0, len(perProperty))
	var summary core.Money
	for id, amount := range perProperty {
		pr := PropertyRevenue{PropertyID: id, Amount: amount}
		if prop, ok := idx.Property(id); ok {
			pr.Name = prop.Name
		}
		byProperty = append(byProperty, pr)
		summary = summary.Add(amount)
	}
	sort.Slice(byProperty, func(i, j int) bool {
		if byProperty[i].Name != byProperty[j].Name {
			return byProperty[i].Name < byProperty[j].Name
		}
		return byProperty[i].PropertyID < byProperty[j].PropertyID
	})

	return Report{
		Period:       in.Period,
		Filter:       filter,
		GeneratedAt:  generated,
		Payments:     filtered,
		Rows:         rows,
		ByProperty:   byProperty,
		ByStatus:     StatusBreakdown(filtered),
		PeriodTotal:  TotalRevenue(filtered),
		SummaryTotal: summary,
		AllTimeTotal: TotalRevenue(in.Payments),
	}
}
