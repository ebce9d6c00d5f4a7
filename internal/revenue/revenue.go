// Package revenue filters, aggregates and joins rent payments for the
// landlord dashboard and the payment report.
//
// Every function here is pure: inputs are read, never modified, and results
// are freshly allocated. A payment belongs to a property only through its
// tenant; payments whose tenant cannot be resolved still count toward totals
// but are left out of per-property figures.
package revenue

import "rentdesk/internal/core"

// PropertyFilter restricts a listing to one property ID, or to none with
// AllProperties.
type PropertyFilter string

// AllProperties disables property filtering.
const AllProperties PropertyFilter = "all"

// ParsePropertyFilter maps an empty value to AllProperties.
func ParsePropertyFilter(s string) PropertyFilter {
	if s == "" {
		return AllProperties
	}
	return PropertyFilter(s)
}

func (f PropertyFilter) IsAll() bool { return f == AllProperties }

// FilterByMonth returns the payments dated in period and, unless filter is
// AllProperties, whose tenant lives in the filtered property. Order is
// preserved.
func FilterByMonth(payments []core.Payment, period core.Period, filter PropertyFilter, tenants []core.Tenant) []core.Payment {
	return filterByMonth(payments, period, filter, NewIndex(tenants, nil))
}

func filterByMonth(payments []core.Payment, period core.Period, filter PropertyFilter, idx Index) []core.Payment {
	out := make([]core.Payment, 0, len(payments))
	for _, p := range payments {
		if !period.Contains(p.Date) {
			continue
		}
		if !filter.IsAll() {
			propertyID, ok := idx.PropertyOf(p)
			if !ok || propertyID != string(filter) {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// TotalRevenue sums every payment in the slice regardless of status or
// tenant resolution.
func TotalRevenue(payments []core.Payment) core.Money {
	var total core.Money
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// PerPropertyRevenue sums payment amounts by the property of each payment's
// tenant. Properties without payments are absent from the map.
func PerPropertyRevenue(payments []core.Payment, tenants []core.Tenant) map[string]core.Money {
	return perPropertyRevenue(payments, NewIndex(tenants, nil))
}

func perPropertyRevenue(payments []core.Payment, idx Index) map[string]core.Money {
	out := make(map[string]core.Money)
	for _, p := range payments {
		propertyID, ok := idx.PropertyOf(p)
		if !ok {
			continue
		}
		out[propertyID] = out[propertyID].Add(p.Amount)
	}
	return out
}

// StatusBreakdown sums payment amounts per status.
func StatusBreakdown(payments []core.Payment) map[core.PaymentStatus]core.Money {
	out := make(map[core.PaymentStatus]core.Money)
	for _, p := range payments {
		out[p.Status] = out[p.Status].Add(p.Amount)
	}
	return out
}
