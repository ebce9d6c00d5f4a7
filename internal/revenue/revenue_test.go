package revenue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk/internal/core"
)

var jan2025 = core.Period{Year: 2025, Month: time.January}

func ksh(units int64) core.Money { return core.Money{Cents: units * 100} }

func payment(id, tenant string, amount int64, date core.Date, status core.PaymentStatus) core.Payment {
	return core.Payment{ID: id, TenantID: tenant, Amount: ksh(amount), Date: date, Status: status}
}

func scenarioPayments() []core.Payment {
	return []core.Payment{
		payment("1", "T1", 15000, core.NewDate(2025, time.January, 5), core.StatusCompleted),
		payment("2", "T2", 18000, core.NewDate(2025, time.January, 10), core.StatusPending),
	}
}

func scenarioTenants() []core.Tenant {
	return []core.Tenant{
		{ID: "T1", PropertyID: "P1", Name: "John Doe", Unit: "101", Rent: ksh(15000)},
		{ID: "T2", PropertyID: "P1", Name: "Jane Smith", Unit: "102", Rent: ksh(18000)},
	}
}

func scenarioProperties() []core.Property {
	return []core.Property{
		{ID: "P1", Name: "Sunset Apartments", Units: 24},
		{ID: "P2", Name: "Ocean View Complex", Units: 16},
	}
}

func ids(ps []core.Payment) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestScenarioSameMonthAllProperties(t *testing.T) {
	payments, tenants := scenarioPayments(), scenarioTenants()
	period, err := core.PeriodFromIndex(2025, 0)
	require.NoError(t, err)

	got := FilterByMonth(payments, period, AllProperties, tenants)
	assert.Equal(t, []string{"1", "2"}, ids(got))
	assert.Equal(t, map[string]core.Money{"P1": ksh(33000)}, PerPropertyRevenue(payments, tenants))
	assert.Equal(t, ksh(33000), TotalRevenue(payments))
}

func TestScenarioOtherMonthIsEmpty(t *testing.T) {
	got := FilterByMonth(scenarioPayments(), core.Period{Year: 2025, Month: time.February}, AllProperties, scenarioTenants())
	assert.Empty(t, got)
}

func TestScenarioUnresolvedTenant(t *testing.T) {
	payments := append(scenarioPayments(), payment("3", "T9", 5000, core.NewDate(2025, time.January, 12), core.StatusCompleted))
	tenants := scenarioTenants()

	assert.Equal(t, []string{"1", "2"}, ids(FilterByMonth(payments, jan2025, "P1", tenants)))
	assert.Equal(t, []string{"1", "2", "3"}, ids(FilterByMonth(payments, jan2025, AllProperties, tenants)))
	assert.Equal(t, map[string]core.Money{"P1": ksh(33000)}, PerPropertyRevenue(payments, tenants))
	assert.Equal(t, ksh(38000), TotalRevenue(payments))
}

func TestScenarioFilterWithoutMatches(t *testing.T) {
	payments, tenants := scenarioPayments(), scenarioTenants()
	assert.Empty(t, FilterByMonth(payments, jan2025, "P2", tenants))
	assert.Equal(t, map[string]core.Money{"P1": ksh(33000)}, PerPropertyRevenue(payments, tenants))
}

func mixedLedger() ([]core.Payment, []core.Tenant) {
	tenants := []core.Tenant{
		{ID: "a", PropertyID: "P1"},
		{ID: "b", PropertyID: "P2"},
		{ID: "c", PropertyID: "P1"},
	}
	payments := []core.Payment{
		payment("1", "a", 100, core.NewDate(2025, time.January, 31), core.StatusCompleted),
		payment("2", "b", 200, core.NewDate(2025, time.January, 1), core.StatusCompleted),
		payment("3", "zz", 300, core.NewDate(2025, time.January, 15), core.StatusFailed),
		payment("4", "c", 400, core.NewDate(2024, time.January, 15), core.StatusCompleted),
		payment("5", "c", 500, core.NewDate(2025, time.February, 1), core.StatusPending),
		payment("6", "a", 600, core.NewDate(2025, time.January, 2), core.StatusPending),
		payment("7", "b", 700, core.NewDate(2024, time.December, 31), core.StatusCompleted),
	}
	return payments, tenants
}

func TestFilterByMonthMatchesCalendarMonthOnly(t *testing.T) {
	payments, tenants := mixedLedger()
	got := FilterByMonth(payments, jan2025, AllProperties, tenants)
	for _, p := range payments {
		want := p.Date.Year() == 2025 && p.Date.Month() == time.January
		assert.Equal(t, want, containsID(got, p.ID), "payment %s", p.ID)
	}
}

func TestFilterByMonthNarrowsAndKeepsOrder(t *testing.T) {
	payments, tenants := mixedLedger()
	all := FilterByMonth(payments, jan2025, AllProperties, tenants)
	assert.Equal(t, []string{"1", "2", "3", "6"}, ids(all))

	for _, f := range []PropertyFilter{"P1", "P2", "P3"} {
		narrowed := FilterByMonth(payments, jan2025, f, tenants)
		for _, p := range narrowed {
			assert.True(t, containsID(all, p.ID), "filter %s kept %s", f, p.ID)
		}
		assertSubsequence(t, ids(all), ids(narrowed))
	}
	assert.Equal(t, []string{"1", "6"}, ids(FilterByMonth(payments, jan2025, "P1", tenants)))
	assert.Equal(t, []string{"2"}, ids(FilterByMonth(payments, jan2025, "P2", tenants)))
}

func TestPerPropertyNeverExceedsTotal(t *testing.T) {
	payments, tenants := mixedLedger()
	var sum core.Money
	for _, m := range PerPropertyRevenue(payments, tenants) {
		sum = sum.Add(m)
	}
	total := TotalRevenue(payments)
	assert.LessOrEqual(t, sum.Cents, total.Cents)
	assert.Equal(t, total.Cents-ksh(300).Cents, sum.Cents)

	resolved := append([]core.Tenant{}, tenants...)
	resolved = append(resolved, core.Tenant{ID: "zz", PropertyID: "P3"})
	sum = core.Money{}
	for _, m := range PerPropertyRevenue(payments, resolved) {
		sum = sum.Add(m)
	}
	assert.Equal(t, total, sum)
}

func TestOperationsAreRepeatableAndDoNotMutate(t *testing.T) {
	payments, tenants := mixedLedger()
	properties := scenarioProperties()
	snapshot := append([]core.Payment{}, payments...)

	assert.Equal(t, FilterByMonth(payments, jan2025, "P1", tenants), FilterByMonth(payments, jan2025, "P1", tenants))
	assert.Equal(t, PerPropertyRevenue(payments, tenants), PerPropertyRevenue(payments, tenants))
	assert.Equal(t, TotalRevenue(payments), TotalRevenue(payments))
	assert.Equal(t, BuildReportRow(payments[0], tenants, properties), BuildReportRow(payments[0], tenants, properties))
	assert.Equal(t, snapshot, payments)
}

func TestFilterByMonthEmptyInputs(t *testing.T) {
	assert.Empty(t, FilterByMonth(nil, jan2025, AllProperties, nil))
	assert.Empty(t, PerPropertyRevenue(nil, nil))
	assert.Equal(t, core.Money{}, TotalRevenue(nil))
	// no tenants at all: specific filter excludes everything, "all" keeps it
	payments := scenarioPayments()
	assert.Empty(t, FilterByMonth(payments, jan2025, "P1", nil))
	assert.Len(t, FilterByMonth(payments, jan2025, AllProperties, nil), 2)
}

func TestStatusBreakdown(t *testing.T) {
	payments, _ := mixedLedger()
	got := StatusBreakdown(payments)
	assert.Equal(t, ksh(100+200+400+700), got[core.StatusCompleted])
	assert.Equal(t, ksh(500+600), got[core.StatusPending])
	assert.Equal(t, ksh(300), got[core.StatusFailed])
}

func TestParsePropertyFilter(t *testing.T) {
	assert.Equal(t, AllProperties, ParsePropertyFilter(""))
	assert.Equal(t, AllProperties, ParsePropertyFilter("all"))
	assert.Equal(t, PropertyFilter("P1"), ParsePropertyFilter("P1"))
}

func containsID(ps []core.Payment, id string) bool {
	for _, p := range ps {
		if p.ID == id {
			return true
		}
	}
	return false
}

func assertSubsequence(t *testing.T, full, sub []string) {
	t.Helper()
	i := 0
	for _, id := range full {
		if i < len(sub) && sub[i] == id {
			i++
		}
	}
	assert.Equal(t, len(sub), i, "%v is not an ordered subsequence of %v", sub, full)
}
