package services

import (
	"fmt"

	"rentdesk/internal/core"
)

// ReminderRule decides whether a tenant should receive a notification today.
// Each notification type has its own rule.
type ReminderRule interface {
	// Check returns the notification to create, if any. payments holds the
	// tenant's own payments.
	Check(tenant core.Tenant, payments []core.Payment, today core.Date) (core.Notification, bool)
}

// dueDay returns the tenant's due day, falling back to the default.
func dueDay(t core.Tenant) int {
	if t.RentDueDay < 1 || t.RentDueDay > 28 {
		return core.DefaultRentDueDay
	}
	return t.RentDueDay
}

// DueDateIn is the tenant's rent due date in period p.
func DueDateIn(t core.Tenant, p core.Period) core.Date {
	return core.NewDate(p.Year, p.Month, dueDay(t))
}

// NextDueDate is this month's due date when it has not been reached yet,
// otherwise next month's.
func NextDueDate(t core.Tenant, today core.Date) core.Date {
	if today.Day() < dueDay(t) {
		return DueDateIn(t, today.Period())
	}
	next := today.AddDate(0, 1, 1-today.Day())
	return core.NewDate(next.Year(), next.Month(), dueDay(t))
}

// DueTomorrowRule notifies on the day before the next due date.
type DueTomorrowRule struct{}

func (DueTomorrowRule) Check(t core.Tenant, _ []core.Payment, today core.Date) (core.Notification, bool) {
	due := NextDueDate(t, today)
	if !today.AddDate(0, 0, 1).Equal(due.Time) {
		return core.Notification{}, false
	}
	return core.Notification{
		TenantID: t.ID,
		Type:     core.NotificationPaymentDue,
		Content:  "Rent payment due tomorrow",
		Date:     today,
	}, true
}

// OverdueRule notifies once the due day of the current month has passed
// without a completed payment dated in that month.
type OverdueRule struct{}

func (OverdueRule) Check(t core.Tenant, payments []core.Payment, today core.Date) (core.Notification, bool) {
	period := today.Period()
	due := DueDateIn(t, period)
	if !today.After(due.Time) {
		return core.Notification{}, false
	}
	// Tenants who moved in after this month's due date owe nothing yet.
	if !t.MoveInDate.IsZero() && t.MoveInDate.After(due.Time) {
		return core.Notification{}, false
	}
	for _, p := range payments {
		if p.Status == core.StatusCompleted && period.Contains(p.Date) {
			return core.Notification{}, false
		}
	}
	return core.Notification{
		TenantID: t.ID,
		Type:     core.NotificationPaymentOverdue,
		Content:  fmt.Sprintf("Rent payment overdue since %s", due.Display()),
		Date:     due,
	}, true
}

// reminderRules maps notification types to their rules.
var reminderRules = map[core.NotificationType]ReminderRule{
	core.NotificationPaymentDue:     DueTomorrowRule{},
	core.NotificationPaymentOverdue: OverdueRule{},
}

// reminderOrder fixes the evaluation order of the registered rules.
var reminderOrder = []core.NotificationType{
	core.NotificationPaymentDue,
	core.NotificationPaymentOverdue,
}

// GetReminderRule returns the rule registered for typ.
func GetReminderRule(typ core.NotificationType) (ReminderRule, error) {
	rule, ok := reminderRules[typ]
	if !ok {
		return nil, fmt.Errorf("no reminder rule for notification type: %s", typ)
	}
	return rule, nil
}

// RegisterReminderRule adds or replaces the rule for typ. Not safe for
// concurrent use with a running ReminderService.
func RegisterReminderRule(typ core.NotificationType, rule ReminderRule) {
	if _, ok := reminderRules[typ]; !ok {
		reminderOrder = append(reminderOrder, typ)
	}
	reminderRules[typ] = rule
}
