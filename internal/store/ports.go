// Package store declares the persistence ports of rentdesk. Adapters live in
// store/memory and storage (SQLite).
package store

import (
	"context"
	"errors"

	"rentdesk/internal/core"
)

// ErrNotFound is returned by every adapter when a record does not exist.
var ErrNotFound = errors.New("not found")

type (
	PropertyStore interface {
		ListProperties(ctx context.Context) ([]core.Property, error)
		GetProperty(ctx context.Context, id string) (core.Property, error)
		CreateProperty(ctx context.Context, p core.Property) (core.Property, error)
		UpdateProperty(ctx context.Context, p core.Property) (core.Property, error)
		DeleteProperty(ctx context.Context, id string) error
	}

	TenantStore interface {
		ListTenants(ctx context.Context) ([]core.Tenant, error)
		GetTenant(ctx context.Context, id string) (core.Tenant, error)
		CreateTenant(ctx context.Context, t core.Tenant) (core.Tenant, error)
		UpdateTenant(ctx context.Context, t core.Tenant) (core.Tenant, error)
		DeleteTenant(ctx context.Context, id string) error
	}

	// PaymentStore lists payments in the order they were recorded.
	PaymentStore interface {
		ListPayments(ctx context.Context) ([]core.Payment, error)
		ListTenantPayments(ctx context.Context, tenantID string) ([]core.Payment, error)
		GetPayment(ctx context.Context, id string) (core.Payment, error)
		RecordPayment(ctx context.Context, p core.Payment) (core.Payment, error)
		UpdatePaymentStatus(ctx context.Context, id string, status core.PaymentStatus) (core.Payment, error)
	}

	NotificationStore interface {
		ListNotifications(ctx context.Context, tenantID string) ([]core.Notification, error)
		CreateNotification(ctx context.Context, n core.Notification) (core.Notification, error)
		MarkNotificationRead(ctx context.Context, tenantID, id string) error
		// HasNotification reports whether a notification of the given type
		// already exists for the tenant on date.
		HasNotification(ctx context.Context, tenantID string, typ core.NotificationType, date core.Date) (bool, error)
	}

	MessageStore interface {
		ListMessages(ctx context.Context, tenantID string) ([]core.Message, error)
		CreateMessage(ctx context.Context, m core.Message) (core.Message, error)
	}

	// Repository is the union every backend provides.
	Repository interface {
		PropertyStore
		TenantStore
		PaymentStore
		NotificationStore
		MessageStore
		Close() error
	}
)
