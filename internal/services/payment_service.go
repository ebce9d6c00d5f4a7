// Package services holds the orchestration between stores, the revenue
// engine and the message bus.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rentdesk/internal/core"
	"rentdesk/internal/log"
	"rentdesk/internal/metrics"
	"rentdesk/internal/store"
)

// ErrUnknownTenant is returned when a payment names a tenant that does not exist.
var ErrUnknownTenant = errors.New("unknown tenant")

// Publisher announces recorded payments. *amqp.Client satisfies it.
type Publisher interface {
	PublishPaymentRecorded(ctx context.Context, paymentID, status string) error
}

// PaymentRepository is the subset of store.Repository PaymentService uses.
type PaymentRepository interface {
	GetTenant(ctx context.Context, id string) (core.Tenant, error)
	GetPayment(ctx context.Context, id string) (core.Payment, error)
	RecordPayment(ctx context.Context, p core.Payment) (core.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id string, status core.PaymentStatus) (core.Payment, error)
}

// PaymentService stores payments and publishes a payment.recorded message
// for each change. Publishing is best effort: the store is the source of truth.
type PaymentService struct {
	repo      PaymentRepository
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *log.Logger
	now       func() time.Time
}

// NewPaymentService wires the service. publisher and m may be nil.
func NewPaymentService(repo PaymentRepository, publisher Publisher, m *metrics.Metrics, logger *log.Logger) *PaymentService {
	if logger == nil {
		logger = log.Discard()
	}
	return &PaymentService{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger.WithComponent(log.ComponentPayment),
		now:       time.Now,
	}
}

func (s *PaymentService) today() core.Date {
	return core.DateOf(s.now())
}

// Record stores a payment entered by the landlord. A zero date means today and
// an empty status means completed.
func (s *PaymentService) Record(ctx context.Context, p core.Payment) (core.Payment, error) {
	if p.Date.IsZero() {
		p.Date = s.today()
	}
	if p.Status == "" {
		p.Status = core.StatusCompleted
	}
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}
	if _, err := s.tenant(ctx, p.TenantID); err != nil {
		return core.Payment{}, err
	}
	return s.store(ctx, p)
}

// SubmitTenantPayment records a payment made from the tenant portal. It is
// always pending until the landlord confirms it. A zero amount means the
// tenant's monthly rent.
func (s *PaymentService) SubmitTenantPayment(ctx context.Context, tenantID string, p core.Payment) (core.Payment, error) {
	p.TenantID = tenantID
	p.Status = core.StatusPending
	if p.Date.IsZero() {
		p.Date = s.today()
	}
	if p.Method == "" {
		return core.Payment{}, core.ErrInvalidMethod
	}
	p.Reference = strings.TrimSpace(p.Reference)
	if p.Reference == "" {
		return core.Payment{}, core.ErrEmptyReference
	}

	tenant, err := s.tenant(ctx, tenantID)
	if err != nil {
		return core.Payment{}, err
	}
	if p.Amount.Cents == 0 {
		p.Amount = tenant.Rent
	}
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}
	return s.store(ctx, p)
}

// UpdateStatus moves a payment to status, typically pending to completed.
func (s *PaymentService) UpdateStatus(ctx context.Context, id string, status core.PaymentStatus) (core.Payment, error) {
	if err := status.Validate(); err != nil {
		return core.Payment{}, err
	}
	p, err := s.repo.UpdatePaymentStatus(ctx, id, status)
	if err != nil {
		return core.Payment{}, fmt.Errorf("update payment status: %w", err)
	}
	s.logger.InfoContext(ctx, "Payment status updated",
		log.FieldPaymentID, p.ID,
		log.FieldStatus, string(p.Status))
	s.publish(ctx, p)
	return p, nil
}

func (s *PaymentService) tenant(ctx context.Context, id string) (core.Tenant, error) {
	t, err := s.repo.GetTenant(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return core.Tenant{}, fmt.Errorf("%w: %s", ErrUnknownTenant, id)
	}
	if err != nil {
		return core.Tenant{}, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}

func (s *PaymentService) store(ctx context.Context, p core.Payment) (core.Payment, error) {
	saved, err := s.repo.RecordPayment(ctx, p)
	if err != nil {
		return core.Payment{}, fmt.Errorf("record payment: %w", err)
	}
	log.NewStructuredLogger(s.logger).LogPaymentRecorded(ctx, saved.ID, saved.TenantID, saved.Amount.Cents, string(saved.Status))
	s.metrics.PaymentRecorded(string(saved.Status))
	s.publish(ctx, saved)
	return saved, nil
}

func (s *PaymentService) publish(ctx context.Context, p core.Payment) {
	if s.publisher == nil {
		s.logger.WarnContext(ctx, "AMQP publisher not available, skipping payment.recorded message",
			log.FieldPaymentID, p.ID)
		return
	}
	if err := s.publisher.PublishPaymentRecorded(ctx, p.ID, string(p.Status)); err != nil {
		// The payment is stored; the export can be replayed from the ledger.
		s.logger.ErrorContext(ctx, "Failed to publish payment.recorded message",
			log.FieldPaymentID, p.ID, log.FieldError, err)
	}
}
