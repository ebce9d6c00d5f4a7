package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rentdesk/internal/core"
	"rentdesk/internal/log"
	"rentdesk/internal/metrics"
)

// ReminderRepository is the subset of store.Repository ReminderService uses.
type ReminderRepository interface {
	ListTenants(ctx context.Context) ([]core.Tenant, error)
	ListPayments(ctx context.Context) ([]core.Payment, error)
	HasNotification(ctx context.Context, tenantID string, typ core.NotificationType, date core.Date) (bool, error)
	CreateNotification(ctx context.Context, n core.Notification) (core.Notification, error)
}

// ReminderStats summarises one run.
type ReminderStats struct {
	Tenants int
	Created int
	// Existing counts notifications a previous run already created.
	Existing int
	Failed   int
}

// ReminderService creates payment_due and payment_overdue notifications.
// Runs are idempotent: a tenant gets at most one notification of each type
// per date.
type ReminderService struct {
	repo    ReminderRepository
	metrics *metrics.Metrics
	logger  *log.Logger
}

func NewReminderService(repo ReminderRepository, m *metrics.Metrics, logger *log.Logger) *ReminderService {
	if logger == nil {
		logger = log.Discard()
	}
	return &ReminderService{
		repo:    repo,
		metrics: m,
		logger:  logger.WithComponent(log.ComponentReminder),
	}
}

// Run evaluates every registered rule for every tenant as of now. A failure
// for one tenant does not stop the others; all failures are joined into the
// returned error.
func (s *ReminderService) Run(ctx context.Context, now time.Time) (ReminderStats, error) {
	tenants, err := s.repo.ListTenants(ctx)
	if err != nil {
		return ReminderStats{}, fmt.Errorf("list tenants: %w", err)
	}
	payments, err := s.repo.ListPayments(ctx)
	if err != nil {
		return ReminderStats{}, fmt.Errorf("list payments: %w", err)
	}

	byTenant := make(map[string][]core.Payment, len(tenants))
	for _, p := range payments {
		byTenant[p.TenantID] = append(byTenant[p.TenantID], p)
	}

	today := core.DateOf(now)
	stats := ReminderStats{Tenants: len(tenants)}
	var errs []error

	s.logger.InfoContext(ctx, "Running payment reminders",
		"tenants", len(tenants),
		"date", today.String())

	for _, t := range tenants {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		for _, typ := range reminderOrder {
			rule, err := GetReminderRule(typ)
			if err != nil {
				return stats, err
			}
			n, ok := rule.Check(t, byTenant[t.ID], today)
			if !ok {
				continue
			}
			created, err := s.notify(ctx, n)
			switch {
			case err != nil:
				stats.Failed++
				errs = append(errs, fmt.Errorf("tenant %s %s: %w", t.ID, n.Type, err))
				s.logger.ErrorContext(ctx, "Failed to create reminder",
					log.FieldTenantID, t.ID, "type", string(n.Type), log.FieldError, err)
			case created:
				stats.Created++
				s.metrics.ReminderSent(string(n.Type))
			default:
				stats.Existing++
			}
		}
	}

	s.logger.InfoContext(ctx, "Payment reminders completed",
		"created", stats.Created,
		"existing", stats.Existing,
		"failed", stats.Failed)

	return stats, errors.Join(errs...)
}

func (s *ReminderService) notify(ctx context.Context, n core.Notification) (bool, error) {
	exists, err := s.repo.HasNotification(ctx, n.TenantID, n.Type, n.Date)
	if err != nil {
		return false, fmt.Errorf("check existing notification: %w", err)
	}
	if exists {
		return false, nil
	}
	if _, err := s.repo.CreateNotification(ctx, n); err != nil {
		return false, fmt.Errorf("create notification: %w", err)
	}
	return true, nil
}

// ReminderScheduler runs a ReminderService on a fixed interval.
type ReminderScheduler struct {
	service  *ReminderService
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewReminderScheduler(service *ReminderService, interval time.Duration) *ReminderScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReminderScheduler{service: service, interval: interval, now: time.Now}
}

// Start runs once immediately, then on every tick. Returns an error if
// already running.
func (s *ReminderScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("reminder scheduler is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(ctx)

	s.service.logger.InfoContext(ctx, "Reminder scheduler started", "interval", s.interval)
	return nil
}

// Stop signals the loop and waits for the current run to finish.
func (s *ReminderScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		s.service.logger.InfoContext(ctx, "Reminder scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.service.logger.WarnContext(ctx, "Reminder scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *ReminderScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *ReminderScheduler) runLoop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *ReminderScheduler) runOnce(ctx context.Context) {
	if _, err := s.service.Run(ctx, s.now()); err != nil {
		s.service.logger.ErrorContext(ctx, "Reminder run failed", log.FieldError, err)
	}
}
