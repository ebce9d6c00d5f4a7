package backend

import (
	"context"
	"errors"
	"fmt"

	"rentdesk/internal/amqp"
	"rentdesk/internal/log"
	"rentdesk/internal/storage"
	"rentdesk/internal/store"
	"rentdesk/internal/store/memory"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the repository, the optional publisher and a cleanup
// function releasing both.
type Result struct {
	Repository store.Repository
	// Publisher is nil when AMQP is disabled or unreachable.
	Publisher *amqp.Client
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend builds the repository and, when configured, the AMQP client.
// An unreachable broker is logged and the backend runs without publishing.
func (f *Factory) CreateBackend(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		repo store.Repository
		err  error
	)
	switch cfg.Type {
	case SQLiteBackend:
		repo, err = f.createSQLiteBackend(ctx, cfg)
	case MemoryBackend:
		repo = f.createMemoryBackend(cfg)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	res := &Result{Repository: repo}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without publishing", log.FieldError, err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
			res.Publisher = client
		}
	}

	res.Cleanup = func() error {
		var errs []error
		if res.Publisher != nil {
			if err := res.Publisher.Close(); err != nil {
				errs = append(errs, fmt.Errorf("amqp: %w", err))
			}
		}
		if err := repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("repository: %w", err))
		}
		return errors.Join(errs...)
	}
	return res, nil
}

func (f *Factory) createSQLiteBackend(ctx context.Context, cfg Config) (store.Repository, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	if cfg.Seed {
		n, err := Seed(ctx, repo)
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("seed sqlite: %w", err)
		}
		if n > 0 {
			f.logger.InfoContext(ctx, "Seeded demo data", "records", n)
		}
	}
	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
	return repo, nil
}

func (f *Factory) createMemoryBackend(cfg Config) store.Repository {
	f.logger.Info("Initialized memory backend", "seeded", cfg.Seed)
	if cfg.Seed {
		return memory.NewSeeded()
	}
	return memory.New()
}

// Seed copies the demo portfolio into repo when it holds no properties.
// It returns the number of records written.
func Seed(ctx context.Context, repo store.Repository) (int, error) {
	existing, err := repo.ListProperties(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	demo := memory.NewSeeded()
	properties, _ := demo.ListProperties(ctx)
	tenants, _ := demo.ListTenants(ctx)
	payments, _ := demo.ListPayments(ctx)

	n := 0
	for _, p := range properties {
		if _, err := repo.CreateProperty(ctx, p); err != nil {
			return n, fmt.Errorf("property %s: %w", p.ID, err)
		}
		n++
	}
	for _, t := range tenants {
		if _, err := repo.CreateTenant(ctx, t); err != nil {
			return n, fmt.Errorf("tenant %s: %w", t.ID, err)
		}
		n++
	}
	for _, p := range payments {
		if _, err := repo.RecordPayment(ctx, p); err != nil {
			return n, fmt.Errorf("payment %s: %w", p.ID, err)
		}
		n++
	}
	return n, nil
}
