package store

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"rentdesk/internal/core"
)

// Ledger is a consistent-enough snapshot of the reference data the revenue
// engine joins over.
type Ledger struct {
	Properties []core.Property
	Tenants    []core.Tenant
	Payments   []core.Payment
}

// LedgerReader is the subset of Repository LoadLedger needs.
type LedgerReader interface {
	ListProperties(ctx context.Context) ([]core.Property, error)
	ListTenants(ctx context.Context) ([]core.Tenant, error)
	ListPayments(ctx context.Context) ([]core.Payment, error)
}

// LoadLedger reads properties, tenants and payments concurrently.
func LoadLedger(ctx context.Context, r LedgerReader) (Ledger, error) {
	var l Ledger
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ps, err := r.ListProperties(gctx)
		if err != nil {
			return fmt.Errorf("list properties: %w", err)
		}
		l.Properties = ps
		return nil
	})
	g.Go(func() error {
		ts, err := r.ListTenants(gctx)
		if err != nil {
			return fmt.Errorf("list tenants: %w", err)
		}
		l.Tenants = ts
		return nil
	})
	g.Go(func() error {
		ps, err := r.ListPayments(gctx)
		if err != nil {
			return fmt.Errorf("list payments: %w", err)
		}
		l.Payments = ps
		return nil
	})
	if err := g.Wait(); err != nil {
		return Ledger{}, err
	}
	return l, nil
}
