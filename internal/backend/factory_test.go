package backend

import (
	"context"
	"path/filepath"
	"testing"

	"rentdesk/internal/config"
	"rentdesk/internal/log"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("sheets is no longer a data backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend: " SQLite ", SQLiteDBPath: "x.db", SeedDemoData: true,
		AMQPURL: "amqp://localhost", AMQPExchange: "rentdesk", AMQPQueue: "q",
	})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != SQLiteBackend || !cfg.Seed || cfg.AMQPQueue != "q" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown type", Config{Type: "postgres"}, true},
		{"amqp without queue", Config{Type: MemoryBackend, AMQPURL: "amqp://x", AMQPExchange: "e"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(log.Discard())

	res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend, Seed: true})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Cleanup()
	if res.Publisher != nil {
		t.Error("publisher should be nil without AMQP_URL")
	}
	tenants, _ := res.Repository.ListTenants(ctx)
	if len(tenants) != 2 {
		t.Errorf("seeded memory backend has %d tenants, want 2", len(tenants))
	}

	empty, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatal(err)
	}
	props, _ := empty.Repository.ListProperties(ctx)
	if len(props) != 0 {
		t.Errorf("unseeded backend has %d properties", len(props))
	}
}

func TestCreateSQLiteBackend_SeedsOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rentdesk.db")
	f := NewFactory(nil)

	res, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path, Seed: true})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	payments, err := res.Repository.ListPayments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(payments) != 2 {
		t.Fatalf("seeded sqlite has %d payments, want 2", len(payments))
	}
	if err := res.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}

	res, err = f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path, Seed: true})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer res.Cleanup()
	n, err := Seed(ctx, res.Repository)
	if err != nil || n != 0 {
		t.Fatalf("Seed() on populated store = %d, %v", n, err)
	}
	payments, _ = res.Repository.ListPayments(ctx)
	if len(payments) != 2 {
		t.Errorf("reopen duplicated seed data: %d payments", len(payments))
	}
}
