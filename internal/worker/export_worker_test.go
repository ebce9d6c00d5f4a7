package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk/internal/amqp"
	"rentdesk/internal/core"
	"rentdesk/internal/log"
	"rentdesk/internal/revenue"
	"rentdesk/internal/store/memory"
)

type fakeExporter struct {
	mu   sync.Mutex
	rows []revenue.ReportRow
	err  error
}

func (f *fakeExporter) AppendPayment(_ context.Context, row revenue.ReportRow) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.rows = append(f.rows, row)
	return "Payments!A2:I2", nil
}

func TestHandlePaymentRecorded(t *testing.T) {
	exp := &fakeExporter{}
	w := NewExportWorker(memory.NewSeeded(), exp, nil, log.Discard())

	err := w.HandlePaymentRecorded(context.Background(), amqp.NewPaymentRecordedMessage("2", "pending"))
	require.NoError(t, err)
	require.Len(t, exp.rows, 1)

	row := exp.rows[0]
	assert.Equal(t, "2", row.PaymentID)
	assert.Equal(t, "Jane Smith", row.TenantName)
	assert.Equal(t, "Sunset Apartments", row.PropertyName)
	assert.Equal(t, "102", row.Unit)
	assert.Equal(t, core.StatusPending, row.Status)
}

func TestHandlePaymentRecorded_UnknownTenantStillExports(t *testing.T) {
	repo := memory.NewSeeded()
	ctx := context.Background()
	p, err := repo.RecordPayment(ctx, core.Payment{
		TenantID: "ghost", Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 1, 2), Status: core.StatusFailed,
	})
	require.NoError(t, err)

	exp := &fakeExporter{}
	w := NewExportWorker(repo, exp, nil, nil)
	require.NoError(t, w.HandlePaymentRecorded(ctx, amqp.NewPaymentRecordedMessage(p.ID, "failed")))
	require.Len(t, exp.rows, 1)
	assert.Equal(t, revenue.UnknownLabel, exp.rows[0].TenantLabel())
}

func TestHandlePaymentRecorded_MissingPaymentIsAcked(t *testing.T) {
	exp := &fakeExporter{}
	w := NewExportWorker(memory.NewSeeded(), exp, nil, log.Discard())

	err := w.HandlePaymentRecorded(context.Background(), amqp.NewPaymentRecordedMessage("gone", "completed"))
	assert.NoError(t, err)
	assert.Empty(t, exp.rows)
}

func TestHandlePaymentRecorded_ExportErrorRequeues(t *testing.T) {
	exp := &fakeExporter{err: errors.New("sheets unavailable")}
	w := NewExportWorker(memory.NewSeeded(), exp, nil, log.Discard())

	err := w.HandlePaymentRecorded(context.Background(), amqp.NewPaymentRecordedMessage("1", "completed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets unavailable")
}

func TestBackfill(t *testing.T) {
	repo := memory.NewSeeded()
	ctx := context.Background()
	_, err := repo.RecordPayment(ctx, core.Payment{
		TenantID: "1", Amount: core.Money{Cents: 1500000}, Date: core.NewDate(2025, 2, 1), Status: core.StatusCompleted,
	})
	require.NoError(t, err)

	exp := &fakeExporter{}
	w := NewExportWorker(repo, exp, nil, log.Discard())

	n, err := w.Backfill(ctx, core.Period{Year: 2025, Month: time.January})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, exp.rows, 2)
	assert.Equal(t, "1", exp.rows[0].PaymentID)
	assert.Equal(t, "2", exp.rows[1].PaymentID)
}

func TestBackfill_CollectsErrors(t *testing.T) {
	w := NewExportWorker(memory.NewSeeded(), &fakeExporter{err: errors.New("boom")}, nil, log.Discard())
	n, err := w.Backfill(context.Background(), core.Period{Year: 2025, Month: time.January})
	assert.Equal(t, 0, n)
	assert.Error(t, err)
}
