package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentdesk/internal/auth"
	"rentdesk/internal/metrics"
	"rentdesk/internal/middleware/ratelimit"
	"rentdesk/internal/revenue"
	"rentdesk/internal/store/memory"
)

type fakeReportExporter struct {
	got []revenue.Report
}

func (f *fakeReportExporter) ExportReport(_ context.Context, r revenue.Report) (string, error) {
	f.got = append(f.got, r)
	return "'2025-01 Report'!A1:F4", nil
}

type testEnv struct {
	srv      *Server
	repo     *memory.Store
	landlord string
	tenant   string
}

func newTestEnv(t *testing.T, d Deps) *testEnv {
	t.Helper()
	return newTestEnvWith(t, Config{Addr: ":0"}, d)
}

func newTestEnvWith(t *testing.T, cfg Config, d Deps) *testEnv {
	t.Helper()
	jwt := auth.NewJWTManager("test-secret-that-is-long-enough-123", "rentdesk", time.Hour)
	repo := memory.NewSeeded()
	reg := prometheus.NewRegistry()

	d.Repo = repo
	d.Auth = jwt
	d.Metrics = metrics.New(reg)
	d.Gatherer = reg
	srv, err := NewServer(cfg, d)
	require.NoError(t, err)
	srv.now = func() time.Time { return time.Date(2025, time.January, 20, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	landlord, err := jwt.Generate("owner@example.com", auth.RoleLandlord, "")
	require.NoError(t, err)
	tenant, err := jwt.Generate("john@example.com", auth.RoleTenant, "1")
	require.NoError(t, err)
	return &testEnv{srv: srv, repo: repo, landlord: landlord, tenant: tenant}
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthReadyAndMetrics(t *testing.T) {
	e := newTestEnv(t, Deps{})
	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rr := e.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	rr := e.do(t, http.MethodGet, "/healthz", "", "")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestAuthGate(t *testing.T) {
	e := newTestEnv(t, Deps{})

	rr := e.do(t, http.MethodGet, "/api/properties", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = e.do(t, http.MethodGet, "/api/properties", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = e.do(t, http.MethodGet, "/api/properties", e.tenant, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, decode[map[string]string](t, rr)["error"], "insufficient role")

	rr = e.do(t, http.MethodGet, "/api/me", e.landlord, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = e.do(t, http.MethodGet, "/api/properties", e.landlord, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.Len(t, decode[[]propertyView](t, rr), 2)
}

func TestRevenueForMonth(t *testing.T) {
	e := newTestEnv(t, Deps{})

	for _, q := range []string{"year=2025&month=1", "year=2025&month_index=0", "year=2025&month=1&property=all"} {
		rr := e.do(t, http.MethodGet, "/api/revenue?"+q, e.landlord, "")
		require.Equal(t, http.StatusOK, rr.Code, q)
		v := decode[reportView](t, rr)
		assert.Equal(t, "2025-01", v.Period)
		assert.Equal(t, int64(3300000), v.Total.Cents)
		assert.Equal(t, 33000.0, v.Total.Amount)
		assert.Equal(t, int64(3300000), v.SummaryTotal.Cents)
		require.Len(t, v.ByProperty, 1)
		assert.Equal(t, "Sunset Apartments", v.ByProperty[0].Name)
		assert.Len(t, v.Rows, 2)
	}

	rr := e.do(t, http.MethodGet, "/api/revenue?year=2025&month=1&property=2", e.landlord, "")
	require.Equal(t, http.StatusOK, rr.Code)
	v := decode[reportView](t, rr)
	assert.Zero(t, v.Total.Cents)
	assert.Empty(t, v.Rows)
	assert.Equal(t, int64(3300000), v.AllTimeTotal.Cents)
}

func TestRevenueKeepsPaymentsOfDeletedTenants(t *testing.T) {
	e := newTestEnv(t, Deps{})
	rr := e.do(t, http.MethodDelete, "/api/tenants/2", e.landlord, "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = e.do(t, http.MethodGet, "/api/revenue?year=2025&month=1", e.landlord, "")
	require.Equal(t, http.StatusOK, rr.Code)
	v := decode[reportView](t, rr)
	assert.Equal(t, int64(3300000), v.Total.Cents)
	assert.Equal(t, int64(1500000), v.SummaryTotal.Cents)
	require.Len(t, v.Rows, 2)
	assert.Equal(t, "Unknown", v.Rows[1].Tenant)
	assert.Equal(t, "Unknown", v.Rows[1].Property)
}

func TestRevenueRejectsBadPeriod(t *testing.T) {
	e := newTestEnv(t, Deps{})
	cases := map[string]int{
		"year=2025&month=13":       http.StatusUnprocessableEntity,
		"year=2025&month_index=12": http.StatusUnprocessableEntity,
		"year=0&month_index=3":     http.StatusUnprocessableEntity,
		"year=-5&month=1":          http.StatusUnprocessableEntity,
		"year=abc&month=1":         http.StatusBadRequest,
		"year=2025&month=jan":      http.StatusBadRequest,
	}
	for q, want := range cases {
		rr := e.do(t, http.MethodGet, "/api/revenue?"+q, e.landlord, "")
		assert.Equal(t, want, rr.Code, q)
	}
}

func TestPaymentReportDownloadAndCache(t *testing.T) {
	e := newTestEnv(t, Deps{})
	path := "/api/reports/payments?year=2025&month=1&format=csv"

	rr := e.do(t, http.MethodGet, path, e.landlord, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), `filename="payment-report-2025-01-all.csv"`)
	assert.Contains(t, rr.Body.String(), "John Doe,Sunset Apartments,101")
	first := rr.Body.String()

	rr = e.do(t, http.MethodGet, path, e.landlord, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, first, rr.Body.String())
	assert.Equal(t, 1, e.srv.reportCache.Size())

	rr = e.do(t, http.MethodPost, "/api/payments", e.landlord, `{"tenant_id":"1","amount":"500","date":"2025-01-15"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = e.do(t, http.MethodGet, path, e.landlord, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEqual(t, first, rr.Body.String())
	assert.Equal(t, 2, e.srv.reportCache.Size())

	rr = e.do(t, http.MethodGet, "/api/reports/payments?year=2025&month=1&format=html", e.landlord, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "Total Revenue:")

	rr = e.do(t, http.MethodGet, "/api/reports/payments?year=2025&month=1&format=pdf", e.landlord, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExportReport(t *testing.T) {
	e := newTestEnv(t, Deps{})
	rr := e.do(t, http.MethodPost, "/api/reports/payments/export?year=2025&month=1", e.landlord, "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	exp := &fakeReportExporter{}
	e = newTestEnv(t, Deps{Exporter: exp})
	rr = e.do(t, http.MethodPost, "/api/reports/payments/export?year=2025&month=1&property=1", e.landlord, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, exp.got, 1)
	assert.Equal(t, revenue.PropertyFilter("1"), exp.got[0].Filter)
	assert.Equal(t, "'2025-01 Report'!A1:F4", decode[map[string]any](t, rr)["ref"])
}

func TestRecordAndUpdatePayment(t *testing.T) {
	e := newTestEnv(t, Deps{})

	rr := e.do(t, http.MethodPost, "/api/payments", e.landlord, `{"tenant_id":"2","amount":18000.5,"date":"2025-02-01","method":"bank","reference":"BANK1"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	p := decode[paymentView](t, rr)
	assert.Equal(t, int64(1800050), p.Cents)
	assert.Equal(t, "completed", p.Status)
	assert.Equal(t, "2025-02-01", p.Date)

	rr = e.do(t, http.MethodPatch, "/api/payments/2/status", e.landlord, `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "completed", decode[paymentView](t, rr).Status)

	rr = e.do(t, http.MethodGet, "/api/payments?tenant_id=2", e.landlord, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]paymentView](t, rr), 2)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown tenant", http.MethodPost, "/api/payments", `{"tenant_id":"99","amount":"100"}`, http.StatusUnprocessableEntity},
		{"bad amount", http.MethodPost, "/api/payments", `{"tenant_id":"1","amount":"abc"}`, http.StatusUnprocessableEntity},
		{"bad date", http.MethodPost, "/api/payments", `{"tenant_id":"1","amount":"100","date":"01/02/2025"}`, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/api/payments", `{"tenant_id":`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/payments", `{"tenant":"1"}`, http.StatusBadRequest},
		{"bad status", http.MethodPatch, "/api/payments/1/status", `{"status":"refunded"}`, http.StatusUnprocessableEntity},
		{"missing payment", http.MethodPatch, "/api/payments/nope/status", `{"status":"failed"}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := e.do(t, tc.method, tc.path, e.landlord, tc.body)
			assert.Equal(t, tc.want, rr.Code, rr.Body.String())
		})
	}
}

func TestPropertyAndTenantCRUD(t *testing.T) {
	e := newTestEnv(t, Deps{})

	rr := e.do(t, http.MethodPost, "/api/properties", e.landlord, `{"name":"Hillside Villas","address":"789 Hill Rd","units":8}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	prop := decode[propertyView](t, rr)
	require.NotEmpty(t, prop.ID)

	rr = e.do(t, http.MethodPut, "/api/properties/"+prop.ID, e.landlord, `{"name":"Hillside Villas","address":"789 Hill Rd","units":10}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 10, decode[propertyView](t, rr).Units)

	rr = e.do(t, http.MethodPost, "/api/tenants", e.landlord,
		`{"property_id":"`+prop.ID+`","name":"Mary Wanjiku","email":"mary@example.com","unit":"A1","rent":"22000","move_in_date":"2025-01-01"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	tenant := decode[tenantView](t, rr)
	assert.Equal(t, int64(2200000), tenant.RentCents)
	assert.Equal(t, 5, tenant.RentDueDay)

	rr = e.do(t, http.MethodGet, "/api/tenants?property_id="+prop.ID, e.landlord, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]tenantView](t, rr), 1)

	rr = e.do(t, http.MethodPost, "/api/tenants", e.landlord, `{"property_id":"missing","name":"X","unit":"1","rent":"100"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = e.do(t, http.MethodPost, "/api/properties", e.landlord, `{"name":"","units":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = e.do(t, http.MethodDelete, "/api/properties/"+prop.ID, e.landlord, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = e.do(t, http.MethodGet, "/api/properties/"+prop.ID, e.landlord, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestTenantPortal(t *testing.T) {
	e := newTestEnv(t, Deps{})

	rr := e.do(t, http.MethodGet, "/api/me", e.tenant, "")
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode[meView](t, rr)
	assert.Equal(t, "John Doe", me.Tenant.Name)
	require.NotNil(t, me.Property)
	assert.Equal(t, "Sunset Apartments", me.Property.Name)
	assert.Equal(t, "2025-02-05", me.NextDueDate)

	rr = e.do(t, http.MethodPost, "/api/me/payments", e.tenant, `{"method":"mpesa","reference":"QWE123"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	p := decode[paymentView](t, rr)
	assert.Equal(t, "pending", p.Status)
	assert.Equal(t, "1", p.TenantID)
	assert.Equal(t, int64(1500000), p.Cents)

	rr = e.do(t, http.MethodPost, "/api/me/payments", e.tenant, `{"method":"mpesa","reference":"  "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = e.do(t, http.MethodGet, "/api/me/payments", e.tenant, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]paymentView](t, rr), 2)
}

func TestMessagesAndNotifications(t *testing.T) {
	e := newTestEnv(t, Deps{})

	rr := e.do(t, http.MethodPost, "/api/tenants/1/messages", e.landlord, `{"content":"Water maintenance on Friday"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.True(t, decode[messageView](t, rr).FromAdmin)

	rr = e.do(t, http.MethodPost, "/api/tenants/99/messages", e.landlord, `{"content":"hello"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = e.do(t, http.MethodGet, "/api/me/notifications", e.tenant, "")
	require.Equal(t, http.StatusOK, rr.Code)
	notes := decode[[]notificationView](t, rr)
	require.Len(t, notes, 1)
	assert.Equal(t, "message", notes[0].Type)
	assert.False(t, notes[0].Read)

	rr = e.do(t, http.MethodGet, "/api/me", e.tenant, "")
	assert.Equal(t, 1, decode[meView](t, rr).UnreadNotifications)

	rr = e.do(t, http.MethodPost, "/api/me/notifications/"+notes[0].ID+"/read", e.tenant, "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = e.do(t, http.MethodGet, "/api/me", e.tenant, "")
	assert.Equal(t, 0, decode[meView](t, rr).UnreadNotifications)

	rr = e.do(t, http.MethodPost, "/api/me/messages", e.tenant, `{"content":"Thanks!"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = e.do(t, http.MethodPost, "/api/me/messages", e.tenant, `{"content":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = e.do(t, http.MethodGet, "/api/tenants/1/messages", e.landlord, "")
	require.Equal(t, http.StatusOK, rr.Code)
	msgs := decode[[]messageView](t, rr)
	require.Len(t, msgs, 2)
	assert.False(t, msgs[1].FromAdmin)
	assert.False(t, msgs[1].SentAt.IsZero())
}

func TestSuspiciousRequestsAreRejected(t *testing.T) {
	e := newTestEnv(t, Deps{})
	rr := e.do(t, http.MethodGet, "/api/properties?q=1%27%20union%20select%20*", e.landlord, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, int64(1), e.srv.detector.SuspiciousRequests())
}

func TestMutationsAreRateLimited(t *testing.T) {
	e := newTestEnvWith(t, Config{RateLimit: ratelimit.Config{RequestsPerSecond: 0.1, Burst: 2, SkipSafeMethods: true}}, Deps{})
	body := `{"name":"Block C","units":4}`

	for i := 0; i < 2; i++ {
		rr := e.do(t, http.MethodPost, "/api/properties", e.landlord, body)
		require.Equal(t, http.StatusCreated, rr.Code)
	}
	rr := e.do(t, http.MethodPost, "/api/properties", e.landlord, body)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "10", rr.Header().Get("Retry-After"))

	rr = e.do(t, http.MethodGet, "/api/properties", e.landlord, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}
