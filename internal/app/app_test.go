package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomcli/internal/config"
	"ecomcli/internal/infrastructure"
	"ecomcli/internal/shared/testutil"
	"ecomcli/pkg/contracts/events"
)

const (
	ordersCSV = `order_id,customer_id,order_status,order_purchase_timestamp,order_delivered_customer_date,order_estimated_delivery_date
o1,c1,delivered,2023-01-10 09:00:00,2023-01-12 10:00:00,2023-01-20 00:00:00
o2,c2,canceled,2023-02-05 09:00:00,,2023-02-20 00:00:00
p1,c2,delivered,2022-01-20 09:00:00,2022-01-24 10:00:00,2022-01-30 00:00:00
`
	itemsCSV = `order_id,order_item_id,product_id,price,freight_value
o1,1,pA,10.00,1.00
o2,1,pA,50.00,2.00
p1,1,pB,40.00,2.00
`
	productsCSV = `product_id,product_category_name
pA,toys
pB,books
`
	customersCSV = `customer_id,customer_state,customer_city
c1,SP,sao paulo
c2,RJ,rio de janeiro
`
)

func testConfig(t *testing.T, withData bool) *config.Config {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Server.RateLimit.Enabled = false
	cfg.Paths = config.PathsConfig{
		DataDir:    filepath.Join(root, "data"),
		ReportsDir: filepath.Join(root, "reports"),
		LogsDir:    filepath.Join(root, "logs"),
	}

	if withData {
		require.NoError(t, os.MkdirAll(cfg.Paths.DataDir, 0755))
		files := cfg.Analysis.Files
		for name, content := range map[string]string{
			files.Orders:     ordersCSV,
			files.OrderItems: itemsCSV,
			files.Products:   productsCSV,
			files.Customers:  customersCSV,
		} {
			require.NoError(t, os.WriteFile(filepath.Join(cfg.Paths.DataDir, name), []byte(content), 0644))
		}
	}
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	application, err := NewApplication(cfg, infrastructure.NewLogger(io.Discard, "error"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = application.OTelProviders.Shutdown(context.Background())
	})
	return application
}

func do(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewApplication(t *testing.T) {
	cfg := testConfig(t, false)
	application := newTestApp(t, cfg)

	assert.NotNil(t, application.Router)
	assert.NotNil(t, application.Handler)
	assert.NotNil(t, application.AnalysisService)
	assert.NotNil(t, application.HealthService)
	assert.NotNil(t, application.Exporter)
	assert.NotNil(t, application.Metrics)
	assert.Equal(t, ":0", application.Server.Addr)
	assert.Equal(t, cfg.Server.ReadTimeout, application.Server.ReadTimeout)

	assert.DirExists(t, cfg.Paths.DataDir)
	assert.DirExists(t, cfg.Paths.ReportsDir)
}

func TestRoutes(t *testing.T) {
	application := newTestApp(t, testConfig(t, true))
	h := application.Handler

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantBody   string
	}{
		{name: "health", method: http.MethodGet, target: "/api/health", wantStatus: http.StatusOK, wantBody: `"status"`},
		{name: "liveness", method: http.MethodGet, target: "/api/health/live", wantStatus: http.StatusOK},
		{name: "version", method: http.MethodGet, target: "/api/version", wantStatus: http.StatusOK, wantBody: `"version"`},
		{name: "no report yet", method: http.MethodGet, target: "/api/analysis/summary", wantStatus: http.StatusNotFound, wantBody: "REPORT_NOT_FOUND"},
		{name: "unknown route", method: http.MethodGet, target: "/api/nope", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodDelete, target: "/api/analysis/run", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target, "", nil)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestRunThenQuery(t *testing.T) {
	application := newTestApp(t, testConfig(t, true))
	h := application.Handler

	rec := do(t, h, http.MethodPost, "/api/analysis/run", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	runID, ok := report["run_id"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, runID)

	rec = do(t, h, http.MethodGet, "/api/analysis/summary", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		RunID string `json:"run_id"`
		Data  struct {
			TotalRevenue float64 `json:"total_revenue"`
			TotalOrders  int     `json:"total_orders"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, runID, resp.RunID)
	assert.InDelta(t, 10.0, resp.Data.TotalRevenue, 1e-9)
	assert.Equal(t, 1, resp.Data.TotalOrders)

	rec = do(t, h, http.MethodGet, "/api/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "analysis_runs")
	assert.Contains(t, rec.Body.String(), "http_requests")
}

func TestRunMissingData(t *testing.T) {
	application := newTestApp(t, testConfig(t, false))

	rec := do(t, application.Handler, http.MethodPost, "/api/analysis/run", "", nil)
	assert.GreaterOrEqual(t, rec.Code, http.StatusBadRequest)
	assert.Contains(t, rec.Header().Get("Content-Type"), "json")
}

func TestCORSAndSecurityHeaders(t *testing.T) {
	application := newTestApp(t, testConfig(t, false))

	rec := do(t, application.Handler, http.MethodGet, "/api/health", "", map[string]string{"Origin": "http://localhost:8080"})
	assert.Equal(t, "http://localhost:8080", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = do(t, application.Handler, http.MethodGet, "/api/health", "", map[string]string{"Origin": "http://evil.example"})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.1, Burst: 1}
	application := newTestApp(t, cfg)

	first := do(t, application.Handler, http.MethodGet, "/api/health/live", "", nil)
	second := do(t, application.Handler, http.MethodGet, "/api/health/live", "", nil)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestRunStopsOnContextCancel(t *testing.T) {
	application := newTestApp(t, testConfig(t, false))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- application.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunProgressStream(t *testing.T) {
	application := newTestApp(t, testConfig(t, true))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go application.Hub.Run(ctx)

	srv := httptest.NewServer(application.Handler)
	defer srv.Close()

	conn, _, err := gws.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))

	var hello events.Message
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, events.MessageTypeConnect, hello.Type)
	require.Eventually(t, func() bool { return application.Hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Post(srv.URL+"/api/analysis/run", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var last events.RunSnapshot
	for last.Status != events.StatusCompleted {
		var msg struct {
			Type events.MessageType `json:"type"`
			Data events.RunSnapshot `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		require.Equal(t, events.MessageTypeRunSnapshot, msg.Type)
		last = msg.Data
	}
	assert.Equal(t, 100, last.Progress)
	assert.NotEmpty(t, last.RunID)
}

func TestStartupHealthCheck(t *testing.T) {
	tests := []struct {
		name     string
		withData bool
		wantMsg  string
		wantLvl  slog.Level
	}{
		{name: "dataset present", withData: true, wantMsg: "Startup health check passed", wantLvl: slog.LevelInfo},
		{name: "dataset missing", withData: false, wantMsg: "Dataset files missing", wantLvl: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(nil)
			application, err := NewApplication(testConfig(t, tt.withData), logger)
			require.NoError(t, err)
			t.Cleanup(func() { _ = application.OTelProviders.Shutdown(context.Background()) })

			application.performStartupHealthCheck(context.Background())

			record, ok := logs.Find(tt.wantMsg)
			require.True(t, ok)
			assert.Equal(t, tt.wantLvl, record.Level)
		})
	}
}
