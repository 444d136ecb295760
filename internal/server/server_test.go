package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"go-flowershop-admin/internal/testutil"
	"go-flowershop-admin/internal/ws"
	"go-flowershop-admin/pkg/clock"
	"go-flowershop-admin/pkg/config"
	"go-flowershop-admin/pkg/jwt"
	"go-flowershop-admin/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var admin = config.AdminConfig{Username: "admin", Email: "admin@flora.test", Password: "bloom-admin-2026"}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Field   string          `json:"field"`
}

type testServer struct {
	*Server
	db  *gorm.DB
	hub *ws.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	clk := clock.NewFixed(testutil.Now)
	db := testutil.NewDB(t)
	hub := ws.NewHub(logger.Nop())
	srv := New(Options{
		DB:       db,
		Log:      logger.Nop(),
		Clock:    clk,
		Location: testutil.Manila(t),
		Tokens:   jwt.NewManager("test-secret", "flowershop-test", time.Hour, clk.Now),
		Registry: prometheus.NewRegistry(),
		Hub:      hub,
	})
	require.NoError(t, srv.Services.Users.SeedAccounts(context.Background(), admin))
	return &testServer{Server: srv, db: db, hub: hub}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (s *testServer) login(t *testing.T, login, password string) string {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"login":    login,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Token
}

func (s *testServer) staffToken(t *testing.T, adminToken string) string {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/api/v1/users", adminToken, map[string]any{
		"username":  "joy",
		"email":     "joy@flora.test",
		"password":  "sunflower-99",
		"full_name": "Joy Cruz",
		"role_code": "STAFF",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	return s.login(t, "joy", "sunflower-99")
}

func orderBody() map[string]any {
	return map[string]any{
		"customer_email":      "ana@example.com",
		"customer_first_name": "Ana",
		"customer_last_name":  "Reyes",
		"customer_phone":      "09171234567",
		"customer_address":    "12 Mabini St, Quezon City",
		"tax":                 "10",
		"discount":            "5",
		"payment_method":      "gcash",
		"items": []map[string]any{
			{"product_name": "Red Rose", "quantity": 12},
		},
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesNeedAToken(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodGet, "/api/v1/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
	assert.Equal(t, "UNAUTHORIZED", env.Code)
	assert.Equal(t, "Missing authorization token", env.Message)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	status, _ = s.do(t, http.MethodGet, "/api/v1/orders", "forged.token.value", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLiveFeedNeedsAToken(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, admin.Username, admin.Password)

	upgrade := func(path string) *http.Response {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		req.Header.Set("Sec-WebSocket-Version", "13")
		req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
		resp, err := s.App.Test(req, -1)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp := upgrade("/ws")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, "UNAUTHORIZED", env.Code)

	assert.Equal(t, http.StatusUnauthorized, upgrade("/ws?token=forged").StatusCode)

	// a valid token still has to upgrade
	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
	assert.Zero(t, s.hub.ClientCount())
}

func TestLoginFailure(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"login": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid username/email or password", env.Message)

	status, env = s.do(t, http.MethodPost, "/api/v1/auth/login", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}

func TestCreateOrderOverHTTP(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedProduct(t, s.db, "FLW-ROSE-0001", "Red Rose", "50.00", 100, 10)
	token := s.login(t, "admin", admin.Password)

	invalid := orderBody()
	delete(invalid, "customer_phone")
	status, env := s.do(t, http.MethodPost, "/api/v1/orders", token, invalid)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
	assert.Equal(t, "customer_phone", env.Field)

	status, env = s.do(t, http.MethodPost, "/api/v1/orders", token, orderBody())
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.True(t, env.Success)
	assert.Equal(t, "Order ORD-0001-20261017 created successfully!", env.Message)

	var result struct {
		CustomerCreated bool `json:"customer_created"`
		Order           struct {
			ID          uint   `json:"id"`
			OrderNumber string `json:"order_number"`
			Total       string `json:"total"`
		} `json:"order"`
		Payment struct {
			PaymentNumber string `json:"payment_number"`
			Method        string `json:"method"`
		} `json:"payment"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.CustomerCreated)
	assert.Equal(t, "605", result.Order.Total)
	assert.Equal(t, "PAY-20261017-0001", result.Payment.PaymentNumber)
	assert.Equal(t, "gcash", result.Payment.Method)

	status, env = s.do(t, http.MethodPut, "/api/v1/orders/1/status", token, map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusOK, status, env.Message)

	status, env = s.do(t, http.MethodGet, "/api/v1/orders/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "id", env.Field)

	status, env = s.do(t, http.MethodGet, "/api/v1/orders/99", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestStaffPrivileges(t *testing.T) {
	s := newTestServer(t)
	rose := testutil.SeedProduct(t, s.db, "FLW-ROSE-0001", "Red Rose", "50.00", 100, 10)
	adminToken := s.login(t, "admin", admin.Password)
	staffToken := s.staffToken(t, adminToken)

	status, _ := s.do(t, http.MethodGet, "/api/v1/products", staffToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/orders", staffToken, orderBody())
	assert.Equal(t, http.StatusCreated, status)

	path := "/api/v1/products/" + strconv.FormatUint(uint64(rose.ID), 10)
	status, env := s.do(t, http.MethodDelete, path, staffToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", env.Code)

	status, _ = s.do(t, http.MethodGet, "/api/v1/users", staffToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = s.do(t, http.MethodDelete, "/api/v1/admin/data", staffToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Only superusers can perform this action", env.Message)

	status, env = s.do(t, http.MethodDelete, "/api/v1/admin/data", adminToken, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	var cleared struct {
		Deleted map[string]int64 `json:"deleted"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cleared))
	assert.EqualValues(t, 1, cleared.Deleted["orders"])
	assert.EqualValues(t, 1, cleared.Deleted["products"])

	// accounts survive a wipe
	status, _ = s.do(t, http.MethodGet, "/api/v1/auth/me", staffToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin@flora.test", admin.Password)

	status, env := s.do(t, http.MethodPost, "/api/v1/auth/validate-token", "", map[string]string{"token": token})
	assert.Equal(t, http.StatusOK, status, env.Message)

	status, env = s.do(t, http.MethodPost, "/api/v1/auth/validate-token", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "token", env.Field)

	status, _ = s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Session expired, please log in again", env.Message)
}

func TestReportsAndMetrics(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin", admin.Password)

	for _, path := range []string{
		"/api/v1/dashboard",
		"/api/v1/reports/sales",
		"/api/v1/reports/calendar?year=2026",
		"/api/v1/reports/payment-methods",
		"/api/v1/reports/top-sellers",
		"/api/v1/reports/inventory",
	} {
		status, env := s.do(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusOK, status, path+": "+env.Message)
	}

	status, env := s.do(t, http.MethodGet, "/api/v1/reports/calendar?year=0", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "year", env.Field)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `flora_http_requests_total{method="GET",path="/api/v1/dashboard",status="200"} 1`)
}
