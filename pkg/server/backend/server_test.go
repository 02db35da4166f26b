package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"mtlsdemo/pkg/config"
	"mtlsdemo/pkg/demo"
	"mtlsdemo/pkg/models"
	"mtlsdemo/pkg/store"
)

// MockStore implements the store.Store interface for testing
type MockStore struct {
	orders      []models.Order
	shouldError bool
	pingCalls   int
	closed      bool
}

func (m *MockStore) Orders(_ context.Context) ([]models.Order, error) {
	if m.shouldError {
		return nil, errors.New("connection refused")
	}
	return m.orders, nil
}

func (m *MockStore) Ping(_ context.Context) error {
	m.pingCalls++
	if m.shouldError {
		return errors.New("connection refused")
	}
	return nil
}

func (m *MockStore) Close() error {
	m.closed = true
	return nil
}

type BackendServerTestSuite struct {
	suite.Suite
	store  *MockStore
	server *Server
	now    time.Time
}

func (s *BackendServerTestSuite) SetupTest() {
	s.now = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s.store = &MockStore{
		orders: []models.Order{
			{ID: 2, Description: "Second", Status: models.OrderStatusPending, CreatedAt: s.now},
			{ID: 1, Description: "First", Status: models.OrderStatusCompleted, CreatedAt: s.now.Add(-time.Hour)},
		},
	}
	s.server = NewServer(config.Default().Backend, "test", s.store)
	s.server.now = func() time.Time { return s.now }
}

func (s *BackendServerTestSuite) serve(target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	rec := httptest.NewRecorder()
	s.server.echo.ServeHTTP(rec, req)
	return rec
}

func (s *BackendServerTestSuite) TestHealthHealthy() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	ctx := s.server.echo.NewContext(req, rec)

	s.Require().NoError(s.server.health(ctx))
	s.Equal(http.StatusOK, rec.Code)

	var resp models.HealthResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("backend", resp.Component)
	s.Equal("healthy", resp.Status)
	s.Equal(1, s.store.pingCalls)
}

func (s *BackendServerTestSuite) TestHealthDatabaseDown() {
	s.store.shouldError = true

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	ctx := s.server.echo.NewContext(req, rec)

	s.Require().NoError(s.server.health(ctx))
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Equal(MessageDatabaseUnhealthy, rec.Body.String())
}

func (s *BackendServerTestSuite) TestOrders() {
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rec := httptest.NewRecorder()
	ctx := s.server.echo.NewContext(req, rec)

	s.Require().NoError(s.server.orders(ctx))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)

	var orders []models.Order
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &orders))
	s.Require().Len(orders, 2)
	s.Equal(int64(2), orders[0].ID)
	s.Equal("First", orders[1].Description)
}

func (s *BackendServerTestSuite) TestOrdersEmptyIsArray() {
	s.store.orders = nil

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rec := httptest.NewRecorder()
	ctx := s.server.echo.NewContext(req, rec)

	s.Require().NoError(s.server.orders(ctx))
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("[]", strings.TrimSpace(rec.Body.String()))
}

func (s *BackendServerTestSuite) TestOrdersError() {
	s.store.shouldError = true

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rec := httptest.NewRecorder()
	ctx := s.server.echo.NewContext(req, rec)

	s.Require().NoError(s.server.orders(ctx))
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Contains(rec.Body.String(), "Failed to retrieve orders")
}

func (s *BackendServerTestSuite) TestDemoSuccess() {
	req := httptest.NewRequest(http.MethodGet, "/api/demo", nil)
	req.Header.Set(demo.HeaderCorrelationID, "demo-abc")
	rec := httptest.NewRecorder()
	ctx := s.server.echo.NewContext(req, rec)

	s.Require().NoError(s.server.demo(ctx))
	s.Equal(http.StatusOK, rec.Code)

	var result models.DemoResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))
	s.True(result.FrontendToBackend.Success)
	s.Equal(MessageEnvoyValidated, result.FrontendToBackend.Message)
	s.Equal(models.PatternEnvoySDS, result.FrontendToBackend.Pattern)
	s.True(result.BackendToDatabase.Success)
	s.Equal(MessageDatabaseVerified, result.BackendToDatabase.Message)
	s.Equal(models.PatternSpiffeHelper, result.BackendToDatabase.Pattern)
	s.Len(result.Orders, 2)
	s.True(s.now.Equal(result.Timestamp))
}

func (s *BackendServerTestSuite) TestDemoDatabaseFailure() {
	s.store.shouldError = true

	req := httptest.NewRequest(http.MethodGet, "/api/demo", nil)
	rec := httptest.NewRecorder()
	ctx := s.server.echo.NewContext(req, rec)

	s.Require().NoError(s.server.demo(ctx))
	s.Equal(http.StatusOK, rec.Code)

	var result models.DemoResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))
	s.True(result.FrontendToBackend.Success)
	s.False(result.BackendToDatabase.Success)
	s.Equal(MessageDatabaseFailed+"connection refused", result.BackendToDatabase.Message)
	s.Empty(result.Orders)
	s.NotContains(rec.Body.String(), `"orders"`)
}

func (s *BackendServerTestSuite) TestDemoDecodesWithClient() {
	s.server.setupRoutes()

	rec := s.serve("/api/demo", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	result, err := demo.DecodeResult(rec.Body.Bytes())
	s.Require().NoError(err)
	s.True(result.BackendToDatabase.Success)
	s.Len(result.Orders, 2)
}

func (s *BackendServerTestSuite) TestRoutes() {
	s.server.setupRoutes()

	s.Equal(http.StatusOK, s.serve("/health", nil).Code)
	s.Equal(http.StatusOK, s.serve("/api/orders", nil).Code)
	s.Equal(http.StatusOK, s.serve("/api/demo", http.Header{demo.HeaderCorrelationID: {"demo-1"}}).Code)
	s.Equal(http.StatusNotFound, s.serve("/api/unknown", nil).Code)
	s.Equal(10*time.Second, s.server.echo.Server.ReadTimeout)
	s.Equal(60*time.Second, s.server.echo.Server.IdleTimeout)
}

func (s *BackendServerTestSuite) TestWithSQLiteStore() {
	sqlStore, err := store.OpenSQLite(context.Background(), filepath.Join(s.T().TempDir(), "orders.db"))
	s.Require().NoError(err)
	defer sqlStore.Close()

	server := NewServer(config.Default().Backend, "test", sqlStore)
	server.setupRoutes()

	req := httptest.NewRequest(http.MethodGet, "/api/demo", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code)

	result, err := demo.DecodeResult(rec.Body.Bytes())
	s.Require().NoError(err)
	s.True(result.BackendToDatabase.Success)
	s.Require().Len(result.Orders, len(store.SeedOrders))
	s.Equal(store.SeedOrders[len(store.SeedOrders)-1].Description, result.Orders[0].Description)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	s.Equal(http.StatusOK, rec.Code)
}

func TestBackendServerTestSuite(t *testing.T) {
	suite.Run(t, new(BackendServerTestSuite))
}
