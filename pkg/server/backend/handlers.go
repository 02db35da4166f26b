package backend

import (
	"net/http"

	"mtlsdemo/pkg/demo"
	"mtlsdemo/pkg/log"
	"mtlsdemo/pkg/models"

	"github.com/labstack/echo/v4"
)

const (
	MessageDatabaseUnhealthy = "Database unhealthy"
	MessageEnvoyValidated    = "Envoy validated frontend SPIFFE ID via SDS"
	MessageDatabaseVerified  = "PostgreSQL verified backend SPIFFE ID from client certificate"
	MessageDatabaseFailed    = "Failed to connect to PostgreSQL: "
)

// health handles GET /health. It answers 503 while the database is unreachable.
func (s *Server) health(ctx echo.Context) error {
	if err := s.store.Ping(ctx.Request().Context()); err != nil {
		log.Error().Err(err).Msg("Database health check failed")
		return ctx.String(http.StatusServiceUnavailable, MessageDatabaseUnhealthy)
	}

	return ctx.JSON(http.StatusOK, models.HealthResponse{Component: "backend", Status: "healthy"})
}

// orders handles GET /api/orders.
func (s *Server) orders(ctx echo.Context) error {
	orders, err := s.store.Orders(ctx.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve orders")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to retrieve orders",
		})
	}
	if orders == nil {
		orders = []models.Order{}
	}

	return ctx.JSON(http.StatusOK, orders)
}

// demo handles GET /api/demo. Reaching this handler means Envoy already
// accepted the frontend's certificate, so that leg is always reported as
// successful; the database leg reflects the outcome of the orders query.
func (s *Server) demo(ctx echo.Context) error {
	correlationID := ctx.Request().Header.Get(demo.HeaderCorrelationID)

	log.PeerValidated(models.PatternEnvoySDS, s.cfg.SPIFFEID, s.cfg.FrontendSPIFFEID, MessageEnvoyValidated)

	result := models.DemoResult{
		FrontendToBackend: models.ConnectionStatus{
			Success: true,
			Message: MessageEnvoyValidated,
			Pattern: models.PatternEnvoySDS,
		},
		Timestamp: s.now().UTC(),
	}

	orders, err := s.store.Orders(ctx.Request().Context())
	if err != nil {
		log.Error().
			Err(err).
			Str("pattern", models.PatternSpiffeHelper).
			Str("correlation_id", correlationID).
			Msg("Backend-to-database leg failed")

		result.BackendToDatabase = models.ConnectionStatus{
			Success: false,
			Message: MessageDatabaseFailed + err.Error(),
			Pattern: models.PatternSpiffeHelper,
		}
		return ctx.JSON(http.StatusOK, result)
	}

	log.PeerValidated(models.PatternSpiffeHelper, s.cfg.SPIFFEID, s.cfg.DatabaseSPIFFEID, MessageDatabaseVerified)

	result.BackendToDatabase = models.ConnectionStatus{
		Success: true,
		Message: MessageDatabaseVerified,
		Pattern: models.PatternSpiffeHelper,
	}
	result.Orders = orders

	log.Info().
		Str("correlation_id", correlationID).
		Int("orders_count", len(orders)).
		Msg("Demo flow completed")

	return ctx.JSON(http.StatusOK, result)
}
