package frontend

import (
	"bytes"
	"context"
	"net/http"

	"mtlsdemo/pkg/demo"
	"mtlsdemo/pkg/log"
	"mtlsdemo/pkg/models"
	"mtlsdemo/pkg/page"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// index handles GET /. With ?run set, the probe runs server-side and the
// page is rendered in its displayed state, so the demo works without scripts.
func (s *Server) index(ctx echo.Context) error {
	p := page.New()

	if ctx.QueryParam("run") != "" {
		correlationID := newCorrelationID()
		prober := demo.ProberFunc(func(reqCtx context.Context) (*models.DemoResult, error) {
			return s.fetchDemo(reqCtx, correlationID)
		})

		controller := demo.NewController(prober, p.Widgets(), demo.WithLocation(s.location))
		if err := controller.RunProbe(ctx.Request().Context()); err != nil {
			log.Warn().Err(err).Str("correlation_id", correlationID).Msg("Server-side demo run failed")
		}
	}

	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		log.Error().Err(err).Msg("Failed to render demo page")
		return ctx.String(http.StatusInternalServerError, "Failed to render page")
	}

	return ctx.HTMLBlob(http.StatusOK, buf.Bytes())
}

// demo handles GET /api/demo by forwarding the probe to the backend.
func (s *Server) demo(ctx echo.Context) error {
	correlationID := ctx.Request().Header.Get(demo.HeaderCorrelationID)
	if correlationID == "" {
		correlationID = newCorrelationID()
	}
	ctx.Response().Header().Set(demo.HeaderCorrelationID, correlationID)

	result, err := s.fetchDemo(ctx.Request().Context(), correlationID)
	if err != nil {
		return ctx.JSON(demo.HTTPStatus(err), map[string]string{
			"error": err.Error(),
			"kind":  demo.Kind(err),
		})
	}

	return ctx.JSON(http.StatusOK, result)
}

// health handles GET /health.
func (s *Server) health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, models.HealthResponse{Component: "frontend", Status: "healthy"})
}

func (s *Server) fetchDemo(ctx context.Context, correlationID string) (*models.DemoResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	defer cancel()

	target := s.upstream.URL()
	log.ConnectionAttempt(models.PatternEnvoySDS, target, s.cfg.SPIFFEID)

	result, err := s.upstream.Fetch(ctx, func(req *http.Request) {
		req.Header.Set(demo.HeaderCorrelationID, correlationID)
		req.Header.Set("User-Agent", userAgent)
	})
	if err != nil {
		log.ConnectionFailure(models.PatternEnvoySDS, target, s.cfg.SPIFFEID, err)
		return nil, err
	}

	log.ConnectionSuccess(models.PatternEnvoySDS, target, s.cfg.SPIFFEID, s.cfg.BackendSPIFFEID)
	log.Info().
		Str("correlation_id", correlationID).
		Int("orders_count", len(result.Orders)).
		Bool("database_ok", result.BackendToDatabase.Success).
		Msg("Demo flow completed")

	return result, nil
}

func newCorrelationID() string {
	return "demo-" + uuid.NewString()
}
