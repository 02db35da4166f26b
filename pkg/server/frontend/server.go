// Package frontend serves the demo page and forwards probes to the backend.
package frontend

import (
	"context"
	"embed"
	"net/http"
	"time"

	"mtlsdemo/pkg/config"
	"mtlsdemo/pkg/demo"
	"mtlsdemo/pkg/log"
	"mtlsdemo/pkg/server"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/labstack/echo/v4"
)

const (
	// responseReserve is kept out of the upstream budget so that a timed out
	// probe can still be answered before the write timeout closes the connection.
	responseReserve = time.Second

	userAgent = "frontend-demo-client"
)

//go:embed static
var staticFiles embed.FS

type Server struct {
	echo     *echo.Echo
	cfg      config.FrontendConfig
	version  string
	upstream *demo.Client
	location *time.Location

	// upstreamTimeout bounds one backend probe including its retries.
	upstreamTimeout time.Duration
}

func NewServer(cfg config.FrontendConfig, version string) *Server {
	client := CreateRetryableClient(cfg.RetryMax, cfg.RetryWaitMin, cfg.RetryWaitMax)
	client.HTTPClient.Timeout = cfg.RequestTimeout

	return &Server{
		echo:     echo.New(),
		cfg:      cfg,
		version:  version,
		upstream: demo.NewClient(cfg.BackendURL, client.StandardClient()),
		location: time.Local,

		upstreamTimeout: server.WriteTimeout - responseReserve,
	}
}

func (s *Server) Start(addr string) error {
	s.setupRoutes()

	log.Info().
		Str("addr", addr).
		Str("backend_url", s.cfg.BackendURL).
		Str("spiffe_id", s.cfg.SPIFFEID).
		Str("version", s.version).
		Msg("Starting frontend server")

	return server.Run(s.echo, addr)
}

func (s *Server) Shutdown() error {
	return server.Shutdown(s.echo)
}

func (s *Server) setupRoutes() {
	server.Configure(s.echo)

	s.echo.GET("/", s.index)
	s.echo.StaticFS("/static", echo.MustSubFS(staticFiles, "static"))
	s.echo.GET(demo.DemoPath, s.demo)
	s.echo.GET("/health", s.health)
}

// CreateRetryableClient creates the retryable HTTP client used for backend probes.
func CreateRetryableClient(retryMax int, retryWaitMin, retryWaitMax time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = retryWaitMin
	client.RetryWaitMax = retryWaitMax
	client.Logger = nil
	client.CheckRetry = customRetryPolicy
	return client
}

// customRetryPolicy retries only when no response arrived and the attempt did
// not time out. Backend status codes are forwarded to the browser as they are.
func customRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if resp != nil {
		return false, nil
	}

	// A backend that stalled once is likely to stall again.
	if demo.IsTimeout(err) {
		return false, nil
	}

	if err != nil {
		return true, nil //nolint:nilerr // retryablehttp reports the last transport error itself
	}

	return false, nil
}
