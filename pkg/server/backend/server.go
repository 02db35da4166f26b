// Package backend serves orders and the database half of the demo probe.
package backend

import (
	"time"

	"mtlsdemo/pkg/config"
	"mtlsdemo/pkg/log"
	"mtlsdemo/pkg/server"
	"mtlsdemo/pkg/store"

	"github.com/labstack/echo/v4"
)

type Server struct {
	echo    *echo.Echo
	cfg     config.BackendConfig
	version string
	store   store.Store
	now     func() time.Time
}

func NewServer(cfg config.BackendConfig, version string, st store.Store) *Server {
	return &Server{
		echo:    echo.New(),
		cfg:     cfg,
		version: version,
		store:   st,
		now:     time.Now,
	}
}

func (s *Server) Start(addr string) error {
	s.setupRoutes()

	log.Info().
		Str("addr", addr).
		Str("spiffe_id", s.cfg.SPIFFEID).
		Str("version", s.version).
		Msg("Starting backend server")

	return server.Run(s.echo, addr)
}

func (s *Server) Shutdown() error {
	return server.Shutdown(s.echo)
}

func (s *Server) setupRoutes() {
	server.Configure(s.echo)

	s.echo.GET("/health", s.health)
	s.echo.GET("/api/orders", s.orders)
	s.echo.GET("/api/demo", s.demo)
}
