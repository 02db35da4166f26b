package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type LifecycleTestSuite struct {
	suite.Suite
}

func (s *LifecycleTestSuite) TestConfigure() {
	e := echo.New()
	Configure(e)

	s.True(e.HideBanner)
	s.True(e.HidePort)
	s.Equal(ReadTimeout, e.Server.ReadTimeout)
	s.Equal(WriteTimeout, e.Server.WriteTimeout)
	s.Equal(IdleTimeout, e.Server.IdleTimeout)
}

func (s *LifecycleTestSuite) TestConfigureRecoversPanics() {
	e := echo.New()
	Configure(e)
	e.GET("/boom", func(echo.Context) error {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	s.NotPanics(func() {
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	})
	s.Equal(http.StatusInternalServerError, rec.Code)
}

func (s *LifecycleTestSuite) TestShutdownIdle() {
	e := echo.New()
	Configure(e)
	s.NoError(Shutdown(e))
}

func TestLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(LifecycleTestSuite))
}
