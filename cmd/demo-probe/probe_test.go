package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mtlsdemo/pkg/demo"
)

type ProbeTestSuite struct {
	suite.Suite
	ok     *httptest.Server
	broken *httptest.Server
}

func (s *ProbeTestSuite) SetupTest() {
	s.ok = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(demo.DemoPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"frontend_to_backend": {"success": true, "message": "via SDS", "pattern": "envoy-sds"},
			"backend_to_database": {"success": true, "message": "mTLS ok", "pattern": "spiffe-helper"},
			"orders": [{"id": 7, "description": "Widget", "status": "pending", "created_at": "2024-01-01T12:00:00Z"}]
		}`))
	}))
	s.broken = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
}

func (s *ProbeTestSuite) TearDownTest() {
	s.ok.Close()
	s.broken.Close()
}

func (s *ProbeTestSuite) TestParseTargets() {
	targets, err := parseTargets(" http://a:8080 , https://b ,,")
	s.Require().NoError(err)
	s.Equal([]string{"http://a:8080", "https://b"}, targets)

	_, err = parseTargets(" , ")
	s.ErrorIs(err, errNoTargets)

	_, err = parseTargets("ftp://a")
	s.Error(err)
}

func (s *ProbeTestSuite) TestProbeAllKeepsOrder() {
	results := probeAll(context.Background(), []string{s.broken.URL, s.ok.URL}, 5*time.Second)
	s.Require().Len(results, 2)

	s.Equal(s.broken.URL, results[0].URL)
	s.Require().Error(results[0].Err)
	s.Contains(results[0].Summary, "FAILED")
	s.Contains(results[0].Summary, demo.FailurePrefix+"HTTP 500")
	s.NotContains(results[0].Summary, "Orders (")

	s.Equal(s.ok.URL, results[1].URL)
	s.Require().NoError(results[1].Err)
	s.Contains(results[1].Summary, "SUCCESS")
	s.Contains(results[1].Summary, "mTLS ok")
	s.Contains(results[1].Summary, "Orders (1):")
	s.Contains(results[1].Summary, "Order #7")
}

func (s *ProbeTestSuite) TestProbeTimeout() {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	result := probeTarget(context.Background(), slow.URL, 50*time.Millisecond)
	s.Require().Error(result.Err)
	s.Contains(result.Summary, "FAILED")
}

func (s *ProbeTestSuite) TestWriteSummaries() {
	var buf bytes.Buffer
	writeSummaries(&buf, []targetResult{
		{URL: "http://a", Summary: "first\n"},
		{URL: "http://b", Summary: "second"},
	})

	s.Equal("== http://a\nfirst\n\n== http://b\nsecond\n", buf.String())
	s.Equal(2, strings.Count(buf.String(), "== "))
}

func TestProbeTestSuite(t *testing.T) {
	suite.Run(t, new(ProbeTestSuite))
}
