package demo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mtlsdemo/pkg/log"
	"mtlsdemo/pkg/models"
)

const (
	// DemoPath is the probe endpoint exposed by both the frontend and the backend.
	DemoPath = "/api/demo"

	// HeaderCorrelationID carries the id that ties frontend and backend log lines of one probe together.
	HeaderCorrelationID = "X-Correlation-ID"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestEditor adjusts an outgoing probe request, e.g. to add tracing headers.
type RequestEditor func(req *http.Request)

// Client issues GET /api/demo against a base URL and classifies every failure as
// NetworkError, StatusError or ParseError.
type Client struct {
	baseURL    string
	httpClient Doer
}

// NewClient creates a probe client. A nil httpClient means http.DefaultClient.
func NewClient(baseURL string, httpClient Doer) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// URL returns the full probe URL.
func (c *Client) URL() string {
	return c.baseURL + DemoPath
}

// Probe implements Prober.
func (c *Client) Probe(ctx context.Context) (*models.DemoResult, error) {
	return c.Fetch(ctx)
}

// Fetch performs the probe request, applying editors in order before sending.
func (c *Client) Fetch(ctx context.Context, editors ...RequestEditor) (*models.DemoResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(), nil)
	if err != nil {
		return nil, NetworkError{Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for _, edit := range editors {
		edit(req)
	}

	log.Debug().Str("url", req.URL.String()).Msg("Sending demo probe")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NetworkError{Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close demo response body")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, StatusError{
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NetworkError{Err: err}
	}

	return DecodeResult(body)
}

// wireResult keeps the connection statuses as pointers so that absent fields can be told apart
// from a reported failure.
type wireResult struct {
	FrontendToBackend *models.ConnectionStatus `json:"frontend_to_backend"`
	BackendToDatabase *models.ConnectionStatus `json:"backend_to_database"`
	Orders            []wireOrder              `json:"orders"`
	Timestamp         time.Time                `json:"timestamp"`
}

// wireOrder decodes created_at by hand so that one odd date does not reject the whole result.
type wireOrder struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	CreatedAt   json.RawMessage `json:"created_at"`
}

// createdAtLayouts are tried in order for created_at values.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DecodeResult parses a demo result body. Both connection statuses are required; orders are optional.
func DecodeResult(body []byte) (*models.DemoResult, error) {
	var wire wireResult
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, ParseError{Err: err}
	}

	switch {
	case wire.FrontendToBackend == nil:
		return nil, ParseError{Err: errors.New("missing frontend_to_backend")}
	case wire.BackendToDatabase == nil:
		return nil, ParseError{Err: errors.New("missing backend_to_database")}
	}

	var orders []models.Order
	if wire.Orders != nil {
		orders = make([]models.Order, 0, len(wire.Orders))
	}
	for _, o := range wire.Orders {
		createdAt, text := parseCreatedAt(o.CreatedAt)
		orders = append(orders, models.Order{
			ID:            o.ID,
			Description:   o.Description,
			Status:        o.Status,
			CreatedAt:     createdAt,
			CreatedAtText: text,
		})
	}

	return &models.DemoResult{
		FrontendToBackend: *wire.FrontendToBackend,
		BackendToDatabase: *wire.BackendToDatabase,
		Orders:            orders,
		Timestamp:         wire.Timestamp,
	}, nil
}

// parseCreatedAt returns the parsed time, or the raw text when no layout matches.
func parseCreatedAt(raw json.RawMessage) (time.Time, string) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return time.Time{}, string(raw)
	}

	text = strings.TrimSpace(text)
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, ""
		}
	}

	log.Debug().Str("created_at", text).Msg("Unparseable order date")
	return time.Time{}, text
}

// statusText returns the reason phrase sent by the server, falling back to the standard text.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
