// Package demo drives the demo page: it runs the probe and projects the outcome onto the page widgets.
package demo

import (
	"context"
	"strconv"
	"sync"
	"time"

	"mtlsdemo/pkg/log"
	"mtlsdemo/pkg/models"
)

const (
	// FailurePrefix starts the frontend-to-backend message when the probe itself failed.
	FailurePrefix = "Connection failed: "
	// UndeterminedMessage is shown for the backend-to-database hop when the probe failed.
	UndeterminedMessage = "Unable to determine (frontend-to-backend failed)"

	// DefaultDateLayout matches the en-US short date format browsers use.
	DefaultDateLayout = "1/2/2006"
)

// State is the controller's page state.
type State int

const (
	StateIdle State = iota
	StateChecking
	StateDisplayed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChecking:
		return "checking"
	case StateDisplayed:
		return "displayed"
	default:
		return "unknown"
	}
}

// Controller runs probes and renders their results. Only one probe runs at a time.
type Controller struct {
	prober     Prober
	widgets    Widgets
	dateLayout string
	location   *time.Location

	mu       sync.Mutex
	state    State
	inFlight bool
	gen      uint64
}

// Option customizes a Controller.
type Option func(*Controller)

// WithDateLayout sets the time layout used for the created date on order cards.
func WithDateLayout(layout string) Option {
	return func(c *Controller) {
		if layout != "" {
			c.dateLayout = layout
		}
	}
}

// WithLocation sets the time zone order dates are shown in.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		if loc != nil {
			c.location = loc
		}
	}
}

// NewController binds a controller to its prober and widgets and puts the widgets in the idle state.
func NewController(prober Prober, widgets Widgets, opts ...Option) *Controller {
	if prober == nil {
		panic("demo.NewController: nil prober")
	}
	if !widgets.complete() {
		panic("demo.NewController: missing widget")
	}

	c := &Controller{
		prober:     prober,
		widgets:    widgets,
		dateLayout: DefaultDateLayout,
		location:   time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.state = StateIdle
	c.project(StateIdle)
	c.widgets.Results.SetVisible(false)

	return c
}

// State returns the current page state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RunProbe performs one probe and renders its outcome. Probe failures are rendered and also returned;
// ErrProbeInFlight is returned without touching any widget.
func (c *Controller) RunProbe(ctx context.Context) error {
	release, ok := c.begin()
	if !ok {
		return ErrProbeInFlight
	}
	defer release()

	result, err := c.prober.Probe(ctx)
	if err != nil {
		log.Warn().Err(err).Str("kind", Kind(err)).Msg("Demo probe failed")
		c.showFailure(err)
		return err
	}

	log.Debug().
		Bool("frontend_to_backend", result.FrontendToBackend.Success).
		Bool("backend_to_database", result.BackendToDatabase.Success).
		Int("orders", len(result.Orders)).
		Msg("Demo probe completed")
	c.showResult(result)
	return nil
}

// RenderOrders replaces the record list with one card per order, in order.
func (c *Controller) RenderOrders(orders []models.Order) {
	c.widgets.Records.Clear()
	for _, order := range orders {
		c.widgets.Records.Append(c.card(order))
	}
}

// begin marks a probe as in flight and returns the func that ends it.
func (c *Controller) begin() (func(), bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return nil, false
	}

	c.inFlight = true
	c.state = StateChecking
	c.gen++

	c.project(StateChecking)
	c.widgets.Results.SetVisible(false)
	ResetStatusWidget(c.widgets.FrontendToBackend)
	ResetStatusWidget(c.widgets.BackendToDatabase)

	return c.end, true
}

// end finishes the probe before the trigger is enabled again, so an activation
// fired by the enabled trigger starts a new probe instead of being refused.
func (c *Controller) end() {
	c.mu.Lock()
	c.inFlight = false
	c.state = StateDisplayed
	gen := c.gen
	c.widgets.Busy.SetVisible(false)
	c.mu.Unlock()

	// The trigger may start the next probe from SetEnabled, so it is called without the lock.
	c.widgets.Trigger.SetEnabled(true)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine started a probe in between; its trigger stays disabled.
	if c.gen != gen && c.inFlight {
		c.project(StateChecking)
	}
}

// project applies the trigger and busy indicator for state. Callers hold c.mu
// or own the controller exclusively.
func (c *Controller) project(state State) {
	busy := state == StateChecking
	c.widgets.Trigger.SetEnabled(!busy)
	c.widgets.Busy.SetVisible(busy)
}

func (c *Controller) showResult(result *models.DemoResult) {
	ApplyConnectionStatus(c.widgets.FrontendToBackend, result.FrontendToBackend)
	ApplyConnectionStatus(c.widgets.BackendToDatabase, result.BackendToDatabase)

	if len(result.Orders) > 0 {
		c.RenderOrders(result.Orders)
		c.widgets.Results.SetVisible(true)
	}
}

func (c *Controller) showFailure(err error) {
	ApplyConnectionStatus(c.widgets.FrontendToBackend, models.ConnectionStatus{
		Success: false,
		Message: FailurePrefix + err.Error(),
		Pattern: models.PatternEnvoySDS,
	})
	ApplyConnectionStatus(c.widgets.BackendToDatabase, models.ConnectionStatus{
		Success: false,
		Message: UndeterminedMessage,
		Pattern: models.PatternSpiffeHelper,
	})
}

func (c *Controller) card(order models.Order) OrderCard {
	created := order.CreatedAtText
	if !order.CreatedAt.IsZero() {
		created = order.CreatedAt.In(c.location).Format(c.dateLayout)
	}

	return OrderCard{
		ID:          order.ID,
		Title:       "Order #" + strconv.FormatInt(order.ID, 10),
		Description: order.Description,
		Status:      order.Status,
		Created:     created,
	}
}
