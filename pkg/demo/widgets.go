package demo

import (
	"context"

	"mtlsdemo/pkg/models"
)

// Visual is the look of a status widget.
type Visual int

const (
	VisualChecking Visual = iota
	VisualSuccess
	VisualFailure
)

func (v Visual) String() string {
	switch v {
	case VisualChecking:
		return "checking"
	case VisualSuccess:
		return "success"
	case VisualFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Status widget classes, icons and labels.
const (
	ClassStatus        = "status-indicator"
	ClassStatusSuccess = "status-indicator status-success"
	ClassStatusFailure = "status-indicator status-error"

	IconChecking = "⏳"
	IconSuccess  = "✅"
	IconFailure  = "❌"

	LabelChecking = "Checking..."
	LabelSuccess  = "SUCCESS"
	LabelFailure  = "FAILED"
)

// StatusView is everything a status widget displays.
type StatusView struct {
	Visual  Visual
	Class   string
	Icon    string
	Label   string
	Message string
}

var checkingView = StatusView{
	Visual: VisualChecking,
	Class:  ClassStatus,
	Icon:   IconChecking,
	Label:  LabelChecking,
}

// StatusViewFor maps a connection status to its view.
func StatusViewFor(status models.ConnectionStatus) StatusView {
	if status.Success {
		return StatusView{
			Visual:  VisualSuccess,
			Class:   ClassStatusSuccess,
			Icon:    IconSuccess,
			Label:   LabelSuccess,
			Message: status.Message,
		}
	}

	return StatusView{
		Visual:  VisualFailure,
		Class:   ClassStatusFailure,
		Icon:    IconFailure,
		Label:   LabelFailure,
		Message: status.Message,
	}
}

// OrderCard is one rendered record.
type OrderCard struct {
	ID          int64
	Title       string
	Description string
	Status      string
	Created     string
}

// Trigger is the control that starts a probe.
type Trigger interface {
	SetEnabled(enabled bool)
}

// Visibility is an element that can be shown or hidden.
type Visibility interface {
	SetVisible(visible bool)
}

// StatusWidget shows the state of one connection pattern.
type StatusWidget interface {
	Show(view StatusView)
}

// RecordList is the container order cards are rendered into.
type RecordList interface {
	Clear()
	Append(card OrderCard)
}

// Prober performs the demo probe.
type Prober interface {
	Probe(ctx context.Context) (*models.DemoResult, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context) (*models.DemoResult, error)

// Probe implements Prober.
func (f ProberFunc) Probe(ctx context.Context) (*models.DemoResult, error) {
	return f(ctx)
}

// Widgets groups the outputs a Controller drives.
type Widgets struct {
	Trigger           Trigger
	Busy              Visibility
	Results           Visibility
	Records           RecordList
	FrontendToBackend StatusWidget
	BackendToDatabase StatusWidget
}

func (w Widgets) complete() bool {
	return w.Trigger != nil &&
		w.Busy != nil &&
		w.Results != nil &&
		w.Records != nil &&
		w.FrontendToBackend != nil &&
		w.BackendToDatabase != nil
}

// ResetStatusWidget puts a widget back into the neutral checking state with no message.
func ResetStatusWidget(widget StatusWidget) {
	widget.Show(checkingView)
}

// ApplyConnectionStatus shows status on widget.
func ApplyConnectionStatus(widget StatusWidget, status models.ConnectionStatus) {
	widget.Show(StatusViewFor(status))
}
