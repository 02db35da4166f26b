package log

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// FormatJSON selects one JSON object per line instead of the colored console output.
const FormatJSON = "json"

// Event names attached to connection log lines.
const (
	EventConnectionAttempt = "connection_attempt"
	EventConnectionSuccess = "connection_success"
	EventConnectionFailure = "connection_failure"
)

var Logger zerolog.Logger

func init() {
	Logger = New(os.Stderr, os.Getenv("LOG_FORMAT"))

	// Set global logger
	log.Logger = Logger
}

// New builds an info level logger writing to out.
func New(out io.Writer, format string) zerolog.Logger {
	writer := out
	if !strings.EqualFold(strings.TrimSpace(format), FormatJSON) {
		writer = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(writer).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()
}

// Configure replaces the package logger so that every line carries the component name.
func Configure(component, format string) {
	Logger = New(os.Stderr, format).With().Str("component", component).Logger()
	log.Logger = Logger
}

// Info logs an info message.
func Info() *zerolog.Event {
	return Logger.Info()
}

// Error logs an error message.
func Error() *zerolog.Event {
	return Logger.Error()
}

// Warn logs a warning message.
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Debug logs a debug message.
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Fatal logs a fatal message and exits.
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}

// SetDebugMode switches the logger to debug level.
func SetDebugMode() {
	Logger = Logger.Level(zerolog.DebugLevel)
	log.Logger = Logger
}

// ConnectionAttempt records that a workload is about to dial target using the given pattern.
func ConnectionAttempt(pattern, target, spiffeID string) {
	Logger.Info().
		Str("pattern", pattern).
		Str("event", EventConnectionAttempt).
		Str("target", target).
		Str("spiffe_id", spiffeID).
		Msg("Attempting connection")
}

// ConnectionSuccess records an established connection and the identity presented by the peer.
func ConnectionSuccess(pattern, target, spiffeID, peerSPIFFEID string) {
	Logger.Info().
		Str("pattern", pattern).
		Str("event", EventConnectionSuccess).
		Str("target", target).
		Str("spiffe_id", spiffeID).
		Str("peer_spiffe_id", peerSPIFFEID).
		Msg("Connection successful")
}

// ConnectionFailure records a failed connection.
func ConnectionFailure(pattern, target, spiffeID string, err error) {
	Logger.Error().
		Err(err).
		Str("pattern", pattern).
		Str("event", EventConnectionFailure).
		Str("target", target).
		Str("spiffe_id", spiffeID).
		Msg("Connection failed")
}

// PeerValidated records a connection that was authenticated before it reached this process,
// e.g. by a sidecar proxy enforcing the peer identity.
func PeerValidated(pattern, spiffeID, peerSPIFFEID, message string) {
	Logger.Info().
		Str("pattern", pattern).
		Str("event", EventConnectionSuccess).
		Str("spiffe_id", spiffeID).
		Str("peer_spiffe_id", peerSPIFFEID).
		Msg(message)
}
