package models

import "time"

// Identifiers of the two workload identity integration patterns.
const (
	// PatternEnvoySDS is the frontend-to-backend hop: a sidecar proxy fetches SVIDs over SDS.
	PatternEnvoySDS = "envoy-sds"
	// PatternSpiffeHelper is the backend-to-database hop: SVID files written to disk by spiffe-helper.
	PatternSpiffeHelper = "spiffe-helper"
)

// ConnectionStatus is the outcome of one identity-backed connection check.
type ConnectionStatus struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Pattern string `json:"pattern"`
}

// DemoResult is the body returned by GET /api/demo.
type DemoResult struct {
	FrontendToBackend ConnectionStatus `json:"frontend_to_backend"`
	BackendToDatabase ConnectionStatus `json:"backend_to_database"`
	Orders            []Order          `json:"orders,omitempty"`
	Timestamp         time.Time        `json:"timestamp,omitzero"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Component string `json:"component"`
	Status    string `json:"status"`
}
