// Package handlers provides the HTTP API handlers for clipforge.
package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

// HealthHandler handles the health check endpoint.
type HealthHandler struct {
	version   string
	startTime time.Time
	db        *gorm.DB
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startTime: time.Now(),
	}
}

// WithDB sets the database connection for health checks.
func (h *HealthHandler) WithDB(db *gorm.DB) *HealthHandler {
	h.db = db
	return h
}

// HealthOutput is the output for the health check endpoint.
type HealthOutput struct {
	Body struct {
		Status    string            `json:"status"`
		Version   string            `json:"version"`
		Timestamp string            `json:"timestamp"`
		Uptime    string            `json:"uptime"`
		Checks    map[string]string `json:"checks"`
	}
}

// Register registers the health route with the API.
func (h *HealthHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getHealth",
		Method:      "GET",
		Path:        "/api/v1/health",
		Summary:     "Health check",
		Description: "Returns service status, version and database reachability",
		Tags:        []string{"System"},
	}, h.GetHealth)
}

// GetHealth returns the health status of the service.
func (h *HealthHandler) GetHealth(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	out := &HealthOutput{}
	out.Body.Status = "healthy"
	out.Body.Version = h.version
	out.Body.Timestamp = time.Now().UTC().Format(time.RFC3339)
	out.Body.Uptime = time.Since(h.startTime).Round(time.Second).String()
	out.Body.Checks = map[string]string{
		"database": h.databaseCheck(ctx),
	}
	if out.Body.Checks["database"] != "ok" {
		out.Body.Status = "degraded"
	}
	return out, nil
}

func (h *HealthHandler) databaseCheck(ctx context.Context) string {
	if h.db == nil {
		return "unknown"
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return "error"
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return "error"
	}
	return "ok"
}
