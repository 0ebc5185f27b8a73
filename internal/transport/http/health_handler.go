package http

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// HealthResponse is the GET /api/v1/health body.
type HealthResponse struct {
	Status  string    `json:"status"`
	Version string    `json:"version"`
	Uptime  string    `json:"uptime"`
	Time    time.Time `json:"time"`
}

// HealthHandler reports liveness.
type HealthHandler struct {
	version string
	started time.Time
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version, started: time.Now()}
}

// ServeHTTP handles GET /api/v1/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:  "ok",
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Time:    time.Now().UTC(),
	})
}
