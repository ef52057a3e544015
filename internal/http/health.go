package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookclubhq/bookclub/internal/database"
)

// HealthResponse reports process liveness and the state of each dependency
// the server needs to do useful work.
type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthController answers readiness probes against the local cache.
type HealthController struct {
	db      *database.Database
	version string
}

// NewHealthController creates a health controller.
func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{db: db, version: version}
}

// Status pings the cache database and reports healthy or unhealthy. The
// backend is deliberately not probed here: the app works offline, so an
// unreachable backend must not fail readiness.
func (h *HealthController) Status(c *gin.Context) {
	checks := map[string]string{
		"database": h.checkCache(),
	}

	status, code := "healthy", http.StatusOK
	for _, result := range checks {
		if result != "ok" && result != "not configured" {
			status, code = "unhealthy", http.StatusServiceUnavailable
			break
		}
	}

	c.IndentedJSON(code, HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	})
}

// checkCache pings the SQLite cache through the pooled connection.
func (h *HealthController) checkCache() string {
	if h.db == nil {
		return "not configured"
	}

	sqlDB, err := h.db.DB.DB()
	if err != nil {
		return "error: " + err.Error()
	}
	if err := sqlDB.Ping(); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
