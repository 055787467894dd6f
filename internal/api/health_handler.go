package api

import (
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
)

// Health handles GET /api/health.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:  "OK",
		Message: "Task Management API is running",
	})
}
