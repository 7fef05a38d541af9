package handlers

import (
	"net/http"

	"invoice-backend/internal/health"
	"invoice-backend/pkg/utils"
)

type HealthHandler struct {
	checker *health.HealthChecker
}

func NewHealthHandler(checker *health.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// BasicHealth is the liveness probe
func (h *HealthHandler) BasicHealth(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadinessHealth reports database and cache reachability
func (h *HealthHandler) ReadinessHealth(w http.ResponseWriter, r *http.Request) {
	status := h.checker.CheckBasic(r.Context())
	utils.JSON(w, statusCode(status.Status), status)
}

// DetailedHealth adds host statistics
func (h *HealthHandler) DetailedHealth(w http.ResponseWriter, r *http.Request) {
	status := h.checker.CheckDetailed(r.Context())
	utils.JSON(w, statusCode(status.Status), status)
}

func statusCode(status string) int {
	if status == health.StatusHealthy {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}
