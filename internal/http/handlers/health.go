package handlers

import (
	"net/http"
	"time"

	"github.com/hongminglow/barbershop-users/internal/http/respond"
)

const (
	ServiceName    = "barbershop-user-service"
	ServiceVersion = "0.1.0"
)

// HealthHandler returns uptime and basic status.
type HealthHandler struct {
	startedAt time.Time
	respond   *respond.Responder
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, rs *respond.Responder) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, respond: rs}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	h.respond.JSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
		"version": ServiceVersion,
		"uptime":  time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}
