package handlers

import (
	"context"
	"net/http"

	"github.com/avelichko/contactkeeper/internal/handlers/render"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db pinger
}

func NewHealth(db pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) healthcheck(w http.ResponseWriter, r *http.Request) {
	type HealthResponse struct {
		Message string `json:"message"`
	}

	if err := h.db.Ping(r.Context()); err != nil {
		render.ServiceError(w, "Database is not reachable", http.StatusServiceUnavailable)
		return
	}

	render.JSON(w, HealthResponse{Message: "Service is up and running"})
}
