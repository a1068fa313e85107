package handlers

import (
	"context"
	"net/http"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) Result {
	if err := h.store.Ping(r.Context()); err != nil {
		return Unavailable("store unreachable")
	}
	return Ok(MessageResponse{"ok"})
}
