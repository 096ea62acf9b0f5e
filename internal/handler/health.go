package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/itchan-dev/boardapi/internal/utils"
)

type healthResponse struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime"`
}

// Health is a liveness probe endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, healthResponse{
		Status: "UP",
		Uptime: time.Since(h.startedAt).Seconds(),
	})
}

// Ready is a readiness probe endpoint.
// Returns 503 Service Unavailable if the database can't be reached.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		utils.WriteMessage(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	utils.WriteMessage(w, http.StatusOK, "ok")
}
