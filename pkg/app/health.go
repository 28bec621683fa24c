package app

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo"

	httputil "reservd/pkg/http"
	"reservd/pkg/logger"
)

// healthHandler serves liveness and readiness. Liveness never touches
// dependencies; readiness pings storage so a broken connection takes the
// instance out of rotation.
type healthHandler struct {
	mongo *mongo.Client
	log   *logger.Logger
}

func newHealthHandler(mongoClient *mongo.Client, log *logger.Logger) *healthHandler {
	return &healthHandler{mongo: mongoClient, log: log}
}

func (h *healthHandler) RegisterRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/health", h.Health)
	router.HandlerFunc(http.MethodGet, "/ready", h.Ready)
}

func (h *healthHandler) Health(w http.ResponseWriter, r *http.Request) {
	_ = httputil.WriteSuccess(w, map[string]string{"status": "ok"})
}

func (h *healthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.mongo != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.mongo.Ping(ctx, nil); err != nil {
			h.log.Error("Readiness check failed", "error", err)
			_ = httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
			})
			return
		}
	}

	_ = httputil.WriteSuccess(w, map[string]string{"status": "ready"})
}
