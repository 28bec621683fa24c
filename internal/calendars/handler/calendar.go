package handler

import (
	"encoding/json"
	"net/http"

	"reservd/internal/calendars/service"
	httputil "reservd/pkg/http"
	"reservd/pkg/logger"
	"reservd/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type CalendarHandler struct {
	service service.CalendarService
	log     *logger.Logger
}

func NewCalendarHandler(service service.CalendarService, log *logger.Logger) *CalendarHandler {
	return &CalendarHandler{
		service: service,
		log:     log,
	}
}

func (h *CalendarHandler) UpsertOverride(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	resourceID := ps.ByName("id")

	var up model.OverrideUpsert
	if err := json.NewDecoder(r.Body).Decode(&up); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpsertOverride", "error", writeErr)
		}
		return
	}

	ov, err := h.service.UpsertOverride(r.Context(), resourceID, &up)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpsertOverride", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, ov); err != nil {
		h.log.Error("failed to write success response", "handler", "UpsertOverride", "error", err)
	}
}

func (h *CalendarHandler) ListOverrides(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	resourceID := ps.ByName("id")
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	overrides, err := h.service.ListOverrides(r.Context(), resourceID, from, to)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListOverrides", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, overrides); err != nil {
		h.log.Error("failed to write success response", "handler", "ListOverrides", "error", err)
	}
}

func (h *CalendarHandler) DeleteOverride(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	resourceID := ps.ByName("id")
	date := ps.ByName("date")

	if err := h.service.DeleteOverride(r.Context(), resourceID, date); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DeleteOverride", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CalendarHandler) GetEffectiveHours(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	resourceID := ps.ByName("id")

	date, err := httputil.RequiredQuery(r, "date")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetEffectiveHours", "error", writeErr)
		}
		return
	}

	hours, err := h.service.EffectiveHours(r.Context(), resourceID, date)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetEffectiveHours", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, hours); err != nil {
		h.log.Error("failed to write success response", "handler", "GetEffectiveHours", "error", err)
	}
}

func (h *CalendarHandler) RegisterRoutes(router *httprouter.Router) {
	router.PUT("/api/v1/resources/id/:id/overrides", h.UpsertOverride)
	router.GET("/api/v1/resources/id/:id/overrides", h.ListOverrides)
	router.DELETE("/api/v1/resources/id/:id/overrides/:date", h.DeleteOverride)
	router.GET("/api/v1/resources/id/:id/hours", h.GetEffectiveHours)
}
