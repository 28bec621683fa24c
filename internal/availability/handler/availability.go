package handler

import (
	"net/http"
	"time"

	"reservd/internal/availability/service"
	httputil "reservd/pkg/http"
	"reservd/pkg/logger"
	"reservd/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

type availabilityResponse struct {
	ResourceID string       `json:"resource_id"`
	Date       string       `json:"date"`
	Slots      []model.Slot `json:"slots"`
}

func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	resourceID, err := httputil.RequiredQuery(r, "resource_id")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "error", writeErr)
		}
		return
	}

	date, err := httputil.RequiredQuery(r, "date")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "error", writeErr)
		}
		return
	}

	slots, err := h.service.GetAvailability(r.Context(), resourceID, date, time.Now().UTC())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, availabilityResponse{
		ResourceID: resourceID,
		Date:       date,
		Slots:      slots,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "error", err)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability", h.Get)
}
