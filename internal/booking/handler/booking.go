package handler

import (
	"net/http"

	"medbook/internal/booking/service"
	httputil "medbook/pkg/http"
	"medbook/pkg/logger"
	"medbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		h.writeError(w, "Book", err)
		return
	}

	accepted, err := h.service.Book(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Book", err)
		return
	}

	if err := httputil.WriteAccepted(w, accepted); err != nil {
		h.log.Error("failed to write accepted response", "handler", "Book", "operation", "WriteAccepted", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	saga, err := h.service.Get(r.Context(), ps.ByName("correlation_id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, saga); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	accepted, err := h.service.Confirm(r.Context(), ps.ByName("correlation_id"))
	h.respond(w, "Confirm", accepted, err)
}

// Cancel accepts an empty body; the saga then uses its default reason.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.CancelRequest
	if err := httputil.DecodeOptionalBody(r, &req); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	accepted, err := h.service.Cancel(r.Context(), ps.ByName("correlation_id"), &req)
	h.respond(w, "Cancel", accepted, err)
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	accepted, err := h.service.Complete(r.Context(), ps.ByName("correlation_id"))
	h.respond(w, "Complete", accepted, err)
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	accepted, err := h.service.Delete(r.Context(), ps.ByName("correlation_id"))
	h.respond(w, "Delete", accepted, err)
}

func (h *BookingHandler) respond(w http.ResponseWriter, handler string, accepted *model.BookingAccepted, err error) {
	if err != nil {
		h.writeError(w, handler, err)
		return
	}
	if err := httputil.WriteAccepted(w, accepted); err != nil {
		h.log.Error("failed to write accepted response", "handler", handler, "operation", "WriteAccepted", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Book)
	router.GET("/api/v1/bookings/:correlation_id", h.GetByID)
	router.POST("/api/v1/bookings/:correlation_id/confirm", h.Confirm)
	router.POST("/api/v1/bookings/:correlation_id/cancel", h.Cancel)
	router.POST("/api/v1/bookings/:correlation_id/complete", h.Complete)
	router.DELETE("/api/v1/bookings/:correlation_id", h.Delete)
}
