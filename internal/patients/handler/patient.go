package handler

import (
	"net/http"

	"medbook/internal/patients/service"
	httputil "medbook/pkg/http"
	"medbook/pkg/logger"
	"medbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PatientHandler struct {
	service service.PatientService
	log     *logger.Logger
}

func NewPatientHandler(service service.PatientService, log *logger.Logger) *PatientHandler {
	return &PatientHandler{
		service: service,
		log:     log,
	}
}

func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var profile model.PatientProfile
	if err := httputil.DecodeBody(r, &profile); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	patient, err := h.service.UpsertProfile(r.Context(), &profile)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, patient); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *PatientHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	patient, err := h.service.GetProfile(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, patient); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PatientHandler) SetName(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req struct {
		Name string `json:"name"`
	}
	if err := httputil.DecodeBody(r, &req); err != nil {
		h.writeError(w, "SetName", err)
		return
	}

	if err := h.service.SetName(r.Context(), ps.ByName("id"), req.Name); err != nil {
		h.writeError(w, "SetName", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PatientHandler) GetAppointments(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appointments, err := h.service.GetAppointments(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetAppointments", err)
		return
	}

	if err := httputil.WriteSuccess(w, appointments); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAppointments", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PatientHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *PatientHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/patients", h.Create)
	router.GET("/api/v1/patients/:id", h.GetByID)
	router.PUT("/api/v1/patients/:id/name", h.SetName)
	router.GET("/api/v1/patients/:id/appointments", h.GetAppointments)
}
