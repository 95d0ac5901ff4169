package handler

import (
	"net/http"

	"medbook/internal/doctors/service"
	httputil "medbook/pkg/http"
	"medbook/pkg/logger"
	"medbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type DoctorHandler struct {
	service service.DoctorService
	log     *logger.Logger
}

func NewDoctorHandler(service service.DoctorService, log *logger.Logger) *DoctorHandler {
	return &DoctorHandler{
		service: service,
		log:     log,
	}
}

type nameRequest struct {
	Name string `json:"name"`
}

type specializationRequest struct {
	Specialization string `json:"specialization"`
}

type availabilityRequest struct {
	Slots []model.SlotDefinition `json:"slots"`
}

func (h *DoctorHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var profile model.DoctorProfile
	if err := httputil.DecodeBody(r, &profile); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	doctor, err := h.service.UpsertProfile(r.Context(), &profile)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, doctor); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *DoctorHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	doctor, err := h.service.GetProfile(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, doctor); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DoctorHandler) SetName(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req nameRequest
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

func (h *DoctorHandler) SetSpecialization(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req specializationRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		h.writeError(w, "SetSpecialization", err)
		return
	}

	if err := h.service.SetSpecialization(r.Context(), ps.ByName("id"), req.Specialization); err != nil {
		h.writeError(w, "SetSpecialization", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *DoctorHandler) DefineAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req availabilityRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		h.writeError(w, "DefineAvailability", err)
		return
	}

	slots, err := h.service.DefineAvailability(r.Context(), ps.ByName("id"), req.Slots)
	if err != nil {
		h.writeError(w, "DefineAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "DefineAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DoctorHandler) GetAvailableSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	from, to, err := httputil.ExtractTimeRange(r)
	if err != nil {
		h.writeError(w, "GetAvailableSlots", err)
		return
	}

	slots, err := h.service.GetAvailableSlots(r.Context(), ps.ByName("id"), from, to)
	if err != nil {
		h.writeError(w, "GetAvailableSlots", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAvailableSlots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DoctorHandler) GetAllTimeSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slots, err := h.service.GetAllTimeSlots(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetAllTimeSlots", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAllTimeSlots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DoctorHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *DoctorHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/doctors", h.Create)
	router.GET("/api/v1/doctors/:id", h.GetByID)
	router.PUT("/api/v1/doctors/:id/name", h.SetName)
	router.PUT("/api/v1/doctors/:id/specialization", h.SetSpecialization)
	router.POST("/api/v1/doctors/:id/availability", h.DefineAvailability)
	router.GET("/api/v1/doctors/:id/available-slots", h.GetAvailableSlots)
	router.GET("/api/v1/doctors/:id/slots", h.GetAllTimeSlots)
}
