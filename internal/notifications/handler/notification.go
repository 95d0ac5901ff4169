package handler

import (
	"net/http"

	"medbook/internal/notifications/repository"
	apperrors "medbook/pkg/errors"
	httputil "medbook/pkg/http"
	"medbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type NotificationHandler struct {
	repo repository.NotificationRepository
	log  *logger.Logger
}

func NewNotificationHandler(repo repository.NotificationRepository, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		repo: repo,
		log:  log,
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	notifications, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		h.log.Error("Failed to list notifications", "error", err)
		h.writeError(w, apperrors.Internal("Failed to list notifications", err))
		return
	}
	total, err := h.repo.Count(r.Context())
	if err != nil {
		h.log.Error("Failed to count notifications", "error", err)
		h.writeError(w, apperrors.Internal("Failed to count notifications", err))
		return
	}

	if err := httputil.WritePaginated(w, notifications, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *NotificationHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
	}
}

func (h *NotificationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/notifications", h.List)
}
