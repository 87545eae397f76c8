package audithandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"fieldops/internal/domain/audit"
	"fieldops/internal/domain/auth"
	"fieldops/internal/transport/http/api"
	"fieldops/internal/transport/http/middleware"
	"fieldops/internal/transport/http/shared"
)

type Handler struct {
	Audit *audit.Service
}

func NewHandler(auditSvc *audit.Service) *Handler {
	return &Handler{Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireCapability(auth.CapViewAllLeaves)).Get("/audit", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	entries, err := h.Audit.List(r.Context(), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit entries", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, entries, middleware.GetRequestID(r.Context()))
}
