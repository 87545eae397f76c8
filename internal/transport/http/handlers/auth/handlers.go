package authhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fieldops/internal/domain/auth"
	"fieldops/internal/transport/http/api"
	"fieldops/internal/transport/http/middleware"
)

type Handler struct {
	Store  *auth.Store
	Secret string
}

func NewHandler(store *auth.Store, secret string) *Handler {
	return &Handler{Store: store, Secret: secret}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.Email = strings.TrimSpace(strings.ToLower(payload.Email))
	if payload.Email == "" || payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "email and password are required", middleware.GetRequestID(r.Context()))
		return
	}

	principal, err := h.Store.Authenticate(r.Context(), payload.Email, payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to authenticate", middleware.GetRequestID(r.Context()))
		return
	}

	token, err := auth.IssueToken(h.Secret, principal.EmployeeID, principal.Role)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{
		"token": token,
		"user": map[string]any{
			"id":           principal.EmployeeID,
			"role":         principal.Role,
			"capabilities": auth.CapabilitiesForRole(principal.Role),
		},
	}, middleware.GetRequestID(r.Context()))
}

// HandleMe echoes the authenticated principal so clients can rebuild their
// session state from a stored token.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{
		"id":           user.EmployeeID,
		"role":         user.Role,
		"capabilities": auth.CapabilitiesForRole(user.Role),
	}, middleware.GetRequestID(r.Context()))
}
