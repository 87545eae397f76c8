package leavehandler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"fieldops/internal/domain/audit"
	"fieldops/internal/domain/auth"
	"fieldops/internal/domain/leave"
	"fieldops/internal/domain/notifications"
	"fieldops/internal/transport/http/api"
	"fieldops/internal/transport/http/middleware"
	"fieldops/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *leave.Service, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/types", h.handleListTypes)
		r.Get("/types/{typeID}", h.handleGetType)
		r.With(middleware.RequireCapability(auth.CapManageTypes)).Post("/types", h.handleCreateType)
		r.With(middleware.RequireCapability(auth.CapManageTypes)).Put("/types/{typeID}", h.handleUpdateType)
		r.With(middleware.RequireCapability(auth.CapManageTypes)).Delete("/types/{typeID}", h.handleDeleteType)
		r.With(middleware.RequireCapability(auth.CapManageTypes)).Post("/types/{typeID}/toggle", h.handleToggleType)

		r.Get("/rules", h.handleListRules)
		r.With(middleware.RequireCapability(auth.CapManageRules)).Put("/rules", h.handleReplaceRules)
		r.Get("/entitlement", h.handleEntitlement)

		r.Get("/balances", h.handleListBalances)
		r.Get("/status", h.handleStatus)

		r.Get("/requests", h.handleListRequests)
		r.Post("/requests", h.handleCreateRequest)
		r.Get("/requests/active", h.handleActiveRequests)
		r.Get("/requests/{requestID}", h.handleGetRequest)
		r.Put("/requests/{requestID}", h.handleUpdateRequest)
		r.With(middleware.RequireCapability(auth.CapApproveLeaves)).Post("/requests/{requestID}/approve", h.handleApproveRequest)
		r.With(middleware.RequireCapability(auth.CapApproveLeaves)).Post("/requests/{requestID}/reject", h.handleRejectRequest)
		r.Post("/requests/{requestID}/cancel", h.handleCancelRequest)
		r.With(middleware.RequireCapability(auth.CapApproveLeaves)).Post("/requests/{requestID}/edit-dates", h.handleEditRequestDates)
	})
}

// failDomain translates a business-rule rejection into its HTTP shape.
// Anything that is not a rejection is an infrastructure failure.
func failDomain(w http.ResponseWriter, r *http.Request, err error, fallbackCode string) {
	requestID := middleware.GetRequestID(r.Context())
	rej, ok := leave.AsRejection(err)
	if !ok {
		slog.Error("leave operation failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, fallbackCode, "operation failed", requestID)
		return
	}

	status := http.StatusBadRequest
	switch rej.Kind {
	case leave.KindNotFound:
		status = http.StatusNotFound
	case leave.KindUnauthorized:
		status = http.StatusForbidden
	case leave.KindConflict, leave.KindDuplicateRule:
		status = http.StatusConflict
	}
	api.FailWithDetails(w, status, strings.ToLower(rej.Kind), rej.Message, rej.Details, requestID)
}

func (h *Handler) record(r *http.Request, actorID, action, entityType, entityID string, payload any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), actorID, action, entityType, entityID, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func (h *Handler) notify(r *http.Request, recipientID, kind, message, referenceID string) {
	if h.Notify == nil || recipientID == "" {
		return
	}
	if err := h.Notify.Notify(r.Context(), recipientID, kind, message, referenceID); err != nil {
		slog.Warn("notification failed", "kind", kind, "err", err)
	}
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	includeInactive := r.URL.Query().Get("includeInactive") == "true"
	types, err := h.Service.ListLeaveTypes(r.Context(), user, includeInactive)
	if err != nil {
		failDomain(w, r, err, "leave_types_failed")
		return
	}
	api.Success(w, types, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetType(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	leaveType, err := h.Service.LeaveTypeByID(r.Context(), user, chi.URLParam(r, "typeID"))
	if err != nil {
		failDomain(w, r, err, "leave_type_failed")
		return
	}
	api.Success(w, leaveType, middleware.GetRequestID(r.Context()))
}

type leaveTypePayload struct {
	Name              string `json:"name"`
	MaxDays           int    `json:"maxDays"`
	IsPaid            *bool  `json:"isPaid"`
	GenderRestriction string `json:"genderRestriction"`
	Description       string `json:"description"`
}

func (h *Handler) handleCreateType(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload leaveTypePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if payload.MaxDays < 0 {
		v.Add("maxDays", "must not be negative")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	isPaid := true
	if payload.IsPaid != nil {
		isPaid = *payload.IsPaid
	}

	created, err := h.Service.CreateLeaveType(r.Context(), user, leave.LeaveType{
		Name:              strings.TrimSpace(payload.Name),
		MaxDays:           payload.MaxDays,
		IsPaid:            isPaid,
		GenderRestriction: payload.GenderRestriction,
		Description:       payload.Description,
	})
	if err != nil {
		failDomain(w, r, err, "leave_type_create_failed")
		return
	}

	h.record(r, user.EmployeeID, "leave.type.create", "leave_type", created.ID, payload)
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

type updateTypePayload struct {
	Name              *string `json:"name"`
	MaxDays           *int    `json:"maxDays"`
	IsPaid            *bool   `json:"isPaid"`
	GenderRestriction *string `json:"genderRestriction"`
	Description       *string `json:"description"`
}

func (h *Handler) handleUpdateType(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload updateTypePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	typeID := chi.URLParam(r, "typeID")
	updated, err := h.Service.UpdateLeaveType(r.Context(), user, typeID, leave.UpdateLeaveTypeInput{
		Name:              payload.Name,
		MaxDays:           payload.MaxDays,
		IsPaid:            payload.IsPaid,
		GenderRestriction: payload.GenderRestriction,
		Description:       payload.Description,
	})
	if err != nil {
		failDomain(w, r, err, "leave_type_update_failed")
		return
	}

	h.record(r, user.EmployeeID, "leave.type.update", "leave_type", typeID, payload)
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteType(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	typeID := chi.URLParam(r, "typeID")
	if err := h.Service.DeleteLeaveType(r.Context(), user, typeID); err != nil {
		failDomain(w, r, err, "leave_type_delete_failed")
		return
	}

	h.record(r, user.EmployeeID, "leave.type.delete", "leave_type", typeID, nil)
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleToggleType(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	typeID := chi.URLParam(r, "typeID")
	toggled, err := h.Service.ToggleLeaveTypeActive(r.Context(), user, typeID)
	if err != nil {
		failDomain(w, r, err, "leave_type_toggle_failed")
		return
	}

	h.record(r, user.EmployeeID, "leave.type.toggle", "leave_type", typeID, map[string]any{"isActive": toggled.IsActive})
	api.Success(w, toggled, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Service.ListRules(r.Context())
	if err != nil {
		failDomain(w, r, err, "leave_rules_failed")
		return
	}
	api.Success(w, rules, middleware.GetRequestID(r.Context()))
}

type rulePayload struct {
	YearOfService int `json:"yearOfService"`
	DaysEntitled  int `json:"daysEntitled"`
}

func (h *Handler) handleReplaceRules(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload []rulePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	rules := make([]leave.EntitlementRule, 0, len(payload))
	for _, rule := range payload {
		rules = append(rules, leave.EntitlementRule{
			YearOfService: rule.YearOfService,
			DaysEntitled:  rule.DaysEntitled,
		})
	}

	replaced, err := h.Service.ReplaceRules(r.Context(), user, rules)
	if err != nil {
		failDomain(w, r, err, "leave_rules_replace_failed")
		return
	}

	h.record(r, user.EmployeeID, "leave.rules.replace", "entitlement_rule", "", payload)
	api.Success(w, replaced, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEntitlement(w http.ResponseWriter, r *http.Request) {
	serviceYear, err := strconv.Atoi(r.URL.Query().Get("serviceYear"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_request", "serviceYear must be an integer", middleware.GetRequestID(r.Context()))
		return
	}

	days, err := h.Service.ServiceYearEntitlement(r.Context(), serviceYear)
	if err != nil {
		failDomain(w, r, err, "leave_entitlement_failed")
		return
	}
	api.Success(w, map[string]int{"serviceYear": serviceYear, "daysEntitled": days}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListBalances(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	employeeID := r.URL.Query().Get("employeeId")
	period := 0
	if raw := r.URL.Query().Get("period"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_request", "period must be a year", middleware.GetRequestID(r.Context()))
			return
		}
		period = parsed
	}

	balances, err := h.Service.Balances(r.Context(), user, employeeID, period)
	if err != nil {
		failDomain(w, r, err, "leave_balances_failed")
		return
	}
	api.Success(w, balances, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		employeeID = user.EmployeeID
	}
	if employeeID != user.EmployeeID && !user.Can(auth.CapViewAllLeaves) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}

	on := time.Now()
	if raw := r.URL.Query().Get("on"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil || parsed.IsZero() {
			api.Fail(w, http.StatusBadRequest, "invalid_request", "on must be a valid date", middleware.GetRequestID(r.Context()))
			return
		}
		on = parsed
	}

	status, err := h.Service.StatusOn(r.Context(), employeeID, on)
	if err != nil {
		failDomain(w, r, err, "leave_status_failed")
		return
	}
	api.Success(w, status, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	page := shared.ParsePagination(r, 100, 500)
	filter := leave.RequestFilter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Status:     strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}

	requests, err := h.Service.ListRequests(r.Context(), user, filter)
	if err != nil {
		failDomain(w, r, err, "leave_requests_failed")
		return
	}
	api.Success(w, requests, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleActiveRequests(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	on := time.Now()
	if raw := r.URL.Query().Get("on"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil || parsed.IsZero() {
			api.Fail(w, http.StatusBadRequest, "invalid_request", "on must be a valid date", middleware.GetRequestID(r.Context()))
			return
		}
		on = parsed
	}

	requests, err := h.Service.ActiveRequests(r.Context(), user, on)
	if err != nil {
		failDomain(w, r, err, "leave_requests_failed")
		return
	}
	api.Success(w, requests, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	req, err := h.Service.RequestByID(r.Context(), user, chi.URLParam(r, "requestID"))
	if err != nil {
		failDomain(w, r, err, "leave_request_failed")
		return
	}
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

type requestPayload struct {
	LeaveTypeID      string `json:"leaveTypeId"`
	StartDate        string `json:"startDate"`
	EndDate          string `json:"endDate"`
	ReturnToWorkDate string `json:"returnToWorkDate"`
	Message          string `json:"message"`
}

func (h *Handler) parseRequestPayload(w http.ResponseWriter, r *http.Request) (requestPayload, time.Time, time.Time, time.Time, bool) {
	var payload requestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return payload, time.Time{}, time.Time{}, time.Time{}, false
	}

	v := shared.NewValidator()
	v.Required("leaveTypeId", payload.LeaveTypeID, "leave type is required")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	returnDate, _ := v.Date("returnToWorkDate", payload.ReturnToWorkDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return payload, time.Time{}, time.Time{}, time.Time{}, false
	}
	return payload, start, end, returnDate, true
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	payload, start, end, returnDate, ok := h.parseRequestPayload(w, r)
	if !ok {
		return
	}

	created, err := h.Service.CreateRequest(r.Context(), user, leave.CreateRequestInput{
		LeaveTypeID:      payload.LeaveTypeID,
		StartDate:        start,
		EndDate:          end,
		ReturnToWorkDate: returnDate,
		Message:          payload.Message,
	})
	if err != nil {
		failDomain(w, r, err, "leave_request_create_failed")
		return
	}

	h.record(r, user.EmployeeID, "leave.request.create", "leave_request", created.ID, payload)
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	payload, start, end, returnDate, ok := h.parseRequestPayload(w, r)
	if !ok {
		return
	}

	requestID := chi.URLParam(r, "requestID")
	updated, err := h.Service.UpdateRequest(r.Context(), user, requestID, leave.UpdateRequestInput{
		LeaveTypeID:      payload.LeaveTypeID,
		StartDate:        start,
		EndDate:          end,
		ReturnToWorkDate: returnDate,
		Message:          payload.Message,
	})
	if err != nil {
		failDomain(w, r, err, "leave_request_update_failed")
		return
	}

	h.record(r, user.EmployeeID, "leave.request.update", "leave_request", requestID, payload)
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	requestID := chi.URLParam(r, "requestID")
	approved, err := h.Service.Decide(r.Context(), user, requestID, true, "")
	if err != nil {
		failDomain(w, r, err, "leave_request_approve_failed")
		return
	}

	h.record(r, user.EmployeeID, "leave.request.approve", "leave_request", requestID, map[string]any{"employeeId": approved.EmployeeID})
	h.notify(r, approved.EmployeeID, notifications.KindLeaveApproved,
		fmt.Sprintf("Your %s request was approved.", approved.LeaveTypeName), requestID)
	api.Success(w, approved, middleware.GetRequestID(r.Context()))
}

type rejectPayload struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload rejectPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	requestID := chi.URLParam(r, "requestID")
	rejected, err := h.Service.Decide(r.Context(), user, requestID, false, payload.Reason)
	if err != nil {
		failDomain(w, r, err, "leave_request_reject_failed")
		return
	}

	h.record(r, user.EmployeeID, "leave.request.reject", "leave_request", requestID, payload)
	h.notify(r, rejected.EmployeeID, notifications.KindLeaveRejected,
		fmt.Sprintf("Your %s request was rejected: %s", rejected.LeaveTypeName, rejected.RejectionReason), requestID)
	api.Success(w, rejected, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCancelRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	requestID := chi.URLParam(r, "requestID")
	cancelled, err := h.Service.Cancel(r.Context(), user, requestID)
	if err != nil {
		failDomain(w, r, err, "leave_request_cancel_failed")
		return
	}

	h.record(r, user.EmployeeID, "leave.request.cancel", "leave_request", requestID, map[string]any{"employeeId": cancelled.EmployeeID})
	if cancelled.EmployeeID != user.EmployeeID {
		h.notify(r, cancelled.EmployeeID, notifications.KindLeaveCancelled,
			fmt.Sprintf("Your %s request was cancelled.", cancelled.LeaveTypeName), requestID)
	}
	api.Success(w, cancelled, middleware.GetRequestID(r.Context()))
}

type editDatesPayload struct {
	EndDate          string `json:"endDate"`
	ReturnToWorkDate string `json:"returnToWorkDate"`
}

func (h *Handler) handleEditRequestDates(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload editDatesPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	newEnd, _ := v.Date("endDate", payload.EndDate)
	newReturn, _ := v.Date("returnToWorkDate", payload.ReturnToWorkDate)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	requestID := chi.URLParam(r, "requestID")
	edited, err := h.Service.EditDates(r.Context(), user, requestID, newEnd, newReturn)
	if err != nil {
		failDomain(w, r, err, "leave_request_edit_failed")
		return
	}

	h.record(r, user.EmployeeID, "leave.request.edit_dates", "leave_request", requestID, payload)
	api.Success(w, edited, middleware.GetRequestID(r.Context()))
}
