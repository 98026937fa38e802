package medical

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	"github.com/dmitrivolkov/safety-management/internal/transport"
)

type ServiceAPI interface {
	ListTypes(ctx context.Context) ([]*ExaminationType, error)
	CreateType(ctx context.Context, dto ExaminationTypeDTO) (*ExaminationType, error)
	RecordExamination(ctx context.Context, scope *accessctl.Scope, dto ExaminationDTO) (*Examination, error)
	ListForEmployee(ctx context.Context, scope *accessctl.Scope, employeeID int64) ([]*Examination, error)
	ListDue(ctx context.Context, scope *accessctl.Scope, withinDays int) ([]*Examination, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (*accessctl.Scope, bool) {
	scope, ok := accessctl.ScopeFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return scope, true
}

func (h *Handler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.ListTypes(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"examination_types": types})
}

func (h *Handler) CreateType(w http.ResponseWriter, r *http.Request) {
	var dto ExaminationTypeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := h.Service.CreateType(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) RecordExamination(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	var dto ExaminationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	exam, err := h.Service.RecordExamination(r.Context(), scope, dto)
	if err != nil {
		h.Logger.Error("RecordExamination: service error", "error", err, "employee_id", dto.EmployeeID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, exam)
}

func (h *Handler) ListForEmployee(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	idStr := chi.URLParam(r, "employeeID")
	employeeID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid employee id")
		return
	}
	exams, err := h.Service.ListForEmployee(r.Context(), scope, employeeID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"examinations": exams})
}

func (h *Handler) ListDue(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	withinDays := 30
	if daysStr := r.URL.Query().Get("within_days"); daysStr != "" {
		if d, err := strconv.Atoi(daysStr); err == nil && d > 0 && d <= 365 {
			withinDays = d
		}
	}

	exams, err := h.Service.ListDue(r.Context(), scope, withinDays)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"examinations": exams,
		"within_days":  withinDays,
	})
}
