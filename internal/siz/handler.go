package siz

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
	ListSIZ(ctx context.Context) ([]*SIZ, error)
	GetSIZ(ctx context.Context, id int64) (*SIZ, error)
	CreateSIZ(ctx context.Context, dto SIZDTO) (*SIZ, error)
	UpdateSIZ(ctx context.Context, id int64, dto SIZDTO) (*SIZ, error)
	DeleteSIZ(ctx context.Context, id int64) error

	ListNorms(ctx context.Context, positionID int64) ([]*Norm, error)
	CreateNorm(ctx context.Context, dto NormDTO) (*Norm, error)
	DeleteNorm(ctx context.Context, id int64) error

	Issue(ctx context.Context, scope *accessctl.Scope, dto IssueDTO) (*Issued, error)
	Return(ctx context.Context, scope *accessctl.Scope, issuedID int64, dto ReturnDTO) (*Issued, error)
	ListIssued(ctx context.Context, scope *accessctl.Scope, employeeID int64) ([]*Issued, error)
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

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	idStr := chi.URLParam(r, name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func (h *Handler) ListSIZ(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListSIZ(r.Context())
	if err != nil {
		h.Logger.Error("ListSIZ: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"siz": items})
}

func (h *Handler) GetSIZ(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	item, err := h.Service.GetSIZ(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) CreateSIZ(w http.ResponseWriter, r *http.Request) {
	var dto SIZDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	item, err := h.Service.CreateSIZ(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) UpdateSIZ(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var dto SIZDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	item, err := h.Service.UpdateSIZ(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteSIZ(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteSIZ(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) ListNorms(w http.ResponseWriter, r *http.Request) {
	positionID, ok := h.pathID(w, r, "positionID")
	if !ok {
		return
	}
	norms, err := h.Service.ListNorms(r.Context(), positionID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"norms": norms})
}

func (h *Handler) CreateNorm(w http.ResponseWriter, r *http.Request) {
	var dto NormDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	norm, err := h.Service.CreateNorm(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, norm)
}

func (h *Handler) DeleteNorm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteNorm(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) IssueSIZ(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	var dto IssueDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	issued, err := h.Service.Issue(r.Context(), scope, dto)
	if err != nil {
		h.Logger.Error("IssueSIZ: service error", "error", err, "employee_id", dto.EmployeeID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, issued)
}

func (h *Handler) ReturnSIZ(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var dto ReturnDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	issued, err := h.Service.Return(r.Context(), scope, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, issued)
}

func (h *Handler) ListIssuedForEmployee(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	employeeID, ok := h.pathID(w, r, "employeeID")
	if !ok {
		return
	}
	issued, err := h.Service.ListIssued(r.Context(), scope, employeeID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"issued": issued})
}
