package directory

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
	ListOrganizations(ctx context.Context, scope *accessctl.Scope) ([]*Organization, error)
	GetOrganization(ctx context.Context, scope *accessctl.Scope, id int64) (*Organization, error)
	CreateOrganization(ctx context.Context, dto OrganizationDTO) (*Organization, error)
	UpdateOrganization(ctx context.Context, scope *accessctl.Scope, id int64, dto OrganizationDTO) (*Organization, error)
	DeleteOrganization(ctx context.Context, scope *accessctl.Scope, id int64) error

	ListSubdivisions(ctx context.Context, scope *accessctl.Scope) ([]*Subdivision, error)
	GetSubdivision(ctx context.Context, scope *accessctl.Scope, id int64) (*Subdivision, error)
	CreateSubdivision(ctx context.Context, scope *accessctl.Scope, dto SubdivisionDTO) (*Subdivision, error)
	UpdateSubdivision(ctx context.Context, scope *accessctl.Scope, id int64, dto SubdivisionDTO) (*Subdivision, error)
	DeleteSubdivision(ctx context.Context, scope *accessctl.Scope, id int64) error

	ListDepartments(ctx context.Context, scope *accessctl.Scope) ([]*Department, error)
	GetDepartment(ctx context.Context, scope *accessctl.Scope, id int64) (*Department, error)
	CreateDepartment(ctx context.Context, scope *accessctl.Scope, dto DepartmentDTO) (*Department, error)
	UpdateDepartment(ctx context.Context, scope *accessctl.Scope, id int64, dto DepartmentDTO) (*Department, error)
	DeleteDepartment(ctx context.Context, scope *accessctl.Scope, id int64) error
}

type GrantServiceAPI interface {
	Grant(ctx context.Context, dto GrantDTO) (*GrantsResponse, error)
	Revoke(ctx context.Context, dto GrantDTO) (*GrantsResponse, error)
	GetGrants(ctx context.Context, userID int64) (*GrantsResponse, error)
	SetActive(ctx context.Context, userID int64, active bool) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Grants  GrantServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, grants GrantServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Grants:      grants,
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

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	orgs, err := h.Service.ListOrganizations(r.Context(), scope)
	if err != nil {
		h.Logger.Error("ListOrganizations: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"organizations": orgs})
}

func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	org, err := h.Service.GetOrganization(r.Context(), scope, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, org)
}

func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var dto OrganizationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	org, err := h.Service.CreateOrganization(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, org)
}

func (h *Handler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var dto OrganizationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	org, err := h.Service.UpdateOrganization(r.Context(), scope, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, org)
}

func (h *Handler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteOrganization(r.Context(), scope, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) ListSubdivisions(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	subs, err := h.Service.ListSubdivisions(r.Context(), scope)
	if err != nil {
		h.Logger.Error("ListSubdivisions: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"subdivisions": subs})
}

func (h *Handler) GetSubdivision(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	sub, err := h.Service.GetSubdivision(r.Context(), scope, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, sub)
}

func (h *Handler) CreateSubdivision(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	var dto SubdivisionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.Service.CreateSubdivision(r.Context(), scope, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, sub)
}

func (h *Handler) UpdateSubdivision(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var dto SubdivisionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.Service.UpdateSubdivision(r.Context(), scope, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, sub)
}

func (h *Handler) DeleteSubdivision(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteSubdivision(r.Context(), scope, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	depts, err := h.Service.ListDepartments(r.Context(), scope)
	if err != nil {
		h.Logger.Error("ListDepartments: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"departments": depts})
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	dept, err := h.Service.GetDepartment(r.Context(), scope, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dept)
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	var dto DepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dept, err := h.Service.CreateDepartment(r.Context(), scope, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, dept)
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var dto DepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dept, err := h.Service.UpdateDepartment(r.Context(), scope, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dept)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteDepartment(r.Context(), scope, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) GrantAccess(w http.ResponseWriter, r *http.Request) {
	var dto GrantDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := h.Grants.Grant(r.Context(), dto)
	if err != nil {
		h.Logger.Error("GrantAccess: service error", "error", err, "target_user_id", dto.UserID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	var dto GrantDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := h.Grants.Revoke(r.Context(), dto)
	if err != nil {
		h.Logger.Error("RevokeAccess: service error", "error", err, "target_user_id", dto.UserID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetUserGrants(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "userID")
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	resp, err := h.Grants.GetGrants(r.Context(), userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) SetProfileActive(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "userID")
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var body struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Grants.SetActive(r.Context(), userID, body.Active); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"user_id": userID, "active": body.Active})
}
