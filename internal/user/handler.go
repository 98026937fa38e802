package user

import (
	"net/http"

	"github.com/dmitrivolkov/safety-management/internal"
	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	"github.com/dmitrivolkov/safety-management/internal/transport"
	"github.com/dmitrivolkov/safety-management/pkg/logger"
)

type CurrentUserResponse struct {
	ID          int64                 `json:"id"`
	Email       string                `json:"email"`
	IsSuperuser bool                  `json:"is_superuser"`
	Permissions []string              `json:"permissions"`
	AccessLevel accessctl.AccessLevel `json:"access_level"`
}

type Handler struct {
	*transport.BaseHandler
}

func NewHandler() *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
	}
}

// GetCurrentUser returns the authenticated identity together with its
// resolved access level summary.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, ok := internal.UserFromContext(r.Context())
	if !ok || u == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	resp := CurrentUserResponse{
		ID:          u.ID,
		Email:       u.Email,
		IsSuperuser: u.IsSuperuser,
		Permissions: u.Permissions,
		AccessLevel: accessctl.AccessNone,
	}

	if scope, ok := accessctl.ScopeFromContext(r.Context()); ok {
		level, err := scope.AccessLevel(r.Context())
		if err != nil {
			h.Logger.Error("failed to resolve access level", "error", err, "user_id", u.ID)
			h.WriteError(w, http.StatusInternalServerError, "failed to resolve access level")
			return
		}
		resp.AccessLevel = level
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
