package accessctl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"

	"github.com/dmitrivolkov/safety-management/internal"
)

type ctxKey string

const scopeKey ctxKey = "access_scope"

// ScopeFromContext returns the request's access scope, if middleware put one
// there.
func ScopeFromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeKey).(*Scope)
	return s, ok
}

func ContextWithScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, scopeKey, scope)
}

// Middleware attaches a fresh Scope for the authenticated user to every
// request. The scope dies with the request; nothing is shared across
// requests.
func Middleware(resolver *Resolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := internal.UserFromContext(r.Context())
			scope := resolver.NewScope(user)
			next.ServeHTTP(w, r.WithContext(ContextWithScope(r.Context(), scope)))
		})
	}
}

// attributionRow scans the nullable attribution columns of a record.
type attributionRow struct {
	OrganizationID sql.NullInt64 `db:"organization_id"`
	SubdivisionID  sql.NullInt64 `db:"subdivision_id"`
	DepartmentID   sql.NullInt64 `db:"department_id"`
}

func (r attributionRow) AccessAttribution() Attribution {
	var attr Attribution
	if r.OrganizationID.Valid {
		attr.OrganizationID = &r.OrganizationID.Int64
	}
	if r.SubdivisionID.Valid {
		attr.SubdivisionID = &r.SubdivisionID.Int64
	}
	if r.DepartmentID.Valid {
		attr.DepartmentID = &r.DepartmentID.Int64
	}
	return attr
}

// RequireObjectAccess guards detail routes: it looks up the attribution of
// the record identified by the "id" URL parameter and rejects the request
// with 403 when CanAccessObject says no. A missing record falls through to
// the handler, which owns the 404.
func RequireObjectAccess(db *sqlx.DB, table string, desc Descriptor) func(next http.Handler) http.Handler {
	cols := make([]string, 0, 3)
	if desc.HasOrganization {
		cols = append(cols, desc.OrganizationColumn+" AS organization_id")
	} else {
		cols = append(cols, "NULL AS organization_id")
	}
	if desc.HasSubdivision {
		cols = append(cols, desc.SubdivisionColumn+" AS subdivision_id")
	} else {
		cols = append(cols, "NULL AS subdivision_id")
	}
	if desc.HasDepartment {
		cols = append(cols, desc.DepartmentColumn+" AS department_id")
	} else {
		cols = append(cols, "NULL AS department_id")
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", strings.Join(cols, ", "), table)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, ok := ScopeFromContext(r.Context())
			if !ok || scope.User() == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				http.Error(w, "invalid record id", http.StatusBadRequest)
				return
			}

			var row attributionRow
			if err := db.GetContext(r.Context(), &row, query, id); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			allowed, err := scope.CanAccessObject(r.Context(), row)
			if err != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if !allowed {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
