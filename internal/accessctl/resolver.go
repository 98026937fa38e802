package accessctl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrivolkov/safety-management/internal"
)

// Resolver computes the closure of hierarchy entities a user may see. It is
// stateless; per-request memoization lives in Scope.
type Resolver struct {
	store  GrantStore
	logger *slog.Logger
}

func NewResolver(store GrantStore, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger,
	}
}

// NewScope creates the per-request cache for a user. A Scope must never
// outlive its request: grants can change between requests.
func (r *Resolver) NewScope(user *internal.User) *Scope {
	return &Scope{
		resolver: r,
		user:     user,
	}
}

// ResolveAccessible returns the set of entity IDs visible to the user at one
// hierarchy level. Callers holding a Scope should use it instead to benefit
// from memoization.
func (r *Resolver) ResolveAccessible(ctx context.Context, level Level, user *internal.User) (IDSet, error) {
	return r.NewScope(user).Accessible(ctx, level)
}

// Scope memoizes one user's resolved access for the duration of a request.
// It is owned by a single request goroutine, so no locking is needed.
type Scope struct {
	resolver *Resolver
	user     *internal.User

	grantsLoaded bool
	grants       *Grants

	organizations IDSet
	subdivisions  IDSet
	departments   IDSet
}

func (s *Scope) User() *internal.User {
	return s.user
}

func (s *Scope) Superuser() bool {
	return s.user != nil && s.user.IsSuperuser
}

// Grants returns the user's direct grants, nil when no profile exists.
func (s *Scope) Grants(ctx context.Context) (*Grants, error) {
	if s.grantsLoaded {
		return s.grants, nil
	}
	if s.user == nil {
		s.grantsLoaded = true
		return nil, nil
	}
	grants, err := s.resolver.store.ProfileGrants(ctx, s.user.ID)
	if err != nil {
		return nil, fmt.Errorf("load access profile grants: %w", err)
	}
	s.grants = grants
	s.grantsLoaded = true
	return grants, nil
}

// Organizations resolves the accessible organization set: direct grants plus
// the parent organizations implied by subdivision and department grants.
func (s *Scope) Organizations(ctx context.Context) (IDSet, error) {
	if s.organizations != nil {
		return s.organizations, nil
	}

	if s.Superuser() {
		all, err := s.resolver.store.AllOrganizations(ctx)
		if err != nil {
			return nil, err
		}
		s.organizations = all
		return all, nil
	}

	grants, err := s.Grants(ctx)
	if err != nil {
		return nil, err
	}
	if grants == nil {
		s.organizations = NewIDSet()
		return s.organizations, nil
	}

	orgs := NewIDSet()
	orgs.Union(grants.Organizations)

	if grants.Subdivisions.Len() > 0 {
		implied, err := s.resolver.store.OrganizationsOfSubdivisions(ctx, grants.Subdivisions)
		if err != nil {
			return nil, err
		}
		orgs.Union(implied)
	}

	if grants.Departments.Len() > 0 {
		impliedOrgs, _, err := s.resolver.store.ParentsOfDepartments(ctx, grants.Departments)
		if err != nil {
			return nil, err
		}
		orgs.Union(impliedOrgs)
	}

	s.organizations = orgs
	return orgs, nil
}

// Subdivisions resolves the accessible subdivision set: every subdivision of
// an accessible organization, direct grants, and subdivisions implied by
// department grants.
func (s *Scope) Subdivisions(ctx context.Context) (IDSet, error) {
	if s.subdivisions != nil {
		return s.subdivisions, nil
	}

	if s.Superuser() {
		all, err := s.resolver.store.AllSubdivisions(ctx)
		if err != nil {
			return nil, err
		}
		s.subdivisions = all
		return all, nil
	}

	grants, err := s.Grants(ctx)
	if err != nil {
		return nil, err
	}
	if grants == nil {
		s.subdivisions = NewIDSet()
		return s.subdivisions, nil
	}

	subs := NewIDSet()
	subs.Union(grants.Subdivisions)

	orgs, err := s.Organizations(ctx)
	if err != nil {
		return nil, err
	}
	if orgs.Len() > 0 {
		fromOrgs, err := s.resolver.store.SubdivisionsOfOrganizations(ctx, orgs)
		if err != nil {
			return nil, err
		}
		subs.Union(fromOrgs)
	}

	if grants.Departments.Len() > 0 {
		_, impliedSubs, err := s.resolver.store.ParentsOfDepartments(ctx, grants.Departments)
		if err != nil {
			return nil, err
		}
		subs.Union(impliedSubs)
	}

	s.subdivisions = subs
	return subs, nil
}

// Departments resolves the accessible department set: every department of an
// accessible organization or subdivision, plus direct grants.
func (s *Scope) Departments(ctx context.Context) (IDSet, error) {
	if s.departments != nil {
		return s.departments, nil
	}

	if s.Superuser() {
		all, err := s.resolver.store.AllDepartments(ctx)
		if err != nil {
			return nil, err
		}
		s.departments = all
		return all, nil
	}

	grants, err := s.Grants(ctx)
	if err != nil {
		return nil, err
	}
	if grants == nil {
		s.departments = NewIDSet()
		return s.departments, nil
	}

	depts := NewIDSet()
	depts.Union(grants.Departments)

	orgs, err := s.Organizations(ctx)
	if err != nil {
		return nil, err
	}
	if orgs.Len() > 0 {
		fromOrgs, err := s.resolver.store.DepartmentsOfOrganizations(ctx, orgs)
		if err != nil {
			return nil, err
		}
		depts.Union(fromOrgs)
	}

	subs, err := s.Subdivisions(ctx)
	if err != nil {
		return nil, err
	}
	if subs.Len() > 0 {
		fromSubs, err := s.resolver.store.DepartmentsOfSubdivisions(ctx, subs)
		if err != nil {
			return nil, err
		}
		depts.Union(fromSubs)
	}

	s.departments = depts
	return depts, nil
}

// Accessible dispatches to the per-level resolution.
func (s *Scope) Accessible(ctx context.Context, level Level) (IDSet, error) {
	switch level {
	case LevelOrganization:
		return s.Organizations(ctx)
	case LevelSubdivision:
		return s.Subdivisions(ctx)
	case LevelDepartment:
		return s.Departments(ctx)
	default:
		return nil, fmt.Errorf("unknown hierarchy level %q", level)
	}
}

// DepartmentOnly reports whether the profile carries department grants and
// nothing broader.
func (s *Scope) DepartmentOnly(ctx context.Context) (bool, error) {
	if s.Superuser() {
		return false, nil
	}
	grants, err := s.Grants(ctx)
	if err != nil {
		return false, err
	}
	return grants.DepartmentOnly(), nil
}

// AccessLevel classifies the user by the broadest tier with a direct grant.
func (s *Scope) AccessLevel(ctx context.Context) (AccessLevel, error) {
	if s.Superuser() {
		return AccessSuperuser, nil
	}
	grants, err := s.Grants(ctx)
	if err != nil {
		return AccessNone, err
	}
	switch {
	case grants == nil:
		return AccessNone, nil
	case grants.Organizations.Len() > 0:
		return AccessOrganization, nil
	case grants.Subdivisions.Len() > 0:
		return AccessSubdivision, nil
	case grants.Departments.Len() > 0:
		return AccessDepartment, nil
	default:
		return AccessNone, nil
	}
}

// CanAccessObject checks a single record's attribution against the user's
// grants. It returns true on the first populated field that resolves: the
// organization directly, the subdivision directly or via its organization,
// the department directly or via its subdivision or organization. There is no
// error outcome for "not visible", only false.
func (s *Scope) CanAccessObject(ctx context.Context, record Attributed) (bool, error) {
	if s.Superuser() {
		return true, nil
	}

	grants, err := s.Grants(ctx)
	if err != nil {
		return false, err
	}
	if grants == nil {
		return false, nil
	}

	attr := record.AccessAttribution()

	if attr.OrganizationID != nil && grants.Organizations.Has(*attr.OrganizationID) {
		return true, nil
	}

	if attr.SubdivisionID != nil {
		if grants.Subdivisions.Has(*attr.SubdivisionID) {
			return true, nil
		}
		parents, err := s.resolver.store.OrganizationsOfSubdivisions(ctx, NewIDSet(*attr.SubdivisionID))
		if err != nil {
			return false, err
		}
		for org := range parents {
			if grants.Organizations.Has(org) {
				return true, nil
			}
		}
	}

	if attr.DepartmentID != nil {
		if grants.Departments.Has(*attr.DepartmentID) {
			return true, nil
		}
		parentOrgs, parentSubs, err := s.resolver.store.ParentsOfDepartments(ctx, NewIDSet(*attr.DepartmentID))
		if err != nil {
			return false, err
		}
		for sub := range parentSubs {
			if grants.Subdivisions.Has(sub) {
				return true, nil
			}
		}
		for org := range parentOrgs {
			if grants.Organizations.Has(org) {
				return true, nil
			}
		}
	}

	return false, nil
}
