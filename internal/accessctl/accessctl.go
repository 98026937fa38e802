package accessctl

import (
	"context"
	"sort"
)

// Level identifies a tier of the Organization → Subdivision → Department
// hierarchy.
type Level string

const (
	LevelOrganization Level = "organization"
	LevelSubdivision  Level = "subdivision"
	LevelDepartment   Level = "department"
)

// IDSet is a set of entity identifiers at a single hierarchy level.
type IDSet map[int64]struct{}

func NewIDSet(ids ...int64) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Add(ids ...int64) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

func (s IDSet) Union(other IDSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Len() int {
	return len(s)
}

// IDs returns the members in ascending order, suitable for SQL IN lists and
// stable assertions.
func (s IDSet) IDs() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Attribution is a record's place in the hierarchy: up to three optional
// references, of which the most granular populated one decides visibility.
type Attribution struct {
	OrganizationID *int64
	SubdivisionID  *int64
	DepartmentID   *int64
}

// Attributed is implemented by any record type that can be scoped to the
// hierarchy.
type Attributed interface {
	AccessAttribution() Attribution
}

// Capabilities declares statically which attribution fields a record type
// carries. It replaces runtime field probing: each repository registers the
// descriptor for its table once.
type Capabilities struct {
	HasOrganization bool
	HasSubdivision  bool
	HasDepartment   bool
}

func (c Capabilities) None() bool {
	return !c.HasOrganization && !c.HasSubdivision && !c.HasDepartment
}

// Descriptor couples capabilities with the column names used when composing
// SQL filters for the record's table.
type Descriptor struct {
	Capabilities
	OrganizationColumn string
	SubdivisionColumn  string
	DepartmentColumn   string
}

// DefaultDescriptor returns a descriptor with the conventional column names
// for the given capabilities.
func DefaultDescriptor(caps Capabilities) Descriptor {
	return Descriptor{
		Capabilities:       caps,
		OrganizationColumn: "organization_id",
		SubdivisionColumn:  "subdivision_id",
		DepartmentColumn:   "department_id",
	}
}

// Grants are the direct scope grants of one access profile. A nil *Grants
// means the user has no profile at all (fail-closed everywhere).
type Grants struct {
	Organizations IDSet
	Subdivisions  IDSet
	Departments   IDSet
}

func (g *Grants) Empty() bool {
	return g == nil ||
		(g.Organizations.Len() == 0 && g.Subdivisions.Len() == 0 && g.Departments.Len() == 0)
}

// DepartmentOnly reports whether the profile is granted exclusively at the
// department level, which switches record filtering to the strict
// department-populated rule.
func (g *Grants) DepartmentOnly() bool {
	return g != nil &&
		g.Departments.Len() > 0 &&
		g.Organizations.Len() == 0 &&
		g.Subdivisions.Len() == 0
}

// GrantStore is the read-only relational backing for the resolver.
type GrantStore interface {
	// ProfileGrants returns the direct grants of the user's access profile,
	// or nil when the user has no profile.
	ProfileGrants(ctx context.Context, userID int64) (*Grants, error)

	AllOrganizations(ctx context.Context) (IDSet, error)
	AllSubdivisions(ctx context.Context) (IDSet, error)
	AllDepartments(ctx context.Context) (IDSet, error)

	// OrganizationsOfSubdivisions returns the parent organization of every
	// given subdivision.
	OrganizationsOfSubdivisions(ctx context.Context, subdivisions IDSet) (IDSet, error)
	// ParentsOfDepartments returns the parent organizations and subdivisions
	// of every given department. A department without a subdivision
	// contributes only its organization.
	ParentsOfDepartments(ctx context.Context, departments IDSet) (organizations, subdivisions IDSet, err error)

	SubdivisionsOfOrganizations(ctx context.Context, organizations IDSet) (IDSet, error)
	DepartmentsOfOrganizations(ctx context.Context, organizations IDSet) (IDSet, error)
	DepartmentsOfSubdivisions(ctx context.Context, subdivisions IDSet) (IDSet, error)
}

// AccessLevel summarizes how broadly a user is scoped.
type AccessLevel string

const (
	AccessSuperuser    AccessLevel = "superuser"
	AccessOrganization AccessLevel = "organization"
	AccessSubdivision  AccessLevel = "subdivision"
	AccessDepartment   AccessLevel = "department"
	AccessNone         AccessLevel = "none"
)
