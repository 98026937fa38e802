package accessctl_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dmitrivolkov/safety-management/internal"
	"github.com/dmitrivolkov/safety-management/internal/accessctl"
)

func TestAccessControl(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AccessControl Suite")
}

// mockGrantStore backs the resolver with an in-memory hierarchy:
//
//	Org1: S1 -> D1, S2 -> D2, D3 (no subdivision)
//	Org2: S3 -> D4
type mockGrantStore struct {
	profiles    map[int64]*accessctl.Grants
	subdivOrg   map[int64]int64
	deptOrg     map[int64]int64
	deptSubdiv  map[int64]*int64
	profileErr  error
	queryCount  int
}

const (
	org1 = int64(1)
	org2 = int64(2)
	s1   = int64(10)
	s2   = int64(11)
	s3   = int64(12)
	d1   = int64(100)
	d2   = int64(101)
	d3   = int64(102)
	d4   = int64(103)
)

func newMockGrantStore() *mockGrantStore {
	s1ref, s2ref, s3ref := s1, s2, s3
	return &mockGrantStore{
		profiles:   make(map[int64]*accessctl.Grants),
		subdivOrg:  map[int64]int64{s1: org1, s2: org1, s3: org2},
		deptOrg:    map[int64]int64{d1: org1, d2: org1, d3: org1, d4: org2},
		deptSubdiv: map[int64]*int64{d1: &s1ref, d2: &s2ref, d3: nil, d4: &s3ref},
	}
}

func (m *mockGrantStore) grant(userID int64, orgs, subs, depts []int64) {
	m.profiles[userID] = &accessctl.Grants{
		Organizations: accessctl.NewIDSet(orgs...),
		Subdivisions:  accessctl.NewIDSet(subs...),
		Departments:   accessctl.NewIDSet(depts...),
	}
}

func (m *mockGrantStore) ProfileGrants(_ context.Context, userID int64) (*accessctl.Grants, error) {
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	m.queryCount++
	return m.profiles[userID], nil
}

func (m *mockGrantStore) AllOrganizations(context.Context) (accessctl.IDSet, error) {
	return accessctl.NewIDSet(org1, org2), nil
}

func (m *mockGrantStore) AllSubdivisions(context.Context) (accessctl.IDSet, error) {
	return accessctl.NewIDSet(s1, s2, s3), nil
}

func (m *mockGrantStore) AllDepartments(context.Context) (accessctl.IDSet, error) {
	return accessctl.NewIDSet(d1, d2, d3, d4), nil
}

func (m *mockGrantStore) OrganizationsOfSubdivisions(_ context.Context, subs accessctl.IDSet) (accessctl.IDSet, error) {
	out := accessctl.NewIDSet()
	for sub := range subs {
		if org, ok := m.subdivOrg[sub]; ok {
			out.Add(org)
		}
	}
	return out, nil
}

func (m *mockGrantStore) ParentsOfDepartments(_ context.Context, depts accessctl.IDSet) (accessctl.IDSet, accessctl.IDSet, error) {
	orgs := accessctl.NewIDSet()
	subs := accessctl.NewIDSet()
	for dept := range depts {
		if org, ok := m.deptOrg[dept]; ok {
			orgs.Add(org)
		}
		if sub, ok := m.deptSubdiv[dept]; ok && sub != nil {
			subs.Add(*sub)
		}
	}
	return orgs, subs, nil
}

func (m *mockGrantStore) SubdivisionsOfOrganizations(_ context.Context, orgs accessctl.IDSet) (accessctl.IDSet, error) {
	out := accessctl.NewIDSet()
	for sub, org := range m.subdivOrg {
		if orgs.Has(org) {
			out.Add(sub)
		}
	}
	return out, nil
}

func (m *mockGrantStore) DepartmentsOfOrganizations(_ context.Context, orgs accessctl.IDSet) (accessctl.IDSet, error) {
	out := accessctl.NewIDSet()
	for dept, org := range m.deptOrg {
		if orgs.Has(org) {
			out.Add(dept)
		}
	}
	return out, nil
}

func (m *mockGrantStore) DepartmentsOfSubdivisions(_ context.Context, subs accessctl.IDSet) (accessctl.IDSet, error) {
	out := accessctl.NewIDSet()
	for dept, sub := range m.deptSubdiv {
		if sub != nil && subs.Has(*sub) {
			out.Add(dept)
		}
	}
	return out, nil
}

// record is a minimal attributed test type with all three fields.
type record struct {
	name string
	org  *int64
	sub  *int64
	dept *int64
}

func (r record) AccessAttribution() accessctl.Attribution {
	return accessctl.Attribution{
		OrganizationID: r.org,
		SubdivisionID:  r.sub,
		DepartmentID:   r.dept,
	}
}

func ptr(v int64) *int64 { return &v }

func names(records []record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.name)
	}
	return out
}

var _ = Describe("Resolver", func() {
	var (
		store    *mockGrantStore
		resolver *accessctl.Resolver
		ctx      context.Context

		superuser  *internal.User
		orgUser    *internal.User
		subUser    *internal.User
		deptUser   *internal.User
		emptyUser  *internal.User
		ghostUser  *internal.User

		allCaps accessctl.Capabilities
	)

	BeforeEach(func() {
		store = newMockGrantStore()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		resolver = accessctl.NewResolver(store, logger)
		ctx = context.Background()

		superuser = &internal.User{ID: 1, IsSuperuser: true}
		orgUser = &internal.User{ID: 2}
		subUser = &internal.User{ID: 3}
		deptUser = &internal.User{ID: 4}
		emptyUser = &internal.User{ID: 5}
		ghostUser = &internal.User{ID: 6} // no access profile at all

		store.grant(orgUser.ID, []int64{org1}, nil, nil)
		store.grant(subUser.ID, nil, []int64{s1}, nil)
		store.grant(deptUser.ID, nil, nil, []int64{d1})
		store.grant(emptyUser.ID, nil, nil, nil)

		allCaps = accessctl.Capabilities{HasOrganization: true, HasSubdivision: true, HasDepartment: true}
	})

	Describe("ResolveAccessible", func() {
		Context("for a superuser", func() {
			It("should return every entity at every level", func() {
				orgs, err := resolver.ResolveAccessible(ctx, accessctl.LevelOrganization, superuser)
				Expect(err).ToNot(HaveOccurred())
				Expect(orgs.IDs()).To(Equal([]int64{org1, org2}))

				subs, err := resolver.ResolveAccessible(ctx, accessctl.LevelSubdivision, superuser)
				Expect(err).ToNot(HaveOccurred())
				Expect(subs.IDs()).To(Equal([]int64{s1, s2, s3}))

				depts, err := resolver.ResolveAccessible(ctx, accessctl.LevelDepartment, superuser)
				Expect(err).ToNot(HaveOccurred())
				Expect(depts.IDs()).To(Equal([]int64{d1, d2, d3, d4}))
			})
		})

		Context("for an organization grant", func() {
			It("should imply every subdivision and department under the organization", func() {
				subs, err := resolver.ResolveAccessible(ctx, accessctl.LevelSubdivision, orgUser)
				Expect(err).ToNot(HaveOccurred())
				Expect(subs.IDs()).To(Equal([]int64{s1, s2}))

				depts, err := resolver.ResolveAccessible(ctx, accessctl.LevelDepartment, orgUser)
				Expect(err).ToNot(HaveOccurred())
				Expect(depts.IDs()).To(Equal([]int64{d1, d2, d3}))
			})
		})

		Context("for a subdivision grant", func() {
			It("should imply the parent organization", func() {
				orgs, err := resolver.ResolveAccessible(ctx, accessctl.LevelOrganization, subUser)
				Expect(err).ToNot(HaveOccurred())
				Expect(orgs.IDs()).To(Equal([]int64{org1}))
			})
		})

		Context("for a department grant", func() {
			It("should imply the parent organization and subdivision", func() {
				orgs, err := resolver.ResolveAccessible(ctx, accessctl.LevelOrganization, deptUser)
				Expect(err).ToNot(HaveOccurred())
				Expect(orgs.IDs()).To(Equal([]int64{org1}))

				subs, err := resolver.ResolveAccessible(ctx, accessctl.LevelSubdivision, deptUser)
				Expect(err).ToNot(HaveOccurred())
				Expect(subs.IDs()).To(ContainElement(s1))
			})
		})

		Context("for a user without a profile", func() {
			It("should resolve empty sets at every level", func() {
				for _, level := range []accessctl.Level{
					accessctl.LevelOrganization,
					accessctl.LevelSubdivision,
					accessctl.LevelDepartment,
				} {
					ids, err := resolver.ResolveAccessible(ctx, level, ghostUser)
					Expect(err).ToNot(HaveOccurred())
					Expect(ids.Len()).To(BeZero())
				}
			})
		})

		It("should reject an unknown level", func() {
			_, err := resolver.ResolveAccessible(ctx, accessctl.Level("building"), orgUser)
			Expect(err).To(HaveOccurred())
		})

		It("should surface store failures", func() {
			store.profileErr = errors.New("connection reset")
			_, err := resolver.ResolveAccessible(ctx, accessctl.LevelOrganization, orgUser)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Scope caching", func() {
		It("should load the profile once per scope", func() {
			scope := resolver.NewScope(subUser)

			_, err := scope.Organizations(ctx)
			Expect(err).ToNot(HaveOccurred())
			_, err = scope.Subdivisions(ctx)
			Expect(err).ToNot(HaveOccurred())
			_, err = scope.Departments(ctx)
			Expect(err).ToNot(HaveOccurred())

			Expect(store.queryCount).To(Equal(1))
		})

		It("should not share state between scopes", func() {
			first := resolver.NewScope(subUser)
			_, err := first.Organizations(ctx)
			Expect(err).ToNot(HaveOccurred())

			second := resolver.NewScope(subUser)
			_, err = second.Organizations(ctx)
			Expect(err).ToNot(HaveOccurred())

			Expect(store.queryCount).To(Equal(2))
		})
	})

	Describe("FilterRecords", func() {
		var records []record

		BeforeEach(func() {
			records = []record{
				{name: "r1-dept-d1", org: ptr(org1), sub: ptr(s1), dept: ptr(d1)},
				{name: "r2-sub-s1", org: ptr(org1), sub: ptr(s1)},
				{name: "r3-org-1", org: ptr(org1)},
				{name: "r4-dept-d4", org: ptr(org2), sub: ptr(s3), dept: ptr(d4)},
				{name: "r5-org-2", org: ptr(org2)},
			}
		})

		Context("for a superuser", func() {
			It("should return the input unmodified", func() {
				scope := resolver.NewScope(superuser)
				out, err := accessctl.FilterRecords(ctx, scope, allCaps, records)
				Expect(err).ToNot(HaveOccurred())
				Expect(out).To(Equal(records))
			})
		})

		Context("for an empty profile", func() {
			It("should return an empty collection", func() {
				scope := resolver.NewScope(emptyUser)
				out, err := accessctl.FilterRecords(ctx, scope, allCaps, records)
				Expect(err).ToNot(HaveOccurred())
				Expect(out).To(BeEmpty())
			})
		})

		Context("for a user without a profile", func() {
			It("should fail closed to an empty collection", func() {
				scope := resolver.NewScope(ghostUser)
				out, err := accessctl.FilterRecords(ctx, scope, allCaps, records)
				Expect(err).ToNot(HaveOccurred())
				Expect(out).To(BeEmpty())
			})
		})

		Context("with a subdivision grant", func() {
			It("should include department, subdivision and implied-organization records", func() {
				scope := resolver.NewScope(subUser)
				out, err := accessctl.FilterRecords(ctx, scope, allCaps, records)
				Expect(err).ToNot(HaveOccurred())
				// r3 is included: the subdivision grant implies its parent
				// organization at the organization level.
				Expect(names(out)).To(Equal([]string{"r1-dept-d1", "r2-sub-s1", "r3-org-1"}))
			})
		})

		Context("most-specific-field-wins", func() {
			It("should exclude a record whose department is inaccessible even when its organization is accessible", func() {
				scope := resolver.NewScope(orgUser)
				mixed := []record{
					{name: "foreign-dept", org: ptr(org1), dept: ptr(d4)},
				}
				out, err := accessctl.FilterRecords(ctx, scope, allCaps, mixed)
				Expect(err).ToNot(HaveOccurred())
				Expect(out).To(BeEmpty())
			})
		})

		Context("with a department-only profile", func() {
			It("should only see records with the granted department populated", func() {
				scope := resolver.NewScope(deptUser)
				out, err := accessctl.FilterRecords(ctx, scope, allCaps, records)
				Expect(err).ToNot(HaveOccurred())
				Expect(names(out)).To(Equal([]string{"r1-dept-d1"}))
			})

			It("should exclude records scoped to the parent subdivision with a null department", func() {
				scope := resolver.NewScope(deptUser)
				out, err := accessctl.FilterRecords(ctx, scope, allCaps, []record{
					{name: "parent-sub", org: ptr(org1), sub: ptr(s1)},
				})
				Expect(err).ToNot(HaveOccurred())
				Expect(out).To(BeEmpty())
			})

			It("should exclude a sibling department even though it is in the derived closure", func() {
				scope := resolver.NewScope(deptUser)
				out, err := accessctl.FilterRecords(ctx, scope, allCaps, []record{
					{name: "sibling-dept", org: ptr(org1), sub: ptr(s2), dept: ptr(d2)},
				})
				Expect(err).ToNot(HaveOccurred())
				Expect(out).To(BeEmpty())
			})
		})

		Context("for a record type without attribution fields", func() {
			It("should return an empty collection", func() {
				scope := resolver.NewScope(orgUser)
				out, err := accessctl.FilterRecords(ctx, scope, accessctl.Capabilities{}, records)
				Expect(err).ToNot(HaveOccurred())
				Expect(out).To(BeEmpty())
			})
		})

		It("should be idempotent", func() {
			scope := resolver.NewScope(subUser)
			first, err := accessctl.FilterRecords(ctx, scope, allCaps, records)
			Expect(err).ToNot(HaveOccurred())
			second, err := accessctl.FilterRecords(ctx, scope, allCaps, records)
			Expect(err).ToNot(HaveOccurred())
			Expect(second).To(Equal(first))
		})
	})

	Describe("CanAccessObject", func() {
		It("should always allow a superuser", func() {
			scope := resolver.NewScope(superuser)
			ok, err := scope.CanAccessObject(ctx, record{org: ptr(org2)})
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("should deny a user without a profile", func() {
			scope := resolver.NewScope(ghostUser)
			ok, err := scope.CanAccessObject(ctx, record{org: ptr(org1)})
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("should allow via direct organization membership", func() {
			scope := resolver.NewScope(orgUser)
			ok, err := scope.CanAccessObject(ctx, record{org: ptr(org1)})
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("should allow a department record through its parent subdivision", func() {
			scope := resolver.NewScope(subUser)
			ok, err := scope.CanAccessObject(ctx, record{dept: ptr(d1)})
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("should deny a subdivision record to a department-only user", func() {
			scope := resolver.NewScope(deptUser)
			ok, err := scope.CanAccessObject(ctx, record{sub: ptr(s1)})
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("should deny when no populated field resolves", func() {
			scope := resolver.NewScope(orgUser)
			ok, err := scope.CanAccessObject(ctx, record{org: ptr(org2), sub: ptr(s3), dept: ptr(d4)})
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("AccessLevel", func() {
		It("should classify users by their broadest direct grant", func() {
			cases := []struct {
				user  *internal.User
				level accessctl.AccessLevel
			}{
				{superuser, accessctl.AccessSuperuser},
				{orgUser, accessctl.AccessOrganization},
				{subUser, accessctl.AccessSubdivision},
				{deptUser, accessctl.AccessDepartment},
				{emptyUser, accessctl.AccessNone},
				{ghostUser, accessctl.AccessNone},
			}
			for _, c := range cases {
				level, err := resolver.NewScope(c.user).AccessLevel(ctx)
				Expect(err).ToNot(HaveOccurred())
				Expect(level).To(Equal(c.level))
			}
		})
	})
})
