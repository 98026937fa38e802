package directory_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dmitrivolkov/safety-management/internal"
	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	accessprofileDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/accessprofile"
	directoryDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/directory"
	"github.com/dmitrivolkov/safety-management/internal/directory"
)

func TestDirectory(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Directory Suite")
}

const (
	org1 = int64(1)
	org2 = int64(2)
	s1   = int64(10)
	s2   = int64(11)
	s3   = int64(12)
	d1   = int64(100)
	d3   = int64(102)
)

// staticGrantStore serves a fixed hierarchy:
//
//	Org1: S1 -> D1, S2, D3 (no subdivision)
//	Org2: S3
type staticGrantStore struct {
	profiles map[int64]*accessctl.Grants
}

func (m *staticGrantStore) ProfileGrants(_ context.Context, userID int64) (*accessctl.Grants, error) {
	return m.profiles[userID], nil
}

func (m *staticGrantStore) AllOrganizations(context.Context) (accessctl.IDSet, error) {
	return accessctl.NewIDSet(org1, org2), nil
}

func (m *staticGrantStore) AllSubdivisions(context.Context) (accessctl.IDSet, error) {
	return accessctl.NewIDSet(s1, s2, s3), nil
}

func (m *staticGrantStore) AllDepartments(context.Context) (accessctl.IDSet, error) {
	return accessctl.NewIDSet(d1, d3), nil
}

func (m *staticGrantStore) OrganizationsOfSubdivisions(_ context.Context, subs accessctl.IDSet) (accessctl.IDSet, error) {
	out := accessctl.NewIDSet()
	for sub := range subs {
		if sub == s1 || sub == s2 {
			out.Add(org1)
		}
		if sub == s3 {
			out.Add(org2)
		}
	}
	return out, nil
}

func (m *staticGrantStore) ParentsOfDepartments(_ context.Context, depts accessctl.IDSet) (accessctl.IDSet, accessctl.IDSet, error) {
	orgs := accessctl.NewIDSet()
	subs := accessctl.NewIDSet()
	for dept := range depts {
		switch dept {
		case d1:
			orgs.Add(org1)
			subs.Add(s1)
		case d3:
			orgs.Add(org1)
		}
	}
	return orgs, subs, nil
}

func (m *staticGrantStore) SubdivisionsOfOrganizations(_ context.Context, orgs accessctl.IDSet) (accessctl.IDSet, error) {
	out := accessctl.NewIDSet()
	if orgs.Has(org1) {
		out.Add(s1, s2)
	}
	if orgs.Has(org2) {
		out.Add(s3)
	}
	return out, nil
}

func (m *staticGrantStore) DepartmentsOfOrganizations(_ context.Context, orgs accessctl.IDSet) (accessctl.IDSet, error) {
	out := accessctl.NewIDSet()
	if orgs.Has(org1) {
		out.Add(d1, d3)
	}
	return out, nil
}

func (m *staticGrantStore) DepartmentsOfSubdivisions(_ context.Context, subs accessctl.IDSet) (accessctl.IDSet, error) {
	out := accessctl.NewIDSet()
	if subs.Has(s1) {
		out.Add(d1)
	}
	return out, nil
}

type mockDirectoryRepo struct {
	orgs  map[int64]*directoryDatamodel.Organization
	subs  map[int64]*directoryDatamodel.Subdivision
	depts map[int64]*directoryDatamodel.Department

	orgRefs  map[int64]int64
	subRefs  map[int64]int64
	deptRefs map[int64]int64

	nextID  int64
	deleted []int64
}

func newMockDirectoryRepo() *mockDirectoryRepo {
	s1ref := s1
	return &mockDirectoryRepo{
		orgs: map[int64]*directoryDatamodel.Organization{
			org1: {ID: org1, FullName: "First Mining LLC", ShortName: "First"},
			org2: {ID: org2, FullName: "Second Energy JSC", ShortName: "Second"},
		},
		subs: map[int64]*directoryDatamodel.Subdivision{
			s1: {ID: s1, Name: "Plant", OrganizationID: org1},
			s2: {ID: s2, Name: "Transport", OrganizationID: org1},
			s3: {ID: s3, Name: "Generation", OrganizationID: org2},
		},
		depts: map[int64]*directoryDatamodel.Department{
			d1: {ID: d1, Name: "Crushing", OrganizationID: org1, SubdivisionID: &s1ref},
			d3: {ID: d3, Name: "Lab", OrganizationID: org1},
		},
		orgRefs:  map[int64]int64{},
		subRefs:  map[int64]int64{},
		deptRefs: map[int64]int64{},
		nextID:   1000,
	}
}

func (m *mockDirectoryRepo) GetOrganizations(ids []int64) ([]*directoryDatamodel.Organization, error) {
	var out []*directoryDatamodel.Organization
	for _, id := range ids {
		if org, ok := m.orgs[id]; ok {
			out = append(out, org)
		}
	}
	return out, nil
}

func (m *mockDirectoryRepo) GetOrganizationByID(id int64) (*directoryDatamodel.Organization, error) {
	return m.orgs[id], nil
}

func (m *mockDirectoryRepo) CreateOrganization(org *directoryDatamodel.Organization) error {
	m.nextID++
	org.ID = m.nextID
	m.orgs[org.ID] = org
	return nil
}

func (m *mockDirectoryRepo) UpdateOrganization(org *directoryDatamodel.Organization) error {
	m.orgs[org.ID] = org
	return nil
}

func (m *mockDirectoryRepo) DeleteOrganization(id int64) error {
	delete(m.orgs, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockDirectoryRepo) CountOrganizationReferences(id int64) (int64, error) {
	return m.orgRefs[id], nil
}

func (m *mockDirectoryRepo) GetSubdivisions(ids []int64) ([]*directoryDatamodel.Subdivision, error) {
	var out []*directoryDatamodel.Subdivision
	for _, id := range ids {
		if sub, ok := m.subs[id]; ok {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (m *mockDirectoryRepo) GetSubdivisionByID(id int64) (*directoryDatamodel.Subdivision, error) {
	return m.subs[id], nil
}

func (m *mockDirectoryRepo) CreateSubdivision(sub *directoryDatamodel.Subdivision) error {
	m.nextID++
	sub.ID = m.nextID
	m.subs[sub.ID] = sub
	return nil
}

func (m *mockDirectoryRepo) UpdateSubdivision(sub *directoryDatamodel.Subdivision) error {
	m.subs[sub.ID] = sub
	return nil
}

func (m *mockDirectoryRepo) DeleteSubdivision(id int64) error {
	delete(m.subs, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockDirectoryRepo) CountSubdivisionReferences(id int64) (int64, error) {
	return m.subRefs[id], nil
}

func (m *mockDirectoryRepo) GetDepartments(ids []int64) ([]*directoryDatamodel.Department, error) {
	var out []*directoryDatamodel.Department
	for _, id := range ids {
		if dept, ok := m.depts[id]; ok {
			out = append(out, dept)
		}
	}
	return out, nil
}

func (m *mockDirectoryRepo) GetDepartmentByID(id int64) (*directoryDatamodel.Department, error) {
	return m.depts[id], nil
}

func (m *mockDirectoryRepo) CreateDepartment(dept *directoryDatamodel.Department) error {
	m.nextID++
	dept.ID = m.nextID
	m.depts[dept.ID] = dept
	return nil
}

func (m *mockDirectoryRepo) UpdateDepartment(dept *directoryDatamodel.Department) error {
	m.depts[dept.ID] = dept
	return nil
}

func (m *mockDirectoryRepo) DeleteDepartment(id int64) error {
	delete(m.depts, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockDirectoryRepo) CountDepartmentReferences(id int64) (int64, error) {
	return m.deptRefs[id], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var _ = Describe("Directory Service", func() {
	var (
		store    *staticGrantStore
		repo     *mockDirectoryRepo
		resolver *accessctl.Resolver
		service  *directory.Service
		ctx      context.Context

		superScope *accessctl.Scope
		org1Scope  *accessctl.Scope
		d1Scope    *accessctl.Scope
	)

	BeforeEach(func() {
		store = &staticGrantStore{profiles: map[int64]*accessctl.Grants{
			2: {
				Organizations: accessctl.NewIDSet(org1),
				Subdivisions:  accessctl.NewIDSet(),
				Departments:   accessctl.NewIDSet(),
			},
			3: {
				Organizations: accessctl.NewIDSet(),
				Subdivisions:  accessctl.NewIDSet(),
				Departments:   accessctl.NewIDSet(d1),
			},
		}}
		repo = newMockDirectoryRepo()
		resolver = accessctl.NewResolver(store, testLogger())
		service = directory.NewService(repo, testLogger())
		ctx = context.Background()

		superScope = resolver.NewScope(&internal.User{ID: 1, IsSuperuser: true})
		org1Scope = resolver.NewScope(&internal.User{ID: 2})
		d1Scope = resolver.NewScope(&internal.User{ID: 3})
	})

	Describe("ListOrganizations", func() {
		It("should narrow to the caller's scope", func() {
			orgs, err := service.ListOrganizations(ctx, org1Scope)
			Expect(err).ToNot(HaveOccurred())
			Expect(orgs).To(HaveLen(1))
			Expect(orgs[0].ID).To(Equal(org1))
		})

		It("should return everything for a superuser", func() {
			orgs, err := service.ListOrganizations(ctx, superScope)
			Expect(err).ToNot(HaveOccurred())
			Expect(orgs).To(HaveLen(2))
		})
	})

	Describe("GetOrganization", func() {
		It("should deny an organization outside the scope", func() {
			_, err := service.GetOrganization(ctx, org1Scope, org2)
			Expect(err).To(Equal(internal.ErrAccessDenied))
		})
	})

	Describe("CreateSubdivision", func() {
		It("should reject a subdivision in an inaccessible organization", func() {
			_, err := service.CreateSubdivision(ctx, org1Scope, directory.SubdivisionDTO{
				Name:           "Foreign",
				OrganizationID: org2,
			})
			Expect(err).To(Equal(internal.ErrAccessDenied))
		})

		It("should reject a subdivision in an unknown organization", func() {
			_, err := service.CreateSubdivision(ctx, superScope, directory.SubdivisionDTO{
				Name:           "Nowhere",
				OrganizationID: 999,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeOrganizationNotFound))
		})

		It("should create within the caller's organization", func() {
			sub, err := service.CreateSubdivision(ctx, org1Scope, directory.SubdivisionDTO{
				Name:           "Maintenance",
				OrganizationID: org1,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(sub.ID).ToNot(BeZero())
			Expect(sub.OrganizationID).To(Equal(org1))
		})
	})

	Describe("ListDepartments", func() {
		It("should show every department to an organization-level profile", func() {
			depts, err := service.ListDepartments(ctx, org1Scope)
			Expect(err).ToNot(HaveOccurred())
			Expect(depts).To(HaveLen(2))
		})

		It("should hide sibling departments from a department-only profile", func() {
			depts, err := service.ListDepartments(ctx, d1Scope)
			Expect(err).ToNot(HaveOccurred())
			Expect(depts).To(HaveLen(1))
			Expect(depts[0].ID).To(Equal(d1))
		})
	})

	Describe("GetDepartment", func() {
		It("should deny a sibling department to a department-only profile", func() {
			dept, err := service.GetDepartment(ctx, d1Scope, d1)
			Expect(err).ToNot(HaveOccurred())
			Expect(dept.Name).To(Equal("Crushing"))

			_, err = service.GetDepartment(ctx, d1Scope, d3)
			Expect(err).To(Equal(internal.ErrAccessDenied))
		})
	})

	Describe("CreateDepartment", func() {
		It("should reject a subdivision from another organization", func() {
			foreignSub := s3
			_, err := service.CreateDepartment(ctx, org1Scope, directory.DepartmentDTO{
				Name:           "Mismatched",
				OrganizationID: org1,
				SubdivisionID:  &foreignSub,
			})
			Expect(err).To(Equal(internal.ErrInvalidHierarchy))
		})

		It("should allow a department directly under the organization", func() {
			dept, err := service.CreateDepartment(ctx, org1Scope, directory.DepartmentDTO{
				Name:           "Warehouse",
				OrganizationID: org1,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(dept.SubdivisionID).To(BeNil())
		})
	})

	Describe("Deletion protection", func() {
		It("should refuse to delete a referenced organization", func() {
			repo.orgRefs[org1] = 3
			err := service.DeleteOrganization(ctx, org1Scope, org1)
			Expect(err).To(Equal(internal.ErrProtectedRecord))
			Expect(repo.orgs).To(HaveKey(org1))
		})

		It("should delete an unreferenced subdivision", func() {
			err := service.DeleteSubdivision(ctx, org1Scope, s2)
			Expect(err).ToNot(HaveOccurred())
			Expect(repo.subs).ToNot(HaveKey(s2))
		})

		It("should refuse to delete a referenced department", func() {
			repo.deptRefs[d1] = 1
			err := service.DeleteDepartment(ctx, org1Scope, d1)
			Expect(err).To(Equal(internal.ErrProtectedRecord))
		})
	})
})

type mockProfileRepo struct {
	profiles map[int64]*accessprofileDatamodel.AccessProfile
	grants   map[int64]*accessctl.Grants
	nextID   int64
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{
		profiles: make(map[int64]*accessprofileDatamodel.AccessProfile),
		grants:   make(map[int64]*accessctl.Grants),
	}
}

func (m *mockProfileRepo) GetProfile(userID int64) (*accessprofileDatamodel.AccessProfile, error) {
	for _, p := range m.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockProfileRepo) CreateProfile(profile *accessprofileDatamodel.AccessProfile) error {
	m.nextID++
	profile.ID = m.nextID
	m.profiles[profile.ID] = profile
	m.grants[profile.ID] = &accessctl.Grants{
		Organizations: accessctl.NewIDSet(),
		Subdivisions:  accessctl.NewIDSet(),
		Departments:   accessctl.NewIDSet(),
	}
	return nil
}

func (m *mockProfileRepo) SetProfileActive(profileID int64, active bool) error {
	m.profiles[profileID].IsActive = active
	return nil
}

func (m *mockProfileRepo) AddOrganizationGrants(profileID int64, ids []int64) error {
	m.grants[profileID].Organizations.Add(ids...)
	return nil
}

func (m *mockProfileRepo) AddSubdivisionGrants(profileID int64, ids []int64) error {
	m.grants[profileID].Subdivisions.Add(ids...)
	return nil
}

func (m *mockProfileRepo) AddDepartmentGrants(profileID int64, ids []int64) error {
	m.grants[profileID].Departments.Add(ids...)
	return nil
}

func (m *mockProfileRepo) RemoveOrganizationGrants(profileID int64, ids []int64) error {
	for _, id := range ids {
		delete(m.grants[profileID].Organizations, id)
	}
	return nil
}

func (m *mockProfileRepo) RemoveSubdivisionGrants(profileID int64, ids []int64) error {
	for _, id := range ids {
		delete(m.grants[profileID].Subdivisions, id)
	}
	return nil
}

func (m *mockProfileRepo) RemoveDepartmentGrants(profileID int64, ids []int64) error {
	for _, id := range ids {
		delete(m.grants[profileID].Departments, id)
	}
	return nil
}

func (m *mockProfileRepo) ListGrants(profileID int64) (*accessctl.Grants, error) {
	return m.grants[profileID], nil
}

var _ = Describe("Grant Service", func() {
	var (
		repo    *mockProfileRepo
		service *directory.GrantService
		ctx     context.Context
	)

	BeforeEach(func() {
		repo = newMockProfileRepo()
		store := &staticGrantStore{profiles: map[int64]*accessctl.Grants{}}
		service = directory.NewGrantService(repo, store, testLogger())
		ctx = context.Background()
	})

	Describe("Grant", func() {
		It("should create the profile on first use", func() {
			resp, err := service.Grant(ctx, directory.GrantDTO{
				UserID:          7,
				OrganizationIDs: []int64{org1},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.UserID).To(Equal(int64(7)))
			Expect(resp.IsActive).To(BeTrue())
			Expect(resp.OrganizationIDs).To(Equal([]int64{org1}))
			Expect(resp.Warnings).To(BeEmpty())
		})

		It("should warn about a subdivision already covered by an organization grant", func() {
			_, err := service.Grant(ctx, directory.GrantDTO{
				UserID:          7,
				OrganizationIDs: []int64{org1},
			})
			Expect(err).ToNot(HaveOccurred())

			resp, err := service.Grant(ctx, directory.GrantDTO{
				UserID:         7,
				SubdivisionIDs: []int64{s1},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.Warnings).To(HaveLen(1))
			Expect(resp.Warnings[0]).To(ContainSubstring("already covered by organization"))
			// stored anyway: revoking the organization keeps the subdivision
			Expect(resp.SubdivisionIDs).To(Equal([]int64{s1}))
		})

		It("should warn when the covering grant arrives in the same call", func() {
			resp, err := service.Grant(ctx, directory.GrantDTO{
				UserID:         7,
				SubdivisionIDs: []int64{s1},
				DepartmentIDs:  []int64{d1},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.Warnings).To(HaveLen(1))
			Expect(resp.Warnings[0]).To(ContainSubstring("already covered by subdivision"))
		})

		It("should not warn about unrelated grants", func() {
			resp, err := service.Grant(ctx, directory.GrantDTO{
				UserID:          7,
				OrganizationIDs: []int64{org2},
				SubdivisionIDs:  []int64{s1},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.Warnings).To(BeEmpty())
		})
	})

	Describe("Revoke", func() {
		It("should remove only the listed grants", func() {
			_, err := service.Grant(ctx, directory.GrantDTO{
				UserID:          7,
				OrganizationIDs: []int64{org1},
				SubdivisionIDs:  []int64{s1},
			})
			Expect(err).ToNot(HaveOccurred())

			resp, err := service.Revoke(ctx, directory.GrantDTO{
				UserID:          7,
				OrganizationIDs: []int64{org1},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.OrganizationIDs).To(BeEmpty())
			Expect(resp.SubdivisionIDs).To(Equal([]int64{s1}))
		})

		It("should fail for a user without a profile", func() {
			_, err := service.Revoke(ctx, directory.GrantDTO{
				UserID:          99,
				OrganizationIDs: []int64{org1},
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeProfileNotFound))
		})
	})

	Describe("SetActive", func() {
		It("should toggle the profile without touching grants", func() {
			_, err := service.Grant(ctx, directory.GrantDTO{
				UserID:          7,
				OrganizationIDs: []int64{org1},
			})
			Expect(err).ToNot(HaveOccurred())

			Expect(service.SetActive(ctx, 7, false)).To(Succeed())

			resp, err := service.GetGrants(ctx, 7)
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.IsActive).To(BeFalse())
			Expect(resp.OrganizationIDs).To(Equal([]int64{org1}))
		})
	})
})
