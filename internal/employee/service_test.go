package employee_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dmitrivolkov/safety-management/internal"
	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	directoryDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/directory"
	employeeDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/employee"
	"github.com/dmitrivolkov/safety-management/internal/employee"
)

func TestEmployee(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Employee Suite")
}

const (
	org1 = int64(1)
	org2 = int64(2)
	s1   = int64(10)
	s2   = int64(11)
	s3   = int64(12)
	d1   = int64(100)

	electricianID = int64(500)
)

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
	return accessctl.NewIDSet(s1, s3), nil
}

func (m *staticGrantStore) AllDepartments(context.Context) (accessctl.IDSet, error) {
	return accessctl.NewIDSet(d1), nil
}

func (m *staticGrantStore) OrganizationsOfSubdivisions(_ context.Context, subs accessctl.IDSet) (accessctl.IDSet, error) {
	out := accessctl.NewIDSet()
	if subs.Has(s1) {
		out.Add(org1)
	}
	if subs.Has(s3) {
		out.Add(org2)
	}
	return out, nil
}

func (m *staticGrantStore) ParentsOfDepartments(_ context.Context, depts accessctl.IDSet) (accessctl.IDSet, accessctl.IDSet, error) {
	orgs := accessctl.NewIDSet()
	subs := accessctl.NewIDSet()
	if depts.Has(d1) {
		orgs.Add(org1)
		subs.Add(s1)
	}
	return orgs, subs, nil
}

func (m *staticGrantStore) SubdivisionsOfOrganizations(_ context.Context, orgs accessctl.IDSet) (accessctl.IDSet, error) {
	out := accessctl.NewIDSet()
	if orgs.Has(org1) {
		out.Add(s1)
	}
	if orgs.Has(org2) {
		out.Add(s3)
	}
	return out, nil
}

func (m *staticGrantStore) DepartmentsOfOrganizations(_ context.Context, orgs accessctl.IDSet) (accessctl.IDSet, error) {
	out := accessctl.NewIDSet()
	if orgs.Has(org1) {
		out.Add(d1)
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

type mockEmployeeRepo struct {
	employees map[int64]*employeeDatamodel.Employee
	positions map[int64]*employeeDatamodel.Position
	nextID    int64
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{
		employees: make(map[int64]*employeeDatamodel.Employee),
		positions: map[int64]*employeeDatamodel.Position{
			electricianID: {ID: electricianID, Name: "Electrician", IsActive: true},
		},
		nextID: 1,
	}
}

func (m *mockEmployeeRepo) List(_ context.Context, _ *accessctl.Scope, _ employee.ListFilter) ([]*employeeDatamodel.Employee, error) {
	out := make([]*employeeDatamodel.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	return out, nil
}

func (m *mockEmployeeRepo) GetByID(id int64) (*employeeDatamodel.Employee, error) {
	return m.employees[id], nil
}

func (m *mockEmployeeRepo) Create(emp *employeeDatamodel.Employee) error {
	m.nextID++
	emp.ID = m.nextID
	m.employees[emp.ID] = emp
	return nil
}

func (m *mockEmployeeRepo) Update(emp *employeeDatamodel.Employee) error {
	m.employees[emp.ID] = emp
	return nil
}

func (m *mockEmployeeRepo) Delete(id int64) error {
	delete(m.employees, id)
	return nil
}

func (m *mockEmployeeRepo) GetPositions() ([]*employeeDatamodel.Position, error) {
	out := make([]*employeeDatamodel.Position, 0, len(m.positions))
	for _, p := range m.positions {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockEmployeeRepo) GetPositionByID(id int64) (*employeeDatamodel.Position, error) {
	return m.positions[id], nil
}

func (m *mockEmployeeRepo) CreatePosition(pos *employeeDatamodel.Position) error {
	m.nextID++
	pos.ID = m.nextID
	m.positions[pos.ID] = pos
	return nil
}

func (m *mockEmployeeRepo) UpdatePosition(pos *employeeDatamodel.Position) error {
	m.positions[pos.ID] = pos
	return nil
}

type mockDirectory struct{}

func (mockDirectory) GetSubdivisionByID(id int64) (*directoryDatamodel.Subdivision, error) {
	switch id {
	case s1:
		return &directoryDatamodel.Subdivision{ID: s1, Name: "Plant", OrganizationID: org1}, nil
	case s2:
		return &directoryDatamodel.Subdivision{ID: s2, Name: "Transport", OrganizationID: org1}, nil
	case s3:
		return &directoryDatamodel.Subdivision{ID: s3, Name: "Generation", OrganizationID: org2}, nil
	}
	return nil, nil
}

func (mockDirectory) GetDepartmentByID(id int64) (*directoryDatamodel.Department, error) {
	if id == d1 {
		sub := s1
		return &directoryDatamodel.Department{ID: d1, Name: "Crushing", OrganizationID: org1, SubdivisionID: &sub}, nil
	}
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var _ = Describe("Status transitions", func() {
	It("should allow the hiring lifecycle moves", func() {
		Expect(employee.CanTransition(employee.StatusCandidate, employee.StatusWorking)).To(BeTrue())
		Expect(employee.CanTransition(employee.StatusCandidate, employee.StatusFired)).To(BeTrue())
		Expect(employee.CanTransition(employee.StatusWorking, employee.StatusFired)).To(BeTrue())
		Expect(employee.CanTransition(employee.StatusFired, employee.StatusWorking)).To(BeTrue())
	})

	It("should allow leave moves from and back to working", func() {
		Expect(employee.CanTransition(employee.StatusWorking, employee.StatusMaternityLeave)).To(BeTrue())
		Expect(employee.CanTransition(employee.StatusWorking, employee.StatusPartTime)).To(BeTrue())
		Expect(employee.CanTransition(employee.StatusMaternityLeave, employee.StatusWorking)).To(BeTrue())
		Expect(employee.CanTransition(employee.StatusPartTime, employee.StatusWorking)).To(BeTrue())
	})

	It("should reject leave moves straight from candidate", func() {
		Expect(employee.CanTransition(employee.StatusCandidate, employee.StatusMaternityLeave)).To(BeFalse())
		Expect(employee.CanTransition(employee.StatusCandidate, employee.StatusPartTime)).To(BeFalse())
	})

	It("should reject moves back to candidate", func() {
		Expect(employee.CanTransition(employee.StatusWorking, employee.StatusCandidate)).To(BeFalse())
		Expect(employee.CanTransition(employee.StatusFired, employee.StatusCandidate)).To(BeFalse())
	})

	It("should reject self transitions", func() {
		Expect(employee.CanTransition(employee.StatusWorking, employee.StatusWorking)).To(BeFalse())
	})
})

var _ = Describe("Employee Service", func() {
	var (
		repo    *mockEmployeeRepo
		service *employee.Service
		ctx     context.Context

		org1Scope *accessctl.Scope
	)

	BeforeEach(func() {
		repo = newMockEmployeeRepo()
		store := &staticGrantStore{profiles: map[int64]*accessctl.Grants{
			2: {
				Organizations: accessctl.NewIDSet(org1),
				Subdivisions:  accessctl.NewIDSet(),
				Departments:   accessctl.NewIDSet(),
			},
		}}
		resolver := accessctl.NewResolver(store, testLogger())
		service = employee.NewService(repo, mockDirectory{}, testLogger())
		ctx = context.Background()

		org1Scope = resolver.NewScope(&internal.User{ID: 2})
	})

	Describe("CreateEmployee", func() {
		It("should start every employee as a candidate", func() {
			emp, err := service.CreateEmployee(ctx, org1Scope, employee.EmployeeDTO{
				FullName:       "Ivanov Ivan",
				OrganizationID: org1,
				PositionID:     electricianID,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(emp.Status).To(Equal(employee.StatusCandidate))
			Expect(emp.ContractType).To(Equal(employee.ContractStandard))
			Expect(emp.HireDate).To(BeNil())
		})

		It("should deny an inaccessible organization", func() {
			_, err := service.CreateEmployee(ctx, org1Scope, employee.EmployeeDTO{
				FullName:       "Ivanov Ivan",
				OrganizationID: org2,
				PositionID:     electricianID,
			})
			Expect(err).To(Equal(internal.ErrAccessDenied))
		})

		It("should reject a subdivision from another organization", func() {
			foreignSub := s3
			// s3 belongs to org2; attribution against org1 is inconsistent,
			// even though the scope would deny org2 anyway
			_, err := service.CreateEmployee(ctx, org1Scope, employee.EmployeeDTO{
				FullName:       "Ivanov Ivan",
				OrganizationID: org1,
				SubdivisionID:  &foreignSub,
				PositionID:     electricianID,
			})
			Expect(err).To(Equal(internal.ErrInvalidHierarchy))
		})

		It("should reject a department attached to a different subdivision", func() {
			otherSub := s2
			dept := d1
			// d1 hangs under s1; pairing it with s2 is inconsistent
			_, err := service.CreateEmployee(ctx, org1Scope, employee.EmployeeDTO{
				FullName:       "Ivanov Ivan",
				OrganizationID: org1,
				SubdivisionID:  &otherSub,
				DepartmentID:   &dept,
				PositionID:     electricianID,
			})
			Expect(err).To(Equal(internal.ErrInvalidHierarchy))
		})

		It("should reject an unknown position", func() {
			_, err := service.CreateEmployee(ctx, org1Scope, employee.EmployeeDTO{
				FullName:       "Ivanov Ivan",
				OrganizationID: org1,
				PositionID:     999,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodePositionNotFound))
		})
	})

	Describe("GetEmployee", func() {
		It("should return not found for a missing employee", func() {
			_, err := service.GetEmployee(ctx, org1Scope, 999)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeEmployeeNotFound))
		})

		It("should deny an employee outside the scope", func() {
			row := &employeeDatamodel.Employee{
				FullName:       "Petrov Petr",
				OrganizationID: org2,
				PositionID:     electricianID,
				Status:         employee.StatusWorking,
			}
			Expect(repo.Create(row)).To(Succeed())

			_, err := service.GetEmployee(ctx, org1Scope, row.ID)
			Expect(err).To(Equal(internal.ErrAccessDenied))
		})
	})

	Describe("UpdateStatus", func() {
		var candidateID int64

		BeforeEach(func() {
			emp, err := service.CreateEmployee(ctx, org1Scope, employee.EmployeeDTO{
				FullName:       "Ivanov Ivan",
				OrganizationID: org1,
				PositionID:     electricianID,
			})
			Expect(err).ToNot(HaveOccurred())
			candidateID = emp.ID
		})

		It("should stamp the hire date on the first move to working", func() {
			emp, err := service.UpdateStatus(ctx, org1Scope, candidateID, employee.StatusDTO{Status: employee.StatusWorking})
			Expect(err).ToNot(HaveOccurred())
			Expect(emp.Status).To(Equal(employee.StatusWorking))
			Expect(emp.HireDate).ToNot(BeNil())
		})

		It("should keep the original hire date on rehire", func() {
			emp, err := service.UpdateStatus(ctx, org1Scope, candidateID, employee.StatusDTO{Status: employee.StatusWorking})
			Expect(err).ToNot(HaveOccurred())
			firstHire := *emp.HireDate

			_, err = service.UpdateStatus(ctx, org1Scope, candidateID, employee.StatusDTO{Status: employee.StatusFired})
			Expect(err).ToNot(HaveOccurred())

			emp, err = service.UpdateStatus(ctx, org1Scope, candidateID, employee.StatusDTO{Status: employee.StatusWorking})
			Expect(err).ToNot(HaveOccurred())
			Expect(*emp.HireDate).To(Equal(firstHire))
		})

		It("should reject an invalid transition", func() {
			emp, err := service.UpdateStatus(ctx, org1Scope, candidateID, employee.StatusDTO{Status: employee.StatusWorking})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.UpdateStatus(ctx, org1Scope, emp.ID, employee.StatusDTO{Status: employee.StatusCandidate})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})
})
