package equipment_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dmitrivolkov/safety-management/internal"
	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	directoryDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/directory"
	equipmentDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/equipment"
	"github.com/dmitrivolkov/safety-management/internal/core/events"
	"github.com/dmitrivolkov/safety-management/internal/equipment"
)

func TestEquipment(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Equipment Suite")
}

const (
	org1 = int64(1)
	org2 = int64(2)
	s1   = int64(10)
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
	return accessctl.NewIDSet(s1), nil
}

func (m *staticGrantStore) AllDepartments(context.Context) (accessctl.IDSet, error) {
	return accessctl.NewIDSet(), nil
}

func (m *staticGrantStore) OrganizationsOfSubdivisions(_ context.Context, subs accessctl.IDSet) (accessctl.IDSet, error) {
	out := accessctl.NewIDSet()
	if subs.Has(s1) {
		out.Add(org1)
	}
	return out, nil
}

func (m *staticGrantStore) ParentsOfDepartments(context.Context, accessctl.IDSet) (accessctl.IDSet, accessctl.IDSet, error) {
	return accessctl.NewIDSet(), accessctl.NewIDSet(), nil
}

func (m *staticGrantStore) SubdivisionsOfOrganizations(_ context.Context, orgs accessctl.IDSet) (accessctl.IDSet, error) {
	out := accessctl.NewIDSet()
	if orgs.Has(org1) {
		out.Add(s1)
	}
	return out, nil
}

func (m *staticGrantStore) DepartmentsOfOrganizations(context.Context, accessctl.IDSet) (accessctl.IDSet, error) {
	return accessctl.NewIDSet(), nil
}

func (m *staticGrantStore) DepartmentsOfSubdivisions(context.Context, accessctl.IDSet) (accessctl.IDSet, error) {
	return accessctl.NewIDSet(), nil
}

type mockEquipmentRepo struct {
	items  map[int64]*equipmentDatamodel.Equipment
	nextID int64
}

func newMockEquipmentRepo() *mockEquipmentRepo {
	return &mockEquipmentRepo{
		items:  make(map[int64]*equipmentDatamodel.Equipment),
		nextID: 1,
	}
}

func (m *mockEquipmentRepo) List(context.Context, *accessctl.Scope) ([]*equipmentDatamodel.Equipment, error) {
	out := make([]*equipmentDatamodel.Equipment, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	return out, nil
}

func (m *mockEquipmentRepo) ListDue(_ context.Context, _ *accessctl.Scope, deadline time.Time) ([]*equipmentDatamodel.Equipment, error) {
	return m.ListAllDue(deadline)
}

func (m *mockEquipmentRepo) ListAllDue(deadline time.Time) ([]*equipmentDatamodel.Equipment, error) {
	var out []*equipmentDatamodel.Equipment
	for _, item := range m.items {
		if item.NextMaintenanceDate != nil && !item.NextMaintenanceDate.After(deadline) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *mockEquipmentRepo) GetByID(id int64) (*equipmentDatamodel.Equipment, error) {
	return m.items[id], nil
}

func (m *mockEquipmentRepo) Create(eq *equipmentDatamodel.Equipment) error {
	m.nextID++
	eq.ID = m.nextID
	m.items[eq.ID] = eq
	return nil
}

func (m *mockEquipmentRepo) Update(eq *equipmentDatamodel.Equipment) error {
	m.items[eq.ID] = eq
	return nil
}

func (m *mockEquipmentRepo) Delete(id int64) error {
	delete(m.items, id)
	return nil
}

type mockDirectory struct{}

func (mockDirectory) GetSubdivisionByID(id int64) (*directoryDatamodel.Subdivision, error) {
	if id == s1 {
		return &directoryDatamodel.Subdivision{ID: s1, Name: "Plant", OrganizationID: org1}, nil
	}
	return nil, nil
}

func (mockDirectory) GetDepartmentByID(int64) (*directoryDatamodel.Department, error) {
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var _ = Describe("Equipment Service", func() {
	var (
		repo      *mockEquipmentRepo
		service   *equipment.Service
		eventBus  *events.EventBus
		received  chan events.Event
		ctx       context.Context
		org1Scope *accessctl.Scope
	)

	BeforeEach(func() {
		repo = newMockEquipmentRepo()
		eventBus = events.NewEventBus(testLogger())
		received = make(chan events.Event, 10)
		eventBus.Subscribe(events.EventTypeMaintenanceCompleted, func(_ context.Context, e events.Event) error {
			received <- e
			return nil
		})
		eventBus.Subscribe(events.EventTypeMaintenanceDue, func(_ context.Context, e events.Event) error {
			received <- e
			return nil
		})

		store := &staticGrantStore{profiles: map[int64]*accessctl.Grants{
			2: {
				Organizations: accessctl.NewIDSet(org1),
				Subdivisions:  accessctl.NewIDSet(),
				Departments:   accessctl.NewIDSet(),
			},
		}}
		resolver := accessctl.NewResolver(store, testLogger())
		service = equipment.NewService(repo, mockDirectory{}, eventBus, testLogger())
		ctx = context.Background()
		org1Scope = resolver.NewScope(&internal.User{ID: 2})
	})

	Describe("CreateEquipment", func() {
		It("should default the maintenance period to twelve months", func() {
			item, err := service.CreateEquipment(ctx, org1Scope, equipment.EquipmentDTO{
				Name:           "Crane",
				OrganizationID: org1,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(item.MaintenancePeriodMonths).To(Equal(12))
		})

		It("should deny an inaccessible organization", func() {
			_, err := service.CreateEquipment(ctx, org1Scope, equipment.EquipmentDTO{
				Name:           "Crane",
				OrganizationID: org2,
			})
			Expect(err).To(Equal(internal.ErrAccessDenied))
		})
	})

	Describe("CompleteMaintenance", func() {
		var craneID int64

		BeforeEach(func() {
			item, err := service.CreateEquipment(ctx, org1Scope, equipment.EquipmentDTO{
				Name:                    "Crane",
				OrganizationID:          org1,
				MaintenancePeriodMonths: 6,
			})
			Expect(err).ToNot(HaveOccurred())
			craneID = item.ID
		})

		It("should stamp the maintenance dates", func() {
			maintDate := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
			item, err := service.CompleteMaintenance(ctx, org1Scope, craneID, equipment.MaintenanceDTO{
				MaintenanceDate: &maintDate,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(item.LastMaintenanceDate).ToNot(BeNil())
			Expect(*item.LastMaintenanceDate).To(Equal(maintDate))
			Expect(item.NextMaintenanceDate).ToNot(BeNil())
			Expect(*item.NextMaintenanceDate).To(Equal(maintDate.AddDate(0, 6, 0)))
		})

		It("should announce the completion on the event bus", func() {
			_, err := service.CompleteMaintenance(ctx, org1Scope, craneID, equipment.MaintenanceDTO{})
			Expect(err).ToNot(HaveOccurred())

			var event events.Event
			Eventually(received).Should(Receive(&event))
			Expect(event.EventType()).To(Equal(events.EventTypeMaintenanceCompleted))
		})
	})

	Describe("ListDue", func() {
		It("should only include equipment within the window", func() {
			soon := time.Now().AddDate(0, 0, 5)
			far := time.Now().AddDate(1, 0, 0)
			Expect(repo.Create(&equipmentDatamodel.Equipment{Name: "Hoist", OrganizationID: org1, NextMaintenanceDate: &soon})).To(Succeed())
			Expect(repo.Create(&equipmentDatamodel.Equipment{Name: "Press", OrganizationID: org1, NextMaintenanceDate: &far})).To(Succeed())

			items, err := service.ListDue(ctx, org1Scope, 30)
			Expect(err).ToNot(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].Name).To(Equal("Hoist"))
		})
	})

	Describe("PublishDueNotifications", func() {
		It("should publish one event per due item and report the count", func() {
			soon := time.Now().AddDate(0, 0, 5)
			Expect(repo.Create(&equipmentDatamodel.Equipment{Name: "Hoist", OrganizationID: org1, NextMaintenanceDate: &soon})).To(Succeed())
			Expect(repo.Create(&equipmentDatamodel.Equipment{Name: "Press", OrganizationID: org2, NextMaintenanceDate: &soon})).To(Succeed())

			count, err := service.PublishDueNotifications(ctx, 30)
			Expect(err).ToNot(HaveOccurred())
			Expect(count).To(Equal(2))

			for i := 0; i < 2; i++ {
				var event events.Event
				Eventually(received).Should(Receive(&event))
				Expect(event.EventType()).To(Equal(events.EventTypeMaintenanceDue))
			}
		})
	})
})
