package equipment

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrivolkov/safety-management/internal"
	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	directoryDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/directory"
	equipmentDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/equipment"
	"github.com/dmitrivolkov/safety-management/internal/core/events"
)

type RepositoryAPI interface {
	List(ctx context.Context, scope *accessctl.Scope) ([]*equipmentDatamodel.Equipment, error)
	ListDue(ctx context.Context, scope *accessctl.Scope, deadline time.Time) ([]*equipmentDatamodel.Equipment, error)
	// ListAllDue is unscoped, for the notification sweep.
	ListAllDue(deadline time.Time) ([]*equipmentDatamodel.Equipment, error)
	GetByID(id int64) (*equipmentDatamodel.Equipment, error)
	Create(eq *equipmentDatamodel.Equipment) error
	Update(eq *equipmentDatamodel.Equipment) error
	Delete(id int64) error
}

type DirectoryAPI interface {
	GetSubdivisionByID(id int64) (*directoryDatamodel.Subdivision, error)
	GetDepartmentByID(id int64) (*directoryDatamodel.Department, error)
}

type Service struct {
	repo      RepositoryAPI
	directory DirectoryAPI
	eventBus  *events.EventBus
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, directory DirectoryAPI, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		eventBus:  eventBus,
		logger:    logger,
	}
}

func (s *Service) ListEquipment(ctx context.Context, scope *accessctl.Scope) ([]*Equipment, error) {
	rows, err := s.repo.List(ctx, scope)
	if err != nil {
		s.logger.Error("failed to list equipment", "error", err)
		return nil, internal.NewInternalError("failed to list equipment", err)
	}
	items := make([]*Equipment, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromDataModel(row))
	}
	return items, nil
}

func (s *Service) GetEquipment(ctx context.Context, scope *accessctl.Scope, id int64) (*Equipment, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get equipment", err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError("equipment not found", internal.ErrCodeEquipmentNotFound)
	}

	item := FromDataModel(row)
	ok, err := scope.CanAccessObject(ctx, item)
	if err != nil {
		return nil, internal.NewInternalError("failed to check equipment access", err)
	}
	if !ok {
		return nil, internal.ErrAccessDenied
	}
	return item, nil
}

func (s *Service) CreateEquipment(ctx context.Context, scope *accessctl.Scope, dto EquipmentDTO) (*Equipment, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}
	if err := s.validateAttribution(ctx, scope, dto.OrganizationID, dto.SubdivisionID, dto.DepartmentID); err != nil {
		return nil, err
	}

	period := dto.MaintenancePeriodMonths
	if period == 0 {
		period = 12
	}

	row := &equipmentDatamodel.Equipment{
		Name:                    dto.Name,
		InventoryNumber:         dto.InventoryNumber,
		OrganizationID:          dto.OrganizationID,
		SubdivisionID:           dto.SubdivisionID,
		DepartmentID:            dto.DepartmentID,
		MaintenancePeriodMonths: period,
	}
	if err := s.repo.Create(row); err != nil {
		s.logger.Error("failed to create equipment", "error", err)
		return nil, internal.NewInternalError("failed to create equipment", err)
	}

	s.logger.Info("equipment created", "equipment_id", row.ID, "organization_id", row.OrganizationID)
	return FromDataModel(row), nil
}

func (s *Service) UpdateEquipment(ctx context.Context, scope *accessctl.Scope, id int64, dto EquipmentDTO) (*Equipment, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	current, err := s.GetEquipment(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateAttribution(ctx, scope, dto.OrganizationID, dto.SubdivisionID, dto.DepartmentID); err != nil {
		return nil, err
	}

	row := ToDataModel(current)
	row.Name = dto.Name
	row.InventoryNumber = dto.InventoryNumber
	row.OrganizationID = dto.OrganizationID
	row.SubdivisionID = dto.SubdivisionID
	row.DepartmentID = dto.DepartmentID
	if dto.MaintenancePeriodMonths > 0 {
		row.MaintenancePeriodMonths = dto.MaintenancePeriodMonths
	}

	if err := s.repo.Update(row); err != nil {
		s.logger.Error("failed to update equipment", "error", err, "equipment_id", id)
		return nil, internal.NewInternalError("failed to update equipment", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) DeleteEquipment(ctx context.Context, scope *accessctl.Scope, id int64) error {
	if _, err := s.GetEquipment(ctx, scope, id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete equipment", "error", err, "equipment_id", id)
		return internal.NewInternalError("failed to delete equipment", err)
	}
	s.logger.Info("equipment deleted", "equipment_id", id)
	return nil
}

// CompleteMaintenance stamps the maintenance dates and announces the
// completion on the event bus.
func (s *Service) CompleteMaintenance(ctx context.Context, scope *accessctl.Scope, id int64, dto MaintenanceDTO) (*Equipment, error) {
	current, err := s.GetEquipment(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	maintDate := time.Now()
	if dto.MaintenanceDate != nil {
		maintDate = *dto.MaintenanceDate
	}
	nextDate := maintDate.AddDate(0, current.MaintenancePeriodMonths, 0)

	row := ToDataModel(current)
	row.LastMaintenanceDate = &maintDate
	row.NextMaintenanceDate = &nextDate

	if err := s.repo.Update(row); err != nil {
		s.logger.Error("failed to complete maintenance", "error", err, "equipment_id", id)
		return nil, internal.NewInternalError("failed to complete maintenance", err)
	}

	event := events.NewMaintenanceCompletedEvent(row.ID, row.OrganizationID, nextDate)
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish maintenance completed event", "error", err, "equipment_id", id)
	}

	s.logger.Info("maintenance completed", "equipment_id", id, "next_maintenance_date", nextDate)
	return FromDataModel(row), nil
}

// ListDue returns scoped equipment whose next maintenance falls within the
// given number of days.
func (s *Service) ListDue(ctx context.Context, scope *accessctl.Scope, withinDays int) ([]*Equipment, error) {
	if withinDays <= 0 {
		withinDays = 30
	}
	deadline := time.Now().AddDate(0, 0, withinDays)

	rows, err := s.repo.ListDue(ctx, scope, deadline)
	if err != nil {
		return nil, internal.NewInternalError("failed to list due equipment", err)
	}
	items := make([]*Equipment, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromDataModel(row))
	}
	return items, nil
}

// PublishDueNotifications sweeps the whole inventory and publishes a due
// event per overdue item. Run from the notification job, not a request.
func (s *Service) PublishDueNotifications(ctx context.Context, withinDays int) (int, error) {
	if withinDays <= 0 {
		withinDays = 30
	}
	deadline := time.Now().AddDate(0, 0, withinDays)

	rows, err := s.repo.ListAllDue(deadline)
	if err != nil {
		return 0, internal.NewInternalError("failed to list due equipment", err)
	}

	for _, row := range rows {
		event := events.NewMaintenanceDueEvent(row.ID, row.OrganizationID, *row.NextMaintenanceDate)
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish maintenance due event", "error", err, "equipment_id", row.ID)
		}
	}

	s.logger.Info("maintenance due sweep finished", "due_count", len(rows), "within_days", withinDays)
	return len(rows), nil
}

func (s *Service) validateAttribution(ctx context.Context, scope *accessctl.Scope, orgID int64, subID, deptID *int64) error {
	orgs, err := scope.Organizations(ctx)
	if err != nil {
		return internal.NewInternalError("failed to resolve accessible organizations", err)
	}
	if !orgs.Has(orgID) {
		return internal.ErrAccessDenied
	}

	if subID != nil {
		sub, err := s.directory.GetSubdivisionByID(*subID)
		if err != nil {
			return internal.NewInternalError("failed to get subdivision", err)
		}
		if sub == nil {
			return internal.NewNotFoundError("subdivision not found", internal.ErrCodeSubdivisionNotFound)
		}
		if sub.OrganizationID != orgID {
			return internal.ErrInvalidHierarchy
		}
	}

	if deptID != nil {
		dept, err := s.directory.GetDepartmentByID(*deptID)
		if err != nil {
			return internal.NewInternalError("failed to get department", err)
		}
		if dept == nil {
			return internal.NewNotFoundError("department not found", internal.ErrCodeDepartmentNotFound)
		}
		if dept.OrganizationID != orgID {
			return internal.ErrInvalidHierarchy
		}
		if dept.SubdivisionID != nil && subID != nil && *dept.SubdivisionID != *subID {
			return internal.ErrInvalidHierarchy
		}
	}

	return nil
}
