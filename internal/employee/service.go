package employee

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrivolkov/safety-management/internal"
	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	directoryDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/directory"
	employeeDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/employee"
)

type RepositoryAPI interface {
	List(ctx context.Context, scope *accessctl.Scope, filter ListFilter) ([]*employeeDatamodel.Employee, error)
	GetByID(id int64) (*employeeDatamodel.Employee, error)
	Create(emp *employeeDatamodel.Employee) error
	Update(emp *employeeDatamodel.Employee) error
	Delete(id int64) error

	GetPositions() ([]*employeeDatamodel.Position, error)
	GetPositionByID(id int64) (*employeeDatamodel.Position, error)
	CreatePosition(pos *employeeDatamodel.Position) error
	UpdatePosition(pos *employeeDatamodel.Position) error
}

// DirectoryAPI is the slice of the directory repository the employee service
// needs for hierarchy validation.
type DirectoryAPI interface {
	GetSubdivisionByID(id int64) (*directoryDatamodel.Subdivision, error)
	GetDepartmentByID(id int64) (*directoryDatamodel.Department, error)
}

type Service struct {
	repo      RepositoryAPI
	directory DirectoryAPI
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, directory DirectoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		logger:    logger,
	}
}

func (s *Service) ListEmployees(ctx context.Context, scope *accessctl.Scope, filter ListFilter) ([]*Employee, error) {
	rows, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, internal.NewInternalError("failed to list employees", err)
	}

	employees := make([]*Employee, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, FromDataModel(row))
	}
	return employees, nil
}

func (s *Service) GetEmployee(ctx context.Context, scope *accessctl.Scope, id int64) (*Employee, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get employee", err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError("employee not found", internal.ErrCodeEmployeeNotFound)
	}

	emp := FromDataModel(row)
	ok, err := scope.CanAccessObject(ctx, emp)
	if err != nil {
		return nil, internal.NewInternalError("failed to check employee access", err)
	}
	if !ok {
		return nil, internal.ErrAccessDenied
	}
	return emp, nil
}

func (s *Service) CreateEmployee(ctx context.Context, scope *accessctl.Scope, dto EmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}
	if err := s.validateAttribution(ctx, scope, dto.OrganizationID, dto.SubdivisionID, dto.DepartmentID); err != nil {
		return nil, err
	}
	if err := s.requirePosition(dto.PositionID); err != nil {
		return nil, err
	}

	contractType := dto.ContractType
	if contractType == "" {
		contractType = ContractStandard
	}

	row := &employeeDatamodel.Employee{
		FullName:       dto.FullName,
		DateOfBirth:    dto.DateOfBirth,
		Email:          dto.Email,
		OrganizationID: dto.OrganizationID,
		SubdivisionID:  dto.SubdivisionID,
		DepartmentID:   dto.DepartmentID,
		PositionID:     dto.PositionID,
		Status:         StatusCandidate,
		ContractType:   contractType,
		Height:         dto.Height,
		ClothingSize:   dto.ClothingSize,
		ShoeSize:       dto.ShoeSize,
	}
	if err := s.repo.Create(row); err != nil {
		s.logger.Error("failed to create employee", "error", err)
		return nil, internal.NewInternalError("failed to create employee", err)
	}

	s.logger.Info("employee created", "employee_id", row.ID, "organization_id", row.OrganizationID)
	return FromDataModel(row), nil
}

func (s *Service) UpdateEmployee(ctx context.Context, scope *accessctl.Scope, id int64, dto EmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	current, err := s.GetEmployee(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateAttribution(ctx, scope, dto.OrganizationID, dto.SubdivisionID, dto.DepartmentID); err != nil {
		return nil, err
	}
	if err := s.requirePosition(dto.PositionID); err != nil {
		return nil, err
	}

	contractType := dto.ContractType
	if contractType == "" {
		contractType = current.ContractType
	}

	row := ToDataModel(current)
	row.FullName = dto.FullName
	row.DateOfBirth = dto.DateOfBirth
	row.Email = dto.Email
	row.OrganizationID = dto.OrganizationID
	row.SubdivisionID = dto.SubdivisionID
	row.DepartmentID = dto.DepartmentID
	row.PositionID = dto.PositionID
	row.ContractType = contractType
	row.Height = dto.Height
	row.ClothingSize = dto.ClothingSize
	row.ShoeSize = dto.ShoeSize

	if err := s.repo.Update(row); err != nil {
		s.logger.Error("failed to update employee", "error", err, "employee_id", id)
		return nil, internal.NewInternalError("failed to update employee", err)
	}
	return FromDataModel(row), nil
}

// UpdateStatus moves an employee through the hiring lifecycle. Moving into
// working status stamps the hire date on first hire.
func (s *Service) UpdateStatus(ctx context.Context, scope *accessctl.Scope, id int64, dto StatusDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	current, err := s.GetEmployee(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(current.Status, dto.Status) {
		return nil, internal.NewValidationError("invalid status transition", internal.ErrCodeValidationFailed)
	}

	row := ToDataModel(current)
	row.Status = dto.Status
	if dto.Status == StatusWorking && row.HireDate == nil {
		now := time.Now()
		row.HireDate = &now
	}

	if err := s.repo.Update(row); err != nil {
		s.logger.Error("failed to update employee status", "error", err, "employee_id", id)
		return nil, internal.NewInternalError("failed to update employee status", err)
	}

	s.logger.Info("employee status changed", "employee_id", id, "from", current.Status, "to", dto.Status)
	return FromDataModel(row), nil
}

func (s *Service) DeleteEmployee(ctx context.Context, scope *accessctl.Scope, id int64) error {
	if _, err := s.GetEmployee(ctx, scope, id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete employee", "error", err, "employee_id", id)
		return internal.NewInternalError("failed to delete employee", err)
	}
	s.logger.Info("employee deleted", "employee_id", id)
	return nil
}

func (s *Service) ListPositions(ctx context.Context) ([]*Position, error) {
	rows, err := s.repo.GetPositions()
	if err != nil {
		return nil, internal.NewInternalError("failed to list positions", err)
	}
	positions := make([]*Position, 0, len(rows))
	for _, row := range rows {
		positions = append(positions, PositionFromDataModel(row))
	}
	return positions, nil
}

func (s *Service) CreatePosition(ctx context.Context, dto PositionDTO) (*Position, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}
	row := &employeeDatamodel.Position{
		Name:            dto.Name,
		ElectricalGroup: dto.ElectricalGroup,
		IsActive:        true,
	}
	if err := s.repo.CreatePosition(row); err != nil {
		return nil, internal.NewInternalError("failed to create position", err)
	}
	s.logger.Info("position created", "position_id", row.ID, "name", row.Name)
	return PositionFromDataModel(row), nil
}

// validateAttribution checks that the attribution triple is internally
// consistent and lies within the caller's scope.
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

func (s *Service) requirePosition(positionID int64) error {
	pos, err := s.repo.GetPositionByID(positionID)
	if err != nil {
		return internal.NewInternalError("failed to get position", err)
	}
	if pos == nil {
		return internal.NewNotFoundError("position not found", internal.ErrCodePositionNotFound)
	}
	return nil
}
