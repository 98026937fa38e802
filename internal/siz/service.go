package siz

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrivolkov/safety-management/internal"
	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	sizDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/siz"
	"github.com/dmitrivolkov/safety-management/internal/employee"
)

type RepositoryAPI interface {
	GetAll() ([]*sizDatamodel.SIZ, error)
	GetByID(id int64) (*sizDatamodel.SIZ, error)
	Create(item *sizDatamodel.SIZ) error
	Update(item *sizDatamodel.SIZ) error
	Delete(id int64) error
	CountReferences(id int64) (int64, error)

	GetNormsForPosition(positionID int64) ([]*sizDatamodel.SIZNorm, error)
	GetNormByID(id int64) (*sizDatamodel.SIZNorm, error)
	CreateNorm(norm *sizDatamodel.SIZNorm) error
	DeleteNorm(id int64) error

	CreateIssued(issued *sizDatamodel.SIZIssued) error
	GetIssuedByID(id int64) (*sizDatamodel.SIZIssued, error)
	UpdateIssued(issued *sizDatamodel.SIZIssued) error
	GetIssuedForEmployee(employeeID int64) ([]*sizDatamodel.SIZIssued, error)
}

// EmployeeAPI is the slice of the employee service used to resolve and
// access-check the employee an issuance belongs to.
type EmployeeAPI interface {
	GetEmployee(ctx context.Context, scope *accessctl.Scope, id int64) (*employee.Employee, error)
}

// Service manages the protective gear catalog, per-position issue norms and
// the issuance ledger. Issuance visibility follows the employee the gear was
// issued to.
type Service struct {
	repo      RepositoryAPI
	employees EmployeeAPI
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, employees EmployeeAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		employees: employees,
		logger:    logger,
	}
}

func (s *Service) ListSIZ(ctx context.Context) ([]*SIZ, error) {
	rows, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list siz catalog", "error", err)
		return nil, internal.NewInternalError("failed to list siz catalog", err)
	}
	items := make([]*SIZ, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromDataModel(row))
	}
	return items, nil
}

func (s *Service) GetSIZ(ctx context.Context, id int64) (*SIZ, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get siz item", err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError("siz item not found", internal.ErrCodeSIZNotFound)
	}
	return FromDataModel(row), nil
}

func (s *Service) CreateSIZ(ctx context.Context, dto SIZDTO) (*SIZ, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	unit := dto.Unit
	if unit == "" {
		unit = "pcs"
	}

	row := &sizDatamodel.SIZ{
		Name:             dto.Name,
		Classification:   dto.Classification,
		Unit:             unit,
		WearPeriodMonths: dto.WearPeriodMonths,
		WearType:         dto.WearType,
		Cost:             dto.Cost,
	}
	if err := s.repo.Create(row); err != nil {
		s.logger.Error("failed to create siz item", "error", err)
		return nil, internal.NewInternalError("failed to create siz item", err)
	}

	s.logger.Info("siz item created", "siz_id", row.ID, "name", row.Name)
	return FromDataModel(row), nil
}

func (s *Service) UpdateSIZ(ctx context.Context, id int64, dto SIZDTO) (*SIZ, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	current, err := s.GetSIZ(ctx, id)
	if err != nil {
		return nil, err
	}

	unit := dto.Unit
	if unit == "" {
		unit = current.Unit
	}

	row := &sizDatamodel.SIZ{
		ID:               current.ID,
		Name:             dto.Name,
		Classification:   dto.Classification,
		Unit:             unit,
		WearPeriodMonths: dto.WearPeriodMonths,
		WearType:         dto.WearType,
		Cost:             dto.Cost,
		CreatedAt:        current.CreatedAt,
	}
	if err := s.repo.Update(row); err != nil {
		s.logger.Error("failed to update siz item", "error", err, "siz_id", id)
		return nil, internal.NewInternalError("failed to update siz item", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) DeleteSIZ(ctx context.Context, id int64) error {
	if _, err := s.GetSIZ(ctx, id); err != nil {
		return err
	}

	refs, err := s.repo.CountReferences(id)
	if err != nil {
		return internal.NewInternalError("failed to check siz references", err)
	}
	if refs > 0 {
		return internal.ErrProtectedRecord
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete siz item", "error", err, "siz_id", id)
		return internal.NewInternalError("failed to delete siz item", err)
	}
	s.logger.Info("siz item deleted", "siz_id", id)
	return nil
}

func (s *Service) ListNorms(ctx context.Context, positionID int64) ([]*Norm, error) {
	rows, err := s.repo.GetNormsForPosition(positionID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list siz norms", err)
	}
	norms := make([]*Norm, 0, len(rows))
	for _, row := range rows {
		norms = append(norms, NormFromDataModel(row))
	}
	return norms, nil
}

func (s *Service) CreateNorm(ctx context.Context, dto NormDTO) (*Norm, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}
	if _, err := s.GetSIZ(ctx, dto.SIZID); err != nil {
		return nil, err
	}

	row := &sizDatamodel.SIZNorm{
		PositionID: dto.PositionID,
		SIZID:      dto.SIZID,
		Quantity:   dto.Quantity,
		Condition:  dto.Condition,
	}
	if err := s.repo.CreateNorm(row); err != nil {
		return nil, internal.NewInternalError("failed to create siz norm", err)
	}

	s.logger.Info("siz norm created", "norm_id", row.ID, "position_id", row.PositionID, "siz_id", row.SIZID)
	return NormFromDataModel(row), nil
}

func (s *Service) DeleteNorm(ctx context.Context, id int64) error {
	norm, err := s.repo.GetNormByID(id)
	if err != nil {
		return internal.NewInternalError("failed to get siz norm", err)
	}
	if norm == nil {
		return internal.NewNotFoundError("siz norm not found", internal.ErrCodeSIZNotFound)
	}
	if err := s.repo.DeleteNorm(id); err != nil {
		return internal.NewInternalError("failed to delete siz norm", err)
	}
	return nil
}

// Issue hands a catalog item to an employee and stamps the wear-out date
// from the item's wear period. The employee must be within the caller's
// scope.
func (s *Service) Issue(ctx context.Context, scope *accessctl.Scope, dto IssueDTO) (*Issued, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if _, err := s.employees.GetEmployee(ctx, scope, dto.EmployeeID); err != nil {
		return nil, err
	}

	item, err := s.GetSIZ(ctx, dto.SIZID)
	if err != nil {
		return nil, err
	}

	issueDate := time.Now()
	if dto.IssueDate != nil {
		issueDate = *dto.IssueDate
	}

	row := &sizDatamodel.SIZIssued{
		EmployeeID:  dto.EmployeeID,
		SIZID:       dto.SIZID,
		Quantity:    dto.Quantity,
		IssueDate:   issueDate,
		WearOutDate: WearOutDate(issueDate, item.WearPeriodMonths),
	}
	if err := s.repo.CreateIssued(row); err != nil {
		s.logger.Error("failed to issue siz", "error", err, "employee_id", dto.EmployeeID, "siz_id", dto.SIZID)
		return nil, internal.NewInternalError("failed to issue siz", err)
	}

	s.logger.Info("siz issued", "issued_id", row.ID, "employee_id", row.EmployeeID, "siz_id", row.SIZID)
	return IssuedFromDataModel(row), nil
}

// Return closes an issuance. Returning twice is a conflict.
func (s *Service) Return(ctx context.Context, scope *accessctl.Scope, issuedID int64, dto ReturnDTO) (*Issued, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	row, err := s.repo.GetIssuedByID(issuedID)
	if err != nil {
		return nil, internal.NewInternalError("failed to get issued siz", err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError("issued siz not found", internal.ErrCodeSIZNotFound)
	}

	if _, err := s.employees.GetEmployee(ctx, scope, row.EmployeeID); err != nil {
		return nil, err
	}

	if row.ReturnDate != nil {
		return nil, internal.NewConflictError("siz has already been returned", internal.ErrCodeAlreadyReturned)
	}

	returnDate := time.Now()
	if dto.ReturnDate != nil {
		returnDate = *dto.ReturnDate
	}
	row.ReturnDate = &returnDate
	row.ReturnCondition = dto.ReturnCondition

	if err := s.repo.UpdateIssued(row); err != nil {
		s.logger.Error("failed to return siz", "error", err, "issued_id", issuedID)
		return nil, internal.NewInternalError("failed to return siz", err)
	}

	s.logger.Info("siz returned", "issued_id", row.ID, "employee_id", row.EmployeeID)
	return IssuedFromDataModel(row), nil
}

// ListIssued returns the issuance ledger of one employee, newest first.
func (s *Service) ListIssued(ctx context.Context, scope *accessctl.Scope, employeeID int64) ([]*Issued, error) {
	if _, err := s.employees.GetEmployee(ctx, scope, employeeID); err != nil {
		return nil, err
	}

	rows, err := s.repo.GetIssuedForEmployee(employeeID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list issued siz", err)
	}
	issued := make([]*Issued, 0, len(rows))
	for _, row := range rows {
		issued = append(issued, IssuedFromDataModel(row))
	}
	return issued, nil
}
