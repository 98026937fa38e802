package medical

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrivolkov/safety-management/internal"
	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	medicalDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/medical"
	"github.com/dmitrivolkov/safety-management/internal/employee"
)

type RepositoryAPI interface {
	GetTypes() ([]*medicalDatamodel.ExaminationType, error)
	GetTypeByID(id int64) (*medicalDatamodel.ExaminationType, error)
	CreateType(t *medicalDatamodel.ExaminationType) error
	UpdateType(t *medicalDatamodel.ExaminationType) error

	CreateExamination(e *medicalDatamodel.MedicalExamination) error
	GetExaminationByID(id int64) (*medicalDatamodel.MedicalExamination, error)
	GetExaminationsForEmployee(employeeID int64) ([]*medicalDatamodel.MedicalExamination, error)
	// ListDue returns examinations whose next date falls on or before the
	// deadline, narrowed to employees within the scope.
	ListDue(ctx context.Context, scope *accessctl.Scope, deadline time.Time) ([]*medicalDatamodel.MedicalExamination, error)
}

type EmployeeAPI interface {
	GetEmployee(ctx context.Context, scope *accessctl.Scope, id int64) (*employee.Employee, error)
}

// Service keeps the medical examination ledger. Examinations have no
// attribution columns of their own; visibility follows the examined
// employee.
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

func (s *Service) ListTypes(ctx context.Context) ([]*ExaminationType, error) {
	rows, err := s.repo.GetTypes()
	if err != nil {
		return nil, internal.NewInternalError("failed to list examination types", err)
	}
	types := make([]*ExaminationType, 0, len(rows))
	for _, row := range rows {
		types = append(types, TypeFromDataModel(row))
	}
	return types, nil
}

func (s *Service) CreateType(ctx context.Context, dto ExaminationTypeDTO) (*ExaminationType, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}
	row := &medicalDatamodel.ExaminationType{
		Name:              dto.Name,
		PeriodicityMonths: dto.PeriodicityMonths,
		IsActive:          true,
	}
	if err := s.repo.CreateType(row); err != nil {
		return nil, internal.NewInternalError("failed to create examination type", err)
	}
	s.logger.Info("examination type created", "type_id", row.ID, "name", row.Name)
	return TypeFromDataModel(row), nil
}

// RecordExamination stores a completed examination and schedules the next
// one from the type's periodicity.
func (s *Service) RecordExamination(ctx context.Context, scope *accessctl.Scope, dto ExaminationDTO) (*Examination, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if _, err := s.employees.GetEmployee(ctx, scope, dto.EmployeeID); err != nil {
		return nil, err
	}

	examType, err := s.repo.GetTypeByID(dto.ExaminationTypeID)
	if err != nil {
		return nil, internal.NewInternalError("failed to get examination type", err)
	}
	if examType == nil {
		return nil, internal.NewNotFoundError("examination type not found", internal.ErrCodeExaminationNotFound)
	}

	examDate := time.Now()
	if dto.ExamDate != nil {
		examDate = *dto.ExamDate
	}

	row := &medicalDatamodel.MedicalExamination{
		EmployeeID:        dto.EmployeeID,
		ExaminationTypeID: dto.ExaminationTypeID,
		ExamDate:          examDate,
		NextExamDate:      NextExamDate(examDate, examType.PeriodicityMonths),
		Result:            dto.Result,
		Notes:             dto.Notes,
	}
	if err := s.repo.CreateExamination(row); err != nil {
		s.logger.Error("failed to record examination", "error", err, "employee_id", dto.EmployeeID)
		return nil, internal.NewInternalError("failed to record examination", err)
	}

	s.logger.Info("examination recorded",
		"examination_id", row.ID,
		"employee_id", row.EmployeeID,
		"type_id", row.ExaminationTypeID)
	return FromDataModel(row), nil
}

func (s *Service) ListForEmployee(ctx context.Context, scope *accessctl.Scope, employeeID int64) ([]*Examination, error) {
	if _, err := s.employees.GetEmployee(ctx, scope, employeeID); err != nil {
		return nil, err
	}

	rows, err := s.repo.GetExaminationsForEmployee(employeeID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list examinations", err)
	}
	exams := make([]*Examination, 0, len(rows))
	for _, row := range rows {
		exams = append(exams, FromDataModel(row))
	}
	return exams, nil
}

// ListDue returns scoped examinations due within the given number of days.
func (s *Service) ListDue(ctx context.Context, scope *accessctl.Scope, withinDays int) ([]*Examination, error) {
	if withinDays <= 0 {
		withinDays = 30
	}
	deadline := time.Now().AddDate(0, 0, withinDays)

	rows, err := s.repo.ListDue(ctx, scope, deadline)
	if err != nil {
		s.logger.Error("failed to list due examinations", "error", err)
		return nil, internal.NewInternalError("failed to list due examinations", err)
	}
	exams := make([]*Examination, 0, len(rows))
	for _, row := range rows {
		exams = append(exams, FromDataModel(row))
	}
	return exams, nil
}
