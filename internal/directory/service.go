package directory

import (
	"context"
	"log/slog"

	"github.com/dmitrivolkov/safety-management/internal"
	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	directoryDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/directory"
)

type RepositoryAPI interface {
	GetOrganizations(ids []int64) ([]*directoryDatamodel.Organization, error)
	GetOrganizationByID(id int64) (*directoryDatamodel.Organization, error)
	CreateOrganization(org *directoryDatamodel.Organization) error
	UpdateOrganization(org *directoryDatamodel.Organization) error
	DeleteOrganization(id int64) error
	CountOrganizationReferences(id int64) (int64, error)

	GetSubdivisions(ids []int64) ([]*directoryDatamodel.Subdivision, error)
	GetSubdivisionByID(id int64) (*directoryDatamodel.Subdivision, error)
	CreateSubdivision(sub *directoryDatamodel.Subdivision) error
	UpdateSubdivision(sub *directoryDatamodel.Subdivision) error
	DeleteSubdivision(id int64) error
	CountSubdivisionReferences(id int64) (int64, error)

	GetDepartments(ids []int64) ([]*directoryDatamodel.Department, error)
	GetDepartmentByID(id int64) (*directoryDatamodel.Department, error)
	CreateDepartment(dept *directoryDatamodel.Department) error
	UpdateDepartment(dept *directoryDatamodel.Department) error
	DeleteDepartment(id int64) error
	CountDepartmentReferences(id int64) (int64, error)
}

// Service serves the organizational directory: every read is narrowed to the
// caller's resolved scope, every write re-validates the hierarchy.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ListOrganizations(ctx context.Context, scope *accessctl.Scope) ([]*Organization, error) {
	accessible, err := scope.Organizations(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve accessible organizations", err)
	}
	if accessible.Len() == 0 {
		return []*Organization{}, nil
	}

	rows, err := s.repo.GetOrganizations(accessible.IDs())
	if err != nil {
		s.logger.Error("failed to list organizations", "error", err)
		return nil, internal.NewInternalError("failed to list organizations", err)
	}

	orgs := make([]*Organization, 0, len(rows))
	for _, row := range rows {
		orgs = append(orgs, OrganizationFromDataModel(row))
	}
	return orgs, nil
}

func (s *Service) GetOrganization(ctx context.Context, scope *accessctl.Scope, id int64) (*Organization, error) {
	accessible, err := scope.Organizations(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve accessible organizations", err)
	}
	if !accessible.Has(id) {
		return nil, internal.ErrAccessDenied
	}

	row, err := s.repo.GetOrganizationByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get organization", err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError("organization not found", internal.ErrCodeOrganizationNotFound)
	}
	return OrganizationFromDataModel(row), nil
}

func (s *Service) CreateOrganization(ctx context.Context, dto OrganizationDTO) (*Organization, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	row := &directoryDatamodel.Organization{
		FullName:   dto.FullName,
		ShortName:  dto.ShortName,
		Requisites: dto.Requisites,
		Location:   dto.Location,
	}
	if err := s.repo.CreateOrganization(row); err != nil {
		s.logger.Error("failed to create organization", "error", err)
		return nil, internal.NewInternalError("failed to create organization", err)
	}

	s.logger.Info("organization created", "organization_id", row.ID, "short_name", row.ShortName)
	return OrganizationFromDataModel(row), nil
}

func (s *Service) UpdateOrganization(ctx context.Context, scope *accessctl.Scope, id int64, dto OrganizationDTO) (*Organization, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	current, err := s.GetOrganization(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	row := &directoryDatamodel.Organization{
		ID:         current.ID,
		FullName:   dto.FullName,
		ShortName:  dto.ShortName,
		Requisites: dto.Requisites,
		Location:   dto.Location,
		CreatedAt:  current.CreatedAt,
	}
	if err := s.repo.UpdateOrganization(row); err != nil {
		s.logger.Error("failed to update organization", "error", err, "organization_id", id)
		return nil, internal.NewInternalError("failed to update organization", err)
	}
	return OrganizationFromDataModel(row), nil
}

func (s *Service) DeleteOrganization(ctx context.Context, scope *accessctl.Scope, id int64) error {
	if _, err := s.GetOrganization(ctx, scope, id); err != nil {
		return err
	}

	refs, err := s.repo.CountOrganizationReferences(id)
	if err != nil {
		return internal.NewInternalError("failed to check organization references", err)
	}
	if refs > 0 {
		return internal.ErrProtectedRecord
	}

	if err := s.repo.DeleteOrganization(id); err != nil {
		s.logger.Error("failed to delete organization", "error", err, "organization_id", id)
		return internal.NewInternalError("failed to delete organization", err)
	}
	s.logger.Info("organization deleted", "organization_id", id)
	return nil
}

func (s *Service) ListSubdivisions(ctx context.Context, scope *accessctl.Scope) ([]*Subdivision, error) {
	accessible, err := scope.Subdivisions(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve accessible subdivisions", err)
	}
	if accessible.Len() == 0 {
		return []*Subdivision{}, nil
	}

	rows, err := s.repo.GetSubdivisions(accessible.IDs())
	if err != nil {
		s.logger.Error("failed to list subdivisions", "error", err)
		return nil, internal.NewInternalError("failed to list subdivisions", err)
	}

	subs := make([]*Subdivision, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, SubdivisionFromDataModel(row))
	}
	return subs, nil
}

func (s *Service) GetSubdivision(ctx context.Context, scope *accessctl.Scope, id int64) (*Subdivision, error) {
	accessible, err := scope.Subdivisions(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve accessible subdivisions", err)
	}
	if !accessible.Has(id) {
		return nil, internal.ErrAccessDenied
	}

	row, err := s.repo.GetSubdivisionByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get subdivision", err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError("subdivision not found", internal.ErrCodeSubdivisionNotFound)
	}
	return SubdivisionFromDataModel(row), nil
}

func (s *Service) CreateSubdivision(ctx context.Context, scope *accessctl.Scope, dto SubdivisionDTO) (*Subdivision, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}
	if err := s.requireOrganization(ctx, scope, dto.OrganizationID); err != nil {
		return nil, err
	}

	row := &directoryDatamodel.Subdivision{
		Name:           dto.Name,
		ShortName:      dto.ShortName,
		OrganizationID: dto.OrganizationID,
	}
	if err := s.repo.CreateSubdivision(row); err != nil {
		s.logger.Error("failed to create subdivision", "error", err)
		return nil, internal.NewInternalError("failed to create subdivision", err)
	}

	s.logger.Info("subdivision created", "subdivision_id", row.ID, "organization_id", row.OrganizationID)
	return SubdivisionFromDataModel(row), nil
}

func (s *Service) UpdateSubdivision(ctx context.Context, scope *accessctl.Scope, id int64, dto SubdivisionDTO) (*Subdivision, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	current, err := s.GetSubdivision(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOrganization(ctx, scope, dto.OrganizationID); err != nil {
		return nil, err
	}

	row := &directoryDatamodel.Subdivision{
		ID:             current.ID,
		Name:           dto.Name,
		ShortName:      dto.ShortName,
		OrganizationID: dto.OrganizationID,
		CreatedAt:      current.CreatedAt,
	}
	if err := s.repo.UpdateSubdivision(row); err != nil {
		s.logger.Error("failed to update subdivision", "error", err, "subdivision_id", id)
		return nil, internal.NewInternalError("failed to update subdivision", err)
	}
	return SubdivisionFromDataModel(row), nil
}

func (s *Service) DeleteSubdivision(ctx context.Context, scope *accessctl.Scope, id int64) error {
	if _, err := s.GetSubdivision(ctx, scope, id); err != nil {
		return err
	}

	refs, err := s.repo.CountSubdivisionReferences(id)
	if err != nil {
		return internal.NewInternalError("failed to check subdivision references", err)
	}
	if refs > 0 {
		return internal.ErrProtectedRecord
	}

	if err := s.repo.DeleteSubdivision(id); err != nil {
		s.logger.Error("failed to delete subdivision", "error", err, "subdivision_id", id)
		return internal.NewInternalError("failed to delete subdivision", err)
	}
	s.logger.Info("subdivision deleted", "subdivision_id", id)
	return nil
}

// accessibleDepartments narrows to the caller's department set. A
// department-only profile is pinned to its directly granted departments: the
// closure would pull in every sibling under the implied parent organization.
func (s *Service) accessibleDepartments(ctx context.Context, scope *accessctl.Scope) (accessctl.IDSet, error) {
	deptOnly, err := scope.DepartmentOnly(ctx)
	if err != nil {
		return nil, err
	}
	if deptOnly {
		grants, err := scope.Grants(ctx)
		if err != nil {
			return nil, err
		}
		return grants.Departments, nil
	}
	return scope.Departments(ctx)
}

func (s *Service) ListDepartments(ctx context.Context, scope *accessctl.Scope) ([]*Department, error) {
	accessible, err := s.accessibleDepartments(ctx, scope)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve accessible departments", err)
	}
	if accessible.Len() == 0 {
		return []*Department{}, nil
	}

	rows, err := s.repo.GetDepartments(accessible.IDs())
	if err != nil {
		s.logger.Error("failed to list departments", "error", err)
		return nil, internal.NewInternalError("failed to list departments", err)
	}

	depts := make([]*Department, 0, len(rows))
	for _, row := range rows {
		depts = append(depts, DepartmentFromDataModel(row))
	}
	return depts, nil
}

func (s *Service) GetDepartment(ctx context.Context, scope *accessctl.Scope, id int64) (*Department, error) {
	accessible, err := s.accessibleDepartments(ctx, scope)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve accessible departments", err)
	}
	if !accessible.Has(id) {
		return nil, internal.ErrAccessDenied
	}

	row, err := s.repo.GetDepartmentByID(id)
	if err != nil {
		return nil, internal.NewInternalError("failed to get department", err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError("department not found", internal.ErrCodeDepartmentNotFound)
	}
	return DepartmentFromDataModel(row), nil
}

func (s *Service) CreateDepartment(ctx context.Context, scope *accessctl.Scope, dto DepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}
	if err := s.requireOrganization(ctx, scope, dto.OrganizationID); err != nil {
		return nil, err
	}
	if err := s.validateDepartmentHierarchy(dto.OrganizationID, dto.SubdivisionID); err != nil {
		return nil, err
	}

	row := &directoryDatamodel.Department{
		Name:           dto.Name,
		ShortName:      dto.ShortName,
		OrganizationID: dto.OrganizationID,
		SubdivisionID:  dto.SubdivisionID,
	}
	if err := s.repo.CreateDepartment(row); err != nil {
		s.logger.Error("failed to create department", "error", err)
		return nil, internal.NewInternalError("failed to create department", err)
	}

	s.logger.Info("department created", "department_id", row.ID, "organization_id", row.OrganizationID)
	return DepartmentFromDataModel(row), nil
}

func (s *Service) UpdateDepartment(ctx context.Context, scope *accessctl.Scope, id int64, dto DepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	current, err := s.GetDepartment(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOrganization(ctx, scope, dto.OrganizationID); err != nil {
		return nil, err
	}
	if err := s.validateDepartmentHierarchy(dto.OrganizationID, dto.SubdivisionID); err != nil {
		return nil, err
	}

	row := &directoryDatamodel.Department{
		ID:             current.ID,
		Name:           dto.Name,
		ShortName:      dto.ShortName,
		OrganizationID: dto.OrganizationID,
		SubdivisionID:  dto.SubdivisionID,
		CreatedAt:      current.CreatedAt,
	}
	if err := s.repo.UpdateDepartment(row); err != nil {
		s.logger.Error("failed to update department", "error", err, "department_id", id)
		return nil, internal.NewInternalError("failed to update department", err)
	}
	return DepartmentFromDataModel(row), nil
}

func (s *Service) DeleteDepartment(ctx context.Context, scope *accessctl.Scope, id int64) error {
	if _, err := s.GetDepartment(ctx, scope, id); err != nil {
		return err
	}

	refs, err := s.repo.CountDepartmentReferences(id)
	if err != nil {
		return internal.NewInternalError("failed to check department references", err)
	}
	if refs > 0 {
		return internal.ErrProtectedRecord
	}

	if err := s.repo.DeleteDepartment(id); err != nil {
		s.logger.Error("failed to delete department", "error", err, "department_id", id)
		return internal.NewInternalError("failed to delete department", err)
	}
	s.logger.Info("department deleted", "department_id", id)
	return nil
}

// requireOrganization checks that the target organization exists and is
// within the caller's scope. Writes into a foreign organization would widen
// access through the implied-parent rules.
func (s *Service) requireOrganization(ctx context.Context, scope *accessctl.Scope, orgID int64) error {
	org, err := s.repo.GetOrganizationByID(orgID)
	if err != nil {
		return internal.NewInternalError("failed to get organization", err)
	}
	if org == nil {
		return internal.NewNotFoundError("organization not found", internal.ErrCodeOrganizationNotFound)
	}

	accessible, err := scope.Organizations(ctx)
	if err != nil {
		return internal.NewInternalError("failed to resolve accessible organizations", err)
	}
	if !accessible.Has(orgID) {
		return internal.ErrAccessDenied
	}
	return nil
}

// validateDepartmentHierarchy rejects departments whose subdivision belongs
// to a different organization.
func (s *Service) validateDepartmentHierarchy(orgID int64, subID *int64) error {
	if subID == nil {
		return nil
	}
	sub, err := s.repo.GetSubdivisionByID(*subID)
	if err != nil {
		return internal.NewInternalError("failed to get subdivision", err)
	}
	if sub == nil {
		return internal.NewNotFoundError("subdivision not found", internal.ErrCodeSubdivisionNotFound)
	}
	if sub.OrganizationID != orgID {
		return internal.ErrInvalidHierarchy
	}
	return nil
}
