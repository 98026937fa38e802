package directory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrivolkov/safety-management/internal"
	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	accessprofileDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/accessprofile"
)

type ProfileRepositoryAPI interface {
	// GetProfile returns the user's access profile or nil when none exists.
	GetProfile(userID int64) (*accessprofileDatamodel.AccessProfile, error)
	CreateProfile(profile *accessprofileDatamodel.AccessProfile) error
	SetProfileActive(profileID int64, active bool) error

	AddOrganizationGrants(profileID int64, organizationIDs []int64) error
	AddSubdivisionGrants(profileID int64, subdivisionIDs []int64) error
	AddDepartmentGrants(profileID int64, departmentIDs []int64) error

	RemoveOrganizationGrants(profileID int64, organizationIDs []int64) error
	RemoveSubdivisionGrants(profileID int64, subdivisionIDs []int64) error
	RemoveDepartmentGrants(profileID int64, departmentIDs []int64) error

	ListGrants(profileID int64) (*accessctl.Grants, error)
}

// GrantService administers access profiles. Mutations here are the only way
// grants change; the resolver only ever reads them.
type GrantService struct {
	repo   ProfileRepositoryAPI
	store  accessctl.GrantStore
	logger *slog.Logger
}

func NewGrantService(repo ProfileRepositoryAPI, store accessctl.GrantStore, logger *slog.Logger) *GrantService {
	return &GrantService{
		repo:   repo,
		store:  store,
		logger: logger,
	}
}

type GrantsResponse struct {
	UserID          int64    `json:"user_id"`
	IsActive        bool     `json:"is_active"`
	OrganizationIDs []int64  `json:"organization_ids"`
	SubdivisionIDs  []int64  `json:"subdivision_ids"`
	DepartmentIDs   []int64  `json:"department_ids"`
	Warnings        []string `json:"warnings,omitempty"`
}

// Grant adds the requested scopes to the user's profile, creating the profile
// on first use. It returns warnings for grants already implied by a broader
// one; redundant grants are still stored so revoking the broad grant keeps
// the narrow one intact.
func (s *GrantService) Grant(ctx context.Context, dto GrantDTO) (*GrantsResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	profile, err := s.repo.GetProfile(dto.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load access profile", err)
	}
	if profile == nil {
		profile = &accessprofileDatamodel.AccessProfile{UserID: dto.UserID, IsActive: true}
		if err := s.repo.CreateProfile(profile); err != nil {
			return nil, internal.NewInternalError("failed to create access profile", err)
		}
		s.logger.Info("access profile created", "user_id", dto.UserID, "profile_id", profile.ID)
	}

	existing, err := s.repo.ListGrants(profile.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load grants", err)
	}

	warnings, err := s.redundancyWarnings(ctx, existing, dto)
	if err != nil {
		return nil, internal.NewInternalError("failed to check grant redundancy", err)
	}

	if len(dto.OrganizationIDs) > 0 {
		if err := s.repo.AddOrganizationGrants(profile.ID, dto.OrganizationIDs); err != nil {
			return nil, internal.NewInternalError("failed to add organization grants", err)
		}
	}
	if len(dto.SubdivisionIDs) > 0 {
		if err := s.repo.AddSubdivisionGrants(profile.ID, dto.SubdivisionIDs); err != nil {
			return nil, internal.NewInternalError("failed to add subdivision grants", err)
		}
	}
	if len(dto.DepartmentIDs) > 0 {
		if err := s.repo.AddDepartmentGrants(profile.ID, dto.DepartmentIDs); err != nil {
			return nil, internal.NewInternalError("failed to add department grants", err)
		}
	}

	s.logger.Info("grants added", "user_id", dto.UserID,
		"organizations", len(dto.OrganizationIDs),
		"subdivisions", len(dto.SubdivisionIDs),
		"departments", len(dto.DepartmentIDs))

	resp, err := s.grantsResponse(dto.UserID, profile)
	if err != nil {
		return nil, err
	}
	resp.Warnings = warnings
	return resp, nil
}

// Revoke removes the listed scopes from the user's profile.
func (s *GrantService) Revoke(ctx context.Context, dto GrantDTO) (*GrantsResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	profile, err := s.repo.GetProfile(dto.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load access profile", err)
	}
	if profile == nil {
		return nil, internal.NewNotFoundError("access profile not found", internal.ErrCodeProfileNotFound)
	}

	if len(dto.OrganizationIDs) > 0 {
		if err := s.repo.RemoveOrganizationGrants(profile.ID, dto.OrganizationIDs); err != nil {
			return nil, internal.NewInternalError("failed to remove organization grants", err)
		}
	}
	if len(dto.SubdivisionIDs) > 0 {
		if err := s.repo.RemoveSubdivisionGrants(profile.ID, dto.SubdivisionIDs); err != nil {
			return nil, internal.NewInternalError("failed to remove subdivision grants", err)
		}
	}
	if len(dto.DepartmentIDs) > 0 {
		if err := s.repo.RemoveDepartmentGrants(profile.ID, dto.DepartmentIDs); err != nil {
			return nil, internal.NewInternalError("failed to remove department grants", err)
		}
	}

	s.logger.Info("grants revoked", "user_id", dto.UserID)
	return s.grantsResponse(dto.UserID, profile)
}

// GetGrants returns the user's direct grants.
func (s *GrantService) GetGrants(ctx context.Context, userID int64) (*GrantsResponse, error) {
	profile, err := s.repo.GetProfile(userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load access profile", err)
	}
	if profile == nil {
		return nil, internal.NewNotFoundError("access profile not found", internal.ErrCodeProfileNotFound)
	}
	return s.grantsResponse(userID, profile)
}

// SetActive toggles the profile without touching its grants, for suspending
// a user's visibility temporarily.
func (s *GrantService) SetActive(ctx context.Context, userID int64, active bool) error {
	profile, err := s.repo.GetProfile(userID)
	if err != nil {
		return internal.NewInternalError("failed to load access profile", err)
	}
	if profile == nil {
		return internal.NewNotFoundError("access profile not found", internal.ErrCodeProfileNotFound)
	}
	if err := s.repo.SetProfileActive(profile.ID, active); err != nil {
		return internal.NewInternalError("failed to update access profile", err)
	}
	s.logger.Info("access profile toggled", "user_id", userID, "active", active)
	return nil
}

func (s *GrantService) grantsResponse(userID int64, profile *accessprofileDatamodel.AccessProfile) (*GrantsResponse, error) {
	grants, err := s.repo.ListGrants(profile.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load grants", err)
	}
	return &GrantsResponse{
		UserID:          userID,
		IsActive:        profile.IsActive,
		OrganizationIDs: grants.Organizations.IDs(),
		SubdivisionIDs:  grants.Subdivisions.IDs(),
		DepartmentIDs:   grants.Departments.IDs(),
	}, nil
}

// redundancyWarnings flags requested grants already covered by a broader
// grant, existing or requested in the same call.
func (s *GrantService) redundancyWarnings(ctx context.Context, existing *accessctl.Grants, dto GrantDTO) ([]string, error) {
	orgs := accessctl.NewIDSet(dto.OrganizationIDs...)
	if existing != nil {
		orgs.Union(existing.Organizations)
	}
	subs := accessctl.NewIDSet(dto.SubdivisionIDs...)
	if existing != nil {
		subs.Union(existing.Subdivisions)
	}

	var warnings []string

	if len(dto.SubdivisionIDs) > 0 && orgs.Len() > 0 {
		for _, subID := range dto.SubdivisionIDs {
			parents, err := s.store.OrganizationsOfSubdivisions(ctx, accessctl.NewIDSet(subID))
			if err != nil {
				return nil, err
			}
			for parent := range parents {
				if orgs.Has(parent) {
					warnings = append(warnings,
						fmt.Sprintf("subdivision %d is already covered by organization %d", subID, parent))
				}
			}
		}
	}

	if len(dto.DepartmentIDs) > 0 && (orgs.Len() > 0 || subs.Len() > 0) {
		for _, deptID := range dto.DepartmentIDs {
			parentOrgs, parentSubs, err := s.store.ParentsOfDepartments(ctx, accessctl.NewIDSet(deptID))
			if err != nil {
				return nil, err
			}
			for parent := range parentSubs {
				if subs.Has(parent) {
					warnings = append(warnings,
						fmt.Sprintf("department %d is already covered by subdivision %d", deptID, parent))
				}
			}
			for parent := range parentOrgs {
				if orgs.Has(parent) {
					warnings = append(warnings,
						fmt.Sprintf("department %d is already covered by organization %d", deptID, parent))
				}
			}
		}
	}

	return warnings, nil
}
