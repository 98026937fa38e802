package postgres

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	accessprofileDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/accessprofile"
	"github.com/dmitrivolkov/safety-management/internal/directory"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) directory.ProfileRepositoryAPI {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetProfile(userID int64) (*accessprofileDatamodel.AccessProfile, error) {
	var profile accessprofileDatamodel.AccessProfile
	err := r.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) CreateProfile(profile *accessprofileDatamodel.AccessProfile) error {
	return r.db.Create(profile).Error
}

func (r *ProfileRepository) SetProfileActive(profileID int64, active bool) error {
	return r.db.Model(&accessprofileDatamodel.AccessProfile{}).
		Where("id = ?", profileID).
		Update("is_active", active).Error
}

func (r *ProfileRepository) AddOrganizationGrants(profileID int64, organizationIDs []int64) error {
	grants := make([]accessprofileDatamodel.OrganizationGrant, 0, len(organizationIDs))
	for _, id := range organizationIDs {
		grants = append(grants, accessprofileDatamodel.OrganizationGrant{ProfileID: profileID, OrganizationID: id})
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&grants).Error
}

func (r *ProfileRepository) AddSubdivisionGrants(profileID int64, subdivisionIDs []int64) error {
	grants := make([]accessprofileDatamodel.SubdivisionGrant, 0, len(subdivisionIDs))
	for _, id := range subdivisionIDs {
		grants = append(grants, accessprofileDatamodel.SubdivisionGrant{ProfileID: profileID, SubdivisionID: id})
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&grants).Error
}

func (r *ProfileRepository) AddDepartmentGrants(profileID int64, departmentIDs []int64) error {
	grants := make([]accessprofileDatamodel.DepartmentGrant, 0, len(departmentIDs))
	for _, id := range departmentIDs {
		grants = append(grants, accessprofileDatamodel.DepartmentGrant{ProfileID: profileID, DepartmentID: id})
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&grants).Error
}

func (r *ProfileRepository) RemoveOrganizationGrants(profileID int64, organizationIDs []int64) error {
	return r.db.Where("profile_id = ? AND organization_id IN ?", profileID, organizationIDs).
		Delete(&accessprofileDatamodel.OrganizationGrant{}).Error
}

func (r *ProfileRepository) RemoveSubdivisionGrants(profileID int64, subdivisionIDs []int64) error {
	return r.db.Where("profile_id = ? AND subdivision_id IN ?", profileID, subdivisionIDs).
		Delete(&accessprofileDatamodel.SubdivisionGrant{}).Error
}

func (r *ProfileRepository) RemoveDepartmentGrants(profileID int64, departmentIDs []int64) error {
	return r.db.Where("profile_id = ? AND department_id IN ?", profileID, departmentIDs).
		Delete(&accessprofileDatamodel.DepartmentGrant{}).Error
}

func (r *ProfileRepository) ListGrants(profileID int64) (*accessctl.Grants, error) {
	var orgIDs []int64
	if err := r.db.Model(&accessprofileDatamodel.OrganizationGrant{}).
		Where("profile_id = ?", profileID).
		Pluck("organization_id", &orgIDs).Error; err != nil {
		return nil, err
	}

	var subIDs []int64
	if err := r.db.Model(&accessprofileDatamodel.SubdivisionGrant{}).
		Where("profile_id = ?", profileID).
		Pluck("subdivision_id", &subIDs).Error; err != nil {
		return nil, err
	}

	var deptIDs []int64
	if err := r.db.Model(&accessprofileDatamodel.DepartmentGrant{}).
		Where("profile_id = ?", profileID).
		Pluck("department_id", &deptIDs).Error; err != nil {
		return nil, err
	}

	return &accessctl.Grants{
		Organizations: accessctl.NewIDSet(orgIDs...),
		Subdivisions:  accessctl.NewIDSet(subIDs...),
		Departments:   accessctl.NewIDSet(deptIDs...),
	}, nil
}
