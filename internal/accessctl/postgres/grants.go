package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	profileDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/accessprofile"
)

// GrantStore implements accessctl.GrantStore on the relational schema using
// GORM. All methods are reads; grant mutation happens in the directory
// module.
type GrantStore struct {
	db *gorm.DB
}

func NewGrantStore(db *gorm.DB) accessctl.GrantStore {
	return &GrantStore{db: db}
}

func (s *GrantStore) ProfileGrants(ctx context.Context, userID int64) (*accessctl.Grants, error) {
	var profile profileDatamodel.AccessProfile
	err := s.db.WithContext(ctx).Where("user_id = ? AND is_active", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	grants := &accessctl.Grants{
		Organizations: accessctl.NewIDSet(),
		Subdivisions:  accessctl.NewIDSet(),
		Departments:   accessctl.NewIDSet(),
	}

	var orgIDs []int64
	if err := s.db.WithContext(ctx).
		Model(&profileDatamodel.OrganizationGrant{}).
		Where("profile_id = ?", profile.ID).
		Pluck("organization_id", &orgIDs).Error; err != nil {
		return nil, err
	}
	grants.Organizations.Add(orgIDs...)

	var subIDs []int64
	if err := s.db.WithContext(ctx).
		Model(&profileDatamodel.SubdivisionGrant{}).
		Where("profile_id = ?", profile.ID).
		Pluck("subdivision_id", &subIDs).Error; err != nil {
		return nil, err
	}
	grants.Subdivisions.Add(subIDs...)

	var deptIDs []int64
	if err := s.db.WithContext(ctx).
		Model(&profileDatamodel.DepartmentGrant{}).
		Where("profile_id = ?", profile.ID).
		Pluck("department_id", &deptIDs).Error; err != nil {
		return nil, err
	}
	grants.Departments.Add(deptIDs...)

	return grants, nil
}

func (s *GrantStore) AllOrganizations(ctx context.Context) (accessctl.IDSet, error) {
	return s.pluckIDs(ctx, "organizations", "", nil)
}

func (s *GrantStore) AllSubdivisions(ctx context.Context) (accessctl.IDSet, error) {
	return s.pluckIDs(ctx, "subdivisions", "", nil)
}

func (s *GrantStore) AllDepartments(ctx context.Context) (accessctl.IDSet, error) {
	return s.pluckIDs(ctx, "departments", "", nil)
}

func (s *GrantStore) OrganizationsOfSubdivisions(ctx context.Context, subdivisions accessctl.IDSet) (accessctl.IDSet, error) {
	if subdivisions.Len() == 0 {
		return accessctl.NewIDSet(), nil
	}
	out := accessctl.NewIDSet()
	var ids []int64
	err := s.db.WithContext(ctx).
		Table("subdivisions").
		Where("id IN ?", subdivisions.IDs()).
		Pluck("organization_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out.Add(ids...)
	return out, nil
}

func (s *GrantStore) ParentsOfDepartments(ctx context.Context, departments accessctl.IDSet) (accessctl.IDSet, accessctl.IDSet, error) {
	orgs := accessctl.NewIDSet()
	subs := accessctl.NewIDSet()
	if departments.Len() == 0 {
		return orgs, subs, nil
	}

	var rows []struct {
		OrganizationID int64  `gorm:"column:organization_id"`
		SubdivisionID  *int64 `gorm:"column:subdivision_id"`
	}
	err := s.db.WithContext(ctx).
		Table("departments").
		Select("organization_id, subdivision_id").
		Where("id IN ?", departments.IDs()).
		Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	for _, row := range rows {
		orgs.Add(row.OrganizationID)
		if row.SubdivisionID != nil {
			subs.Add(*row.SubdivisionID)
		}
	}
	return orgs, subs, nil
}

func (s *GrantStore) SubdivisionsOfOrganizations(ctx context.Context, organizations accessctl.IDSet) (accessctl.IDSet, error) {
	if organizations.Len() == 0 {
		return accessctl.NewIDSet(), nil
	}
	return s.pluckIDs(ctx, "subdivisions", "organization_id IN ?", organizations.IDs())
}

func (s *GrantStore) DepartmentsOfOrganizations(ctx context.Context, organizations accessctl.IDSet) (accessctl.IDSet, error) {
	if organizations.Len() == 0 {
		return accessctl.NewIDSet(), nil
	}
	return s.pluckIDs(ctx, "departments", "organization_id IN ?", organizations.IDs())
}

func (s *GrantStore) DepartmentsOfSubdivisions(ctx context.Context, subdivisions accessctl.IDSet) (accessctl.IDSet, error) {
	if subdivisions.Len() == 0 {
		return accessctl.NewIDSet(), nil
	}
	return s.pluckIDs(ctx, "departments", "subdivision_id IN ?", subdivisions.IDs())
}

func (s *GrantStore) pluckIDs(ctx context.Context, table, cond string, args []int64) (accessctl.IDSet, error) {
	q := s.db.WithContext(ctx).Table(table)
	if cond != "" {
		q = q.Where(cond, args)
	}
	var ids []int64
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return accessctl.NewIDSet(ids...), nil
}
