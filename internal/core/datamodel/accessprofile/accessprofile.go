package accessprofile

import "time"

// AccessProfile holds the hierarchy scopes granted to a user. Created at
// account creation, mutated only by administrators; the resolver treats it as
// read-only.
type AccessProfile struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex"`
	// No default tag: gorm skips zero values for defaulted columns on
	// Create, which would store an inactive profile as active.
	IsActive  bool      `gorm:"column:is_active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (AccessProfile) TableName() string {
	return "access_profiles"
}

type OrganizationGrant struct {
	ProfileID      int64 `gorm:"column:profile_id;primaryKey"`
	OrganizationID int64 `gorm:"column:organization_id;primaryKey"`
}

func (OrganizationGrant) TableName() string {
	return "access_profile_organizations"
}

type SubdivisionGrant struct {
	ProfileID     int64 `gorm:"column:profile_id;primaryKey"`
	SubdivisionID int64 `gorm:"column:subdivision_id;primaryKey"`
}

func (SubdivisionGrant) TableName() string {
	return "access_profile_subdivisions"
}

type DepartmentGrant struct {
	ProfileID    int64 `gorm:"column:profile_id;primaryKey"`
	DepartmentID int64 `gorm:"column:department_id;primaryKey"`
}

func (DepartmentGrant) TableName() string {
	return "access_profile_departments"
}
