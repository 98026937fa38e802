package directory

import "time"

// Organization is the top level of the access hierarchy.
type Organization struct {
	ID         int64     `gorm:"primaryKey"`
	FullName   string    `gorm:"column:full_name;not null"`
	ShortName  string    `gorm:"column:short_name;not null"`
	Requisites string    `gorm:"column:requisites"`
	Location   string    `gorm:"column:location"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Organization) TableName() string {
	return "organizations"
}

// Subdivision belongs to exactly one organization.
type Subdivision struct {
	ID             int64     `gorm:"primaryKey"`
	Name           string    `gorm:"column:name;not null"`
	ShortName      string    `gorm:"column:short_name"`
	OrganizationID int64     `gorm:"column:organization_id;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Subdivision) TableName() string {
	return "subdivisions"
}

// Department belongs to a subdivision and, denormalized, to its organization.
// SubdivisionID may be null for departments attached directly to an
// organization.
type Department struct {
	ID             int64     `gorm:"primaryKey"`
	Name           string    `gorm:"column:name;not null"`
	ShortName      string    `gorm:"column:short_name"`
	OrganizationID int64     `gorm:"column:organization_id;not null"`
	SubdivisionID  *int64    `gorm:"column:subdivision_id"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Department) TableName() string {
	return "departments"
}
