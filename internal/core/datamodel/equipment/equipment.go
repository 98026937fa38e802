package equipment

import "time"

// Equipment is scoped into the hierarchy by up to three attribution fields,
// organization being required.
type Equipment struct {
	ID                      int64      `gorm:"primaryKey"`
	Name                    string     `gorm:"column:name;not null"`
	InventoryNumber         string     `gorm:"column:inventory_number"`
	OrganizationID          int64      `gorm:"column:organization_id;not null"`
	SubdivisionID           *int64     `gorm:"column:subdivision_id"`
	DepartmentID            *int64     `gorm:"column:department_id"`
	LastMaintenanceDate     *time.Time `gorm:"column:last_maintenance_date;type:date"`
	NextMaintenanceDate     *time.Time `gorm:"column:next_maintenance_date;type:date"`
	MaintenancePeriodMonths int        `gorm:"column:maintenance_period_months;default:12"`
	CreatedAt               time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Equipment) TableName() string {
	return "equipment"
}
