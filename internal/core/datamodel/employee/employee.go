package employee

import "time"

type Position struct {
	ID              int64     `gorm:"primaryKey"`
	Name            string    `gorm:"column:name;not null"`
	ElectricalGroup string    `gorm:"column:electrical_group"`
	IsActive        bool      `gorm:"column:is_active;default:true"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Position) TableName() string {
	return "positions"
}

// Employee carries all three hierarchy attribution fields; organization is
// required, subdivision and department narrow the record's place in the tree.
type Employee struct {
	ID             int64      `gorm:"primaryKey"`
	FullName       string     `gorm:"column:full_name;not null"`
	DateOfBirth    *time.Time `gorm:"column:date_of_birth;type:date"`
	Email          string     `gorm:"column:email"`
	OrganizationID int64      `gorm:"column:organization_id;not null"`
	SubdivisionID  *int64     `gorm:"column:subdivision_id"`
	DepartmentID   *int64     `gorm:"column:department_id"`
	PositionID     int64      `gorm:"column:position_id;not null"`
	Status         string     `gorm:"column:status;default:candidate"`
	ContractType   string     `gorm:"column:contract_type;default:standard"`
	Height         string     `gorm:"column:height"`
	ClothingSize   string     `gorm:"column:clothing_size"`
	ShoeSize       string     `gorm:"column:shoe_size"`
	HireDate       *time.Time `gorm:"column:hire_date;type:date"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Employee) TableName() string {
	return "employees"
}
