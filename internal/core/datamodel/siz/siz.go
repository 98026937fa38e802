package siz

import "time"

// SIZ is a protective gear catalog item. WearPeriodMonths of zero marks
// special cases ("until worn out", on-duty gear) described by WearType.
type SIZ struct {
	ID               int64     `gorm:"primaryKey"`
	Name             string    `gorm:"column:name;not null"`
	Classification   string    `gorm:"column:classification"`
	Unit             string    `gorm:"column:unit;default:pcs"`
	WearPeriodMonths int       `gorm:"column:wear_period_months;default:12"`
	WearType         string    `gorm:"column:wear_type"`
	Cost             *float64  `gorm:"column:cost"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (SIZ) TableName() string {
	return "siz"
}

// SIZNorm ties a catalog item to a position with an issue quantity.
type SIZNorm struct {
	ID         int64     `gorm:"primaryKey"`
	PositionID int64     `gorm:"column:position_id;not null"`
	SIZID      int64     `gorm:"column:siz_id;not null"`
	Quantity   int       `gorm:"column:quantity;default:1"`
	Condition  string    `gorm:"column:condition"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (SIZNorm) TableName() string {
	return "siz_norms"
}

// SIZIssued records a concrete issuance to an employee.
type SIZIssued struct {
	ID              int64      `gorm:"primaryKey"`
	EmployeeID      int64      `gorm:"column:employee_id;not null"`
	SIZID           int64      `gorm:"column:siz_id;not null"`
	Quantity        int        `gorm:"column:quantity;default:1"`
	IssueDate       time.Time  `gorm:"column:issue_date;type:date;not null"`
	WearOutDate     *time.Time `gorm:"column:wear_out_date;type:date"`
	ReturnDate      *time.Time `gorm:"column:return_date;type:date"`
	ReturnCondition string     `gorm:"column:return_condition"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (SIZIssued) TableName() string {
	return "siz_issued"
}
