package medical

import "time"

// ExaminationType is a reference entry with a periodicity in months.
type ExaminationType struct {
	ID                int64     `gorm:"primaryKey"`
	Name              string    `gorm:"column:name;not null;unique"`
	PeriodicityMonths int       `gorm:"column:periodicity_months;default:12"`
	IsActive          bool      `gorm:"column:is_active;default:true"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ExaminationType) TableName() string {
	return "examination_types"
}

type MedicalExamination struct {
	ID                int64      `gorm:"primaryKey"`
	EmployeeID        int64      `gorm:"column:employee_id;not null"`
	ExaminationTypeID int64      `gorm:"column:examination_type_id;not null"`
	ExamDate          time.Time  `gorm:"column:exam_date;type:date;not null"`
	NextExamDate      *time.Time `gorm:"column:next_exam_date;type:date"`
	Result            string     `gorm:"column:result"`
	Notes             string     `gorm:"column:notes"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (MedicalExamination) TableName() string {
	return "medical_examinations"
}
