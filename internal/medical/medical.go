package medical

import (
	"time"

	medicalDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/medical"
)

const (
	ResultFit           = "fit"
	ResultFitWithLimits = "fit_with_limits"
	ResultUnfit         = "unfit"
	ResultNeedsFollowUp = "needs_follow_up"
)

type ExaminationType struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	PeriodicityMonths int       `json:"periodicity_months"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
}

type Examination struct {
	ID                int64      `json:"id"`
	EmployeeID        int64      `json:"employee_id"`
	ExaminationTypeID int64      `json:"examination_type_id"`
	ExamDate          time.Time  `json:"exam_date"`
	NextExamDate      *time.Time `json:"next_exam_date,omitempty"`
	Result            string     `json:"result,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NextExamDate computes the follow-up date from the type's periodicity. Zero
// periodicity means a one-off examination with no follow-up.
func NextExamDate(examDate time.Time, periodicityMonths int) *time.Time {
	if periodicityMonths <= 0 {
		return nil
	}
	d := examDate.AddDate(0, periodicityMonths, 0)
	return &d
}

func TypeFromDataModel(t *medicalDatamodel.ExaminationType) *ExaminationType {
	return &ExaminationType{
		ID:                t.ID,
		Name:              t.Name,
		PeriodicityMonths: t.PeriodicityMonths,
		IsActive:          t.IsActive,
		CreatedAt:         t.CreatedAt,
	}
}

func FromDataModel(e *medicalDatamodel.MedicalExamination) *Examination {
	return &Examination{
		ID:                e.ID,
		EmployeeID:        e.EmployeeID,
		ExaminationTypeID: e.ExaminationTypeID,
		ExamDate:          e.ExamDate,
		NextExamDate:      e.NextExamDate,
		Result:            e.Result,
		Notes:             e.Notes,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}
