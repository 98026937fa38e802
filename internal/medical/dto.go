package medical

import (
	"errors"
	"strings"
	"time"
)

type ExaminationTypeDTO struct {
	Name              string `json:"name"`
	PeriodicityMonths int    `json:"periodicity_months"`
}

func (dto ExaminationTypeDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("name is required")
	}
	if dto.PeriodicityMonths < 0 {
		return errors.New("periodicity_months must not be negative")
	}
	return nil
}

type ExaminationDTO struct {
	EmployeeID        int64      `json:"employee_id"`
	ExaminationTypeID int64      `json:"examination_type_id"`
	ExamDate          *time.Time `json:"exam_date"`
	Result            string     `json:"result"`
	Notes             string     `json:"notes"`
}

func (dto ExaminationDTO) Validate() error {
	if dto.EmployeeID <= 0 {
		return errors.New("employee_id is required")
	}
	if dto.ExaminationTypeID <= 0 {
		return errors.New("examination_type_id is required")
	}
	switch dto.Result {
	case "", ResultFit, ResultFitWithLimits, ResultUnfit, ResultNeedsFollowUp:
	default:
		return errors.New("result is invalid")
	}
	return nil
}
