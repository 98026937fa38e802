package siz

import (
	"time"

	sizDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/siz"
)

const (
	WearTypeStandard     = "standard"
	WearTypeUntilWornOut = "until_worn_out"
	WearTypeOnDuty       = "on_duty"
)

type SIZ struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Classification   string    `json:"classification,omitempty"`
	Unit             string    `json:"unit"`
	WearPeriodMonths int       `json:"wear_period_months"`
	WearType         string    `json:"wear_type,omitempty"`
	Cost             *float64  `json:"cost,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Norm struct {
	ID         int64     `json:"id"`
	PositionID int64     `json:"position_id"`
	SIZID      int64     `json:"siz_id"`
	Quantity   int       `json:"quantity"`
	Condition  string    `json:"condition,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Issued struct {
	ID              int64      `json:"id"`
	EmployeeID      int64      `json:"employee_id"`
	SIZID           int64      `json:"siz_id"`
	Quantity        int        `json:"quantity"`
	IssueDate       time.Time  `json:"issue_date"`
	WearOutDate     *time.Time `json:"wear_out_date,omitempty"`
	ReturnDate      *time.Time `json:"return_date,omitempty"`
	ReturnCondition string     `json:"return_condition,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (i *Issued) Returned() bool {
	return i.ReturnDate != nil
}

// WearOutDate computes when an issued item expires. Items with a zero wear
// period never expire by date.
func WearOutDate(issueDate time.Time, wearPeriodMonths int) *time.Time {
	if wearPeriodMonths <= 0 {
		return nil
	}
	d := issueDate.AddDate(0, wearPeriodMonths, 0)
	return &d
}

func FromDataModel(s *sizDatamodel.SIZ) *SIZ {
	return &SIZ{
		ID:               s.ID,
		Name:             s.Name,
		Classification:   s.Classification,
		Unit:             s.Unit,
		WearPeriodMonths: s.WearPeriodMonths,
		WearType:         s.WearType,
		Cost:             s.Cost,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func NormFromDataModel(n *sizDatamodel.SIZNorm) *Norm {
	return &Norm{
		ID:         n.ID,
		PositionID: n.PositionID,
		SIZID:      n.SIZID,
		Quantity:   n.Quantity,
		Condition:  n.Condition,
		CreatedAt:  n.CreatedAt,
	}
}

func IssuedFromDataModel(i *sizDatamodel.SIZIssued) *Issued {
	return &Issued{
		ID:              i.ID,
		EmployeeID:      i.EmployeeID,
		SIZID:           i.SIZID,
		Quantity:        i.Quantity,
		IssueDate:       i.IssueDate,
		WearOutDate:     i.WearOutDate,
		ReturnDate:      i.ReturnDate,
		ReturnCondition: i.ReturnCondition,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}
