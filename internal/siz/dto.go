package siz

import (
	"errors"
	"strings"
	"time"
)

type SIZDTO struct {
	Name             string   `json:"name"`
	Classification   string   `json:"classification"`
	Unit             string   `json:"unit"`
	WearPeriodMonths int      `json:"wear_period_months"`
	WearType         string   `json:"wear_type"`
	Cost             *float64 `json:"cost"`
}

func (dto SIZDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("name is required")
	}
	if dto.WearPeriodMonths < 0 {
		return errors.New("wear_period_months must not be negative")
	}
	switch dto.WearType {
	case "", WearTypeStandard, WearTypeUntilWornOut, WearTypeOnDuty:
	default:
		return errors.New("wear_type is invalid")
	}
	if dto.WearPeriodMonths == 0 && (dto.WearType == "" || dto.WearType == WearTypeStandard) {
		return errors.New("wear_type is required when wear_period_months is zero")
	}
	if dto.Cost != nil && *dto.Cost < 0 {
		return errors.New("cost must not be negative")
	}
	return nil
}

type NormDTO struct {
	PositionID int64  `json:"position_id"`
	SIZID      int64  `json:"siz_id"`
	Quantity   int    `json:"quantity"`
	Condition  string `json:"condition"`
}

func (dto NormDTO) Validate() error {
	if dto.PositionID <= 0 {
		return errors.New("position_id is required")
	}
	if dto.SIZID <= 0 {
		return errors.New("siz_id is required")
	}
	if dto.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	return nil
}

type IssueDTO struct {
	EmployeeID int64      `json:"employee_id"`
	SIZID      int64      `json:"siz_id"`
	Quantity   int        `json:"quantity"`
	IssueDate  *time.Time `json:"issue_date"`
}

func (dto IssueDTO) Validate() error {
	if dto.EmployeeID <= 0 {
		return errors.New("employee_id is required")
	}
	if dto.SIZID <= 0 {
		return errors.New("siz_id is required")
	}
	if dto.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	return nil
}

type ReturnDTO struct {
	ReturnDate      *time.Time `json:"return_date"`
	ReturnCondition string     `json:"return_condition"`
}

func (dto ReturnDTO) Validate() error {
	if strings.TrimSpace(dto.ReturnCondition) == "" {
		return errors.New("return_condition is required")
	}
	return nil
}
