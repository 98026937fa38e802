package employee

import (
	"errors"
	"strings"
	"time"
)

type EmployeeDTO struct {
	FullName       string     `json:"full_name"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	Email          string     `json:"email"`
	OrganizationID int64      `json:"organization_id"`
	SubdivisionID  *int64     `json:"subdivision_id"`
	DepartmentID   *int64     `json:"department_id"`
	PositionID     int64      `json:"position_id"`
	ContractType   string     `json:"contract_type"`
	Height         string     `json:"height"`
	ClothingSize   string     `json:"clothing_size"`
	ShoeSize       string     `json:"shoe_size"`
}

func (dto EmployeeDTO) Validate() error {
	if strings.TrimSpace(dto.FullName) == "" {
		return errors.New("full_name is required")
	}
	if dto.OrganizationID <= 0 {
		return errors.New("organization_id is required")
	}
	if dto.PositionID <= 0 {
		return errors.New("position_id is required")
	}
	if dto.ContractType != "" && dto.ContractType != ContractStandard && dto.ContractType != ContractContractor {
		return errors.New("contract_type is invalid")
	}
	if dto.Email != "" && !strings.Contains(dto.Email, "@") {
		return errors.New("email is invalid")
	}
	return nil
}

type StatusDTO struct {
	Status string `json:"status"`
}

func (dto StatusDTO) Validate() error {
	switch dto.Status {
	case StatusCandidate, StatusWorking, StatusMaternityLeave, StatusPartTime, StatusFired:
		return nil
	default:
		return errors.New("status is invalid")
	}
}

type PositionDTO struct {
	Name            string `json:"name"`
	ElectricalGroup string `json:"electrical_group"`
}

func (dto PositionDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

// ListFilter narrows employee listings beyond the access scope.
type ListFilter struct {
	Status     string
	PositionID int64
	Limit      int
	Offset     int
}
