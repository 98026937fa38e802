package directory

import (
	"errors"
	"strings"
)

type OrganizationDTO struct {
	FullName   string `json:"full_name"`
	ShortName  string `json:"short_name"`
	Requisites string `json:"requisites"`
	Location   string `json:"location"`
}

func (dto OrganizationDTO) Validate() error {
	if strings.TrimSpace(dto.FullName) == "" {
		return errors.New("full_name is required")
	}
	if strings.TrimSpace(dto.ShortName) == "" {
		return errors.New("short_name is required")
	}
	return nil
}

type SubdivisionDTO struct {
	Name           string `json:"name"`
	ShortName      string `json:"short_name"`
	OrganizationID int64  `json:"organization_id"`
}

func (dto SubdivisionDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("name is required")
	}
	if dto.OrganizationID <= 0 {
		return errors.New("organization_id is required")
	}
	return nil
}

type DepartmentDTO struct {
	Name           string `json:"name"`
	ShortName      string `json:"short_name"`
	OrganizationID int64  `json:"organization_id"`
	SubdivisionID  *int64 `json:"subdivision_id"`
}

func (dto DepartmentDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("name is required")
	}
	if dto.OrganizationID <= 0 {
		return errors.New("organization_id is required")
	}
	if dto.SubdivisionID != nil && *dto.SubdivisionID <= 0 {
		return errors.New("subdivision_id is invalid")
	}
	return nil
}

type GrantDTO struct {
	UserID          int64   `json:"user_id"`
	OrganizationIDs []int64 `json:"organization_ids"`
	SubdivisionIDs  []int64 `json:"subdivision_ids"`
	DepartmentIDs   []int64 `json:"department_ids"`
}

func (dto GrantDTO) Validate() error {
	if dto.UserID <= 0 {
		return errors.New("user_id is required")
	}
	if len(dto.OrganizationIDs) == 0 && len(dto.SubdivisionIDs) == 0 && len(dto.DepartmentIDs) == 0 {
		return errors.New("at least one grant is required")
	}
	return nil
}
