package employee

import (
	"time"

	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	employeeDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/employee"
)

const (
	StatusCandidate      = "candidate"
	StatusWorking        = "working"
	StatusMaternityLeave = "maternity_leave"
	StatusPartTime       = "part_time"
	StatusFired          = "fired"
)

const (
	ContractStandard   = "standard"
	ContractContractor = "contractor"
)

// allowedTransitions maps a status to the statuses it may move to.
// A fired employee can only be rehired, never returned to candidate.
var allowedTransitions = map[string][]string{
	StatusCandidate:      {StatusWorking, StatusFired},
	StatusWorking:        {StatusMaternityLeave, StatusPartTime, StatusFired},
	StatusMaternityLeave: {StatusWorking, StatusFired},
	StatusPartTime:       {StatusWorking, StatusFired},
	StatusFired:          {StatusWorking},
}

func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Descriptor declares the attribution columns of the employees table for
// scope filtering.
func Descriptor() accessctl.Descriptor {
	return accessctl.DefaultDescriptor(accessctl.Capabilities{
		HasOrganization: true,
		HasSubdivision:  true,
		HasDepartment:   true,
	})
}

type Employee struct {
	ID             int64      `json:"id"`
	FullName       string     `json:"full_name"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Email          string     `json:"email,omitempty"`
	OrganizationID int64      `json:"organization_id"`
	SubdivisionID  *int64     `json:"subdivision_id,omitempty"`
	DepartmentID   *int64     `json:"department_id,omitempty"`
	PositionID     int64      `json:"position_id"`
	Status         string     `json:"status"`
	ContractType   string     `json:"contract_type"`
	Height         string     `json:"height,omitempty"`
	ClothingSize   string     `json:"clothing_size,omitempty"`
	ShoeSize       string     `json:"shoe_size,omitempty"`
	HireDate       *time.Time `json:"hire_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (e *Employee) AccessAttribution() accessctl.Attribution {
	return accessctl.Attribution{
		OrganizationID: &e.OrganizationID,
		SubdivisionID:  e.SubdivisionID,
		DepartmentID:   e.DepartmentID,
	}
}

type Position struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	ElectricalGroup string    `json:"electrical_group,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func FromDataModel(e *employeeDatamodel.Employee) *Employee {
	return &Employee{
		ID:             e.ID,
		FullName:       e.FullName,
		DateOfBirth:    e.DateOfBirth,
		Email:          e.Email,
		OrganizationID: e.OrganizationID,
		SubdivisionID:  e.SubdivisionID,
		DepartmentID:   e.DepartmentID,
		PositionID:     e.PositionID,
		Status:         e.Status,
		ContractType:   e.ContractType,
		Height:         e.Height,
		ClothingSize:   e.ClothingSize,
		ShoeSize:       e.ShoeSize,
		HireDate:       e.HireDate,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func ToDataModel(e *Employee) *employeeDatamodel.Employee {
	return &employeeDatamodel.Employee{
		ID:             e.ID,
		FullName:       e.FullName,
		DateOfBirth:    e.DateOfBirth,
		Email:          e.Email,
		OrganizationID: e.OrganizationID,
		SubdivisionID:  e.SubdivisionID,
		DepartmentID:   e.DepartmentID,
		PositionID:     e.PositionID,
		Status:         e.Status,
		ContractType:   e.ContractType,
		Height:         e.Height,
		ClothingSize:   e.ClothingSize,
		ShoeSize:       e.ShoeSize,
		HireDate:       e.HireDate,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func PositionFromDataModel(p *employeeDatamodel.Position) *Position {
	return &Position{
		ID:              p.ID,
		Name:            p.Name,
		ElectricalGroup: p.ElectricalGroup,
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
