package equipment

import (
	"time"

	"github.com/dmitrivolkov/safety-management/internal/accessctl"
	equipmentDatamodel "github.com/dmitrivolkov/safety-management/internal/core/datamodel/equipment"
)

// Descriptor declares the attribution columns of the equipment table for
// scope filtering.
func Descriptor() accessctl.Descriptor {
	return accessctl.DefaultDescriptor(accessctl.Capabilities{
		HasOrganization: true,
		HasSubdivision:  true,
		HasDepartment:   true,
	})
}

type Equipment struct {
	ID                      int64      `json:"id"`
	Name                    string     `json:"name"`
	InventoryNumber         string     `json:"inventory_number,omitempty"`
	OrganizationID          int64      `json:"organization_id"`
	SubdivisionID           *int64     `json:"subdivision_id,omitempty"`
	DepartmentID            *int64     `json:"department_id,omitempty"`
	LastMaintenanceDate     *time.Time `json:"last_maintenance_date,omitempty"`
	NextMaintenanceDate     *time.Time `json:"next_maintenance_date,omitempty"`
	MaintenancePeriodMonths int        `json:"maintenance_period_months"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

func (e *Equipment) AccessAttribution() accessctl.Attribution {
	return accessctl.Attribution{
		OrganizationID: &e.OrganizationID,
		SubdivisionID:  e.SubdivisionID,
		DepartmentID:   e.DepartmentID,
	}
}

func FromDataModel(e *equipmentDatamodel.Equipment) *Equipment {
	return &Equipment{
		ID:                      e.ID,
		Name:                    e.Name,
		InventoryNumber:         e.InventoryNumber,
		OrganizationID:          e.OrganizationID,
		SubdivisionID:           e.SubdivisionID,
		DepartmentID:            e.DepartmentID,
		LastMaintenanceDate:     e.LastMaintenanceDate,
		NextMaintenanceDate:     e.NextMaintenanceDate,
		MaintenancePeriodMonths: e.MaintenancePeriodMonths,
		CreatedAt:               e.CreatedAt,
		UpdatedAt:               e.UpdatedAt,
	}
}

func ToDataModel(e *Equipment) *equipmentDatamodel.Equipment {
	return &equipmentDatamodel.Equipment{
		ID:                      e.ID,
		Name:                    e.Name,
		InventoryNumber:         e.InventoryNumber,
		OrganizationID:          e.OrganizationID,
		SubdivisionID:           e.SubdivisionID,
		DepartmentID:            e.DepartmentID,
		LastMaintenanceDate:     e.LastMaintenanceDate,
		NextMaintenanceDate:     e.NextMaintenanceDate,
		MaintenancePeriodMonths: e.MaintenancePeriodMonths,
		CreatedAt:               e.CreatedAt,
		UpdatedAt:               e.UpdatedAt,
	}
}
