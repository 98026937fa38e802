package equipment

import (
	"errors"
	"strings"
	"time"
)

type EquipmentDTO struct {
	Name                    string `json:"name"`
	InventoryNumber         string `json:"inventory_number"`
	OrganizationID          int64  `json:"organization_id"`
	SubdivisionID           *int64 `json:"subdivision_id"`
	DepartmentID            *int64 `json:"department_id"`
	MaintenancePeriodMonths int    `json:"maintenance_period_months"`
}

func (dto EquipmentDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("name is required")
	}
	if dto.OrganizationID <= 0 {
		return errors.New("organization_id is required")
	}
	if dto.MaintenancePeriodMonths < 0 {
		return errors.New("maintenance_period_months must not be negative")
	}
	return nil
}

type MaintenanceDTO struct {
	MaintenanceDate *time.Time `json:"maintenance_date"`
}
