package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeMaintenanceCompleted = "equipment.maintenance_completed"
	EventTypeMaintenanceDue       = "equipment.maintenance_due"
	EventTypeEmployeeHired        = "employee.hired"
)

type MaintenanceCompletedEvent struct {
	BaseEvent
	EquipmentID         int64     `json:"equipment_id"`
	OrganizationID      int64     `json:"organization_id"`
	NextMaintenanceDate time.Time `json:"next_maintenance_date"`
}

func NewMaintenanceCompletedEvent(equipmentID, organizationID int64, nextMaintenanceDate time.Time) *MaintenanceCompletedEvent {
	return &MaintenanceCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeMaintenanceCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"equipment_id":          equipmentID,
				"organization_id":       organizationID,
				"next_maintenance_date": nextMaintenanceDate,
			},
		},
		EquipmentID:         equipmentID,
		OrganizationID:      organizationID,
		NextMaintenanceDate: nextMaintenanceDate,
	}
}

type MaintenanceDueEvent struct {
	BaseEvent
	EquipmentID    int64     `json:"equipment_id"`
	OrganizationID int64     `json:"organization_id"`
	DueDate        time.Time `json:"due_date"`
}

func NewMaintenanceDueEvent(equipmentID, organizationID int64, dueDate time.Time) *MaintenanceDueEvent {
	return &MaintenanceDueEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeMaintenanceDue,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"equipment_id":    equipmentID,
				"organization_id": organizationID,
				"due_date":        dueDate,
			},
		},
		EquipmentID:    equipmentID,
		OrganizationID: organizationID,
		DueDate:        dueDate,
	}
}

type EmployeeHiredEvent struct {
	BaseEvent
	EmployeeID     int64 `json:"employee_id"`
	OrganizationID int64 `json:"organization_id"`
	PositionID     int64 `json:"position_id"`
}

func NewEmployeeHiredEvent(employeeID, organizationID, positionID int64) *EmployeeHiredEvent {
	return &EmployeeHiredEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeEmployeeHired,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"employee_id":     employeeID,
				"organization_id": organizationID,
				"position_id":     positionID,
			},
		},
		EmployeeID:     employeeID,
		OrganizationID: organizationID,
		PositionID:     positionID,
	}
}
