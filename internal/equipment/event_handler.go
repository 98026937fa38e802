package equipment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrivolkov/safety-management/internal/core/events"
)

// EventHandler turns maintenance events into operator notifications. The
// current sink is the structured log; a mail or messenger sink plugs in the
// same way.
type EventHandler struct {
	logger *slog.Logger
}

func NewEventHandler(logger *slog.Logger) *EventHandler {
	return &EventHandler{logger: logger}
}

func (h *EventHandler) HandleMaintenanceCompleted(ctx context.Context, event events.Event) error {
	completed, ok := event.(*events.MaintenanceCompletedEvent)
	if !ok {
		return fmt.Errorf("expected MaintenanceCompletedEvent, got %T", event)
	}

	h.logger.Info("maintenance completed notification",
		"equipment_id", completed.EquipmentID,
		"organization_id", completed.OrganizationID,
		"next_maintenance_date", completed.NextMaintenanceDate,
		"event_id", completed.EventID())
	return nil
}

func (h *EventHandler) HandleMaintenanceDue(ctx context.Context, event events.Event) error {
	due, ok := event.(*events.MaintenanceDueEvent)
	if !ok {
		return fmt.Errorf("expected MaintenanceDueEvent, got %T", event)
	}

	h.logger.Warn("maintenance due notification",
		"equipment_id", due.EquipmentID,
		"organization_id", due.OrganizationID,
		"due_date", due.DueDate,
		"event_id", due.EventID())
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeMaintenanceCompleted, h.HandleMaintenanceCompleted)
	eventBus.Subscribe(events.EventTypeMaintenanceDue, h.HandleMaintenanceDue)

	h.logger.Info("equipment event handlers registered",
		"handlers", []string{events.EventTypeMaintenanceCompleted, events.EventTypeMaintenanceDue})
}
