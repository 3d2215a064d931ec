package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePromotionDue  = "promotion.due"
	EventTypeScanCompleted = "scan.completed"
)

// NewPromotionDueEvent is published for every employee whose step
// promotion falls inside the alarm window during a scan.
func NewPromotionDueEvent(employeeID int64, personnelNumber string, currentStep int, promotionDate time.Time, daysRemaining int) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      EventTypePromotionDue,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"employee_id":      employeeID,
			"personnel_number": personnelNumber,
			"current_step":     currentStep,
			"promotion_date":   promotionDate,
			"days_remaining":   daysRemaining,
		},
	}
}

// NewScanCompletedEvent summarizes one finished promotion scan.
func NewScanCompletedEvent(runID string, evaluated, notified, suppressed, dispatchFailures int) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      EventTypeScanCompleted,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"run_id":            runID,
			"evaluated":         evaluated,
			"notified":          notified,
			"suppressed":        suppressed,
			"dispatch_failures": dispatchFailures,
		},
	}
}
