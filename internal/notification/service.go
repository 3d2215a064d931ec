package notification

import (
	"log/slog"
	"time"

	"github.com/pflegewerk/lohnmonitor/internal"
)

// AuditRecorder appends an audit entry, fire-and-forget.
type AuditRecorder interface {
	Record(actor, action, entity string, entityID int64, details any)
}

// Service handles notification reads and acknowledgement.
type Service struct {
	repo   Repository
	audit  AuditRecorder
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, audit AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

// ListNotifications retrieves notifications matching the filter.
func (s *Service) ListNotifications(filter ListFilter) ([]*Notification, error) {
	notifications, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list notifications", "error", err)
		return nil, err
	}
	return notifications, nil
}

// GetNotification retrieves one notification by ID.
func (s *Service) GetNotification(id int64) (*Notification, error) {
	n, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrNotificationNotFound
	}
	return n, nil
}

// Acknowledge marks a notification as handled by the given actor.
// One-way and idempotent: acknowledging an already-acknowledged
// notification succeeds without touching the original actor or time.
func (s *Service) Acknowledge(actor string, id int64) (*Notification, error) {
	n, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrNotificationNotFound
	}

	if n.Acknowledged {
		return n, nil
	}

	ackedAt := s.now()
	n.Acknowledged = true
	n.AcknowledgedAt = &ackedAt
	n.AcknowledgedBy = actor

	if err := s.repo.Update(n); err != nil {
		s.logger.Error("failed to acknowledge notification", "error", err, "notification_id", id)
		return nil, err
	}

	s.audit.Record(actor, "notification.acknowledge", "notification", id, map[string]any{
		"employee_id": n.EmployeeID,
	})

	s.logger.Info("notification acknowledged",
		"notification_id", id,
		"employee_id", n.EmployeeID,
		"actor", actor)

	return n, nil
}

// AcknowledgeForEmployee marks every open notification of an employee
// as handled in one go and returns how many were closed. Already
// acknowledged ones are untouched.
func (s *Service) AcknowledgeForEmployee(actor string, employeeID int64) (int, error) {
	open := false
	pending, err := s.repo.List(ListFilter{EmployeeID: &employeeID, Acknowledged: &open})
	if err != nil {
		s.logger.Error("failed to list open notifications", "error", err, "employee_id", employeeID)
		return 0, err
	}

	ackedAt := s.now()
	acked := 0
	for _, n := range pending {
		n.Acknowledged = true
		n.AcknowledgedAt = &ackedAt
		n.AcknowledgedBy = actor
		if err := s.repo.Update(n); err != nil {
			s.logger.Error("failed to acknowledge notification", "error", err, "notification_id", n.ID)
			return acked, err
		}
		acked++
	}

	if acked > 0 {
		s.audit.Record(actor, "notification.acknowledge_employee", "employee", employeeID, map[string]any{
			"count": acked,
		})
	}

	return acked, nil
}
