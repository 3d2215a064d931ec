package audit

import (
	"encoding/json"
	"log/slog"
	"time"
)

// AuditLog is one append-only entry describing who did what. Entries
// are never updated or deleted through the application.
type AuditLog struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Actor     string    `json:"actor" gorm:"not null"`
	Action    string    `json:"action" gorm:"not null;index"`
	Entity    string    `json:"entity" gorm:"not null"`
	EntityID  int64     `json:"entity_id" gorm:"column:entity_id"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

// TableName returns the table name for GORM
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Repository interface defines the data access methods for audit logs
type Repository interface {
	Append(entry *AuditLog) error
	List(limit, offset int) ([]*AuditLog, error)
}

// Service writes audit entries. Recording is fire-and-forget: a
// failed append is logged and swallowed so it never fails the
// operation being audited.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record appends one audit entry.
func (s *Service) Record(actor, action, entity string, entityID int64, details any) {
	entry := &AuditLog{
		Actor:     actor,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		CreatedAt: time.Now(),
	}
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			entry.Details = string(raw)
		}
	}

	if err := s.repo.Append(entry); err != nil {
		s.logger.Error("failed to append audit entry",
			"error", err,
			"action", action,
			"entity", entity,
			"entity_id", entityID)
	}
}

// List retrieves audit entries, newest first.
func (s *Service) List(limit, offset int) ([]*AuditLog, error) {
	return s.repo.List(limit, offset)
}
