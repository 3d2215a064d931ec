package postgres

import (
	"github.com/pflegewerk/lohnmonitor/internal/audit"
	"gorm.io/gorm"
)

// AuditRepository implements audit.Repository using GORM
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &AuditRepository{db: db}
}

// Append saves one audit entry
func (r *AuditRepository) Append(entry *audit.AuditLog) error {
	return r.db.Create(entry).Error
}

// List retrieves audit entries, newest first
func (r *AuditRepository) List(limit, offset int) ([]*audit.AuditLog, error) {
	var entries []*audit.AuditLog
	q := r.db.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	err := q.Find(&entries).Error
	return entries, err
}
