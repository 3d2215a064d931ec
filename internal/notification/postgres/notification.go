package postgres

import (
	"errors"

	"github.com/pflegewerk/lohnmonitor/internal"
	"github.com/pflegewerk/lohnmonitor/internal/notification"
	"gorm.io/gorm"
)

// NotificationRepository implements notification.Repository using GORM
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) notification.Repository {
	return &NotificationRepository{db: db}
}

// Create saves a new notification
func (r *NotificationRepository) Create(n *notification.Notification) error {
	return r.db.Create(n).Error
}

// GetByID retrieves a notification by its ID
func (r *NotificationRepository) GetByID(id int64) (*notification.Notification, error) {
	var n notification.Notification
	err := r.db.Where("id = ?", id).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

// List retrieves notifications matching the filter, newest first
func (r *NotificationRepository) List(filter notification.ListFilter) ([]*notification.Notification, error) {
	var notifications []*notification.Notification
	q := r.db.Order("created_at DESC")
	if filter.EmployeeID != nil {
		q = q.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.Acknowledged != nil {
		q = q.Where("acknowledged = ?", *filter.Acknowledged)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	err := q.Find(&notifications).Error
	return notifications, err
}

// LatestUnacknowledged returns the newest open notification, nil when none
func (r *NotificationRepository) LatestUnacknowledged(employeeID int64, kind string) (*notification.Notification, error) {
	var n notification.Notification
	err := r.db.Where("employee_id = ? AND kind = ? AND acknowledged = false", employeeID, kind).
		Order("created_at DESC").
		First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// LatestAcknowledged returns the most recently created acknowledged
// notification, nil when none. Ordered by created_at because the
// dashboard window runs from creation.
func (r *NotificationRepository) LatestAcknowledged(employeeID int64, kind string) (*notification.Notification, error) {
	var n notification.Notification
	err := r.db.Where("employee_id = ? AND kind = ? AND acknowledged = true", employeeID, kind).
		Order("created_at DESC").
		First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// Update updates an existing notification
func (r *NotificationRepository) Update(n *notification.Notification) error {
	return r.db.Save(n).Error
}
