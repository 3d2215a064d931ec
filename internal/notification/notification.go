package notification

import (
	"time"
)

// KindPromotion is the only notification kind the scanner emits today.
// The column exists so acknowledgement and dedup logic carry over to
// future kinds without a schema change.
const KindPromotion = "promotion"

// Notification is one alert raised for an employee. Acknowledgement is
// one-way: once set it never clears.
type Notification struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	EmployeeID     int64      `json:"employee_id" gorm:"column:employee_id;not null;index"`
	Kind           string     `json:"kind" gorm:"not null;default:promotion"`
	Message        string     `json:"message" gorm:"not null"`
	Acknowledged   bool       `json:"acknowledged" gorm:"not null;default:false"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty" gorm:"column:acknowledged_at"`
	AcknowledgedBy string     `json:"acknowledged_by,omitempty" gorm:"column:acknowledged_by"`
	Sent           bool       `json:"sent" gorm:"not null;default:false"`
	SentAt         *time.Time `json:"sent_at,omitempty" gorm:"column:sent_at"`
	CreatedAt      time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
}

// TableName returns the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// ListFilter narrows notification listings.
type ListFilter struct {
	EmployeeID   *int64
	Acknowledged *bool
	Limit        int
	Offset       int
}

// Repository interface defines the data access methods for notifications
type Repository interface {
	Create(n *Notification) error
	GetByID(id int64) (*Notification, error)
	List(filter ListFilter) ([]*Notification, error)
	// LatestUnacknowledged returns the newest open notification of the
	// given kind for an employee, nil when there is none.
	LatestUnacknowledged(employeeID int64, kind string) (*Notification, error)
	// LatestAcknowledged returns the most recently created
	// acknowledged notification of the given kind for an employee,
	// nil when there is none.
	LatestAcknowledged(employeeID int64, kind string) (*Notification, error)
	Update(n *Notification) error
}
