package employee

import (
	"time"

	"github.com/pflegewerk/lohnmonitor/internal/payroll"
	"github.com/pflegewerk/lohnmonitor/internal/tariff"
)

// Employee is the personnel master record. The tariff engine only
// reads from it; step changes are an administrative action through
// Update, never an automatic write.
type Employee struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	PersonnelNumber string    `json:"personnel_number" gorm:"column:personnel_number;uniqueIndex;not null"`
	Name            string    `json:"name" gorm:"not null"`
	Email           string    `json:"email"`
	Department      string    `json:"department"`
	PayGroup        string    `json:"pay_group" gorm:"column:pay_group"`
	HireDate        time.Time `json:"hire_date" gorm:"column:hire_date;type:date;not null"`
	CurrentStep     int       `json:"current_step" gorm:"column:current_step;not null;default:1"`
	WeeklyHours     float64   `json:"weekly_hours" gorm:"column:weekly_hours;not null"`
	HourlyRate      float64   `json:"hourly_rate" gorm:"column:hourly_rate;not null"`
	Allowances      string    `json:"-" gorm:"column:allowances"` // JSON blob, exposed via AllowanceSet
	Active          bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt       time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

// TableName returns the table name for GORM
func (Employee) TableName() string {
	return "employees"
}

// Step returns the stored seniority step as a tariff step.
func (e *Employee) Step() tariff.Step {
	return tariff.Step(e.CurrentStep)
}

// AllowanceSet decodes the stored allowances blob. A malformed blob
// degrades to zero allowances; the data error comes back for logging.
func (e *Employee) AllowanceSet() (payroll.AllowanceSet, error) {
	return payroll.ParseAllowances(e.Allowances)
}

// ListFilter narrows employee listings.
type ListFilter struct {
	Active     *bool
	Department string
}

// Repository interface defines the data access methods for employees
type Repository interface {
	Create(emp *Employee) error
	GetByID(id int64) (*Employee, error)
	GetByPersonnelNumber(personnelNumber string) (*Employee, error)
	List(filter ListFilter) ([]*Employee, error)
	// ListActivePromotable returns active employees below the terminal
	// step, the population a promotion scan evaluates.
	ListActivePromotable() ([]*Employee, error)
	Update(emp *Employee) error
	// Delete removes the record; notifications cascade at the schema level.
	Delete(id int64) error
}

// PromotionStatus is the derived tariff view of one employee.
// Recomputed on every query, never stored.
type PromotionStatus struct {
	CurrentStep       int               `json:"current_step"`
	NextStep          *int              `json:"next_step,omitempty"`
	NextPromotionDate *time.Time        `json:"next_promotion_date,omitempty"`
	DaysRemaining     *int              `json:"days_remaining,omitempty"`
	Alarm             bool              `json:"alarm"`
	AlarmLevel        tariff.AlarmLevel `json:"alarm_level"`
	Terminal          bool              `json:"terminal"`
}

// Evaluate derives the promotion status of an employee against the
// configured alarm threshold at the given evaluation time.
func Evaluate(emp *Employee, thresholdDays int, now time.Time) PromotionStatus {
	step := emp.Step()
	next := tariff.NextPromotionDate(emp.HireDate, step)
	days := tariff.DaysRemaining(next, now)
	alarm := tariff.Classify(days, thresholdDays)

	status := PromotionStatus{
		CurrentStep:       emp.CurrentStep,
		NextPromotionDate: next,
		DaysRemaining:     days,
		Alarm:             alarm.Alarm,
		AlarmLevel:        alarm.Level,
		Terminal:          step.Terminal(),
	}
	if !step.Terminal() {
		nextStep := emp.CurrentStep + 1
		status.NextStep = &nextStep
	}
	return status
}
