package dashboard

import (
	"time"

	"github.com/pflegewerk/lohnmonitor/internal/payroll"
	"github.com/pflegewerk/lohnmonitor/internal/tariff"
)

// Summary is the headline view: population counts by alarm level.
type Summary struct {
	ActiveEmployees   int `json:"active_employees"`
	TerminalEmployees int `json:"terminal_employees"`
	Red               int `json:"red"`
	Yellow            int `json:"yellow"`
	Green             int `json:"green"`
	OpenNotifications int `json:"open_notifications"`
}

// AlarmRow is one dashboard line for an employee needing attention.
type AlarmRow struct {
	EmployeeID        int64             `json:"employee_id"`
	PersonnelNumber   string            `json:"personnel_number"`
	Name              string            `json:"name"`
	Department        string            `json:"department,omitempty"`
	CurrentStep       int               `json:"current_step"`
	NextStep          int               `json:"next_step"`
	NextPromotionDate *time.Time        `json:"next_promotion_date"`
	DaysRemaining     *int              `json:"days_remaining"`
	AlarmLevel        tariff.AlarmLevel `json:"alarm_level"`
	Overdue           bool              `json:"overdue"`
	Salary            *payroll.Breakdown `json:"salary,omitempty"`
}
