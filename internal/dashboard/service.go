package dashboard

import (
	"log/slog"
	"sort"
	"time"

	"github.com/pflegewerk/lohnmonitor/internal/employee"
	"github.com/pflegewerk/lohnmonitor/internal/notification"
	"github.com/pflegewerk/lohnmonitor/internal/payroll"
	"github.com/pflegewerk/lohnmonitor/internal/settings"
	"github.com/pflegewerk/lohnmonitor/internal/tariff"
)

// EmployeeSource is the slice of the employee repository dashboards read.
type EmployeeSource interface {
	List(filter employee.ListFilter) ([]*employee.Employee, error)
}

// SettingsResolver provides the engine configuration.
type SettingsResolver interface {
	ResolveEngineConfig() (settings.EngineConfig, error)
}

// AcknowledgementChecker asks whether an employee's alert was recently
// dealt with, so the dashboard can drop the row.
type AcknowledgementChecker interface {
	RecentlyAcknowledged(employeeID int64, kind string, now time.Time) (bool, error)
}

// NotificationCounter counts open notifications for the summary.
type NotificationCounter interface {
	List(filter notification.ListFilter) ([]*notification.Notification, error)
}

// Service aggregates the derived tariff state of the whole active
// population. Everything here is computed on read, nothing is stored.
type Service struct {
	employees     EmployeeSource
	settings      SettingsResolver
	acks          AcknowledgementChecker
	notifications NotificationCounter
	logger        *slog.Logger
	now           func() time.Time
}

func NewService(
	employees EmployeeSource,
	settingsResolver SettingsResolver,
	acks AcknowledgementChecker,
	notifications NotificationCounter,
	logger *slog.Logger,
) *Service {
	return &Service{
		employees:     employees,
		settings:      settingsResolver,
		acks:          acks,
		notifications: notifications,
		logger:        logger,
		now:           time.Now,
	}
}

// Summary computes the population counts by alarm level.
func (s *Service) Summary() (*Summary, error) {
	cfg, err := s.settings.ResolveEngineConfig()
	if err != nil {
		return nil, err
	}

	active := true
	population, err := s.employees.List(employee.ListFilter{Active: &active})
	if err != nil {
		return nil, err
	}

	now := s.now()
	summary := &Summary{ActiveEmployees: len(population)}
	for _, emp := range population {
		status := employee.Evaluate(emp, cfg.AlarmThresholdDays, now)
		if status.Terminal {
			summary.TerminalEmployees++
		}
		switch status.AlarmLevel {
		case tariff.LevelRed:
			summary.Red++
		case tariff.LevelYellow:
			summary.Yellow++
		default:
			summary.Green++
		}
	}

	unacked := false
	open, err := s.notifications.List(notification.ListFilter{Acknowledged: &unacked})
	if err != nil {
		s.logger.Error("failed to count open notifications", "error", err)
	} else {
		summary.OpenNotifications = len(open)
	}

	return summary, nil
}

// Alarms lists employees in the red or yellow band, most urgent first.
// Employees whose alert was acknowledged inside the dashboard window
// are dropped; salary enrichment failures degrade the row, never the
// whole list.
func (s *Service) Alarms() ([]AlarmRow, error) {
	cfg, err := s.settings.ResolveEngineConfig()
	if err != nil {
		return nil, err
	}

	active := true
	population, err := s.employees.List(employee.ListFilter{Active: &active})
	if err != nil {
		return nil, err
	}

	now := s.now()
	rows := make([]AlarmRow, 0)
	for _, emp := range population {
		status := employee.Evaluate(emp, cfg.AlarmThresholdDays, now)
		if status.AlarmLevel == tariff.LevelGreen {
			continue
		}

		acked, err := s.acks.RecentlyAcknowledged(emp.ID, notification.KindPromotion, now)
		if err != nil {
			s.logger.Error("acknowledgement check failed, keeping row",
				"employee_id", emp.ID, "error", err)
		} else if acked {
			continue
		}

		row := AlarmRow{
			EmployeeID:        emp.ID,
			PersonnelNumber:   emp.PersonnelNumber,
			Name:              emp.Name,
			Department:        emp.Department,
			CurrentStep:       emp.CurrentStep,
			NextStep:          emp.CurrentStep + 1,
			NextPromotionDate: status.NextPromotionDate,
			DaysRemaining:     status.DaysRemaining,
			AlarmLevel:        status.AlarmLevel,
			Overdue:           status.DaysRemaining != nil && *status.DaysRemaining < 0,
		}

		allowances, parseErr := emp.AllowanceSet()
		if parseErr != nil {
			s.logger.Warn("malformed allowances blob on dashboard row",
				"employee_id", emp.ID, "error", parseErr)
		}
		if breakdown, err := payroll.ComputeGross(emp.WeeklyHours, emp.HourlyRate, allowances, cfg.ReferenceWeeklyHours); err == nil {
			row.Salary = &breakdown
		} else {
			s.logger.Error("salary enrichment failed", "employee_id", emp.ID, "error", err)
		}

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		di, dj := rows[i].DaysRemaining, rows[j].DaysRemaining
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		return *di < *dj
	})

	return rows, nil
}

// MaskRows applies the viewer-role privacy rule to a row list.
func MaskRows(rows []AlarmRow) []AlarmRow {
	masked := make([]AlarmRow, len(rows))
	for i, row := range rows {
		row.Name = "PN: " + row.PersonnelNumber
		masked[i] = row
	}
	return masked
}
