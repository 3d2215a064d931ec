package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pflegewerk/lohnmonitor/internal"
	"github.com/pflegewerk/lohnmonitor/internal/core/events"
	"github.com/pflegewerk/lohnmonitor/internal/employee"
	"github.com/pflegewerk/lohnmonitor/internal/mailer"
	"github.com/pflegewerk/lohnmonitor/internal/notification"
	"github.com/pflegewerk/lohnmonitor/internal/settings"
	"github.com/pflegewerk/lohnmonitor/internal/tariff"
)

// EmployeeSource is the slice of the employee repository a scan needs.
type EmployeeSource interface {
	ListActivePromotable() ([]*employee.Employee, error)
}

// SettingsResolver provides the engine configuration, resolved once
// per run so a mid-scan settings change cannot split the population.
type SettingsResolver interface {
	ResolveEngineConfig() (settings.EngineConfig, error)
}

// Publisher is the event bus surface the orchestrator uses.
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Report summarizes one scan run.
type Report struct {
	RunID            string    `json:"run_id"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
	Evaluated        int       `json:"evaluated"`
	Notified         int       `json:"notified"`
	Suppressed       int       `json:"suppressed"`
	DispatchFailures int       `json:"dispatch_failures"`
}

// Orchestrator runs the daily promotion scan. Runs are serialized: a
// second Run while one is underway is rejected, never queued.
type Orchestrator struct {
	employees     EmployeeSource
	settings      SettingsResolver
	notifications notification.Repository
	deduper       *notification.Deduper
	dispatcher    mailer.Dispatcher
	bus           Publisher
	logger        *slog.Logger
	now           func() time.Time

	mu sync.Mutex
}

func NewOrchestrator(
	employees EmployeeSource,
	settingsResolver SettingsResolver,
	notifications notification.Repository,
	deduper *notification.Deduper,
	dispatcher mailer.Dispatcher,
	bus Publisher,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		employees:     employees,
		settings:      settingsResolver,
		notifications: notifications,
		deduper:       deduper,
		dispatcher:    dispatcher,
		bus:           bus,
		logger:        logger,
		now:           time.Now,
	}
}

// Run executes one scan over the active, promotable population.
// A failure on one employee is logged and skipped; it never aborts
// the rest of the run.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	if !o.mu.TryLock() {
		return nil, internal.ErrScanInProgress
	}
	defer o.mu.Unlock()

	runID := uuid.New().String()
	now := o.now()
	report := &Report{RunID: runID, StartedAt: now}

	cfg, err := o.settings.ResolveEngineConfig()
	if err != nil {
		o.logger.Error("scan aborted: cannot resolve engine config", "run_id", runID, "error", err)
		return nil, err
	}

	population, err := o.employees.ListActivePromotable()
	if err != nil {
		o.logger.Error("scan aborted: cannot list employees", "run_id", runID, "error", err)
		return nil, err
	}

	o.logger.Info("promotion scan started",
		"run_id", runID,
		"population", len(population),
		"alarm_threshold_days", cfg.AlarmThresholdDays)

	for _, emp := range population {
		o.evaluateOne(ctx, emp, cfg.AlarmThresholdDays, now, report)
	}

	report.FinishedAt = o.now()

	if o.bus != nil {
		if err := o.bus.Publish(ctx, events.NewScanCompletedEvent(
			runID, report.Evaluated, report.Notified, report.Suppressed, report.DispatchFailures)); err != nil {
			o.logger.Error("failed to publish scan completed event", "run_id", runID, "error", err)
		}
	}

	o.logger.Info("promotion scan finished",
		"run_id", runID,
		"evaluated", report.Evaluated,
		"notified", report.Notified,
		"suppressed", report.Suppressed,
		"dispatch_failures", report.DispatchFailures)

	return report, nil
}

func (o *Orchestrator) evaluateOne(ctx context.Context, emp *employee.Employee, thresholdDays int, now time.Time, report *Report) {
	report.Evaluated++

	next := tariff.NextPromotionDate(emp.HireDate, emp.Step())
	if !tariff.IsPromotionUpcoming(next, now, thresholdDays) {
		return
	}

	shouldNotify, err := o.deduper.ShouldNotify(emp.ID, notification.KindPromotion, now)
	if err != nil {
		o.logger.Error("dedup check failed, skipping employee",
			"employee_id", emp.ID, "error", err)
		return
	}
	if !shouldNotify {
		report.Suppressed++
		return
	}

	days := tariff.DaysUntil(*next, now)
	nextStep := emp.CurrentStep + 1

	record := &notification.Notification{
		EmployeeID: emp.ID,
		Kind:       notification.KindPromotion,
		Message: fmt.Sprintf("Stufenaufstieg %d -> %d am %s (PN %s)",
			emp.CurrentStep, nextStep, next.Format("02.01.2006"), emp.PersonnelNumber),
		CreatedAt: now,
	}
	if err := o.notifications.Create(record); err != nil {
		o.logger.Error("failed to persist notification, skipping employee",
			"employee_id", emp.ID, "error", err)
		return
	}
	report.Notified++

	if o.bus != nil {
		if err := o.bus.Publish(ctx, events.NewPromotionDueEvent(
			emp.ID, emp.PersonnelNumber, emp.CurrentStep, *next, days)); err != nil {
			o.logger.Error("failed to publish promotion due event",
				"employee_id", emp.ID, "error", err)
		}
	}

	alert := mailer.PromotionAlert{
		PersonnelNumber: emp.PersonnelNumber,
		Name:            emp.Name,
		Department:      emp.Department,
		CurrentStep:     emp.CurrentStep,
		NextStep:        nextStep,
		PromotionDate:   *next,
		DaysRemaining:   days,
	}
	if err := o.dispatcher.DispatchPromotionAlert(alert); err != nil {
		report.DispatchFailures++
		o.logger.Error("alert dispatch failed, notification kept unsent",
			"employee_id", emp.ID, "notification_id", record.ID, "error", err)
		return
	}

	sentAt := o.now()
	record.Sent = true
	record.SentAt = &sentAt
	if err := o.notifications.Update(record); err != nil {
		o.logger.Error("failed to mark notification sent",
			"notification_id", record.ID, "error", err)
	}
}
