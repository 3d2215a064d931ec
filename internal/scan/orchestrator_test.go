package scan

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/pflegewerk/lohnmonitor/internal"
	"github.com/pflegewerk/lohnmonitor/internal/core/events"
	"github.com/pflegewerk/lohnmonitor/internal/employee"
	"github.com/pflegewerk/lohnmonitor/internal/mailer"
	"github.com/pflegewerk/lohnmonitor/internal/notification"
	"github.com/pflegewerk/lohnmonitor/internal/settings"
)

func TestScan(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Scan Module Suite")
}

type mockEmployeeSource struct {
	employees []*employee.Employee
	err       error
}

func (m *mockEmployeeSource) ListActivePromotable() ([]*employee.Employee, error) {
	return m.employees, m.err
}

type mockSettingsResolver struct {
	cfg settings.EngineConfig
	err error
}

func (m *mockSettingsResolver) ResolveEngineConfig() (settings.EngineConfig, error) {
	return m.cfg, m.err
}

type failingPublisher struct{}

func (failingPublisher) Publish(ctx context.Context, event events.Event) error {
	return errors.New("bus closed")
}

// levelRecorder captures log levels so specs can assert an error line
// was emitted.
type levelRecorder struct {
	levels []slog.Level
}

func (h *levelRecorder) Enabled(context.Context, slog.Level) bool { return true }
func (h *levelRecorder) Handle(_ context.Context, r slog.Record) error {
	h.levels = append(h.levels, r.Level)
	return nil
}
func (h *levelRecorder) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *levelRecorder) WithGroup(string) slog.Handler      { return h }

type memoryNotificationRepo struct {
	notifications map[int64]*notification.Notification
	nextID        int64
	createErr     error
}

func newMemoryNotificationRepo() *memoryNotificationRepo {
	return &memoryNotificationRepo{
		notifications: make(map[int64]*notification.Notification),
		nextID:        1,
	}
}

func (m *memoryNotificationRepo) Create(n *notification.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	n.ID = m.nextID
	m.nextID++
	copied := *n
	m.notifications[n.ID] = &copied
	return nil
}

func (m *memoryNotificationRepo) GetByID(id int64) (*notification.Notification, error) {
	if n, ok := m.notifications[id]; ok {
		copied := *n
		return &copied, nil
	}
	return nil, internal.ErrNotificationNotFound
}

func (m *memoryNotificationRepo) List(filter notification.ListFilter) ([]*notification.Notification, error) {
	var out []*notification.Notification
	for _, n := range m.notifications {
		copied := *n
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memoryNotificationRepo) LatestUnacknowledged(employeeID int64, kind string) (*notification.Notification, error) {
	var latest *notification.Notification
	for _, n := range m.notifications {
		if n.EmployeeID != employeeID || n.Kind != kind || n.Acknowledged {
			continue
		}
		if latest == nil || n.CreatedAt.After(latest.CreatedAt) {
			copied := *n
			latest = &copied
		}
	}
	return latest, nil
}

func (m *memoryNotificationRepo) LatestAcknowledged(employeeID int64, kind string) (*notification.Notification, error) {
	var latest *notification.Notification
	for _, n := range m.notifications {
		if n.EmployeeID != employeeID || n.Kind != kind || !n.Acknowledged {
			continue
		}
		if latest == nil || n.CreatedAt.After(latest.CreatedAt) {
			copied := *n
			latest = &copied
		}
	}
	return latest, nil
}

func (m *memoryNotificationRepo) Update(n *notification.Notification) error {
	copied := *n
	m.notifications[n.ID] = &copied
	return nil
}

type mockDispatcher struct {
	alerts  []mailer.PromotionAlert
	err     error
	started chan struct{}
	release chan struct{}
}

func (m *mockDispatcher) DispatchPromotionAlert(alert mailer.PromotionAlert) error {
	if m.started != nil {
		m.started <- struct{}{}
		<-m.release
	}
	if m.err != nil {
		return m.err
	}
	m.alerts = append(m.alerts, alert)
	return nil
}

var _ = ginkgo.Describe("Scan Orchestrator", func() {
	var (
		source       *mockEmployeeSource
		resolver     *mockSettingsResolver
		repo         *memoryNotificationRepo
		dispatcher   *mockDispatcher
		orchestrator *Orchestrator
		now          time.Time
	)

	newEmployee := func(id int64, pn string, hireDate time.Time, step int) *employee.Employee {
		return &employee.Employee{
			ID:              id,
			PersonnelNumber: pn,
			Name:            "Test Person",
			HireDate:        hireDate,
			CurrentStep:     step,
			Active:          true,
		}
	}

	ginkgo.BeforeEach(func() {
		now = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
		source = &mockEmployeeSource{}
		resolver = &mockSettingsResolver{
			cfg: settings.EngineConfig{AlarmThresholdDays: 40, ReferenceWeeklyHours: 40},
		}
		repo = newMemoryNotificationRepo()
		dispatcher = &mockDispatcher{}
		orchestrator = NewOrchestrator(
			source, resolver, repo, notification.NewDeduper(repo),
			dispatcher, nil, slog.Default())
		orchestrator.now = func() time.Time { return now }
	})

	ginkgo.It("notifies employees whose promotion falls inside the window", func() {
		// step 1 completes 12 months after hire; 30 days out
		hire := now.AddDate(-1, 0, 30)
		source.employees = []*employee.Employee{newEmployee(1, "PN-1", hire, 1)}

		report, err := orchestrator.Run(context.Background())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(report.Evaluated).To(gomega.Equal(1))
		gomega.Expect(report.Notified).To(gomega.Equal(1))
		gomega.Expect(report.Suppressed).To(gomega.Equal(0))
		gomega.Expect(dispatcher.alerts).To(gomega.HaveLen(1))
		gomega.Expect(dispatcher.alerts[0].NextStep).To(gomega.Equal(2))

		stored, err := repo.GetByID(1)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(stored.Sent).To(gomega.BeTrue())
		gomega.Expect(stored.SentAt).NotTo(gomega.BeNil())
	})

	ginkgo.It("logs a failing event bus without failing the run", func() {
		recorder := &levelRecorder{}
		hire := now.AddDate(-1, 0, 30)
		source.employees = []*employee.Employee{newEmployee(1, "PN-1", hire, 1)}
		orchestrator = NewOrchestrator(
			source, resolver, repo, notification.NewDeduper(repo),
			dispatcher, failingPublisher{}, slog.New(recorder))
		orchestrator.now = func() time.Time { return now }

		report, err := orchestrator.Run(context.Background())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(report.Notified).To(gomega.Equal(1))
		gomega.Expect(recorder.levels).To(gomega.ContainElement(slog.LevelError))
	})

	ginkgo.It("skips employees far from their promotion date", func() {
		hire := now.AddDate(0, -1, 0) // step 1, eleven months to go
		source.employees = []*employee.Employee{newEmployee(1, "PN-1", hire, 1)}

		report, err := orchestrator.Run(context.Background())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(report.Evaluated).To(gomega.Equal(1))
		gomega.Expect(report.Notified).To(gomega.Equal(0))
		gomega.Expect(dispatcher.alerts).To(gomega.BeEmpty())
	})

	ginkgo.It("is idempotent across back-to-back runs", func() {
		hire := now.AddDate(-1, 0, 30)
		source.employees = []*employee.Employee{newEmployee(1, "PN-1", hire, 1)}

		first, err := orchestrator.Run(context.Background())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(first.Notified).To(gomega.Equal(1))

		second, err := orchestrator.Run(context.Background())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(second.Notified).To(gomega.Equal(0))
		gomega.Expect(second.Suppressed).To(gomega.Equal(1))
		gomega.Expect(repo.notifications).To(gomega.HaveLen(1))
	})

	ginkgo.It("notifies again once the previous alert is acknowledged", func() {
		hire := now.AddDate(-1, 0, 30)
		source.employees = []*employee.Employee{newEmployee(1, "PN-1", hire, 1)}

		_, err := orchestrator.Run(context.Background())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		stored, err := repo.GetByID(1)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		ackedAt := now
		stored.Acknowledged = true
		stored.AcknowledgedAt = &ackedAt
		gomega.Expect(repo.Update(stored)).To(gomega.Succeed())

		report, err := orchestrator.Run(context.Background())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(report.Notified).To(gomega.Equal(1))
	})

	ginkgo.It("counts dispatch failures but keeps the notification", func() {
		hire := now.AddDate(-1, 0, 30)
		source.employees = []*employee.Employee{newEmployee(1, "PN-1", hire, 1)}
		dispatcher.err = errors.New("smtp down")

		report, err := orchestrator.Run(context.Background())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(report.Notified).To(gomega.Equal(1))
		gomega.Expect(report.DispatchFailures).To(gomega.Equal(1))

		stored, err := repo.GetByID(1)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(stored.Sent).To(gomega.BeFalse())
	})

	ginkgo.It("isolates a persistence failure to the one employee", func() {
		hire := now.AddDate(-1, 0, 30)
		source.employees = []*employee.Employee{
			newEmployee(1, "PN-1", hire, 1),
			newEmployee(2, "PN-2", hire, 1),
		}
		repo.createErr = errors.New("db down")

		report, err := orchestrator.Run(context.Background())
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(report.Evaluated).To(gomega.Equal(2))
		gomega.Expect(report.Notified).To(gomega.Equal(0))
	})

	ginkgo.It("aborts when the engine config cannot be resolved", func() {
		resolver.err = internal.NewConfigurationError("bad threshold", internal.ErrCodeInvalidThreshold)

		_, err := orchestrator.Run(context.Background())
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.It("rejects a run while another is in progress", func() {
		hire := now.AddDate(-1, 0, 30)
		source.employees = []*employee.Employee{newEmployee(1, "PN-1", hire, 1)}
		dispatcher.started = make(chan struct{})
		dispatcher.release = make(chan struct{})

		done := make(chan struct{})
		go func() {
			defer ginkgo.GinkgoRecover()
			_, err := orchestrator.Run(context.Background())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			close(done)
		}()

		<-dispatcher.started
		_, err := orchestrator.Run(context.Background())
		gomega.Expect(err).To(gomega.MatchError(internal.ErrScanInProgress))

		close(dispatcher.release)
		<-done
	})
})
