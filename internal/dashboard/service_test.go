package dashboard

import (
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/pflegewerk/lohnmonitor/internal/employee"
	"github.com/pflegewerk/lohnmonitor/internal/notification"
	"github.com/pflegewerk/lohnmonitor/internal/settings"
	"github.com/pflegewerk/lohnmonitor/internal/tariff"
)

func TestDashboard(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Dashboard Module Suite")
}

type stubEmployeeSource struct {
	employees []*employee.Employee
	err       error
}

func (s *stubEmployeeSource) List(filter employee.ListFilter) ([]*employee.Employee, error) {
	return s.employees, s.err
}

type stubSettingsResolver struct {
	cfg settings.EngineConfig
	err error
}

func (s *stubSettingsResolver) ResolveEngineConfig() (settings.EngineConfig, error) {
	return s.cfg, s.err
}

type stubAckChecker struct {
	acked map[int64]bool
	err   error
}

func (s *stubAckChecker) RecentlyAcknowledged(employeeID int64, kind string, now time.Time) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.acked[employeeID], nil
}

type stubNotificationCounter struct {
	open []*notification.Notification
	err  error
}

func (s *stubNotificationCounter) List(filter notification.ListFilter) ([]*notification.Notification, error) {
	return s.open, s.err
}

var _ = ginkgo.Describe("Dashboard Service", func() {
	var (
		source   *stubEmployeeSource
		resolver *stubSettingsResolver
		acks     *stubAckChecker
		counter  *stubNotificationCounter
		service  *Service
		now      time.Time
	)

	newEmployee := func(id int64, pn string, hireDate time.Time, step int) *employee.Employee {
		return &employee.Employee{
			ID:              id,
			PersonnelNumber: pn,
			Name:            "Person " + pn,
			HireDate:        hireDate,
			CurrentStep:     step,
			WeeklyHours:     40,
			HourlyRate:      18.5,
			Active:          true,
		}
	}

	ginkgo.BeforeEach(func() {
		now = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
		source = &stubEmployeeSource{}
		resolver = &stubSettingsResolver{
			cfg: settings.EngineConfig{AlarmThresholdDays: 40, ReferenceWeeklyHours: 40},
		}
		acks = &stubAckChecker{acked: map[int64]bool{}}
		counter = &stubNotificationCounter{}
		service = NewService(source, resolver, acks, counter, slog.Default())
		service.now = func() time.Time { return now }
	})

	ginkgo.Describe("Summary", func() {
		ginkgo.It("buckets the population by alarm level", func() {
			source.employees = []*employee.Employee{
				// promotion 30 days out: red
				newEmployee(1, "PN-1", now.AddDate(-1, 0, 30), 1),
				// promotion 60 days out: yellow
				newEmployee(2, "PN-2", now.AddDate(-1, 0, 60), 1),
				// promotion almost a year away: green
				newEmployee(3, "PN-3", now.AddDate(0, -1, 0), 1),
				// terminal step: green, counted separately
				newEmployee(4, "PN-4", now.AddDate(-31, 0, 0), 6),
			}
			counter.open = []*notification.Notification{{ID: 1}, {ID: 2}}

			summary, err := service.Summary()
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(summary.ActiveEmployees).To(gomega.Equal(4))
			gomega.Expect(summary.Red).To(gomega.Equal(1))
			gomega.Expect(summary.Yellow).To(gomega.Equal(1))
			gomega.Expect(summary.Green).To(gomega.Equal(2))
			gomega.Expect(summary.TerminalEmployees).To(gomega.Equal(1))
			gomega.Expect(summary.OpenNotifications).To(gomega.Equal(2))
		})
	})

	ginkgo.Describe("Alarms", func() {
		ginkgo.It("lists red and yellow rows sorted most urgent first", func() {
			source.employees = []*employee.Employee{
				newEmployee(1, "PN-1", now.AddDate(-1, 0, 60), 1), // yellow, 60 days
				newEmployee(2, "PN-2", now.AddDate(-1, 0, 30), 1), // red, 30 days
				newEmployee(3, "PN-3", now.AddDate(0, -1, 0), 1),  // green
			}

			rows, err := service.Alarms()
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(rows).To(gomega.HaveLen(2))
			gomega.Expect(rows[0].EmployeeID).To(gomega.Equal(int64(2)))
			gomega.Expect(rows[0].AlarmLevel).To(gomega.Equal(tariff.LevelRed))
			gomega.Expect(rows[1].AlarmLevel).To(gomega.Equal(tariff.LevelYellow))
		})

		ginkgo.It("marks overdue promotions", func() {
			source.employees = []*employee.Employee{
				// promotion date 30 days in the past
				newEmployee(1, "PN-1", now.AddDate(-1, 0, -30), 1),
			}

			rows, err := service.Alarms()
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(rows).To(gomega.HaveLen(1))
			gomega.Expect(rows[0].Overdue).To(gomega.BeTrue())
			gomega.Expect(rows[0].AlarmLevel).To(gomega.Equal(tariff.LevelRed))
		})

		ginkgo.It("drops rows acknowledged inside the dashboard window", func() {
			source.employees = []*employee.Employee{
				newEmployee(1, "PN-1", now.AddDate(-1, 0, 30), 1),
				newEmployee(2, "PN-2", now.AddDate(-1, 0, 30), 1),
			}
			acks.acked[1] = true

			rows, err := service.Alarms()
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(rows).To(gomega.HaveLen(1))
			gomega.Expect(rows[0].EmployeeID).To(gomega.Equal(int64(2)))
		})

		ginkgo.It("enriches rows with the salary breakdown", func() {
			source.employees = []*employee.Employee{
				newEmployee(1, "PN-1", now.AddDate(-1, 0, 30), 1),
			}

			rows, err := service.Alarms()
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(rows[0].Salary).NotTo(gomega.BeNil())
			gomega.Expect(rows[0].Salary.MonthlyHours.String()).To(gomega.Equal("173.92"))
		})

		ginkgo.It("masks names for viewer reads", func() {
			rows := MaskRows([]AlarmRow{{PersonnelNumber: "PN-9", Name: "Maria Muster"}})
			gomega.Expect(rows[0].Name).To(gomega.Equal("PN: PN-9"))
		})
	})
})
