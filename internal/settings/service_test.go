package settings_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pflegewerk/lohnmonitor/internal"
	"github.com/pflegewerk/lohnmonitor/internal/settings"
)

func TestSettingsService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Settings Service Suite")
}

// Mock repository for testing
type mockSettingsRepository struct {
	values   map[string]string
	getError error
}

func newMockSettingsRepository() *mockSettingsRepository {
	return &mockSettingsRepository{values: make(map[string]string)}
}

func (m *mockSettingsRepository) Get(key string) (*settings.Setting, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	value, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	return &settings.Setting{Key: key, Value: value}, nil
}

func (m *mockSettingsRepository) All() ([]*settings.Setting, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	rows := make([]*settings.Setting, 0, len(m.values))
	for key, value := range m.values {
		rows = append(rows, &settings.Setting{Key: key, Value: value})
	}
	return rows, nil
}

func (m *mockSettingsRepository) Upsert(key, value string) error {
	m.values[key] = value
	return nil
}

// recordingLogHandler captures log levels so specs can assert a
// warning was emitted.
type recordingLogHandler struct {
	levels []slog.Level
}

func (h *recordingLogHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingLogHandler) Handle(_ context.Context, r slog.Record) error {
	h.levels = append(h.levels, r.Level)
	return nil
}
func (h *recordingLogHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingLogHandler) WithGroup(string) slog.Handler      { return h }

var _ = Describe("SettingsService", func() {
	var (
		service  *settings.Service
		mockRepo *mockSettingsRepository
		logger   *slog.Logger
	)

	BeforeEach(func() {
		mockRepo = newMockSettingsRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = settings.NewService(mockRepo, logger)
	})

	Describe("AlarmThresholdDays", func() {
		It("should return the stored value", func() {
			mockRepo.values[settings.KeyAlarmThreshold] = "25"

			days, err := service.AlarmThresholdDays()

			Expect(err).ToNot(HaveOccurred())
			Expect(days).To(Equal(25))
		})

		It("should fall back to the default when the row is absent", func() {
			days, err := service.AlarmThresholdDays()

			Expect(err).ToNot(HaveOccurred())
			Expect(days).To(Equal(settings.DefaultAlarmThresholdDays))
		})

		It("should fall back to the default when the value is unparseable", func() {
			mockRepo.values[settings.KeyAlarmThreshold] = "soon"

			days, err := service.AlarmThresholdDays()

			Expect(err).ToNot(HaveOccurred())
			Expect(days).To(Equal(settings.DefaultAlarmThresholdDays))
		})

		It("should reject a non-positive stored value", func() {
			mockRepo.values[settings.KeyAlarmThreshold] = "-3"

			_, err := service.AlarmThresholdDays()

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConfiguration))
		})

		It("should fall back to the default when the store errors", func() {
			mockRepo.getError = errors.New("db down")

			days, err := service.AlarmThresholdDays()

			Expect(err).ToNot(HaveOccurred())
			Expect(days).To(Equal(settings.DefaultAlarmThresholdDays))
		})

		It("should warn when the store errors so defaulting is visible", func() {
			recorder := &recordingLogHandler{}
			service = settings.NewService(mockRepo, slog.New(recorder))
			mockRepo.getError = errors.New("db down")

			days, err := service.AlarmThresholdDays()

			Expect(err).ToNot(HaveOccurred())
			Expect(days).To(Equal(settings.DefaultAlarmThresholdDays))
			Expect(recorder.levels).To(ContainElement(slog.LevelWarn))
		})
	})

	Describe("ReferenceWeeklyHours", func() {
		It("should return the stored value", func() {
			mockRepo.values[settings.KeyReferenceWeeklyHours] = "38.5"

			hours, err := service.ReferenceWeeklyHours()

			Expect(err).ToNot(HaveOccurred())
			Expect(hours).To(Equal(38.5))
		})

		It("should reject zero because it feeds allowance proration", func() {
			mockRepo.values[settings.KeyReferenceWeeklyHours] = "0"

			_, err := service.ReferenceWeeklyHours()

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidReference))
		})

		It("should fall back to the default when absent", func() {
			hours, err := service.ReferenceWeeklyHours()

			Expect(err).ToNot(HaveOccurred())
			Expect(hours).To(Equal(settings.DefaultReferenceWeeklyHours))
		})

		It("should fall back to the default when the store errors", func() {
			mockRepo.getError = errors.New("db down")

			hours, err := service.ReferenceWeeklyHours()

			Expect(err).ToNot(HaveOccurred())
			Expect(hours).To(Equal(settings.DefaultReferenceWeeklyHours))
		})
	})

	Describe("ResolveEngineConfig", func() {
		It("should resolve both settings in one call", func() {
			mockRepo.values[settings.KeyAlarmThreshold] = "30"
			mockRepo.values[settings.KeyReferenceWeeklyHours] = "39"

			cfg, err := service.ResolveEngineConfig()

			Expect(err).ToNot(HaveOccurred())
			Expect(cfg.AlarmThresholdDays).To(Equal(30))
			Expect(cfg.ReferenceWeeklyHours).To(Equal(39.0))
		})

		It("should propagate configuration errors", func() {
			mockRepo.values[settings.KeyReferenceWeeklyHours] = "-1"

			_, err := service.ResolveEngineConfig()

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Update", func() {
		It("should upsert valid values", func() {
			err := service.Update(map[string]string{
				settings.KeyAlarmThreshold: "45",
				settings.KeyCompanyName:    "Pflegewerk GmbH",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(mockRepo.values[settings.KeyAlarmThreshold]).To(Equal("45"))
			Expect(mockRepo.values[settings.KeyCompanyName]).To(Equal("Pflegewerk GmbH"))
		})

		It("should reject invalid engine settings before writing anything", func() {
			err := service.Update(map[string]string{
				settings.KeyAlarmThreshold: "not-a-number",
			})

			Expect(err).To(HaveOccurred())
			Expect(mockRepo.values).To(BeEmpty())
		})
	})
})
