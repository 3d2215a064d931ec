package settings

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/pflegewerk/lohnmonitor/internal"
)

const (
	// KeyAlarmThreshold is the days-before-promotion alarm window.
	KeyAlarmThreshold = "alarm_days_threshold"
	// KeyReferenceWeeklyHours is the full-time weekly hours used to
	// prorate allowances.
	KeyReferenceWeeklyHours = "basis_wochenstunden"

	KeyCompanyName    = "company_name"
	KeyCompanyAddress = "company_address"
)

// DefaultAlarmThresholdDays and DefaultReferenceWeeklyHours apply when
// the setting row is absent or unparseable.
const (
	DefaultAlarmThresholdDays   = 40
	DefaultReferenceWeeklyHours = 40.0
)

// Setting is one key-value row of the settings store.
type Setting struct {
	ID        int64     `json:"-" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"column:key;uniqueIndex;not null"`
	Value     string    `json:"value" gorm:"column:value;not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Repository defines the data access methods for settings.
type Repository interface {
	Get(key string) (*Setting, error)
	All() ([]*Setting, error)
	Upsert(key, value string) error
}

// EngineConfig is the resolved configuration the tariff and payroll
// engines need per evaluation. The orchestrator resolves it once per
// run and threads it down; calculators never read settings themselves.
type EngineConfig struct {
	AlarmThresholdDays   int
	ReferenceWeeklyHours float64
}

// Service handles settings business logic.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// All returns every setting as a key-value map.
func (s *Service) All() (map[string]string, error) {
	rows, err := s.repo.All()
	if err != nil {
		s.logger.Error("failed to load settings", "error", err)
		return nil, err
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

// Update upserts the given key-value pairs.
func (s *Service) Update(values map[string]string) error {
	for key, value := range values {
		if err := s.validate(key, value); err != nil {
			return err
		}
	}

	for key, value := range values {
		if err := s.repo.Upsert(key, value); err != nil {
			s.logger.Error("failed to upsert setting", "error", err, "key", key)
			return err
		}
	}

	s.logger.Info("settings updated", "count", len(values))
	return nil
}

// AlarmThresholdDays resolves the alarm window. An absent or
// unparseable row falls back to the default; a parseable but
// non-positive value is a configuration error.
func (s *Service) AlarmThresholdDays() (int, error) {
	row, err := s.repo.Get(KeyAlarmThreshold)
	if err != nil {
		s.logger.Warn("settings store unavailable, using default alarm threshold",
			"error", err,
			"default", DefaultAlarmThresholdDays)
		return DefaultAlarmThresholdDays, nil
	}
	if row == nil {
		return DefaultAlarmThresholdDays, nil
	}

	days, err := strconv.Atoi(row.Value)
	if err != nil {
		s.logger.Warn("unparseable alarm threshold, using default",
			"value", row.Value,
			"default", DefaultAlarmThresholdDays)
		return DefaultAlarmThresholdDays, nil
	}
	if days <= 0 {
		return 0, internal.NewConfigurationError(
			fmt.Sprintf("alarm threshold must be positive, got %d", days),
			internal.ErrCodeInvalidThreshold)
	}
	return days, nil
}

// ReferenceWeeklyHours resolves the full-time weekly hours. Same
// fallback policy as AlarmThresholdDays; a non-positive stored value
// is rejected because it feeds allowance proration.
func (s *Service) ReferenceWeeklyHours() (float64, error) {
	row, err := s.repo.Get(KeyReferenceWeeklyHours)
	if err != nil {
		s.logger.Warn("settings store unavailable, using default reference hours",
			"error", err,
			"default", DefaultReferenceWeeklyHours)
		return DefaultReferenceWeeklyHours, nil
	}
	if row == nil {
		return DefaultReferenceWeeklyHours, nil
	}

	hours, err := strconv.ParseFloat(row.Value, 64)
	if err != nil {
		s.logger.Warn("unparseable reference weekly hours, using default",
			"value", row.Value,
			"default", DefaultReferenceWeeklyHours)
		return DefaultReferenceWeeklyHours, nil
	}
	if hours <= 0 {
		return 0, internal.NewConfigurationError(
			fmt.Sprintf("reference weekly hours must be positive, got %v", hours),
			internal.ErrCodeInvalidReference)
	}
	return hours, nil
}

// ResolveEngineConfig resolves both engine settings in one call.
func (s *Service) ResolveEngineConfig() (EngineConfig, error) {
	threshold, err := s.AlarmThresholdDays()
	if err != nil {
		return EngineConfig{}, err
	}

	reference, err := s.ReferenceWeeklyHours()
	if err != nil {
		return EngineConfig{}, err
	}

	return EngineConfig{
		AlarmThresholdDays:   threshold,
		ReferenceWeeklyHours: reference,
	}, nil
}

func (s *Service) validate(key, value string) error {
	switch key {
	case KeyAlarmThreshold:
		days, err := strconv.Atoi(value)
		if err != nil || days <= 0 {
			return internal.NewValidationFieldError(key,
				"alarm threshold must be a positive integer",
				internal.ErrCodeInvalidThreshold)
		}
	case KeyReferenceWeeklyHours:
		hours, err := strconv.ParseFloat(value, 64)
		if err != nil || hours <= 0 {
			return internal.NewValidationFieldError(key,
				"reference weekly hours must be a positive number",
				internal.ErrCodeInvalidReference)
		}
	}
	return nil
}
