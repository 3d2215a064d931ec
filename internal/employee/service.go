package employee

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pflegewerk/lohnmonitor/internal"
	"github.com/pflegewerk/lohnmonitor/internal/payroll"
	"github.com/pflegewerk/lohnmonitor/internal/settings"
	"github.com/pflegewerk/lohnmonitor/internal/tariff"
)

// SettingsResolver provides the engine configuration for evaluations.
type SettingsResolver interface {
	ResolveEngineConfig() (settings.EngineConfig, error)
}

// AuditRecorder appends an audit entry. Fire-and-forget: failures are
// logged by the implementation and never fail the operation.
type AuditRecorder interface {
	Record(actor, action, entity string, entityID int64, details any)
}

// Service handles employee business logic
type Service struct {
	repo     Repository
	settings SettingsResolver
	audit    AuditRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new employee service
func NewService(repo Repository, settingsResolver SettingsResolver, audit AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		settings: settingsResolver,
		audit:    audit,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateEmployee creates a new employee record
func (s *Service) CreateEmployee(actor string, dto CreateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("employee validation failed", "error", err, "personnel_number", dto.PersonnelNumber)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if existing, err := s.repo.GetByPersonnelNumber(dto.PersonnelNumber); err == nil && existing != nil {
		s.logger.Warn("duplicate personnel number", "personnel_number", dto.PersonnelNumber)
		return nil, internal.ErrDuplicatePersonnelNo
	}

	active := true
	if dto.Active != nil {
		active = *dto.Active
	}

	emp := &Employee{
		PersonnelNumber: dto.PersonnelNumber,
		Name:            dto.Name,
		Email:           dto.Email,
		Department:      dto.Department,
		PayGroup:        dto.PayGroup,
		HireDate:        dto.HireDate,
		CurrentStep:     dto.CurrentStep,
		WeeklyHours:     dto.WeeklyHours,
		HourlyRate:      dto.HourlyRate,
		Allowances:      encodeAllowances(dto.Allowances),
		Active:          active,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := s.repo.Create(emp); err != nil {
		s.logger.Error("failed to create employee", "error", err, "personnel_number", dto.PersonnelNumber)
		return nil, err
	}

	s.audit.Record(actor, "employee.create", "employee", emp.ID, map[string]any{
		"personnel_number": emp.PersonnelNumber,
	})

	s.logger.Info("employee created",
		"employee_id", emp.ID,
		"personnel_number", emp.PersonnelNumber,
		"step", emp.CurrentStep)

	return emp, nil
}

// GetEmployee retrieves one employee by ID
func (s *Service) GetEmployee(id int64) (*Employee, error) {
	emp, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get employee", "error", err, "employee_id", id)
		return nil, internal.ErrEmployeeNotFound
	}
	return emp, nil
}

// ListEmployees retrieves employees matching the filter
func (s *Service) ListEmployees(filter ListFilter) ([]*Employee, error) {
	employees, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, err
	}
	return employees, nil
}

// UpdateEmployee applies a partial update. Changing the step or hire
// date is how an administrator applies a promotion; the engine itself
// never writes these fields.
func (s *Service) UpdateEmployee(actor string, id int64, dto UpdateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("employee update validation failed", "error", err, "employee_id", id)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	emp, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrEmployeeNotFound
	}

	if dto.PersonnelNumber != nil && *dto.PersonnelNumber != emp.PersonnelNumber {
		if existing, err := s.repo.GetByPersonnelNumber(*dto.PersonnelNumber); err == nil && existing != nil {
			return nil, internal.ErrDuplicatePersonnelNo
		}
		emp.PersonnelNumber = *dto.PersonnelNumber
	}
	if dto.Name != nil {
		emp.Name = *dto.Name
	}
	if dto.Email != nil {
		emp.Email = *dto.Email
	}
	if dto.Department != nil {
		emp.Department = *dto.Department
	}
	if dto.PayGroup != nil {
		emp.PayGroup = *dto.PayGroup
	}
	if dto.HireDate != nil {
		emp.HireDate = *dto.HireDate
	}
	if dto.CurrentStep != nil {
		emp.CurrentStep = *dto.CurrentStep
	}
	if dto.WeeklyHours != nil {
		emp.WeeklyHours = *dto.WeeklyHours
	}
	if dto.HourlyRate != nil {
		emp.HourlyRate = *dto.HourlyRate
	}
	if dto.Allowances != nil {
		emp.Allowances = encodeAllowances(dto.Allowances)
	}
	if dto.Active != nil {
		emp.Active = *dto.Active
	}
	emp.UpdatedAt = time.Now()

	if err := s.repo.Update(emp); err != nil {
		s.logger.Error("failed to update employee", "error", err, "employee_id", id)
		return nil, err
	}

	s.audit.Record(actor, "employee.update", "employee", emp.ID, map[string]any{
		"personnel_number": emp.PersonnelNumber,
	})

	s.logger.Info("employee updated", "employee_id", emp.ID, "step", emp.CurrentStep)
	return emp, nil
}

// DeactivateEmployee marks the record inactive so it drops out of
// scans and dashboards but keeps its history.
func (s *Service) DeactivateEmployee(actor string, id int64) error {
	emp, err := s.repo.GetByID(id)
	if err != nil {
		return internal.ErrEmployeeNotFound
	}

	emp.Active = false
	emp.UpdatedAt = time.Now()
	if err := s.repo.Update(emp); err != nil {
		s.logger.Error("failed to deactivate employee", "error", err, "employee_id", id)
		return err
	}

	s.audit.Record(actor, "employee.deactivate", "employee", id, nil)
	s.logger.Info("employee deactivated", "employee_id", id)
	return nil
}

// DeleteEmployee removes the record permanently; notifications cascade.
func (s *Service) DeleteEmployee(actor string, id int64) error {
	emp, err := s.repo.GetByID(id)
	if err != nil {
		return internal.ErrEmployeeNotFound
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete employee", "error", err, "employee_id", id)
		return err
	}

	s.audit.Record(actor, "employee.delete", "employee", id, map[string]any{
		"personnel_number": emp.PersonnelNumber,
	})
	s.logger.Info("employee deleted", "employee_id", id, "personnel_number", emp.PersonnelNumber)
	return nil
}

// PromotionStatusFor evaluates the promotion status of one employee
// against the currently configured alarm threshold.
func (s *Service) PromotionStatusFor(emp *Employee) (PromotionStatus, error) {
	cfg, err := s.settings.ResolveEngineConfig()
	if err != nil {
		return PromotionStatus{}, err
	}
	return Evaluate(emp, cfg.AlarmThresholdDays, s.now()), nil
}

// SalaryFor computes the gross breakdown for one employee. A
// malformed allowances blob degrades to zero allowances and is logged,
// matching the tolerance of the rest of the system.
func (s *Service) SalaryFor(emp *Employee) (payroll.Breakdown, error) {
	cfg, err := s.settings.ResolveEngineConfig()
	if err != nil {
		return payroll.Breakdown{}, err
	}

	allowances, parseErr := emp.AllowanceSet()
	if parseErr != nil {
		s.logger.Warn("malformed allowances blob, using zero allowances",
			"employee_id", emp.ID,
			"error", parseErr)
	}

	return payroll.ComputeGross(emp.WeeklyHours, emp.HourlyRate, allowances, cfg.ReferenceWeeklyHours)
}

// AssessmentFor reconstructs the step an employee should hold from the
// hire date alone. Audit view; it never corrects the stored step.
func (s *Service) AssessmentFor(emp *Employee) tariff.Assessment {
	return tariff.StepFromHireDate(emp.HireDate, s.now())
}

func encodeAllowances(set *payroll.AllowanceSet) string {
	if set == nil {
		return "{}"
	}
	raw, err := json.Marshal(set)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
