package employee

import (
	"errors"
	"fmt"
	"time"

	"github.com/pflegewerk/lohnmonitor/internal/payroll"
	"github.com/pflegewerk/lohnmonitor/internal/tariff"
)

// CreateEmployeeDTO represents the request payload for creating an employee
type CreateEmployeeDTO struct {
	PersonnelNumber string                `json:"personnel_number"`
	Name            string                `json:"name"`
	Email           string                `json:"email"`
	Department      string                `json:"department"`
	PayGroup        string                `json:"pay_group"`
	HireDate        time.Time             `json:"hire_date"`
	CurrentStep     int                   `json:"current_step"`
	WeeklyHours     float64               `json:"weekly_hours"`
	HourlyRate      float64               `json:"hourly_rate"`
	Allowances      *payroll.AllowanceSet `json:"allowances,omitempty"`
	Active          *bool                 `json:"active,omitempty"`
}

// Validate validates the CreateEmployeeDTO
func (dto CreateEmployeeDTO) Validate() error {
	if dto.PersonnelNumber == "" {
		return errors.New("personnel number is required")
	}
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if dto.HireDate.IsZero() {
		return errors.New("hire date is required")
	}
	if dto.HireDate.After(time.Now()) {
		return errors.New("hire date cannot be in the future")
	}
	if !tariff.Step(dto.CurrentStep).Valid() {
		return fmt.Errorf("step must be between %d and %d", tariff.MinStep, tariff.MaxStep)
	}
	if dto.WeeklyHours < 0 {
		return errors.New("weekly hours cannot be negative")
	}
	if dto.HourlyRate < 0 {
		return errors.New("hourly rate cannot be negative")
	}
	if dto.PayGroup != "" && !validPayGroup(dto.PayGroup) {
		return fmt.Errorf("unknown pay group %q", dto.PayGroup)
	}
	return nil
}

// UpdateEmployeeDTO represents a partial update; nil fields are untouched.
type UpdateEmployeeDTO struct {
	PersonnelNumber *string               `json:"personnel_number,omitempty"`
	Name            *string               `json:"name,omitempty"`
	Email           *string               `json:"email,omitempty"`
	Department      *string               `json:"department,omitempty"`
	PayGroup        *string               `json:"pay_group,omitempty"`
	HireDate        *time.Time            `json:"hire_date,omitempty"`
	CurrentStep     *int                  `json:"current_step,omitempty"`
	WeeklyHours     *float64              `json:"weekly_hours,omitempty"`
	HourlyRate      *float64              `json:"hourly_rate,omitempty"`
	Allowances      *payroll.AllowanceSet `json:"allowances,omitempty"`
	Active          *bool                 `json:"active,omitempty"`
}

// Validate validates the UpdateEmployeeDTO
func (dto UpdateEmployeeDTO) Validate() error {
	if dto.PersonnelNumber != nil && *dto.PersonnelNumber == "" {
		return errors.New("personnel number cannot be empty")
	}
	if dto.Name != nil && *dto.Name == "" {
		return errors.New("name cannot be empty")
	}
	if dto.HireDate != nil && dto.HireDate.After(time.Now()) {
		return errors.New("hire date cannot be in the future")
	}
	if dto.CurrentStep != nil && !tariff.Step(*dto.CurrentStep).Valid() {
		return fmt.Errorf("step must be between %d and %d", tariff.MinStep, tariff.MaxStep)
	}
	if dto.WeeklyHours != nil && *dto.WeeklyHours < 0 {
		return errors.New("weekly hours cannot be negative")
	}
	if dto.HourlyRate != nil && *dto.HourlyRate < 0 {
		return errors.New("hourly rate cannot be negative")
	}
	if dto.PayGroup != nil && *dto.PayGroup != "" && !validPayGroup(*dto.PayGroup) {
		return fmt.Errorf("unknown pay group %q", *dto.PayGroup)
	}
	return nil
}

// EmployeeView is the API shape of an employee enriched with the
// derived promotion status. Name masking for viewer-role reads happens
// here so the privacy rule stays in one place.
type EmployeeView struct {
	*Employee
	AllowanceSet payroll.AllowanceSet `json:"allowances"`
	Promotion    PromotionStatus      `json:"promotion"`
}

// NewView builds the API shape, masking the display name when the
// caller only holds viewer rights.
func NewView(emp *Employee, status PromotionStatus, maskName bool) EmployeeView {
	view := EmployeeView{Employee: emp, Promotion: status}
	view.AllowanceSet, _ = emp.AllowanceSet()
	if maskName {
		masked := *emp
		masked.Name = "PN: " + emp.PersonnelNumber
		masked.Email = ""
		view.Employee = &masked
	}
	return view
}

func validPayGroup(group string) bool {
	for _, g := range tariff.PayGroups {
		if g == group {
			return true
		}
	}
	return false
}
