package postgres

import (
	"errors"
	"time"

	"github.com/pflegewerk/lohnmonitor/internal"
	"github.com/pflegewerk/lohnmonitor/internal/employee"
	"github.com/pflegewerk/lohnmonitor/internal/tariff"
	"gorm.io/gorm"
)

// EmployeeRepository implements the employee.Repository interface using GORM
type EmployeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *gorm.DB) employee.Repository {
	return &EmployeeRepository{db: db}
}

// Create saves a new employee to the database
func (r *EmployeeRepository) Create(emp *employee.Employee) error {
	return r.db.Create(emp).Error
}

// GetByID retrieves an employee by its ID
func (r *EmployeeRepository) GetByID(id int64) (*employee.Employee, error) {
	var emp employee.Employee
	err := r.db.Where("id = ?", id).First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &emp, nil
}

// GetByPersonnelNumber retrieves an employee by the unique personnel number
func (r *EmployeeRepository) GetByPersonnelNumber(personnelNumber string) (*employee.Employee, error) {
	var emp employee.Employee
	err := r.db.Where("personnel_number = ?", personnelNumber).First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &emp, nil
}

// List retrieves employees matching the filter, newest hires first
func (r *EmployeeRepository) List(filter employee.ListFilter) ([]*employee.Employee, error) {
	var employees []*employee.Employee
	q := r.db.Order("hire_date DESC")
	if filter.Active != nil {
		q = q.Where("active = ?", *filter.Active)
	}
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}
	err := q.Find(&employees).Error
	return employees, err
}

// ListActivePromotable retrieves the scan population: active employees
// that have not reached the terminal step.
func (r *EmployeeRepository) ListActivePromotable() ([]*employee.Employee, error) {
	var employees []*employee.Employee
	err := r.db.Where("active = ? AND current_step < ?", true, int(tariff.MaxStep)).
		Order("hire_date ASC").
		Find(&employees).Error
	return employees, err
}

// Update updates an existing employee
func (r *EmployeeRepository) Update(emp *employee.Employee) error {
	emp.UpdatedAt = time.Now()
	return r.db.Save(emp).Error
}

// Delete removes an employee; notifications cascade at the schema level
func (r *EmployeeRepository) Delete(id int64) error {
	result := r.db.Delete(&employee.Employee{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrEmployeeNotFound
	}
	return nil
}
