package masterdata

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/shared"
)

// NIPLength is the length of a civil servant registration number.
const NIPLength = 18

// Employee is a staff member who requests and receives goods.
type Employee struct {
	shared.BaseAggregateRoot
	NIP    string `gorm:"column:nip;type:varchar(18);not null;uniqueIndex"`
	Name   string `gorm:"type:varchar(150);not null;index"`
	Phone  string `gorm:"type:varchar(50)"`
	Active bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Employee) TableName() string {
	return "employees"
}

// NewEmployee creates an active employee.
func NewEmployee(nip, name, phone string) (*Employee, error) {
	e := &Employee{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Active: true}
	if err := e.apply(nip, name, phone); err != nil {
		return nil, err
	}
	return e, nil
}

// Update replaces the employee's details.
func (e *Employee) Update(nip, name, phone string) error {
	if err := e.apply(nip, name, phone); err != nil {
		return err
	}
	e.IncrementVersion()
	return nil
}

// SetActive toggles whether the employee can appear on new documents.
func (e *Employee) SetActive(active bool) {
	e.Active = active
	e.IncrementVersion()
}

func (e *Employee) apply(nip, name, phone string) error {
	nip = strings.ReplaceAll(strings.TrimSpace(nip), " ", "")
	if len(nip) != NIPLength {
		return shared.NewDomainError("INVALID_NIP", "NIP must be 18 digits")
	}
	for _, r := range nip {
		if r < '0' || r > '9' {
			return shared.NewDomainError("INVALID_NIP", "NIP must be 18 digits")
		}
	}
	name = strings.TrimSpace(name)
	if err := validateName("EMPLOYEE", name, 150); err != nil {
		return err
	}
	e.NIP = nip
	e.Name = name
	e.Phone = strings.TrimSpace(phone)
	return nil
}

// Assignment records an employee holding a position for a period.
// An open assignment has no EndDate.
type Assignment struct {
	shared.BaseEntity
	EmployeeID uuid.UUID  `gorm:"type:uuid;not null;index"`
	PositionID uuid.UUID  `gorm:"type:uuid;not null;index"`
	StartDate  time.Time  `gorm:"type:date;not null"`
	EndDate    *time.Time `gorm:"type:date"`
	Position   *Position  `gorm:"foreignKey:PositionID"`
}

// TableName returns the table name for GORM
func (Assignment) TableName() string {
	return "employee_positions"
}

// IsOpen reports whether the assignment is current.
func (a *Assignment) IsOpen() bool {
	return a.EndDate == nil
}

// Assign opens a new assignment for the employee. An open assignment in
// current is closed the day the new one starts.
func Assign(employeeID, positionID uuid.UUID, start time.Time, current *Assignment) (*Assignment, error) {
	if employeeID == uuid.Nil || positionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ASSIGNMENT", "Employee and position are required")
	}
	start = truncateDay(start)
	if current != nil && current.IsOpen() {
		if current.PositionID == positionID {
			return nil, shared.NewDomainError("ALREADY_ASSIGNED", "Employee already holds this position")
		}
		if start.Before(current.StartDate) {
			return nil, shared.NewDomainError("INVALID_ASSIGNMENT", "New assignment cannot start before the current one")
		}
		if err := current.End(start); err != nil {
			return nil, err
		}
	}
	return &Assignment{
		BaseEntity: shared.NewBaseEntity(),
		EmployeeID: employeeID,
		PositionID: positionID,
		StartDate:  start,
	}, nil
}

// End closes the assignment on the given day.
func (a *Assignment) End(on time.Time) error {
	if !a.IsOpen() {
		return shared.NewDomainError("ASSIGNMENT_CLOSED", "Assignment has already ended")
	}
	on = truncateDay(on)
	if on.Before(a.StartDate) {
		return shared.NewDomainError("INVALID_ASSIGNMENT", "End date cannot be before start date")
	}
	a.EndDate = &on
	a.Touch()
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
