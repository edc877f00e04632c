package masterdata

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/masterdata"
	"github.com/sibarkumen/backend/internal/domain/shared"
)

// EmployeeService handles employees and their position history
type EmployeeService struct {
	employees masterdata.EmployeeRepository
	positions masterdata.PositionRepository
}

// NewEmployeeService creates a new EmployeeService
func NewEmployeeService(employees masterdata.EmployeeRepository, positions masterdata.PositionRepository) *EmployeeService {
	return &EmployeeService{employees: employees, positions: positions}
}

// List returns a page of employees without their positions
func (s *EmployeeService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[EmployeeResponse], error) {
	employees, total, err := s.employees.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return page(employees, total, filter, func(e *masterdata.Employee) EmployeeResponse {
		return ToEmployeeResponse(e, nil)
	}), nil
}

// Get returns an employee with the current position
func (s *EmployeeService) Get(ctx context.Context, id uuid.UUID) (*EmployeeResponse, error) {
	e, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, e)
}

// Create creates an employee
func (s *EmployeeService) Create(ctx context.Context, req EmployeeRequest) (*EmployeeResponse, error) {
	e, err := masterdata.NewEmployee(req.NIP, req.Name, req.Phone)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNIPFree(ctx, e); err != nil {
		return nil, err
	}
	if err := s.employees.Save(ctx, e); err != nil {
		return nil, err
	}
	resp := ToEmployeeResponse(e, nil)
	return &resp, nil
}

// Update updates an employee's details
func (s *EmployeeService) Update(ctx context.Context, id uuid.UUID, req EmployeeRequest) (*EmployeeResponse, error) {
	e, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.Update(req.NIP, req.Name, req.Phone); err != nil {
		return nil, err
	}
	if err := s.ensureNIPFree(ctx, e); err != nil {
		return nil, err
	}
	if err := s.employees.Save(ctx, e); err != nil {
		return nil, err
	}
	return s.respond(ctx, e)
}

// SetActive enables or disables an employee
func (s *EmployeeService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*EmployeeResponse, error) {
	e, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e.SetActive(active)
	if err := s.employees.Save(ctx, e); err != nil {
		return nil, err
	}
	return s.respond(ctx, e)
}

// Delete removes an employee that appears on no document
func (s *EmployeeService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.employees.Delete(ctx, id)
}

// Assign gives the employee a new position, ending the current one the
// day the new one starts.
func (s *EmployeeService) Assign(ctx context.Context, id uuid.UUID, req AssignRequest) (*EmployeeResponse, error) {
	e, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	position, err := s.positions.FindByID(ctx, req.PositionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_POSITION", "Position not found")
		}
		return nil, err
	}
	current, err := s.employees.CurrentAssignment(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	next, err := masterdata.Assign(e.ID, position.ID, req.StartDate, current)
	if err != nil {
		return nil, err
	}
	if err := s.employees.SaveAssignments(ctx, current, next); err != nil {
		return nil, err
	}
	return s.respond(ctx, e)
}

// EndAssignment closes the current assignment without a successor
func (s *EmployeeService) EndAssignment(ctx context.Context, id uuid.UUID, req EndAssignmentRequest) (*EmployeeResponse, error) {
	e, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	current, err := s.employees.CurrentAssignment(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, shared.NewDomainError("NO_ASSIGNMENT", "Employee has no current position")
	}
	if err := current.End(req.EndDate); err != nil {
		return nil, err
	}
	if err := s.employees.SaveAssignments(ctx, current); err != nil {
		return nil, err
	}
	return s.respond(ctx, e)
}

// History returns every position the employee has held, newest first
func (s *EmployeeService) History(ctx context.Context, id uuid.UUID) ([]AssignmentResponse, error) {
	if _, err := s.employees.FindByID(ctx, id); err != nil {
		return nil, err
	}
	assignments, err := s.employees.Assignments(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapSlice(assignments, ToAssignmentResponse), nil
}

func (s *EmployeeService) respond(ctx context.Context, e *masterdata.Employee) (*EmployeeResponse, error) {
	current, err := s.employees.CurrentAssignment(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	resp := ToEmployeeResponse(e, current)
	return &resp, nil
}

func (s *EmployeeService) ensureNIPFree(ctx context.Context, e *masterdata.Employee) error {
	taken, err := s.employees.ExistsByNIP(ctx, e.NIP, e.ID)
	if err != nil {
		return err
	}
	if taken {
		return shared.NewDomainError("ALREADY_EXISTS", "An employee with this NIP already exists")
	}
	return nil
}
