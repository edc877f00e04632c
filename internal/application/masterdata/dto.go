package masterdata

import (
	"time"

	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/masterdata"
)

// CategoryRequest creates or updates a category
type CategoryRequest struct {
	Code        string `json:"code" binding:"required,min=1,max=30"`
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=1000"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NamedRequest creates or updates a unit or a position
type NamedRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=1000"`
}

// NamedResponse represents a unit or a position
type NamedResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SupplierRequest creates or updates a supplier
type SupplierRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Address     string `json:"address" binding:"max=1000"`
	Phone       string `json:"phone" binding:"max=50"`
	ContactName string `json:"contact_name" binding:"max=100"`
	NPWP        string `json:"npwp" binding:"max=30"`
}

func (r SupplierRequest) details() masterdata.SupplierDetails {
	return masterdata.SupplierDetails{
		Name:        r.Name,
		Address:     r.Address,
		Phone:       r.Phone,
		ContactName: r.ContactName,
		NPWP:        r.NPWP,
	}
}

// SetActiveRequest toggles the active flag
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// BankAccountRequest adds or edits a supplier bank account
type BankAccountRequest struct {
	BankName      string `json:"bank_name" binding:"required,max=100"`
	AccountNumber string `json:"account_number" binding:"required,max=50"`
	AccountHolder string `json:"account_holder" binding:"required,max=200"`
	Primary       bool   `json:"primary"`
}

// BankAccountResponse represents a bank account
type BankAccountResponse struct {
	ID            uuid.UUID `json:"id"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	AccountHolder string    `json:"account_holder"`
	Primary       bool      `json:"primary"`
}

// SupplierResponse represents a supplier. Accounts are only filled on the
// detail endpoint.
type SupplierResponse struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	Address     string                `json:"address"`
	Phone       string                `json:"phone"`
	ContactName string                `json:"contact_name"`
	NPWP        string                `json:"npwp"`
	Active      bool                  `json:"active"`
	Accounts    []BankAccountResponse `json:"accounts,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// EmployeeRequest creates or updates an employee
type EmployeeRequest struct {
	NIP   string `json:"nip" binding:"required,nip"`
	Name  string `json:"name" binding:"required,min=1,max=150"`
	Phone string `json:"phone" binding:"max=50"`
}

// AssignRequest assigns a position to an employee
type AssignRequest struct {
	PositionID uuid.UUID `json:"position_id" binding:"required"`
	StartDate  time.Time `json:"start_date" binding:"required"`
}

// EndAssignmentRequest closes the current assignment
type EndAssignmentRequest struct {
	EndDate time.Time `json:"end_date" binding:"required"`
}

// AssignmentResponse represents one position held by an employee
type AssignmentResponse struct {
	ID           uuid.UUID  `json:"id"`
	PositionID   uuid.UUID  `json:"position_id"`
	PositionName string     `json:"position_name,omitempty"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Current      bool       `json:"current"`
}

// EmployeeResponse represents an employee
type EmployeeResponse struct {
	ID        uuid.UUID           `json:"id"`
	NIP       string              `json:"nip"`
	Name      string              `json:"name"`
	Phone     string              `json:"phone"`
	Active    bool                `json:"active"`
	Position  *AssignmentResponse `json:"position,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *masterdata.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Code:        c.Code,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToUnitResponse converts a domain Unit to NamedResponse
func ToUnitResponse(u *masterdata.Unit) NamedResponse {
	return NamedResponse{ID: u.ID, Name: u.Name, Description: u.Description, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

// ToPositionResponse converts a domain Position to NamedResponse
func ToPositionResponse(p *masterdata.Position) NamedResponse {
	return NamedResponse{ID: p.ID, Name: p.Name, Description: p.Description, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
}

// ToBankAccountResponse converts a domain BankAccount
func ToBankAccountResponse(a *masterdata.BankAccount) BankAccountResponse {
	return BankAccountResponse{
		ID:            a.ID,
		BankName:      a.BankName,
		AccountNumber: a.AccountNumber,
		AccountHolder: a.AccountHolder,
		Primary:       a.IsPrimary,
	}
}

// ToSupplierResponse converts a domain Supplier with whatever accounts are loaded
func ToSupplierResponse(s *masterdata.Supplier) SupplierResponse {
	resp := SupplierResponse{
		ID:          s.ID,
		Name:        s.Name,
		Address:     s.Address,
		Phone:       s.Phone,
		ContactName: s.ContactName,
		NPWP:        s.NPWP,
		Active:      s.Active,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	for i := range s.Accounts {
		resp.Accounts = append(resp.Accounts, ToBankAccountResponse(&s.Accounts[i]))
	}
	return resp
}

// ToAssignmentResponse converts a domain Assignment
func ToAssignmentResponse(a *masterdata.Assignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:         a.ID,
		PositionID: a.PositionID,
		StartDate:  a.StartDate,
		EndDate:    a.EndDate,
		Current:    a.IsOpen(),
	}
	if a.Position != nil {
		resp.PositionName = a.Position.Name
	}
	return resp
}

// ToEmployeeResponse converts a domain Employee; current may be nil
func ToEmployeeResponse(e *masterdata.Employee, current *masterdata.Assignment) EmployeeResponse {
	resp := EmployeeResponse{
		ID:        e.ID,
		NIP:       e.NIP,
		Name:      e.Name,
		Phone:     e.Phone,
		Active:    e.Active,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if current != nil {
		a := ToAssignmentResponse(current)
		resp.Position = &a
	}
	return resp
}

func mapSlice[T, R any](in []T, fn func(*T) R) []R {
	out := make([]R, len(in))
	for i := range in {
		out[i] = fn(&in[i])
	}
	return out
}
