// Package masterdata holds the reference data every document points at:
// categories, units, positions, suppliers with their bank accounts and
// employees with their position assignments.
package masterdata

import (
	"strings"

	"github.com/sibarkumen/backend/internal/domain/shared"
)

// Category groups items (e.g. ATK, Bahan Cetak).
type Category struct {
	shared.BaseAggregateRoot
	Code        string `gorm:"type:varchar(30);not null;uniqueIndex"`
	Name        string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a category with an upper-cased code.
func NewCategory(code, name, description string) (*Category, error) {
	c := &Category{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := c.apply(code, name, description); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the category's fields.
func (c *Category) Update(code, name, description string) error {
	if err := c.apply(code, name, description); err != nil {
		return err
	}
	c.IncrementVersion()
	return nil
}

func (c *Category) apply(code, name, description string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := validateCode("CATEGORY", code); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if err := validateName("CATEGORY", name, 100); err != nil {
		return err
	}
	c.Code = code
	c.Name = name
	c.Description = strings.TrimSpace(description)
	return nil
}

// Unit is a unit of measure such as Pcs, Rim or Box.
type Unit struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Unit) TableName() string {
	return "units"
}

// NewUnit creates a unit of measure.
func NewUnit(name, description string) (*Unit, error) {
	u := &Unit{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := u.apply(name, description); err != nil {
		return nil, err
	}
	return u, nil
}

// Update replaces the unit's fields.
func (u *Unit) Update(name, description string) error {
	if err := u.apply(name, description); err != nil {
		return err
	}
	u.IncrementVersion()
	return nil
}

func (u *Unit) apply(name, description string) error {
	name = strings.TrimSpace(name)
	if err := validateName("UNIT", name, 50); err != nil {
		return err
	}
	u.Name = name
	u.Description = strings.TrimSpace(description)
	return nil
}

// Position is a job title (jabatan) an employee can hold.
type Position struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Position) TableName() string {
	return "positions"
}

// NewPosition creates a position.
func NewPosition(name, description string) (*Position, error) {
	p := &Position{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := p.apply(name, description); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the position's fields.
func (p *Position) Update(name, description string) error {
	if err := p.apply(name, description); err != nil {
		return err
	}
	p.IncrementVersion()
	return nil
}

func (p *Position) apply(name, description string) error {
	name = strings.TrimSpace(name)
	if err := validateName("POSITION", name, 100); err != nil {
		return err
	}
	p.Name = name
	p.Description = strings.TrimSpace(description)
	return nil
}

func validateCode(kind, code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_"+kind+"_CODE", "Code cannot be empty")
	}
	if len(code) > 30 {
		return shared.NewDomainError("INVALID_"+kind+"_CODE", "Code cannot exceed 30 characters")
	}
	for _, r := range code {
		if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == '.') {
			return shared.NewDomainError("INVALID_"+kind+"_CODE", "Code can only contain letters, numbers, hyphens, underscores and dots")
		}
	}
	return nil
}

func validateName(kind, name string, max int) error {
	if name == "" {
		return shared.NewDomainError("INVALID_"+kind+"_NAME", "Name cannot be empty")
	}
	if len(name) > max {
		return shared.NewDomainError("INVALID_"+kind+"_NAME", "Name is too long")
	}
	return nil
}
