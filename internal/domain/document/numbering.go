// Package document holds the procurement and distribution documents
// (SPB, SPPB, BAST in and out) and the generator of their numbers.
package document

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Type tags a numbered document kind.
type Type string

const (
	TypeRequisition Type = "SPB"
	TypeApproval    Type = "SPPB"
	TypeHandoverIn  Type = "BAST_IN"
	TypeHandoverOut Type = "BAST_OUT"
)

// AllTypes lists every numbered document type.
func AllTypes() []Type {
	return []Type{TypeRequisition, TypeApproval, TypeHandoverIn, TypeHandoverOut}
}

// ParseType converts a tag such as "spb" or "BAST_IN" into a Type.
func ParseType(tag string) (Type, bool) {
	t := Type(strings.ToUpper(strings.TrimSpace(tag)))
	switch t {
	case TypeRequisition, TypeApproval, TypeHandoverIn, TypeHandoverOut:
		return t, true
	}
	return "", false
}

// Template tokens.
const (
	TokenYear   = "{year}"
	TokenNumber = "{number}"
)

// MaxPadding bounds the zero-padding width.
const MaxPadding = 12

// TypeConfig describes how numbers of one type are rendered.
type TypeConfig struct {
	Format      string
	StartNumber int64
	Padding     int
}

// NumberingConfig maps each document type to its numbering rules.
type NumberingConfig map[Type]TypeConfig

// DefaultNumberingConfig returns the stock numbering rules.
func DefaultNumberingConfig() NumberingConfig {
	return NumberingConfig{
		TypeRequisition: {Format: "{number}/-077/SPB/{year}", StartNumber: 1, Padding: 0},
		TypeApproval:    {Format: "{number}/-077/SPPB/{year}", StartNumber: 1, Padding: 0},
		TypeHandoverIn:  {Format: "027/{number}/BAST-M/{year}", StartNumber: 1, Padding: 5},
		TypeHandoverOut: {Format: "027/{number}/BAST-K/{year}", StartNumber: 1, Padding: 0},
	}
}

// Validate checks every type is configured with a usable rule.
func (c NumberingConfig) Validate() error {
	for _, t := range AllTypes() {
		tc, ok := c[t]
		if !ok {
			return &ConfigurationError{Type: t, Reason: "not configured"}
		}
		if strings.TrimSpace(tc.Format) == "" {
			return &ConfigurationError{Type: t, Reason: "format is empty"}
		}
		if tc.StartNumber < 0 {
			return &ConfigurationError{Type: t, Reason: "start number is negative"}
		}
		if tc.Padding < 0 || tc.Padding > MaxPadding {
			return &ConfigurationError{Type: t, Reason: fmt.Sprintf("padding must be between 0 and %d", MaxPadding)}
		}
	}
	// Both handover directions live in one table under one unique index but
	// are counted separately, so equal formats would collide forever.
	if strings.TrimSpace(c[TypeHandoverIn].Format) == strings.TrimSpace(c[TypeHandoverOut].Format) {
		return &ConfigurationError{Type: TypeHandoverOut, Reason: "format must differ from " + string(TypeHandoverIn)}
	}
	return nil
}

// ConfigurationError reports a document type without a usable numbering rule.
type ConfigurationError struct {
	Type   Type
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("numbering for document type %q: %s", string(e.Type), e.Reason)
}

// StorageError wraps a failure to count existing documents.
type StorageError struct {
	Type Type
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("counting %s documents: %v", string(e.Type), e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// RecordCounter counts the documents already stored for a type.
type RecordCounter interface {
	CountDocuments(ctx context.Context, t Type) (int64, error)
}

// Generator computes the next document number for a type as
// count + start number. It holds no state and takes no locks, so two
// callers that observe the same count get the same number; uniqueness
// is enforced where the document is stored.
type Generator struct {
	config  NumberingConfig
	counter RecordCounter
	now     func() time.Time
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithClock replaces the time source used for {year}.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator creates a Generator.
func NewGenerator(config NumberingConfig, counter RecordCounter, opts ...GeneratorOption) *Generator {
	g := &Generator{
		config:  config,
		counter: counter,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns the number the next document of type t would carry.
func (g *Generator) Next(ctx context.Context, t Type) (string, error) {
	tc, ok := g.config[t]
	if !ok {
		return "", &ConfigurationError{Type: t, Reason: "unknown document type"}
	}

	count, err := g.counter.CountDocuments(ctx, t)
	if err != nil {
		return "", &StorageError{Type: t, Err: err}
	}

	return Render(tc.Format, count+tc.StartNumber, tc.Padding, g.now().Year()), nil
}

// Render substitutes {number} (zero-padded to padding digits, 0 for none)
// and {year} (four digits) into format.
func Render(format string, number int64, padding, year int) string {
	num := strconv.FormatInt(number, 10)
	if padding > 0 {
		num = fmt.Sprintf("%0*d", padding, number)
	}
	return strings.NewReplacer(
		TokenYear, fmt.Sprintf("%04d", year),
		TokenNumber, num,
	).Replace(format)
}
