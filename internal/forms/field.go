package forms

import (
	"errors"
	"fmt"

	"github.com/michaelgov-ctrl/form-lab/internal/validator"
)

var (
	ErrUnknownField   = errors.New("unknown field")
	ErrMissingRule    = errors.New("field has no validation rule")
	ErrDuplicateField = errors.New("duplicate field")
	ErrNoFields       = errors.New("schema has no fields")
)

type Field string

const (
	Name      Field = "name"
	Email     Field = "email"
	Password  Field = "password"
	Complaint Field = "complaint"
	Amount    Field = "amount"
)

var knownFields = map[Field]struct{}{
	Name:      {},
	Email:     {},
	Password:  {},
	Complaint: {},
	Amount:    {},
}

// ParseField maps a wire name to a Field, rejecting anything outside the closed set.
func ParseField(s string) (Field, error) {
	f := Field(s)
	if _, ok := knownFields[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
	}
	return f, nil
}

type FieldSpec struct {
	Field       Field
	Label       string
	Input       string
	Placeholder string
	// MaxLength is rendered as the input's maxlength; 0 means unbounded.
	MaxLength int
	// Sensitive values are never echoed back to clients or stored in clear.
	Sensitive bool
	Rule      validator.Rule
}

type Schema struct {
	Name   string
	Title  string
	Fields []FieldSpec

	// Accepted builds the success acknowledgment for a receipt.
	Accepted func(r Receipt) string
	// Rejected is shown when a submit is blocked by validation errors.
	Rejected string
}

func (s Schema) validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("%s: %w", s.Name, ErrNoFields)
	}

	seen := make(map[Field]struct{}, len(s.Fields))
	for _, spec := range s.Fields {
		if _, ok := knownFields[spec.Field]; !ok {
			return fmt.Errorf("%s: %w: %q", s.Name, ErrUnknownField, spec.Field)
		}
		if _, ok := seen[spec.Field]; ok {
			return fmt.Errorf("%s: %w: %q", s.Name, ErrDuplicateField, spec.Field)
		}
		if spec.Rule == nil {
			return fmt.Errorf("%s: %w: %q", s.Name, ErrMissingRule, spec.Field)
		}
		seen[spec.Field] = struct{}{}
	}

	return nil
}

func (s Schema) spec(f Field) (FieldSpec, bool) {
	for _, spec := range s.Fields {
		if spec.Field == f {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// Values is the current string value of every field in a form.
type Values map[Field]string

// Errors holds one message per field, "" meaning no error.
type Errors map[Field]string

// Empty reports whether every message is blank.
func (e Errors) Empty() bool {
	for _, msg := range e {
		if msg != "" {
			return false
		}
	}
	return true
}

// Failing lists the fields that currently carry a message.
func (e Errors) Failing() []Field {
	var out []Field
	for f, msg := range e {
		if msg != "" {
			out = append(out, f)
		}
	}
	return out
}
