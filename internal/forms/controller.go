package forms

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/michaelgov-ctrl/form-lab/internal/validator"
)

var ErrSubmissionBlocked = errors.New("submission blocked by validation errors")

const defaultRejected = "Please fix the validation errors before submitting."

// BlockedError is returned by OnSubmit when at least one field failed validation.
type BlockedError struct {
	Form   string
	Errors Errors
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s: %v: %d invalid field(s)", e.Form, ErrSubmissionBlocked, len(e.Errors.Failing()))
}

func (e *BlockedError) Is(target error) bool {
	return target == ErrSubmissionBlocked
}

// Receipt describes an accepted submission.
type Receipt struct {
	Form        string
	ReferenceID int
	Values      Values
	Message     string
}

type ValidationMode int

const (
	// Eager validates a field on every change, even before the user leaves it.
	Eager ValidationMode = iota
	// Lazy keeps a field's error hidden until it is blurred or the form is submitted.
	Lazy
)

func (m ValidationMode) String() string {
	if m == Lazy {
		return "lazy"
	}
	return "eager"
}

func ParseValidationMode(s string) (ValidationMode, error) {
	switch s {
	case "", "eager":
		return Eager, nil
	case "lazy":
		return Lazy, nil
	}
	return Eager, fmt.Errorf("unsupported validation mode %q", s)
}

// ArchiveFunc persists an accepted submission before it is acknowledged.
type ArchiveFunc func(ctx context.Context, r Receipt) error

type Options struct {
	notifier Notifier
	ids      IDGenerator
	mode     ValidationMode
	archive  ArchiveFunc
}

type Option func(*Options)

func WithNotifier(n Notifier) Option {
	return func(o *Options) {
		o.notifier = n
	}
}

func WithIDGenerator(ids IDGenerator) Option {
	return func(o *Options) {
		o.ids = ids
	}
}

func WithValidationMode(mode ValidationMode) Option {
	return func(o *Options) {
		o.mode = mode
	}
}

func WithArchive(fn ArchiveFunc) Option {
	return func(o *Options) {
		o.archive = fn
	}
}

// Controller owns the state of one mounted form. It is not safe for
// concurrent use; callers feed it one event at a time.
type Controller struct {
	schema  Schema
	values  Values
	errors  Errors
	touched map[Field]bool

	Options
}

func New(schema Schema, opts ...Option) (*Controller, error) {
	if err := schema.validate(); err != nil {
		return nil, err
	}

	defaults := &Options{
		notifier: discardNotifier{},
		ids:      RandomIDs(10000, 99999),
		mode:     Eager,
	}

	for _, opt := range opts {
		opt(defaults)
	}

	c := &Controller{
		schema:  schema,
		Options: *defaults,
	}
	c.reset()

	return c, nil
}

func (c *Controller) Schema() Schema {
	return c.schema
}

func (c *Controller) Mode() ValidationMode {
	return c.mode
}

// OnFieldChange stores raw for f and re-runs that field's rule only.
func (c *Controller) OnFieldChange(f Field, raw string) error {
	spec, ok := c.schema.spec(f)
	if !ok {
		return fmt.Errorf("%s: %w: %q", c.schema.Name, ErrUnknownField, f)
	}

	c.values[f] = raw

	if c.mode == Eager || c.touched[f] {
		c.errors[f] = spec.Rule(raw)
	}

	return nil
}

// OnFieldBlur marks f as visited, which reveals its error in lazy mode.
func (c *Controller) OnFieldBlur(f Field) error {
	spec, ok := c.schema.spec(f)
	if !ok {
		return fmt.Errorf("%s: %w: %q", c.schema.Name, ErrUnknownField, f)
	}

	c.touched[f] = true
	c.errors[f] = spec.Rule(c.values[f])

	return nil
}

// OnSubmit re-validates every field. On success the receipt is archived,
// acknowledged and the form is cleared; otherwise the rejection notice is
// sent and the entered values are kept for correction.
func (c *Controller) OnSubmit(ctx context.Context) (Receipt, error) {
	var v validator.Validator
	for _, spec := range c.schema.Fields {
		v.Apply(spec.Rule, string(spec.Field), c.values[spec.Field])
		c.touched[spec.Field] = true
	}

	fresh := make(Errors, len(c.schema.Fields))
	for _, spec := range c.schema.Fields {
		fresh[spec.Field] = v.FieldErrors[string(spec.Field)]
	}
	c.errors = fresh

	if !v.Valid() {
		rejected := c.schema.Rejected
		if rejected == "" {
			rejected = defaultRejected
		}
		c.notifier.Notify(ctx, rejected)

		return Receipt{}, &BlockedError{Form: c.schema.Name, Errors: c.Errors()}
	}

	r := Receipt{
		Form:        c.schema.Name,
		ReferenceID: c.ids.NextID(),
		Values:      c.Values(),
	}

	if c.schema.Accepted != nil {
		r.Message = c.schema.Accepted(r)
	} else {
		r.Message = fmt.Sprintf("Form submitted. Your reference number is %d.", r.ReferenceID)
	}

	if c.archive != nil {
		if err := c.archive(ctx, r); err != nil {
			return Receipt{}, fmt.Errorf("archive %s submission: %w", c.schema.Name, err)
		}
	}

	c.notifier.Notify(ctx, r.Message)
	c.reset()

	return r, nil
}

// Valid is the form's validity flag: every field filled in and no rule failing.
// Errors hidden by lazy mode still count.
func (c *Controller) Valid() bool {
	for _, spec := range c.schema.Fields {
		value := c.values[spec.Field]
		if value == "" || c.errors[spec.Field] != "" || spec.Rule(value) != "" {
			return false
		}
	}
	return true
}

func (c *Controller) Values() Values {
	return maps.Clone(c.values)
}

func (c *Controller) Errors() Errors {
	return maps.Clone(c.errors)
}

func (c *Controller) FieldError(f Field) string {
	return c.errors[f]
}

// RedactedValues is Values with sensitive fields blanked.
func (c *Controller) RedactedValues() Values {
	return c.schema.Redact(c.values)
}

func (c *Controller) reset() {
	c.values = make(Values, len(c.schema.Fields))
	c.errors = make(Errors, len(c.schema.Fields))
	c.touched = make(map[Field]bool, len(c.schema.Fields))

	for _, spec := range c.schema.Fields {
		c.values[spec.Field] = ""
		c.errors[spec.Field] = ""
	}
}

// Redact copies values, blanking every sensitive field of s.
func (s Schema) Redact(values Values) Values {
	out := maps.Clone(values)
	for _, spec := range s.Fields {
		if spec.Sensitive {
			if _, ok := out[spec.Field]; ok {
				out[spec.Field] = ""
			}
		}
	}
	return out
}
