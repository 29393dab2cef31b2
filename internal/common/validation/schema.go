package validation

import (
	"fmt"
	"strings"
	"time"

	apperrors "hub47-site/internal/common/errors"
)

// Kind is the primitive type a field holds.
type Kind string

const (
	KindText    Kind = "text"
	KindBoolean Kind = "boolean"
	KindDate    Kind = "date"
	KindChoice  Kind = "choice"
)

// DateLayout is the wire layout for date fields.
const DateLayout = "2006-01-02"

const (
	CodeRequired      = "REQUIRED"
	CodeInvalidType   = "INVALID_TYPE"
	CodeInvalidDate   = "INVALID_DATE"
	CodeInvalidChoice = "INVALID_CHOICE"
	CodeUnknownField  = "UNKNOWN_FIELD"
)

// Values maps field names to primitive values (string, bool).
type Values map[string]interface{}

func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// String returns the text form of a value, or "" when unset.
func (v Values) String(name string) string {
	switch val := v[name].(type) {
	case string:
		return val
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Kind     Kind     `json:"kind"`
	Required bool     `json:"required"`
	Hidden   bool     `json:"hidden,omitempty"`
	Options  []string `json:"options,omitempty"`
	Rules    []Rule   `json:"-"`
}

// Result is the verdict for one field. Valid results carry no reason.
type Result struct {
	Field  string `json:"field"`
	Valid  bool   `json:"valid"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Err converts an invalid result into a FieldValidationError.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &apperrors.FieldValidationError{Field: r.Field, Code: r.Code, Reason: r.Reason}
}

func pass(field string) Result { return Result{Field: field, Valid: true} }

func fail(field, code, reason string) Result {
	return Result{Field: field, Code: code, Reason: reason}
}

// Schema is an immutable, ordered set of fields.
type Schema struct {
	fields []Field
	index  map[string]int
}

func NewSchema(fields ...Field) (*Schema, error) {
	s := &Schema{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("field with empty name")
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("duplicate field %q", f.Name)
		}
		if f.Kind == "" {
			f.Kind = KindText
		}
		if f.Kind == KindChoice && len(f.Options) == 0 {
			return nil, fmt.Errorf("choice field %q has no options", f.Name)
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// MustSchema panics on an invalid field list; for package-level form definitions.
func MustSchema(fields ...Field) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

func (s *Schema) Names() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}

func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Validate checks one value against its field. It has no side effects.
func (s *Schema) Validate(name string, value interface{}) Result {
	f, ok := s.Field(name)
	if !ok {
		return fail(name, CodeUnknownField, "unknown field")
	}
	return f.check(value)
}

// ValidateFields validates the named fields against values, in the given order.
func (s *Schema) ValidateFields(names []string, values Values) []Result {
	out := make([]Result, 0, len(names))
	for _, name := range names {
		out = append(out, s.Validate(name, values[name]))
	}
	return out
}

// Invalid returns only the failing results for the whole schema.
func (s *Schema) Invalid(values Values) []Result {
	var out []Result
	for _, r := range s.ValidateFields(s.Names(), values) {
		if !r.Valid {
			out = append(out, r)
		}
	}
	return out
}

func (f Field) check(value interface{}) Result {
	if isEmpty(value) {
		if f.Required {
			return fail(f.Name, CodeRequired, "required")
		}
		return pass(f.Name)
	}

	switch f.Kind {
	case KindBoolean:
		if _, ok := value.(bool); !ok {
			return fail(f.Name, CodeInvalidType, "must be true or false")
		}
	default:
		str, ok := value.(string)
		if !ok {
			return fail(f.Name, CodeInvalidType, "must be text")
		}
		if f.Kind == KindDate {
			if _, err := time.Parse(DateLayout, str); err != nil {
				return fail(f.Name, CodeInvalidDate, "must be a valid date")
			}
		}
		if f.Kind == KindChoice && !contains(f.Options, str) {
			return fail(f.Name, CodeInvalidChoice, "must be one of: "+strings.Join(f.Options, ", "))
		}
	}

	for _, rule := range f.Rules {
		if !rule.check(value) {
			return fail(f.Name, rule.Code, rule.Reason)
		}
	}
	return pass(f.Name)
}

// isEmpty treats nil and blank strings as unset. false is a value; use MustBeTrue to demand true.
func isEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
