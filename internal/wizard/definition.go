// Package wizard drives a multi-step form: step partitioning, per-step gating,
// navigation and the submit lifecycle.
package wizard

import (
	"fmt"
	"math"

	"hub47-site/internal/attachments"
	apperrors "hub47-site/internal/common/errors"
	"hub47-site/internal/common/validation"
)

type Step struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Fields      []string `json:"fields"`
	// Slots names the attachment slots presented on this step.
	Slots []string `json:"slots,omitempty"`
}

// Definition is the static shape of one form.
type Definition struct {
	ID     string
	Title  string
	Schema *validation.Schema
	Steps  []Step
	Slots  []attachments.Slot
}

// NewDefinition builds a definition and checks that steps partition the schema.
func NewDefinition(id, title string, schema *validation.Schema, steps []Step, slots []attachments.Slot) (*Definition, error) {
	d := &Definition{ID: id, Title: title, Schema: schema, Steps: steps, Slots: slots}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks that every schema field sits in exactly one step and every
// step slot is declared.
func (d *Definition) Validate() error {
	if d.Schema == nil {
		return fmt.Errorf("form %s: no schema", d.ID)
	}
	if len(d.Steps) == 0 {
		return fmt.Errorf("form %s: no steps", d.ID)
	}

	owner := make(map[string]string, len(d.Schema.Names()))
	stepIDs := make(map[string]bool, len(d.Steps))
	for _, step := range d.Steps {
		if step.ID == "" {
			return fmt.Errorf("form %s: step with empty id", d.ID)
		}
		if stepIDs[step.ID] {
			return fmt.Errorf("form %s: duplicate step %q", d.ID, step.ID)
		}
		stepIDs[step.ID] = true

		for _, name := range step.Fields {
			if !d.Schema.Has(name) {
				return fmt.Errorf("form %s: step %s lists unknown field %q", d.ID, step.ID, name)
			}
			if prev, dup := owner[name]; dup {
				return fmt.Errorf("form %s: field %q appears in steps %s and %s", d.ID, name, prev, step.ID)
			}
			owner[name] = step.ID
		}
	}
	for _, name := range d.Schema.Names() {
		if _, ok := owner[name]; !ok {
			return fmt.Errorf("form %s: field %q is not in any step", d.ID, name)
		}
	}

	declared := make(map[string]bool, len(d.Slots))
	for _, slot := range d.Slots {
		if declared[slot.Name] {
			return fmt.Errorf("form %s: duplicate slot %q", d.ID, slot.Name)
		}
		declared[slot.Name] = true
	}
	for _, step := range d.Steps {
		for _, slot := range step.Slots {
			if !declared[slot] {
				return fmt.Errorf("form %s: step %s lists unknown slot %q", d.ID, step.ID, slot)
			}
		}
	}
	return nil
}

func (d *Definition) LastStep() int { return len(d.Steps) - 1 }

// StepIssues validates only the fields of step i.
func (d *Definition) StepIssues(i int, values validation.Values) []apperrors.FieldIssue {
	if i < 0 || i >= len(d.Steps) {
		return nil
	}
	var issues []apperrors.FieldIssue
	for _, r := range d.Schema.ValidateFields(d.Steps[i].Fields, values) {
		if !r.Valid {
			issues = append(issues, apperrors.FieldIssue{Field: r.Field, Code: r.Code, Reason: r.Reason})
		}
	}
	return issues
}

// IsStepValid is false for an index outside the step list.
func (d *Definition) IsStepValid(i int, values validation.Values) bool {
	if i < 0 || i >= len(d.Steps) {
		return false
	}
	return len(d.StepIssues(i, values)) == 0
}

// StepOf returns the index of the step holding field, or -1.
func (d *Definition) StepOf(field string) int {
	for i, step := range d.Steps {
		for _, name := range step.Fields {
			if name == field {
				return i
			}
		}
	}
	return -1
}

func (d *Definition) stepOfSlot(slot string) int {
	for i, step := range d.Steps {
		for _, name := range step.Slots {
			if name == slot {
				return i
			}
		}
	}
	return d.LastStep()
}

// Progress is the completion percentage shown for step i.
func (d *Definition) Progress(i int) float64 {
	if len(d.Steps) == 0 {
		return 0
	}
	p := float64(i+1) / float64(len(d.Steps)) * 100
	return math.Round(p*100) / 100
}
