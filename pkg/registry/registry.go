// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"hub47-site/internal/common/config"
	apperrors "hub47-site/internal/common/errors"
	"hub47-site/internal/forms"
)

func LoadRegistry(path string) (*FormRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg FormRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	return &reg, nil
}

func SaveRegistry(path string, reg *FormRegistry) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Build describes the served forms. Descriptors are expected in id order.
func Build(version string, descriptors []forms.Descriptor) (*FormRegistry, error) {
	reg := &FormRegistry{
		Version:     version,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Forms:       make([]FormEntry, 0, len(descriptors)),
	}
	for _, d := range descriptors {
		entry, err := entryFor(d)
		if err != nil {
			return nil, fmt.Errorf("form %s: %w", d.ID, err)
		}
		reg.Forms = append(reg.Forms, entry)
	}
	return reg, nil
}

func entryFor(d forms.Descriptor) (FormEntry, error) {
	// Round-trip so the schema compares equal to one read back from disk.
	raw, err := json.Marshal(d.InputSchema)
	if err != nil {
		return FormEntry{}, err
	}
	var schema map[string]interface{}
	if err := json.Unmarshal(raw, &schema); err != nil {
		return FormEntry{}, err
	}

	entry := FormEntry{
		ID:             d.ID,
		Title:          d.Title,
		Description:    d.Description,
		Steps:          make([]StepEntry, 0, len(d.Steps)),
		RequiredFields: []string{},
		PresetFields:   append([]string{}, d.PresetFields...),
		Slots:          make([]SlotEntry, 0, len(d.Slots)),
		InputSchema:    schema,
		ErrorCodes:     errorCodes(len(d.Slots) > 0),
		Timeout:        config.GetDuration(d.SubmitTimeout).String(),
		Retries:        d.MaxUploadRetries,
	}
	for _, s := range d.Steps {
		entry.Steps = append(entry.Steps, StepEntry{
			ID:     s.ID,
			Title:  s.Title,
			Fields: append([]string{}, s.Fields...),
			Slots:  append([]string{}, s.Slots...),
		})
	}
	for _, f := range d.Fields {
		if f.Required {
			entry.RequiredFields = append(entry.RequiredFields, f.Name)
		}
	}
	for _, s := range d.Slots {
		entry.Slots = append(entry.Slots, SlotEntry{
			Name:          s.Name,
			MaxBytes:      s.MaxBytes,
			AcceptedTypes: append([]string{}, s.AcceptedTypes...),
			Required:      s.Required,
		})
	}
	return entry, nil
}

func errorCodes(withAttachments bool) []string {
	codes := []apperrors.ErrorCode{
		apperrors.ErrCodeFieldValidationFailed,
		apperrors.ErrCodeStepBlocked,
		apperrors.ErrCodeSubmissionFailed,
		apperrors.ErrCodeSubmissionTimeout,
	}
	if withAttachments {
		codes = append(codes, apperrors.ErrCodeAttachmentRejected, apperrors.ErrCodePartialSubmission)
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}

// Diff reports how got differs from want; empty means they match. LastUpdated is ignored.
func Diff(want, got *FormRegistry) string {
	return cmp.Diff(want, got,
		cmpopts.IgnoreFields(FormRegistry{}, "LastUpdated"),
		cmpopts.EquateEmpty(),
	)
}
