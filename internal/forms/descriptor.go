package forms

import (
	"hub47-site/internal/attachments"
	"hub47-site/internal/common/validation"
	"hub47-site/internal/wizard"
)

// Descriptor is the public, static description of a form: enough for a client
// to render every step without a session.
type Descriptor struct {
	ID               string                 `json:"id"`
	Title            string                 `json:"title"`
	Description      string                 `json:"description,omitempty"`
	Steps            []wizard.Step          `json:"steps"`
	Fields           []validation.Field     `json:"fields"`
	Slots            []attachments.Slot     `json:"slots,omitempty"`
	PresetFields     []string               `json:"presetFields,omitempty"`
	InputSchema      map[string]interface{} `json:"inputSchema"`
	SubmitTimeout    int                    `json:"submitTimeout"`
	MaxUploadRetries int                    `json:"maxUploadRetries"`
}

func (f *Form) Descriptor() Descriptor {
	def := f.Definition
	return Descriptor{
		ID:               def.ID,
		Title:            def.Title,
		Description:      f.Description,
		Steps:            def.Steps,
		Fields:           def.Schema.Fields(),
		Slots:            def.Slots,
		PresetFields:     f.PresetFields,
		InputSchema:      def.Schema.JSONSchema(),
		SubmitTimeout:    f.Config.SubmitTimeout,
		MaxUploadRetries: f.Config.MaxUploadRetries,
	}
}

// Descriptors lists every registered form in id order.
func (r *Registry) Descriptors() []Descriptor {
	list := r.List()
	out := make([]Descriptor, 0, len(list))
	for _, f := range list {
		out = append(out, f.Descriptor())
	}
	return out
}
