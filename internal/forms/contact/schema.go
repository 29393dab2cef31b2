package contact

import (
	v "hub47-site/internal/common/validation"
	"hub47-site/internal/wizard"
)

const (
	FormID = "contact"
	// membershipTag marks contact messages in the shared membership table.
	membershipTag = "Contact Us"
)

var schema = v.MustSchema(
	v.Field{Name: "name", Label: "Name", Required: true, Rules: []v.Rule{v.MinLength(2), v.MaxLength(100)}},
	v.Field{Name: "email", Label: "Email", Required: true, Rules: []v.Rule{v.Email()}},
	v.Field{Name: "contactNo", Label: "Contact number", Required: true, Rules: []v.Rule{v.Phone()}},
	v.Field{Name: "organizationName", Label: "Organization", Rules: []v.Rule{v.MaxLength(100)}},
	v.Field{Name: "notes", Label: "Message", Required: true, Rules: []v.Rule{v.MaxLength(2000)}},
)

func Schema() *v.Schema { return schema }

func Definition() *wizard.Definition {
	def, err := wizard.NewDefinition(FormID, "Contact Us", schema,
		[]wizard.Step{{ID: "message", Title: "Send us a message", Fields: schema.Names()}}, nil)
	if err != nil {
		panic(err)
	}
	return def
}
