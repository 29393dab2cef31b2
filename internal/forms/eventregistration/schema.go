package eventregistration

import (
	"regexp"

	v "hub47-site/internal/common/validation"
	"hub47-site/internal/wizard"
)

var eventIDPattern = regexp.MustCompile(`^[1-9][0-9]*$`)

var schema = v.MustSchema(
	v.Field{Name: "eventId", Label: "Event", Required: true, Hidden: true, Rules: []v.Rule{v.Pattern(eventIDPattern, "must be a positive event id")}},
	v.Field{Name: "fullName", Label: "Full name", Required: true, Rules: []v.Rule{v.MinLength(2), v.MaxLength(100)}},
	v.Field{Name: "organisation", Label: "Organisation", Required: true, Rules: []v.Rule{v.MinLength(2), v.MaxLength(100)}},
	v.Field{Name: "email", Label: "Email", Required: true, Rules: []v.Rule{v.Email()}},
	v.Field{Name: "contactNumber", Label: "Contact number", Required: true, Rules: []v.Rule{v.MinLength(8), v.MaxLength(20), v.Phone()}},
	v.Field{Name: "hearAboutUs", Label: "How did you hear about us", Kind: v.KindChoice, Required: true, Options: HearAboutOptions},
	v.Field{Name: "currentStatus", Label: "Current status", Kind: v.KindChoice, Required: true, Options: StatusOptions},
	v.Field{Name: "comments", Label: "Comments", Rules: []v.Rule{v.MaxLength(500)}},
)

func Schema() *v.Schema { return schema }

func Steps() []wizard.Step {
	return []wizard.Step{
		{ID: "contact", Title: "Your Details", Fields: []string{"eventId", "fullName", "organisation", "email", "contactNumber"}},
		{ID: "about", Title: "About You", Fields: []string{"hearAboutUs", "currentStatus", "comments"}},
	}
}

func Definition() *wizard.Definition {
	def, err := wizard.NewDefinition(FormID, "Event Registration", Schema(), Steps(), nil)
	if err != nil {
		panic(err)
	}
	return def
}
