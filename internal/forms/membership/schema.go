package membership

import (
	v "hub47-site/internal/common/validation"
	"hub47-site/internal/wizard"
)

var schema = v.MustSchema(
	v.Field{Name: "fullName", Label: "Full name", Required: true, Rules: []v.Rule{v.MinLength(2)}},
	v.Field{Name: "email", Label: "Email", Required: true, Rules: []v.Rule{v.Email()}},
	v.Field{Name: "phone", Label: "Phone", Required: true, Rules: []v.Rule{v.MinLength(9).Because("Please enter a valid phone number"), v.Phone()}},
	v.Field{Name: "organisation", Label: "Organisation", Required: true, Rules: []v.Rule{v.MinLength(2)}},
	v.Field{Name: "designation", Label: "Designation", Required: true, Rules: []v.Rule{v.MinLength(2)}},
	v.Field{Name: "membershipType", Label: "Membership package", Kind: v.KindChoice, Required: true, Options: MembershipTypes},
	v.Field{Name: "memberType", Label: "Member type", Kind: v.KindChoice, Required: true, Options: MemberTypes},
	v.Field{Name: "hearAboutUs", Label: "How did you hear about us", Kind: v.KindChoice, Required: true, Options: HearAboutOptions},
)

func Schema() *v.Schema { return schema }

func Steps() []wizard.Step {
	return []wizard.Step{{ID: "apply", Title: "Membership Application", Fields: schema.Names()}}
}

func Definition() *wizard.Definition {
	def, err := wizard.NewDefinition(FormID, "Membership", Schema(), Steps(), nil)
	if err != nil {
		panic(err)
	}
	return def
}
