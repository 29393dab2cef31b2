package startupapply

import (
	"hub47-site/internal/attachments"
	v "hub47-site/internal/common/validation"
	"hub47-site/internal/wizard"
)

var schema = v.MustSchema(
	v.Field{Name: "startupName", Label: "Startup name", Required: true, Rules: []v.Rule{v.MinLength(2), v.MaxLength(100)}},
	v.Field{Name: "contactPerson", Label: "Contact person", Required: true, Rules: []v.Rule{v.MinLength(2), v.MaxLength(100)}},
	v.Field{Name: "email", Label: "Email", Required: true, Rules: []v.Rule{v.Email()}},
	v.Field{Name: "phone", Label: "Phone", Required: true, Rules: []v.Rule{v.MinLength(8), v.MaxLength(20), v.Phone()}},
	v.Field{Name: "website", Label: "Website", Rules: []v.Rule{v.URL()}},

	v.Field{Name: "businessModel", Label: "Business model", Required: true, Rules: []v.Rule{v.MinLength(20), v.MaxLength(1000)}},
	v.Field{Name: "startupStage", Label: "Startup stage", Kind: v.KindChoice, Required: true, Options: StartupStages},
	v.Field{Name: "dateEstablished", Label: "Date of establishment", Kind: v.KindDate, Required: true},
	v.Field{Name: "numberOfEmployees", Label: "Number of employees", Kind: v.KindChoice, Required: true, Options: EmployeeRanges},
	v.Field{Name: "numberOfFounders", Label: "Number of founders", Kind: v.KindChoice, Required: true, Options: FounderCounts},

	v.Field{Name: "fundingStage", Label: "Funding stage", Kind: v.KindChoice, Required: true, Options: FundingStages},
	v.Field{Name: "fundingRequired", Label: "Funding required"},
	v.Field{Name: "annualRevenue", Label: "Annual revenue"},
	v.Field{Name: "financialSummary", Label: "Financial summary", Rules: []v.Rule{v.MaxLength(500)}},

	v.Field{Name: "productDescription", Label: "Product description", Required: true, Rules: []v.Rule{v.MinLength(20), v.MaxLength(1000)}},
	v.Field{Name: "valueProposition", Label: "Value proposition", Required: true, Rules: []v.Rule{v.MinLength(10), v.MaxLength(500)}},
	v.Field{Name: "keyCompetitors", Label: "Key competitors", Rules: []v.Rule{v.MaxLength(300)}},
	v.Field{Name: "customerBase", Label: "Customer base", Rules: []v.Rule{v.MaxLength(300)}},
	v.Field{Name: "targetMarket", Label: "Target market", Required: true, Rules: []v.Rule{v.MinLength(10), v.MaxLength(500)}},

	v.Field{Name: "acceleratorExperience", Label: "Accelerator experience", Rules: []v.Rule{v.MaxLength(500)}},
	v.Field{Name: "goals", Label: "Goals", Required: true, Rules: []v.Rule{v.MinLength(20), v.MaxLength(1000)}},
	v.Field{Name: "termsAccepted", Label: "Terms", Kind: v.KindBoolean, Required: true, Rules: []v.Rule{v.MustBeTrue().Because("You must accept the terms")}},
)

func Schema() *v.Schema { return schema }

func Steps() []wizard.Step {
	return []wizard.Step{
		{ID: "basic", Title: "Basic Information", Description: "Tell us about your startup and contact details",
			Fields: []string{"startupName", "contactPerson", "email", "phone", "website"}},
		{ID: "details", Title: "Startup Details", Description: "Share your business model and team size",
			Fields: []string{"businessModel", "startupStage", "dateEstablished", "numberOfEmployees", "numberOfFounders"}},
		{ID: "funding", Title: "Funding & Financials", Description: "Your funding stage and financial overview",
			Fields: []string{"fundingStage", "fundingRequired", "annualRevenue", "financialSummary"}},
		{ID: "product", Title: "Product & Market", Description: "Your product, value proposition, and target market",
			Fields: []string{"productDescription", "valueProposition", "keyCompetitors", "customerBase", "targetMarket"}},
		{ID: "goals", Title: "Goals & Submit", Description: "Your goals and final submission",
			Fields: []string{"acceleratorExperience", "goals", "termsAccepted"}, Slots: []string{"pitchDeck", "businessPlan"}},
	}
}

func Slots() []attachments.Slot {
	return []attachments.Slot{
		{Name: "pitchDeck", Label: "Pitch Deck", Subtype: "pitchdeck", MaxBytes: 10 * attachments.MB, AcceptedTypes: DocumentTypes},
		{Name: "businessPlan", Label: "Business Plan", Subtype: "businessplan", MaxBytes: 10 * attachments.MB, AcceptedTypes: DocumentTypes},
	}
}

// Definition panics if the step partition is broken; covered by tests.
func Definition() *wizard.Definition {
	def, err := wizard.NewDefinition(FormID, "Startup Application", Schema(), Steps(), Slots())
	if err != nil {
		panic(err)
	}
	return def
}
