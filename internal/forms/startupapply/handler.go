package startupapply

import (
	"context"

	"hub47-site/internal/backend"
	"hub47-site/internal/common/sanitize"
	"hub47-site/internal/common/validation"
	"hub47-site/internal/forms"
	"hub47-site/internal/submission"
)

// Backend is the slice of the HUB47 client this form calls.
type Backend interface {
	AddStartupApplication(ctx context.Context, app *backend.StartupApplication) (string, error)
	forms.Uploader
}

func New(b Backend, deps forms.Deps) *forms.Form {
	seq := &submission.Sequence{
		Create: func(ctx context.Context, values validation.Values) (string, error) {
			return b.AddStartupApplication(ctx, ToApplication(values))
		},
		Upload: forms.UploadWith(b, FileType, Slots()),
	}
	return forms.Build(Definition(), seq, deps, "Apply to the HUB47 startup accelerator")
}

// ToApplication maps wizard values onto the backend record.
func ToApplication(values validation.Values) *backend.StartupApplication {
	text := func(name string) string { return sanitize.Text(values.String(name)) }

	return &backend.StartupApplication{
		Status:                status,
		StartupName:           text("startupName"),
		ContactPerson:         text("contactPerson"),
		Email:                 text("email"),
		Phone:                 text("phone"),
		Website:               text("website"),
		BusinessModel:         text("businessModel"),
		StartupStage:          values.String("startupStage"),
		DateEstablished:       values.String("dateEstablished"),
		NumberOfEmployees:     values.String("numberOfEmployees"),
		NumberOfFounders:      values.String("numberOfFounders"),
		FundingStage:          values.String("fundingStage"),
		FundingRequired:       text("fundingRequired"),
		AnnualRevenue:         text("annualRevenue"),
		FinancialSummary:      text("financialSummary"),
		ProductDescription:    text("productDescription"),
		ValueProposition:      text("valueProposition"),
		TargetMarket:          text("targetMarket"),
		KeyCompetitors:        text("keyCompetitors"),
		CustomerBase:          text("customerBase"),
		AcceleratorExperience: text("acceleratorExperience"),
		Goals:                 text("goals"),
	}
}
