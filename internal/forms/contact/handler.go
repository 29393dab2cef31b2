package contact

import (
	"context"
	"time"

	"hub47-site/internal/backend"
	"hub47-site/internal/common/sanitize"
	"hub47-site/internal/common/validation"
	"hub47-site/internal/forms"
	"hub47-site/internal/submission"
)

type Backend interface {
	AddContact(ctx context.Context, rec *backend.MembershipRecord) error
}

func New(b Backend, deps forms.Deps) *forms.Form {
	deps = deps.WithDefaults()
	seq := &submission.Sequence{
		Create: func(ctx context.Context, values validation.Values) (string, error) {
			return "", b.AddContact(ctx, ToRecord(values, deps.Now()))
		},
	}
	return forms.Build(Definition(), seq, deps, "Get in touch with the HUB47 team")
}

func ToRecord(values validation.Values, now time.Time) *backend.MembershipRecord {
	return &backend.MembershipRecord{
		Name:             sanitize.Text(values.String("name")),
		Email:            sanitize.Text(values.String("email")),
		ContactNo:        sanitize.Text(values.String("contactNo")),
		Membership:       membershipTag,
		Notes:            sanitize.Text(values.String("notes")),
		EntryDate:        now.UTC().Format(time.RFC3339),
		Status:           true,
		OrganizationName: sanitize.Text(values.String("organizationName")),
	}
}
