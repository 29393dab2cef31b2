package membership

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
	AddMembership(ctx context.Context, rec *backend.MembershipRecord) error
}

func New(b Backend, deps forms.Deps) *forms.Form {
	deps = deps.WithDefaults()
	seq := &submission.Sequence{
		Create: func(ctx context.Context, values validation.Values) (string, error) {
			return "", b.AddMembership(ctx, ToRecord(values, deps.Now()))
		},
	}
	return forms.Build(Definition(), seq, deps, "Apply for a HUB47 membership package")
}

// ToRecord keeps the backend's convention of storing the referral source, or the
// designation when none was given, in Notes.
func ToRecord(values validation.Values, now time.Time) *backend.MembershipRecord {
	notes := values.String("hearAboutUs")
	if notes == "" {
		notes = sanitize.Text(values.String("designation"))
	}
	return &backend.MembershipRecord{
		Name:             sanitize.Text(values.String("fullName")),
		Email:            sanitize.Text(values.String("email")),
		ContactNo:        sanitize.Text(values.String("phone")),
		Membership:       values.String("membershipType"),
		Notes:            notes,
		EntryDate:        now.UTC().Format(time.RFC3339),
		Status:           true,
		OrganizationName: sanitize.Text(values.String("organisation")),
	}
}
