package eventregistration

import (
	"context"
	"fmt"
	"strconv"

	"hub47-site/internal/backend"
	"hub47-site/internal/common/sanitize"
	"hub47-site/internal/common/validation"
	"hub47-site/internal/forms"
	"hub47-site/internal/submission"
)

type Backend interface {
	AddEventRegistration(ctx context.Context, reg *backend.EventRegistration) error
}

// New registers a visitor for the event fixed when the session was started.
func New(b Backend, deps forms.Deps) *forms.Form {
	seq := &submission.Sequence{
		Create: func(ctx context.Context, values validation.Values) (string, error) {
			reg, err := ToRegistration(values)
			if err != nil {
				return "", err
			}
			// The backend answers "Added" without an id.
			return "", b.AddEventRegistration(ctx, reg)
		},
	}
	return forms.Build(Definition(), seq, deps, "Register for a HUB47 event", "eventId")
}

func ToRegistration(values validation.Values) (*backend.EventRegistration, error) {
	eventID, err := strconv.Atoi(values.String("eventId"))
	if err != nil {
		return nil, fmt.Errorf("invalid event id %q: %w", values.String("eventId"), err)
	}
	text := func(name string) string { return sanitize.Text(values.String(name)) }

	return &backend.EventRegistration{
		Name:               text("fullName"),
		EventID:            eventID,
		Organization:       text("organisation"),
		Email:              text("email"),
		Phone:              text("contactNumber"),
		Workshop:           values.String("hearAboutUs"),
		AdditionalComments: text("comments"),
		CurrentOccupation:  values.String("currentStatus"),
	}, nil
}
