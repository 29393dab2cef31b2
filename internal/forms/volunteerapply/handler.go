package volunteerapply

import (
	"context"

	"hub47-site/internal/backend"
	"hub47-site/internal/common/sanitize"
	"hub47-site/internal/common/validation"
	"hub47-site/internal/forms"
	"hub47-site/internal/submission"
)

type Backend interface {
	AddVolunteer(ctx context.Context, rec *backend.VolunteerRecord) (string, error)
	forms.Uploader
}

// New creates the volunteer record first; its id tags every uploaded file.
func New(b Backend, deps forms.Deps) *forms.Form {
	seq := &submission.Sequence{
		Create: func(ctx context.Context, values validation.Values) (string, error) {
			return b.AddVolunteer(ctx, ToRecord(values))
		},
		Upload: forms.UploadWith(b, FileType, Slots()),
	}
	return forms.Build(Definition(), seq, deps, "Volunteer with HUB47")
}

func ToRecord(values validation.Values) *backend.VolunteerRecord {
	text := func(name string) string { return sanitize.Text(values.String(name)) }

	return &backend.VolunteerRecord{
		Status:                      status,
		Name:                        text("fullName"),
		Email:                       text("email"),
		PhoneNo:                     text("phone"),
		DateOfBirth:                 values.String("dateOfBirth"),
		CurrentCity:                 text("currentLocation"),
		CurrentRole:                 values.String("occupation"),
		Education:                   values.String("education"),
		LinkedInProfile:             text("linkedinUrl"),
		AreaOfInterest:              values.String("areaOfInterest"),
		VolunteeringExperience:      text("previousExperience"),
		Availability:                values.String("availability"),
		TimePeriodVolunteering:      values.String("timePeriod"),
		StartDateAvailability:       values.String("startDate"),
		Skills:                      text("skills"),
		LanguageSpoken:              text("languages"),
		ReasonForWantingToVolunteer: text("reasonForVolunteering"),
		HopeToGain:                  text("expectations"),
		Considerations:              text("specialRequirements"),
		Reference1:                  text("reference1"),
		Reference2:                  text("reference2"),
		EID:                         text("emiratesIdNumber"),
	}
}
