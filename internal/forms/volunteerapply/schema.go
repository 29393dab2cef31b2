package volunteerapply

import (
	"hub47-site/internal/attachments"
	v "hub47-site/internal/common/validation"
	"hub47-site/internal/wizard"
)

var schema = v.MustSchema(
	v.Field{Name: "fullName", Label: "Full name", Required: true, Rules: []v.Rule{v.MinLength(2), v.MaxLength(100)}},
	v.Field{Name: "email", Label: "Email", Required: true, Rules: []v.Rule{v.Email()}},
	v.Field{Name: "phone", Label: "Phone", Required: true, Rules: []v.Rule{v.MinLength(8), v.MaxLength(20), v.Phone()}},
	v.Field{Name: "dateOfBirth", Label: "Date of birth", Kind: v.KindDate, Required: true},
	v.Field{Name: "currentLocation", Label: "Current location", Required: true, Rules: []v.Rule{v.MinLength(2), v.MaxLength(100)}},
	v.Field{Name: "emiratesIdNumber", Label: "Emirates ID number"},

	v.Field{Name: "occupation", Label: "Occupation", Kind: v.KindChoice, Required: true, Options: Occupations},
	v.Field{Name: "education", Label: "Education", Kind: v.KindChoice, Required: true, Options: EducationLevels},
	v.Field{Name: "linkedinUrl", Label: "LinkedIn profile", Rules: []v.Rule{v.URL().Because("Please enter a valid LinkedIn URL")}},
	v.Field{Name: "areaOfInterest", Label: "Area of interest", Kind: v.KindChoice, Required: true, Options: AreasOfInterest},
	v.Field{Name: "previousExperience", Label: "Previous experience", Rules: []v.Rule{v.MaxLength(500)}},

	v.Field{Name: "availability", Label: "Availability", Kind: v.KindChoice, Required: true, Options: AvailabilityOptions},
	v.Field{Name: "timePeriod", Label: "Time period", Kind: v.KindChoice, Required: true, Options: TimePeriodOptions},
	v.Field{Name: "startDate", Label: "Start date", Kind: v.KindDate, Required: true},
	v.Field{Name: "skills", Label: "Skills", Required: true, Rules: []v.Rule{v.MinLength(5), v.MaxLength(500)}},
	v.Field{Name: "languages", Label: "Languages", Required: true, Rules: []v.Rule{v.MinLength(2), v.MaxLength(200)}},

	v.Field{Name: "reasonForVolunteering", Label: "Reason for volunteering", Required: true, Rules: []v.Rule{v.MinLength(20), v.MaxLength(1000)}},
	v.Field{Name: "expectations", Label: "What you hope to gain", Required: true, Rules: []v.Rule{v.MinLength(20), v.MaxLength(1000)}},
	v.Field{Name: "specialRequirements", Label: "Special requirements", Rules: []v.Rule{v.MaxLength(500)}},
	v.Field{Name: "reference1", Label: "Reference 1", Required: true, Rules: []v.Rule{v.MinLength(5), v.MaxLength(300)}},
	v.Field{Name: "reference2", Label: "Reference 2", Rules: []v.Rule{v.MaxLength(300)}},

	v.Field{Name: "termsAccepted", Label: "Terms", Kind: v.KindBoolean, Required: true, Rules: []v.Rule{v.MustBeTrue().Because("You must accept the terms")}},
)

func Schema() *v.Schema { return schema }

func Steps() []wizard.Step {
	return []wizard.Step{
		{ID: "personal", Title: "Personal Information", Description: "Tell us about yourself",
			Fields: []string{"fullName", "email", "phone", "dateOfBirth", "currentLocation", "emiratesIdNumber"},
			Slots:  []string{"profilePicture", "emiratesIdFront", "emiratesIdBack"}},
		{ID: "background", Title: "Background & Preferences", Description: "Your experience and interests",
			Fields: []string{"occupation", "education", "linkedinUrl", "areaOfInterest", "previousExperience"}},
		{ID: "availability", Title: "Availability & Skills", Description: "Your time and expertise",
			Fields: []string{"availability", "timePeriod", "startDate", "skills", "languages"}},
		{ID: "motivation", Title: "Motivation & References", Description: "Why you want to volunteer",
			Fields: []string{"reasonForVolunteering", "expectations", "specialRequirements", "reference1", "reference2"}},
		{ID: "documents", Title: "Documents & Submit", Description: "Upload files and submit",
			Fields: []string{"termsAccepted"}, Slots: []string{"resume", "coverLetter"}},
	}
}

func Slots() []attachments.Slot {
	const limit = 5 * attachments.MB
	return []attachments.Slot{
		{Name: "profilePicture", Label: "Profile Picture", Subtype: "profileimage", MaxBytes: limit, AcceptedTypes: imageTypes, Required: true},
		{Name: "emiratesIdFront", Label: "Emirates ID Front", Subtype: "eidfrontimage", MaxBytes: limit, AcceptedTypes: idDocumentTypes, Required: true},
		{Name: "emiratesIdBack", Label: "Emirates ID Back", Subtype: "eidbackimage", MaxBytes: limit, AcceptedTypes: idDocumentTypes, Required: true},
		{Name: "resume", Label: "Resume/CV", Subtype: "resume", MaxBytes: limit, AcceptedTypes: letterTypes},
		{Name: "coverLetter", Label: "Cover Letter", Subtype: "coverletter", MaxBytes: limit, AcceptedTypes: letterTypes},
	}
}

func Definition() *wizard.Definition {
	def, err := wizard.NewDefinition(FormID, "Volunteer Application", Schema(), Steps(), Slots())
	if err != nil {
		panic(err)
	}
	return def
}
