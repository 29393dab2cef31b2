package volunteerapply

const (
	FormID   = "volunteer-apply"
	FileType = "volunteer"
	status   = "Pending"
)

var Occupations = []string{
	"Student",
	"Fresh Graduate",
	"Professional (1-3 years)",
	"Mid-Level Professional (4-7 years)",
	"Senior Professional (8+ years)",
	"Entrepreneur",
	"Retired Professional",
	"Other",
}

var EducationLevels = []string{
	"High School",
	"Associate Degree",
	"Bachelor's Degree",
	"Master's Degree",
	"PhD/Doctorate",
	"Professional Certification",
	"Other",
}

var AreasOfInterest = []string{
	"Business Coaching",
	"Marketing & Outreach",
	"Program Development",
	"Mentorship",
	"Event Coordination",
	"Technical Advising",
	"Legal/Finance Advisory",
	"Content Creation",
	"Community Management",
}

var AvailabilityOptions = []string{
	"Weekdays Only",
	"Weekends Only",
	"Both Weekdays & Weekends",
	"Flexible",
}

var TimePeriodOptions = []string{
	"3 Months",
	"6 Months",
	"1 Year",
	"Long-term (1+ Year)",
	"Project-based",
}

var (
	imageTypes      = []string{"image/*"}
	idDocumentTypes = []string{"image/*", "application/pdf"}
	letterTypes     = []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
)
