package startupapply

const (
	FormID   = "startup-apply"
	FileType = "startup"
	status   = "Pending"
)

var StartupStages = []string{
	"Idea Stage",
	"MVP/Prototype",
	"Early Traction",
	"Growth Stage",
	"Scaling",
}

var FundingStages = []string{
	"Pre-seed",
	"Seed",
	"Series A",
	"Series B+",
	"Bootstrapped",
	"Not Seeking Funding",
}

var EmployeeRanges = []string{"1-5", "6-10", "11-25", "26-50", "51-100", "100+"}

var FounderCounts = []string{"1", "2", "3", "4", "5+"}

// DocumentTypes are the MIME types accepted for decks and plans.
var DocumentTypes = []string{
	"application/pdf",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}
