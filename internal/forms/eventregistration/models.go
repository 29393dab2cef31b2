package eventregistration

const FormID = "event-registration"

var HearAboutOptions = []string{
	"Social Media",
	"Friend/Colleague",
	"HUB47 Website",
	"Email Newsletter",
	"LinkedIn",
	"Google Search",
	"Previous Event",
	"Other",
}

// StatusOptions are stored by value; labels are for display only.
var StatusOptions = []string{"student", "employed", "entrepreneur", "freelancer", "unemployed", "other"}
