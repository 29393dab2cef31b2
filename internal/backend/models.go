package backend

// Field names below are the HUB47 API's own and must not be renamed.

type VolunteerRecord struct {
	ID                          int    `json:"ID"`
	Status                      string `json:"Status"`
	Name                        string `json:"Name"`
	Email                       string `json:"Email"`
	PhoneNo                     string `json:"PhoneNo"`
	DateOfBirth                 string `json:"Dateofbirth"`
	CurrentCity                 string `json:"Currentcity"`
	CurrentRole                 string `json:"CurrentRole"`
	Education                   string `json:"Education"`
	LinkedInProfile             string `json:"Linkinprofilelink"`
	AreaOfInterest              string `json:"AreaofInterest"`
	VolunteeringExperience      string `json:"Volunteeringexperience"`
	Availability                string `json:"Availability"`
	TimePeriodVolunteering      string `json:"TimePeriodVolunteering"`
	StartDateAvailability       string `json:"StartDateAvailability"`
	Skills                      string `json:"Skills"`
	LanguageSpoken              string `json:"LanguageSpoken"`
	ReasonForWantingToVolunteer string `json:"ReasonforWantingtoVolunteer"`
	HopeToGain                  string `json:"HopetoGain"`
	Considerations              string `json:"Considerations"`
	Reference1                  string `json:"Reference1"`
	Reference2                  string `json:"Reference2"`
	EID                         string `json:"EID"`
}

type StartupApplication struct {
	ID                    int    `json:"ID"`
	Status                string `json:"Status"`
	StartupName           string `json:"StartupName"`
	ContactPerson         string `json:"ContactPerson"`
	Email                 string `json:"Email"`
	Phone                 string `json:"Phone"`
	Website               string `json:"Website"`
	BusinessModel         string `json:"BusinessModel"`
	StartupStage          string `json:"StartupStage"`
	DateEstablished       string `json:"DateEstablished"`
	NumberOfEmployees     string `json:"NumberOfEmployees"`
	NumberOfFounders      string `json:"NumberOfFounders"`
	FundingStage          string `json:"FundingStage"`
	FundingRequired       string `json:"FundingRequired"`
	AnnualRevenue         string `json:"AnnualRevenue"`
	FinancialSummary      string `json:"FinancialSummary"`
	ProductDescription    string `json:"ProductDescription"`
	ValueProposition      string `json:"ValueProposition"`
	TargetMarket          string `json:"TargetMarket"`
	KeyCompetitors        string `json:"KeyCompetitors"`
	CustomerBase          string `json:"CustomerBase"`
	AcceleratorExperience string `json:"AcceleratorExperience"`
	Goals                 string `json:"Goals"`
}

type EventRegistration struct {
	Name               string `json:"Name"`
	EventID            int    `json:"eventid"`
	Organization       string `json:"Organization"`
	Email              string `json:"Email"`
	Phone              string `json:"Phone"`
	Workshop           string `json:"Workshop"`
	AdditionalComments string `json:"Additionalcomments"`
	CurrentOccupation  string `json:"CurrentOccupation"`
}

// MembershipRecord is shared by membership applications and contact messages;
// contact messages carry Membership "Contact Us".
type MembershipRecord struct {
	ID               int    `json:"ID"`
	Name             string `json:"Name"`
	Email            string `json:"Email"`
	ContactNo        string `json:"ContactNo"`
	Membership       string `json:"Membership"`
	Notes            string `json:"Notes"`
	EntryDate        string `json:"EntryDate"`
	Status           bool   `json:"Status"`
	OrganizationName string `json:"OrganizationName"`
}

// Upload is one multipart file post tied to a created record.
type Upload struct {
	EntityID    string
	FileType    string
	Subtype     string
	FileName    string
	ContentType string
	Data        []byte
}

type EventDetail struct {
	ID          int      `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Category    string   `json:"category" yaml:"category"`
	StartDate   string   `json:"startDate" yaml:"startDate"`
	EndDate     string   `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Time        string   `json:"time" yaml:"time"`
	Location    string   `json:"location" yaml:"location"`
	Level       string   `json:"level" yaml:"level"`
	Language    string   `json:"language" yaml:"language"`
	Mode        string   `json:"mode" yaml:"mode"`
	Cost        string   `json:"cost" yaml:"cost"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}
