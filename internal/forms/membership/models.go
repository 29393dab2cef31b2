package membership

const FormID = "membership"

var MembershipTypes = []string{"enterprise", "premium", "basic", "individual"}

var MemberTypes = []string{"individual", "corporate"}

var HearAboutOptions = []string{"social_media", "friend", "event", "website", "newsletter", "other"}
