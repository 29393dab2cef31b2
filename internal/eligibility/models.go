package eligibility

const (
	AnswerYes     = "yes"
	AnswerPartial = "partial"
	AnswerNo      = "no"
)

const (
	StatusHighlyEligible = "highly-eligible"
	StatusEligible       = "eligible"
	StatusNeedsWork      = "needs-work"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

type Option struct {
	Label  string `json:"label" yaml:"label"`
	Value  string `json:"value" yaml:"value"`
	Weight int    `json:"weight" yaml:"weight"`
}

type Question struct {
	ID          string   `json:"id" yaml:"id"`
	Question    string   `json:"question" yaml:"question"`
	Description string   `json:"description" yaml:"description"`
	Criteria    string   `json:"criteria" yaml:"criteria"`
	Options     []Option `json:"options" yaml:"options"`
}

func (q Question) maxWeight() int {
	max := 0
	for _, o := range q.Options {
		if o.Weight > max {
			max = o.Weight
		}
	}
	return max
}

func (q Question) option(value string) (Option, bool) {
	for _, o := range q.Options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

type Recommendation struct {
	Text     string `json:"text"`
	Priority string `json:"priority"`
}

type Result struct {
	Score           int              `json:"score"`
	Status          string           `json:"status"`
	Label           string           `json:"label"`
	Recommendations []Recommendation `json:"recommendations"`
}
