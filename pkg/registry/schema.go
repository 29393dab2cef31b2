// pkg/registry/schema.go
package registry

// FormRegistry is the checked-in catalogue of public forms. CI compares it to
// what the binary actually serves.
type FormRegistry struct {
	Version     string      `json:"version"`
	LastUpdated string      `json:"lastUpdated"`
	Forms       []FormEntry `json:"forms"`
}

type FormEntry struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	Steps          []StepEntry            `json:"steps"`
	RequiredFields []string               `json:"requiredFields"`
	PresetFields   []string               `json:"presetFields"`
	Slots          []SlotEntry            `json:"slots"`
	InputSchema    map[string]interface{} `json:"inputSchema"`
	ErrorCodes     []string               `json:"errorCodes"`
	Timeout        string                 `json:"timeout"`
	Retries        int                    `json:"retries"`
}

type StepEntry struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Fields []string `json:"fields"`
	Slots  []string `json:"slots"`
}

type SlotEntry struct {
	Name          string   `json:"name"`
	MaxBytes      int64    `json:"maxBytes"`
	AcceptedTypes []string `json:"acceptedTypes"`
	Required      bool     `json:"required"`
}
