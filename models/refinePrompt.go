package models

// Preset names one of the fixed refinement styles.
type Preset string

const (
	PresetConcise   Preset = "concise"
	PresetDeveloper Preset = "developer"
	PresetTeacher   Preset = "teacher"
	PresetAnalyst   Preset = "analyst"
	PresetProduct   Preset = "product"
)

const (
	DefaultPreset   = PresetConcise
	DefaultMaxWords = 300
)

// Presets lists every accepted preset in display order.
var Presets = []Preset{PresetConcise, PresetDeveloper, PresetTeacher, PresetAnalyst, PresetProduct}

// RefinePromptPayload is the body accepted by POST /api/refine. Pointer fields
// distinguish an absent value from an explicit zero.
type RefinePromptPayload struct {
	Raw      string  `json:"raw"`
	Preset   *string `json:"preset,omitempty"`
	MaxWords *int    `json:"maxWords,omitempty"`
}

// RefineRequest is a validated refinement call.
type RefineRequest struct {
	Raw      string
	Preset   Preset
	MaxWords int
}

type RefinePromptResponse struct {
	Refined string `json:"refined"`
}
