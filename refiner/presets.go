package refiner

import "github.com/MamunCrafts/ai-simplified-by-mamun/models"

type presetProfile struct {
	// directive is embedded in the instruction sent to the provider.
	directive string
	// context is appended by the local fallback.
	context string
}

var presetProfiles = map[models.Preset]presetProfile{
	models.PresetConcise: {
		directive: "Make this prompt clear, direct, and concise. Remove unnecessary words.",
		context:   "Be specific and direct.",
	},
	models.PresetDeveloper: {
		directive: "Structure this for technical/coding tasks. Include clear requirements and constraints.",
		context:   "Include technical details and clear requirements.",
	},
	models.PresetTeacher: {
		directive: "Format this for educational purposes. Make it step-by-step and easy to understand.",
		context:   "Make it educational and step-by-step.",
	},
	models.PresetAnalyst: {
		directive: "Organize this for data analysis tasks. Focus on clarity and methodology.",
		context:   "Focus on data-driven insights and analysis.",
	},
	models.PresetProduct: {
		directive: "Refine this for product management context. Consider user needs and business value.",
		context:   "Consider user needs and business value.",
	},
}

// Directive returns the provider instruction for preset.
func Directive(preset models.Preset) (string, bool) {
	profile, ok := presetProfiles[preset]
	return profile.directive, ok
}

// ContextLine returns the fallback guidance sentence for preset.
func ContextLine(preset models.Preset) (string, bool) {
	profile, ok := presetProfiles[preset]
	return profile.context, ok
}

// IsPreset reports whether name is one of the supported presets.
func IsPreset(name string) bool {
	_, ok := presetProfiles[models.Preset(name)]
	return ok
}
