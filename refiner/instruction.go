package refiner

import (
	"fmt"

	"github.com/MamunCrafts/ai-simplified-by-mamun/models"
)

const instructionTemplate = `You are a prompt refining assistant. Take the user's rough prompt and turn it into a clear, structured, effective prompt.

Instructions:
- %s
- Keep it under %d words
- Make it actionable and specific
- Return ONLY the refined prompt, no explanation or additional text
- Do not include code unless specifically requested
- Maintain the original intent and meaning

Original prompt: "%s"

Refined prompt:`

// OriginalPromptMarker precedes the user's text inside the instruction.
const OriginalPromptMarker = `Original prompt: "`

// BuildInstruction renders the provider instruction for already prepared text.
func BuildInstruction(text string, preset models.Preset, maxWords int) string {
	directive, ok := Directive(preset)
	if !ok {
		directive, _ = Directive(models.DefaultPreset)
	}
	return fmt.Sprintf(instructionTemplate, directive, maxWords, text)
}
