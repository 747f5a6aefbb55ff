package refiner

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/MamunCrafts/ai-simplified-by-mamun/models"
)

const (
	structureMinLength = 100
	truncationMarker   = "..."
)

var (
	sentenceGap  = regexp.MustCompile(`([.!?])\s*([A-Z])`)
	blankLineRun = regexp.MustCompile(`\n\s*\n`)
	sentenceEnds = regexp.MustCompile(`[.!?]+`)
)

// Normalize trims the text, collapses whitespace, spaces sentences and
// squeezes blank lines. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	text = sentenceGap.ReplaceAllString(text, "$1 $2")
	return blankLineRun.ReplaceAllString(text, "\n\n")
}

// Structure reflows a long single-line text into one paragraph per sentence.
// Abbreviations and decimals split like any other sentence end.
func Structure(text string) string {
	if utf8.RuneCountInString(text) <= structureMinLength || strings.Contains(text, "\n") {
		return text
	}

	var sentences []string
	for _, fragment := range sentenceEnds.Split(text, -1) {
		if fragment = strings.TrimSpace(fragment); fragment != "" {
			sentences = append(sentences, fragment)
		}
	}
	if len(sentences) <= 2 {
		return text
	}
	return strings.Join(sentences, ".\n\n") + "."
}

// Enrich appends the preset's guidance sentence as a trailing Context line.
func Enrich(text string, preset models.Preset) string {
	context, ok := ContextLine(preset)
	if !ok || context == "" {
		return text
	}
	return text + "\n\nContext: " + context
}

// TruncateWords keeps the first maxWords words followed by an ellipsis when
// text is longer than that. Shorter text is returned untouched.
func TruncateWords(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ") + truncationMarker
}

// LocalRefine runs the deterministic pipeline used when the provider is unavailable.
// text must already be normalized and structured.
func LocalRefine(text string, preset models.Preset, maxWords int) string {
	return TruncateWords(Enrich(text, preset), maxWords)
}

// Prepare runs the stages that always precede the external call.
func Prepare(raw string) string {
	return Structure(Normalize(raw))
}
