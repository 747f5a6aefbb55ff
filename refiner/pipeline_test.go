package refiner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MamunCrafts/ai-simplified-by-mamun/models"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "trims and collapses spaces", in: "  write   a \t function  ", want: "write a function"},
		{name: "spaces sentences", in: "Fix the bug.Then ship it!Now", want: "Fix the bug. Then ship it! Now"},
		{name: "lowercase after period untouched", in: "version 1.2.x", want: "version 1.2.x"},
		{name: "newlines become spaces", in: "line one\n\n\nline two", want: "line one line two"},
		{name: "already normal", in: "Hello there. How are you?", want: "Hello there. How are you?"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, Normalize(got))
		})
	}
}

func TestStructureSplitsLongSingleLine(t *testing.T) {
	text := "This is the first sentence of the text. This is the second sentence of the text! This is the third sentence now?"

	assert.Equal(t,
		"This is the first sentence of the text.\n\nThis is the second sentence of the text.\n\nThis is the third sentence now.",
		Structure(text))
}

func TestStructureLeavesTextAlone(t *testing.T) {
	short := "One. Two. Three."
	assert.Equal(t, short, Structure(short))

	twoSentences := strings.Repeat("long words here ", 5) + ". " + strings.Repeat("more words here ", 5) + "."
	assert.Equal(t, twoSentences, Structure(twoSentences))

	multiline := strings.Repeat("a. ", 40) + "\nb."
	assert.Equal(t, multiline, Structure(multiline))
}

func TestEnrich(t *testing.T) {
	assert.Equal(t, "Write a function\n\nContext: Include technical details and clear requirements.",
		Enrich("Write a function", models.PresetDeveloper))
	assert.Equal(t, "Explain tides\n\nContext: Make it educational and step-by-step.",
		Enrich("Explain tides", models.PresetTeacher))
	assert.Equal(t, "unchanged", Enrich("unchanged", models.Preset("poet")))
}

func TestTruncateWords(t *testing.T) {
	assert.Equal(t, "one two three", TruncateWords("one two three", 3))
	assert.Equal(t, "one two...", TruncateWords("one  two\nthree four", 2))
}

func TestLocalRefineRespectsWordBudget(t *testing.T) {
	raw := strings.TrimSpace(strings.Repeat("word ", 50))

	refined := LocalRefine(Prepare(raw), models.PresetConcise, 10)

	assert.Equal(t, strings.TrimSpace(strings.Repeat("word ", 10))+"...", refined)
	assert.Equal(t, 10, len(strings.Fields(strings.TrimSuffix(refined, "..."))))
}

func TestBuildInstruction(t *testing.T) {
	instruction := BuildInstruction("Write a function", models.PresetAnalyst, 120)

	assert.Contains(t, instruction, "- Organize this for data analysis tasks. Focus on clarity and methodology.")
	assert.Contains(t, instruction, "- Keep it under 120 words")
	assert.Contains(t, instruction, "Return ONLY the refined prompt, no explanation or additional text")
	assert.Contains(t, instruction, OriginalPromptMarker+`Write a function"`)
	assert.True(t, strings.HasSuffix(instruction, "Refined prompt:"))
}

func TestPresetTables(t *testing.T) {
	for _, preset := range models.Presets {
		directive, ok := Directive(preset)
		assert.True(t, ok, preset)
		assert.NotEmpty(t, directive)

		line, ok := ContextLine(preset)
		assert.True(t, ok, preset)
		assert.NotEmpty(t, line)

		assert.True(t, IsPreset(string(preset)))
	}
	assert.False(t, IsPreset("poet"))
}
