package refiner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MamunCrafts/ai-simplified-by-mamun/models"
)

func stringPtr(s string) *string { return &s }
func intPtr(i int) *int          { return &i }

func TestValidateAppliesDefaults(t *testing.T) {
	request, err := Validate(models.RefinePromptPayload{Raw: "Write a function"})

	require.NoError(t, err)
	assert.Equal(t, "Write a function", request.Raw)
	assert.Equal(t, models.PresetConcise, request.Preset)
	assert.Equal(t, 300, request.MaxWords)
}

func TestValidateAcceptsBounds(t *testing.T) {
	for _, maxWords := range []int{MinMaxWords, MaxMaxWords} {
		request, err := Validate(models.RefinePromptPayload{Raw: "x", Preset: stringPtr("product"), MaxWords: intPtr(maxWords)})
		require.NoError(t, err)
		assert.Equal(t, maxWords, request.MaxWords)
		assert.Equal(t, models.PresetProduct, request.Preset)
	}

	_, err := Validate(models.RefinePromptPayload{Raw: strings.Repeat("é", MaxRawLength)})
	assert.NoError(t, err)
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name    string
		payload models.RefinePromptPayload
		detail  string
	}{
		{name: "empty raw", payload: models.RefinePromptPayload{Raw: ""}, detail: "raw: Prompt cannot be empty"},
		{name: "blank raw", payload: models.RefinePromptPayload{Raw: " \n\t "}, detail: "raw: Prompt cannot be empty"},
		{name: "raw too long", payload: models.RefinePromptPayload{Raw: strings.Repeat("a", MaxRawLength+1)}, detail: "raw: Prompt too long (max 10,000 characters)"},
		{name: "unknown preset", payload: models.RefinePromptPayload{Raw: "x", Preset: stringPtr("poet")}, detail: "preset: Invalid preset, expected one of concise, developer, teacher, analyst, product"},
		{name: "maxWords too small", payload: models.RefinePromptPayload{Raw: "x", MaxWords: intPtr(9)}, detail: "maxWords: Minimum 10 words"},
		{name: "maxWords zero", payload: models.RefinePromptPayload{Raw: "x", MaxWords: intPtr(0)}, detail: "maxWords: Minimum 10 words"},
		{name: "maxWords too large", payload: models.RefinePromptPayload{Raw: "x", MaxWords: intPtr(1001)}, detail: "maxWords: Maximum 1000 words"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Validate(tc.payload)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, []string{tc.detail}, validationErr.Details)
		})
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	_, err := Validate(models.RefinePromptPayload{Raw: "", Preset: stringPtr("poet"), MaxWords: intPtr(5)})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Details, 3)
}
