package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MamunCrafts/ai-simplified-by-mamun/internal/config"
	"github.com/MamunCrafts/ai-simplified-by-mamun/refiner"
)

func TestNewGeminiClientDefaultsModel(t *testing.T) {
	client := NewGeminiClient(config.GeminiConfig{Key: "k"})
	assert.Equal(t, defaultModel, client.geminiConfig.Model)
	assert.True(t, client.Configured())
	assert.Equal(t, "gemini", client.Name())
}

func TestGenerateWithoutKey(t *testing.T) {
	client := NewGeminiClient(config.GeminiConfig{})

	_, err := client.Generate(context.Background(), "hello")
	require.Error(t, err)

	var serviceErr *refiner.ExternalServiceError
	require.True(t, errors.As(err, &serviceErr))
	assert.Equal(t, refiner.KindCredential, serviceErr.Kind)
	assert.ErrorIs(t, err, refiner.ErrMissingCredential)
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("  Refined "), genai.Text("prompt\n")}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}
	assert.Equal(t, "Refined prompt", responseText(resp))
	assert.Equal(t, "", responseText(nil))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{}))
}
