package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/MamunCrafts/ai-simplified-by-mamun/internal/config"
	"github.com/MamunCrafts/ai-simplified-by-mamun/refiner"
)

const (
	providerName = "gemini"
	defaultModel = "gemini-1.5-flash"
)

type GeminiClient struct {
	geminiConfig config.GeminiConfig
}

func NewGeminiClient(geminiConfig config.GeminiConfig) *GeminiClient {
	if geminiConfig.Model == "" {
		geminiConfig.Model = defaultModel
	}
	return &GeminiClient{
		geminiConfig: geminiConfig,
	}
}

func (c *GeminiClient) Name() string {
	return providerName
}

func (c *GeminiClient) Configured() bool {
	return c.geminiConfig.Key != ""
}

// Generate calls the Gemini GenerateContent API with a single text part
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", refiner.MissingCredential(providerName)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.geminiConfig.Key))
	if err != nil {
		return "", refiner.NewExternalServiceError(providerName, fmt.Errorf("failed to create client: %w", err))
	}
	defer client.Close()

	genModel := client.GenerativeModel(c.geminiConfig.Model)

	geminiResponse, err := genModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", refiner.NewExternalServiceError(providerName, err)
	}

	return responseText(geminiResponse), nil
}

// responseText joins the text parts of the first candidate that has content.
func responseText(geminiResp *genai.GenerateContentResponse) string {
	if geminiResp == nil {
		return ""
	}
	for _, candidate := range geminiResp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		var text strings.Builder
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
		if text.Len() > 0 {
			return strings.TrimSpace(text.String())
		}
	}
	return ""
}
