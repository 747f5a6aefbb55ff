package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openaigo "github.com/sashabaranov/go-openai"

	"github.com/MamunCrafts/ai-simplified-by-mamun/internal/config"
	"github.com/MamunCrafts/ai-simplified-by-mamun/refiner"
)

const (
	providerName = "openai"
	defaultModel = "gpt-4o-mini"
)

type OpenAIClient struct {
	openaiConfig config.OpenAIConfig
	client       *openaigo.Client
}

func NewOpenAIClient(openaiConfig config.OpenAIConfig) *OpenAIClient {
	if openaiConfig.Model == "" {
		openaiConfig.Model = defaultModel
	}
	clientConfig := openaigo.DefaultConfig(openaiConfig.Key)
	if openaiConfig.BaseUrl != "" {
		clientConfig.BaseURL = openaiConfig.BaseUrl
	}
	return &OpenAIClient{
		openaiConfig: openaiConfig,
		client:       openaigo.NewClientWithConfig(clientConfig),
	}
}

func (c *OpenAIClient) Name() string {
	return providerName
}

func (c *OpenAIClient) Configured() bool {
	return c.openaiConfig.Key != ""
}

// Generate calls the OpenAI Chat Completions API with the instruction as a single user message
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", refiner.MissingCredential(providerName)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model: c.openaiConfig.Model,
		Messages: []openaigo.ChatCompletionMessage{
			{
				Role:    openaigo.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func classifyError(err error) error {
	statusCode := 0
	var apiErr *openaigo.APIError
	var requestErr *openaigo.RequestError
	switch {
	case errors.As(err, &apiErr):
		statusCode = apiErr.HTTPStatusCode
	case errors.As(err, &requestErr):
		statusCode = requestErr.HTTPStatusCode
	}

	switch statusCode {
	case http.StatusTooManyRequests:
		return &refiner.ExternalServiceError{Provider: providerName, Kind: refiner.KindQuota, Err: err}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &refiner.ExternalServiceError{Provider: providerName, Kind: refiner.KindCredential, Err: err}
	}
	return refiner.NewExternalServiceError(providerName, err)
}
