package claude

import (
	"context"
	"strings"

	"github.com/liushuangls/go-anthropic"

	"github.com/MamunCrafts/ai-simplified-by-mamun/internal/config"
	"github.com/MamunCrafts/ai-simplified-by-mamun/refiner"
)

const (
	providerName     = "claude"
	defaultModel     = "claude-3-haiku-20240307"
	defaultMaxTokens = 1024
)

type ClaudeClient struct {
	claudeConfig config.ClaudeConfig
}

func NewClaudeClient(claudeConfig config.ClaudeConfig) *ClaudeClient {
	if claudeConfig.Model == "" {
		claudeConfig.Model = defaultModel
	}
	if claudeConfig.MaxTokens <= 0 {
		claudeConfig.MaxTokens = defaultMaxTokens
	}
	return &ClaudeClient{claudeConfig: claudeConfig}
}

func (c *ClaudeClient) Name() string {
	return providerName
}

func (c *ClaudeClient) Configured() bool {
	return c.claudeConfig.Key != ""
}

func (c *ClaudeClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", refiner.MissingCredential(providerName)
	}

	client := anthropic.NewClient(c.claudeConfig.Key)

	resp, err := client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     c.claudeConfig.Model,
		MaxTokens: c.claudeConfig.MaxTokens,
		Messages:  []anthropic.Message{userMessage(prompt)},
	})
	if err != nil {
		return "", classifyError(err)
	}

	var text strings.Builder
	for _, content := range resp.Content {
		text.WriteString(content.Text)
	}
	return strings.TrimSpace(text.String()), nil
}

func userMessage(prompt string) anthropic.Message {
	return anthropic.Message{
		Role: "user",
		Content: []anthropic.MessageContent{
			{
				Type: "text",
				Text: &prompt,
			},
		},
	}
}

func classifyError(err error) error {
	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "rate_limit_error"), strings.Contains(message, "overloaded_error"):
		return &refiner.ExternalServiceError{Provider: providerName, Kind: refiner.KindQuota, Err: err}
	case strings.Contains(message, "authentication_error"), strings.Contains(message, "permission_error"):
		return &refiner.ExternalServiceError{Provider: providerName, Kind: refiner.KindCredential, Err: err}
	}
	return refiner.NewExternalServiceError(providerName, err)
}
