package claude

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MamunCrafts/ai-simplified-by-mamun/internal/config"
	"github.com/MamunCrafts/ai-simplified-by-mamun/refiner"
)

func TestNewClaudeClientDefaults(t *testing.T) {
	client := NewClaudeClient(config.ClaudeConfig{})
	assert.Equal(t, defaultModel, client.claudeConfig.Model)
	assert.Equal(t, defaultMaxTokens, client.claudeConfig.MaxTokens)
	assert.False(t, client.Configured())
}

func TestGenerateWithoutKey(t *testing.T) {
	_, err := NewClaudeClient(config.ClaudeConfig{}).Generate(context.Background(), "x")
	assert.ErrorIs(t, err, refiner.ErrMissingCredential)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind refiner.ErrorKind
	}{
		{"rate limit", errors.New("anthropic api error type: rate_limit_error, message: slow down"), refiner.KindQuota},
		{"overloaded", errors.New("anthropic api error type: overloaded_error, message: busy"), refiner.KindQuota},
		{"auth", errors.New("anthropic api error type: authentication_error, message: invalid x-api-key"), refiner.KindCredential},
		{"other", errors.New("anthropic api error type: api_error, message: boom"), refiner.KindProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var serviceErr *refiner.ExternalServiceError
			assert.True(t, errors.As(classifyError(tt.err), &serviceErr))
			assert.Equal(t, tt.kind, serviceErr.Kind)
		})
	}
}
