package mockllm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MamunCrafts/ai-simplified-by-mamun/refiner"
)

const providerName = "mock"

type Mode string

const (
	// ModeEcho answers with the original prompt wrapped in quotes.
	ModeEcho Mode = "echo"
	// ModeFail always reports the provider as unavailable.
	ModeFail Mode = "fail"
	// ModeQuota fails as if the quota were exhausted.
	ModeQuota Mode = "quota"
)

type MockLLMClient struct {
	mode  Mode
	delay time.Duration
}

func NewMockLLMClient(mode Mode, delay time.Duration) *MockLLMClient {
	if mode == "" {
		mode = ModeEcho
	}
	return &MockLLMClient{mode: mode, delay: delay}
}

func (c *MockLLMClient) Name() string {
	return providerName
}

func (c *MockLLMClient) Configured() bool {
	return true
}

// Generate waits for the configured delay, honouring ctx, then answers according to mode
func (c *MockLLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.delay):
		}
	}

	switch c.mode {
	case ModeFail:
		return "", refiner.NewExternalServiceError(providerName, errors.New("mock failure: service unavailable"))
	case ModeQuota:
		return "", refiner.NewExternalServiceError(providerName, errors.New("mock failure: quota exceeded"))
	}
	return `"` + originalPrompt(prompt) + `"`, nil
}

// originalPrompt extracts the user text embedded in an instruction.
func originalPrompt(instruction string) string {
	start := strings.Index(instruction, refiner.OriginalPromptMarker)
	if start < 0 {
		return instruction
	}
	rest := instruction[start+len(refiner.OriginalPromptMarker):]
	if end := strings.LastIndex(rest, `"`); end >= 0 {
		rest = rest[:end]
	}
	return rest
}
