package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/MamunCrafts/ai-simplified-by-mamun/claude"
	"github.com/MamunCrafts/ai-simplified-by-mamun/gemini"
	"github.com/MamunCrafts/ai-simplified-by-mamun/internal/config"
	"github.com/MamunCrafts/ai-simplified-by-mamun/mockllm"
	"github.com/MamunCrafts/ai-simplified-by-mamun/openai"
	"github.com/MamunCrafts/ai-simplified-by-mamun/refiner"
)

const (
	providerGemini = "gemini"
	providerOpenAI = "openai"
	providerClaude = "claude"
	providerMock   = "mock"
)

// newLogger builds the process logger from the logging section. Unknown levels
// fall back to info.
func newLogger(loggingConfig config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(loggingConfig.Level)); err != nil {
		level = slog.LevelInfo
	}

	options := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(loggingConfig.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, options))
	}
	return slog.New(slog.NewTextHandler(w, options))
}

// newGenerator returns the provider client selected by refine.provider.
func newGenerator(cfg *config.Config) (refiner.Generator, error) {
	switch strings.ToLower(cfg.Refine.Provider) {
	case "", providerGemini:
		return gemini.NewGeminiClient(cfg.LLM.Gemini), nil
	case providerOpenAI:
		return openai.NewOpenAIClient(cfg.LLM.OpenAI), nil
	case providerClaude:
		return claude.NewClaudeClient(cfg.LLM.Claude), nil
	case providerMock:
		return mockllm.NewMockLLMClient(mockllm.ModeEcho, 0), nil
	}
	return nil, fmt.Errorf("unknown refine provider %q, expected one of gemini, openai, claude, mock", cfg.Refine.Provider)
}
