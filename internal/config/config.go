package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig
	Logging       LoggingConfig
	Refine        RefineConfig
	RateLimit     RateLimitConfigs
	LLM           LLMConfigs
	Clients       ClientConfigs
	GoogleService GoogleServiceConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

type RefineConfig struct {
	Provider string
	Timeout  time.Duration
}

type RateLimitConfigs struct {
	Refine  RateLimitConfig
	Library RateLimitConfig
}

type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

type LLMConfigs struct {
	Gemini GeminiConfig
	OpenAI OpenAIConfig
	Claude ClaudeConfig
}

type GeminiConfig struct {
	Key   string
	Model string
}

type OpenAIConfig struct {
	Key     string
	Model   string
	BaseUrl string
}

type ClaudeConfig struct {
	Key       string
	Model     string
	MaxTokens int
}

type ClientConfigs struct {
	Supabase SupabaseConfig
}

type SupabaseConfig struct {
	Url string
	Key string
}

type GoogleServiceConfig struct {
	ProjectId    string
	JsonKey      string
	PushInterval time.Duration
}

var defaults = map[string]interface{}{
	"server.port":                8080,
	"server.shutdownTimeout":     "10s",
	"logging.level":              "info",
	"logging.format":             "text",
	"refine.provider":            "gemini",
	"refine.timeout":             "15s",
	"rateLimit.refine.limit":     20,
	"rateLimit.refine.window":    "60s",
	"rateLimit.library.limit":    60,
	"rateLimit.library.window":   "60s",
	"llm.gemini.key":             "",
	"llm.gemini.model":           "gemini-1.5-flash",
	"llm.openai.key":             "",
	"llm.openai.model":           "gpt-4o-mini",
	"llm.openai.baseUrl":         "",
	"llm.claude.key":             "",
	"llm.claude.model":           "claude-3-haiku-20240307",
	"llm.claude.maxTokens":       1024,
	"clients.supabase.url":       "",
	"clients.supabase.key":       "",
	"googleService.projectId":    "",
	"googleService.jsonKey":      "",
	"googleService.pushInterval": "60s",
}

// conventional env names, checked after the derived ones
var legacyEnv = map[string][]string{
	"server.port":          {"PORT"},
	"llm.gemini.key":       {"GOOGLE_GENERATIVE_AI_API_KEY"},
	"llm.gemini.model":     {"GEMINI_MODEL"},
	"llm.openai.key":       {"OPENAI_API_KEY"},
	"llm.claude.key":       {"ANTHROPIC_API_KEY"},
	"clients.supabase.url": {"SUPABASE_URL"},
	"clients.supabase.key": {"SUPABASE_ANON_KEY"},
}

func LoadConfig(configName string) (*Config, error) {
	return LoadConfigFrom(configName, ".", "./config")
}

// LoadConfigFrom reads <configName>.yaml from the first matching path. A missing
// file is not an error: defaults and environment variables still apply.
func LoadConfigFrom(configName string, paths ...string) (*Config, error) {
	var config Config

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, envKey}, names...)...); err != nil {
			return nil, fmt.Errorf("unable to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &config, nil
}
