package config

import (
	"log"
	"os"
	"sync"
	"time"
)

const (
	LLMProviderAzure  = "azure"
	LLMProviderOpenAI = "openai"
	LLMProviderGemini = "gemini"
)

// LLMConfig covers OpenAI-compatible chat completion endpoints,
// Azure OpenAI deployments included.
type LLMConfig struct {
	Provider   string
	Endpoint   string
	APIKey     string
	Model      string
	APIVersion string
	Timeout    time.Duration
}

var (
	llmConfig *LLMConfig
	llmOnce   sync.Once
)

func LoadLLMConfig() *LLMConfig {
	llmOnce.Do(func() {
		timeout := 120 * time.Second
		if raw := os.Getenv("LLM_TIMEOUT"); raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil {
				log.Printf("Warning: invalid LLM_TIMEOUT %q, defaulting to %s", raw, timeout)
			} else {
				timeout = d
			}
		}
		llmConfig = &LLMConfig{
			Provider:   getEnv("LLM_PROVIDER", LLMProviderAzure),
			Endpoint:   os.Getenv("LLM_ENDPOINT"),
			APIKey:     os.Getenv("LLM_API_KEY"),
			Model:      getEnv("LLM_MODEL", "gpt-4o"),
			APIVersion: getEnv("LLM_API_VERSION", "2024-02-15-preview"),
			Timeout:    timeout,
		}
	})
	return llmConfig
}
