package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fadilmartias/cv-optimizer/internal/config"
	"github.com/fadilmartias/cv-optimizer/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIService speaks the chat-completions protocol shared by Azure OpenAI,
// OpenAI, OpenRouter and compatible gateways.
type OpenAIService struct {
	client *resty.Client
	cfg    *config.LLMConfig
	log    logger.Logger
}

func NewOpenAIService(cfg *config.LLMConfig, log logger.Logger) *OpenAIService {
	if log == nil {
		log = logger.NewNop()
	}
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &OpenAIService{
		client: client,
		cfg:    cfg,
		log:    log.With(zap.String("llm", cfg.Provider)),
	}
}

func (s *OpenAIService) Name() string {
	return s.cfg.Provider
}

func (s *OpenAIService) isAzure() bool {
	return s.cfg.Provider == config.LLMProviderAzure
}

func (s *OpenAIService) completionsURL() (string, error) {
	endpoint := strings.TrimRight(s.cfg.Endpoint, "/")
	if s.isAzure() {
		if endpoint == "" {
			return "", fmt.Errorf("LLM_ENDPOINT is not configured")
		}
		return fmt.Sprintf("%s/openai/deployments/%s/chat/completions", endpoint, url.PathEscape(s.cfg.Model)), nil
	}
	if endpoint == "" {
		endpoint = defaultOpenAIBaseURL
	}
	return endpoint + "/chat/completions", nil
}

func (s *OpenAIService) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	target, err := s.completionsURL()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	payload := map[string]any{
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature":     0.2,
		"response_format": map[string]string{"type": "json_object"},
	}

	req := s.client.R().SetContext(ctx)
	if s.isAzure() {
		req.SetHeader("api-key", s.cfg.APIKey).
			SetQueryParam("api-version", s.cfg.APIVersion)
	} else {
		payload["model"] = s.cfg.Model
		req.SetAuthToken(s.cfg.APIKey)
	}
	req.SetBody(payload)

	resp, err := req.Post(target)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	if resp.IsError() {
		msg := gjson.Get(resp.String(), "error.message").String()
		s.log.Warn("chat completion rejected", zap.Int("status", resp.StatusCode()), zap.String("message", msg))
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstreamUnavailable, resp.StatusCode(), msg)
	}

	content := gjson.Get(resp.String(), "choices.0.message.content")
	if !content.Exists() || strings.TrimSpace(content.String()) == "" {
		return "", ErrEmptyResponse
	}
	s.log.Info("chat completion received",
		zap.Int("prompt_tokens", int(gjson.Get(resp.String(), "usage.prompt_tokens").Int())),
		zap.Int("completion_tokens", int(gjson.Get(resp.String(), "usage.completion_tokens").Int())),
	)
	return content.String(), nil
}
