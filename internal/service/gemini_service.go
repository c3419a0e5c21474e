package service

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fadilmartias/cv-optimizer/internal/config"
	"golang.org/x/sync/singleflight"
	"google.golang.org/genai"
)

type GeminiService struct {
	apiKey string
	model  string

	client atomic.Pointer[genai.Client]
	init   singleflight.Group
}

func NewGeminiService(cfg *config.GeminiConfig) *GeminiService {
	return &GeminiService{apiKey: cfg.APIKey, model: cfg.Model}
}

func (s *GeminiService) Name() string {
	return config.LLMProviderGemini
}

// getClient builds the SDK client on first use; concurrent first callers
// share one construction.
func (s *GeminiService) getClient(ctx context.Context) (*genai.Client, error) {
	if c := s.client.Load(); c != nil {
		return c, nil
	}
	if s.apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	v, err, _ := s.init.Do("client", func() (any, error) {
		if c := s.client.Load(); c != nil {
			return c, nil
		}
		c, err := genai.NewClient(context.WithoutCancel(ctx), &genai.ClientConfig{
			APIKey:  s.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, err
		}
		s.client.Store(c)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*genai.Client), nil
}

func (s *GeminiService) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	result, err := client.Models.GenerateContent(ctx, s.model, genai.Text(userPrompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr(float32(0.2)),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
