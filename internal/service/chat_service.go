package service

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrUpstreamUnavailable covers transport, auth and non-2xx failures.
	ErrUpstreamUnavailable = errors.New("llm upstream unavailable")
	// ErrEmptyResponse means the completion carried no message content.
	ErrEmptyResponse = errors.New("no response from llm")
	// ErrMalformedResponse means the content was not JSON of the expected shape.
	ErrMalformedResponse = errors.New("malformed llm response")
)

// ChatCompleter performs one system+user chat round trip and returns the
// raw assistant content.
type ChatCompleter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Name() string
}

// CleanJSON strips a markdown code fence around a JSON payload.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
