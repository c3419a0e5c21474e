package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fadilmartias/cv-optimizer/internal/logger"
	"github.com/fadilmartias/cv-optimizer/internal/model"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// LLMService turns CV text into validated domain values, one chat round
// trip per call. It never retries.
type LLMService struct {
	chat ChatCompleter
	log  logger.Logger
}

func NewLLMService(chat ChatCompleter, log logger.Logger) *LLMService {
	if log == nil {
		log = logger.NewNop()
	}
	return &LLMService{chat: chat, log: log.With(zap.String("provider", chat.Name()))}
}

func (s *LLMService) ParseCV(ctx context.Context, text string) (*model.ParsedCV, error) {
	parsed, err := complete[model.ParsedCV](ctx, s, "parse", parseSystemPrompt,
		"Parse this CV:\n\n"+text, checkParsedCV)
	if err != nil {
		return nil, err
	}
	normalizeParsedCV(parsed)
	for i := range parsed.Experience {
		if parsed.Experience[i].ID == "" {
			parsed.Experience[i].ID = model.FlexString(uuid.NewString())
		}
	}
	for i := range parsed.Education {
		if parsed.Education[i].ID == "" {
			parsed.Education[i].ID = model.FlexString(uuid.NewString())
		}
	}
	return parsed, nil
}

// OptimizeCV sends an empty object in place of parsed data when the CV has
// not been parsed yet.
func (s *LLMService) OptimizeCV(ctx context.Context, text string, parsed *model.ParsedCV) (*model.OptimizedCV, error) {
	parsedJSON := []byte("{}")
	if parsed != nil {
		b, err := json.MarshalIndent(parsed, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode parsed cv: %w", err)
		}
		parsedJSON = b
	}

	user := fmt.Sprintf("Optimize this CV:\n\nOriginal Text:\n%s\n\nParsed Data:\n%s", text, parsedJSON)
	optimized, err := complete[model.OptimizedCV](ctx, s, "optimize", optimizeSystemPrompt, user, checkOptimizedCV)
	if err != nil {
		return nil, err
	}
	normalizeOptimizedCV(optimized)
	for i := range optimized.Suggestions {
		if optimized.Suggestions[i].ID == "" {
			optimized.Suggestions[i].ID = model.FlexString(uuid.NewString())
		}
	}
	return optimized, nil
}

func (s *LLMService) MatchJob(ctx context.Context, cvText, jobDescription string) (*model.JobMatchResult, error) {
	user := fmt.Sprintf("CV:\n%s\n\nJob Description:\n%s", cvText, jobDescription)
	result, err := complete[model.JobMatchResult](ctx, s, "match", matchSystemPrompt, user, checkJobMatch)
	if err != nil {
		return nil, err
	}
	if result.JobID == "" {
		result.JobID = uuid.NewString()
	}
	return result, nil
}

func (s *LLMService) CareerInsights(ctx context.Context, parsed *model.ParsedCV) (*model.CareerInsight, error) {
	b, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode parsed cv: %w", err)
	}
	insights, err := complete[model.CareerInsight](ctx, s, "insights", insightsSystemPrompt,
		"Provide career insights for:\n"+string(b), checkCareerInsight)
	if err != nil {
		return nil, err
	}
	normalizeCareerInsight(insights)
	return insights, nil
}

// complete runs one round trip and decodes the answer into T only after the
// loose document passed check.
func complete[T any](ctx context.Context, s *LLMService, op, system, user string, check func(gjson.Result) error) (*T, error) {
	start := time.Now()
	raw, err := s.chat.Complete(ctx, system, user)
	if err != nil {
		s.log.Error("llm call failed", err, zap.String("op", op), zap.Duration("elapsed", time.Since(start)))
		return nil, err
	}

	body := CleanJSON(raw)
	if !gjson.Valid(body) {
		return nil, s.malformed(op, fmt.Errorf("%s response is not valid JSON", op))
	}
	doc := gjson.Parse(body)
	if !doc.IsObject() {
		return nil, s.malformed(op, fmt.Errorf("%s response is not a JSON object", op))
	}
	if err := check(doc); err != nil {
		return nil, s.malformed(op, err)
	}

	var out T
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, s.malformed(op, err)
	}
	s.log.Info("llm call succeeded", zap.String("op", op), zap.Duration("elapsed", time.Since(start)))
	return &out, nil
}

func (s *LLMService) malformed(op string, cause error) error {
	s.log.Warn("llm response rejected", zap.String("op", op), zap.Error(cause))
	return fmt.Errorf("%w: %v", ErrMalformedResponse, cause)
}
