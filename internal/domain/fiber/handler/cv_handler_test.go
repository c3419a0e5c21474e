package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fadilmartias/cv-optimizer/internal/config"
	"github.com/fadilmartias/cv-optimizer/internal/domain/fiber/handler"
	"github.com/fadilmartias/cv-optimizer/internal/repository"
	"github.com/fadilmartias/cv-optimizer/internal/server"
	"github.com/fadilmartias/cv-optimizer/internal/service"
	"github.com/fadilmartias/cv-optimizer/internal/storage"
	"github.com/fadilmartias/cv-optimizer/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	parsedReply = `{
  "personalInfo": {"name": "Jane Doe", "email": "jane@example.com"},
  "skills": [{"name": "Go", "category": "technical", "proficiency": "expert"}],
  "experience": [{"company": "Acme", "position": "Engineer", "startDate": "2019", "current": true, "description": "Built things", "achievements": []}],
  "education": [],
  "summary": "Backend engineer"
}`
	optimizedReply = `{
  "atsScore": 72,
  "suggestions": [{"type": "content", "severity": "high", "message": "Quantify", "original": "Built things", "suggested": "Built 3 services", "reason": "Numbers"}],
  "improvementAreas": [{"category": "Impact", "score": 60, "recommendations": ["Add metrics"]}],
  "keywordMatches": [{"keyword": "Kubernetes", "found": false, "importance": "medium"}],
  "optimizedText": "Jane Doe - Backend engineer"
}`
	matchReply    = `{"matchScore": 80, "matchedSkills": ["Go"], "missingSkills": ["Rust"], "tailoredCV": "Tailored", "recommendations": ["Learn Rust"]}`
	insightsReply = `{
  "skillDemand": [{"skill": "Go", "demand": "high", "trend": "rising", "relevantJobs": ["Backend Engineer"]}],
  "salaryRange": {"min": 90000, "max": 150000, "median": 120000, "currency": "USD"},
  "careerPath": [],
  "recommendations": ["Mentor others"]
}`
)

// scriptedChat answers by the leading line of the user prompt.
type scriptedChat struct {
	mu      sync.Mutex
	replies map[string]string
	calls   int
}

func (s *scriptedChat) Complete(ctx context.Context, system, user string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	for prefix, reply := range s.replies {
		if strings.HasPrefix(user, prefix) {
			return reply, nil
		}
	}
	return "", service.ErrEmptyResponse
}

func (s *scriptedChat) Name() string { return "scripted" }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Pagination *struct {
		Page       int `json:"page"`
		PageSize   int `json:"page_size"`
		TotalItems int `json:"total_items"`
	} `json:"pagination"`
}

type CVHandlerSuite struct {
	suite.Suite
	app  *fiber.App
	chat *scriptedChat
}

func TestCVHandlerSuite(t *testing.T) {
	suite.Run(t, new(CVHandlerSuite))
}

func (s *CVHandlerSuite) SetupTest() {
	store, err := storage.NewFilesystem(filepath.Join(s.T().TempDir(), "cvfiles"), nil)
	s.Require().NoError(err)
	repo := repository.NewCVRepository(store, nil)

	s.chat = &scriptedChat{replies: map[string]string{
		"Parse this CV":                parsedReply,
		"Optimize this CV":             optimizedReply,
		"CV:":                          matchReply,
		"Provide career insights for:": insightsReply,
	}}
	uc := usecase.NewCVUsecase(repo, service.NewLLMService(s.chat, nil), nil, nil)

	cfg := &config.AppConfig{
		Name:           "cv-optimizer-test",
		Env:            "test",
		Version:        "1.0.0",
		DemoUserID:     "demo-user",
		AllowedOrigins: "*",
		MaxUploadSize:  64 * 1024,
	}
	s.app = server.New(cfg, nil, repo.Ping,
		handler.NewHealthHandler(cfg.Version),
		handler.NewCVHandler(uc, cfg.MaxUploadSize, nil),
	)
}

func (s *CVHandlerSuite) do(req *http.Request) (int, envelope) {
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	var env envelope
	s.Require().NoError(json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

func (s *CVHandlerSuite) jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func (s *CVHandlerSuite) uploadText(text string) map[string]any {
	status, env := s.do(s.jsonRequest(fiber.MethodPost, "/cv/upload", `{"text":`+quote(text)+`}`))
	s.Require().Equal(fiber.StatusCreated, status)
	var rec map[string]any
	s.Require().NoError(json.Unmarshal(env.Data, &rec))
	return rec
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func (s *CVHandlerSuite) TestUploadText() {
	rec := s.uploadText("Jane Doe, Go developer")
	s.NotEmpty(rec["id"])
	s.Equal("demo-user", rec["userId"])
	s.Equal("pasted-cv.txt", rec["fileName"])
	s.Equal("processing", rec["status"])
	s.Equal("Jane Doe, Go developer", rec["originalText"])
	s.NotContains(rec, "parsedData")
}

func (s *CVHandlerSuite) TestUploadMultipart() {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", "resume.txt")
	s.Require().NoError(err)
	_, err = part.Write([]byte("Experienced engineer"))
	s.Require().NoError(err)
	s.Require().NoError(w.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/cv/upload", body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	status, env := s.do(req)
	s.Equal(fiber.StatusCreated, status)

	var rec map[string]any
	s.Require().NoError(json.Unmarshal(env.Data, &rec))
	s.Equal("resume.txt", rec["fileName"])
	s.Equal("Experienced engineer", rec["originalText"])
}

func (s *CVHandlerSuite) TestUploadRejections() {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", "resume.exe")
	s.Require().NoError(err)
	_, _ = part.Write([]byte("MZ"))
	s.Require().NoError(w.Close())
	req := httptest.NewRequest(fiber.MethodPost, "/cv/upload", body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	status, env := s.do(req)
	s.Equal(fiber.StatusBadRequest, status)
	s.Equal("INVALID_FILE_TYPE", env.Error.Code)

	body = &bytes.Buffer{}
	w = multipart.NewWriter(body)
	part, err = w.CreateFormFile("file", "big.txt")
	s.Require().NoError(err)
	_, _ = part.Write(bytes.Repeat([]byte("a"), 65*1024))
	s.Require().NoError(w.Close())
	req = httptest.NewRequest(fiber.MethodPost, "/cv/upload", body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	status, env = s.do(req)
	s.Equal(fiber.StatusRequestEntityTooLarge, status)
	s.Equal("FILE_TOO_LARGE", env.Error.Code)

	req = httptest.NewRequest(fiber.MethodPost, "/cv/upload", strings.NewReader("plain"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMETextPlain)
	status, env = s.do(req)
	s.Equal(fiber.StatusBadRequest, status)
	s.Equal("INVALID_CONTENT_TYPE", env.Error.Code)

	status, env = s.do(s.jsonRequest(fiber.MethodPost, "/cv/upload-text", `{"text":"   "}`))
	s.Equal(fiber.StatusBadRequest, status)
	s.Equal("INVALID_INPUT", env.Error.Code)

	status, env = s.do(s.jsonRequest(fiber.MethodPost, "/cv/upload-text", `{"text":`))
	s.Equal(fiber.StatusBadRequest, status)
	s.Equal("INVALID_INPUT", env.Error.Code)
}

func (s *CVHandlerSuite) TestGetAndOwnership() {
	rec := s.uploadText("my cv")
	id := rec["id"].(string)

	status, env := s.do(httptest.NewRequest(fiber.MethodGet, "/cv/"+id, nil))
	s.Equal(fiber.StatusOK, status)
	s.True(env.Success)

	req := httptest.NewRequest(fiber.MethodGet, "/cv/"+id, nil)
	req.Header.Set("X-User-ID", "someone-else")
	status, env = s.do(req)
	s.Equal(fiber.StatusNotFound, status)
	s.Equal("NOT_FOUND", env.Error.Code)
}

func (s *CVHandlerSuite) TestParseThenOptimize() {
	id := s.uploadText("Jane Doe\nGo")["id"].(string)

	status, env := s.do(httptest.NewRequest(fiber.MethodPost, "/cv/"+id+"/parse", nil))
	s.Require().Equal(fiber.StatusOK, status)
	var parsed map[string]any
	s.Require().NoError(json.Unmarshal(env.Data, &parsed))
	s.Equal("Backend engineer", parsed["summary"])

	status, env = s.do(httptest.NewRequest(fiber.MethodPost, "/cv/"+id+"/optimize", nil))
	s.Require().Equal(fiber.StatusOK, status)
	var optimized map[string]any
	s.Require().NoError(json.Unmarshal(env.Data, &optimized))
	s.EqualValues(72, optimized["atsScore"])

	_, env = s.do(httptest.NewRequest(fiber.MethodGet, "/cv/"+id, nil))
	var rec map[string]any
	s.Require().NoError(json.Unmarshal(env.Data, &rec))
	s.Equal("completed", rec["status"])
	s.Contains(rec, "parsedData")
	s.Contains(rec, "optimizedData")
}

func (s *CVHandlerSuite) TestOptimizeUnknownCV() {
	status, env := s.do(httptest.NewRequest(fiber.MethodPost, "/cv/does-not-exist/optimize", nil))
	s.Equal(fiber.StatusNotFound, status)
	s.False(env.Success)
	s.Equal("NOT_FOUND", env.Error.Code)
	s.Zero(s.chat.calls)
}

func (s *CVHandlerSuite) TestOptimizeMalformedReplyKeepsStatus() {
	id := s.uploadText("cv text")["id"].(string)
	s.chat.replies["Optimize this CV"] = "I cannot help with that."

	status, env := s.do(httptest.NewRequest(fiber.MethodPost, "/cv/"+id+"/optimize", nil))
	s.Equal(fiber.StatusInternalServerError, status)
	s.Equal("OPTIMIZATION_ERROR", env.Error.Code)

	_, env = s.do(httptest.NewRequest(fiber.MethodGet, "/cv/"+id, nil))
	var rec map[string]any
	s.Require().NoError(json.Unmarshal(env.Data, &rec))
	s.Equal("processing", rec["status"])
	s.NotContains(rec, "optimizedData")
}

func (s *CVHandlerSuite) TestMatch() {
	id := s.uploadText("Go developer")["id"].(string)

	status, env := s.do(s.jsonRequest(fiber.MethodPost, "/cv/"+id+"/match", `{"jobDescription":""}`))
	s.Equal(fiber.StatusBadRequest, status)
	s.Equal("INVALID_INPUT", env.Error.Code)

	status, env = s.do(s.jsonRequest(fiber.MethodPost, "/cv/"+id+"/match", `{"jobDescription":"Rust and Go"}`))
	s.Require().Equal(fiber.StatusOK, status)
	var result map[string]any
	s.Require().NoError(json.Unmarshal(env.Data, &result))
	s.EqualValues(80, result["matchScore"])
	s.NotEmpty(result["jobId"])
}

func (s *CVHandlerSuite) TestInsightsRequireParsedData() {
	id := s.uploadText("Go developer")["id"].(string)

	status, env := s.do(httptest.NewRequest(fiber.MethodGet, "/cv/"+id+"/insights", nil))
	s.Equal(fiber.StatusBadRequest, status)
	s.Equal("INVALID_STATE", env.Error.Code)

	status, _ = s.do(httptest.NewRequest(fiber.MethodPost, "/cv/"+id+"/parse", nil))
	s.Require().Equal(fiber.StatusOK, status)

	status, env = s.do(httptest.NewRequest(fiber.MethodGet, "/cv/"+id+"/insights", nil))
	s.Require().Equal(fiber.StatusOK, status)
	var insights map[string]any
	s.Require().NoError(json.Unmarshal(env.Data, &insights))
	s.Contains(insights, "salaryRange")
}

func (s *CVHandlerSuite) TestListNewestFirst() {
	first := s.uploadText("first")["id"].(string)
	time.Sleep(5 * time.Millisecond)
	second := s.uploadText("second")["id"].(string)

	other := s.jsonRequest(fiber.MethodPost, "/cv/upload", `{"text":"not mine"}`)
	other.Header.Set("X-User-ID", "other-user")
	status, _ := s.do(other)
	s.Require().Equal(fiber.StatusCreated, status)

	status, env := s.do(httptest.NewRequest(fiber.MethodGet, "/cv?userId=demo-user", nil))
	s.Require().Equal(fiber.StatusOK, status)
	var records []map[string]any
	s.Require().NoError(json.Unmarshal(env.Data, &records))
	s.Require().Len(records, 2)
	s.Equal(second, records[0]["id"])
	s.Equal(first, records[1]["id"])
	s.Nil(env.Pagination)

	status, env = s.do(httptest.NewRequest(fiber.MethodGet, "/cv?page=2&page_size=1", nil))
	s.Require().Equal(fiber.StatusOK, status)
	s.Require().NoError(json.Unmarshal(env.Data, &records))
	s.Require().Len(records, 1)
	s.Equal(first, records[0]["id"])
	s.Require().NotNil(env.Pagination)
	s.Equal(2, env.Pagination.TotalItems)

	status, env = s.do(httptest.NewRequest(fiber.MethodGet, "/cv?userId=other-user", nil))
	s.Equal(fiber.StatusForbidden, status)
	s.Equal("FORBIDDEN", env.Error.Code)
}

func (s *CVHandlerSuite) TestDelete() {
	id := s.uploadText("to be removed")["id"].(string)

	status, env := s.do(httptest.NewRequest(fiber.MethodDelete, "/cv/"+id, nil))
	s.Require().Equal(fiber.StatusOK, status)
	s.JSONEq(`{"message":"CV deleted successfully"}`, string(env.Data))

	status, env = s.do(httptest.NewRequest(fiber.MethodGet, "/cv/"+id, nil))
	s.Equal(fiber.StatusNotFound, status)
	s.Equal("NOT_FOUND", env.Error.Code)

	status, _ = s.do(httptest.NewRequest(fiber.MethodDelete, "/cv/"+id, nil))
	s.Equal(fiber.StatusNotFound, status)
}

func (s *CVHandlerSuite) TestUnknownRoute() {
	status, env := s.do(httptest.NewRequest(fiber.MethodGet, "/nope", nil))
	s.Equal(fiber.StatusNotFound, status)
	s.False(env.Success)
	s.Equal("NOT_FOUND", env.Error.Code)
}

func TestHealth(t *testing.T) {
	app := fiber.New()
	handler.NewHealthHandler("2.0.0").RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Status    string    `json:"status"`
			Timestamp time.Time `json:"timestamp"`
			Version   string    `json:"version"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "2.0.0", env.Data.Version)
	assert.False(t, env.Data.Timestamp.IsZero())
}
