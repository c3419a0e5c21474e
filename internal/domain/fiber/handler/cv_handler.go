package handler

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/fadilmartias/cv-optimizer/internal/apperror"
	"github.com/fadilmartias/cv-optimizer/internal/dto"
	"github.com/fadilmartias/cv-optimizer/internal/logger"
	"github.com/fadilmartias/cv-optimizer/internal/middleware"
	"github.com/fadilmartias/cv-optimizer/internal/model"
	"github.com/fadilmartias/cv-optimizer/internal/response"
	"github.com/fadilmartias/cv-optimizer/internal/usecase"
	"github.com/fadilmartias/cv-optimizer/internal/util"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const uploadFormField = "file"

type CVHandler struct {
	uc            *usecase.CVUsecase
	maxUploadSize int64
	log           logger.Logger
}

func NewCVHandler(uc *usecase.CVUsecase, maxUploadSize int64, log logger.Logger) *CVHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &CVHandler{uc: uc, maxUploadSize: maxUploadSize, log: log.With(zap.String("component", "cv_handler"))}
}

func (h *CVHandler) RegisterRoutes(router fiber.Router) {
	llmLimit := middleware.RateLimiter(10, 1*time.Minute)

	cv := router.Group("/cv")
	cv.Post("/upload", h.Upload)
	cv.Post("/upload-text", h.UploadText)
	cv.Get("/", h.List)
	cv.Get("/:cvId", h.Get)
	cv.Delete("/:cvId", h.Delete)
	cv.Post("/:cvId/parse", llmLimit, h.Parse)
	cv.Post("/:cvId/optimize", llmLimit, h.Optimize)
	cv.Post("/:cvId/match", llmLimit, h.Match)
	cv.Get("/:cvId/insights", llmLimit, h.Insights)
}

// fail renders err and logs server-side failures with their cause.
func (h *CVHandler) fail(c *fiber.Ctx, err error) error {
	appErr := apperror.From(err)
	if appErr.Status() >= fiber.StatusInternalServerError {
		h.log.Error(appErr.Message, appErr.Err,
			zap.String("code", string(appErr.Code)),
			zap.String("path", c.Path()),
			zap.String("cv_id", c.Params("cvId")),
		)
	}
	return util.AppErrorResponse(c, appErr)
}

func contentType(c *fiber.Ctx) string {
	return strings.ToLower(strings.TrimSpace(c.Get(fiber.HeaderContentType)))
}

// Upload accepts a multipart file in field "file" or a JSON text body.
func (h *CVHandler) Upload(c *fiber.Ctx) error {
	ct := contentType(c)
	switch {
	case strings.HasPrefix(ct, fiber.MIMEMultipartForm):
		return h.uploadFile(c)
	case strings.HasPrefix(ct, fiber.MIMEApplicationJSON):
		return h.uploadText(c)
	default:
		return h.fail(c, apperror.New(apperror.CodeInvalidContentType,
			"Content-Type must be multipart/form-data or application/json", nil))
	}
}

func (h *CVHandler) UploadText(c *fiber.Ctx) error {
	if !strings.HasPrefix(contentType(c), fiber.MIMEApplicationJSON) {
		return h.fail(c, apperror.New(apperror.CodeInvalidContentType, "Content-Type must be application/json", nil))
	}
	return h.uploadText(c)
}

func (h *CVHandler) uploadText(c *fiber.Ctx) error {
	var req dto.UploadTextRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, apperror.New(apperror.CodeInvalidInput, "Invalid JSON body", err))
	}
	rec, err := h.uc.UploadText(c.UserContext(), middleware.UserID(c), req.Text, req.FileName)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Code: fiber.StatusCreated, Data: rec})
}

func (h *CVHandler) uploadFile(c *fiber.Ctx) error {
	file, err := c.FormFile(uploadFormField)
	if err != nil {
		return h.fail(c, apperror.New(apperror.CodeInvalidInput, "CV file is required", err))
	}
	if h.maxUploadSize > 0 && file.Size > h.maxUploadSize {
		return h.fail(c, apperror.New(apperror.CodeFileTooLarge,
			fmt.Sprintf("File size exceeds the %s limit", units.HumanSize(float64(h.maxUploadSize))), nil))
	}
	if !util.IsSupportedFile(file.Filename) {
		return h.fail(c, apperror.New(apperror.CodeInvalidFileType, "Only PDF, DOCX and TXT files are supported", nil))
	}

	f, err := file.Open()
	if err != nil {
		return h.fail(c, apperror.NewInternal("Cannot read uploaded file", err))
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return h.fail(c, apperror.NewInternal("Cannot read uploaded file", err))
	}

	rec, err := h.uc.UploadFile(c.UserContext(), middleware.UserID(c), file.Filename, data)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Code: fiber.StatusCreated, Data: rec})
}

func (h *CVHandler) Get(c *fiber.Ctx) error {
	rec, err := h.uc.Get(c.UserContext(), middleware.UserID(c), c.Params("cvId"))
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Data: rec})
}

// List returns the caller's CVs, newest first. page and page_size are
// optional; without them every record is returned.
func (h *CVHandler) List(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if q := strings.TrimSpace(c.Query("userId")); q != "" && q != userID {
		return h.fail(c, apperror.New(apperror.CodeForbidden, "Cannot list CVs of another user", nil))
	}

	records, err := h.uc.List(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err)
	}

	if c.Query("page") == "" && c.Query("page_size") == "" {
		return util.SuccessResponse(c, util.SuccessResponseFormat{Data: records})
	}
	p := response.NewPagination(c.QueryInt("page", 1), c.QueryInt("page_size", 10), len(records))
	lo, hi := p.Bounds()
	page := make([]model.CVRecord, 0, hi-lo)
	page = append(page, records[lo:hi]...)
	return util.SuccessResponse(c, util.SuccessResponseFormat{Data: page, Pagination: p})
}

func (h *CVHandler) Parse(c *fiber.Ctx) error {
	parsed, err := h.uc.Parse(c.UserContext(), middleware.UserID(c), c.Params("cvId"))
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Data: parsed})
}

func (h *CVHandler) Optimize(c *fiber.Ctx) error {
	optimized, err := h.uc.Optimize(c.UserContext(), middleware.UserID(c), c.Params("cvId"))
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Data: optimized})
}

func (h *CVHandler) Match(c *fiber.Ctx) error {
	var req dto.JobMatchRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return h.fail(c, apperror.New(apperror.CodeInvalidInput, "Invalid JSON body", err))
		}
	}
	result, err := h.uc.Match(c.UserContext(), middleware.UserID(c), c.Params("cvId"), req.JobDescription)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Data: result})
}

func (h *CVHandler) Insights(c *fiber.Ctx) error {
	insights, err := h.uc.Insights(c.UserContext(), middleware.UserID(c), c.Params("cvId"))
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Data: insights})
}

func (h *CVHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), middleware.UserID(c), c.Params("cvId")); err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{Data: dto.MessageDTO{Message: "CV deleted successfully"}})
}
