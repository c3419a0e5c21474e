package server

import (
	"context"
	"errors"
	"time"

	"github.com/fadilmartias/cv-optimizer/internal/apperror"
	"github.com/fadilmartias/cv-optimizer/internal/config"
	applog "github.com/fadilmartias/cv-optimizer/internal/logger"
	"github.com/fadilmartias/cv-optimizer/internal/middleware"
	"github.com/fadilmartias/cv-optimizer/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// multipart framing on top of the largest accepted file
const bodyOverhead = 1 << 20

type RouteRegistrar interface {
	RegisterRoutes(router fiber.Router)
}

// ReadinessFunc reports whether downstream dependencies can serve traffic.
type ReadinessFunc func(ctx context.Context) error

func New(cfg *config.AppConfig, log applog.Logger, ready ReadinessFunc, routes ...RouteRegistrar) *fiber.App {
	if log == nil {
		log = applog.NewNop()
	}

	bodyLimit := fiber.DefaultBodyLimit
	if cfg.MaxUploadSize > 0 {
		bodyLimit = int(cfg.MaxUploadSize) + bodyOverhead
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		BodyLimit:    bodyLimit,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		ErrorHandler: errorHandler(log),
	})

	if !cfg.IsProduction() {
		app.Use(logger.New())
	}
	app.Use(middleware.CORS(cfg.AllowedOrigins))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !cfg.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return cfg.IsProduction()
		},
	}))
	app.Use(healthcheck.New(healthcheck.Config{
		ReadinessProbe: func(c *fiber.Ctx) bool {
			if ready == nil {
				return true
			}
			if err := ready(c.UserContext()); err != nil {
				log.Warn("readiness probe failed", zap.Error(err))
				return false
			}
			return true
		},
	}))
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))
	app.Use(middleware.Identity(cfg.DemoUserID))

	for _, r := range routes {
		r.RegisterRoutes(app)
	}
	return app
}

// errorHandler renders framework errors (unknown routes, oversized bodies,
// recovered panics) in the same envelope as handler errors.
func errorHandler(log applog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return util.AppErrorResponse(c, appErr)
		}

		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		format := util.ErrorResponseFormat{Code: code, ErrorCode: apperror.CodeInternal, Message: "Internal server error"}
		switch code {
		case fiber.StatusNotFound:
			format.ErrorCode, format.Message = apperror.CodeNotFound, "Route not found"
		case fiber.StatusMethodNotAllowed:
			format.ErrorCode, format.Message = apperror.CodeInvalidInput, "Method not allowed"
		case fiber.StatusRequestEntityTooLarge:
			format.ErrorCode, format.Message = apperror.CodeFileTooLarge, "Request body too large"
		case fiber.StatusTooManyRequests:
			format.ErrorCode, format.Message = apperror.CodeRateLimited, "Too many requests, please try again later"
		default:
			if code < fiber.StatusInternalServerError {
				format.ErrorCode, format.Message = apperror.CodeInvalidInput, fe.Message
			} else {
				log.Error("unhandled request error", err, zap.String("path", c.Path()), zap.String("method", c.Method()))
			}
		}
		return util.ErrorResponse(c, format, err)
	}
}
