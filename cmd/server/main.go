package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/cv-optimizer/internal/config"
	"github.com/fadilmartias/cv-optimizer/internal/domain/fiber/handler"
	"github.com/fadilmartias/cv-optimizer/internal/event"
	"github.com/fadilmartias/cv-optimizer/internal/logger"
	"github.com/fadilmartias/cv-optimizer/internal/repository"
	"github.com/fadilmartias/cv-optimizer/internal/server"
	"github.com/fadilmartias/cv-optimizer/internal/service"
	"github.com/fadilmartias/cv-optimizer/internal/storage"
	"github.com/fadilmartias/cv-optimizer/internal/usecase"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	appLog := logger.NewZapLogger(appConfig.Env)
	defer logger.Sync(appLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(ctx, config.LoadStorageConfig(), appLog)
	if err != nil {
		appLog.Fatal("could not initialize blob storage", err)
	}
	repo := repository.NewCVRepository(store, appLog)

	chat, err := newChatCompleter(config.LoadLLMConfig(), appLog)
	if err != nil {
		appLog.Fatal("could not initialize llm provider", err)
	}
	llm := service.NewLLMService(chat, appLog)

	publisher := newPublisher(appLog)
	defer publisher.Close()

	uc := usecase.NewCVUsecase(repo, llm, publisher, appLog)

	app := server.New(appConfig, appLog, repo.Ping,
		handler.NewHealthHandler(appConfig.Version),
		handler.NewCVHandler(uc, appConfig.MaxUploadSize, appLog),
	)

	if !appConfig.IsProduction() {
		go func() {
			ticker := time.NewTicker(1 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					appLog.Info("runtime stats", zap.Int("goroutines", runtime.NumGoroutine()))
				}
			}
		}()
	}

	go func() {
		<-ctx.Done()
		appLog.Info("shutting down")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			appLog.Error("graceful shutdown failed", err)
		}
	}()

	appLog.Info("server running",
		zap.String("port", appConfig.Port),
		zap.String("env", appConfig.Env),
		zap.String("llm_provider", chat.Name()),
	)
	if err := app.Listen(appConfig.Port); err != nil {
		appLog.Fatal("server stopped", err)
	}
}

func newChatCompleter(cfg *config.LLMConfig, log logger.Logger) (service.ChatCompleter, error) {
	switch cfg.Provider {
	case config.LLMProviderAzure, config.LLMProviderOpenAI:
		return service.NewOpenAIService(cfg, log), nil
	case config.LLMProviderGemini:
		return service.NewGeminiService(config.LoadGeminiConfig()), nil
	default:
		return nil, errors.New("unknown LLM_PROVIDER " + cfg.Provider)
	}
}

// newPublisher falls back to a no-op publisher when no broker is configured
// or reachable; status events are best effort.
func newPublisher(log logger.Logger) event.Publisher {
	mq := config.LoadRabbitMQConfig()
	if mq.URL == "" {
		return event.NoopPublisher{}
	}
	p, err := event.NewAMQPPublisher(mq.URL, mq.Exchange)
	if err != nil {
		log.Warn("rabbitmq unavailable, status events disabled", zap.Error(err))
		return event.NoopPublisher{}
	}
	return p
}
