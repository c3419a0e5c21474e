package config

import (
	"log"
	"os"
	"strings"
	"sync"

	"github.com/docker/go-units"
)

const defaultMaxUploadSize = "10MB"

type AppConfig struct {
	Name           string
	Env            string
	Port           string
	BaseURL        string
	Version        string
	DemoUserID     string
	AllowedOrigins string
	MaxUploadSize  int64
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
			log.Printf("Warning: APP_ENV not set, defaulting to %s", env)
		}
		appConfig = &AppConfig{
			Name:           getEnv("APP_NAME", "cv-optimizer"),
			Env:            env,
			Port:           getEnv("APP_PORT", ":7071"),
			BaseURL:        os.Getenv("APP_URL"),
			Version:        getEnv("APP_VERSION", "1.0.0"),
			DemoUserID:     getEnv("DEMO_USER_ID", "demo-user"),
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
			MaxUploadSize:  parseSize(os.Getenv("MAX_UPLOAD_SIZE")),
		}
	})
	return appConfig
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// parseSize accepts human sizes such as "10MB" or "512KiB".
func parseSize(raw string) int64 {
	if strings.TrimSpace(raw) == "" {
		raw = defaultMaxUploadSize
	}
	size, err := units.FromHumanSize(raw)
	if err != nil || size <= 0 {
		log.Printf("Warning: invalid MAX_UPLOAD_SIZE %q, defaulting to %s", raw, defaultMaxUploadSize)
		size, _ = units.FromHumanSize(defaultMaxUploadSize)
	}
	return size
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
