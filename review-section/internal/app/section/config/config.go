package config

import (
	"errors"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"
)

var ErrNoProduct = errors.New("PRODUCT_ID or PRODUCT_URL is required")

type Config struct {
	API      APIConfig
	Product  ProductConfig
	Stars    StarsConfig
	Refresh  RefreshConfig
	Metrics  MetricsConfig
	LogLevel string
}

type APIConfig struct {
	BaseURL   string        // Адрес reviews-service
	AuthToken string        // JWT пользователя, от его имени пишутся отзывы
	Timeout   time.Duration // Таймаут HTTP запросов
}

type ProductConfig struct {
	ID  string
	URL string // Используется, если ID не задан: берется последний сегмент пути
}

type StarsConfig struct {
	Total           int
	Default         int
	Size            string
	FilledColor     string
	UnfilledColor   string
	FilledIconURL   string
	UnfilledIconURL string
}

type RefreshConfig struct {
	Schedule string // cron выражение, пусто - периодическое обновление выключено
}

type MetricsConfig struct {
	Addr string // пусто - /metrics не поднимается
}

func Load() (*Config, error) {
	return &Config{
		API: APIConfig{
			BaseURL:   strings.TrimRight(getEnv("REVIEWS_API_URL", "http://localhost:8083"), "/"),
			AuthToken: getEnv("REVIEWS_AUTH_TOKEN", ""),
			Timeout:   getEnvDuration("REVIEWS_API_TIMEOUT", 10*time.Second),
		},
		Product: ProductConfig{
			ID:  getEnv("PRODUCT_ID", ""),
			URL: getEnv("PRODUCT_URL", ""),
		},
		Stars: StarsConfig{
			Total:           getEnvInt("STAR_TOTAL", 5),
			Default:         getEnvInt("STAR_DEFAULT", 0),
			Size:            getEnv("STAR_SIZE", "medium"),
			FilledColor:     getEnv("STAR_FILLED_COLOR", "orange"),
			UnfilledColor:   getEnv("STAR_UNFILLED_COLOR", "grey"),
			FilledIconURL:   getEnv("STAR_FILLED_ICON_URL", ""),
			UnfilledIconURL: getEnv("STAR_UNFILLED_ICON_URL", ""),
		},
		Refresh: RefreshConfig{
			Schedule: getEnv("REFRESH_SCHEDULE", ""),
		},
		Metrics: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

// ResolveProductID возвращает ID товара явно или из последнего сегмента URL страницы
func (p ProductConfig) ResolveProductID() (string, error) {
	if id := strings.TrimSpace(p.ID); id != "" {
		return id, nil
	}
	if p.URL == "" {
		return "", ErrNoProduct
	}

	u, err := url.Parse(p.URL)
	if err != nil {
		return "", err
	}

	id := path.Base(strings.TrimRight(u.Path, "/"))
	if id == "" || id == "." || id == "/" {
		return "", ErrNoProduct
	}
	return id, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
