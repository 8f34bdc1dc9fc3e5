package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cricgurufans-star/AI-Video-Maker/internal/architect"
)

type Config struct {
	GeminiAPIKey  string
	TelegramToken string

	LogLevel string
	Debug    bool

	PreferIPv4      bool
	HTTPTimeout     time.Duration
	DownloadTimeout time.Duration

	GeminiBaseURL    string
	GeminiAPIVersion string
	VideoModel       string
	VideoResolution  architect.Resolution
	PollInterval     time.Duration

	WebAddr     string
	SessionIdle time.Duration
	PlaybackTTL time.Duration

	ProgressEvery      time.Duration
	MaxConcurrent      int
	MediaGroupDebounce time.Duration
}

// Load reads the environment. Only GEMINI_API_KEY is required here; the
// bot additionally calls RequireTelegram.
func Load() (Config, error) {
	cfg := Config{
		LogLevel:           strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))),
		Debug:              getEnvBool("DEBUG", false),
		PreferIPv4:         getEnvBool("PREFER_IPV4", true),
		HTTPTimeout:        time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,
		DownloadTimeout:    time.Duration(getEnvInt("DOWNLOAD_TIMEOUT_SECONDS", 600)) * time.Second,
		GeminiBaseURL:      strings.TrimSpace(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")),
		GeminiAPIVersion:   strings.TrimSpace(getEnv("GEMINI_API_VERSION", "v1beta")),
		VideoModel:         strings.TrimSpace(getEnv("VIDEO_MODEL", "veo-3.1-fast-generate-preview")),
		PollInterval:       time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 5)) * time.Second,
		WebAddr:            strings.TrimSpace(getEnv("WEB_ADDR", ":8080")),
		SessionIdle:        time.Duration(getEnvInt("SESSION_IDLE_MINUTES", 60)) * time.Minute,
		PlaybackTTL:        time.Duration(getEnvInt("PLAYBACK_TTL_MINUTES", 120)) * time.Minute,
		ProgressEvery:      time.Duration(getEnvInt("PROGRESS_EVERY_SECONDS", 15)) * time.Second,
		MaxConcurrent:      getEnvInt("MAX_CONCURRENT", 4),
		MediaGroupDebounce: time.Duration(getEnvInt("MEDIA_GROUP_DEBOUNCE_MS", 1200)) * time.Millisecond,
	}

	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))

	if cfg.GeminiAPIKey == "" {
		return Config{}, errors.New("GEMINI_API_KEY is required")
	}

	resolution, ok := architect.ParseResolution(getEnv("VIDEO_RESOLUTION", string(architect.HD)))
	if !ok {
		return Config{}, fmt.Errorf("VIDEO_RESOLUTION must be %s or %s", architect.HD, architect.FHD)
	}
	cfg.VideoResolution = resolution

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = 600 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.SessionIdle <= 0 {
		cfg.SessionIdle = time.Hour
	}
	if cfg.PlaybackTTL <= 0 {
		cfg.PlaybackTTL = 2 * time.Hour
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 15 * time.Second
	}

	return cfg, nil
}

func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
