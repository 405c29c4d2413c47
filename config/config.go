package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultFiguresSubDir = "figures"
	DefaultAvatarsSubDir = "avatars"
)

const (
	defaultListenAddr     = ":8080"
	defaultMaxUploadBytes = 20 << 20
	defaultSMTPPort       = 587
)

type Config struct {
	// http server
	ListenAddr string
	BaseURL    string

	// database path
	DatabasePath string

	// media storage configuration
	MediaStoragePath string // primary root for processed uploads
	FiguresSubDir    string
	AvatarsSubDir    string
	MaxUploadBytes   int64

	// session cookies
	SessionSecret string
	SecureCookies bool

	// outgoing mail; when SMTPHost is empty, mail falls back to the log
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvBool(envVar string) bool {
	switch getEnvOrDefault(envVar, "false") {
	case "1", "true", "yes":
		return true
	}
	return false
}

func LoadConfig() (Config, error) {
	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET must be set")
	}

	cfg := Config{
		ListenAddr:       getEnvOrDefault("LISTEN_ADDR", defaultListenAddr),
		BaseURL:          getEnvOrDefault("BASE_URL", "http://localhost:8080"),
		DatabasePath:     getEnvOrDefault("DATABASE_PATH", "trickdeck.db"),
		MediaStoragePath: absMediaStorage,
		FiguresSubDir:    getEnvOrDefault("FIGURES_SUBDIR", DefaultFiguresSubDir),
		AvatarsSubDir:    getEnvOrDefault("AVATARS_SUBDIR", DefaultAvatarsSubDir),
		MaxUploadBytes:   int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),
		SessionSecret:    secret,
		SecureCookies:    getEnvBool("SECURE_COOKIES"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         getEnvIntOrDefault("SMTP_PORT", defaultSMTPPort),
		SMTPUsername:     os.Getenv("SMTP_USERNAME"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		MailFrom:         getEnvOrDefault("MAIL_FROM", "no-reply@trickdeck.local"),
	}

	return cfg, nil
}
