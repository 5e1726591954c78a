package config

import (
	"os"
	"strings"
	"time"

	"github.com/AdamBeresnev/matchday/internal/logging"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

type OAuthProvider struct {
	Key         string
	Secret      string
	CallbackURL string
}

func (p OAuthProvider) Enabled() bool {
	return p.Key != "" && p.Secret != ""
}

type Config struct {
	HTTPAddr        string
	DatabasePath    string
	LogLevel        logging.Level
	SessionLifetime time.Duration

	AdminUsername string
	AdminPassword string
	AdminEmails   []string

	CORSAllowedOrigins []string

	Discord OAuthProvider
	Google  OAuthProvider
}

// Load reads a .env file when one exists and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logging.Default().Info("no .env file found, using environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from getenv, applying defaults for unset values.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	level, err := logging.ParseLevel(get("LOG_LEVEL", "info"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid LOG_LEVEL")
	}

	lifetime, err := time.ParseDuration(get("SESSION_LIFETIME", "24h"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid SESSION_LIFETIME")
	}
	if lifetime <= 0 {
		return nil, errors.Newf("SESSION_LIFETIME must be positive, got %s", lifetime)
	}

	cfg := &Config{
		HTTPAddr:           get("HTTP_ADDR", ":8080"),
		DatabasePath:       get("DATABASE_PATH", "matchday.db"),
		LogLevel:           level,
		SessionLifetime:    lifetime,
		AdminUsername:      get("ADMIN_USERNAME", ""),
		AdminPassword:      getenv("ADMIN_PASSWORD"),
		AdminEmails:        splitList(getenv("ADMIN_EMAILS")),
		CORSAllowedOrigins: splitList(get("CORS_ALLOWED_ORIGINS", "*")),
		Discord: OAuthProvider{
			Key:         getenv("DISCORD_KEY"),
			Secret:      getenv("DISCORD_SECRET"),
			CallbackURL: getenv("DISCORD_CALLBACK_URL"),
		},
		Google: OAuthProvider{
			Key:         getenv("GOOGLE_KEY"),
			Secret:      getenv("GOOGLE_SECRET"),
			CallbackURL: getenv("GOOGLE_CALLBACK_URL"),
		},
	}

	if (cfg.AdminUsername == "") != (cfg.AdminPassword == "") {
		return nil, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
