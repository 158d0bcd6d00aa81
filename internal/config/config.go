package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendFirebase = "firebase"

	AuthJWT      = "jwt"
	AuthFirebase = "firebase"
)

type Config struct {
	Port           string
	Env            string
	GinMode        string
	MedAPIURL      string
	MedAPITimeout  time.Duration
	ProfileBackend string
	DatabaseURL    string

	FirebaseCredentials string
	FirebaseDatabaseURL string

	AuthMode      string
	AuthJWTSecret string

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	SessionTTL     time.Duration
}

// Load reads the environment, optionally seeded from a .env file in the
// working directory. Load only parses; settings that matter to the HTTP
// server alone are checked by Validate.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("ENV", "production"),
		GinMode:             getEnv("GIN_MODE", "release"),
		MedAPIURL:           strings.TrimRight(getEnv("MEDAPI_URL", "http://127.0.0.1:8000"), "/"),
		ProfileBackend:      strings.ToLower(getEnv("PROFILE_BACKEND", BackendMemory)),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		FirebaseCredentials: os.Getenv("FIREBASE_SERVICE_ACCOUNT_KEY_PATH"),
		FirebaseDatabaseURL: os.Getenv("FIREBASE_DATABASE_URL"),
		AuthMode:            strings.ToLower(getEnv("AUTH_MODE", AuthJWT)),
		AuthJWTSecret:       os.Getenv("AUTH_JWT_SECRET"),
		CORSOrigins:         splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
	}

	var err error
	if cfg.MedAPITimeout, err = getDuration("MEDAPI_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "5"), 64); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(getEnv("RATE_LIMIT_BURST", "10")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
	}

	if cfg.MedAPITimeout < 0 {
		return nil, fmt.Errorf("MEDAPI_TIMEOUT must not be negative")
	}
	return cfg, nil
}

// Validate checks the backend and auth settings the HTTP server wires.
func (c *Config) Validate() error {
	switch c.ProfileBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when PROFILE_BACKEND=postgres")
		}
	case BackendFirebase:
		if err := c.requireFirebase("PROFILE_BACKEND"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown PROFILE_BACKEND %q", c.ProfileBackend)
	}

	switch c.AuthMode {
	case AuthJWT:
		if c.AuthJWTSecret == "" {
			return fmt.Errorf("AUTH_JWT_SECRET is required when AUTH_MODE=jwt")
		}
	case AuthFirebase:
		if err := c.requireFirebase("AUTH_MODE"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

func (c *Config) requireFirebase(key string) error {
	if c.FirebaseCredentials == "" || c.FirebaseDatabaseURL == "" {
		return fmt.Errorf("FIREBASE_SERVICE_ACCOUNT_KEY_PATH and FIREBASE_DATABASE_URL are required when %s=firebase", key)
	}
	return nil
}

// UsesFirebase reports whether any component needs a Firebase app.
func (c *Config) UsesFirebase() bool {
	return c.ProfileBackend == BackendFirebase || c.AuthMode == AuthFirebase
}

func (c *Config) Development() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
