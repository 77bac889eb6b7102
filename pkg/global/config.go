package global

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port         string
	Env          string
	DataDir      string
	UploadsDir   string
	StoreDriver  string // file, sqlite or mongo
	SQLitePath   string
	MongoURI     string
	MongoDB      string
	CartDriver   string // memory or redis
	CacheDriver  string // none or redis
	RedisAddress string
	RedisPass    string
	CartTTL      time.Duration
	CacheTTL     time.Duration
	SessionKey   []byte
	CookieSecure bool
	CORSOrigins  []string

	// Azure OpenAI. Reports run without AI insights when these are empty.
	AIEndpoint   string
	AIKey        string
	AIDeployment string
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:         GetEnvOrDefault("PORT", "8000"),
		Env:          GetEnvOrDefault("ENV", "development"),
		DataDir:      GetEnvOrDefault("DATA_DIR", "data"),
		UploadsDir:   GetEnvOrDefault("UPLOADS_DIR", "uploads"),
		StoreDriver:  strings.ToLower(GetEnvOrDefault("STORE_DRIVER", "file")),
		SQLitePath:   GetEnvOrDefault("SQLITE_PATH", "musicall.db"),
		MongoURI:     os.Getenv("MONGODB_URI"),
		MongoDB:      GetEnvOrDefault("MONGODB_DATABASE", "musicall"),
		CartDriver:   strings.ToLower(GetEnvOrDefault("CART_DRIVER", "memory")),
		CacheDriver:  strings.ToLower(GetEnvOrDefault("CACHE_DRIVER", "none")),
		RedisAddress: GetEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
		RedisPass:    GetEnvOrDefault("REDIS_PASSWORD", ""),
		CartTTL:      GetEnvDurationOrDefault("CART_TTL", 24*time.Hour),
		CacheTTL:     GetEnvDurationOrDefault("CACHE_TTL", 10*time.Minute),
		CookieSecure: GetEnvOrDefault("COOKIE_SECURE", "false") == "true",
		CORSOrigins:  splitList(GetEnvOrDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		AIEndpoint:   os.Getenv("AZURE_OPENAI_ENDPOINT"),
		AIKey:        os.Getenv("AZURE_OPENAI_API_KEY"),
		AIDeployment: GetEnvOrDefault("AZURE_OPENAI_DEPLOYMENT_NAME", "gpt-35-turbo"),
	}

	switch cfg.StoreDriver {
	case "file", "sqlite":
	case "mongo":
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGODB_URI is required when STORE_DRIVER=mongo")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.CartDriver != "memory" && cfg.CartDriver != "redis" {
		return nil, fmt.Errorf("unknown CART_DRIVER %q", cfg.CartDriver)
	}

	sessionKey := os.Getenv("SESSION_KEY")
	if sessionKey == "" {
		slog.Warn("SESSION_KEY not set, generating a random key. Sessions will not survive a restart.")
		cfg.SessionKey = randomKey(32)
	} else {
		decoded, err := base64.StdEncoding.DecodeString(sessionKey)
		if err != nil || len(decoded) < 32 {
			slog.Warn("SESSION_KEY is invalid or shorter than 32 bytes, generating a random key.")
			cfg.SessionKey = randomKey(32)
		} else {
			cfg.SessionKey = decoded
		}
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT, falling back to default", "PORT", cfg.Port)
		cfg.Port = "8000"
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

func randomKey(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return b
}
