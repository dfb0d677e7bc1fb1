package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every runtime setting of the service.
type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Engine  EngineConfig
	Store   StoreConfig
	Display DisplayConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	auth, err := loadAuthConfig()
	if err != nil {
		return nil, err
	}

	engine, err := loadEngineConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		Auth:    auth,
		Engine:  engine,
		Store:   StoreConfig{SQLitePath: strings.TrimSpace(os.Getenv("SQLITE_PATH"))},
		Display: DisplayConfig{Timezone: getEnvOrDefault("DISPLAY_TIMEZONE", "Asia/Kolkata")},
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AuthConfig holds token validation and login credentials.
type AuthConfig struct {
	JWTSecret         string
	TokenTTL          time.Duration
	LoginEmail        string
	LoginPasswordHash string
}

// LoginEnabled reports whether the login endpoint has credentials to
// check against.
func (c AuthConfig) LoginEnabled() bool {
	return c.LoginEmail != "" && c.LoginPasswordHash != ""
}

func loadAuthConfig() (AuthConfig, error) {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		return AuthConfig{}, fmt.Errorf("JWT_SECRET is required")
	}

	ttlMinutes := 60
	if override, err := parseOptionalIntEnv("TOKEN_TTL_MINUTES"); err != nil {
		return AuthConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return AuthConfig{}, fmt.Errorf("TOKEN_TTL_MINUTES must be positive")
		}
		ttlMinutes = *override
	}

	return AuthConfig{
		JWTSecret:         secret,
		TokenTTL:          time.Duration(ttlMinutes) * time.Minute,
		LoginEmail:        strings.TrimSpace(strings.ToLower(os.Getenv("LOGIN_EMAIL"))),
		LoginPasswordHash: strings.TrimSpace(os.Getenv("LOGIN_PASSWORD_HASH")),
	}, nil
}

// EngineConfig describes the out-of-process answer engine invocation.
type EngineConfig struct {
	// Command is the program plus fixed leading arguments; the question
	// and user id are appended as two trailing positional arguments.
	Command        []string
	MaxOutputBytes int64
	Timeout        time.Duration
}

func loadEngineConfig() (EngineConfig, error) {
	command := strings.Fields(os.Getenv("ANSWER_ENGINE"))
	if len(command) == 0 {
		return EngineConfig{}, fmt.Errorf("ANSWER_ENGINE is required, e.g. \"python3 scripts/rag_process.py\"")
	}

	maxOutputMB := 50
	if override, err := parseOptionalIntEnv("ENGINE_MAX_OUTPUT_MB"); err != nil {
		return EngineConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return EngineConfig{}, fmt.Errorf("ENGINE_MAX_OUTPUT_MB must be positive")
		}
		maxOutputMB = *override
	}

	// 0 disables the deadline; a hung engine then holds its request open.
	timeoutSeconds := 120
	if override, err := parseOptionalIntEnv("ENGINE_TIMEOUT_SECONDS"); err != nil {
		return EngineConfig{}, err
	} else if override != nil {
		if *override < 0 {
			return EngineConfig{}, fmt.Errorf("ENGINE_TIMEOUT_SECONDS must not be negative")
		}
		timeoutSeconds = *override
	}

	return EngineConfig{
		Command:        command,
		MaxOutputBytes: int64(maxOutputMB) * 1024 * 1024,
		Timeout:        time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// StoreConfig selects conversation persistence. An empty SQLitePath
// falls back to the in-memory store.
type StoreConfig struct {
	SQLitePath string
}

// DisplayConfig holds rendering settings used by timeline consumers.
type DisplayConfig struct {
	Timezone string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
