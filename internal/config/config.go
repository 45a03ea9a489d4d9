package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration for the daemon and the client.
type Config struct {
	App    AppConfig
	Client ClientConfig
	Auth   AuthConfig
	Logger LoggerConfig
}

// AppConfig controls the reference backend.
type AppConfig struct {
	Name     string
	Env      string
	Host     string
	Port     string
	PushPort string
	SeedFile string
}

// ClientConfig points the client core at a backend.
type ClientConfig struct {
	APIBaseURL            string
	PushURL               string
	RequestTimeoutSeconds int
}

// AuthConfig defines authentication parameters for the reference backend.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from environment variables, applying defaults
// where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "trackify"),
			Env:      getEnv("APP_ENV", "development"),
			Host:     getEnv("APP_HOST", "0.0.0.0"),
			Port:     getEnv("APP_PORT", "5000"),
			PushPort: getEnv("APP_PUSH_PORT", "5001"),
			SeedFile: getEnv("APP_SEED_FILE", ""),
		},
		Client: ClientConfig{
			APIBaseURL:            getEnv("TRACKIFY_API_URL", "http://127.0.0.1:5000/api"),
			PushURL:               getEnv("TRACKIFY_PUSH_URL", "ws://127.0.0.1:5001/push"),
			RequestTimeoutSeconds: getEnvAsInt("TRACKIFY_REQUEST_TIMEOUT_SECONDS", 15),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 10),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// PushAddr returns the push listener bind address.
func (a AppConfig) PushAddr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.PushPort)
}

// RequestTimeout returns the configured client timeout duration.
func (c ClientConfig) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Seed describes the reference backend's startup fixture.
type Seed struct {
	Users          []SeedUser          `yaml:"users"`
	ServiceCenters []SeedServiceCenter `yaml:"serviceCenters"`
}

// SeedUser is one pre-provisioned account.
type SeedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// SeedServiceCenter is one pre-provisioned repair shop.
type SeedServiceCenter struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	City     string `yaml:"city"`
	Phone    string `yaml:"phone"`
	Verified bool   `yaml:"verified"`
}

// LoadSeed parses a YAML seed fixture.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &seed, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
