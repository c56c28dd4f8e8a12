package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/rohits-web03/insurguide/internal/utils"
)

type DBConfig struct {
	Driver string `env:"DB_DRIVER" envDefault:"mysql"`
	URL    string `env:"DB_URL"`

	MySQLHost     string `env:"MYSQL_HOST" envDefault:"localhost"`
	MySQLPort     int    `env:"MYSQL_PORT" envDefault:"3306"`
	MySQLUser     string `env:"MYSQL_USER" envDefault:"root"`
	MySQLPassword string `env:"MYSQL_PASSWORD" envDefault:"password"`
	MySQLDatabase string `env:"MYSQL_DATABASE" envDefault:"insurguide"`
}

// DSN returns DB_URL when set, otherwise a MySQL DSN built from the MYSQL_* keys.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	switch c.Driver {
	case "sqlite":
		return "insurguide.db"
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.MySQLUser, c.MySQLPassword, c.MySQLHost, c.MySQLPort, c.MySQLDatabase)
	}
	return ""
}

type AuthConfig struct {
	SecretKey     string `env:"SECRET_KEY"`
	Algorithm     string `env:"ALGORITHM" envDefault:"HS256"`
	ExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
	BcryptCost    int    `env:"BCRYPT_COST" envDefault:"10"`
}

func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.ExpireMinutes) * time.Minute
}

type ESConfig struct {
	Host     string `env:"ES_HOST" envDefault:"localhost"`
	Port     int    `env:"ES_PORT" envDefault:"9200"`
	User     string `env:"ES_USER"`
	Password string `env:"ES_PASSWORD"`
	UseSSL   bool   `env:"ES_USE_SSL" envDefault:"false"`
	// Refresh is passed to index and delete calls ("true", "false" or "wait_for").
	Refresh string `env:"ES_REFRESH" envDefault:"false"`
}

func (c ESConfig) Address() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

type VectorConfig struct {
	URL        string `env:"VECTOR_DB_URL" envDefault:"http://localhost:8000"`
	Tenant     string `env:"VECTOR_DB_TENANT" envDefault:"default_tenant"`
	Database   string `env:"VECTOR_DB_DATABASE" envDefault:"default_database"`
	Collection string `env:"VECTOR_DB_COLLECTION" envDefault:"insurguide_collection"`
	Token      string `env:"VECTOR_DB_TOKEN"`
}

type LLMConfig struct {
	APIKey         string  `env:"OPENAI_API_KEY"`
	BaseURL        string  `env:"OPENAI_BASE_URL"`
	Model          string  `env:"LLM_MODEL" envDefault:"gpt-3.5-turbo"`
	Temperature    float64 `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	EmbeddingModel string  `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
}

type Config struct {
	AppName      string   `env:"APP_NAME" envDefault:"InsurGuide"`
	AppVersion   string   `env:"APP_VERSION" envDefault:"1.0.0"`
	Environment  string   `env:"ENV" envDefault:"development"`
	Port         string   `env:"PORT" envDefault:"8080"`
	LogLevel     string   `env:"LOG_LEVEL" envDefault:"info"`
	OTLPEndpoint string   `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	CorsOrigins  []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:7860,http://localhost:5173"`

	Auth   AuthConfig
	DB     DBConfig
	ES     ESConfig
	Vector VectorConfig
	LLM    LLMConfig
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads the optional env file named by ENV_FILE (default .env) and then
// parses the process environment. It is meant to run once at start.
func Load() (Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		logrus.Debugf("No %s file found", envFile)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}
	if err := cfg.finalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) finalize() error {
	switch c.DB.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return errors.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.DB.Driver == "postgres" && c.DB.URL == "" {
		return errors.New("DB_URL is required for the postgres driver")
	}

	c.Auth.Algorithm = strings.ToUpper(c.Auth.Algorithm)
	switch c.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return errors.Errorf("unsupported ALGORITHM %q", c.Auth.Algorithm)
	}
	if c.Auth.ExpireMinutes <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return errors.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	if c.Auth.SecretKey == "" {
		if c.IsProduction() {
			return errors.New("SECRET_KEY is required in production")
		}
		secret, err := utils.GenerateSecureToken(32)
		if err != nil {
			return errors.Wrap(err, "generate development secret")
		}
		c.Auth.SecretKey = secret
		logrus.Warn("SECRET_KEY not set, using a random secret; tokens will not survive a restart")
	}
	return nil
}

func (c Config) CorsConfig() cors.Options {
	return cors.Options{
		AllowedOrigins:   c.CorsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
}
