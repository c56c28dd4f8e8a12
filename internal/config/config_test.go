package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_NAME", "APP_VERSION", "ENV", "PORT", "LOG_LEVEL", "OTEL_EXPORTER_OTLP_ENDPOINT", "CORS_ALLOWED_ORIGINS",
	"SECRET_KEY", "ALGORITHM", "ACCESS_TOKEN_EXPIRE_MINUTES", "BCRYPT_COST",
	"DB_DRIVER", "DB_URL", "MYSQL_HOST", "MYSQL_PORT", "MYSQL_USER", "MYSQL_PASSWORD", "MYSQL_DATABASE",
	"ES_HOST", "ES_PORT", "ES_USER", "ES_PASSWORD", "ES_USE_SSL", "ES_REFRESH",
	"VECTOR_DB_URL", "VECTOR_DB_TENANT", "VECTOR_DB_DATABASE", "VECTOR_DB_COLLECTION", "VECTOR_DB_TOKEN",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "LLM_MODEL", "LLM_TEMPERATURE", "EMBEDDING_MODEL",
}

// cleanEnv unsets every key Load reads and points ENV_FILE at envFile.
// Keys are removed rather than emptied because godotenv never overrides a
// variable that is present.
func cleanEnv(t *testing.T, envFile string) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	if envFile == "" {
		envFile = filepath.Join(t.TempDir(), "missing.env")
	}
	t.Setenv("ENV_FILE", envFile)
}

func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "InsurGuide", cfg.AppName)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, []string{"http://localhost:7860", "http://localhost:5173"}, cfg.CorsOrigins)

	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, "root:password@tcp(localhost:3306)/insurguide?charset=utf8mb4&parseTime=True&loc=Local", cfg.DB.DSN())

	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL())
	assert.NotEmpty(t, cfg.Auth.SecretKey, "development gets a generated secret")

	assert.Equal(t, "http://localhost:9200", cfg.ES.Address())
	assert.Equal(t, "false", cfg.ES.Refresh)
	assert.Equal(t, "http://localhost:8000", cfg.Vector.URL)
	assert.Equal(t, "insurguide_collection", cfg.Vector.Collection)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	assert.Empty(t, cfg.LLM.APIKey)
}

func TestLoad_GeneratedSecretsDiffer(t *testing.T) {
	cleanEnv(t, "")

	a, err := Load()
	require.NoError(t, err)
	b, err := Load()
	require.NoError(t, err)
	assert.NotEqual(t, a.Auth.SecretKey, b.Auth.SecretKey)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := `PORT=9000
SECRET_KEY=from-file
ALGORITHM=hs512
ES_HOST=es.internal
ES_USE_SSL=true
CORS_ALLOWED_ORIGINS=https://a.example,https://b.example
DB_DRIVER=sqlite
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	cleanEnv(t, path)
	// the process environment wins over the file
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "from-file", cfg.Auth.SecretKey)
	assert.Equal(t, "HS512", cfg.Auth.Algorithm)
	assert.Equal(t, "https://es.internal:9200", cfg.ES.Address())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CorsOrigins)
	assert.Equal(t, "insurguide.db", cfg.DB.DSN())
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "production without secret", env: map[string]string{"ENV": "production"}},
		{name: "unknown algorithm", env: map[string]string{"ALGORITHM": "RS256"}},
		{name: "zero ttl", env: map[string]string{"ACCESS_TOKEN_EXPIRE_MINUTES": "0"}},
		{name: "bcrypt cost too low", env: map[string]string{"BCRYPT_COST": "2"}},
		{name: "unknown driver", env: map[string]string{"DB_DRIVER": "oracle"}},
		{name: "postgres without url", env: map[string]string{"DB_DRIVER": "postgres"}},
		{name: "bad port number", env: map[string]string{"ES_PORT": "nine"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_ProductionWithSecret(t *testing.T) {
	cleanEnv(t, "")
	t.Setenv("ENV", "production")
	t.Setenv("SECRET_KEY", "prod-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "prod-secret", cfg.Auth.SecretKey)
}

func TestDBConfig_DSNPrefersURL(t *testing.T) {
	c := DBConfig{Driver: "postgres", URL: "postgres://u:p@db:5432/insurguide"}
	assert.Equal(t, "postgres://u:p@db:5432/insurguide", c.DSN())
}

func TestConfig_CorsOptions(t *testing.T) {
	opts := Config{CorsOrigins: []string{"https://app.example"}}.CorsConfig()
	assert.Equal(t, []string{"https://app.example"}, opts.AllowedOrigins)
	assert.True(t, opts.AllowCredentials)
	assert.Contains(t, opts.AllowedMethods, "DELETE")
}
