package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	Backend     BackendConfig
	Session     SessionConfig
	Poller      PollerConfig
	Uploads     UploadConfig
	Redis       RedisConfig
	Leaderboard LeaderboardConfig
	CORS        CORSConfig
	Log         LogConfig
	Docs        DocsConfig
}

// BackendConfig points the portal at the grading backend.
type BackendConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HealthPath string
	CSRFCookie string
	CSRFHeader string

	MaxResponseBytes int64
}

// SessionConfig drives identity resolution and the route guard.
type SessionConfig struct {
	ResolveTimeout time.Duration
	PublicPaths    []string
	LoginURL       string
	LogoutURL      string
}

type PollerConfig struct {
	Interval time.Duration
}

// UploadConfig limits what the submit form accepts.
type UploadConfig struct {
	MaxBytes          int64
	AllowedExtensions []string
	ModelWeightsName  string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// LeaderboardConfig governs the optional leaderboard cache.
type LeaderboardConfig struct {
	CacheTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type DocsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Backend = BackendConfig{
		BaseURL:    strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
		Timeout:    parseDuration(v.GetString("BACKEND_TIMEOUT"), 30*time.Second),
		HealthPath: v.GetString("BACKEND_HEALTH_PATH"),
		CSRFCookie: v.GetString("CSRF_COOKIE_NAME"),
		CSRFHeader: v.GetString("CSRF_HEADER_NAME"),

		MaxResponseBytes: v.GetInt64("BACKEND_MAX_RESPONSE_BYTES"),
	}

	cfg.Session = SessionConfig{
		ResolveTimeout: parseDuration(v.GetString("SESSION_RESOLVE_TIMEOUT"), 10*time.Second),
		PublicPaths:    splitAndTrim(v.GetString("PUBLIC_PATHS")),
		LoginURL:       v.GetString("LOGIN_URL"),
		LogoutURL:      v.GetString("LOGOUT_URL"),
	}

	cfg.Poller = PollerConfig{
		Interval: parseDuration(v.GetString("POLL_INTERVAL"), 5*time.Second),
	}

	maxUpload := v.GetInt64("UPLOAD_MAX_BYTES")
	if maxUpload <= 0 {
		maxUpload = 1 << 30
	}
	cfg.Uploads = UploadConfig{
		MaxBytes:          maxUpload,
		AllowedExtensions: splitAndTrim(strings.ToLower(v.GetString("UPLOAD_ALLOWED_EXTENSIONS"))),
		ModelWeightsName:  v.GetString("MODEL_WEIGHTS_FILENAME"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Leaderboard = LeaderboardConfig{
		CacheTTL: parseDuration(v.GetString("LEADERBOARD_CACHE_TTL"), 30*time.Second),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Docs = DocsConfig{Enabled: v.GetBool("ENABLE_DOCS")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 3000)

	v.SetDefault("BACKEND_BASE_URL", "http://localhost:8080")
	v.SetDefault("BACKEND_TIMEOUT", "30s")
	v.SetDefault("BACKEND_HEALTH_PATH", "/actuator/health")
	v.SetDefault("BACKEND_MAX_RESPONSE_BYTES", 10<<20)
	v.SetDefault("CSRF_COOKIE_NAME", "XSRF-TOKEN")
	v.SetDefault("CSRF_HEADER_NAME", "X-XSRF-TOKEN")

	v.SetDefault("SESSION_RESOLVE_TIMEOUT", "10s")
	v.SetDefault("PUBLIC_PATHS", "/login")
	v.SetDefault("LOGIN_URL", "/oauth2/authorization/google")
	v.SetDefault("LOGOUT_URL", "/api/logout")

	v.SetDefault("POLL_INTERVAL", "5s")

	v.SetDefault("UPLOAD_MAX_BYTES", 1<<30)
	v.SetDefault("UPLOAD_ALLOWED_EXTENSIONS", ".zip,.pt")
	v.SetDefault("MODEL_WEIGHTS_FILENAME", "z_best.pt")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LEADERBOARD_CACHE_TTL", "30s")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ENABLE_DOCS", true)
}

// isMissingFile reports the os-level error viper returns when SetConfigFile points at a
// file that does not exist.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
