package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultMaxUploadBytes is the per-file upload ceiling (50 MiB).
const DefaultMaxUploadBytes int64 = 50 << 20

type Config struct {
	Port      string
	AppEnv    string
	JWTSecret string

	DatabaseURL string
	SslCertPath string

	AIAPIKey   string
	GenModel   string
	EmbedModel string
	EmbedDim   int

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	MaxUploadBytes        int64
	StrictPDFValidation   bool
	SortSlides            bool
	EnableExtendedFormats bool
	IndexWorkers          int
	CorsOrigins           []string

	// Warnings collects malformed values that fell back to defaults.
	Warnings []string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.AppEnv = getEnv("APP_ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	cfg.SslCertPath = getEnv("SSL_CERT_PATH", "")
	cfg.AIAPIKey = getEnv("GEMINI_API_KEY", "")
	cfg.GenModel = getEnv("GEN_MODEL", "gemini-1.5-flash")
	cfg.EmbedModel = getEnv("EMBED_MODEL", "text-embedding-004")
	cfg.EmbedDim = cfg.getEnvInt("EMBED_DIM", 768)
	cfg.AwsAccessKey = getEnv("AWS_ACCESS_KEY", "")
	cfg.AwsSecretKey = getEnv("AWS_SECRET_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "us-east-2")
	cfg.BucketName = getEnv("BUCKET_NAME", "")
	cfg.MaxUploadBytes = int64(cfg.getEnvInt("MAX_UPLOAD_BYTES", int(DefaultMaxUploadBytes)))
	cfg.StrictPDFValidation = cfg.getEnvBool("PDF_STRICT_VALIDATION", false)
	cfg.SortSlides = cfg.getEnvBool("PPTX_SORT_SLIDES", false)
	cfg.EnableExtendedFormats = cfg.getEnvBool("ENABLE_EXTENDED_FORMATS", false)
	cfg.IndexWorkers = cfg.getEnvInt("INDEX_WORKERS", 2)
	cfg.CorsOrigins = splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:8888"))

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.IndexWorkers <= 0 {
		cfg.IndexWorkers = 1
	}

	return cfg
}

// Validate reports the settings the API server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL not set"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET not set"))
	}
	if c.AIAPIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY not set"))
	}
	return errors.Join(errs...)
}

// ObjectStorageEnabled reports whether S3 publishing is configured.
func (c *Config) ObjectStorageEnabled() bool {
	return c.BucketName != "" && c.AwsAccessKey != "" && c.AwsSecretKey != ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func (c *Config) getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.Warnings = append(c.Warnings, key+"="+strconv.Quote(v)+" is not an int, using default "+strconv.Itoa(def))
		return def
	}
	return n
}

func (c *Config) getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.Warnings = append(c.Warnings, key+"="+strconv.Quote(v)+" is not a bool, using default "+strconv.FormatBool(def))
		return def
	}
	return b
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
