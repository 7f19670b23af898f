package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Feed backends.
const (
	BackendFile     = "file"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	Port string `yaml:"port"`

	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	LogOutput     string `yaml:"log_output"`
	LogMaxAgeDays int    `yaml:"log_max_age_days"`

	FeedBackend    string `yaml:"feed_backend"`
	TradelineFeed  string `yaml:"tradeline_feed"`
	FeatureFeed    string `yaml:"feature_feed"`
	FeedDelimiter  string `yaml:"feed_delimiter"`
	ReloadSchedule string `yaml:"reload_schedule"`

	S3Bucket           string `yaml:"s3_bucket"`
	S3Region           string `yaml:"s3_region"`
	S3Endpoint         string `yaml:"s3_endpoint"`
	S3PathStyle        bool   `yaml:"s3_path_style"`
	AWSAccessKeyID     string `yaml:"-"`
	AWSSecretAccessKey string `yaml:"-"`

	DBConn string `yaml:"db_conn"`

	RedisAddr      string        `yaml:"redis_addr"`
	RedisPassword  string        `yaml:"-"`
	RedisDB        int           `yaml:"redis_db"`
	ReportCacheTTL time.Duration `yaml:"report_cache_ttl"`

	JWTSecret           string `yaml:"-"`
	APIClientID         string `yaml:"api_client_id"`
	APIClientSecretHash string `yaml:"api_client_secret_hash"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	OnUsSectors    []string `yaml:"on_us_sectors"`
	ExposureMonths int      `yaml:"exposure_months"`

	SMTPHost       string `yaml:"smtp_host"`
	SMTPPort       string `yaml:"smtp_port"`
	SMTPUsername   string `yaml:"smtp_username"`
	SMTPPassword   string `yaml:"-"`
	SenderEmail    string `yaml:"sender_email"`
	RiskAlertEmail string `yaml:"risk_alert_email"`
}

func defaults() *Config {
	return &Config{
		Port:           "8080",
		LogLevel:       "info",
		LogFormat:      "json",
		LogOutput:      "stdout",
		FeedBackend:    BackendFile,
		TradelineFeed:  "data/tl_base.tsv",
		FeatureFeed:    "data/tl_features.tsv",
		FeedDelimiter:  "\t",
		S3Region:       "ap-south-1",
		RedisDB:        0,
		ReportCacheTTL: time.Hour,
		RateLimitRPS:   10,
		RateLimitBurst: 20,
		OnUsSectors:    []string{"KOTAK BANK", "KOTAK PRIME"},
		ExposureMonths: 24,
		SMTPPort:       "587",
	}
}

// NewConfig loads configuration from defaults, the optional YAML file named
// by CONFIG_FILE, and environment variables, in increasing precedence.
func NewConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.LogOutput = getEnv("LOG_OUTPUT", cfg.LogOutput)
	cfg.FeedBackend = strings.ToLower(getEnv("FEED_BACKEND", cfg.FeedBackend))
	cfg.TradelineFeed = getEnv("TRADELINE_FEED", cfg.TradelineFeed)
	cfg.FeatureFeed = getEnv("FEATURE_FEED", cfg.FeatureFeed)
	cfg.FeedDelimiter = unescapeDelimiter(getEnv("FEED_DELIMITER", cfg.FeedDelimiter))
	cfg.ReloadSchedule = getEnv("RELOAD_SCHEDULE", cfg.ReloadSchedule)
	cfg.S3Bucket = getEnv("S3_BUCKET", cfg.S3Bucket)
	cfg.S3Region = getEnv("S3_REGION", cfg.S3Region)
	cfg.S3Endpoint = getEnv("S3_ENDPOINT", cfg.S3Endpoint)
	cfg.AWSAccessKeyID = strings.TrimSpace(getEnv("AWS_ACCESS_KEY_ID", cfg.AWSAccessKeyID))
	cfg.AWSSecretAccessKey = strings.TrimSpace(getEnv("AWS_SECRET_ACCESS_KEY", cfg.AWSSecretAccessKey))
	cfg.DBConn = getEnv("DB_CONN", cfg.DBConn)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.APIClientID = getEnv("API_CLIENT_ID", cfg.APIClientID)
	cfg.APIClientSecretHash = getEnv("API_CLIENT_SECRET_HASH", cfg.APIClientSecretHash)
	cfg.SMTPHost = getEnv("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = getEnv("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUsername = getEnv("SMTP_USERNAME", cfg.SMTPUsername)
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", cfg.SMTPPassword)
	cfg.SenderEmail = getEnv("SENDER_EMAIL", cfg.SenderEmail)
	cfg.RiskAlertEmail = getEnv("RISK_ALERT_EMAIL", cfg.RiskAlertEmail)

	if v, ok := os.LookupEnv("ON_US_SECTORS"); ok {
		cfg.OnUsSectors = splitList(v)
	}

	var err error
	if cfg.LogMaxAgeDays, err = getEnvInt("LOG_MAX_AGE_DAYS", cfg.LogMaxAgeDays); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", cfg.RedisDB); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", cfg.RateLimitBurst); err != nil {
		return nil, err
	}
	if cfg.ExposureMonths, err = getEnvInt("EXPOSURE_MONTHS", cfg.ExposureMonths); err != nil {
		return nil, err
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_RPS"); ok {
		if cfg.RateLimitRPS, err = strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", v, err)
		}
	}
	if v, ok := os.LookupEnv("S3_PATH_STYLE"); ok {
		if cfg.S3PathStyle, err = strconv.ParseBool(strings.TrimSpace(v)); err != nil {
			return nil, fmt.Errorf("invalid S3_PATH_STYLE %q: %w", v, err)
		}
	}
	if v, ok := os.LookupEnv("REPORT_CACHE_TTL"); ok {
		if cfg.ReportCacheTTL, err = time.ParseDuration(strings.TrimSpace(v)); err != nil {
			return nil, fmt.Errorf("invalid REPORT_CACHE_TTL %q: %w", v, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.FeedDelimiter) != 1 {
		return fmt.Errorf("FEED_DELIMITER must be a single character, got %q", c.FeedDelimiter)
	}
	if c.ExposureMonths <= 0 {
		return fmt.Errorf("EXPOSURE_MONTHS must be positive")
	}

	switch c.FeedBackend {
	case BackendFile:
		if c.TradelineFeed == "" || c.FeatureFeed == "" {
			return fmt.Errorf("TRADELINE_FEED and FEATURE_FEED are required for the file backend")
		}
	case BackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 backend")
		}
		if c.TradelineFeed == "" || c.FeatureFeed == "" {
			return fmt.Errorf("TRADELINE_FEED and FEATURE_FEED are required for the s3 backend")
		}
	case BackendPostgres:
		if c.DBConn == "" {
			return fmt.Errorf("DB_CONN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown FEED_BACKEND %q", c.FeedBackend)
	}
	return nil
}

// Delimiter returns the feed delimiter as a rune.
func (c *Config) Delimiter() rune {
	return rune(c.FeedDelimiter[0])
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
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

// unescapeDelimiter accepts the literal "\t" and "tab" for a tab delimiter.
func unescapeDelimiter(s string) string {
	switch s {
	case `\t`, "tab":
		return "\t"
	}
	return s
}
