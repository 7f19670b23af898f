package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendFile, cfg.FeedBackend)
	assert.Equal(t, '\t', cfg.Delimiter())
	assert.Equal(t, []string{"KOTAK BANK", "KOTAK PRIME"}, cfg.OnUsSectors)
	assert.Equal(t, 24, cfg.ExposureMonths)
	assert.Equal(t, time.Hour, cfg.ReportCacheTTL)
}

func TestNewConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", "")

	_, err := NewConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestNewConfigYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
port: "9090"
feed_backend: s3
s3_bucket: bureau-feeds
tradeline_feed: feeds/tl_base.csv
feature_feed: feeds/tl_features.csv
feed_delimiter: ","
on_us_sectors: ["OWN BANK"]
exposure_months: 12
report_cache_ttl: 30m
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "7070")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("S3_PATH_STYLE", "true")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port, "env overrides the file")
	assert.Equal(t, BackendS3, cfg.FeedBackend)
	assert.Equal(t, "bureau-feeds", cfg.S3Bucket)
	assert.Equal(t, ',', cfg.Delimiter())
	assert.Equal(t, []string{"OWN BANK"}, cfg.OnUsSectors)
	assert.Equal(t, 12, cfg.ExposureMonths)
	assert.Equal(t, 30*time.Minute, cfg.ReportCacheTTL)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.True(t, cfg.S3PathStyle)
}

func TestNewConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"postgres without DB_CONN", map[string]string{"FEED_BACKEND": "postgres", "DB_CONN": ""}, "DB_CONN"},
		{"s3 without bucket", map[string]string{"FEED_BACKEND": "s3", "S3_BUCKET": ""}, "S3_BUCKET"},
		{"unknown backend", map[string]string{"FEED_BACKEND": "ftp"}, "FEED_BACKEND"},
		{"bad delimiter", map[string]string{"FEED_DELIMITER": "||"}, "FEED_DELIMITER"},
		{"bad int", map[string]string{"REDIS_DB": "one"}, "REDIS_DB"},
		{"bad ttl", map[string]string{"REPORT_CACHE_TTL": "soon"}, "REPORT_CACHE_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_FILE", "")
			t.Setenv("JWT_SECRET", "s3cret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := NewConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"A", "B C"}, splitList(" A , ,B C,"))
	assert.Nil(t, splitList(""))
}
