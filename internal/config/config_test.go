package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetabler/internal/config"
)

func TestParserConfig_PrimaryConfig_LegacyFallback(t *testing.T) {
	cfg := config.ParserConfig{
		Provider:     "openai",
		APIKey:       "sk-legacy",
		DefaultModel: "gpt-4o",
		MaxRetries:   3,
		TimeoutSecs:  30,
		Primary:      config.ParserProviderConfig{MaxTokens: 8000, Temperature: 0.1},
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "openai", primary.Provider)
	assert.Equal(t, "sk-legacy", primary.APIKey)
	assert.Equal(t, "gpt-4o", primary.DefaultModel)
	assert.Equal(t, 3, primary.MaxRetries)
	assert.Equal(t, 30, primary.TimeoutSecs)
	assert.Equal(t, 8000, primary.MaxTokens)
	assert.InDelta(t, 0.1, primary.Temperature, 1e-9)
}

func TestParserConfig_PrimaryConfig_ExplicitPrimary(t *testing.T) {
	cfg := config.ParserConfig{
		Provider: "legacy-should-be-ignored",
		Primary: config.ParserProviderConfig{
			Provider:     "claude",
			APIKey:       "sk-primary",
			DefaultModel: "claude-sonnet-4-20250514",
		},
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "claude", primary.Provider)
	assert.Equal(t, "sk-primary", primary.APIKey)
}

func TestParserConfig_SecondaryAndTertiary(t *testing.T) {
	cfg := config.ParserConfig{Provider: "openai"}
	assert.Nil(t, cfg.SecondaryConfig())
	assert.Nil(t, cfg.TertiaryConfig())

	cfg.Secondary = config.ParserProviderConfig{Provider: "gemini"}
	cfg.Tertiary = config.ParserProviderConfig{Provider: "claude"}
	require.NotNil(t, cfg.SecondaryConfig())
	require.NotNil(t, cfg.TertiaryConfig())
	assert.Equal(t, "gemini", cfg.SecondaryConfig().Provider)
	assert.Equal(t, "claude", cfg.TertiaryConfig().Provider)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.Server.Port)
	assert.Equal(t, 180*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, int64(10), cfg.Upload.MaxFileSizeMB)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxBytes())
	assert.Equal(t, "Weekly Timetable", cfg.Upload.DefaultTitle)
	assert.Equal(t, "single", cfg.Parser.Mode)
	assert.Equal(t, "openai", cfg.Parser.PrimaryConfig().Provider)
	assert.Equal(t, 8000, cfg.Parser.Primary.MaxTokens)
	assert.False(t, cfg.S3.Enabled)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Contains(t, cfg.CORS.AllowedOrigins, "http://localhost:3000")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TIMETABLER_PARSER_MODE", "fallback")
	t.Setenv("TIMETABLER_PARSER_PRIMARY_PROVIDER", "claude")
	t.Setenv("TIMETABLER_PARSER_SECONDARY_PROVIDER", "gemini")
	t.Setenv("TIMETABLER_UPLOAD_MAX_FILE_SIZE_MB", "25")
	t.Setenv("TIMETABLER_SERVER_PORT", "")
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "fallback", cfg.Parser.Mode)
	assert.Equal(t, "claude", cfg.Parser.PrimaryConfig().Provider)
	assert.Equal(t, "gemini", cfg.Parser.SecondaryConfig().Provider)
	assert.Equal(t, int64(25), cfg.Upload.MaxFileSizeMB)
	assert.Equal(t, ":9090", cfg.Server.Port)
}
