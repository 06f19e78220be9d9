package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	S3     S3Config
	Log    LogConfig
	Parser ParserConfig
	Upload UploadConfig
	CORS   CORSConfig
}

// UploadConfig holds limits for incoming timetable documents.
type UploadConfig struct {
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	TempDir       string `mapstructure:"temp_dir"`
	DefaultTitle  string `mapstructure:"default_title"`
}

// MaxBytes returns the upload size cap in bytes.
func (u *UploadConfig) MaxBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ParserProviderConfig holds settings for a single LLM parser provider.
type ParserProviderConfig struct {
	Provider     string  `mapstructure:"provider"`
	APIKey       string  `mapstructure:"api_key"`
	DefaultModel string  `mapstructure:"default_model"`
	MaxRetries   int     `mapstructure:"max_retries"`
	TimeoutSecs  int     `mapstructure:"timeout_secs"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	Temperature  float64 `mapstructure:"temperature"`
}

// ParserConfig holds LLM extraction settings with multi-provider support.
type ParserConfig struct {
	// Mode selects how providers are combined: single, fallback or dual.
	Mode string `mapstructure:"mode"`

	// Legacy flat fields (backwards-compatible)
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	// Multi-provider fields
	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
	Tertiary  ParserProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary parser provider config, falling back to legacy flat fields.
func (p *ParserConfig) PrimaryConfig() *ParserProviderConfig {
	if p.Primary.Provider != "" {
		return &p.Primary
	}
	return &ParserProviderConfig{
		Provider:     p.Provider,
		APIKey:       p.APIKey,
		DefaultModel: p.DefaultModel,
		MaxRetries:   p.MaxRetries,
		TimeoutSecs:  p.TimeoutSecs,
		MaxTokens:    p.Primary.MaxTokens,
		Temperature:  p.Primary.Temperature,
	}
}

// SecondaryConfig returns the secondary parser provider config, or nil if not configured.
func (p *ParserConfig) SecondaryConfig() *ParserProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary parser provider config, or nil if not configured.
func (p *ParserConfig) TertiaryConfig() *ParserProviderConfig {
	if p.Tertiary.Provider != "" {
		return &p.Tertiary
	}
	return nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`

	// AutoMigrate applies pending migrations when the server starts.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds settings for the bucket that archives uploaded documents.
type S3Config struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the TIMETABLER_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TIMETABLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":5000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "timetabler")
	v.SetDefault("db.password", "timetabler_secret")
	v.SetDefault("db.name", "timetabler_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)
	v.SetDefault("db.auto_migrate", true)

	// S3 defaults
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "timetabler-uploads")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 10)
	v.SetDefault("upload.temp_dir", os.TempDir())
	v.SetDefault("upload.default_title", "Weekly Timetable")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")

	// Parser defaults (legacy flat)
	v.SetDefault("parser.mode", "single")
	v.SetDefault("parser.provider", "openai")
	v.SetDefault("parser.api_key", "")
	v.SetDefault("parser.default_model", "gpt-4o")
	v.SetDefault("parser.max_retries", 2)
	v.SetDefault("parser.timeout_secs", 120)

	// Parser primary/secondary/tertiary defaults
	for _, slot := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("parser."+slot+".provider", "")
		v.SetDefault("parser."+slot+".api_key", "")
		v.SetDefault("parser."+slot+".default_model", "")
		v.SetDefault("parser."+slot+".max_retries", 2)
		v.SetDefault("parser."+slot+".timeout_secs", 120)
		v.SetDefault("parser."+slot+".max_tokens", 8000)
		v.SetDefault("parser."+slot+".temperature", 0.1)
	}

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "TIMETABLER_SERVER_PORT",
		"server.read_timeout":     "TIMETABLER_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "TIMETABLER_SERVER_WRITE_TIMEOUT",
		"server.environment":      "TIMETABLER_SERVER_ENVIRONMENT",
		"db.host":                 "TIMETABLER_DB_HOST",
		"db.port":                 "TIMETABLER_DB_PORT",
		"db.user":                 "TIMETABLER_DB_USER",
		"db.password":             "TIMETABLER_DB_PASSWORD",
		"db.name":                 "TIMETABLER_DB_NAME",
		"db.sslmode":              "TIMETABLER_DB_SSLMODE",
		"db.max_open":             "TIMETABLER_DB_MAX_OPEN",
		"db.max_idle":             "TIMETABLER_DB_MAX_IDLE",
		"db.auto_migrate":         "TIMETABLER_DB_AUTO_MIGRATE",
		"s3.enabled":              "TIMETABLER_S3_ENABLED",
		"s3.region":               "TIMETABLER_S3_REGION",
		"s3.bucket":               "TIMETABLER_S3_BUCKET",
		"s3.endpoint":             "TIMETABLER_S3_ENDPOINT",
		"s3.access_key":           "TIMETABLER_S3_ACCESS_KEY",
		"s3.secret_key":           "TIMETABLER_S3_SECRET_KEY",
		"log.level":               "TIMETABLER_LOG_LEVEL",
		"log.format":              "TIMETABLER_LOG_FORMAT",
		"upload.max_file_size_mb": "TIMETABLER_UPLOAD_MAX_FILE_SIZE_MB",
		"upload.temp_dir":         "TIMETABLER_UPLOAD_TEMP_DIR",
		"upload.default_title":    "TIMETABLER_UPLOAD_DEFAULT_TITLE",
		"cors.allowed_origins":    "TIMETABLER_CORS_ALLOWED_ORIGINS",
		"parser.mode":             "TIMETABLER_PARSER_MODE",
		"parser.provider":         "TIMETABLER_PARSER_PROVIDER",
		"parser.api_key":          "TIMETABLER_PARSER_API_KEY",
		"parser.default_model":    "TIMETABLER_PARSER_DEFAULT_MODEL",
		"parser.max_retries":      "TIMETABLER_PARSER_MAX_RETRIES",
		"parser.timeout_secs":     "TIMETABLER_PARSER_TIMEOUT_SECS",
	}
	for _, slot := range []string{"primary", "secondary", "tertiary"} {
		for _, field := range []string{"provider", "api_key", "default_model", "max_retries", "timeout_secs", "max_tokens", "temperature"} {
			key := "parser." + slot + "." + field
			envBindings[key] = "TIMETABLER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set a PORT env var. Use it if TIMETABLER_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TIMETABLER_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),

		AutoMigrate: v.GetBool("db.auto_migrate"),
	}
	cfg.S3 = S3Config{
		Enabled:   v.GetBool("s3.enabled"),
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
		TempDir:       v.GetString("upload.temp_dir"),
		DefaultTitle:  v.GetString("upload.default_title"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Parser = ParserConfig{
		Mode:         v.GetString("parser.mode"),
		Provider:     v.GetString("parser.provider"),
		APIKey:       v.GetString("parser.api_key"),
		DefaultModel: v.GetString("parser.default_model"),
		MaxRetries:   v.GetInt("parser.max_retries"),
		TimeoutSecs:  v.GetInt("parser.timeout_secs"),
		Primary:      loadProvider(v, "primary"),
		Secondary:    loadProvider(v, "secondary"),
		Tertiary:     loadProvider(v, "tertiary"),
	}

	return cfg, nil
}

func loadProvider(v *viper.Viper, slot string) ParserProviderConfig {
	prefix := "parser." + slot + "."
	return ParserProviderConfig{
		Provider:     v.GetString(prefix + "provider"),
		APIKey:       v.GetString(prefix + "api_key"),
		DefaultModel: v.GetString(prefix + "default_model"),
		MaxRetries:   v.GetInt(prefix + "max_retries"),
		TimeoutSecs:  v.GetInt(prefix + "timeout_secs"),
		MaxTokens:    v.GetInt(prefix + "max_tokens"),
		Temperature:  v.GetFloat64(prefix + "temperature"),
	}
}
