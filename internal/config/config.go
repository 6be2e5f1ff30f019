// Package config loads server settings from the environment.
//
// Sources, highest precedence first: process environment, an optional .env
// file, an optional ai-debugger.yaml in the working directory, built-in
// defaults. Keys are the upper-case environment names (PORT, GEMINI_API_KEY, ...);
// in the YAML file the same names are written in lower case.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sakif/ai-debugger/internal/executor/python"
	"github.com/sakif/ai-debugger/internal/explain"
)

// Config is loaded once at startup and passed by value afterwards.
// Durations are configured in seconds (or milliseconds for KillGraceMS).
type Config struct {
	Port int `mapstructure:"port"`

	ExecutionTimeout        float64 `mapstructure:"execution_timeout"`
	MaxOutputLength         int     `mapstructure:"max_output_length"`
	KillGraceMS             int     `mapstructure:"kill_grace_ms"`
	ParseTimeout            float64 `mapstructure:"parse_timeout"`
	PythonBin               string  `mapstructure:"python_bin"`
	MaxConcurrentExecutions int64   `mapstructure:"max_concurrent_executions"`
	WorkDir                 string  `mapstructure:"work_dir"`

	GeminiAPIKey   string  `mapstructure:"gemini_api_key"`
	AIBaseURL      string  `mapstructure:"ai_base_url"`
	AIModel        string  `mapstructure:"ai_model"`
	AITimeout      float64 `mapstructure:"ai_timeout"`
	ExplainSuccess bool    `mapstructure:"explain_success"`

	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	CORSOrigins    string  `mapstructure:"cors_origins"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)

	v.SetDefault("execution_timeout", 5)
	v.SetDefault("max_output_length", 2000)
	v.SetDefault("kill_grace_ms", 500)
	v.SetDefault("parse_timeout", 2)
	v.SetDefault("python_bin", "python3")
	v.SetDefault("max_concurrent_executions", 8)
	v.SetDefault("work_dir", os.TempDir())

	v.SetDefault("gemini_api_key", "")
	v.SetDefault("ai_base_url", explain.DefaultBaseURL)
	v.SetDefault("ai_model", explain.DefaultModel)
	v.SetDefault("ai_timeout", 20)
	v.SetDefault("explain_success", false)

	v.SetDefault("rate_limit_rps", 2)
	v.SetDefault("rate_limit_burst", 5)
	v.SetDefault("cors_origins", "*")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Load reads the configuration. envFile names a dotenv file to load first;
// empty means ".env". A missing dotenv or YAML file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetConfigName("ai-debugger")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	positive := []struct {
		name  string
		value float64
	}{
		{"EXECUTION_TIMEOUT", c.ExecutionTimeout},
		{"MAX_OUTPUT_LENGTH", float64(c.MaxOutputLength)},
		{"KILL_GRACE_MS", float64(c.KillGraceMS)},
		{"PARSE_TIMEOUT", c.ParseTimeout},
		{"MAX_CONCURRENT_EXECUTIONS", float64(c.MaxConcurrentExecutions)},
		{"AI_TIMEOUT", c.AITimeout},
		{"RATE_LIMIT_RPS", c.RateLimitRPS},
		{"RATE_LIMIT_BURST", float64(c.RateLimitBurst)},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", p.name, p.value))
		}
	}
	if strings.TrimSpace(c.PythonBin) == "" {
		errs = append(errs, errors.New("PYTHON_BIN must not be empty"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Python converts the execution settings into the executor's config.
func (c *Config) Python() python.Config {
	return python.Config{
		Interpreter:   c.PythonBin,
		Timeout:       seconds(c.ExecutionTimeout),
		KillGrace:     time.Duration(c.KillGraceMS) * time.Millisecond,
		ParseTimeout:  seconds(c.ParseTimeout),
		MaxOutput:     c.MaxOutputLength,
		MaxConcurrent: c.MaxConcurrentExecutions,
		WorkDir:       c.WorkDir,
	}
}

// OpenAI returns the explanation client settings.
func (c *Config) OpenAI() explain.OpenAIConfig {
	return explain.OpenAIConfig{
		BaseURL: c.AIBaseURL,
		APIKey:  c.GeminiAPIKey,
		Model:   c.AIModel,
	}
}

// AIAvailable reports whether an API key was configured.
func (c *Config) AIAvailable() bool {
	return c.GeminiAPIKey != ""
}

// ExplainTimeout bounds one call to the explanation service.
func (c *Config) ExplainTimeout() time.Duration {
	return seconds(c.AITimeout)
}

// Origins splits CORS_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SlogLevel parses LOG_LEVEL (debug, info, warn, error).
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
