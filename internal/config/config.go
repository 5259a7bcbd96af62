package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration. It is loaded once and
// passed explicitly into each component at construction; there is no
// package-global configuration state.
type Config struct {
	Server   Server   `mapstructure:"server"`
	LLM      LLM      `mapstructure:"llm"`
	Neo4j    Neo4j    `mapstructure:"neo4j"`
	Usage    Usage    `mapstructure:"usage"`
	Pipeline Pipeline `mapstructure:"pipeline"`
	Logging  Logging  `mapstructure:"logging"`
}

// Server holds HTTP server configuration.
type Server struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSEnabled  bool          `mapstructure:"cors_enabled"`
}

// LLM holds completion-provider configuration.
type LLM struct {
	DefaultModel string        `mapstructure:"default_model"`
	Temperature  float32       `mapstructure:"temperature"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`
	OpenAIAPIKey string        `mapstructure:"openai_api_key"`
	GeminiAPIKey string        `mapstructure:"gemini_api_key"`
}

// Neo4j holds graph store connection parameters.
type Neo4j struct {
	URI      string `mapstructure:"uri"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// Usage holds token/cost accounting configuration.
type Usage struct {
	LedgerPath string `mapstructure:"ledger_path"`
}

// Pipeline holds batch processing configuration.
type Pipeline struct {
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// Logging holds logging configuration.
type Logging struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from an optional YAML file, environment
// variables, and defaults, and returns the resulting Config.
func Load(configFile string) (*Config, error) {
	// Load .env file if it exists (for local development)
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.SetConfigName(".headliner")
		v.SetConfigType("yaml")
	}

	setDefaults(v)
	bindEnvironmentVariables(v)

	v.SetEnvPrefix("headliner")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "5m")
	v.SetDefault("server.cors_enabled", true)

	v.SetDefault("llm.default_model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 1000)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.retry_delay", "1s")

	v.SetDefault("neo4j.uri", "bolt://localhost:7687")
	v.SetDefault("neo4j.user", "neo4j")
	v.SetDefault("neo4j.password", "password")
	v.SetDefault("neo4j.database", "neo4j")

	v.SetDefault("usage.ledger_path", "token_usage.csv")

	v.SetDefault("pipeline.batch_timeout", "5m")
	v.SetDefault("pipeline.fetch_timeout", "30s")

	v.SetDefault("logging.level", "info")
}

// bindEnvironmentVariables binds well-known environment variables to
// their config keys, first match wins.
func bindEnvironmentVariables(v *viper.Viper) {
	bindEnvKeys(v, "llm.openai_api_key", []string{"OPENAI_API_KEY"})
	bindEnvKeys(v, "llm.gemini_api_key", []string{"GEMINI_API_KEY", "GOOGLE_GEMINI_API_KEY", "GOOGLE_AI_API_KEY"})

	bindEnvKeys(v, "neo4j.uri", []string{"NEO4J_URI"})
	bindEnvKeys(v, "neo4j.user", []string{"NEO4J_USER"})
	bindEnvKeys(v, "neo4j.password", []string{"NEO4J_PASSWORD"})
	bindEnvKeys(v, "neo4j.database", []string{"NEO4J_DATABASE"})
}

// bindEnvKeys binds the first found environment variable to a viper key.
func bindEnvKeys(v *viper.Viper, viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			v.Set(viperKey, value)
			return
		}
	}
}

// validate ensures required configuration is present and sane.
func validate(config *Config) error {
	var errors []string

	if config.LLM.OpenAIAPIKey == "" && config.LLM.GeminiAPIKey == "" {
		errors = append(errors, "at least one completion API key is required. Set OPENAI_API_KEY or GEMINI_API_KEY")
	}

	if config.LLM.MaxRetries < 0 {
		errors = append(errors, "llm.max_retries must not be negative")
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid server port: %d", config.Server.Port))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}
