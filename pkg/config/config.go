package config

import (
	"context"
	"encoding/json"
	"time"
)

// Config represents the complete configuration for tplsettings.
type Config struct {
	Runtime RuntimeConfig `koanf:"runtime" validate:"required"`
	Store   StoreConfig   `koanf:"store"`
	Editor  EditorConfig  `koanf:"editor"  validate:"required"`
}

// RuntimeConfig contains runtime behavior configuration.
type RuntimeConfig struct {
	Environment string `koanf:"environment" validate:"oneof=development staging production" env:"TPLS_RUNTIME_ENVIRONMENT"`
	LogLevel    string `koanf:"log_level"   validate:"oneof=debug info warn error"          env:"TPLS_RUNTIME_LOG_LEVEL"`
}

// Strict reports whether duality violations are returned as errors.
func (r RuntimeConfig) Strict() bool {
	return r.Environment == "development"
}

// StoreConfig contains template store configuration. An empty BaseURL
// selects the in-process store.
type StoreConfig struct {
	BaseURL    string          `koanf:"base_url"    validate:"omitempty,url" env:"TPLS_STORE_BASE_URL"`
	APIKey     SensitiveString `koanf:"api_key"                              env:"TPLS_STORE_API_KEY"     sensitive:"true"`
	Timeout    time.Duration   `koanf:"timeout"     validate:"min=0"         env:"TPLS_STORE_TIMEOUT"`
	RetryCount int             `koanf:"retry_count" validate:"min=0,max=10"  env:"TPLS_STORE_RETRY_COUNT"`
	Publish    bool            `koanf:"publish"                              env:"TPLS_STORE_PUBLISH"`
}

// Remote reports whether a remote store is configured.
func (s StoreConfig) Remote() bool {
	return s.BaseURL != ""
}

// EditorConfig contains settings editor timing configuration.
type EditorConfig struct {
	ValidationYield  time.Duration `koanf:"validation_yield"    validate:"min=0" env:"TPLS_EDITOR_VALIDATION_YIELD"`
	MountDelay       time.Duration `koanf:"mount_delay"         validate:"min=0" env:"TPLS_EDITOR_MOUNT_DELAY"`
	AgentSaveWait    time.Duration `koanf:"agent_save_wait"     validate:"min=0" env:"TPLS_EDITOR_AGENT_SAVE_WAIT"`
	AgentSaveMaxWait time.Duration `koanf:"agent_save_max_wait" validate:"min=0" env:"TPLS_EDITOR_AGENT_SAVE_MAX_WAIT"`
	CollectionsTTL   time.Duration `koanf:"collections_ttl"     validate:"min=0" env:"TPLS_EDITOR_COLLECTIONS_TTL"`
}

// SensitiveString is a string that is redacted when printed or marshalled.
type SensitiveString string

const redacted = "[REDACTED]"

func (s SensitiveString) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

// Value returns the underlying secret.
func (s SensitiveString) Value() string {
	return string(s)
}

func (s SensitiveString) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s SensitiveString) MarshalYAML() (any, error) {
	return s.String(), nil
}

// Service loads and validates configuration.
type Service interface {
	// Load loads configuration from the specified sources with precedence order.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Validate checks if the configuration meets all validation requirements.
	Validate(config *Config) error
	// GetSource returns the source type that provided a configuration key.
	GetSource(key string) SourceType
}

// Source defines the interface for configuration sources.
type Source interface {
	Load() (map[string]any, error)
	Type() SourceType
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Load loads configuration using the default service.
func Load() (*Config, error) {
	return NewService().Load(context.Background())
}

// Default returns a Config with default values for development.
func Default() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			Environment: "development",
			LogLevel:    "info",
		},
		Store: StoreConfig{
			Timeout:    30 * time.Second,
			RetryCount: 2,
		},
		Editor: EditorConfig{
			ValidationYield:  50 * time.Millisecond,
			MountDelay:       100 * time.Millisecond,
			AgentSaveWait:    500 * time.Millisecond,
			AgentSaveMaxWait: 5 * time.Second,
			CollectionsTTL:   0,
		},
	}
}
