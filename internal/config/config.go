package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the main application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Calendar  CalendarConfig  `yaml:"calendar"`
	Sources   []SourceConfig  `yaml:"sources"`
	Cache     CacheConfig     `yaml:"cache"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host       string        `yaml:"host"`
	Port       int           `yaml:"port"`
	SessionTTL time.Duration `yaml:"sessionTTL"`
}

// AuthConfig contains authentication settings
type AuthConfig struct {
	Method          string `yaml:"method"` // "none", "apikey" or "basic"
	APIKey          string `yaml:"apiKey,omitempty"`
	CredentialsFile string `yaml:"credentialsFile,omitempty"`
}

// CalendarConfig contains presentation settings
type CalendarConfig struct {
	Title string `yaml:"title"`
	View  string `yaml:"view"`  // "month" or "list"
	Mount string `yaml:"mount"` // id of the element the calendar is painted into
}

// SourceConfig represents a configured event source instance
type SourceConfig struct {
	ID     string                 `yaml:"id"`
	Type   string                 `yaml:"type"`
	Config map[string]interface{} `yaml:"config,omitempty"`
}

// CacheConfig contains event cache settings. An empty path disables the cache.
type CacheConfig struct {
	Path string        `yaml:"path"`
	TTL  time.Duration `yaml:"ttl"`
}

// SchedulerConfig contains cache warm-up settings
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn" or "error"
	Format string `yaml:"format"` // "auto", "text" or "json"
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes, defaults and validates a YAML configuration
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) setDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.SessionTTL == 0 {
		cfg.Server.SessionTTL = 30 * time.Minute
	}
	if cfg.Auth.Method == "" {
		cfg.Auth.Method = "none"
	}
	if cfg.Auth.Method == "basic" && cfg.Auth.CredentialsFile == "" {
		cfg.Auth.CredentialsFile = "launchcal.secret"
	}
	if cfg.Calendar.Title == "" {
		cfg.Calendar.Title = "Rocket launches"
	}
	if cfg.Calendar.View == "" {
		cfg.Calendar.View = "month"
	}
	if cfg.Calendar.Mount == "" {
		cfg.Calendar.Mount = "app"
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = []SourceConfig{{ID: "launchlibrary", Type: "launchlibrary"}}
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = time.Hour
	}
	if cfg.Scheduler.Interval == 0 {
		cfg.Scheduler.Interval = 15 * time.Minute
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "auto"
	}
}

// Validate checks the configuration for contradictions
func (cfg *Config) Validate() error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}

	switch cfg.Auth.Method {
	case "none", "basic":
	case "apikey":
		if cfg.Auth.APIKey == "" {
			return fmt.Errorf("auth method apikey requires apiKey")
		}
	default:
		return fmt.Errorf("unknown auth method %q", cfg.Auth.Method)
	}

	seen := make(map[string]bool, len(cfg.Sources))
	for i, src := range cfg.Sources {
		if src.ID == "" || src.Type == "" {
			return fmt.Errorf("source %d: id and type are required", i)
		}
		if seen[src.ID] {
			return fmt.Errorf("duplicate source id %q", src.ID)
		}
		seen[src.ID] = true
	}

	switch cfg.Logging.Format {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", cfg.Logging.Format)
	}

	if cfg.Cache.TTL < 0 || cfg.Scheduler.Interval < 0 || cfg.Server.SessionTTL < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

// Addr returns the listen address of the HTTP server
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
