package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// --- Configuration Structs ---

// APIConfig controls access to the Wikidata Action API.
type APIConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Language    string        `mapstructure:"language"`
	UserAgent   string        `mapstructure:"user_agent"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RateLimit   float64       `mapstructure:"rate_limit"`
	Burst       int           `mapstructure:"burst"`
	MaxRetries  int           `mapstructure:"max_retries"`
	BackoffBase time.Duration `mapstructure:"backoff_base"`
}

// OutputConfig controls where and how comparison results are written.
type OutputConfig struct {
	Dir     string   `mapstructure:"dir"`
	Formats []string `mapstructure:"formats"`
	Charts  bool     `mapstructure:"charts"`
	// Database is an optional export target: a .duckdb file path or a
	// postgres:// URI. Empty disables database export.
	Database string `mapstructure:"database"`
}

// ChartsConfig controls diagram rendering.
type ChartsConfig struct {
	Theme  string `mapstructure:"theme"`
	Width  string `mapstructure:"width"`
	Height string `mapstructure:"height"`
}

// ServerConfig controls the serve command.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Showcase is a preset entity pair offered in the interactive menu.
type Showcase struct {
	Name   string `mapstructure:"name"`
	Source string `mapstructure:"source"`
	Target string `mapstructure:"target"`
}

// UIConfig controls interactive behavior.
type UIConfig struct {
	NonInteractive bool       `mapstructure:"non_interactive"`
	Showcases      []Showcase `mapstructure:"showcases"`
}

// Config is the root configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Output  OutputConfig  `mapstructure:"output"`
	Charts  ChartsConfig  `mapstructure:"charts"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	UI      UIConfig      `mapstructure:"ui"`
}

// knownFormats lists the dump formats the writers factory can produce.
var knownFormats = map[string]bool{
	"json":    true,
	"csv":     true,
	"arrow":   true,
	"parquet": true,
}

// --- Load Configuration ---

// LoadConfig reads the configuration from the given file, or from the default
// search paths when configPath is empty. Missing files yield the defaults.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("wikiparity")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.wikiparity")
		v.AddConfigPath("/etc/wikiparity")
	}

	v.SetEnvPrefix("WIKIPARITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit file must exist; default search paths may come up empty.
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://www.wikidata.org/w/api.php")
	v.SetDefault("api.language", "en")
	v.SetDefault("api.user_agent", "wikiparity/0.1 (https://github.com/wikiparity/wikiparity)")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.rate_limit", 5.0)
	v.SetDefault("api.burst", 2)
	v.SetDefault("api.max_retries", 3)
	v.SetDefault("api.backoff_base", 500*time.Millisecond)

	v.SetDefault("output.dir", "wikidata_data")
	v.SetDefault("output.formats", []string{"json", "csv"})
	v.SetDefault("output.charts", true)
	v.SetDefault("output.database", "")

	v.SetDefault("charts.theme", "white")
	v.SetDefault("charts.width", "1200px")
	v.SetDefault("charts.height", "800px")

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "wikiparity.log")

	v.SetDefault("ui.non_interactive", false)
	v.SetDefault("ui.showcases", []Showcase{
		{Name: "Douglas Adams vs Terry Pratchett", Source: "Q42", Target: "Q46248"},
		{Name: "Berlin vs Hamburg", Source: "Q64", Target: "Q1055"},
		{Name: "Go vs Python", Source: "Q37227", Target: "Q28865"},
	})
}

// --- Validation Functions ---

// validate is a helper function to reduce repetition.
func validate(condition bool, format string, a ...any) error {
	if !condition {
		return fmt.Errorf(format, a...)
	}
	return nil
}

func (c *Config) Validate() error { // Method on Config
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api validation failed: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output validation failed: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server validation failed: %w", err)
	}
	for i := range c.UI.Showcases {
		if err := c.UI.Showcases[i].Validate(); err != nil {
			return fmt.Errorf("showcase %d validation failed: %w", i, err)
		}
	}
	return nil
}

func (ac *APIConfig) Validate() error {
	if err := validate(ac.BaseURL != "", "api base URL is required"); err != nil {
		return err
	}
	if err := validate(strings.HasPrefix(ac.BaseURL, "http://") || strings.HasPrefix(ac.BaseURL, "https://"),
		"api base URL must start with http:// or https://, got %q", ac.BaseURL); err != nil {
		return err
	}
	if err := validate(ac.Language != "", "api language is required"); err != nil {
		return err
	}
	if err := validate(ac.Timeout > 0, "api timeout must be positive"); err != nil {
		return err
	}
	if err := validate(ac.RateLimit > 0, "api rate limit must be positive"); err != nil {
		return err
	}
	if err := validate(ac.Burst > 0, "api burst must be positive"); err != nil {
		return err
	}
	if err := validate(ac.MaxRetries >= 1, "api max retries must be at least 1"); err != nil {
		return err
	}
	return validate(ac.BackoffBase > 0, "api backoff base must be positive")
}

func (oc *OutputConfig) Validate() error {
	if err := validate(oc.Dir != "", "output dir is required"); err != nil {
		return err
	}
	if err := validate(len(oc.Formats) > 0, "at least one output format is required"); err != nil {
		return err
	}
	for _, format := range oc.Formats {
		if err := validate(knownFormats[format], "unknown output format %q", format); err != nil {
			return err
		}
	}
	return nil
}

func (sc *ServerConfig) Validate() error {
	if err := validate(sc.Host != "", "server host is required"); err != nil {
		return err
	}
	return validate(sc.Port > 0 && sc.Port < 65536, "server port must be between 1 and 65535")
}

func (s *Showcase) Validate() error {
	if err := validate(s.Name != "", "showcase name is required"); err != nil {
		return err
	}
	if err := validate(s.Source != "", "showcase source entity is required"); err != nil {
		return err
	}
	return validate(s.Target != "", "showcase target entity is required")
}

// --- Top-Level Validation ---

func ValidateConfig(cfg *Config) error { // Kept exported alongside the method.
	return cfg.Validate()
}
