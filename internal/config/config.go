// Package config loads cca settings from defaults, an optional YAML file,
// a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/HendryAvila/cca/internal/knowledge"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	BaseDir   string       `yaml:"base_dir" mapstructure:"base_dir"`
	LogLevel  string       `yaml:"log_level" mapstructure:"log_level"`
	LogFormat string       `yaml:"log_format" mapstructure:"log_format"`
	LLM       LLMConfig    `yaml:"llm" mapstructure:"llm"`
	Agents    AgentsConfig `yaml:"agents" mapstructure:"agents"`
	Source    SourceConfig `yaml:"source" mapstructure:"source"`
}

type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"`
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// AgentsConfig caps the reasoning steps of each agent.
type AgentsConfig struct {
	ExplorerMaxSteps int `yaml:"explorer_max_steps" mapstructure:"explorer_max_steps"`
	WriterMaxSteps   int `yaml:"writer_max_steps" mapstructure:"writer_max_steps"`
	SearcherMaxSteps int `yaml:"searcher_max_steps" mapstructure:"searcher_max_steps"`
	UpdaterMaxSteps  int `yaml:"updater_max_steps" mapstructure:"updater_max_steps"`
}

// SourceConfig bounds what the agents may read from the codebase.
type SourceConfig struct {
	MaxReadBytes int64 `yaml:"max_read_bytes" mapstructure:"max_read_bytes"`
	PreviewChars int   `yaml:"preview_chars" mapstructure:"preview_chars"`
}

// envAliases binds config keys to the variable names users already know.
// CCA_-prefixed names are always checked first.
var envAliases = map[string][]string{
	"log_level":       {"LOG_LEVEL"},
	"llm.temperature": {"OPENAI_TEMPERATURE"},
}

// providerEnv holds what depends on the selected provider: its default
// model and the provider's own variable names for model, key and URL.
type providerEnv struct {
	model   string
	aliases map[string]string
}

var providerEnvs = map[string]providerEnv{
	ProviderOpenAI: {
		model: "gpt-4o",
		aliases: map[string]string{
			"llm.model":    "OPENAI_MODEL",
			"llm.api_key":  "OPENAI_API_KEY",
			"llm.base_url": "OPENAI_BASE_URL",
		},
	},
	ProviderAnthropic: {
		model: "claude-sonnet-4-5",
		aliases: map[string]string{
			"llm.model":    "ANTHROPIC_MODEL",
			"llm.api_key":  "ANTHROPIC_API_KEY",
			"llm.base_url": "ANTHROPIC_BASE_URL",
		},
	},
}

// loadDotEnv is a package-level var to allow test injection.
var loadDotEnv = godotenv.Load

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("agents.explorer_max_steps", 50)
	v.SetDefault("agents.writer_max_steps", 50)
	v.SetDefault("agents.searcher_max_steps", 25)
	v.SetDefault("agents.updater_max_steps", 50)
	v.SetDefault("source.max_read_bytes", 100*1024)
	v.SetDefault("source.preview_chars", 10000)
}

// LoadDotEnv loads .env from the working directory when one exists.
// Variables already set in the environment win.
func LoadDotEnv() error {
	if err := loadDotEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Load reads configuration. An explicit file must exist; otherwise
// config.yaml is looked up in $XDG_CONFIG_HOME/cca and ~/.config/cca and
// its absence is not an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "cca"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "cca"))
		}
	}

	v.SetEnvPrefix("CCA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, aliases := range envAliases {
		names := append([]string{envName(key)}, aliases...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// The provider is only known once file and environment are read.
	if p, ok := providerEnvs[v.GetString("llm.provider")]; ok {
		v.SetDefault("llm.model", p.model)
		for key, alias := range p.aliases {
			if err := v.BindEnv(key, envName(key), alias); err != nil {
				return nil, fmt.Errorf("binding env for %s: %w", key, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.BaseDir == "" {
		base, err := knowledge.DefaultBasePath()
		if err != nil {
			return nil, err
		}
		cfg.BaseDir = base
	} else {
		cfg.BaseDir = expandHome(cfg.BaseDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the rest of the program cannot work with.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("config: unknown llm.provider %q (want %s or %s)", c.LLM.Provider, ProviderOpenAI, ProviderAnthropic)
	}
	if c.LLM.Model == "" {
		return errors.New("config: llm.model is required")
	}
	if c.LLM.Temperature < 0 {
		return fmt.Errorf("config: llm.temperature must not be negative, got %v", c.LLM.Temperature)
	}
	steps := map[string]int{
		"explorer_max_steps": c.Agents.ExplorerMaxSteps,
		"writer_max_steps":   c.Agents.WriterMaxSteps,
		"searcher_max_steps": c.Agents.SearcherMaxSteps,
		"updater_max_steps":  c.Agents.UpdaterMaxSteps,
	}
	for name, n := range steps {
		if n <= 0 {
			return fmt.Errorf("config: agents.%s must be positive, got %d", name, n)
		}
	}
	if c.Source.MaxReadBytes <= 0 || c.Source.PreviewChars <= 0 {
		return errors.New("config: source limits must be positive")
	}
	return nil
}

// envName is the CCA_-prefixed variable for a config key.
func envName(key string) string {
	return "CCA_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
