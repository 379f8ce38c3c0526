package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the policysearch service configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
	Search  SearchConfig  `yaml:"search"`
	Culture CultureConfig `yaml:"culture"`
	Corpus  CorpusConfig  `yaml:"corpus"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int `yaml:"max_body_bytes"`
}

// SearchConfig holds n-gram, limit, fallback and scoring settings.
type SearchConfig struct {
	NGramMin               int           `yaml:"ngram_min"`
	NGramMax               int           `yaml:"ngram_max"`
	DefaultLimit           int           `yaml:"default_limit"`
	MaxLimit               int           `yaml:"max_limit"`
	MinHitsBeforeFallback  int           `yaml:"min_hits_before_fallback"`
	ResultCacheSize        int           `yaml:"result_cache_size"` // 0 disables the cache
	WildcardStripProlonged *bool         `yaml:"wildcard_strip_prolonged"`
	Weights                WeightsConfig `yaml:"weights"`
}

// WeightsConfig holds per-field and per-culture-slot score weights.
type WeightsConfig struct {
	Name        float64 `yaml:"name"`
	ID          float64 `yaml:"id"`
	Registry    float64 `yaml:"registry"`
	Description float64 `yaml:"description"`
	Primary     float64 `yaml:"primary"`
	Second      float64 `yaml:"second"`
	Fallback    float64 `yaml:"fallback"`
}

// CultureConfig holds the default culture preference.
type CultureConfig struct {
	Primary       string `yaml:"primary"`
	Second        string `yaml:"second"`
	SecondEnabled bool   `yaml:"second_enabled"`
	OSUICulture   string `yaml:"os_ui_culture"`
	AppendEnUS    bool   `yaml:"append_en_us"`
}

// CorpusConfig holds the policy seed source.
type CorpusConfig struct {
	Path string `yaml:"path"` // YAML policy list loaded at startup; empty starts with no index
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 32 << 20
	}
	if c.Search.NGramMin <= 0 {
		c.Search.NGramMin = 2
	}
	if c.Search.NGramMax <= 0 {
		c.Search.NGramMax = 3
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 50
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = 1000
	}
	if c.Search.MinHitsBeforeFallback <= 0 {
		c.Search.MinHitsBeforeFallback = 1
	}
	if c.Search.WildcardStripProlonged == nil {
		strip := true
		c.Search.WildcardStripProlonged = &strip
	}
	if c.Search.Weights == (WeightsConfig{}) {
		c.Search.Weights = WeightsConfig{
			Name: 1.0, ID: 0.9, Registry: 0.8, Description: 0.5,
			Primary: 1.0, Second: 0.9, Fallback: 0.5,
		}
	}
	if c.Culture.Primary == "" {
		c.Culture.Primary = "en-US"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Search.NGramMax < c.Search.NGramMin {
		return fmt.Errorf(
			"search.ngram_max (%d) must not be less than search.ngram_min (%d)",
			c.Search.NGramMax, c.Search.NGramMin,
		)
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf(
			"search.default_limit (%d) must not exceed search.max_limit (%d)",
			c.Search.DefaultLimit, c.Search.MaxLimit,
		)
	}
	if c.Search.ResultCacheSize < 0 {
		return fmt.Errorf("search.result_cache_size must not be negative, got %d", c.Search.ResultCacheSize)
	}
	w := c.Search.Weights
	for name, v := range map[string]float64{
		"name": w.Name, "id": w.ID, "registry": w.Registry, "description": w.Description,
		"primary": w.Primary, "second": w.Second, "fallback": w.Fallback,
	} {
		if v < 0 {
			return fmt.Errorf("search.weights.%s must not be negative, got %v", name, v)
		}
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
		// ok
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
