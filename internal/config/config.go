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

// Config holds the reco API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Images    ImagesConfig    `yaml:"images"`
	CORS      CORSConfig      `yaml:"cors"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
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
}

// DatabaseConfig holds catalog store (Redis) connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ArtifactsConfig locates the catalog snapshot produced by the index builder.
type ArtifactsConfig struct {
	Dir string `yaml:"dir"`
}

// EmbeddingConfig holds the OpenAI-compatible embedding endpoint settings.
// The endpoint is expected to serve a CLIP-family model; image inputs are
// submitted base64-encoded.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	TextModel  string `yaml:"text_model"`
	ImageModel string `yaml:"image_model"`
	Dimensions int    `yaml:"dimensions"`
}

// RankingConfig holds pipeline scoring policy parameters.
type RankingConfig struct {
	OverfetchMin  int     `yaml:"overfetch_min"`   // ANN over-fetch floor (default 60)
	BoostPerMatch float64 `yaml:"boost_per_match"` // soft attribute boost increment (default 0.18)
	MaxK          int     `yaml:"max_k"`
	MatchScale    float64 `yaml:"match_scale"`    // exp(-dE/scale) for color_mode=match
	ContrastScale float64 `yaml:"contrast_scale"` // tanh(dE/scale) for color_mode=contrast
}

// ImagesConfig holds image fetching and URL signing settings.
type ImagesConfig struct {
	FetchTimeoutSec int           `yaml:"fetch_timeout_sec"`
	RetryMax        int           `yaml:"retry_max"`
	Signing         SigningConfig `yaml:"signing"`
}

// SigningConfig holds signed-URL settings for private blob storage refs.
type SigningConfig struct {
	BaseURL   string `yaml:"base_url"`
	Secret    string `yaml:"secret"`
	ExpirySec int    `yaml:"expiry_sec"`
}

// CORSConfig holds allowed origins for the web client.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
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
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Artifacts.Dir == "" {
		c.Artifacts.Dir = "artifacts"
	}
	if c.Ranking.OverfetchMin <= 0 {
		c.Ranking.OverfetchMin = 60
	}
	if c.Ranking.BoostPerMatch <= 0 {
		c.Ranking.BoostPerMatch = 0.18
	}
	if c.Ranking.MaxK <= 0 {
		c.Ranking.MaxK = 100
	}
	if c.Ranking.MatchScale <= 0 {
		c.Ranking.MatchScale = 20
	}
	if c.Ranking.ContrastScale <= 0 {
		c.Ranking.ContrastScale = 60
	}
	if c.Images.FetchTimeoutSec <= 0 {
		c.Images.FetchTimeoutSec = 10
	}
	if c.Images.RetryMax < 0 {
		c.Images.RetryMax = 0
	}
	if c.Images.Signing.ExpirySec <= 0 {
		c.Images.Signing.ExpirySec = 3600
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"http://localhost:5173"}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding.base_url is required")
	}
	if c.Embedding.TextModel == "" {
		return fmt.Errorf("embedding.text_model is required")
	}
	if c.Ranking.BoostPerMatch >= 1 {
		return fmt.Errorf("ranking.boost_per_match must be below 1, got %g", c.Ranking.BoostPerMatch)
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
