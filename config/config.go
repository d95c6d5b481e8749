package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the dataset builder.
type Config struct {
	Corpus    CorpusConfig    `yaml:"corpus"`
	Sampling  SamplingConfig  `yaml:"sampling"`
	Window    WindowConfig    `yaml:"window"`
	Loader    LoaderConfig    `yaml:"loader"`
	Build     BuildConfig     `yaml:"build"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CorpusConfig holds video enumeration configuration.
type CorpusConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// SamplingConfig holds frame sampling configuration.
type SamplingConfig struct {
	FPS float64 `yaml:"fps"` // target frames per second to retain
}

// WindowConfig holds training-window configuration.
type WindowConfig struct {
	Size int `yaml:"size"` // number of history frames per example
}

// LoaderConfig holds batch consumption configuration.
type LoaderConfig struct {
	BatchSize int   `yaml:"batch_size"`
	Shuffle   bool  `yaml:"shuffle"`
	Seed      int64 `yaml:"seed"`
}

// BuildConfig holds corpus build policy.
type BuildConfig struct {
	OnError string `yaml:"on_error"` // "abort" or "skip"
	Workers int    `yaml:"workers"`
}

// EmbeddingConfig holds embedding model configuration.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"`     // "jina", "openai", "onnx", "mock"
	Model       string `yaml:"model"`        // e.g. "jina-clip-v2"
	APIKeyEnv   string `yaml:"api_key_env"`  // environment variable for API key
	BaseURL     string `yaml:"base_url"`     // override for OpenAI-compatible APIs
	Dimension   int    `yaml:"dimension"`
	BatchSize   int    `yaml:"batch_size"`
	InputSize   int    `yaml:"input_size"`   // model input resolution (onnx)
	ModelPath   string `yaml:"model_path"`   // path to .onnx file (onnx)
	LibraryPath string `yaml:"library_path"` // onnxruntime shared library (onnx)
}

// CacheConfig holds embedding cache configuration.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Includes: []string{"*"},
			Excludes: []string{"*.part", "*.tmp", ".*"},
		},
		Sampling: SamplingConfig{
			FPS: 8,
		},
		Window: WindowConfig{
			Size: 3,
		},
		Loader: LoaderConfig{
			BatchSize: 16,
			Shuffle:   true,
			Seed:      1,
		},
		Build: BuildConfig{
			OnError: "abort",
			Workers: 1,
		},
		Embedding: EmbeddingConfig{
			Provider:  "jina",
			Model:     "jina-clip-v2",
			APIKeyEnv: "JINA_API_KEY",
			Dimension: 1024,
			BatchSize: 32,
			InputSize: 224,
		},
		Cache: CacheConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Sampling.FPS <= 0 {
		return fmt.Errorf("sampling.fps must be positive, got %v", c.Sampling.FPS)
	}
	if c.Window.Size < 1 {
		return fmt.Errorf("window.size must be at least 1, got %d", c.Window.Size)
	}
	if c.Loader.BatchSize < 1 {
		return fmt.Errorf("loader.batch_size must be at least 1, got %d", c.Loader.BatchSize)
	}
	if c.Build.OnError != "abort" && c.Build.OnError != "skip" {
		return fmt.Errorf("build.on_error must be \"abort\" or \"skip\", got %q", c.Build.OnError)
	}
	if c.Build.Workers < 1 {
		return fmt.Errorf("build.workers must be at least 1, got %d", c.Build.Workers)
	}
	if c.Embedding.BatchSize < 1 {
		return fmt.Errorf("embedding.batch_size must be at least 1, got %d", c.Embedding.BatchSize)
	}
	return nil
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for frameset.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "frameset.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".frameset", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// CacheDBPath returns the default path for the embedding cache.
func CacheDBPath(dir string) string {
	return filepath.Join(dir, ".frameset", "cache.db")
}

// EnsureWorkDir ensures the .frameset directory exists.
func EnsureWorkDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".frameset"), 0755)
}
