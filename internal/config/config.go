package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Analytics AnalyticsConfig `yaml:"analytics" envconfig:"ANALYTICS"`
}

// LoggingConfig contains logging configuration. Defaults are applied after
// the env/file merge so a config file can still override them.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration.
type PathsConfig struct {
	ArchiveDir string `yaml:"archive_dir" envconfig:"ARCHIVE_DIR"`
	OutputDir  string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
}

// AnalyticsConfig contains tunables for the analytics passes.
type AnalyticsConfig struct {
	// AttributionWindows lists the lookback windows in days; each window is
	// evaluated independently.
	AttributionWindows []int `yaml:"attribution_windows" envconfig:"ATTRIBUTION_WINDOWS"`
	// ExportContent enables the HTML-to-markdown content export pass.
	ExportContent bool `yaml:"export_content" envconfig:"EXPORT_CONTENT"`
	// PublicationName titles the consolidated content archive.
	PublicationName string `yaml:"publication_name" envconfig:"PUBLICATION_NAME"`
}

// Load loads configuration from environment variables and an optional
// subpulse.yaml next to the working directory. Environment takes precedence.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("SUBPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence).
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.Format == "" {
		envConfig.Logging.Format = fileConfig.Logging.Format
	}
	if envConfig.Logging.Output == "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if envConfig.Paths.ArchiveDir == "" {
		envConfig.Paths.ArchiveDir = fileConfig.Paths.ArchiveDir
	}
	if envConfig.Paths.OutputDir == "" {
		envConfig.Paths.OutputDir = fileConfig.Paths.OutputDir
	}
	if len(envConfig.Analytics.AttributionWindows) == 0 {
		envConfig.Analytics.AttributionWindows = fileConfig.Analytics.AttributionWindows
	}
	if envConfig.Analytics.PublicationName == "" {
		envConfig.Analytics.PublicationName = fileConfig.Analytics.PublicationName
	}
	return envConfig
}

// applyDefaults fills whatever neither the environment nor the config file
// set.
func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "console"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/subpulse.log"
	}
	if c.Paths.ArchiveDir == "" {
		c.Paths.ArchiveDir = "archive"
	}
	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = DefaultOutputDir
	}
	if len(c.Analytics.AttributionWindows) == 0 {
		c.Analytics.AttributionWindows = append([]int(nil), DefaultAttributionWindows...)
	}
	if c.Analytics.PublicationName == "" {
		c.Analytics.PublicationName = "Newsletter"
	}
}

// validate checks the configuration for invalid values.
func (c *Config) validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	for _, w := range c.Analytics.AttributionWindows {
		if w <= 0 {
			return fmt.Errorf("attribution window must be positive, got %d", w)
		}
	}

	return nil
}

// configFilePath returns the location of the optional YAML config file.
func configFilePath() string {
	if p := os.Getenv("SUBPULSE_CONFIG"); p != "" {
		return p
	}
	return "subpulse.yaml"
}
