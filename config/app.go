package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Sentinel validation errors for the application config.
var (
	ErrInvalidPort      = errors.New("invalid server port")
	ErrInvalidLogLevel  = errors.New("invalid logging level")
	ErrInvalidLogFormat = errors.New("invalid logging format")
	ErrInvalidWorkers   = errors.New("worker count must not be negative")
)

const (
	defaultHost           = "0.0.0.0"
	defaultPort           = 8080
	defaultMaxRequestSize = 32 << 20
	defaultJobWorkers     = 2
	maxPort               = 65535

	// EnvPrefix prefixes environment overrides, e.g. LSH_SERVER_PORT.
	EnvPrefix = "LSH"
)

// AppConfig holds all configuration for the lshsearch binary.
type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Index   IndexSettings `mapstructure:"index" yaml:"index"`
	Build   BuildConfig   `mapstructure:"build" yaml:"build"`
	Jobs    JobsConfig    `mapstructure:"jobs" yaml:"jobs"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxRequestSize  int64         `mapstructure:"max_request_size" yaml:"max_request_size"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// BuildConfig controls index construction.
type BuildConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"` // 0 = runtime.NumCPU()
}

// EffectiveWorkers resolves the zero value to the number of CPUs.
func (b BuildConfig) EffectiveWorkers() int {
	if b.Workers <= 0 {
		return runtime.NumCPU()
	}
	return b.Workers
}

// JobsConfig controls the background job manager.
type JobsConfig struct {
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers"`
}

// Load reads configuration from defaults, an optional file (YAML, TOML or JSON,
// detected by extension) and LSH_* environment variables, in that order.
func Load(configPath string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("lshsearch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or environment is present.
func Default() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Host:            defaultHost,
			Port:            defaultPort,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxRequestSize:  defaultMaxRequestSize,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Index: IndexSettings{
			ShingleSize:     DefaultShingleSize,
			SignatureLength: DefaultSignatureLength,
			BandWidth:       DefaultBandWidth,
			TopN:            DefaultTopN,
		},
		Jobs: JobsConfig{MaxWorkers: defaultJobWorkers},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.max_request_size", d.Server.MaxRequestSize)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("index.shingle_size", d.Index.ShingleSize)
	v.SetDefault("index.signature_length", d.Index.SignatureLength)
	v.SetDefault("index.band_width", d.Index.BandWidth)
	v.SetDefault("index.top_n", d.Index.TopN)
	v.SetDefault("index.max_candidates", d.Index.MaxCandidates)

	v.SetDefault("build.workers", d.Build.Workers)
	v.SetDefault("jobs.max_workers", d.Jobs.MaxWorkers)
}

// Validate checks the application config, including the default index settings.
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if c.Build.Workers < 0 || c.Jobs.MaxWorkers < 0 {
		return ErrInvalidWorkers
	}

	return c.Index.Validate()
}

// YAML renders the effective configuration.
func (c *AppConfig) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(out), nil
}
