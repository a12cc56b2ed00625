package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/miradorstack/sales-insights/internal/utils"
)

// EnvPrefix namespaces every environment override, e.g. SALES_INSIGHTS_SERVER_HTTP_ADDRESS.
const EnvPrefix = "SALES_INSIGHTS"

// EnvConfigPath names the variable consulted when no -config flag is given.
const EnvConfigPath = "SALES_INSIGHTS_CONFIG"

// Config captures the settings required to boot the dashboard service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Logging   LoggingConfig   `yaml:"logging"`
	Cache     CacheConfig     `yaml:"cache"`
}

// ServerConfig controls the HTTP, gRPC and metrics listeners.
type ServerConfig struct {
	HTTPAddress     string        `yaml:"httpAddress" split_words:"true"`
	GRPCAddress     string        `yaml:"grpcAddress" split_words:"true"`
	MetricsAddress  string        `yaml:"metricsAddress" split_words:"true"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout" split_words:"true"`
}

// DatasetConfig describes the synthetic sales table.
type DatasetConfig struct {
	Seed      int64    `yaml:"seed"`
	StartDate string   `yaml:"startDate" split_words:"true"`
	EndDate   string   `yaml:"endDate" split_words:"true"`
	Category  string   `yaml:"category"`
	Products  []string `yaml:"products"`
	Regions   []string `yaml:"regions"`
}

// DashboardConfig bounds what a single recompute returns.
type DashboardConfig struct {
	PreviewLimit    int `yaml:"previewLimit" split_words:"true"`
	MaxPreviewLimit int `yaml:"maxPreviewLimit" split_words:"true"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// CacheConfig controls caching of recompute results.
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Backend      string        `yaml:"backend"`
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dialTimeout" split_words:"true"`
	ReadTimeout  time.Duration `yaml:"readTimeout" split_words:"true"`
	WriteTimeout time.Duration `yaml:"writeTimeout" split_words:"true"`
	MaxRetries   int           `yaml:"maxRetries" split_words:"true"`
	TLS          bool          `yaml:"tls"`
	ResultTTL    time.Duration `yaml:"resultTTL" split_words:"true"`
}

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Load initialises Config from defaults, an optional YAML file and environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			HTTPAddress:     ":8080",
			GRPCAddress:     ":50051",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Dataset: DatasetConfig{
			Seed:      42,
			StartDate: "2024-01-01",
			EndDate:   "2024-03-31",
			Category:  "Electronics",
			Products:  []string{"MacBook", "iPhone", "iPad", "AirPods"},
			Regions:   []string{"Europe", "North America", "Asia", "Middle East"},
		},
		Dashboard: DashboardConfig{
			PreviewLimit:    20,
			MaxPreviewLimit: 500,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Cache: CacheConfig{
			Enabled:      false,
			Backend:      CacheBackendMemory,
			ResultTTL:    5 * time.Minute,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			MaxRetries:   2,
		},
	}
}

// Validate rejects configurations the service cannot boot with.
func (c *Config) Validate() error {
	if _, err := c.Dataset.Window(); err != nil {
		return err
	}
	if err := checkCatalog("dataset.products", c.Dataset.Products); err != nil {
		return err
	}
	if err := checkCatalog("dataset.regions", c.Dataset.Regions); err != nil {
		return err
	}
	if c.Dashboard.PreviewLimit <= 0 {
		return utils.NewInvalidError("config.validate", "dashboard.previewLimit must be positive", nil)
	}
	if c.Dashboard.MaxPreviewLimit < c.Dashboard.PreviewLimit {
		return utils.NewInvalidError("config.validate", "dashboard.maxPreviewLimit must be >= previewLimit", nil)
	}
	if !utils.ValidLevel(c.Logging.Level) {
		return utils.NewInvalidError("config.validate", fmt.Sprintf("unknown logging.level %q", c.Logging.Level), nil)
	}
	if c.Cache.Enabled {
		switch c.Cache.Backend {
		case CacheBackendMemory:
		case CacheBackendRedis:
			if c.Cache.Addr == "" {
				return utils.NewInvalidError("config.validate", "cache.addr is required for the redis backend", nil)
			}
		default:
			return utils.NewInvalidError("config.validate", fmt.Sprintf("unknown cache.backend %q", c.Cache.Backend), nil)
		}
	}
	return nil
}

// DateWindow is the parsed generation window.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// Window parses the configured start and end dates.
func (d DatasetConfig) Window() (DateWindow, error) {
	start, err := utils.ParseDate(d.StartDate)
	if err != nil {
		return DateWindow{}, utils.NewAppError("config.validate", "dataset.startDate", err)
	}
	end, err := utils.ParseDate(d.EndDate)
	if err != nil {
		return DateWindow{}, utils.NewAppError("config.validate", "dataset.endDate", err)
	}
	if end.Before(start) {
		return DateWindow{}, utils.NewInvalidError("config.validate", "dataset.endDate precedes dataset.startDate", nil)
	}
	return DateWindow{Start: start, End: end}, nil
}

func checkCatalog(field string, values []string) error {
	if len(values) == 0 {
		return utils.NewInvalidError("config.validate", field+" must not be empty", nil)
	}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			return utils.NewInvalidError("config.validate", field+" contains an empty value", nil)
		}
		if _, dup := seen[v]; dup {
			return utils.NewInvalidError("config.validate", fmt.Sprintf("%s contains duplicate %q", field, v), nil)
		}
		seen[v] = struct{}{}
	}
	return nil
}
