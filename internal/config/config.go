package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	OAI      OAIConfig      `mapstructure:"oai"`
	Harvest  HarvestConfig  `mapstructure:"harvest"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

type OAIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	MetadataPrefix string        `mapstructure:"metadata_prefix"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// PageDelay is the mandated minimum spacing between successive page
	// requests. This is an external contract of the remote service, not a
	// tuning knob.
	PageDelay time.Duration `mapstructure:"page_delay"`
	BusyWait  time.Duration `mapstructure:"busy_wait"`
}

type HarvestConfig struct {
	// Mode selects the traversal strategy: "date" or "global".
	Mode string `mapstructure:"mode"`
	// EpochDate is the first calendar date of the corpus in date mode.
	EpochDate string `mapstructure:"epoch_date"`
	// FreshnessLagDays keeps the harvest this many days behind the wall
	// clock to avoid racing the source's own publication lag.
	FreshnessLagDays int `mapstructure:"freshness_lag_days"`
	// TimeBudget bounds the wall clock of one invocation; the host
	// scheduler re-invokes the process while work remains.
	TimeBudget time.Duration `mapstructure:"time_budget"`
	// DataDir is where partition artifacts are written.
	DataDir string `mapstructure:"data_dir"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	PostgresDSN     string        `mapstructure:"postgres_dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the driver-appropriate connection string.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return c.PostgresDSN
	}
	return c.Path
}

type StorageConfig struct {
	// Enabled gates the object-store upload; when false the harvester runs
	// in local-only mode and uploads are skipped silently.
	Enabled   bool   `mapstructure:"enabled"`
	Type      string `mapstructure:"type"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	// Prefix is prepended to every uploaded partition key.
	Prefix string `mapstructure:"prefix"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("oai.base_url", "https://export.arxiv.org/oai2")
	v.SetDefault("oai.metadata_prefix", "arXiv")
	v.SetDefault("oai.request_timeout", 120*time.Second)
	v.SetDefault("oai.page_delay", 3*time.Second)
	v.SetDefault("oai.busy_wait", 30*time.Second)
	v.SetDefault("harvest.mode", "date")
	v.SetDefault("harvest.epoch_date", "1991-08-14")
	v.SetDefault("harvest.freshness_lag_days", 2)
	v.SetDefault("harvest.time_budget", 5*time.Hour+30*time.Minute)
	v.SetDefault("harvest.data_dir", "./data")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/papertrawl.db")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 8)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.bucket", "papers")
	v.SetDefault("storage.prefix", "papers")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.postgres_dsn", "DATABASE_URL")
	v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("storage.use_ssl", "STORAGE_USE_SSL")
	v.BindEnv("storage.enabled", "STORAGE_ENABLED")
	v.BindEnv("oai.base_url", "OAI_BASE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
