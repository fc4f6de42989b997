package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"DarkPull/pkg/util"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Ingest struct {
		Type string `yaml:"type"` // "websocket" or "kafka"
	} `yaml:"ingest"`
	DarkPool struct {
		VenueID                  int           `yaml:"venue_id"`
		ActivityThresholdPercent float64       `yaml:"activity_threshold_percent"`
		LookbackDays             int           `yaml:"lookback_days"`
		VolatilityThreshold      float64       `yaml:"volatility_threshold"`
		OpportunityTTL           time.Duration `yaml:"opportunity_ttl"`
		OracleTimeout            time.Duration `yaml:"oracle_timeout"`
	} `yaml:"darkpool"`
	Polygon struct {
		APIKey         string        `yaml:"api_key"`
		WebSocketURL   string        `yaml:"websocket_url"`
		RESTURL        string        `yaml:"rest_url"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
		RateLimitRPS   float64       `yaml:"rate_limit_rps"`
		VolatilityDays int           `yaml:"volatility_days"`
		VolCacheTTL    time.Duration `yaml:"vol_cache_ttl"`
	} `yaml:"polygon"`
	Kafka struct {
		Brokers          []string `yaml:"brokers"`
		TradesTopic      string   `yaml:"trades_topic"`
		OpportunityTopic string   `yaml:"opportunity_topic"`
		RequiredAcks     int      `yaml:"required_acks"`
		Compression      string   `yaml:"compression"`
		Producer         struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Host     string        `yaml:"host"`
		Port     int           `yaml:"port"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"redis"`
	Backfill struct {
		Enabled bool `yaml:"enabled"`
		Workers int  `yaml:"workers"`
	} `yaml:"backfill"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		c.Polygon.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Polygon.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("INGEST"); v != "" {
		c.Ingest.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("DARK_POOL_VENUE_ID"); v != "" {
		c.DarkPool.VenueID = util.ParseIntDefault(v, c.DarkPool.VenueID)
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.DarkPool.VenueID == 0 {
		c.DarkPool.VenueID = 4
	}
	if c.DarkPool.ActivityThresholdPercent == 0 {
		c.DarkPool.ActivityThresholdPercent = 300
	}
	if c.DarkPool.LookbackDays == 0 {
		c.DarkPool.LookbackDays = 90
	}
	if c.DarkPool.VolatilityThreshold == 0 {
		c.DarkPool.VolatilityThreshold = 0.10
	}
	if c.DarkPool.OpportunityTTL == 0 {
		c.DarkPool.OpportunityTTL = 24 * time.Hour
	}
	if c.DarkPool.OracleTimeout == 0 {
		c.DarkPool.OracleTimeout = 3 * time.Second
	}
	if c.Polygon.RateLimitRPS == 0 {
		c.Polygon.RateLimitRPS = 5
	}
	if c.Polygon.VolatilityDays == 0 {
		c.Polygon.VolatilityDays = 30
	}
	if c.Ingest.Type == "" {
		c.Ingest.Type = "websocket"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Ingest.Type != "websocket" && c.Ingest.Type != "kafka" {
		return fmt.Errorf("ingest.type must be 'websocket' or 'kafka', got '%s'", c.Ingest.Type)
	}
	if c.Ingest.Type == "websocket" {
		if c.Polygon.APIKey == "" {
			return fmt.Errorf("polygon.api_key is required")
		}
		if len(c.Polygon.Symbols) == 0 {
			return fmt.Errorf("polygon.symbols cannot be empty")
		}
	}
	if c.Ingest.Type == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty")
	}
	if c.DarkPool.LookbackDays < 1 {
		return fmt.Errorf("darkpool.lookback_days must be >= 1")
	}
	if c.DarkPool.OpportunityTTL <= 0 {
		return fmt.Errorf("darkpool.opportunity_ttl must be positive")
	}
	return nil
}
