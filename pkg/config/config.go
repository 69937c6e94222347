package config

import (
	"fmt"
	"time"
)

type Config struct {
	App            AppConfig            `mapstructure:"app"`
	Ops            OpsConfig            `mapstructure:"ops"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	NATS           NATSConfig           `mapstructure:"nats"`
	RabbitMQ       RabbitMQConfig       `mapstructure:"rabbitmq"`
	Queue          QueueConfig          `mapstructure:"queue"`
	OpenAI         OpenAIConfig         `mapstructure:"openai"`
	Embedding      EmbeddingConfig      `mapstructure:"embedding"`
	NLU            NLUConfig            `mapstructure:"nlu"`
	Triggers       TriggersConfig       `mapstructure:"triggers"`
	Review         ReviewConfig         `mapstructure:"review"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Vault          VaultConfig          `mapstructure:"vault"`
	OpenTelemetry  OpenTelemetryConfig  `mapstructure:"opentelemetry"`
	Prometheus     PrometheusConfig     `mapstructure:"prometheus"`
	Logging        LoggingConfig        `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// OpsConfig is the operational HTTP surface: health probes and metrics.
type OpsConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	LogQueries      bool          `mapstructure:"log_queries"`
}

type RedisConfig struct {
	URL       string `mapstructure:"url"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type RabbitMQConfig struct {
	URL string `mapstructure:"url"`
}

// QueueConfig selects the broker for the utterance worker and the review publisher.
type QueueConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Driver           string        `mapstructure:"driver"`
	UtteranceSubject string        `mapstructure:"utterance_subject"`
	DetectionSubject string        `mapstructure:"detection_subject"`
	ReviewSubject    string        `mapstructure:"review_subject"`
	HandlerTimeout   time.Duration `mapstructure:"handler_timeout"`
}

type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type EmbeddingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	CallTimeout time.Duration `mapstructure:"call_timeout"`
	// Resilient wraps the provider so failures score 0 instead of failing detection.
	Resilient bool `mapstructure:"resilient"`
}

type NLUConfig struct {
	HighThreshold float64 `mapstructure:"high_threshold"`
	LowThreshold  float64 `mapstructure:"low_threshold"`
}

type TriggersConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type ReviewConfig struct {
	Sink     string `mapstructure:"sink"`
	Capacity int    `mapstructure:"capacity"`
}

type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MinRequests      uint32        `mapstructure:"min_requests"`
	FailureThreshold float64       `mapstructure:"failure_threshold"`
}

type VaultConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Token   string `mapstructure:"token"`
	Mount   string `mapstructure:"mount"`
}

type OpenTelemetryConfig struct {
	Enabled     bool         `mapstructure:"enabled"`
	Jaeger      JaegerConfig `mapstructure:"jaeger"`
	ServiceName string       `mapstructure:"service_name"`
}

type JaegerConfig struct {
	Endpoint     string  `mapstructure:"endpoint"`
	SamplerParam float64 `mapstructure:"sampler_param"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level    string          `mapstructure:"level"`
	Format   string          `mapstructure:"format"`
	Sampling LoggingSampling `mapstructure:"sampling"`
}

type LoggingSampling struct {
	Enabled    bool `mapstructure:"enabled"`
	Initial    int  `mapstructure:"initial"`
	Thereafter int  `mapstructure:"thereafter"`
}

var (
	triggerBackends = map[string]bool{"file": true, "postgres": true}
	reviewSinks     = map[string]bool{"none": true, "memory": true, "postgres": true, "queue": true}
	queueDrivers    = map[string]bool{"nats": true, "rabbitmq": true}
)

// Validate checks values that would otherwise fail late, at first use.
func (c *Config) Validate() error {
	high, low := c.NLU.HighThreshold, c.NLU.LowThreshold
	if high < 0 || high > 1 || low < 0 || low > 1 {
		return fmt.Errorf("nlu thresholds must be within [0,1], got high=%v low=%v", high, low)
	}
	if low > high {
		return fmt.Errorf("nlu.low_threshold (%v) must not exceed nlu.high_threshold (%v)", low, high)
	}

	if !triggerBackends[c.Triggers.Backend] {
		return fmt.Errorf("unknown triggers.backend %q", c.Triggers.Backend)
	}
	if c.Triggers.Backend == "file" && c.Triggers.Path == "" {
		return fmt.Errorf("triggers.path is required for the file backend")
	}
	if !reviewSinks[c.Review.Sink] {
		return fmt.Errorf("unknown review.sink %q", c.Review.Sink)
	}
	if c.NeedsDatabase() && c.Database.URL == "" && !c.Vault.Enabled {
		return fmt.Errorf("database.url is required for the postgres backend")
	}

	if (c.Queue.Enabled || c.Review.Sink == "queue") && !queueDrivers[c.Queue.Driver] {
		return fmt.Errorf("unknown queue.driver %q", c.Queue.Driver)
	}
	if c.Review.Sink == "queue" && !c.Queue.Enabled {
		return fmt.Errorf("review.sink=queue requires queue.enabled")
	}
	return nil
}

// NeedsDatabase reports whether any component is backed by PostgreSQL.
func (c *Config) NeedsDatabase() bool {
	return c.Triggers.Backend == "postgres" || c.Review.Sink == "postgres"
}

// QueueURL returns the broker URL of the selected driver.
func (c *Config) QueueURL() string {
	if c.Queue.Driver == "rabbitmq" {
		return c.RabbitMQ.URL
	}
	return c.NATS.URL
}
