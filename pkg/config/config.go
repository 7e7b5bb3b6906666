package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Notifier delivery modes.
const (
	NotifierModeDirect = "direct"
	NotifierModeQueue  = "queue"
)

// Config is the full service configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Lmstfy   LmstfyConfig   `mapstructure:"lmstfy"`
	Poller   PollerConfig   `mapstructure:"poller"`
	Views    ViewsConfig    `mapstructure:"views"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

// AppConfig holds identity and log settings.
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// MySQLConfig points at the order store.
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig points at the marker store and change-event channel.
type RedisConfig struct {
	Addr           string `mapstructure:"addr"`
	Password       string `mapstructure:"password"`
	DB             int    `mapstructure:"db"`
	ChangesChannel string `mapstructure:"changes_channel"`
}

// LmstfyConfig points at the notification queue.
type LmstfyConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Namespace   string `mapstructure:"namespace"`
	Token       string `mapstructure:"token"`
	NotifyQueue string `mapstructure:"notify_queue"`
}

// PollerConfig drives the fetch-and-reconcile loop.
type PollerConfig struct {
	TenantID string        `mapstructure:"tenant_id"`
	Interval time.Duration `mapstructure:"interval"`
}

// ViewsConfig drives the projections.
type ViewsConfig struct {
	Timezone string `mapstructure:"timezone"`
	PageSize int    `mapstructure:"page_size"`
}

// NotifierConfig selects and configures the customer notification gateway.
type NotifierConfig struct {
	Mode    string        `mapstructure:"mode"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// WorkerConfig configures the notification dispatch worker.
type WorkerConfig struct {
	Subscriber SubscriberConfig `mapstructure:"subscriber"`
	Processor  ProcessorConfig  `mapstructure:"processor"`
}

// SubscriberConfig configures queue pulling.
type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`
	Rate         time.Duration `mapstructure:"rate"`
	Timeout      time.Duration `mapstructure:"timeout"`
	TTR          time.Duration `mapstructure:"ttr"`
	ErrorBackoff time.Duration `mapstructure:"error_backoff"`
}

// ProcessorConfig configures job handling.
type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`
	BufferSize int           `mapstructure:"buffer_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Load reads the YAML file at configPath. Any key can be overridden with a
// PAINEL_ prefixed environment variable, e.g. PAINEL_POLLER_TENANT_ID.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PAINEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.log_level", "info")
	v.SetDefault("server.port", "8080")
	v.SetDefault("redis.changes_channel", "orders_changed")
	v.SetDefault("lmstfy.notify_queue", "order_notify")
	v.SetDefault("poller.interval", 4*time.Second)
	v.SetDefault("views.timezone", "America/Sao_Paulo")
	v.SetDefault("views.page_size", 15)
	v.SetDefault("notifier.mode", NotifierModeDirect)
	v.SetDefault("notifier.timeout", 10*time.Second)
	v.SetDefault("worker.subscriber.threads", 1)
	v.SetDefault("worker.subscriber.rate", 100*time.Millisecond)
	v.SetDefault("worker.subscriber.timeout", 3*time.Second)
	v.SetDefault("worker.subscriber.ttr", 30*time.Second)
	v.SetDefault("worker.subscriber.error_backoff", time.Second)
	v.SetDefault("worker.processor.threads", 2)
	v.SetDefault("worker.processor.buffer_size", 16)
	v.SetDefault("worker.processor.timeout", 15*time.Second)
}

// Validate checks the keys every binary needs.
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.Poller.TenantID == "" {
		return fmt.Errorf("poller.tenant_id is required")
	}
	if c.Poller.Interval <= 0 {
		return fmt.Errorf("poller.interval must be positive")
	}
	if c.Views.PageSize <= 0 {
		return fmt.Errorf("views.page_size must be positive")
	}
	switch c.Notifier.Mode {
	case NotifierModeDirect:
		if c.Notifier.BaseURL == "" {
			return fmt.Errorf("notifier.base_url is required in direct mode")
		}
	case NotifierModeQueue:
		if err := c.ValidateQueue(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("notifier.mode %q is not supported", c.Notifier.Mode)
	}
	return nil
}

// ValidateQueue checks the lmstfy settings used by the queue gateway and the
// notification worker.
func (c *Config) ValidateQueue() error {
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy.host is required")
	}
	if c.Lmstfy.Namespace == "" {
		return fmt.Errorf("lmstfy.namespace is required")
	}
	if c.Lmstfy.NotifyQueue == "" {
		return fmt.Errorf("lmstfy.notify_queue is required")
	}
	return nil
}

// ValidateWorker checks the keys the notification worker needs. The worker
// does not touch the order store.
func (c *Config) ValidateWorker() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.Notifier.BaseURL == "" {
		return fmt.Errorf("notifier.base_url is required")
	}
	if c.Worker.Subscriber.Threads <= 0 || c.Worker.Processor.Threads <= 0 {
		return fmt.Errorf("worker threads must be positive")
	}
	return c.ValidateQueue()
}
