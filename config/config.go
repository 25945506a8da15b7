package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Relay      RelayConfig      `yaml:"relay"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Redis      RedisConfig      `yaml:"redis"`
	Call       CallConfig       `yaml:"call"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds"`
	AllowedOrigins  []string `yaml:"allowed_origins"`

	CacheTTL time.Duration `yaml:"-"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// RelayConfig tunes the event relay, activity log and viewer sessions.
type RelayConfig struct {
	ActivityCapacity      int    `yaml:"activity_capacity"`
	GatepassValidityHours int    `yaml:"gatepass_validity_hours"`
	SessionQueueSize      int    `yaml:"session_queue_size"`
	WriteTimeoutSeconds   int    `yaml:"write_timeout_seconds"`
	FanoutBuffer          int    `yaml:"fanout_buffer"`
	AgentName             string `yaml:"agent_name"`

	GatepassValidity time.Duration `yaml:"-"`
	WriteTimeout     time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether VAPID keys were configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// KafkaConfig configures the optional Kafka event sink.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// RedisConfig configures the optional Redis pub/sub event sink.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

// CallConfig is used by cmd/calldemo to bridge a phone call to the voice agent.
type CallConfig struct {
	VoiceAPIURL      string `yaml:"voice_api_url"`
	VoiceAPIKey      string `yaml:"voice_api_key"`
	CallConfigPath   string `yaml:"call_config_path"`
	TelephonyBaseURL string `yaml:"telephony_base_url"`
	AccountSID       string `yaml:"account_sid"`
	AuthToken        string `yaml:"auth_token"`
	FromNumber       string `yaml:"from_number"`
	ToNumber         string `yaml:"to_number"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8001
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 20
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.Relay.ActivityCapacity <= 0 {
		cfg.Relay.ActivityCapacity = 15
	}
	if cfg.Relay.GatepassValidityHours <= 0 {
		cfg.Relay.GatepassValidityHours = 48
	}
	cfg.Relay.GatepassValidity = time.Duration(cfg.Relay.GatepassValidityHours) * time.Hour
	if cfg.Relay.SessionQueueSize <= 0 {
		cfg.Relay.SessionQueueSize = 64
	}
	if cfg.Relay.WriteTimeoutSeconds <= 0 {
		cfg.Relay.WriteTimeoutSeconds = 10
	}
	cfg.Relay.WriteTimeout = time.Duration(cfg.Relay.WriteTimeoutSeconds) * time.Second
	if cfg.Relay.FanoutBuffer <= 0 {
		cfg.Relay.FanoutBuffer = 256
	}
	if cfg.Relay.AgentName == "" {
		cfg.Relay.AgentName = "VOICE_AGENT"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "file:terminal.db?cache=shared"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}

	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "terminal.events"
	}
	if cfg.Redis.Channel == "" {
		cfg.Redis.Channel = "terminal:events"
	}

	if cfg.Call.TelephonyBaseURL == "" {
		cfg.Call.TelephonyBaseURL = "https://api.twilio.com"
	}
	if cfg.Call.TimeoutSeconds <= 0 {
		cfg.Call.TimeoutSeconds = 30
	}
}
