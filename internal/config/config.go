// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

// Duration accepts time.ParseDuration strings in YAML ("30s", "15m").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	td, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(td)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type BotConfig struct {
	Token    string  `yaml:"token"`
	AdminIDs []int64 `yaml:"admin_ids"`
}

// SenderConfig configures the client used for outbound deliveries. With an
// empty token the admin bot's token is reused and the same account sends.
type SenderConfig struct {
	Token string `yaml:"token"`
}

type StoreConfig struct {
	Path string `yaml:"path"` // messages YAML document
}

type MediaConfig struct {
	Dir string `yaml:"dir"` // where wizard uploads are downloaded to
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty => in-memory conversation state
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      Duration `yaml:"ttl"`
}

type OpsConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type SchedulerConfig struct {
	Interval Duration `yaml:"interval"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Sender    SenderConfig    `yaml:"sender"`
	Store     StoreConfig     `yaml:"store"`
	Media     MediaConfig     `yaml:"media"`
	Log       LogConfig       `yaml:"log"`
	Redis     RedisConfig     `yaml:"redis"`
	Ops       OpsConfig       `yaml:"ops"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "messages.yaml"
	}
	if cfg.Media.Dir == "" {
		cfg.Media.Dir = "media"
	}
	if cfg.Scheduler.Interval <= 0 {
		cfg.Scheduler.Interval = Duration(time.Minute)
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = Duration(15 * time.Minute)
	}
	if cfg.Ops.Port == 0 {
		cfg.Ops.Port = 8085
	}

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if len(cfg.Bot.AdminIDs) == 0 {
		return nil, errors.New("bot.admin_ids is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
