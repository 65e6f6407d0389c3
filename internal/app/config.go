package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yungbote/learnpages/internal/platform/logger"
	"github.com/yungbote/learnpages/internal/realtime/bus"
)

type Config struct {
	Env     string        `mapstructure:"env"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Clock   ClockConfig   `mapstructure:"clock"`
	I18n    I18nConfig    `mapstructure:"i18n"`
	Pages   PagesConfig   `mapstructure:"pages"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Otel    OtelConfig    `mapstructure:"otel"`
}

type HTTPConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}

type DBConfig struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	Debug        bool   `mapstructure:"debug"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// RedisConfig is optional; an empty Addr disables the cache and the bus.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
	Prefix  string        `mapstructure:"prefix"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	AccessTTL time.Duration `mapstructure:"access_ttl"`
}

type ClockConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type I18nConfig struct {
	DefaultLocale string `mapstructure:"default_locale"`
}

type PagesConfig struct {
	ProgressTimeout time.Duration `mapstructure:"progress_timeout"`
	BatchSize       int           `mapstructure:"batch_size"`
	SessionIdleTTL  time.Duration `mapstructure:"session_idle_ttl"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type OtelConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.allowed_origins", []string{})
	v.SetDefault("log.mode", "development")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 0)
	v.SetDefault("db.debug", false)
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", bus.DefaultPrefix)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.prefix", "learnpages:")
	v.SetDefault("auth.jwt_secret", "defaultsecret")
	v.SetDefault("auth.access_ttl", 24*time.Hour)
	v.SetDefault("clock.interval", 10*time.Second)
	v.SetDefault("i18n.default_locale", "en")
	v.SetDefault("pages.progress_timeout", 30*time.Second)
	v.SetDefault("pages.batch_size", 200)
	v.SetDefault("pages.session_idle_ttl", 30*time.Minute)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.service_name", "learnpages")
	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.sample_ratio", 1.0)
}

// LoadConfig reads defaults, then the YAML file at path (or LEARNPAGES_CONFIG
// when path is empty), then LEARNPAGES_* environment overrides.
func LoadConfig(log *logger.Logger, path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LEARNPAGES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = strings.TrimSpace(os.Getenv("LEARNPAGES_CONFIG"))
	}
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			log.Warn("config file not found; using defaults", "path", path)
		} else {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Auth.JWTSecret == "defaultsecret" {
		log.Warn("auth.jwt_secret not set; using the development secret")
	}
	return cfg, nil
}
