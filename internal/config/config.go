package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	NodeID   int64  `yaml:"node_id"`
	Debug    bool   `yaml:"debug"`
}

type WebConfig struct {
	Host         string   `yaml:"host"`
	Port         int      `yaml:"port"`
	PublicURL    string   `yaml:"public_url"`
	AllowOrigins []string `yaml:"allow_origins"`
}

type DBConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	Level      string `yaml:"level"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type RedisConfig struct {
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	ProductTTL time.Duration `yaml:"product_ttl"`
}

type RabbitMQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	AccessTTL     time.Duration `yaml:"access_ttl"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl"`
	ResetTokenTTL time.Duration `yaml:"reset_token_ttl"`
}

type JobsConfig struct {
	ResetTokenPurge string `yaml:"reset_token_purge"`
	NotifyWorkers   int    `yaml:"notify_workers"`
	WarmupProducts  int    `yaml:"warmup_products"`
}

type AppConfig struct {
	System   SysConfig      `yaml:"system"`
	Web      WebConfig      `yaml:"web"`
	Database DBConfig       `yaml:"database"`
	Logger   LogConfig      `yaml:"logger"`
	Redis    RedisConfig    `yaml:"redis"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Mail     MailConfig     `yaml:"mail"`
	Auth     AuthConfig     `yaml:"auth"`
	Jobs     JobsConfig     `yaml:"jobs"`
}

// Default returns a configuration that runs standalone on SQLite with no
// cache, no broker and a logging notifier.
func Default() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "e-sell",
			Location: "UTC",
			Workdir:  "./var",
			NodeID:   1,
		},
		Web: WebConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			PublicURL:    "http://localhost:8080/",
			AllowOrigins: []string{"*"},
		},
		Database: DBConfig{
			Type:     "sqlite",
			Name:     "esell.db",
			MaxConn:  100,
			IdleConn: 10,
		},
		Logger: LogConfig{
			Mode:     "development",
			Level:    "info",
			Filename: "./var/logs/esell.log",
		},
		Redis: RedisConfig{
			ProductTTL: time.Minute,
		},
		RabbitMQ: RabbitMQConfig{
			Exchange: "order.exchange",
		},
		Mail: MailConfig{
			Port: 587,
			From: "no-reply@e-sell.local",
		},
		Auth: AuthConfig{
			JWTSecret:     "change-me",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    30 * 24 * time.Hour,
			ResetTokenTTL: time.Hour,
		},
		Jobs: JobsConfig{
			ResetTokenPurge: "@hourly",
			NotifyWorkers:   16,
			WarmupProducts:  20,
		},
	}
}

// Load reads an optional .env file, then the YAML file at path (if any),
// then applies environment overrides.
func Load(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) Validate() error {
	switch c.Database.Type {
	case "mysql", "postgres", "sqlite":
	default:
		return errors.Errorf("unsupported database type %q", c.Database.Type)
	}
	if c.Logger.Mode == "production" && (c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "change-me") {
		return errors.New("auth.jwt_secret must be set in production mode")
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return errors.Errorf("invalid web port %d", c.Web.Port)
	}
	if c.System.NodeID < 0 || c.System.NodeID > 1023 {
		return errors.Errorf("system.node_id must be within 0..1023, got %d", c.System.NodeID)
	}
	return nil
}

// IsProduction reports whether the logger runs in production mode.
func (c *AppConfig) IsProduction() bool {
	return c.Logger.Mode == "production"
}

func (c *AppConfig) applyEnv() error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := os.LookupEnv(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}
	num := func(dst *int, keys ...string) error {
		for _, k := range keys {
			if v, ok := os.LookupEnv(k); ok && v != "" {
				n, err := cast.ToIntE(v)
				if err != nil {
					return errors.Wrapf(err, "env %s", k)
				}
				*dst = n
				return nil
			}
		}
		return nil
	}
	flag := func(dst *bool, key string) error {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			b, err := cast.ToBoolE(v)
			if err != nil {
				return errors.Wrapf(err, "env %s", key)
			}
			*dst = b
		}
		return nil
	}
	dur := func(dst *time.Duration, key string) error {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			d, err := cast.ToDurationE(v)
			if err != nil {
				return errors.Wrapf(err, "env %s", key)
			}
			*dst = d
		}
		return nil
	}

	str(&c.Web.Host, "ESELL_WEB_HOST")
	str(&c.Web.PublicURL, "ESELL_PUBLIC_URL")
	if v := os.Getenv("ESELL_ALLOW_ORIGINS"); v != "" {
		c.Web.AllowOrigins = strings.Split(v, ",")
	}

	str(&c.Database.Type, "ESELL_DB_TYPE")
	str(&c.Database.Host, "ESELL_DB_HOST", "MYSQL_HOST")
	str(&c.Database.Name, "ESELL_DB_NAME", "MYSQL_DATABASE")
	str(&c.Database.User, "ESELL_DB_USER", "MYSQL_USER")
	str(&c.Database.Passwd, "ESELL_DB_PASSWD", "MYSQL_PASSWORD")

	str(&c.Logger.Mode, "ESELL_LOG_MODE")
	str(&c.Logger.Level, "ESELL_LOG_LEVEL")
	str(&c.Logger.Filename, "ESELL_LOG_FILE")

	str(&c.Redis.Password, "ESELL_REDIS_PASSWORD")
	str(&c.Redis.Addr, "ESELL_REDIS_ADDR")
	if host := os.Getenv("REDIS_HOST"); host != "" && c.Redis.Addr == "" {
		c.Redis.Addr = host + ":6379"
	}

	str(&c.RabbitMQ.URL, "ESELL_RABBITMQ_URL", "RABBITMQ_URL")
	str(&c.RabbitMQ.Exchange, "ESELL_RABBITMQ_EXCHANGE")

	str(&c.Mail.Host, "ESELL_MAIL_HOST")
	str(&c.Mail.Username, "ESELL_MAIL_USERNAME")
	str(&c.Mail.Password, "ESELL_MAIL_PASSWORD")
	str(&c.Mail.From, "ESELL_MAIL_FROM")

	str(&c.Auth.JWTSecret, "ESELL_JWT_SECRET", "JWT_SECRET")
	str(&c.Jobs.ResetTokenPurge, "ESELL_JOB_RESET_TOKEN_PURGE")

	for _, fn := range []func() error{
		func() error { return num(&c.Web.Port, "ESELL_WEB_PORT", "PORT") },
		func() error { return num(&c.Database.Port, "ESELL_DB_PORT", "MYSQL_PORT") },
		func() error { return num(&c.Database.MaxConn, "ESELL_DB_MAX_CONN") },
		func() error { return num(&c.Redis.DB, "ESELL_REDIS_DB") },
		func() error { return num(&c.Mail.Port, "ESELL_MAIL_PORT") },
		func() error { return num(&c.Jobs.NotifyWorkers, "ESELL_NOTIFY_WORKERS") },
		func() error { return flag(&c.Database.Debug, "ESELL_DB_DEBUG") },
		func() error { return flag(&c.Logger.FileEnable, "ESELL_LOG_FILE_ENABLE") },
		func() error { return flag(&c.System.Debug, "ESELL_DEBUG") },
		func() error { return dur(&c.Auth.AccessTTL, "ESELL_ACCESS_TTL") },
		func() error { return dur(&c.Redis.ProductTTL, "ESELL_PRODUCT_CACHE_TTL") },
	} {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}
