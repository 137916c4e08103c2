// Package config предоставляет структуры и функции для загрузки конфигурации консоли.
//
// Источники в порядке приоритета: переменные окружения, YAML-файл из CONFIG_PATH
// (если задан), файл .env в рабочей директории и значения по умолчанию.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Бэкенды хранения сессии.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
)

// DefaultBaseURL адрес API, если API_URL не задан.
const DefaultBaseURL = "http://localhost:3000"

// Config общая структура для хранения настроек
type Config struct {
	Env             string        `yaml:"env" env:"APP_ENV" env-default:"local"`
	API             API           `yaml:"api"`
	Storage         Storage       `yaml:"storage"`
	Notifications   Notifications `yaml:"notifications"`
	CRM             CRM           `yaml:"crm"`
	RedisConnection `yaml:"redis_connection"`
}

// API структура для настройки клиента REST API
type API struct {
	BaseURL   string        `yaml:"base_url" env:"API_URL" env-default:"http://localhost:3000"`
	Timeout   time.Duration `yaml:"timeout" env:"API_TIMEOUT"`
	RateLimit float64       `yaml:"rate_limit" env:"API_RATE_LIMIT"`
	RateBurst int           `yaml:"rate_burst" env:"API_RATE_BURST" env-default:"1"`
}

// Storage структура для настройки хранилища сессии
type Storage struct {
	Backend   string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"file"`
	Path      string `yaml:"path" env:"STORAGE_PATH" env-default:".venue-console/session.json"`
	KeyPrefix string `yaml:"key_prefix" env:"STORAGE_KEY_PREFIX" env-default:"venue-console:"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env:"REDIS_TIMEOUT"`
}

// Notifications структура для публикации уведомлений в RabbitMQ.
// Пустой AMQPURL отключает публикацию.
type Notifications struct {
	AMQPURL    string        `yaml:"amqp_url" env:"AMQP_URL"`
	Exchange   string        `yaml:"exchange" env:"AMQP_EXCHANGE" env-default:"notifications"`
	RoutingKey string        `yaml:"routing_key" env:"AMQP_ROUTING_KEY" env-default:"console.notification"`
	MaxRetries int           `yaml:"max_retries" env:"AMQP_MAX_RETRIES" env-default:"3"`
	RetryDelay time.Duration `yaml:"retry_delay" env:"AMQP_RETRY_DELAY" env-default:"2s"`
}

// CRM структура для настроек рассылки сообщений
type CRM struct {
	DefaultCountryCode string `yaml:"default_country_code" env:"CRM_DEFAULT_COUNTRY_CODE" env-default:"+91"`
}

// Load загружает конфиг. Ошибка отсутствия .env игнорируется.
func Load() (*Config, error) {
	const op = "config.Load"

	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: load .env: %w", op, err)
	}

	var cfg Config
	configPath := os.Getenv("CONFIG_PATH")
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("%s: config file %s: %w", op, configPath, err)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига, завершает процесс при ошибке
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case StorageMemory, StorageFile, StorageRedis:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("api rate limit must not be negative")
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"API:\n"+
			"  BaseURL: %s\n"+
			"  Timeout: %s\n"+
			"  RateLimit: %g\n"+
			"  RateBurst: %d\n"+
			"Storage:\n"+
			"  Backend: %s\n"+
			"  Path: %s\n"+
			"  KeyPrefix: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  Password: %s\n"+
			"  User: %s\n"+
			"  DB: %d\n"+
			"Notifications:\n"+
			"  AMQPURL: %s\n"+
			"  Exchange: %s\n"+
			"CRM:\n"+
			"  DefaultCountryCode: %s\n",
		c.Env,
		c.API.BaseURL,
		c.API.Timeout,
		c.API.RateLimit,
		c.API.RateBurst,
		c.Storage.Backend,
		c.Storage.Path,
		c.Storage.KeyPrefix,
		c.AddressRedis,
		mask(c.Password),
		c.User,
		c.DB,
		mask(c.Notifications.AMQPURL),
		c.Notifications.Exchange,
		c.CRM.DefaultCountryCode,
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
