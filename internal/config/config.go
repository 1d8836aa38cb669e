package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Freeeeeet/intake_bot/internal/model"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Драйверы таблицы записей
const (
	DriverXLSX     = "xlsx"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Хранилища сессий
const (
	SessionsMemory = "memory"
	SessionsRedis  = "redis"
)

var ErrNoToken = errors.New("TELEGRAM_TOKEN is required but not set")

type Config struct {
	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`
	Environment   string `mapstructure:"ENV"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	Flow          string `mapstructure:"FLOW"`

	StoreDriver   string `mapstructure:"STORE_DRIVER"`
	ExcelFile     string `mapstructure:"EXCEL_FILE"`
	SheetName     string `mapstructure:"SHEET_NAME"`
	DBDSN         string `mapstructure:"DB_DSN"`
	MigrationsDir string `mapstructure:"MIGRATIONS_DIR"`

	AdminID     int64 `mapstructure:"ADMIN_ID"`
	SlotsImages bool  `mapstructure:"SLOTS_IMAGES"`

	SessionStore  string `mapstructure:"SESSION_STORE"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// Фоновая генерация слотов
	AutoSlotsTimes        string `mapstructure:"AUTO_SLOTS_TIMES"`
	AutoSlotsDaysAhead    int    `mapstructure:"AUTO_SLOTS_DAYS_AHEAD"`
	AutoSlotsSkipWeekends bool   `mapstructure:"AUTO_SLOTS_SKIP_WEEKENDS"`

	flavor model.Flavor
}

var defaults = map[string]any{
	"TELEGRAM_TOKEN":           "",
	"ENV":                      "development",
	"LOG_LEVEL":                "info",
	"FLOW":                     string(model.FlavorSlots),
	"STORE_DRIVER":             DriverXLSX,
	"EXCEL_FILE":               "appointments.xlsx",
	"SHEET_NAME":               "Записи",
	"DB_DSN":                   "",
	"MIGRATIONS_DIR":           "",
	"ADMIN_ID":                 0,
	"SLOTS_IMAGES":             true,
	"SESSION_STORE":            SessionsMemory,
	"REDIS_ADDR":               "localhost:6379",
	"REDIS_PASSWORD":           "",
	"REDIS_DB":                 0,
	"AUTO_SLOTS_TIMES":         "",
	"AUTO_SLOTS_DAYS_AHEAD":    14,
	"AUTO_SLOTS_SKIP_WEEKENDS": true,
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromViper(viper.New())
}

// FromViper собирает конфиг из переданного экземпляра viper
func FromViper(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	flavor, err := model.ParseFlavor(c.Flow)
	if err != nil {
		return err
	}
	c.flavor = flavor

	switch c.StoreDriver {
	case DriverXLSX:
		if c.ExcelFile == "" {
			return fmt.Errorf("EXCEL_FILE is required for %s driver", DriverXLSX)
		}
	case DriverPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required for %s driver", DriverPostgres)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.SessionStore {
	case SessionsMemory:
	case SessionsRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for %s sessions", SessionsRedis)
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore)
	}

	if c.AutoSlotsDaysAhead < 0 {
		return fmt.Errorf("AUTO_SLOTS_DAYS_AHEAD must not be negative")
	}
	return nil
}

// RequireToken проверяет токен; нужен только процессу бота
func (c *Config) RequireToken() error {
	if c.TelegramToken == "" {
		return ErrNoToken
	}
	return nil
}

// Flavor сценарий записи
func (c *Config) Flavor() model.Flavor {
	return c.flavor
}

// AutoSlotTimes список времён для фоновой генерации слотов
func (c *Config) AutoSlotTimes() []string {
	var times []string
	for _, t := range strings.Split(c.AutoSlotsTimes, ",") {
		if t = strings.TrimSpace(t); t != "" {
			times = append(times, t)
		}
	}
	return times
}
