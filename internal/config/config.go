package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type DBConfig struct {
	Driver          string `envconfig:"DB_DRIVER" default:"postgres"`
	Host            string `envconfig:"DB_HOST" default:"postgres"`
	Port            int    `envconfig:"DB_PORT" default:"5432"`
	User            string `envconfig:"DB_USER" default:"booking"`
	Password        string `envconfig:"DB_PASSWORD" default:"booking"`
	Name            string `envconfig:"DB_NAME" default:"booking_db"`
	SSLMode         string `envconfig:"DB_SSLMODE" default:"disable"`
	TimeZone        string `envconfig:"DB_TIMEZONE" default:"Asia/Jakarta"`
	SQLitePath      string `envconfig:"DB_SQLITE_PATH" default:"booking.db"`
	MaxOpenConns    int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifeTime int    `envconfig:"DB_CONN_MAX_LIFETIME_MIN" default:"30"` // минут
	AutoMigrate     bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

type App struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	GRPCAddr string `envconfig:"GRPC_ADDR" default:":50051"`

	// Часовой пояс площадки: от него считается "сегодня" на границе транспорта.
	TimeZone string `envconfig:"APP_TIMEZONE" default:"Asia/Jakarta"`

	JWTSecret   string `envconfig:"JWT_SECRET" default:"change-me"`
	JWTTTLHours int    `envconfig:"JWT_TTL_HOURS" default:"24"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// Начальный администратор, создаётся только если пользователей ещё нет.
	AdminUsername string `envconfig:"ADMIN_USERNAME"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	DB DBConfig `ignored:"true"`
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*App, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process app env: %w", err)
	}

	dbCfg, err := LoadDBConfig()
	if err != nil {
		return nil, err
	}
	cfg.DB = *dbCfg

	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.TimeZone, err)
	}
	if cfg.JWTTTLHours <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL_HOURS: must be positive")
	}

	return &cfg, nil
}

func LoadDBConfig() (*DBConfig, error) {
	var cfg DBConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process db env: %w", err)
	}

	// минимальная валидация
	switch cfg.Driver {
	case "postgres":
		if cfg.Host == "" || cfg.User == "" || cfg.Name == "" {
			return nil, fmt.Errorf("invalid DB config: host/user/name must not be empty")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("invalid DB config: DB_SQLITE_PATH must not be empty")
		}
	default:
		return nil, fmt.Errorf("invalid DB config: unknown driver %q", cfg.Driver)
	}

	return &cfg, nil
}

func (c *App) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}

func (c *App) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}
