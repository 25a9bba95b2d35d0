package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel           string `env:"LOG_LEVEL"`
	Postgres           Postgres
	Redis              Redis
	HTTP               HTTP
	API                API
	Cache              Cache
	Jobs               Jobs
	GoogleDrive        GoogleDrive
	SessionExpiration  time.Duration `env:"SESSION_EXPIRATION"`
	DefaultLookback    string        `env:"DEFAULT_LOOKBACK"`
	DefaultHorizonDays int           `env:"DEFAULT_HORIZON_DAYS"`
}

type Postgres struct {
	Host            string `env:"PG_HOST"`
	Port            int    `env:"PG_PORT"`
	DbName          string `env:"PG_DB_NAME"`
	Password        string `env:"PG_PASSWORD"`
	User            string `env:"PG_USER"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME"`
	MigrationDir    string `env:"PG_MIGRATION_DIR"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"`
}

type HTTP struct {
	Port            int           `env:"HTTP_PORT"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT"`
}

type API struct {
	Debug    bool          `env:"API_DEBUG"`
	Timeout  time.Duration `env:"API_TIMEOUT"`
	YahooApi YahooApi
}

type YahooApi struct {
	Url string `env:"YAHOO_API_URL"`
}

type Cache struct {
	QuotesExpiration time.Duration `env:"CACHE_QUOTES_EXPIRATION"`
	ChartsExpiration time.Duration `env:"CACHE_CHARTS_EXPIRATION"`
}

type Jobs struct {
	WarmQuotesCacheInterval time.Duration `env:"WARM_QUOTES_CACHE_JOB_INTERVAL"`
	DriveCleanupCrontab     string        `env:"DRIVE_CLEANUP_JOB_CRONTAB"`
}

type GoogleDrive struct {
	Enabled         bool          `env:"GOOGLE_DRIVE_ENABLED"`
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE"`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
