package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config is the full process configuration, read from the environment
// (optionally seeded by a .env file).
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port        string   `env:"PORT" env-default:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" env-default:"http://localhost:3000,http://localhost:3001" env-separator:","`
	TempDir     string   `env:"TEMP_DIR" env-default:"./temp-uploads"`
	MaxUploadMB int64    `env:"MAX_UPLOAD_MB" env-default:"100"`
}

type DatabaseConfig struct {
	// Driver is one of "postgres" (pgx), "pq" (lib/pq) or "sqlite".
	Driver   string `env:"DB_DRIVER" env-default:"postgres"`
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     string `env:"DB_PORT" env-default:"5432"`
	User     string `env:"DB_USER" env-default:"postgres"`
	Password string `env:"DB_PASSWORD" env-default:"password"`
	Name     string `env:"DB_NAME" env-default:"exitpoll"`
	SSLMode  string `env:"DB_SSLMODE" env-default:"disable"`
	TimeZone string `env:"DB_TIMEZONE" env-default:"UTC"`
	// Path is the sqlite file; empty means in-memory.
	Path string `env:"DB_PATH"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET" env-default:"supersecret"`
	TokenTTL  time.Duration `env:"JWT_TTL" env-default:"72h"`
}

type StorageConfig struct {
	// Driver is "gcs" or "local".
	Driver          string `env:"STORAGE_DRIVER" env-default:"local"`
	Bucket          string `env:"GCS_BUCKET"`
	CredentialsFile string `env:"GCS_CREDENTIALS_FILE"`
	PublicRead      bool   `env:"GCS_PUBLIC_READ" env-default:"true"`
	LocalDir        string `env:"LOCAL_UPLOAD_DIR" env-default:"./uploads"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL" env-default:"http://localhost:8080"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" env-default:"debug"`
	File  string `env:"LOG_FILE" env-default:"./logs/app.log"`
	// Stdout mirrors the log file to standard output.
	Stdout bool `env:"LOG_STDOUT" env-default:"true"`
}

// Load reads .env (if present) and the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
		logrus.Debug("No .env file found – relying on env vars")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverPQ, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Storage.Driver {
	case "gcs":
		if c.Storage.Bucket == "" {
			return errors.New("GCS_BUCKET is required when STORAGE_DRIVER=gcs")
		}
	case "local":
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	return nil
}
