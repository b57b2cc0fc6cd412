package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	env "github.com/caarlos0/env/v11"
)

const (
	FileEnv     = "EDIFICIO_CONFIG"
	DefaultFile = "edificio.toml"
)

type Config struct {
	DatabaseDriver string        `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseURL    string        `env:"DATABASE_URL" envDefault:"database.db"`
	JWTSecret      string        `env:"JWT_SECRET,required"`
	JWTExpiry      time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	AdminEmail     string        `env:"ADMIN_EMAIL"`
	AdminPassword  string        `env:"ADMIN_PASSWORD"`
	AdminName      string        `env:"ADMIN_NAME" envDefault:"Administrador"`
	Port           int           `env:"PORT" envDefault:"8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv         string        `env:"APP_ENV" envDefault:"production"`

	AllocationMode  string `env:"ALLOCATION_MODE" envDefault:"atomic"`
	OverpaymentMode string `env:"OVERPAYMENT_MODE" envDefault:"ignore"`
	RedisURL        string `env:"REDIS_URL"`

	BuildingName    string `env:"BUILDING_NAME" envDefault:"Edificio"`
	BuildingAddress string `env:"BUILDING_ADDRESS"`

	S3Endpoint     string `env:"S3_ENDPOINT"`
	S3Region       string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket       string `env:"S3_BUCKET" envDefault:"archivos"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
	S3PublicURL    string `env:"S3_PUBLIC_URL"`
	S3UsePathStyle bool   `env:"S3_USE_PATH_STYLE" envDefault:"true"`

	BackupDir       string        `env:"BACKUP_DIR"`
	BackupInterval  time.Duration `env:"BACKUP_INTERVAL" envDefault:"0s"`
	DriveFolderName string        `env:"DRIVE_FOLDER_NAME" envDefault:"Admin Edificios Backups"`

	ChromePath      string        `env:"CHROME_PATH"`
	ChromeRemoteURL string        `env:"CHROME_REMOTE_URL"`
	ChromeNoSandbox bool          `env:"CHROME_NO_SANDBOX"`
	PDFTimeout      time.Duration `env:"PDF_TIMEOUT" envDefault:"30s"`

	UpdateFeedURL string `env:"UPDATE_FEED_URL"`

	MaintenanceInterval time.Duration `env:"MAINTENANCE_INTERVAL" envDefault:"10m"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

// Load reads the optional TOML file named by EDIFICIO_CONFIG (or ./edificio.toml) and
// then the process environment, which wins over the file.
func Load() (*Config, error) {
	path := os.Getenv(FileEnv)
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	return LoadFrom(path, environ())
}

// LoadFrom is Load with an explicit file (empty for none) and environment.
func LoadFrom(path string, environment map[string]string) (*Config, error) {
	merged := map[string]string{}
	if path != "" {
		fileVars, err := readFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: %w", err)
		}
		for k, v := range fileVars {
			merged[k] = v
		}
	}
	for k, v := range environment {
		merged[k] = v
	}

	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: merged})
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be sqlite or postgres, got %q", c.DatabaseDriver))
	}
	switch c.AllocationMode {
	case "atomic", "sequential":
	default:
		errs = append(errs, fmt.Errorf("ALLOCATION_MODE must be atomic or sequential, got %q", c.AllocationMode))
	}
	switch c.OverpaymentMode {
	case "ignore", "credit_balance":
	default:
		errs = append(errs, fmt.Errorf("OVERPAYMENT_MODE must be ignore or credit_balance, got %q", c.OverpaymentMode))
	}
	if c.MaintenanceInterval <= 0 {
		errs = append(errs, errors.New("MAINTENANCE_INTERVAL must be positive"))
	}
	return errors.Join(errs...)
}

func environ() map[string]string {
	out := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}

// readFile flattens a TOML document into environment-style keys: database_url becomes
// DATABASE_URL and [s3] access_key becomes S3_ACCESS_KEY.
func readFile(path string) (map[string]string, error) {
	var doc map[string]any
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	out := map[string]string{}
	flatten("", doc, out)
	return out, nil
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name := strings.ToUpper(k)
		if prefix != "" {
			name = prefix + "_" + name
		}
		switch v := in[k].(type) {
		case map[string]any:
			flatten(name, v, out)
		case []any:
			parts := make([]string, len(v))
			for i, p := range v {
				parts[i] = fmt.Sprint(p)
			}
			out[name] = strings.Join(parts, ",")
		case time.Time:
			out[name] = v.Format(time.RFC3339)
		default:
			out[name] = fmt.Sprint(v)
		}
	}
}
