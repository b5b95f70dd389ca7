package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Storage      StorageConfig
	Media        MediaConfig
	RateLimit    RateLimitConfig
	Maintenance  MaintenanceConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"KICKSTOCK_APP_ENV" required:"true"`
	Port         string   `envconfig:"KICKSTOCK_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"KICKSTOCK_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"KICKSTOCK_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"KICKSTOCK_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KICKSTOCK_DB_DSN"`
	Driver string `envconfig:"KICKSTOCK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"KICKSTOCK_DB_HOST"`
	Port     int    `envconfig:"KICKSTOCK_DB_PORT" default:"5432"`
	User     string `envconfig:"KICKSTOCK_DB_USER"`
	Password string `envconfig:"KICKSTOCK_DB_PASSWORD"`
	Name     string `envconfig:"KICKSTOCK_DB_NAME"`
	SSLMode  string `envconfig:"KICKSTOCK_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"KICKSTOCK_SQLITE_PATH" default:"kickstock.db"`

	MaxOpenConns    int           `envconfig:"KICKSTOCK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KICKSTOCK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KICKSTOCK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KICKSTOCK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver targets SQLite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"KICKSTOCK_REDIS_URL"`
	Address      string        `envconfig:"KICKSTOCK_REDIS_ADDR"`
	Password     string        `envconfig:"KICKSTOCK_REDIS_PASSWORD"`
	DB           int           `envconfig:"KICKSTOCK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KICKSTOCK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KICKSTOCK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KICKSTOCK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KICKSTOCK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KICKSTOCK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"KICKSTOCK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KICKSTOCK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"KICKSTOCK_JWT_EXPIRATION_MINUTES" default:"60"`
}

type StorageConfig struct {
	Backend   string `envconfig:"KICKSTOCK_STORAGE_BACKEND" default:"local"`
	LocalDir  string `envconfig:"KICKSTOCK_STORAGE_LOCAL_DIR" default:"uploads"`
	Endpoint  string `envconfig:"KICKSTOCK_STORAGE_ENDPOINT"`
	AccessKey string `envconfig:"KICKSTOCK_STORAGE_ACCESS_KEY"`
	SecretKey string `envconfig:"KICKSTOCK_STORAGE_SECRET_KEY"`
	Bucket    string `envconfig:"KICKSTOCK_STORAGE_BUCKET" default:"kickstock-images"`
	UseSSL    bool   `envconfig:"KICKSTOCK_STORAGE_USE_SSL" default:"false"`
}

// IsMinio reports whether uploads should be written to an S3-compatible bucket.
func (s StorageConfig) IsMinio() bool {
	return strings.EqualFold(s.Backend, StorageBackendMinio)
}

func (s StorageConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Backend)) {
	case StorageBackendLocal:
		if strings.TrimSpace(s.LocalDir) == "" {
			return fmt.Errorf("%s is required for local storage", EnvStorageLocalDir)
		}
		return nil
	case StorageBackendMinio:
		missing := []string{}
		if s.Endpoint == "" {
			missing = append(missing, EnvStorageEndpoint)
		}
		if s.AccessKey == "" {
			missing = append(missing, EnvStorageAccessKey)
		}
		if s.SecretKey == "" {
			missing = append(missing, EnvStorageSecretKey)
		}
		if len(missing) > 0 {
			return fmt.Errorf("minio storage requires %s", strings.Join(missing, ", "))
		}
		return nil
	default:
		return fmt.Errorf("unknown storage backend %q", s.Backend)
	}
}

type MediaConfig struct {
	MaxUploadMB    int `envconfig:"KICKSTOCK_MAX_UPLOAD_MB" default:"20"`
	MaxFilesPerReq int `envconfig:"KICKSTOCK_MAX_FILES_PER_REQUEST" default:"12"`
}

// MaxUploadBytes converts the configured megabyte cap into bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 0
	}
	return int64(m.MaxUploadMB) * 1024 * 1024
}

// RateLimitConfig throttles intake submissions per actor.
type RateLimitConfig struct {
	IntakeWindow time.Duration `envconfig:"KICKSTOCK_INTAKE_RATE_WINDOW" default:"1m"`
	IntakeLimit  int           `envconfig:"KICKSTOCK_INTAKE_RATE_LIMIT" default:"60"`
}

// MaintenanceConfig drives cmd/cron-worker.
type MaintenanceConfig struct {
	Interval       time.Duration `envconfig:"KICKSTOCK_MAINTENANCE_INTERVAL" default:"1h"`
	QueueRetention time.Duration `envconfig:"KICKSTOCK_QUEUE_RETENTION" default:"720h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"KICKSTOCK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"KICKSTOCK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range componentDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
