package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "MOTORSURE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "MOTORSURE_DB_DSN"
	EnvDBHost = "MOTORSURE_DB_HOST"
	EnvDBUser = "MOTORSURE_DB_USER"
	EnvDBName = "MOTORSURE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Lifecycle     LifecycleConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MOTORSURE_APP_ENV" required:"true"`
	Port         string `envconfig:"MOTORSURE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MOTORSURE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MOTORSURE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MOTORSURE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MOTORSURE_DB_DSN"`
	Driver string `envconfig:"MOTORSURE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MOTORSURE_DB_HOST"`
	LegacyPort     int    `envconfig:"MOTORSURE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MOTORSURE_DB_USER"`
	LegacyPassword string `envconfig:"MOTORSURE_DB_PASSWORD"`
	LegacyName     string `envconfig:"MOTORSURE_DB_NAME"`
	LegacySSLMode  string `envconfig:"MOTORSURE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MOTORSURE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MOTORSURE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MOTORSURE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MOTORSURE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MOTORSURE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MOTORSURE_REDIS_ADDR"`
	Password     string        `envconfig:"MOTORSURE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MOTORSURE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MOTORSURE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MOTORSURE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MOTORSURE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MOTORSURE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MOTORSURE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MOTORSURE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MOTORSURE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MOTORSURE_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MOTORSURE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MOTORSURE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MOTORSURE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MOTORSURE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MOTORSURE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MOTORSURE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"MOTORSURE_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MOTORSURE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"MOTORSURE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterUserLimit  int           `envconfig:"MOTORSURE_AUTH_RATE_LIMIT_REGISTER_USERNAME_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"MOTORSURE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MOTORSURE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MOTORSURE_AUTO_MIGRATE" default:"false"`
}

// LifecycleConfig tunes the daily policy reconciler.
type LifecycleConfig struct {
	LookAheadDays             int           `envconfig:"MOTORSURE_LIFECYCLE_LOOKAHEAD_DAYS" default:"60"`
	Interval                  time.Duration `envconfig:"MOTORSURE_LIFECYCLE_INTERVAL" default:"24h"`
	NotificationRetentionDays int           `envconfig:"MOTORSURE_NOTIFICATION_RETENTION_DAYS" default:"90"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
