package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Auth          AuthConfig
	AuthRateLimit AuthRateLimitConfig
	RateLimit     RateLimitConfig
	Cache         CacheConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
	Sendgrid      SendgridConfig
	Maintenance   MaintenanceConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WEBYARDEN_APP_ENV" required:"true"`
	Port         string `envconfig:"WEBYARDEN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WEBYARDEN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WEBYARDEN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServerConfig struct {
	ReadTimeout     time.Duration `envconfig:"WEBYARDEN_SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WEBYARDEN_SERVER_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"WEBYARDEN_SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

type DBConfig struct {
	DSN    string `envconfig:"WEBYARDEN_DB_DSN"`
	Driver string `envconfig:"WEBYARDEN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WEBYARDEN_DB_HOST"`
	LegacyPort     int    `envconfig:"WEBYARDEN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WEBYARDEN_DB_USER"`
	LegacyPassword string `envconfig:"WEBYARDEN_DB_PASSWORD"`
	LegacyName     string `envconfig:"WEBYARDEN_DB_NAME"`
	LegacySSLMode  string `envconfig:"WEBYARDEN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WEBYARDEN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WEBYARDEN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WEBYARDEN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WEBYARDEN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite dialector was selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"WEBYARDEN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WEBYARDEN_REDIS_ADDR"`
	Password     string        `envconfig:"WEBYARDEN_REDIS_PASSWORD"`
	DB           int           `envconfig:"WEBYARDEN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WEBYARDEN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WEBYARDEN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WEBYARDEN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WEBYARDEN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WEBYARDEN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"WEBYARDEN_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"WEBYARDEN_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"WEBYARDEN_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"WEBYARDEN_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"WEBYARDEN_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WEBYARDEN_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WEBYARDEN_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WEBYARDEN_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WEBYARDEN_ARGON_KEY_LEN" default:"32"`
}

// AuthConfig controls account provisioning.
type AuthConfig struct {
	BootstrapAdmin bool `envconfig:"WEBYARDEN_AUTH_BOOTSTRAP_ADMIN" default:"false"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"WEBYARDEN_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"WEBYARDEN_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"WEBYARDEN_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"WEBYARDEN_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"WEBYARDEN_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"WEBYARDEN_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// RateLimitConfig is the per-IP budget applied to the whole public API.
type RateLimitConfig struct {
	Window   time.Duration `envconfig:"WEBYARDEN_RATE_LIMIT_WINDOW" default:"15m"`
	Requests int           `envconfig:"WEBYARDEN_RATE_LIMIT_REQUESTS" default:"100"`
}

type CacheConfig struct {
	TTL time.Duration `envconfig:"WEBYARDEN_CACHE_TTL" default:"5m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"WEBYARDEN_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WEBYARDEN_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WEBYARDEN_AUTO_MIGRATE" default:"false"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"WEBYARDEN_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"WEBYARDEN_SENDGRID_FROM_EMAIL" default:"no-reply@webyarden.com"`
	NotifyTo    string `envconfig:"WEBYARDEN_SENDGRID_NOTIFY_EMAIL"`
}

type MaintenanceConfig struct {
	Interval         time.Duration `envconfig:"WEBYARDEN_MAINTENANCE_INTERVAL" default:"1h"`
	ContactRetention time.Duration `envconfig:"WEBYARDEN_CONTACT_RETENTION" default:"8760h"`
	// MetricsAddr, when set, serves /metrics from the worker (e.g. ":9102").
	MetricsAddr string `envconfig:"WEBYARDEN_MAINTENANCE_METRICS_ADDR"`
}

// Enabled reports whether contact notifications can be delivered.
func (s SendgridConfig) Enabled() bool {
	return strings.TrimSpace(s.APIKey) != "" && strings.TrimSpace(s.NotifyTo) != ""
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:webyarden.db?cache=shared"
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
