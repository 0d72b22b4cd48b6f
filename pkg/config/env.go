package config

const (
	EnvPrefix = "WEBYARDEN"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "WEBYARDEN_APP_ENV"
	EnvPort     = "WEBYARDEN_APP_PORT"
	EnvLogLevel = "WEBYARDEN_LOG_LEVEL"

	EnvDBDSN    = "WEBYARDEN_DB_DSN"
	EnvDBDriver = "WEBYARDEN_DB_DRIVER"
	EnvDBHost   = "WEBYARDEN_DB_HOST"
	EnvDBUser   = "WEBYARDEN_DB_USER"
	EnvDBName   = "WEBYARDEN_DB_NAME"

	EnvRedisURL = "WEBYARDEN_REDIS_URL"

	EnvJWTSecret              = "WEBYARDEN_JWT_SECRET"
	EnvJWTIssuer              = "WEBYARDEN_JWT_ISSUER"
	EnvJWTExpMins             = "WEBYARDEN_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "WEBYARDEN_REFRESH_TOKEN_TTL_MINUTES"

	EnvCacheTTL         = "WEBYARDEN_CACHE_TTL"
	EnvCORSOrigins      = "WEBYARDEN_CORS_ALLOWED_ORIGINS"
	EnvSendgridAPIKey   = "WEBYARDEN_SENDGRID_API_KEY"
	EnvBootstrapAdmin   = "WEBYARDEN_AUTH_BOOTSTRAP_ADMIN"
	EnvUseSQLite        = "WEBYARDEN_USE_SQLITE"
	EnvRateLimitWindow  = "WEBYARDEN_RATE_LIMIT_WINDOW"
	EnvRateLimitRequest = "WEBYARDEN_RATE_LIMIT_REQUESTS"
)

// legacyDBEnvVars are required together when no DSN is provided.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)
