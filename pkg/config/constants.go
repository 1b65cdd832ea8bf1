package config

const EnvPrefix = "TRUSTFLOW"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv        = "TRUSTFLOW_APP_ENV"
	EnvPort          = "TRUSTFLOW_APP_PORT"
	EnvLogLevel      = "TRUSTFLOW_LOG_LEVEL"
	EnvPublicBaseURL = "TRUSTFLOW_PUBLIC_BASE_URL"

	EnvDBDSN  = "TRUSTFLOW_DB_DSN"
	EnvDBHost = "TRUSTFLOW_DB_HOST"
	EnvDBUser = "TRUSTFLOW_DB_USER"
	EnvDBName = "TRUSTFLOW_DB_NAME"

	EnvRedisURL = "TRUSTFLOW_REDIS_URL"

	EnvJWTSecret   = "TRUSTFLOW_JWT_SECRET"
	EnvJWTAudience = "TRUSTFLOW_JWT_AUDIENCE"

	EnvPopupPollInterval = "TRUSTFLOW_POPUP_POLL_INTERVAL"
	EnvPublicCacheTTL    = "TRUSTFLOW_PUBLIC_DATA_CACHE_TTL"
	EnvCORSOrigins       = "TRUSTFLOW_CORS_DASHBOARD_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
