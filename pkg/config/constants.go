package config

// EnvPrefix scopes all envconfig lookups.
const EnvPrefix = "MEALBRIDGE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv     = "MEALBRIDGE_APP_ENV"
	EnvPort       = "MEALBRIDGE_APP_PORT"
	EnvDBDSN      = "MEALBRIDGE_DB_DSN"
	EnvDBHost     = "MEALBRIDGE_DB_HOST"
	EnvDBUser     = "MEALBRIDGE_DB_USER"
	EnvDBName     = "MEALBRIDGE_DB_NAME"
	EnvRedisURL   = "MEALBRIDGE_REDIS_URL"
	EnvJWTSecret  = "MEALBRIDGE_JWT_SECRET"
	EnvJWTIssuer  = "MEALBRIDGE_JWT_ISSUER"
	EnvJWTExpMins = "MEALBRIDGE_JWT_EXPIRATION_MINUTES"
)
