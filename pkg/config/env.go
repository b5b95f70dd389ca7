package config

// EnvPrefix is handed to envconfig; every field carries an absolute key so the
// prefix only matters for untagged fields.
const EnvPrefix = "KICKSTOCK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageBackendLocal = "local"
	StorageBackendMinio = "minio"
)

const (
	EnvAppEnv   = "KICKSTOCK_APP_ENV"
	EnvPort     = "KICKSTOCK_APP_PORT"
	EnvLogLevel = "KICKSTOCK_LOG_LEVEL"

	EnvDBDSN  = "KICKSTOCK_DB_DSN"
	EnvDBHost = "KICKSTOCK_DB_HOST"
	EnvDBUser = "KICKSTOCK_DB_USER"
	EnvDBName = "KICKSTOCK_DB_NAME"

	EnvRedisURL = "KICKSTOCK_REDIS_URL"

	EnvJWTSecret = "KICKSTOCK_JWT_SECRET"
	EnvJWTIssuer = "KICKSTOCK_JWT_ISSUER"

	EnvStorageBackend   = "KICKSTOCK_STORAGE_BACKEND"
	EnvStorageLocalDir  = "KICKSTOCK_STORAGE_LOCAL_DIR"
	EnvStorageEndpoint  = "KICKSTOCK_STORAGE_ENDPOINT"
	EnvStorageAccessKey = "KICKSTOCK_STORAGE_ACCESS_KEY"
	EnvStorageSecretKey = "KICKSTOCK_STORAGE_SECRET_KEY"

	EnvUseSQLite = "KICKSTOCK_USE_SQLITE"
)

var componentDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
