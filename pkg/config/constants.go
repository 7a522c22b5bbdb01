package config

const (
	// EnvPrefix scopes every environment variable the service reads.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SOUVENIR_DB_DSN"
	EnvDBHost = "SOUVENIR_DB_HOST"
	EnvDBUser = "SOUVENIR_DB_USER"
	EnvDBName = "SOUVENIR_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
