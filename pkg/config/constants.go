package config

const (
	// EnvPrefix namespaces every environment variable this service reads.
	EnvPrefix = "MEDLAB"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "MEDLAB_DB_DSN"
	EnvDBHost = "MEDLAB_DB_HOST"
	EnvDBUser = "MEDLAB_DB_USER"
	EnvDBName = "MEDLAB_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
