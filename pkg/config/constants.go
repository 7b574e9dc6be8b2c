package config

const (
	EnvPrefix = "DATASPACE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "DATASPACE_DB_DSN"
	EnvDBHost = "DATASPACE_DB_HOST"
	EnvDBUser = "DATASPACE_DB_USER"
	EnvDBName = "DATASPACE_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
