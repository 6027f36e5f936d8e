package config

const (
	EnvPrefix = "SIGNFLOW"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SIGNFLOW_DB_DSN"
	EnvDBHost = "SIGNFLOW_DB_HOST"
	EnvDBUser = "SIGNFLOW_DB_USER"
	EnvDBName = "SIGNFLOW_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
