package config

type Config interface {
	EnvConfig
	CorsConfig
	SmartRentConfig
	LoggingConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetStoragePath() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	SmartRent
	Logging
}

func New() Config {
	return mainConfig{}
}
