package config

type Config interface {
	EnvConfig
	CorsConfig
	SessionConfig
	SSOConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetStateFolder() string
	GetBackendBaseURL() string
	GetBackendTimeout() string
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
	Session
	SSO
}

func New() Config {
	return mainConfig{}
}
