package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	folderEnvVar  = "STATE_FOLDER"
	backendURLVar = "BACKEND_URL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Admin Console")
}

// GetStateFolder returns the directory the persisted session lives under
func (EnvVars) GetStateFolder() string {
	return GetEnv(folderEnvVar, "./state")
}

// GetBackendBaseURL returns the base URL of the directory REST service
func (EnvVars) GetBackendBaseURL() string {
	return GetEnv(backendURLVar, "http://localhost:3001")
}

// GetBackendTimeout returns the per-request timeout for backend calls as a
// duration string. A hung backend used to hang the operation indefinitely;
// the timeout closes that gap.
func (EnvVars) GetBackendTimeout() string {
	return GetEnv("BACKEND_TIMEOUT", "10s")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
