package config

import "time"

type SessionConfig interface {
	GetSessionSigningKey() []byte
	GetSessionMaxAge() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

// GetSessionSigningKey returns the HMAC key used to sign the session cookie.
// The default is for local development only.
func (Session) GetSessionSigningKey() []byte {
	return []byte(GetEnv("SESSION_SIGNING_KEY", "dev-only-insecure-signing-key"))
}

func (Session) GetSessionMaxAge() time.Duration {
	maxAge, err := time.ParseDuration(GetEnv("SESSION_MAX_AGE", "12h"))
	if err != nil {
		return 12 * time.Hour
	}
	return maxAge
}
