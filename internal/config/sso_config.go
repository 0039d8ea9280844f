package config

type SSOConfig interface {
	GetOIDCIssuer() string
	GetOIDCClientID() string
	GetOIDCClientSecret() string
	GetOIDCRedirectURL() string
	SSOEnabled() bool
}

type SSO struct{}

var _ SSOConfig = SSO{}

// GetOIDCIssuer returns the issuer URL of the identity provider used for
// single sign-on. SSO is disabled when this is empty.
func (SSO) GetOIDCIssuer() string {
	return GetEnv("OIDC_ISSUER", "")
}

func (SSO) GetOIDCClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "")
}

func (SSO) GetOIDCClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "")
}

func (SSO) GetOIDCRedirectURL() string {
	return GetEnv("OIDC_REDIRECT_URL", "http://localhost:8080/auth/callback")
}

func (s SSO) SSOEnabled() bool {
	return s.GetOIDCIssuer() != "" && s.GetOIDCClientID() != ""
}
