package server

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	apperrors "github.com/opskit/admin-console/internal/errors"
	"github.com/opskit/admin-console/server/flowstate"
)

type ssoProvider struct {
	OidcProvider *oidc.Provider
	OAuth2Config *oauth2.Config
	OidcVerifier *oidc.IDTokenVerifier
}

// getSSOProvider lazily initialises the OIDC provider (discovery needs the
// network, so it isn't done at construction time).
func (s *Server) getSSOProvider(ctx context.Context) (*ssoProvider, error) {
	s.ssoLock.Lock()
	defer s.ssoLock.Unlock()

	if s.sso != nil {
		return s.sso, nil
	}

	provider, err := oidc.NewProvider(ctx, s.config.GetOIDCIssuer())
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	s.sso = &ssoProvider{
		OidcProvider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     s.config.GetOIDCClientID(),
			ClientSecret: s.config.GetOIDCClientSecret(),
			Endpoint:     provider.Endpoint(),
			RedirectURL:  s.config.GetOIDCRedirectURL(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		OidcVerifier: provider.Verifier(&oidc.Config{
			ClientID: s.config.GetOIDCClientID(),
		}),
	}

	return s.sso, nil
}

// SSOLoginHandler starts the authorization code flow (GET /auth/sso)
func (s *Server) SSOLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sso, err := s.getSSOProvider(r.Context())
		if err != nil {
			log.Err(err).Msg("SSO provider unavailable")
			redirectWithError(w, r, RouteLogin, apperrors.ErrLoginFailed.Error())
			return
		}

		state := generateRandomString(32)
		verifier := generateRandomString(32)
		nonce := generateRandomString(16)

		if err := s.flowStates.Upsert(state, &flowstate.LoginFlowState{
			CodeVerifier: verifier,
			Nonce:        nonce,
			ReturnURL:    RouteMyPageApp,
			CreatedAt:    time.Now(),
		}); err != nil {
			http.Error(w, "Failed to start SSO login", http.StatusInternalServerError)
			return
		}

		authURL := sso.OAuth2Config.AuthCodeURL(state,
			oauth2.SetAuthURLParam("code_challenge", generateCodeChallenge(verifier)),
			oauth2.SetAuthURLParam("code_challenge_method", "S256"),
			oauth2.SetAuthURLParam("nonce", nonce),
		)
		http.Redirect(w, r, authURL, http.StatusSeeOther)
	}
}

// SSOCallbackHandler completes the flow (GET /auth/callback)
func (s *Server) SSOCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")
		errorDesc := r.FormValue("error_description")

		if errorParam != "" {
			http.Error(w, fmt.Sprintf("Authorization failed: %s - %s", errorParam, errorDesc), http.StatusBadRequest)
			return
		}

		if code == "" || state == "" {
			http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
			return
		}

		flowState, err := s.flowStates.Get(state)
		if err != nil || flowState == nil {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		// Clean up state after use
		if err := s.flowStates.Delete(state); err != nil {
			http.Error(w, "Invalid state parameter", http.StatusInternalServerError)
			return
		}

		sso, err := s.getSSOProvider(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get SSO provider: %v", err), http.StatusInternalServerError)
			return
		}

		// Exchange authorization code for tokens
		oauth2Token, err := sso.OAuth2Config.Exchange(
			r.Context(),
			code,
			oauth2.SetAuthURLParam("code_verifier", flowState.CodeVerifier),
		)
		if err != nil {
			http.Error(w, fmt.Sprintf("Token exchange failed: %v", err), http.StatusInternalServerError)
			return
		}

		rawIDToken, ok := oauth2Token.Extra("id_token").(string)
		if !ok {
			http.Error(w, "No ID token in response", http.StatusInternalServerError)
			return
		}

		idToken, err := sso.OidcVerifier.Verify(r.Context(), rawIDToken)
		if err != nil {
			http.Error(w, fmt.Sprintf("ID token verification failed: %v", err), http.StatusInternalServerError)
			return
		}

		var claims struct {
			Nonce             string `json:"nonce"`
			PreferredUsername string `json:"preferred_username"`
			Email             string `json:"email"`
			Name              string `json:"name"`
		}
		if err := idToken.Claims(&claims); err != nil {
			http.Error(w, fmt.Sprintf("Failed to extract claims: %v", err), http.StatusInternalServerError)
			return
		}

		// Validate nonce to prevent replay attacks
		if claims.Nonce != flowState.Nonce {
			http.Error(w, "Invalid nonce", http.StatusUnauthorized)
			return
		}

		// The IdP authenticated the user; the directory still decides
		// whether they exist for this console.
		username := claims.PreferredUsername
		if username == "" {
			username = claims.Email
		}

		if !s.sessions.LoginIdentity(r.Context(), username) {
			redirectWithError(w, r, RouteLogin, s.sessions.LastError())
			return
		}

		current := s.sessions.Current()
		cookieValue, err := s.cookies.Mint(current)
		if err != nil {
			log.Err(err).Msg("Failed to mint session cookie")
			s.sessions.Logout()
			redirectWithError(w, r, RouteLogin, apperrors.ErrLoginFailed.Error())
			return
		}
		s.SetSessionCookie(w, r, cookieValue, s.cookies.MaxAge())

		s.workspaces.Fetch(r.Context(), current.ID)

		returnTo := flowState.ReturnURL
		if returnTo == "" {
			returnTo = RouteMyPageApp
		}
		redirectSuccess(w, r, returnTo)
	}
}

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		// Without randomness the state/verifier/nonce values are forgeable.
		panic("crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// generateCodeChallenge creates a PKCE code challenge from a verifier
func generateCodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
