package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/opskit/admin-console/backend"
	apperrors "github.com/opskit/admin-console/internal/errors"
)

const stateFileName = "session.json"

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Directory is the slice of the backend client the store needs.
type Directory interface {
	FindUsers(ctx context.Context, username, password string) ([]backend.UserRecord, error)
	FindUsersByUsername(ctx context.Context, username string) ([]backend.UserRecord, error)
}

// Store holds the active session. The in-memory copy and the persisted copy
// are kept identical: every mutation writes through to the state file.
type Store struct {
	mu        sync.RWMutex
	directory Directory
	statePath string
	session   *Session
	lastError string
}

// NewStore creates a session store persisting under stateDir and restores
// any previously persisted session. A missing or corrupt state file yields
// a nil session, never a startup failure.
func NewStore(directory Directory, stateDir string) (*Store, error) {
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return nil, fmt.Errorf("[session NewStore] failed to create state directory: %w", err)
	}

	s := &Store{
		directory: directory,
		statePath: filepath.Join(stateDir, stateFileName),
	}
	s.restore()
	return s, nil
}

// Login queries the directory for an exact username/password match. The
// first matching record becomes the active session. On rejection or
// transport failure the prior session (if any) is left untouched and the
// outcome is recorded in LastError. No retry is performed.
func (s *Store) Login(ctx context.Context, username, password string) bool {
	records, err := s.directory.FindUsers(ctx, username, password)
	if err != nil {
		log.Err(err).Str("username", username).Msg("login request failed")
		s.setError(apperrors.ErrLoginFailed.Error())
		return false
	}

	if len(records) == 0 {
		s.setError(apperrors.ErrInvalidCredentials.Error())
		return false
	}

	return s.establish(records[0])
}

// LoginIdentity establishes a session for an already-authenticated identity
// (the SSO callback, where the identity provider has verified the user).
// The directory is still consulted so the session carries the directory
// record, not the provider's claims.
func (s *Store) LoginIdentity(ctx context.Context, username string) bool {
	records, err := s.directory.FindUsersByUsername(ctx, username)
	if err != nil {
		log.Err(err).Str("username", username).Msg("identity lookup failed")
		s.setError(apperrors.ErrLoginFailed.Error())
		return false
	}

	if len(records) == 0 {
		s.setError(apperrors.ErrInvalidCredentials.Error())
		return false
	}

	return s.establish(records[0])
}

// Logout clears the in-memory session and removes the persisted copy.
// Calling it with no active session is a no-op.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = nil
	if err := os.Remove(s.statePath); err != nil && !os.IsNotExist(err) {
		log.Err(err).Str("path", s.statePath).Msg("failed to remove persisted session")
	}
}

// Current returns a copy of the active session, or nil when logged out.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return nil
	}
	session := *s.session
	return &session
}

// LastError returns the message of the most recent failed login, cleared on
// the next successful one.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

func (s *Store) establish(record backend.UserRecord) bool {
	session := &Session{
		SID:       uuid.New().String(),
		ID:        record.ID,
		Username:  record.Username,
		Name:      record.Name,
		Email:     record.Email,
		Company:   record.Company,
		Role:      record.Role,
		LastLogin: NowTimeFunc().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Persist first so the write-through invariant holds: memory never gets
	// ahead of the state file.
	if err := s.save(session); err != nil {
		log.Err(err).Msg("failed to persist session")
		s.lastError = apperrors.ErrLoginFailed.Error()
		return false
	}

	s.session = session
	s.lastError = ""

	log.Info().
		Int64("userID", session.ID).
		Str("username", session.Username).
		Msg("session established")

	return true
}

func (s *Store) setError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = message
}

func (s *Store) restore() {
	data, err := os.ReadFile(s.statePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", s.statePath).Msg("unreadable session state, starting logged out")
		}
		return
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		log.Warn().Err(err).Str("path", s.statePath).Msg("corrupt session state, starting logged out")
		return
	}

	s.session = &session
	log.Info().Str("username", session.Username).Msg("session restored from disk")
}

// save writes the session file atomically (tmp + rename).
func (s *Store) save(session *Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tempPath := s.statePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session state: %w", err)
	}

	if err := os.Rename(tempPath, s.statePath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save session state: %w", err)
	}

	return nil
}
