package workspace

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/opskit/admin-console/backend"
	apperrors "github.com/opskit/admin-console/internal/errors"
)

// Lister is the slice of the backend client the store needs.
type Lister interface {
	ListWorkspaces(ctx context.Context, userID int64) ([]backend.WorkspaceRecord, error)
}

// Store holds the workspace list and the current selection. Concurrent
// Fetch calls are not fenced: the last response to resolve wins.
type Store struct {
	mu         sync.RWMutex
	lister     Lister
	workspaces []Workspace
	current    *Workspace
	loading    bool
	lastError  string
}

func NewStore(lister Lister) *Store {
	return &Store{lister: lister}
}

// Fetch replaces the workspace list with the backend's result for userID.
// On a non-empty result with no existing selection, the first element
// becomes current. An existing selection is kept even when the new list no
// longer contains it: selection is only ever changed explicitly.
func (s *Store) Fetch(ctx context.Context, userID int64) {
	s.mu.Lock()
	s.loading = true
	s.lastError = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	records, err := s.lister.ListWorkspaces(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		log.Err(err).Int64("userID", userID).Msg("workspace fetch failed")
		s.lastError = apperrors.ErrWorkspaceFetch.Error()
		return
	}

	workspaces := make([]Workspace, 0, len(records))
	for _, record := range records {
		workspaces = append(workspaces, fromRecord(record))
	}
	s.workspaces = workspaces

	if len(s.workspaces) > 0 && s.current == nil {
		first := s.workspaces[0]
		s.current = &first
	}

	log.Debug().Int64("userID", userID).Int("count", len(workspaces)).Msg("workspaces loaded")
}

// SetCurrent unconditionally overwrites the selection. Membership in the
// loaded list is not checked.
func (s *Store) SetCurrent(workspace Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &workspace
}

// Current returns a copy of the selected workspace, or nil.
func (s *Store) Current() *Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	current := *s.current
	return &current
}

// Workspaces returns a copy of the loaded list in backend order.
func (s *Store) Workspaces() []Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()

	workspaces := make([]Workspace, len(s.workspaces))
	copy(workspaces, s.workspaces)
	return workspaces
}

// Find returns the loaded workspace with the given id.
func (s *Store) Find(id int64) (Workspace, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, workspace := range s.workspaces {
		if workspace.ID == id {
			return workspace, true
		}
	}
	return Workspace{}, false
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Reset clears the list and the selection. Called on logout so the next
// session doesn't inherit another user's workspaces.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workspaces = nil
	s.current = nil
	s.lastError = ""
}
