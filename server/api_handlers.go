package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/opskit/admin-console/session"
	"github.com/opskit/admin-console/workspace"
)

// SessionView is the public projection of a session. The sid never leaves
// the server except inside the signed cookie.
type SessionView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company"`
	Role      string    `json:"role"`
	LastLogin time.Time `json:"lastLogin"`
}

func sessionView(current *session.Session) *SessionView {
	if current == nil {
		return nil
	}
	return &SessionView{
		ID:        current.ID,
		Username:  current.Username,
		Name:      current.Name,
		Email:     current.Email,
		Company:   current.Company,
		Role:      current.Role,
		LastLogin: current.LastLogin,
	}
}

// SessionStateResponse is the JSON shape of GET /api/session
type SessionStateResponse struct {
	Session *SessionView `json:"session"`
	Error   string       `json:"error,omitempty"`
}

// SessionStateHandler exposes the session store's state as JSON. Returns a
// null session when logged out rather than an error status, so presentation
// collaborators can poll it unauthenticated.
func (s *Server) SessionStateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := SessionStateResponse{
			Session: sessionView(s.sessions.Current()),
			Error:   s.sessions.LastError(),
		}
		writeJSON(w, resp)
	}
}

// WorkspaceStateResponse is the JSON shape of GET /api/workspaces
type WorkspaceStateResponse struct {
	Workspaces []workspace.Workspace `json:"workspaces"`
	Current    *workspace.Workspace  `json:"current"`
	Loading    bool                  `json:"loading"`
	Error      string                `json:"error,omitempty"`
}

// WorkspaceStateHandler exposes the workspace store's state as JSON.
// Guarded: requires an active session.
func (s *Server) WorkspaceStateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := WorkspaceStateResponse{
			Workspaces: s.workspaces.Workspaces(),
			Current:    s.workspaces.Current(),
			Loading:    s.workspaces.Loading(),
			Error:      s.workspaces.LastError(),
		}
		writeJSON(w, resp)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("failed to encode JSON response")
	}
}
