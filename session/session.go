// Package session owns the authenticated operator session: it verifies
// credentials against the directory backend, keeps the active session in
// memory and writes it through to a state file so it survives restarts.
package session

import "time"

// Session is the record of an authenticated user. It exists if and only if
// a successful login has occurred and no logout has occurred since.
type Session struct {
	// SID is the server-side session identifier carried by the cookie.
	SID string `json:"sid"`

	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company"`
	Role      string    `json:"role"`
	LastLogin time.Time `json:"lastLogin"` // set at creation, never updated
}
