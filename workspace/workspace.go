// Package workspace owns the list of workspaces visible to the logged-in
// user and the currently selected one.
package workspace

import "github.com/opskit/admin-console/backend"

// Workspace is a named resource container scoped to a user.
type Workspace struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Key             string `json:"key"`
	Type            string `json:"type"`
	UserID          int64  `json:"userId"`
	CreatedAt       string `json:"createdAt"`
	CreatedBy       string `json:"createdBy"`
	MaxApps         int    `json:"maxApps"`
	AssignedCount   int    `json:"assignedCount"`
	UnassignedCount int    `json:"unassignedCount"`
	Assigned        bool   `json:"assigned"`
}

func fromRecord(record backend.WorkspaceRecord) Workspace {
	return Workspace{
		ID:              record.ID,
		Name:            record.Name,
		Key:             record.Key,
		Type:            record.Type,
		UserID:          record.UserID,
		CreatedAt:       record.CreatedAt,
		CreatedBy:       record.CreatedBy,
		MaxApps:         record.MaxApps,
		AssignedCount:   record.AssignedCount,
		UnassignedCount: record.UnassignedCount,
		Assigned:        record.Assigned,
	}
}
