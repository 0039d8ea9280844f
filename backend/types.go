package backend

// UserRecord is the shape of an entry in the directory's user collection.
type UserRecord struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Company  string `json:"company"`
	Role     string `json:"role"`
}

// WorkspaceRecord is the shape of an entry in the directory's workspace
// collection. The capacity counters are backend-trusted: no invariant is
// enforced between MaxApps, AssignedCount and UnassignedCount.
type WorkspaceRecord struct {
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
