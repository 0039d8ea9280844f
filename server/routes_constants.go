package server

// Route path constants
// Routes that code links or redirects to are defined here; the page surface
// itself comes from the declarative route table (routes.yaml).
const (
	// Auth Routes - Login & Logout
	RouteLogin      = "/login"
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"

	// Auth Routes - Single sign-on
	RouteSSOLogin    = "/auth/sso"
	RouteSSOCallback = "/auth/callback"

	// Console Routes
	RouteMyPage          = "/mypage"
	RouteMyPageApp       = "/mypage/app"
	RouteWorkspaceSelect = "/mypage/workspace/select"

	// API Routes (JSON state for presentation collaborators)
	RouteAPISession    = "/api/session"
	RouteAPIWorkspaces = "/api/workspaces"
)
