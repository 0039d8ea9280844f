package server

import "net/http"

func (s *Server) initRoutes() {
	// Page surface from the declarative route table
	for _, route := range s.routeTable.Routes {
		s.registerRoute(route, "", false)
	}

	// LOGIN
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Workspace selection (gated)
	s.RegisterRouteFunc("POST "+RouteWorkspaceSelect, ChainMiddleware(s.WorkspaceSelectHandler(), s.HTMLMiddleWare(s.RequireSession())...))

	// JSON state for presentation collaborators
	s.RegisterRouteFunc("GET "+RouteAPISession, ChainMiddleware(s.SessionStateHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAPIWorkspaces, ChainMiddleware(s.WorkspaceStateHandler(), append(s.APIMiddleware(), s.RequireSession())...))

	// Optional single sign-on
	if s.config.SSOEnabled() {
		s.RegisterRouteFunc("GET "+RouteSSOLogin, ChainMiddleware(s.SSOLoginHandler(), s.HTMLMiddleWare()...))
		s.RegisterRouteFunc("GET "+RouteSSOCallback, ChainMiddleware(s.SSOCallbackHandler(), s.HTMLMiddleWare()...))
	}
}

// registerRoute wires one route table entry (and its children) onto the
// mux. A parent's RequiresAuth gates its whole subtree.
func (s *Server) registerRoute(route Route, parentPath string, gated bool) {
	fullPath := joinPath(parentPath, route.Path)
	gated = gated || route.RequiresAuth

	for _, child := range route.Children {
		s.registerRoute(child, fullPath, gated)
	}

	handler := s.pageHandler(route)
	if handler == nil {
		return
	}

	middleware := s.HTMLMiddleWare()
	if gated {
		middleware = s.HTMLMiddleWare(s.RequireSession())
	}

	pattern := fullPath
	if pattern == "/" {
		pattern = "/{$}" // exact root, not the catch-all subtree
	}
	s.RegisterRouteFunc("GET "+pattern, ChainMiddleware(handler, middleware...))
}

// pageHandler resolves a route table entry to its handler. Parent grouping
// entries render nothing themselves.
func (s *Server) pageHandler(route Route) http.HandlerFunc {
	switch {
	case route.Redirect != "":
		return s.RedirectHandler(route.Redirect)
	case route.Name == "login":
		return s.LoginPageHandler()
	case route.Name != "" && len(route.Children) == 0:
		return s.ModulePageHandler(route)
	default:
		return nil
	}
}

func (s *Server) RedirectHandler(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}
