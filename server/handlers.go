package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"

	apperrors "github.com/opskit/admin-console/internal/errors"
	"github.com/opskit/admin-console/session"
	"github.com/opskit/admin-console/workspace"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName    string
	Error      string
	Username   string // Preserve username on error
	SSOEnabled bool
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	loginTmpl, err := ParseTemplate("login.html")
	if err != nil {
		panic("Failed to parse login template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		// Already logged in (cookie verified against the active session) -
		// straight to the console. Checking the store alone would bounce a
		// cookieless client between here and the guard.
		if s.requestSession(r) != nil {
			redirectSuccess(w, r, RouteMyPageApp)
			return
		}

		data := LoginPageData{
			AppName:    s.config.GetAppName(),
			Error:      r.URL.Query().Get("error"),
			Username:   r.URL.Query().Get("username"),
			SSOEnabled: s.config.SSOEnabled(),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := loginTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render login template")
			http.Error(w, "Failed to render login page", http.StatusInternalServerError)
		}
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		username := r.FormValue("username")
		password := r.FormValue("password")

		if username == "" || password == "" {
			redirectWithErrorAndUsername(w, r, RouteLogin, "Username and password are required", username)
			return
		}

		if !s.sessions.Login(r.Context(), username, password) {
			redirectWithErrorAndUsername(w, r, RouteLogin, s.sessions.LastError(), username)
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

		// Load the workspaces for the freshly authenticated user; an
		// existing selection from a previous login survives the refetch.
		s.workspaces.Fetch(r.Context(), current.ID)

		redirectSuccess(w, r, RouteMyPageApp)
	}
}

// LogoutHandler ends the session (GET /auth/logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sessions.Logout()
		s.workspaces.Reset()
		s.SetSessionCookie(w, r, "", -1) // Delete cookie
		redirectSuccess(w, r, RouteLogin)
	}
}

// ModulePageData contains data for rendering a console module page
type ModulePageData struct {
	AppName          string
	Module           string
	ModulePath       string
	Title            string
	User             *session.Session
	Modules          []Route
	Workspaces       []workspace.Workspace
	CurrentWorkspace *workspace.Workspace
	WorkspaceError   string
}

// ModulePageHandler renders one functional module of the console shell.
func (s *Server) ModulePageHandler(route Route) http.HandlerFunc {
	tmpl, err := ParseTemplate("mypage.html")
	if err != nil {
		panic("Failed to parse mypage template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		current := sessionFromContext(r.Context())
		if current == nil {
			redirectSuccess(w, r, RouteLogin)
			return
		}

		// A restored session (restart) arrives here without workspaces
		// having been loaded yet.
		if len(s.workspaces.Workspaces()) == 0 && !s.workspaces.Loading() {
			s.workspaces.Fetch(r.Context(), current.ID)
		}

		data := ModulePageData{
			AppName:          s.config.GetAppName(),
			Module:           route.Name,
			ModulePath:       route.Path,
			Title:            route.Title,
			User:             current,
			Modules:          s.routeTable.Modules(),
			Workspaces:       s.workspaces.Workspaces(),
			CurrentWorkspace: s.workspaces.Current(),
			WorkspaceError:   s.workspaces.LastError(),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			log.Err(err).Str("module", route.Name).Msg("Failed to render module template")
			http.Error(w, "Failed to render page", http.StatusInternalServerError)
		}
	}
}

// WorkspaceSelectHandler changes the current workspace selection
// (POST /mypage/workspace/select)
func (s *Server) WorkspaceSelectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		returnTo := r.FormValue("redirect")
		if returnTo == "" {
			returnTo = RouteMyPageApp
		}

		workspaceID, err := strconv.ParseInt(r.FormValue("workspace_id"), 10, 64)
		if err != nil {
			redirectWithError(w, r, returnTo, "Unknown workspace")
			return
		}

		selected, ok := s.workspaces.Find(workspaceID)
		if !ok {
			redirectWithError(w, r, returnTo, "Unknown workspace")
			return
		}

		s.workspaces.SetCurrent(selected)
		redirectSuccess(w, r, returnTo)
	}
}

// SetSessionCookie sets (or, with a negative maxAge, deletes) the session cookie
func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
	})
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	fullPath := path + "?error=" + url.QueryEscape(errorMsg)
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", fullPath)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, fullPath, http.StatusSeeOther)
}

// redirectWithErrorAndUsername preserves the typed username across a failed login
func redirectWithErrorAndUsername(w http.ResponseWriter, r *http.Request, path, errorMsg, username string) {
	fullPath := path + "?error=" + url.QueryEscape(errorMsg)
	if username != "" {
		fullPath += "&username=" + url.QueryEscape(username)
	}
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", fullPath)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, fullPath, http.StatusSeeOther)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
