package server

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/opskit/admin-console/internal/config"
	"github.com/opskit/admin-console/server/flowstate"
	"github.com/opskit/admin-console/session"
	"github.com/opskit/admin-console/workspace"
)

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	sessions   *session.Store
	workspaces *workspace.Store
	cookies    *session.CookieCodec
	routeTable *RouteTable
	flowStates flowstate.Repo

	sso     *ssoProvider
	ssoLock sync.Mutex
}

func New(cfg config.Config, sessions *session.Store, workspaces *workspace.Store) (*Server, error) {
	routeTable, err := LoadRouteTable()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to load route table: %w", err)
	}

	s := &Server{
		mux:        http.NewServeMux(),
		config:     cfg,
		sessions:   sessions,
		workspaces: workspaces,
		cookies:    session.NewCookieCodec(cfg.GetSessionSigningKey(), cfg.GetSessionMaxAge()),
		routeTable: routeTable,
		flowStates: flowstate.NewInMemoryRepo(),
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Debug().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
