package server_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opskit/admin-console/backend"
	"github.com/opskit/admin-console/internal/config"
	"github.com/opskit/admin-console/server"
	"github.com/opskit/admin-console/session"
	"github.com/opskit/admin-console/workspace"
)

// testConfig is a fixed-value config.Config for tests
type testConfig struct{}

func (testConfig) GetPort() string                            { return ":0" }
func (testConfig) GetAppName() string                         { return "Admin Console" }
func (testConfig) GetStateFolder() string                     { return "" }
func (testConfig) GetBackendBaseURL() string                  { return "" }
func (testConfig) GetBackendTimeout() string                  { return "5s" }
func (testConfig) GetEnv() string                             { return "TEST" }
func (testConfig) GetAllowedOrigins() config.AllowedOrigins   { return config.AllowedOrigins{"https://ui.example.com": {}} }
func (testConfig) GetAllowedMethods() string                  { return "GET, POST" }
func (testConfig) GetAllowedHeaders() string                  { return "Content-Type, Authorization" }
func (testConfig) GetSessionSigningKey() []byte               { return []byte("test-signing-key") }
func (testConfig) GetSessionMaxAge() time.Duration            { return time.Hour }
func (testConfig) GetOIDCIssuer() string                      { return "" }
func (testConfig) GetOIDCClientID() string                    { return "" }
func (testConfig) GetOIDCClientSecret() string                { return "" }
func (testConfig) GetOIDCRedirectURL() string                 { return "" }
func (testConfig) SSOEnabled() bool                           { return false }

var _ config.Config = testConfig{}

// newDirectoryBackend serves a fixed user and workspace collection the way
// the directory REST service would.
func newDirectoryBackend(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		username := r.URL.Query().Get("username")
		password, hasPassword := r.URL.Query()["password"]
		if username == "alice" && (!hasPassword || password[0] == "x") {
			w.Write([]byte(`[{"id":7,"username":"alice","name":"Alice","email":"a@x.com","company":"Acme","role":"admin"}]`))
			return
		}
		w.Write([]byte(`[]`))
	})
	mux.HandleFunc("GET /workspaces", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("userId") != "7" {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[
			{"id":1,"name":"Production","key":"prd","type":"dedicated","userId":7,"createdAt":"2024-01-01","createdBy":"alice","maxApps":20,"assignedCount":20,"unassignedCount":0,"assigned":true},
			{"id":2,"name":"Staging","key":"stg","type":"shared","userId":7,"createdAt":"2024-01-02","createdBy":"alice","maxApps":10,"assignedCount":4,"unassignedCount":6,"assigned":false}
		]`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type console struct {
	server     *httptest.Server
	client     *http.Client
	sessions   *session.Store
	workspaces *workspace.Store
}

func newConsole(t *testing.T) *console {
	t.Helper()

	directoryBackend := newDirectoryBackend(t)
	directory := backend.NewClient(directoryBackend.URL, 5*time.Second)

	sessions, err := session.NewStore(directory, t.TempDir())
	require.NoError(t, err)
	workspaces := workspace.NewStore(directory)

	consoleServer, err := server.New(testConfig{}, sessions, workspaces)
	require.NoError(t, err)

	srv := httptest.NewServer(consoleServer)
	t.Cleanup(srv.Close)

	return &console{
		server: srv,
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		sessions:   sessions,
		workspaces: workspaces,
	}
}

func (c *console) get(t *testing.T, path string, cookie *http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.server.URL+path, nil)
	require.NoError(t, err)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := c.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (c *console) postForm(t *testing.T, path string, form url.Values, cookie *http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := c.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// login authenticates as alice and returns the session cookie
func (c *console) login(t *testing.T) *http.Cookie {
	t.Helper()
	resp := c.postForm(t, "/auth/login", url.Values{"username": {"alice"}, "password": {"x"}}, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/mypage/app", resp.Header.Get("Location"))

	for _, cookie := range resp.Cookies() {
		if cookie.Name == session.CookieName {
			return cookie
		}
	}
	t.Fatal("no session cookie set on login")
	return nil
}

func TestRouting(t *testing.T) {
	t.Run("root redirects to login", func(t *testing.T) {
		c := newConsole(t)
		resp := c.get(t, "/", nil)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/login", resp.Header.Get("Location"))
	})

	t.Run("login page renders", func(t *testing.T) {
		c := newConsole(t)
		resp := c.get(t, "/login", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown path is 404", func(t *testing.T) {
		c := newConsole(t)
		resp := c.get(t, "/nosuchpage", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestNavigationGuard(t *testing.T) {
	t.Run("gated pages redirect to login without a session", func(t *testing.T) {
		c := newConsole(t)
		for _, path := range []string{"/mypage", "/mypage/app", "/mypage/table", "/mypage/admin-settings"} {
			resp := c.get(t, path, nil)
			assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
			assert.Equal(t, "/login", resp.Header.Get("Location"), path)
		}
	})

	t.Run("rejects a tampered cookie", func(t *testing.T) {
		c := newConsole(t)
		cookie := c.login(t)
		cookie.Value += "x"

		resp := c.get(t, "/mypage/table", cookie)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Location"), "/login")
	})

	t.Run("rejects a cookie after logout", func(t *testing.T) {
		c := newConsole(t)
		cookie := c.login(t)

		resp := c.get(t, "/auth/logout", cookie)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)

		resp = c.get(t, "/mypage/app", cookie)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Location"), "/login")
	})

	t.Run("renders the module with a session", func(t *testing.T) {
		c := newConsole(t)
		cookie := c.login(t)

		resp := c.get(t, "/mypage/table", cookie)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := readBody(t, resp)
		assert.Contains(t, body, "Tables")
		assert.Contains(t, body, "Alice")
	})

	t.Run("gated parent redirects to the default module", func(t *testing.T) {
		c := newConsole(t)
		cookie := c.login(t)

		resp := c.get(t, "/mypage", cookie)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/mypage/app", resp.Header.Get("Location"))
	})
}

func TestLogin(t *testing.T) {
	t.Run("wrong credentials redirect back with the store error", func(t *testing.T) {
		c := newConsole(t)
		resp := c.postForm(t, "/auth/login", url.Values{"username": {"alice"}, "password": {"wrong"}}, nil)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)

		location, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/login", location.Path)
		assert.Equal(t, "invalid credentials", location.Query().Get("error"))
		assert.Equal(t, "alice", location.Query().Get("username"))
		assert.Nil(t, c.sessions.Current())
	})

	t.Run("missing fields redirect back without hitting the backend", func(t *testing.T) {
		c := newConsole(t)
		resp := c.postForm(t, "/auth/login", url.Values{"username": {"alice"}}, nil)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Location"), "/login?error=")
	})

	t.Run("successful login loads workspaces and selects the first", func(t *testing.T) {
		c := newConsole(t)
		c.login(t)

		require.Len(t, c.workspaces.Workspaces(), 2)
		current := c.workspaces.Current()
		require.NotNil(t, current)
		assert.Equal(t, int64(1), current.ID)
		assert.Equal(t, "Production", current.Name)
	})

	t.Run("login page redirects to the console when already authenticated", func(t *testing.T) {
		c := newConsole(t)
		cookie := c.login(t)

		resp := c.get(t, "/login", cookie)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/mypage/app", resp.Header.Get("Location"))
	})

	t.Run("login page stays reachable for a client without the cookie", func(t *testing.T) {
		c := newConsole(t)
		c.login(t)

		// A cookieless request must get the form, not a redirect into the
		// gated subtree it would immediately be bounced back out of.
		resp := c.get(t, "/login", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("login page stays reachable with a tampered cookie", func(t *testing.T) {
		c := newConsole(t)
		cookie := c.login(t)
		cookie.Value += "x"

		resp := c.get(t, "/login", cookie)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestLogout(t *testing.T) {
	t.Run("clears the session and workspace state", func(t *testing.T) {
		c := newConsole(t)
		cookie := c.login(t)

		resp := c.get(t, "/auth/logout", cookie)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/login", resp.Header.Get("Location"))

		assert.Nil(t, c.sessions.Current())
		assert.Empty(t, c.workspaces.Workspaces())
		assert.Nil(t, c.workspaces.Current())
	})

	t.Run("is safe without a session", func(t *testing.T) {
		c := newConsole(t)
		resp := c.get(t, "/auth/logout", nil)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	})
}

func TestWorkspaceSelect(t *testing.T) {
	t.Run("switches the current workspace", func(t *testing.T) {
		c := newConsole(t)
		cookie := c.login(t)

		resp := c.postForm(t, "/mypage/workspace/select", url.Values{
			"workspace_id": {"2"},
			"redirect":     {"/mypage/table"},
		}, cookie)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/mypage/table", resp.Header.Get("Location"))

		current := c.workspaces.Current()
		require.NotNil(t, current)
		assert.Equal(t, int64(2), current.ID)
	})

	t.Run("unknown workspace id redirects back with an error", func(t *testing.T) {
		c := newConsole(t)
		cookie := c.login(t)

		resp := c.postForm(t, "/mypage/workspace/select", url.Values{"workspace_id": {"99"}}, cookie)
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Location"), "error=")

		current := c.workspaces.Current()
		require.NotNil(t, current)
		assert.Equal(t, int64(1), current.ID)
	})

	t.Run("is gated", func(t *testing.T) {
		c := newConsole(t)
		resp := c.postForm(t, "/mypage/workspace/select", url.Values{"workspace_id": {"2"}}, nil)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Location"), "/login")
	})
}

func TestStateAPI(t *testing.T) {
	t.Run("session state is null when logged out", func(t *testing.T) {
		c := newConsole(t)
		resp := c.get(t, "/api/session", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		assert.Contains(t, readBody(t, resp), `"session":null`)
	})

	t.Run("session state reflects the active session", func(t *testing.T) {
		c := newConsole(t)
		c.login(t)

		resp := c.get(t, "/api/session", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := readBody(t, resp)
		assert.Contains(t, body, `"username":"alice"`)
		assert.Contains(t, body, `"company":"Acme"`)
		assert.NotContains(t, body, `"sid"`)
	})

	t.Run("workspace state is gated", func(t *testing.T) {
		c := newConsole(t)
		resp := c.get(t, "/api/workspaces", nil)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	})

	t.Run("workspace state lists the loaded workspaces", func(t *testing.T) {
		c := newConsole(t)
		cookie := c.login(t)

		resp := c.get(t, "/api/workspaces", cookie)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := readBody(t, resp)
		assert.Contains(t, body, `"name":"Production"`)
		assert.Contains(t, body, `"name":"Staging"`)
		assert.Contains(t, body, `"loading":false`)
	})
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			break
		}
	}
	return sb.String()
}
