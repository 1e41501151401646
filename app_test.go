package addrnav

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/addrnav-dev/addrnav/pkg/middleware"
)

func testApp(t *testing.T, cfg Config) *App {
	t.Helper()
	if cfg.Metrics == nil {
		cfg.Metrics = middleware.NewMetrics(middleware.WithRegistry(prometheus.NewRegistry()))
	}
	return New(cfg)
}

func TestAppServesHealthAndClient(t *testing.T) {
	app := testApp(t, Config{})
	srv := httptest.NewServer(app)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/_addrnav/client.js")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("client.js status = %d", resp.StatusCode)
	}
}

func TestAppBasePathPrefixed(t *testing.T) {
	app := testApp(t, Config{BasePath: "/hue"})
	srv := httptest.NewServer(app)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/hue/_addrnav/client.js")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("prefixed client.js status = %d", resp.StatusCode)
	}

	// The console lives under the prefix too: unauthenticated view is
	// rejected, not unrouted.
	resp, err = http.Get(srv.URL + "/hue/groups")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("console status = %d, want 401", resp.StatusCode)
	}
}

func TestAppConsoleLoginFlow(t *testing.T) {
	app := testApp(t, Config{
		Admin: AdminConfig{
			Admins:     []string{"root"},
			CSRFSecret: []byte("test-secret"),
		},
	})
	srv := httptest.NewServer(app)
	defer srv.Close()

	// Host-managed login: issue a session through the provider.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := app.Auth().Login(w, r, "root", true); err != nil {
		t.Fatal(err)
	}
	cookie := w.Result().Cookies()[0]

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/groups", nil)
	req.AddCookie(cookie)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("console status = %d, want 200", resp.StatusCode)
	}
}

func TestAppStaticServing(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "console.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".secret"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	app := testApp(t, Config{
		BasePath: "/hue",
		Static:   StaticConfig{Dir: dir},
	})
	srv := httptest.NewServer(app)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/hue/static/console.css")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("static status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/hue/static/.secret")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("dotfile status = %d, want 404", resp.StatusCode)
	}
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	raw := `{
		"name": "demo",
		"basePath": "hue",
		"address": "localhost:9000",
		"static": {"dir": "public", "prefix": "/assets/"},
		"session": {"ttl": "1h"}
	}`
	path := filepath.Join(dir, "addrnav.json")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if cfg.Address != "localhost:9000" {
		t.Errorf("Address = %q", cfg.Address)
	}
	if cfg.BasePath != "/hue" {
		t.Errorf("BasePath = %q", cfg.BasePath)
	}
	if cfg.Static.Dir != "public" || cfg.Static.Prefix != "/assets/" {
		t.Errorf("Static = %+v", cfg.Static)
	}
	if cfg.Session.TTL != time.Hour {
		t.Errorf("TTL = %v", cfg.Session.TTL)
	}
	if cfg.Admin.Title != "demo" {
		t.Errorf("Title = %q", cfg.Admin.Title)
	}
}

func TestNormalizeBasePathFacade(t *testing.T) {
	app := testApp(t, Config{BasePath: "hue/"})
	if got := app.BasePath(); got != "/hue" {
		t.Errorf("BasePath = %q, want /hue", got)
	}
}

func TestContainsDotFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/static/app.css", false},
		{"/static/.env", true},
		{"/.git/config", true},
		{"/static/v1.2/app.css", false},
	}
	for _, tt := range tests {
		if got := containsDotFile(tt.path); got != tt.want {
			t.Errorf("containsDotFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestAdminListAuthorizer(t *testing.T) {
	l := adminList{"root"}
	if !l.IsAdmin(nil, "root") || l.IsAdmin(nil, "other") {
		t.Error("adminList admin check wrong")
	}
	if !l.HasPermission(nil, "root", "jobs", "read") {
		t.Error("admins hold every permission")
	}
	if l.HasPermission(nil, "other", "jobs", "read") {
		t.Error("non-admins hold none")
	}
}
