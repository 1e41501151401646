package addrnav

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/addrnav-dev/addrnav/pkg/admin"
	"github.com/addrnav-dev/addrnav/pkg/middleware"
	"github.com/addrnav-dev/addrnav/pkg/session"
)

// Config is the main application configuration. This is the
// user-friendly entry point for wiring an addrnav app.
type Config struct {
	// Address is the listen address. Default: "localhost:3000".
	Address string

	// BasePath is the deployment prefix under which the application
	// is served, e.g. "/hue". Empty means no prefix.
	BasePath string

	// DevMode disables thin-client caching and relaxes the WebSocket
	// origin check. Never use in production.
	DevMode bool

	// Logger is the structured logger. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Metrics is the metrics collector. If nil, the shared collector
	// is used.
	Metrics *middleware.Metrics

	// Admin configures the group administration console.
	Admin AdminConfig

	// Session configures browser sessions.
	Session SessionConfig

	// Static configures static file serving.
	Static StaticConfig

	// CheckOrigin overrides the WebSocket origin check.
	CheckOrigin func(*http.Request) bool

	// OnSessionStart is called for every new live session, before its
	// loops start. Use it to drive initial rewrites.
	OnSessionStart func(s *Session)
}

// AdminConfig configures the group administration console.
type AdminConfig struct {
	// Directory is the group store. If nil, an in-memory directory is
	// used (development only).
	Directory admin.Directory

	// Authorizer decides who may view and mutate groups. If nil, an
	// in-memory authorizer over the default directory is used with
	// the Admins list below.
	Authorizer admin.Authorizer

	// Admins seeds the default authorizer. Ignored when Authorizer
	// is set.
	Admins []string

	// CSRFSecret signs CSRF tokens. If empty, a random per-process
	// secret is generated (tokens do not survive restarts).
	CSRFSecret []byte

	// LocalesDir optionally overlays extra translation files on the
	// embedded ones.
	LocalesDir string

	// Title is shown in the console header. Default: "addrnav".
	Title string
}

// SessionConfig configures browser sessions.
type SessionConfig struct {
	// Store is the session backend. If nil, an in-memory store is
	// used.
	Store session.Store

	// TTL is the session lifetime. Default: 12 hours.
	TTL time.Duration

	// CookieName overrides the session cookie name.
	CookieName string
}

// StaticConfig configures static file serving.
type StaticConfig struct {
	// Dir is the directory to serve. Empty disables static serving.
	Dir string

	// Prefix is the URL prefix, relative to the base path.
	// Default: "/static/".
	Prefix string

	// ManifestPath optionally points at an asset manifest mapping
	// source names to fingerprinted files.
	ManifestPath string
}

func (c *StaticConfig) withDefaults() {
	if c.Prefix == "" {
		c.Prefix = "/static/"
	}
}
