package addrnav

import (
	"context"
	"crypto/rand"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/addrnav-dev/addrnav/internal/config"
	"github.com/addrnav-dev/addrnav/pkg/admin"
	"github.com/addrnav-dev/addrnav/pkg/assets"
	"github.com/addrnav-dev/addrnav/pkg/auth"
	"github.com/addrnav-dev/addrnav/pkg/middleware"
	"github.com/addrnav-dev/addrnav/pkg/rewrite"
	"github.com/addrnav-dev/addrnav/pkg/server"
	"github.com/addrnav-dev/addrnav/pkg/session"
)

// App is the main addrnav application entry point. It wraps the live
// channel server, the admin console, sessions, and static files into
// a single http.Handler.
//
//	app := addrnav.New(addrnav.Config{BasePath: "/hue"})
//	app.Run(context.Background())
type App struct {
	config Config
	logger *slog.Logger

	metrics   *middleware.Metrics
	store     session.Store
	provider  *auth.Provider
	csrf      *auth.CSRF
	directory admin.Directory
	authz     admin.Authorizer
	console   *admin.Handler
	server    *server.Server
}

// New creates an addrnav application with the given configuration.
func New(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg.BasePath = rewrite.NormalizeBasePath(cfg.BasePath)
	cfg.Static.withDefaults()

	a := &App{
		config: cfg,
		logger: logger,
	}

	a.metrics = cfg.Metrics
	if a.metrics == nil {
		a.metrics = middleware.SharedMetrics()
	}

	a.store = cfg.Session.Store
	if a.store == nil {
		a.store = session.NewMemoryStore()
	}

	var provOpts []auth.Option
	if cfg.Session.TTL > 0 {
		provOpts = append(provOpts, auth.WithTTL(cfg.Session.TTL))
	}
	if cfg.Session.CookieName != "" {
		provOpts = append(provOpts, auth.WithCookieName(cfg.Session.CookieName))
	}
	a.provider = auth.NewProvider(a.store, provOpts...)

	secret := cfg.Admin.CSRFSecret
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic("addrnav: csrf secret: " + err.Error())
		}
		logger.Warn("generated ephemeral CSRF secret, set Admin.CSRFSecret for production")
	}
	csrfOpts := []auth.CSRFOption{}
	if !cfg.DevMode {
		csrfOpts = append(csrfOpts, auth.WithSecureCSRFCookies())
	}
	a.csrf = auth.NewCSRF(secret, csrfOpts...)

	a.directory = cfg.Admin.Directory
	a.authz = cfg.Admin.Authorizer
	if a.directory == nil {
		mem := admin.NewMemoryDirectory()
		a.directory = mem
		if a.authz == nil {
			a.authz = admin.NewMemoryAuthorizer(mem, cfg.Admin.Admins...)
		}
	}
	if a.authz == nil {
		a.authz = adminList(cfg.Admin.Admins)
	}

	locales, err := admin.LoadLocales(cfg.Admin.LocalesDir)
	if err != nil {
		logger.Error("loading extra locales failed, using embedded only", "err", err)
		locales = admin.MustLoadLocales()
	}

	resolver := a.buildResolver()

	title := cfg.Admin.Title
	if title == "" {
		title = "addrnav"
	}
	a.console = admin.NewHandler(a.directory, a.authz, a.csrf, locales,
		admin.WithBasePath(cfg.BasePath),
		admin.WithAssets(resolver),
		admin.WithClientScript(cfg.BasePath+"/_addrnav/client.js"),
		admin.WithTitle(title),
		admin.WithLogger(logger),
	)

	srvOpts := []server.ServerOption{
		server.WithLogger(logger.With("component", "server")),
		server.WithMetrics(a.metrics),
		server.WithMiddleware(a.provider.Middleware()),
		server.WithMount("/", a.console.Routes()),
	}
	if cfg.Static.Dir != "" {
		srvOpts = append(srvOpts, server.WithMount(
			strings.TrimSuffix(cfg.Static.Prefix, "/"),
			a.staticHandler(),
		))
	}
	if cfg.OnSessionStart != nil {
		srvOpts = append(srvOpts, server.OnSessionStart(cfg.OnSessionStart))
	}

	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil && cfg.DevMode {
		checkOrigin = func(*http.Request) bool { return true }
	}
	a.server = server.New(&server.Config{
		Address:     cfg.Address,
		BasePath:    cfg.BasePath,
		DevMode:     cfg.DevMode,
		CheckOrigin: checkOrigin,
	}, srvOpts...)

	return a
}

// FromFile builds a Config from an addrnav.json configuration file.
func FromFile(path string) (Config, error) {
	fc, err := config.LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Address:  fc.Address,
		BasePath: fc.BasePath,
		Admin: AdminConfig{
			Title:      fc.Name,
			LocalesDir: fc.Locales,
		},
		Session: SessionConfig{TTL: fc.SessionTTL()},
		Static: StaticConfig{
			Dir:          fc.Static.Dir,
			Prefix:       fc.Static.Prefix,
			ManifestPath: fc.Assets.Manifest,
		},
	}, nil
}

func (a *App) buildResolver() assets.Resolver {
	prefix := a.config.BasePath + a.config.Static.Prefix
	if a.config.Static.ManifestPath == "" {
		return assets.NewPassthroughResolver(prefix)
	}
	m, err := assets.Load(a.config.Static.ManifestPath)
	if err != nil {
		a.logger.Error("loading asset manifest failed, serving unversioned assets",
			"path", a.config.Static.ManifestPath, "err", err)
		return assets.NewPassthroughResolver(prefix)
	}
	return assets.NewResolver(m, prefix)
}

// staticHandler serves the static directory, refusing dotfiles and
// traversal attempts. The mount prefix is stripped before lookup.
func (a *App) staticHandler() http.Handler {
	prefix := a.config.BasePath + strings.TrimSuffix(a.config.Static.Prefix, "/")
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(a.config.Static.Dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clean := path.Clean(r.URL.Path)
		if strings.Contains(clean, "..") || containsDotFile(clean) {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

func containsDotFile(p string) bool {
	for _, part := range strings.Split(p, "/") {
		if strings.HasPrefix(part, ".") && part != "." {
			return true
		}
	}
	return false
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.server.ServeHTTP(w, r)
}

// Run serves until ctx is canceled or an interrupt arrives.
func (a *App) Run(ctx context.Context) error {
	defer func() { _ = a.store.Close() }()
	return a.server.Run(ctx)
}

// Shutdown stops the app gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.store.Close(); err != nil {
		a.logger.Error("closing session store", "err", err)
	}
	return a.server.Shutdown(ctx)
}

// Sessions returns the live session manager.
func (a *App) Sessions() *server.SessionManager {
	return a.server.Sessions()
}

// Auth returns the session provider, for host-managed login flows.
func (a *App) Auth() *auth.Provider {
	return a.provider
}

// Directory returns the group store.
func (a *App) Directory() admin.Directory {
	return a.directory
}

// BasePath returns the normalized base-path prefix.
func (a *App) BasePath() string {
	return a.config.BasePath
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// adminList is the fallback Authorizer for custom directories: only
// the listed admins may view or mutate, no per-app grants.
type adminList []string

func (l adminList) IsAdmin(_ context.Context, user string) bool {
	for _, a := range l {
		if a == user {
			return true
		}
	}
	return false
}

func (l adminList) HasPermission(ctx context.Context, user, _, _ string) bool {
	return l.IsAdmin(ctx, user)
}
