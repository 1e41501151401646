package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/addrnav-dev/addrnav/pkg/session"
)

// DefaultCookieName is the session cookie name.
const DefaultCookieName = "addrnav_session"

type sessionContextKey struct{}

// Provider adapts a session store to HTTP middleware and login helpers.
type Provider struct {
	store      session.Store
	cookieName string
	ttl        time.Duration
	secure     bool
}

// Option configures a Provider.
type Option func(*Provider)

// WithCookieName sets the cookie name used to carry session IDs.
func WithCookieName(name string) Option {
	return func(p *Provider) {
		if name != "" {
			p.cookieName = name
		}
	}
}

// WithTTL sets the session lifetime for new logins.
func WithTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithSecureCookies forces the Secure flag on session cookies even
// when the incoming request is plain HTTP (e.g. behind a TLS proxy).
func WithSecureCookies() Option {
	return func(p *Provider) {
		p.secure = true
	}
}

// NewProvider creates a cookie-session auth provider.
func NewProvider(store session.Store, opts ...Option) *Provider {
	p := &Provider{
		store:      store,
		cookieName: DefaultCookieName,
		ttl:        12 * time.Hour,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Middleware validates the session cookie and injects the record into
// the request context. Requests without a valid session pass through
// unauthenticated; handlers decide what anonymous users may see.
func (p *Provider) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(p.cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			rec, err := p.store.Load(r.Context(), cookie.Value)
			if err != nil || rec == nil {
				p.clearCookie(w, r)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, rec)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Login establishes a session for user and sets the session cookie.
func (p *Provider) Login(w http.ResponseWriter, r *http.Request, user string, admin bool) (*session.Record, error) {
	now := time.Now()
	rec := session.Record{
		ID:        session.NewID(),
		User:      user,
		Admin:     admin,
		CreatedAt: now,
		ExpiresAt: now.Add(p.ttl),
	}
	if err := p.store.Save(r.Context(), rec); err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     p.cookieName,
		Value:    rec.ID,
		Path:     "/",
		Expires:  rec.ExpiresAt,
		HttpOnly: true,
		Secure:   p.isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
	return &rec, nil
}

// Logout deletes the session and clears the cookie.
func (p *Provider) Logout(w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(p.cookieName)
	if err == nil && cookie.Value != "" {
		if err := p.store.Delete(r.Context(), cookie.Value); err != nil {
			return err
		}
	}
	p.clearCookie(w, r)
	return nil
}

// FromContext returns the validated session record, if any.
func FromContext(ctx context.Context) (*session.Record, bool) {
	rec, ok := ctx.Value(sessionContextKey{}).(*session.Record)
	return rec, ok && rec != nil
}

// IsAdmin reports whether the request context carries an admin session.
func IsAdmin(ctx context.Context) bool {
	rec, ok := FromContext(ctx)
	return ok && rec.Admin
}

func (p *Provider) isSecure(r *http.Request) bool {
	return p.secure || (r != nil && r.TLS != nil)
}

func (p *Provider) clearCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}
