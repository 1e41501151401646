package admin

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/addrnav-dev/addrnav/pkg/assets"
	"github.com/addrnav-dev/addrnav/pkg/auth"
	"github.com/addrnav-dev/addrnav/pkg/rewrite"
)

// Handler serves the group administration console.
type Handler struct {
	dir      Directory
	authz    Authorizer
	csrf     *auth.CSRF
	locales  *Locales
	tmpl     *template.Template
	basePath string
	resolver assets.Resolver
	clientJS string
	title    string
	logger   *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithBasePath sets the deployment base-path prefix used in all
// generated URLs. Normalized like rewrite.NormalizeBasePath.
func WithBasePath(basePath string) HandlerOption {
	return func(h *Handler) {
		h.basePath = rewrite.NormalizeBasePath(basePath)
	}
}

// WithAssets sets the resolver for fingerprinted asset URLs.
func WithAssets(r assets.Resolver) HandlerOption {
	return func(h *Handler) {
		h.resolver = r
	}
}

// WithClientScript sets the URL of the thin client bundle included on
// every page.
func WithClientScript(url string) HandlerOption {
	return func(h *Handler) {
		h.clientJS = url
	}
}

// WithTitle sets the console title shown in the page header.
func WithTitle(title string) HandlerOption {
	return func(h *Handler) {
		h.title = title
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler creates the console handler over the host's directory and
// authorizer.
func NewHandler(dir Directory, authz Authorizer, csrf *auth.CSRF, locales *Locales, opts ...HandlerOption) *Handler {
	h := &Handler{
		dir:     dir,
		authz:   authz,
		csrf:    csrf,
		locales: locales,
		tmpl:    parseTemplates(),
		title:   "addrnav",
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// Routes returns the console's route tree, mounted by the server under
// the base path.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/groups", h.listGroups)
	r.Get("/groups/new", h.newGroupForm)
	r.Post("/groups", h.createGroup)
	r.Get("/groups/{name}/edit", h.editGroupForm)
	r.Post("/groups/{name}", h.updateGroup)
	r.Post("/groups/{name}/delete", h.deleteGroup)
	return r
}

// newPage assembles the shared page data, issuing a CSRF token.
func (h *Handler) newPage(w http.ResponseWriter, r *http.Request) *page {
	p := &page{
		loc:      h.locales.ForRequest(r),
		assets:   h.resolver,
		Title:    h.title,
		Lang:     requestLang(r),
		BasePath: h.basePath,
		ClientJS: h.clientJS,
	}
	if rec, ok := auth.FromContext(r.Context()); ok {
		p.User = rec.User
		p.Admin = h.authz.IsAdmin(r.Context(), rec.User)
	}
	p.CSRFToken = h.csrf.SetCookie(w, r)

	if flash := r.URL.Query().Get("flash"); flash != "" {
		p.Flash = translate(p.loc, flash, map[string]any{"Name": r.URL.Query().Get("g")})
	}
	return p
}

// requireSession rejects unauthenticated requests.
func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	rec, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return "", false
	}
	return rec.User, true
}

// requireMutation gates group mutations: admin session + CSRF token.
func (h *Handler) requireMutation(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := h.requireSession(w, r)
	if !ok {
		return "", false
	}
	if !h.authz.IsAdmin(r.Context(), user) {
		loc := h.locales.ForRequest(r)
		http.Error(w, translate(loc, "ErrForbidden", nil), http.StatusForbidden)
		return "", false
	}
	if !h.csrf.ValidateRequest(r) {
		loc := h.locales.ForRequest(r)
		http.Error(w, translate(loc, "ErrBadToken", nil), http.StatusForbidden)
		return "", false
	}
	return user, true
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireSession(w, r); !ok {
		return
	}

	groups, err := h.dir.ListGroups(r.Context())
	if err != nil {
		h.logger.Error("list groups", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	p := h.newPage(w, r)
	h.render(w, "groups.html.tmpl", &groupsPage{page: p, Groups: groups})
}

func (h *Handler) newGroupForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireSession(w, r); !ok {
		return
	}

	p := h.newPage(w, r)
	if !p.Admin {
		http.Error(w, p.T("ErrForbidden"), http.StatusForbidden)
		return
	}
	h.render(w, "group_form.html.tmpl", &formPage{
		page:       p,
		IsNew:      true,
		FormAction: p.URL("/groups"),
	})
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireMutation(w, r); !ok {
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	if err := h.dir.CreateGroup(r.Context(), name); err != nil {
		h.renderFormError(w, r, Group{Name: name}, true, err)
		return
	}

	h.logger.Info("group created", "group", name)
	h.redirectToList(w, r, "GroupCreated", name)
}

func (h *Handler) editGroupForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireSession(w, r); !ok {
		return
	}

	name := chi.URLParam(r, "name")
	group, err := h.dir.GetGroup(r.Context(), name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	p := h.newPage(w, r)
	if !p.Admin {
		http.Error(w, p.T("ErrForbidden"), http.StatusForbidden)
		return
	}
	h.render(w, "group_form.html.tmpl", &formPage{
		page:       p,
		Group:      *group,
		FormAction: p.GroupURL(group.Name),
	})
}

func (h *Handler) updateGroup(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireMutation(w, r); !ok {
		return
	}

	oldName := chi.URLParam(r, "name")
	group, err := h.dir.GetGroup(r.Context(), oldName)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	newName := strings.TrimSpace(r.PostFormValue("name"))
	if newName != "" && newName != oldName {
		if err := h.dir.RenameGroup(r.Context(), oldName, newName); err != nil {
			h.renderFormError(w, r, *group, false, err)
			return
		}
	} else {
		newName = oldName
	}

	if err := h.dir.SetMembers(r.Context(), newName, splitMembers(r.PostFormValue("members"))); err != nil {
		h.renderFormError(w, r, *group, false, err)
		return
	}

	if err := h.applyPermissions(r, newName, group.Permissions); err != nil {
		h.renderFormError(w, r, *group, false, err)
		return
	}

	h.logger.Info("group saved", "group", newName)
	h.redirectToList(w, r, "GroupSaved", newName)
}

func (h *Handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireMutation(w, r); !ok {
		return
	}

	name := chi.URLParam(r, "name")
	if err := h.dir.DeleteGroup(r.Context(), name); err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("delete group", "group", name, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.logger.Info("group deleted", "group", name)
	h.redirectToList(w, r, "GroupDeleted", name)
}

// applyPermissions reconciles the submitted checkbox set (plus the
// optional new-permission row) against the group's current grants.
func (h *Handler) applyPermissions(r *http.Request, name string, current []Permission) error {
	if err := r.ParseForm(); err != nil {
		return err
	}

	keep := make(map[Permission]bool)
	for _, raw := range r.PostForm["permissions"] {
		app, action, ok := strings.Cut(raw, ":")
		if !ok || app == "" || action == "" {
			continue
		}
		keep[Permission{App: app, Action: action}] = true
	}

	for _, p := range current {
		if !keep[p] {
			if err := h.dir.RevokePermission(r.Context(), name, p); err != nil {
				return err
			}
		}
	}
	for p := range keep {
		if err := h.dir.GrantPermission(r.Context(), name, p); err != nil {
			return err
		}
	}

	app := strings.TrimSpace(r.PostFormValue("new_perm_app"))
	action := strings.TrimSpace(r.PostFormValue("new_perm_action"))
	if app != "" && action != "" {
		return h.dir.GrantPermission(r.Context(), name, Permission{App: app, Action: action})
	}
	return nil
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("render", "template", name, "err", err)
	}
}

// renderFormError re-renders the form with a localized error banner.
func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, group Group, isNew bool, err error) {
	p := h.newPage(w, r)
	p.Flash = p.T(errMessageID(err))

	status := http.StatusBadRequest
	if errors.Is(err, ErrGroupExists) {
		status = http.StatusConflict
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	action := p.URL("/groups")
	if !isNew {
		action = p.GroupURL(group.Name)
	}
	h.render(w, "group_form.html.tmpl", &formPage{
		page:       p,
		Group:      group,
		IsNew:      isNew,
		FormAction: action,
	})
}

func (h *Handler) redirectToList(w http.ResponseWriter, r *http.Request, flash, name string) {
	q := url.Values{"flash": {flash}, "g": {name}}
	http.Redirect(w, r, h.basePath+"/groups?"+q.Encode(), http.StatusSeeOther)
}

// errMessageID maps directory errors to locale message IDs.
func errMessageID(err error) string {
	switch {
	case errors.Is(err, ErrGroupExists):
		return "ErrGroupExists"
	case errors.Is(err, ErrGroupNotFound):
		return "ErrGroupNotFound"
	case errors.Is(err, ErrEmptyName):
		return "ErrEmptyName"
	default:
		return "ErrInternal"
	}
}

// splitMembers parses the textarea payload: one username per line,
// blanks dropped.
func splitMembers(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if name := strings.TrimSpace(line); name != "" {
			out = append(out, name)
		}
	}
	return out
}
