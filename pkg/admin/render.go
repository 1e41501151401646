package admin

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/addrnav-dev/addrnav/pkg/assets"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// parseTemplates parses the embedded console templates.
func parseTemplates() *template.Template {
	return template.Must(template.New("admin").Funcs(template.FuncMap{
		"join": strings.Join,
	}).ParseFS(templateFS, "templates/*.tmpl"))
}

// page is the data common to every rendered console page. Template
// bodies call its methods for translation and URL construction.
type page struct {
	loc    *i18n.Localizer
	assets assets.Resolver

	Title     string
	Lang      string
	BasePath  string
	CSRFToken string
	User      string
	Admin     bool
	Flash     string
	ClientJS  string
}

// T translates a message ID for the request's locale.
func (p *page) T(id string) string {
	return translate(p.loc, id, nil)
}

// ConfirmDelete renders the localized delete confirmation for a group.
func (p *page) ConfirmDelete(name string) string {
	return translate(p.loc, "ConfirmDelete", map[string]any{"Name": name})
}

// URL prefixes an application path with the deployment base path.
func (p *page) URL(path string) string {
	return p.BasePath + path
}

// GroupURL builds the base URL for one group's actions.
func (p *page) GroupURL(name string) string {
	return p.BasePath + "/groups/" + url.PathEscape(name)
}

// AssetURL resolves a fingerprinted asset.
func (p *page) AssetURL(source string) string {
	if p.assets == nil {
		return source
	}
	return p.assets.Asset(source)
}

// groupsPage is the data for the group listing.
type groupsPage struct {
	*page
	Groups []Group
}

// formPage is the data for the create/edit form.
type formPage struct {
	*page
	Group      Group
	IsNew      bool
	FormAction string
}

// requestLang picks the language tag used for the <html lang> attribute.
func requestLang(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return lang
	}
	accept := r.Header.Get("Accept-Language")
	if accept == "" {
		return "en"
	}
	first := strings.TrimSpace(strings.SplitN(accept, ",", 2)[0])
	if i := strings.IndexByte(first, ';'); i >= 0 {
		first = first[:i]
	}
	if first == "" {
		return "en"
	}
	return first
}
