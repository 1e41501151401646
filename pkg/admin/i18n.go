package admin

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Locales holds the translation bundle for the console.
type Locales struct {
	bundle *i18n.Bundle
}

// LoadLocales builds the bundle from the embedded translations and,
// when extraDir is non-empty, merges any *.json files found there on
// top (host deployments can override or add languages).
func LoadLocales(extraDir string) (*Locales, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("admin: embedded locales: %w", err)
	}
	for _, entry := range entries {
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+entry.Name()); err != nil {
			return nil, fmt.Errorf("admin: load %s: %w", entry.Name(), err)
		}
	}

	if extraDir != "" {
		matches, err := filepath.Glob(filepath.Join(extraDir, "*.json"))
		if err != nil {
			return nil, err
		}
		for _, path := range matches {
			if _, err := bundle.LoadMessageFile(path); err != nil {
				return nil, fmt.Errorf("admin: load %s: %w", path, err)
			}
		}
	}

	return &Locales{bundle: bundle}, nil
}

// MustLoadLocales is LoadLocales without the error for wiring code
// that only uses the embedded translations.
func MustLoadLocales() *Locales {
	l, err := LoadLocales("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		panic(err)
	}
	return l
}

// Localizer returns a localizer preferring the given language tags.
func (l *Locales) Localizer(langs ...string) *i18n.Localizer {
	return i18n.NewLocalizer(l.bundle, langs...)
}

// ForRequest returns a localizer for an HTTP request, honoring an
// explicit ?lang= parameter over the Accept-Language header.
func (l *Locales) ForRequest(r *http.Request) *i18n.Localizer {
	langs := make([]string, 0, 2)
	if lang := r.URL.Query().Get("lang"); lang != "" {
		langs = append(langs, lang)
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		langs = append(langs, accept)
	}
	return i18n.NewLocalizer(l.bundle, langs...)
}

// translate resolves a message ID, falling back to the ID itself when
// no translation exists so templates never render blank labels. A
// missing translation in the requested language still yields the
// default-language message, which Localize returns alongside its
// not-found error.
func translate(loc *i18n.Localizer, id string, data map[string]any) string {
	msg, _ := loc.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if msg == "" {
		return id
	}
	return msg
}
