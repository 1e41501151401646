package rewrite

import "strings"

// Options configures a single Rewrite call.
type Options struct {
	// Replace overwrites the current history entry instead of pushing.
	Replace bool

	// Params are query parameters appended to the target path.
	Params map[string]any
}

// Option is a functional option for Rewrite.
type Option func(*Options)

// WithReplace overwrites the current history entry instead of pushing.
func WithReplace() Option {
	return func(o *Options) {
		o.Replace = true
	}
}

// WithParams appends query parameters to the rewritten URL.
func WithParams(params map[string]any) Option {
	return func(o *Options) {
		o.Params = params
	}
}

// ApplyOptions applies Option closures to the default option set.
// Useful where Option values are opaque (e.g. wrapping APIs).
func ApplyOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&o)
	}
	return o
}

// Rewriter computes address-bar URLs and applies them to a History.
// The base-path prefix is fixed at construction; it is deployment
// configuration, not per-call state.
type Rewriter struct {
	history  History
	basePath string
}

// NewRewriter creates a Rewriter over the given History.
//
// basePath is the deployment prefix under which the application is
// served (e.g. "/hue"). It is normalized to a single leading slash
// with no trailing slash; "" and "/" both mean no prefix.
func NewRewriter(history History, basePath string) *Rewriter {
	return &Rewriter{
		history:  history,
		basePath: NormalizeBasePath(basePath),
	}
}

// NormalizeBasePath reduces a configured base path to canonical form:
// leading slash, no trailing slash. Empty input and "/" yield "".
func NormalizeBasePath(raw string) string {
	p := strings.Trim(strings.TrimSpace(raw), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

// BasePath returns the normalized base-path prefix, or "" when unset.
func (r *Rewriter) BasePath() string {
	return r.basePath
}

// Rewrite computes the final URL for targetPath and applies it to the
// bound History. It is a no-op when the computed URL equals the
// current address, so repeated identical calls never stack duplicate
// history entries.
//
// Assembly rules:
//   - targetPath is split on its first "#"; everything after it
//     (further "#" included) is one opaque fragment.
//   - The base-path prefix is prepended only when the path portion is
//     non-empty and not already prefixed. A fragment-only target is
//     never turned into a path navigation.
//   - Encoded params join with "?" unless the path already carries a
//     query, then "&".
//   - An inline fragment wins over the current hash; without one, a
//     non-empty current hash is preserved unchanged. A target ending
//     in a bare "#" therefore clears the hash explicitly.
func (r *Rewriter) Rewrite(targetPath string, opts ...Option) {
	o := ApplyOptions(opts...)

	pathPart := targetPath
	frag := strings.IndexByte(targetPath, '#')
	if frag >= 0 {
		pathPart = targetPath[:frag]
	}

	u := pathPart
	if r.basePath != "" && u != "" && !strings.HasPrefix(u, r.basePath) {
		u = r.basePath + u
	}

	if query := EncodeParams(o.Params); query != "" {
		if strings.Contains(u, "?") {
			u += "&" + query
		} else {
			u += "?" + query
		}
	}

	if frag >= 0 {
		// Re-slice from the raw input so resource names containing
		// "#" survive intact past the first one.
		u += "#" + targetPath[frag+1:]
	} else if hash := r.history.CurrentHash(); hash != "" {
		u += hash
	}

	if u == r.history.CurrentURL() {
		return
	}

	if o.Replace {
		r.history.Replace(u)
	} else {
		r.history.Push(u)
	}
}
