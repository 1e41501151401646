package assets

import "strings"

// Resolver turns a source asset name into its deployable URL path.
type Resolver interface {
	// Asset resolves a source asset path to its full URL path,
	// including the static prefix and any base-path prefix.
	Asset(source string) string
}

// manifestResolver wraps a Manifest to implement Resolver.
type manifestResolver struct {
	manifest *Manifest
	prefix   string
}

// NewResolver creates a Resolver from a Manifest with a URL prefix.
// The prefix should already include the deployment base path, e.g.
// "/console/static/" for an app served under "/console".
func NewResolver(m *Manifest, prefix string) Resolver {
	return &manifestResolver{
		manifest: m,
		prefix:   normalizePrefix(prefix),
	}
}

func (r *manifestResolver) Asset(source string) string {
	return r.prefix + r.manifest.Resolve(source)
}

// passthrough returns asset names unchanged apart from the prefix.
type passthrough struct {
	prefix string
}

// NewPassthroughResolver creates a resolver for development mode where
// fingerprinting is disabled. The prefix is still applied so dev and
// prod URLs stay consistent.
func NewPassthroughResolver(prefix string) Resolver {
	return &passthrough{prefix: normalizePrefix(prefix)}
}

func (p *passthrough) Asset(source string) string {
	return p.prefix + source
}

// normalizePrefix guarantees exactly one trailing slash on non-empty
// prefixes so resolved paths never double up.
func normalizePrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	return strings.TrimRight(prefix, "/") + "/"
}
