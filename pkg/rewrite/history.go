package rewrite

// History is the capability surface the Rewriter needs from the host
// browsing context. The host environment owns the address bar; the
// Rewriter performs a single read-then-conditional-write against it.
//
// Implementations are expected to be accessed from a single goroutine
// at a time (the host serializes history access).
type History interface {
	// CurrentURL returns the full current address-bar URL, including
	// any query string and hash fragment.
	CurrentURL() string

	// CurrentHash returns the current hash fragment including the
	// leading "#", or "" when the address carries no fragment.
	CurrentHash() string

	// Push adds a new history entry for url without reloading.
	Push(url string)

	// Replace overwrites the current history entry with url without
	// reloading and without growing the navigation stack.
	Replace(url string)
}
