// Package rewrite updates the browser address bar without triggering a
// navigation or reload.
//
// A Rewriter is bound to a History capability and an optional base-path
// prefix. Callers hand it a target path, optional query parameters, and
// a push/replace mode; the Rewriter assembles the final URL (prefix,
// query, fragment) and mutates history only when the result differs
// from the current address:
//
//	rw := rewrite.NewRewriter(history, "/base")
//	rw.Rewrite("/groups", rewrite.WithParams(map[string]any{"page": 2}))
//
// History is an interface so the package can run against a real browser
// (via the live channel in pkg/server) or a fake in tests.
package rewrite
