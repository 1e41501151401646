// Package server hosts the live channel: a WebSocket endpoint over
// which the application drives the browser's address bar and the
// browser reports location changes back. Each connection gets a
// Session whose history mirror feeds a rewrite.Rewriter, so
// server-side code rewrites URLs with the same contract the client
// observes.
package server
