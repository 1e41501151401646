// Package addrnav provides the public API for the addrnav toolkit:
// server-driven address-bar rewriting over a live channel, plus a
// server-rendered group administration console.
//
// This is the recommended import for most applications:
//
//	import "github.com/addrnav-dev/addrnav"
//
// Usage:
//
//	app := addrnav.New(addrnav.Config{
//	    BasePath: "/hue",
//	    OnSessionStart: func(s *addrnav.Session) {
//	        s.Rewrite("/jobs", addrnav.WithParams(map[string]any{"state": "running"}))
//	    },
//	})
//	app.Run(context.Background())
package addrnav

import (
	"github.com/addrnav-dev/addrnav/pkg/admin"
	"github.com/addrnav-dev/addrnav/pkg/rewrite"
	"github.com/addrnav-dev/addrnav/pkg/server"
)

// Session is a live connection whose address bar the server drives.
type Session = server.Session

// History is the capability surface a Rewriter drives.
type History = rewrite.History

// Rewriter computes address-bar URLs and applies them to a History.
type Rewriter = rewrite.Rewriter

// NewRewriter creates a Rewriter over the given History.
var NewRewriter = rewrite.NewRewriter

// Option configures a single Rewrite call.
type Option = rewrite.Option

// WithReplace overwrites the current history entry instead of pushing.
var WithReplace = rewrite.WithReplace

// WithParams appends query parameters to the rewritten URL.
var WithParams = rewrite.WithParams

// NormalizeBasePath reduces a configured base path to canonical form.
var NormalizeBasePath = rewrite.NormalizeBasePath

// Group is a named set of users with granted permissions.
type Group = admin.Group

// Permission grants a group an action within an application.
type Permission = admin.Permission

// Directory is the backing store for groups.
type Directory = admin.Directory

// Authorizer answers authorization questions for the console.
type Authorizer = admin.Authorizer
