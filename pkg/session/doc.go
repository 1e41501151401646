// Package session persists login sessions for the admin console.
//
// A Store holds Records keyed by opaque session ID. The memory store
// suits single-server deployments; the SQL store works with any
// database/sql driver for multi-server setups. Both drop records past
// their deadline and sweep expired entries in the background.
package session
