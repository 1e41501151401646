// Package errors provides coded, categorized errors for configuration
// and CLI surfaces.
//
// Runtime packages use plain wrapped errors; this package exists so
// the CLI can print actionable messages (code, detail, suggestion) for
// operator-facing failures like a bad addrnav.json.
package errors
