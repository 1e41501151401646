// Package config loads and validates addrnav.json, the project-level
// configuration file.
//
// The file is read once at startup; the resulting Config is treated as
// read-only for the life of the process. The base path in particular
// is normalized here and then injected into every component that
// builds URLs.
package config
