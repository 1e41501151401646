package server

import (
	"net/http"
	"time"

	"github.com/addrnav-dev/addrnav/pkg/rewrite"
)

// Config holds the live-channel server configuration.
type Config struct {
	// Address is the listen address, e.g. "localhost:3000".
	Address string

	// BasePath is the deployment prefix under which the application
	// is served. Normalized like rewrite.NormalizeBasePath.
	BasePath string

	// DevMode disables thin-client caching.
	DevMode bool

	// CheckOrigin overrides the WebSocket origin check. When nil the
	// upgrader enforces same-origin.
	CheckOrigin func(*http.Request) bool

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// ReadTimeout bounds how long a connection may stay silent; pings
	// keep healthy connections alive.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration

	// PingInterval is the keepalive ping period. It must be shorter
	// than ReadTimeout.
	PingInterval time.Duration

	// SendBuffer is the per-session outbound frame queue. A session
	// that falls this far behind is dropped.
	SendBuffer int

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// HTTP server timeouts.
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:           "localhost:3000",
		ReadBufferSize:    1024,
		WriteBufferSize:   1024,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		PingInterval:      30 * time.Second,
		SendBuffer:        16,
		ShutdownTimeout:   10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// withDefaults fills unset fields from DefaultConfig and normalizes
// the base path.
func (c *Config) withDefaults() *Config {
	if c == nil {
		return DefaultConfig()
	}
	d := DefaultConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = d.WriteBufferSize
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.PingInterval == 0 {
		c.PingInterval = d.PingInterval
	}
	if c.SendBuffer == 0 {
		c.SendBuffer = d.SendBuffer
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = d.IdleTimeout
	}
	c.BasePath = rewrite.NormalizeBasePath(c.BasePath)
	return c
}
