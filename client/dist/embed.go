// Package clientdist embeds the thin client JavaScript bundle.
package clientdist

import _ "embed"

// AddrnavJS is the thin client bundle.
//
// It is served by the server at "/_addrnav/client.js".
//go:embed addrnav.js
var AddrnavJS []byte
