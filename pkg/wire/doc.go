// Package wire defines the JSON frame protocol between the server and
// the thin browser client.
//
// The server sends history operations (url_push, url_replace, nav,
// hash); the client sends a hello frame on connect and location frames
// on popstate/hashchange so the server-side view of the address bar
// stays current. Frames are small JSON objects; MaxFrameSize bounds
// what either side will accept.
package wire
