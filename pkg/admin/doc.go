// Package admin serves the server-rendered group administration
// console: a listing of user groups with their members and
// permissions, plus inline create, edit, and delete actions.
//
// The package owns only presentation and request handling. Group data
// lives behind the Directory interface and authorization decisions
// behind Authorizer, so hosts plug in their own backends; in-memory
// implementations are included for tests and demos. Mutations require
// an admin session and a valid CSRF token.
package admin
