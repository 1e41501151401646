package admin

import (
	"context"
	"errors"
)

// Permission grants a group an action within an application, e.g.
// {App: "metastore", Action: "write"}.
type Permission struct {
	App    string
	Action string
}

// Group is a named set of users with granted permissions.
type Group struct {
	Name        string
	Members     []string
	Permissions []Permission
}

// Directory errors.
var (
	ErrGroupNotFound = errors.New("admin: group not found")
	ErrGroupExists   = errors.New("admin: group already exists")
	ErrEmptyName     = errors.New("admin: group name must not be empty")
)

// Directory is the backing store for groups. Implementations must be
// safe for concurrent use.
type Directory interface {
	// ListGroups returns all groups sorted by name.
	ListGroups(ctx context.Context) ([]Group, error)

	// GetGroup returns one group, or ErrGroupNotFound.
	GetGroup(ctx context.Context, name string) (*Group, error)

	// CreateGroup adds an empty group, or ErrGroupExists.
	CreateGroup(ctx context.Context, name string) error

	// RenameGroup changes a group's name, keeping members and
	// permissions. ErrGroupNotFound or ErrGroupExists on conflict.
	RenameGroup(ctx context.Context, oldName, newName string) error

	// SetMembers replaces a group's member list.
	SetMembers(ctx context.Context, name string, members []string) error

	// GrantPermission adds a permission to a group. Granting an
	// already held permission is not an error.
	GrantPermission(ctx context.Context, name string, perm Permission) error

	// RevokePermission removes a permission from a group. Revoking a
	// permission the group does not hold is not an error.
	RevokePermission(ctx context.Context, name string, perm Permission) error

	// DeleteGroup removes a group, or ErrGroupNotFound.
	DeleteGroup(ctx context.Context, name string) error
}

// Authorizer answers authorization questions for the console. The
// host's authorization module implements it; the console never makes
// permission decisions of its own.
type Authorizer interface {
	// IsAdmin reports whether user may mutate groups.
	IsAdmin(ctx context.Context, user string) bool

	// HasPermission reports whether user may perform action within
	// app, directly or through a group grant.
	HasPermission(ctx context.Context, user, app, action string) bool
}
