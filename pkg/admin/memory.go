package admin

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryDirectory is an in-memory Directory for tests and demos.
type MemoryDirectory struct {
	mu     sync.RWMutex
	groups map[string]*Group
}

// NewMemoryDirectory creates an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		groups: make(map[string]*Group),
	}
}

// ListGroups returns all groups sorted by name.
func (d *MemoryDirectory) ListGroups(ctx context.Context) ([]Group, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Group, 0, len(d.groups))
	for _, g := range d.groups {
		out = append(out, copyGroup(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetGroup returns one group, or ErrGroupNotFound.
func (d *MemoryDirectory) GetGroup(ctx context.Context, name string) (*Group, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	g, ok := d.groups[name]
	if !ok {
		return nil, ErrGroupNotFound
	}
	out := copyGroup(g)
	return &out, nil
}

// CreateGroup adds an empty group.
func (d *MemoryDirectory) CreateGroup(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.groups[name]; ok {
		return ErrGroupExists
	}
	d.groups[name] = &Group{Name: name}
	return nil
}

// RenameGroup changes a group's name, keeping members and permissions.
func (d *MemoryDirectory) RenameGroup(ctx context.Context, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrEmptyName
	}
	if oldName == newName {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	g, ok := d.groups[oldName]
	if !ok {
		return ErrGroupNotFound
	}
	if _, ok := d.groups[newName]; ok {
		return ErrGroupExists
	}
	delete(d.groups, oldName)
	g.Name = newName
	d.groups[newName] = g
	return nil
}

// SetMembers replaces a group's member list.
func (d *MemoryDirectory) SetMembers(ctx context.Context, name string, members []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	g, ok := d.groups[name]
	if !ok {
		return ErrGroupNotFound
	}
	g.Members = append([]string(nil), members...)
	sort.Strings(g.Members)
	return nil
}

// GrantPermission adds a permission to a group.
func (d *MemoryDirectory) GrantPermission(ctx context.Context, name string, perm Permission) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	g, ok := d.groups[name]
	if !ok {
		return ErrGroupNotFound
	}
	for _, p := range g.Permissions {
		if p == perm {
			return nil
		}
	}
	g.Permissions = append(g.Permissions, perm)
	sort.Slice(g.Permissions, func(i, j int) bool {
		if g.Permissions[i].App != g.Permissions[j].App {
			return g.Permissions[i].App < g.Permissions[j].App
		}
		return g.Permissions[i].Action < g.Permissions[j].Action
	})
	return nil
}

// RevokePermission removes a permission from a group.
func (d *MemoryDirectory) RevokePermission(ctx context.Context, name string, perm Permission) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	g, ok := d.groups[name]
	if !ok {
		return ErrGroupNotFound
	}
	for i, p := range g.Permissions {
		if p == perm {
			g.Permissions = append(g.Permissions[:i], g.Permissions[i+1:]...)
			return nil
		}
	}
	return nil
}

// DeleteGroup removes a group.
func (d *MemoryDirectory) DeleteGroup(ctx context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.groups[name]; !ok {
		return ErrGroupNotFound
	}
	delete(d.groups, name)
	return nil
}

func copyGroup(g *Group) Group {
	return Group{
		Name:        g.Name,
		Members:     append([]string(nil), g.Members...),
		Permissions: append([]Permission(nil), g.Permissions...),
	}
}

// MemoryAuthorizer is a map-backed Authorizer for tests and demos.
// Admins may mutate groups; permission checks walk group membership.
type MemoryAuthorizer struct {
	mu     sync.RWMutex
	admins map[string]bool
	dir    *MemoryDirectory
}

// NewMemoryAuthorizer creates an authorizer over a memory directory.
func NewMemoryAuthorizer(dir *MemoryDirectory, admins ...string) *MemoryAuthorizer {
	set := make(map[string]bool, len(admins))
	for _, a := range admins {
		set[a] = true
	}
	return &MemoryAuthorizer{admins: set, dir: dir}
}

// IsAdmin reports whether user may mutate groups.
func (a *MemoryAuthorizer) IsAdmin(ctx context.Context, user string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.admins[user]
}

// HasPermission walks the user's groups for a matching grant.
// Admins implicitly hold every permission.
func (a *MemoryAuthorizer) HasPermission(ctx context.Context, user, app, action string) bool {
	if a.IsAdmin(ctx, user) {
		return true
	}

	groups, err := a.dir.ListGroups(ctx)
	if err != nil {
		return false
	}
	want := Permission{App: app, Action: action}
	for _, g := range groups {
		member := false
		for _, m := range g.Members {
			if m == user {
				member = true
				break
			}
		}
		if !member {
			continue
		}
		for _, p := range g.Permissions {
			if p == want {
				return true
			}
		}
	}
	return false
}
