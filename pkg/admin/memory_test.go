package admin

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryDirectoryLifecycle(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory()

	if err := dir.CreateGroup(ctx, "ops"); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if err := dir.CreateGroup(ctx, "ops"); !errors.Is(err, ErrGroupExists) {
		t.Fatalf("duplicate CreateGroup err = %v, want ErrGroupExists", err)
	}
	if err := dir.CreateGroup(ctx, "  "); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("blank CreateGroup err = %v, want ErrEmptyName", err)
	}

	if err := dir.SetMembers(ctx, "ops", []string{"grace", "ada"}); err != nil {
		t.Fatalf("SetMembers: %v", err)
	}
	g, err := dir.GetGroup(ctx, "ops")
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if len(g.Members) != 2 || g.Members[0] != "ada" || g.Members[1] != "grace" {
		t.Errorf("members not sorted: %v", g.Members)
	}

	if err := dir.DeleteGroup(ctx, "ops"); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}
	if _, err := dir.GetGroup(ctx, "ops"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("GetGroup after delete err = %v, want ErrGroupNotFound", err)
	}
	if err := dir.DeleteGroup(ctx, "ops"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("second DeleteGroup err = %v, want ErrGroupNotFound", err)
	}
}

func TestMemoryDirectoryRename(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory()

	if err := dir.CreateGroup(ctx, "ops"); err != nil {
		t.Fatal(err)
	}
	if err := dir.SetMembers(ctx, "ops", []string{"ada"}); err != nil {
		t.Fatal(err)
	}
	if err := dir.GrantPermission(ctx, "ops", Permission{App: "jobs", Action: "read"}); err != nil {
		t.Fatal(err)
	}

	if err := dir.RenameGroup(ctx, "ops", "operators"); err != nil {
		t.Fatalf("RenameGroup: %v", err)
	}
	g, err := dir.GetGroup(ctx, "operators")
	if err != nil {
		t.Fatalf("GetGroup after rename: %v", err)
	}
	if g.Name != "operators" || len(g.Members) != 1 || len(g.Permissions) != 1 {
		t.Errorf("rename dropped data: %+v", g)
	}

	if err := dir.RenameGroup(ctx, "missing", "x"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("rename missing err = %v", err)
	}
	if err := dir.CreateGroup(ctx, "ops"); err != nil {
		t.Fatal(err)
	}
	if err := dir.RenameGroup(ctx, "ops", "operators"); !errors.Is(err, ErrGroupExists) {
		t.Errorf("rename onto existing err = %v", err)
	}
	// Renaming to the same name is a no-op.
	if err := dir.RenameGroup(ctx, "ops", "ops"); err != nil {
		t.Errorf("self-rename err = %v", err)
	}
}

func TestMemoryDirectoryPermissions(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory()

	if err := dir.CreateGroup(ctx, "ops"); err != nil {
		t.Fatal(err)
	}
	read := Permission{App: "jobs", Action: "read"}
	write := Permission{App: "jobs", Action: "write"}

	if err := dir.GrantPermission(ctx, "ops", write); err != nil {
		t.Fatal(err)
	}
	if err := dir.GrantPermission(ctx, "ops", read); err != nil {
		t.Fatal(err)
	}
	// Double grant is idempotent.
	if err := dir.GrantPermission(ctx, "ops", read); err != nil {
		t.Fatal(err)
	}

	g, _ := dir.GetGroup(ctx, "ops")
	if len(g.Permissions) != 2 || g.Permissions[0] != read || g.Permissions[1] != write {
		t.Errorf("permissions = %v, want sorted [read write]", g.Permissions)
	}

	if err := dir.RevokePermission(ctx, "ops", write); err != nil {
		t.Fatal(err)
	}
	// Revoking an absent permission is not an error.
	if err := dir.RevokePermission(ctx, "ops", write); err != nil {
		t.Fatal(err)
	}
	g, _ = dir.GetGroup(ctx, "ops")
	if len(g.Permissions) != 1 || g.Permissions[0] != read {
		t.Errorf("permissions after revoke = %v", g.Permissions)
	}
}

func TestGetGroupReturnsCopy(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory()

	if err := dir.CreateGroup(ctx, "ops"); err != nil {
		t.Fatal(err)
	}
	if err := dir.SetMembers(ctx, "ops", []string{"ada"}); err != nil {
		t.Fatal(err)
	}

	g, _ := dir.GetGroup(ctx, "ops")
	g.Members[0] = "mallory"

	fresh, _ := dir.GetGroup(ctx, "ops")
	if fresh.Members[0] != "ada" {
		t.Error("mutating a returned group leaked into the store")
	}
}

func TestMemoryAuthorizer(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory()
	authz := NewMemoryAuthorizer(dir, "root")

	if err := dir.CreateGroup(ctx, "ops"); err != nil {
		t.Fatal(err)
	}
	if err := dir.SetMembers(ctx, "ops", []string{"ada"}); err != nil {
		t.Fatal(err)
	}
	if err := dir.GrantPermission(ctx, "ops", Permission{App: "jobs", Action: "read"}); err != nil {
		t.Fatal(err)
	}

	if !authz.IsAdmin(ctx, "root") {
		t.Error("root should be admin")
	}
	if authz.IsAdmin(ctx, "ada") {
		t.Error("ada should not be admin")
	}

	if !authz.HasPermission(ctx, "ada", "jobs", "read") {
		t.Error("ada should hold jobs.read through ops")
	}
	if authz.HasPermission(ctx, "ada", "jobs", "write") {
		t.Error("ada should not hold jobs.write")
	}
	if authz.HasPermission(ctx, "bob", "jobs", "read") {
		t.Error("bob is not an ops member")
	}
	if !authz.HasPermission(ctx, "root", "anything", "at-all") {
		t.Error("admins implicitly hold every permission")
	}
}
