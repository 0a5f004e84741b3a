package services

import (
	"testing"

	"github.com/stackroom/backend/pkg/response"
)

func TestTagService_CreateDefaultsAndUniqueness(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db)
	tags := NewTagService(db, access)

	owner := createTestUser(t, db, "owner")
	project := createTestProject(t, db, "Launch", owner.ID)
	other := createTestProject(t, db, "Other", owner.ID)

	tag, err := tags.Create(project.ID, owner.ID, &CreateTagRequest{Name: "funding"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tag.Color1 != "#007AFF" {
		t.Errorf("Color1 default = %q, expected #007AFF", tag.Color1)
	}
	if tag.Color2 != "" {
		t.Errorf("Color2 should default empty, got %q", tag.Color2)
	}

	if _, err := tags.Create(project.ID, owner.ID, &CreateTagRequest{Name: "funding"}); !response.IsConflict(err) {
		t.Errorf("duplicate name in project: expected Conflict, got %v", err)
	}

	// Same name in another project is fine.
	if _, err := tags.Create(other.ID, owner.ID, &CreateTagRequest{Name: "funding"}); err != nil {
		t.Errorf("same name in other project should succeed, got %v", err)
	}
}

func TestTagService_CustomColors(t *testing.T) {
	db := newTestDB(t)
	tags := NewTagService(db, NewAccessService(db))

	owner := createTestUser(t, db, "owner")
	project := createTestProject(t, db, "Launch", owner.ID)

	tag, err := tags.Create(project.ID, owner.ID, &CreateTagRequest{
		Name:   "urgent",
		Color1: "#FF3B30",
		Color2: "#FFFFFF",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tag.Color1 != "#FF3B30" || tag.Color2 != "#FFFFFF" {
		t.Errorf("colors not honored: %q/%q", tag.Color1, tag.Color2)
	}
}

func TestTagService_UpdateRename(t *testing.T) {
	db := newTestDB(t)
	tags := NewTagService(db, NewAccessService(db))

	owner := createTestUser(t, db, "owner")
	project := createTestProject(t, db, "Launch", owner.ID)

	a, _ := tags.Create(project.ID, owner.ID, &CreateTagRequest{Name: "alpha"})
	if _, err := tags.Create(project.ID, owner.ID, &CreateTagRequest{Name: "beta"}); err != nil {
		t.Fatalf("create beta: %v", err)
	}

	name := "beta"
	if _, err := tags.Update(a.ID, owner.ID, &UpdateTagRequest{Name: &name}); !response.IsConflict(err) {
		t.Errorf("rename onto taken name: expected Conflict, got %v", err)
	}

	fresh := "gamma"
	updated, err := tags.Update(a.ID, owner.ID, &UpdateTagRequest{Name: &fresh})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if updated.Name != "gamma" {
		t.Errorf("Name = %q, expected gamma", updated.Name)
	}
}

func TestTagService_DeleteOwnerOnly(t *testing.T) {
	db := newTestDB(t)
	tags := NewTagService(db, NewAccessService(db))

	owner := createTestUser(t, db, "owner")
	collab := createTestUser(t, db, "collab")
	project := createTestProject(t, db, "Launch", owner.ID)
	addTestCollaborator(t, db, project.ID, collab.ID)

	// Any collaborator may create tags.
	tag, err := tags.Create(project.ID, collab.ID, &CreateTagRequest{Name: "shared"})
	if err != nil {
		t.Fatalf("collaborator create: %v", err)
	}

	if err := tags.Delete(tag.ID, collab.ID); err == nil {
		t.Error("collaborator delete should be forbidden")
	}
	if err := tags.Delete(tag.ID, owner.ID); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}
}
