package services

import (
	"testing"

	"github.com/stackroom/backend/internal/models"
	"github.com/stackroom/backend/pkg/response"
)

func TestProjectService_CreateAndList(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db)
	projects := NewProjectService(db, access, nil)

	owner := createTestUser(t, db, "owner")
	collab := createTestUser(t, db, "collab")

	created, err := projects.Create(&CreateProjectRequest{Name: "  Launch  "}, owner.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Name != "Launch" {
		t.Errorf("Name = %q, expected trimmed", created.Name)
	}

	addTestCollaborator(t, db, created.ID, collab.ID)

	for _, userID := range []uint{owner.ID, collab.ID} {
		list, err := projects.ListForUser(userID)
		if err != nil {
			t.Fatalf("ListForUser(%d): %v", userID, err)
		}
		if len(list) != 1 {
			t.Errorf("ListForUser(%d) = %d projects, expected 1", userID, len(list))
		}
	}

	outsider := createTestUser(t, db, "outsider")
	list, err := projects.ListForUser(outsider.ID)
	if err != nil {
		t.Fatalf("ListForUser outsider: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("outsider sees %d projects, expected 0", len(list))
	}
}

func TestProjectService_BlankNameRejected(t *testing.T) {
	db := newTestDB(t)
	projects := NewProjectService(db, NewAccessService(db), nil)
	owner := createTestUser(t, db, "owner")

	if _, err := projects.Create(&CreateProjectRequest{Name: "   "}, owner.ID); err == nil {
		t.Error("blank name should be rejected")
	}
}

func TestProjectService_GetHidesInvisibleProjects(t *testing.T) {
	db := newTestDB(t)
	projects := NewProjectService(db, NewAccessService(db), nil)

	owner := createTestUser(t, db, "owner")
	outsider := createTestUser(t, db, "outsider")
	project := createTestProject(t, db, "Private", owner.ID)

	_, errMissing := projects.GetByID(9999, owner.ID)
	_, errDenied := projects.GetByID(project.ID, outsider.ID)

	if !response.IsNotFound(errMissing) || !response.IsNotFound(errDenied) {
		t.Fatalf("expected NotFound for both, got %v / %v", errMissing, errDenied)
	}
	// The two failures must be indistinguishable.
	if errMissing.Error() != errDenied.Error() {
		t.Error("missing and denied must read identically")
	}
}

func TestProjectService_UpdateDeleteOwnerOnly(t *testing.T) {
	db := newTestDB(t)
	projects := NewProjectService(db, NewAccessService(db), nil)

	owner := createTestUser(t, db, "owner")
	collab := createTestUser(t, db, "collab")
	project := createTestProject(t, db, "Launch", owner.ID)
	addTestCollaborator(t, db, project.ID, collab.ID)

	name := "Renamed"
	if _, err := projects.Update(project.ID, collab.ID, &UpdateProjectRequest{Name: name}); err == nil {
		t.Error("collaborator update should be forbidden")
	}
	if err := projects.Delete(project.ID, collab.ID); err == nil {
		t.Error("collaborator delete should be forbidden")
	}

	if _, err := projects.Update(project.ID, owner.ID, &UpdateProjectRequest{Name: name}); err != nil {
		t.Errorf("owner update failed: %v", err)
	}
	if err := projects.Delete(project.ID, owner.ID); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}
}

func TestProjectService_AddCollaborator(t *testing.T) {
	db := newTestDB(t)
	projects := NewProjectService(db, NewAccessService(db), nil)

	owner := createTestUser(t, db, "owner")
	invitee := createTestUser(t, db, "invitee")
	collab := createTestUser(t, db, "collab")
	project := createTestProject(t, db, "Launch", owner.ID)
	addTestCollaborator(t, db, project.ID, collab.ID)

	// Non-owner cannot invite.
	if _, err := projects.AddCollaborator(project.ID, collab.ID, invitee.Email, ""); err == nil {
		t.Error("collaborator invite should be forbidden")
	}

	view, err := projects.AddCollaborator(project.ID, owner.ID, invitee.Email, "")
	if err != nil {
		t.Fatalf("AddCollaborator: %v", err)
	}
	if view.UserID != invitee.ID || view.Role != "collaborator" {
		t.Errorf("unexpected collaborator view: %+v", view)
	}

	// Duplicate invite conflicts.
	if _, err := projects.AddCollaborator(project.ID, owner.ID, invitee.Email, ""); !response.IsConflict(err) {
		t.Errorf("duplicate invite: expected Conflict, got %v", err)
	}

	// Owner cannot invite themself.
	ownerRow := models.User{}
	db.First(&ownerRow, owner.ID)
	if _, err := projects.AddCollaborator(project.ID, owner.ID, ownerRow.Email, ""); err == nil {
		t.Error("self-invite should be rejected")
	}

	// Unknown email is a 404.
	if _, err := projects.AddCollaborator(project.ID, owner.ID, "nobody@example.com", ""); !response.IsNotFound(err) {
		t.Errorf("unknown email: expected NotFound, got %v", err)
	}
}

func TestProjectService_RemoveCollaboratorRules(t *testing.T) {
	db := newTestDB(t)
	projects := NewProjectService(db, NewAccessService(db), nil)

	owner := createTestUser(t, db, "owner")
	collabA := createTestUser(t, db, "alice")
	collabB := createTestUser(t, db, "bob")
	project := createTestProject(t, db, "Launch", owner.ID)
	addTestCollaborator(t, db, project.ID, collabA.ID)
	addTestCollaborator(t, db, project.ID, collabB.ID)

	// A collaborator cannot remove another collaborator.
	if err := projects.RemoveCollaborator(project.ID, collabA.ID, collabB.ID); err == nil {
		t.Error("collaborator removing another should be forbidden")
	}

	// A collaborator may remove themself.
	if err := projects.RemoveCollaborator(project.ID, collabA.ID, collabA.ID); err != nil {
		t.Errorf("self-removal failed: %v", err)
	}

	// The owner may remove a collaborator.
	if err := projects.RemoveCollaborator(project.ID, owner.ID, collabB.ID); err != nil {
		t.Errorf("owner removal failed: %v", err)
	}

	// The owner cannot remove themself.
	if err := projects.RemoveCollaborator(project.ID, owner.ID, owner.ID); err == nil {
		t.Error("owner self-removal should be rejected")
	}

	// Removing a non-collaborator is a 404.
	if err := projects.RemoveCollaborator(project.ID, owner.ID, collabA.ID); !response.IsNotFound(err) {
		t.Errorf("removing absent collaborator: expected NotFound, got %v", err)
	}
}
