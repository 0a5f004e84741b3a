package services

import (
	"testing"
)

func TestAccessService_TruthTable(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db)

	owner := createTestUser(t, db, "owner")
	collab := createTestUser(t, db, "collab")
	outsider := createTestUser(t, db, "outsider")
	project := createTestProject(t, db, "Launch", owner.ID)
	addTestCollaborator(t, db, project.ID, collab.ID)

	cases := []struct {
		name      string
		projectID uint
		userID    uint
		owner     bool
		access    bool
	}{
		{"owner", project.ID, owner.ID, true, true},
		{"collaborator", project.ID, collab.ID, false, true},
		{"outsider", project.ID, outsider.ID, false, false},
		{"nonexistent project", 9999, owner.ID, false, false},
		{"nonexistent user", project.ID, 9999, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := access.IsOwner(tc.projectID, tc.userID); got != tc.owner {
				t.Errorf("IsOwner = %v, expected %v", got, tc.owner)
			}
			if got := access.HasAccess(tc.projectID, tc.userID); got != tc.access {
				t.Errorf("HasAccess = %v, expected %v", got, tc.access)
			}
		})
	}
}

func TestAccessService_OwnerIsNotCollaboratorRow(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db)

	owner := createTestUser(t, db, "owner")
	project := createTestProject(t, db, "Solo", owner.ID)

	if access.IsCollaborator(project.ID, owner.ID) {
		t.Error("owner should not appear as a collaborator row")
	}
	if !access.HasAccess(project.ID, owner.ID) {
		t.Error("owner should still have access")
	}
}
