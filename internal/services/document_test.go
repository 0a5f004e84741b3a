package services

import (
	"testing"

	"github.com/stackroom/backend/internal/models"
	"github.com/stackroom/backend/pkg/response"
)

func TestDocumentService_DuplicateReferenceConflicts(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db)
	stacks := NewStackService(db, access)
	docs := NewDocumentService(db, access, stacks)

	owner := createTestUser(t, db, "owner")
	home := createTestProject(t, db, "Home", owner.ID)
	other := createTestProject(t, db, "Other", owner.ID)
	doc := createTestDocument(t, db, home.ID, owner.ID, "report.pdf")

	if _, err := docs.AddReference(doc.ID, other.ID, nil, owner.ID); err != nil {
		t.Fatalf("first reference: %v", err)
	}
	if _, err := docs.AddReference(doc.ID, other.ID, nil, owner.ID); !response.IsConflict(err) {
		t.Errorf("duplicate (doc, project, null stack) reference: expected Conflict, got %v", err)
	}

	// Same project but pinned to a stack is a distinct triple.
	stack := createTestStack(t, db, other.ID, owner.ID, "Research")
	if _, err := docs.AddReference(doc.ID, other.ID, &stack.ID, owner.ID); err != nil {
		t.Errorf("reference with stack should be a new triple, got %v", err)
	}
}

func TestDocumentService_ListMergesHomeAndReferenced(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db)
	stacks := NewStackService(db, access)
	docs := NewDocumentService(db, access, stacks)

	owner := createTestUser(t, db, "owner")
	home := createTestProject(t, db, "Home", owner.ID)
	other := createTestProject(t, db, "Other", owner.ID)

	homed := createTestDocument(t, db, other.ID, owner.ID, "native.pdf")
	foreign := createTestDocument(t, db, home.ID, owner.ID, "shared.pdf")
	if _, err := docs.AddReference(foreign.ID, other.ID, nil, owner.ID); err != nil {
		t.Fatalf("add reference: %v", err)
	}
	// Referencing the homed document into its own project must not
	// produce a duplicate listing entry.
	if _, err := docs.AddReference(homed.ID, other.ID, nil, owner.ID); err != nil {
		t.Fatalf("self reference: %v", err)
	}

	views, err := docs.ListForProject(other.ID, owner.ID)
	if err != nil {
		t.Fatalf("ListForProject: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 documents (deduplicated), got %d", len(views))
	}

	byName := map[string]DocumentView{}
	for _, v := range views {
		byName[v.Name] = v
	}
	if v, ok := byName["native.pdf"]; !ok || v.Referenced {
		t.Error("homed document should be listed as not referenced")
	}
	if v, ok := byName["shared.pdf"]; !ok || !v.Referenced {
		t.Error("foreign document should be flagged as referenced")
	}
}

func TestDocumentService_RemoveReferenceIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db)
	stacks := NewStackService(db, access)
	docs := NewDocumentService(db, access, stacks)

	owner := createTestUser(t, db, "owner")
	home := createTestProject(t, db, "Home", owner.ID)
	other := createTestProject(t, db, "Other", owner.ID)
	doc := createTestDocument(t, db, home.ID, owner.ID, "report.pdf")

	if _, err := docs.AddReference(doc.ID, other.ID, nil, owner.ID); err != nil {
		t.Fatalf("add reference: %v", err)
	}
	if err := docs.RemoveReference(doc.ID, other.ID, nil, owner.ID); err != nil {
		t.Fatalf("remove reference: %v", err)
	}
	if err := docs.RemoveReference(doc.ID, other.ID, nil, owner.ID); err != nil {
		t.Errorf("second remove should be a no-op, got %v", err)
	}

	var count int64
	db.Model(&models.DocumentReference{}).Where("document_id = ?", doc.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected 0 references, got %d", count)
	}
}

func TestDocumentService_VisibilityThroughReference(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db)
	stacks := NewStackService(db, access)
	docs := NewDocumentService(db, access, stacks)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	aliceProject := createTestProject(t, db, "Alice's", alice.ID)
	bobProject := createTestProject(t, db, "Bob's", bob.ID)
	addTestCollaborator(t, db, bobProject.ID, alice.ID)

	doc := createTestDocument(t, db, aliceProject.ID, alice.ID, "private.pdf")

	// Bob cannot see the document before it is referenced into his project.
	if _, err := docs.Get(doc.ID, bob.ID); !response.IsNotFound(err) {
		t.Errorf("unreferenced document: expected NotFound for bob, got %v", err)
	}

	if _, err := docs.AddReference(doc.ID, bobProject.ID, nil, alice.ID); err != nil {
		t.Fatalf("add reference: %v", err)
	}

	if _, err := docs.Get(doc.ID, bob.ID); err != nil {
		t.Errorf("referenced document should be visible to bob, got %v", err)
	}
}
