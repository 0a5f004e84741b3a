package services

import (
	"testing"

	"github.com/stackroom/backend/internal/models"
)

// Full collaboration walkthrough: project creation, invitation, chat-driven
// stack and insight creation, tagging, and the owner's delete override.
func TestCollaborationFlow(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db)
	projects := NewProjectService(db, access, nil)
	stacks := NewStackService(db, access)
	insights := NewInsightService(db, access, stacks)
	tags := NewTagService(db, access)
	chat := NewChatService(db, access, stacks, insights, NewEventHub())

	userA := createTestUser(t, db, "alice")
	userB := createTestUser(t, db, "bob")

	// A creates "Launch" and invites B by email.
	project, err := projects.Create(&CreateProjectRequest{Name: "Launch"}, userA.ID)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if _, err := projects.AddCollaborator(project.ID, userA.ID, userB.Email, ""); err != nil {
		t.Fatalf("invite B: %v", err)
	}

	// B creates a stack through chat.
	stackResult, err := chat.Send(project.ID, nil, userB.ID, "/stack Competitors")
	if err != nil {
		t.Fatalf("B /stack: %v", err)
	}
	if stackResult.Stack == nil || stackResult.Stack.Topic != "Competitors" {
		t.Fatal("stack not created from chat command")
	}
	var sysCount int64
	db.Model(&models.ChatMessage{}).Where("message_type = ?", models.MessageTypeSystem).Count(&sysCount)
	if sysCount != 1 {
		t.Errorf("expected 1 system message after /stack, got %d", sysCount)
	}

	// B records an insight inside the new stack.
	insightResult, err := chat.Send(project.ID, &stackResult.Stack.ID, userB.ID, "/insight Competitor X raised $2M")
	if err != nil {
		t.Fatalf("B /insight: %v", err)
	}
	insight := insightResult.Insight
	if insight == nil || insight.Content != "Competitor X raised $2M" {
		t.Fatal("insight not created from chat command")
	}

	// A tags the insight with a fresh tag.
	tag, err := tags.Create(project.ID, userA.ID, &CreateTagRequest{Name: "funding", Color1: "#FF3B30"})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if err := insights.AttachTag(insight.ID, tag.ID, userA.ID); err != nil {
		t.Fatalf("attach tag: %v", err)
	}

	view, err := insights.Get(insight.ID, userA.ID)
	if err != nil {
		t.Fatalf("get insight: %v", err)
	}
	if len(view.Tags) != 1 || view.Tags[0].Name != "funding" {
		t.Error("insight should carry the funding tag")
	}

	// A deletes B's insight: the owner override applies.
	if err := insights.Delete(insight.ID, userA.ID); err != nil {
		t.Fatalf("owner delete of B's insight failed: %v", err)
	}
	var remaining int64
	db.Model(&models.Insight{}).Count(&remaining)
	if remaining != 0 {
		t.Error("insight should be deleted")
	}
}
