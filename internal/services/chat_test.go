package services

import (
	"strings"
	"testing"

	"github.com/stackroom/backend/internal/models"
	"github.com/stackroom/backend/pkg/response"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		text string
		kind CommandKind
		arg  string
	}{
		{"/stack Competitors", CommandStack, "Competitors"},
		{"/STACK Competitors", CommandStack, "Competitors"},
		{"/Stack  spaced topic  ", CommandStack, "spaced topic"},
		{"/insight Competitor X raised $2M", CommandInsight, "Competitor X raised $2M"},
		{"/INSIGHT hello", CommandInsight, "hello"},
		{"/image logo.png", CommandImage, "logo.png"},
		{"/iMaGe shot", CommandImage, "shot"},
		{"just a normal message", CommandNone, ""},
		{"/stack", CommandNone, ""},
		{"/stacks topic", CommandNone, ""},
		{"say /stack mid-message", CommandNone, ""},
		{"/unknown thing", CommandNone, ""},
	}

	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			got := ParseCommand(tc.text)
			if got.Kind != tc.kind {
				t.Errorf("Kind = %v, expected %v", got.Kind, tc.kind)
			}
			if got.Arg != tc.arg {
				t.Errorf("Arg = %q, expected %q", got.Arg, tc.arg)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	exactly50 := strings.Repeat("a", 50)
	if got := truncate(exactly50, 50); got != exactly50 {
		t.Errorf("50 chars should not be truncated, got %q", got)
	}

	over := strings.Repeat("b", 51)
	got := truncate(over, 50)
	if got != strings.Repeat("b", 50)+"..." {
		t.Errorf("51 chars should truncate to 50 plus ellipsis, got %q", got)
	}

	if got := truncate("short", 50); got != "short" {
		t.Errorf("short string changed: %q", got)
	}
}

func TestChatService_PlainMessage(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db)
	stacks := NewStackService(db, access)
	insights := NewInsightService(db, access, stacks)
	chat := NewChatService(db, access, stacks, insights, NewEventHub())

	owner := createTestUser(t, db, "owner")
	project := createTestProject(t, db, "Launch", owner.ID)

	result, err := chat.Send(project.ID, nil, owner.ID, "hello there")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if result.Kind != ResultMessage {
		t.Errorf("Kind = %q, expected %q", result.Kind, ResultMessage)
	}
	if result.Message == nil || result.Message.Message != "hello there" {
		t.Error("plain message should be persisted as-is")
	}
	if result.Message.SenderName == nil {
		t.Error("sender name should be resolved")
	}
}

func TestChatService_StackCommand(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db)
	stacks := NewStackService(db, access)
	insights := NewInsightService(db, access, stacks)
	chat := NewChatService(db, access, stacks, insights, NewEventHub())

	owner := createTestUser(t, db, "owner")
	project := createTestProject(t, db, "Launch", owner.ID)

	result, err := chat.Send(project.ID, nil, owner.ID, "/stack Competitors")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if result.Kind != ResultStackCreated {
		t.Errorf("Kind = %q, expected %q", result.Kind, ResultStackCreated)
	}
	if result.Stack == nil || result.Stack.Topic != "Competitors" {
		t.Fatal("stack should be created with the captured topic")
	}

	var sys models.ChatMessage
	if err := db.Where("message_type = ?", models.MessageTypeSystem).First(&sys).Error; err != nil {
		t.Fatalf("system message not persisted: %v", err)
	}
	if sys.Message != `Research stack "Competitors" created` {
		t.Errorf("system message = %q", sys.Message)
	}
	if sys.StackID == nil || *sys.StackID != result.Stack.ID {
		t.Error("system message should be scoped to the new stack")
	}
	if sys.UserID != nil {
		t.Error("system message should have no sender")
	}
}

func TestChatService_StackCommandDuplicateTopic(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db)
	stacks := NewStackService(db, access)
	insights := NewInsightService(db, access, stacks)
	chat := NewChatService(db, access, stacks, insights, NewEventHub())

	owner := createTestUser(t, db, "owner")
	project := createTestProject(t, db, "Launch", owner.ID)

	if _, err := chat.Send(project.ID, nil, owner.ID, "/stack Pricing"); err != nil {
		t.Fatalf("first /stack: %v", err)
	}
	if _, err := chat.Send(project.ID, nil, owner.ID, "/stack Pricing"); !response.IsConflict(err) {
		t.Errorf("duplicate /stack: expected Conflict, got %v", err)
	}
}

func TestChatService_InsightCommandNeedsStackContext(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db)
	stacks := NewStackService(db, access)
	insights := NewInsightService(db, access, stacks)
	chat := NewChatService(db, access, stacks, insights, NewEventHub())

	owner := createTestUser(t, db, "owner")
	project := createTestProject(t, db, "Launch", owner.ID)

	_, err := chat.Send(project.ID, nil, owner.ID, "/insight hello")
	if err == nil {
		t.Fatal("expected validation error without stack context")
	}
	appErr, ok := response.AsAppError(err)
	if !ok || appErr.HTTPStatus != 400 {
		t.Errorf("expected 400-class error, got %v", err)
	}
}

func TestChatService_InsightCommand(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db)
	stacks := NewStackService(db, access)
	insights := NewInsightService(db, access, stacks)
	chat := NewChatService(db, access, stacks, insights, NewEventHub())

	owner := createTestUser(t, db, "owner")
	project := createTestProject(t, db, "Launch", owner.ID)
	stack := createTestStack(t, db, project.ID, owner.ID, "Research")

	result, err := chat.Send(project.ID, &stack.ID, owner.ID, "/insight hello")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if result.Kind != ResultInsightCreated {
		t.Errorf("Kind = %q, expected %q", result.Kind, ResultInsightCreated)
	}
	if result.Insight == nil || result.Insight.Content != "hello" {
		t.Fatal("insight should carry the captured content")
	}

	var count int64
	db.Model(&models.Insight{}).Where("stack_id = ?", stack.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 insight, got %d", count)
	}

	var sysCount int64
	db.Model(&models.ChatMessage{}).
		Where("message_type = ? AND message = ?", models.MessageTypeSystem, `Insight added: "hello"`).
		Count(&sysCount)
	if sysCount != 1 {
		t.Errorf("expected exactly 1 system message with the literal preview, got %d", sysCount)
	}
}

func TestChatService_InsightPreviewTruncation(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db)
	stacks := NewStackService(db, access)
	insights := NewInsightService(db, access, stacks)
	chat := NewChatService(db, access, stacks, insights, NewEventHub())

	owner := createTestUser(t, db, "owner")
	project := createTestProject(t, db, "Launch", owner.ID)
	stack := createTestStack(t, db, project.ID, owner.ID, "Research")

	long := strings.Repeat("x", 51)
	if _, err := chat.Send(project.ID, &stack.ID, owner.ID, "/insight "+long); err != nil {
		t.Fatalf("Send long: %v", err)
	}

	var sys models.ChatMessage
	if err := db.Where("message_type = ?", models.MessageTypeSystem).First(&sys).Error; err != nil {
		t.Fatalf("system message missing: %v", err)
	}
	want := `Insight added: "` + strings.Repeat("x", 50) + `..."`
	if sys.Message != want {
		t.Errorf("system message = %q, expected %q", sys.Message, want)
	}

	exactly50 := strings.Repeat("y", 50)
	if _, err := chat.Send(project.ID, &stack.ID, owner.ID, "/insight "+exactly50); err != nil {
		t.Fatalf("Send exact: %v", err)
	}
	var count int64
	db.Model(&models.ChatMessage{}).
		Where("message_type = ? AND message = ?", models.MessageTypeSystem, `Insight added: "`+exactly50+`"`).
		Count(&count)
	if count != 1 {
		t.Error("50-char content should have no trailing ellipsis")
	}
}

func TestChatService_ImageCommand(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db)
	stacks := NewStackService(db, access)
	insights := NewInsightService(db, access, stacks)
	chat := NewChatService(db, access, stacks, insights, NewEventHub())

	owner := createTestUser(t, db, "owner")
	project := createTestProject(t, db, "Launch", owner.ID)
	stack := createTestStack(t, db, project.ID, owner.ID, "Research")

	result, err := chat.Send(project.ID, &stack.ID, owner.ID, "/image logo.png")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if result.Kind != ResultImageUploadRequested {
		t.Errorf("Kind = %q, expected %q", result.Kind, ResultImageUploadRequested)
	}
	if result.StackID == nil || *result.StackID != stack.ID {
		t.Error("result should carry the stack id")
	}
	if result.ImageName != "logo.png" {
		t.Errorf("ImageName = %q", result.ImageName)
	}

	// /image creates nothing: no image row, no chat messages.
	var images int64
	db.Model(&models.Image{}).Count(&images)
	if images != 0 {
		t.Error("no image row should exist")
	}
	var messages int64
	db.Model(&models.ChatMessage{}).Count(&messages)
	if messages != 0 {
		t.Error("no chat message should be persisted for /image")
	}

	// Without a stack context it is a validation failure.
	if _, err := chat.Send(project.ID, nil, owner.ID, "/image x.png"); err == nil {
		t.Error("expected validation error without stack context")
	}
}

func TestChatService_StackMustBelongToProject(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db)
	stacks := NewStackService(db, access)
	insights := NewInsightService(db, access, stacks)
	chat := NewChatService(db, access, stacks, insights, NewEventHub())

	owner := createTestUser(t, db, "owner")
	projectA := createTestProject(t, db, "A", owner.ID)
	projectB := createTestProject(t, db, "B", owner.ID)
	stackB := createTestStack(t, db, projectB.ID, owner.ID, "Elsewhere")

	if _, err := chat.Send(projectA.ID, &stackB.ID, owner.ID, "hi"); !response.IsNotFound(err) {
		t.Errorf("foreign stack: expected NotFound, got %v", err)
	}
}

func TestChatService_GetMessagesOrdering(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db)
	stacks := NewStackService(db, access)
	insights := NewInsightService(db, access, stacks)
	chat := NewChatService(db, access, stacks, insights, NewEventHub())

	owner := createTestUser(t, db, "owner")
	project := createTestProject(t, db, "Launch", owner.ID)

	for _, text := range []string{"first", "second", "third"} {
		if _, err := chat.Send(project.ID, nil, owner.ID, text); err != nil {
			t.Fatalf("Send %q: %v", text, err)
		}
	}

	messages, err := chat.GetMessages(project.ID, nil, owner.ID)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	for i, want := range []string{"first", "second", "third"} {
		if messages[i].Message != want {
			t.Errorf("messages[%d] = %q, expected %q", i, messages[i].Message, want)
		}
	}

	outsider := createTestUser(t, db, "outsider")
	if _, err := chat.GetMessages(project.ID, nil, outsider.ID); !response.IsNotFound(err) {
		t.Errorf("outsider GetMessages: expected NotFound, got %v", err)
	}
}
