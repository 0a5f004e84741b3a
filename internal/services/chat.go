package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/stackroom/backend/internal/models"
	"github.com/stackroom/backend/pkg/response"
	"gorm.io/gorm"
)

// CommandKind classifies a chat message after parsing.
type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandStack
	CommandInsight
	CommandImage
)

// ParsedCommand is the result of matching a message against the
// slash-command patterns. Arg is the captured text, trimmed.
type ParsedCommand struct {
	Kind CommandKind
	Arg  string
}

// Patterns are tried in order; the first match wins. Matching is
// case-insensitive on the command token.
var commandPatterns = []struct {
	kind CommandKind
	re   *regexp.Regexp
}{
	{CommandStack, regexp.MustCompile(`(?i)^/stack\s+(.+)$`)},
	{CommandInsight, regexp.MustCompile(`(?i)^/insight\s+(.+)$`)},
	{CommandImage, regexp.MustCompile(`(?i)^/image\s+(.+)$`)},
}

// ParseCommand classifies a message. Anything that matches no pattern is
// a plain message with Kind CommandNone.
func ParseCommand(text string) ParsedCommand {
	for _, p := range commandPatterns {
		if m := p.re.FindStringSubmatch(text); m != nil {
			return ParsedCommand{Kind: p.kind, Arg: strings.TrimSpace(m[1])}
		}
	}
	return ParsedCommand{Kind: CommandNone}
}

// Result kinds returned by Send.
const (
	ResultMessage              = "message"
	ResultStackCreated         = "stack_created"
	ResultInsightCreated       = "insight_created"
	ResultImageUploadRequested = "image_upload_requested"
)

// ChatResult is what one Send produced. Exactly one of the optional
// fields is set, matching Kind.
type ChatResult struct {
	Kind      string               `json:"kind"`
	Message   *MessageView         `json:"message,omitempty"`
	Stack     *models.Stack        `json:"stack,omitempty"`
	Insight   *models.Insight      `json:"insight,omitempty"`
	StackID   *uint                `json:"stack_id,omitempty"`
	ImageName string               `json:"image_name,omitempty"`
	System    []models.ChatMessage `json:"system_messages,omitempty"`
}

// MessageView is a chat message joined with its sender's display name.
// A nil sender means the message was generated by the system.
type MessageView struct {
	models.ChatMessage
	SenderName *string `json:"sender_name"`
}

// ChatService runs the project chat: plain messages, the slash-command
// dispatcher and message retrieval.
type ChatService struct {
	db       *gorm.DB
	access   *AccessService
	stacks   *StackService
	insights *InsightService
	hub      *EventHub
}

func NewChatService(db *gorm.DB, access *AccessService, stacks *StackService, insights *InsightService, hub *EventHub) *ChatService {
	return &ChatService{db: db, access: access, stacks: stacks, insights: insights, hub: hub}
}

// Send handles one incoming chat message. Project access and, when a
// stack context is supplied, stack ownership are checked before any
// branch of the dispatch runs.
func (s *ChatService) Send(projectID uint, stackID *uint, userID uint, text string) (*ChatResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, response.NewBadRequest("message text is required")
	}

	if !s.access.HasAccess(projectID, userID) {
		return nil, errProjectAccess
	}
	if stackID != nil {
		if _, err := s.stacks.inProject(*stackID, projectID); err != nil {
			return nil, err
		}
	}

	cmd := ParseCommand(text)
	switch cmd.Kind {
	case CommandStack:
		return s.handleStackCommand(projectID, stackID, userID, text, cmd.Arg)
	case CommandInsight:
		return s.handleInsightCommand(projectID, stackID, userID, text, cmd.Arg)
	case CommandImage:
		return s.handleImageCommand(projectID, stackID, cmd.Arg)
	default:
		return s.handlePlainMessage(projectID, stackID, userID, text)
	}
}

func (s *ChatService) handlePlainMessage(projectID uint, stackID *uint, userID uint, text string) (*ChatResult, error) {
	msg, err := s.persist(projectID, stackID, &userID, text, models.MessageTypeUser)
	if err != nil {
		return nil, err
	}
	view, err := s.view(msg)
	if err != nil {
		return nil, err
	}

	s.publish("chat_message", projectID, stackID, view)
	return &ChatResult{Kind: ResultMessage, Message: view}, nil
}

func (s *ChatService) handleStackCommand(projectID uint, stackID *uint, userID uint, text, topic string) (*ChatResult, error) {
	stack, err := s.stacks.Create(projectID, userID, topic)
	if err != nil {
		return nil, err
	}

	if _, err := s.persist(projectID, stackID, &userID, text, models.MessageTypeCommand); err != nil {
		return nil, err
	}

	sys, err := s.persist(projectID, &stack.ID, nil,
		fmt.Sprintf(`Research stack "%s" created`, stack.Topic), models.MessageTypeSystem)
	if err != nil {
		return nil, err
	}

	s.publish("stack_created", projectID, &stack.ID, stack)
	return &ChatResult{Kind: ResultStackCreated, Stack: stack, System: []models.ChatMessage{*sys}}, nil
}

func (s *ChatService) handleInsightCommand(projectID uint, stackID *uint, userID uint, text, content string) (*ChatResult, error) {
	if stackID == nil {
		return nil, response.NewBadRequest("must be in a stack chat to add insights")
	}

	insight, err := s.insights.Create(*stackID, userID, content)
	if err != nil {
		return nil, err
	}

	if _, err := s.persist(projectID, stackID, &userID, text, models.MessageTypeCommand); err != nil {
		return nil, err
	}

	sys, err := s.persist(projectID, stackID, nil,
		fmt.Sprintf(`Insight added: "%s"`, truncate(insight.Content, 50)), models.MessageTypeSystem)
	if err != nil {
		return nil, err
	}

	s.publish("insight_created", projectID, stackID, insight)
	return &ChatResult{Kind: ResultInsightCreated, Insight: insight, System: []models.ChatMessage{*sys}}, nil
}

// handleImageCommand creates nothing; the client is expected to follow
// up with a real upload call carrying the file.
func (s *ChatService) handleImageCommand(projectID uint, stackID *uint, name string) (*ChatResult, error) {
	if stackID == nil {
		return nil, response.NewBadRequest("must be in a stack chat to add images")
	}
	return &ChatResult{Kind: ResultImageUploadRequested, StackID: stackID, ImageName: name}, nil
}

// GetMessages returns the project's (or stack's) messages in ascending
// creation order with sender names resolved.
func (s *ChatService) GetMessages(projectID uint, stackID *uint, userID uint) ([]MessageView, error) {
	if !s.access.HasAccess(projectID, userID) {
		return nil, errProjectAccess
	}
	if stackID != nil {
		if _, err := s.stacks.inProject(*stackID, projectID); err != nil {
			return nil, err
		}
	}

	query := s.db.Where("project_id = ?", projectID)
	if stackID != nil {
		query = query.Where("stack_id = ?", *stackID)
	}

	var messages []models.ChatMessage
	if err := query.Order("created_at ASC").Order("id ASC").Find(&messages).Error; err != nil {
		return nil, err
	}

	views := make([]MessageView, 0, len(messages))
	for _, msg := range messages {
		view, err := s.view(&msg)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *ChatService) persist(projectID uint, stackID *uint, userID *uint, text, msgType string) (*models.ChatMessage, error) {
	msg := models.ChatMessage{
		ProjectID:   projectID,
		StackID:     stackID,
		UserID:      userID,
		Message:     text,
		MessageType: msgType,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *ChatService) view(msg *models.ChatMessage) (*MessageView, error) {
	view := MessageView{ChatMessage: *msg}
	if msg.UserID != nil {
		var user models.User
		if err := s.db.First(&user, *msg.UserID).Error; err == nil {
			name := user.DisplayName()
			view.SenderName = &name
		}
	}
	return &view, nil
}

func (s *ChatService) publish(eventType string, projectID uint, stackID *uint, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(ChatEvent{Type: eventType, ProjectID: projectID, StackID: stackID, Payload: payload})
}

// truncate shortens s to max runes, appending an ellipsis only when
// something was cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
