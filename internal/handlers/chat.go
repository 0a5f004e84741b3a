package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/stackroom/backend/internal/middleware"
	"github.com/stackroom/backend/internal/services"
	"github.com/stackroom/backend/pkg/response"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type sendMessageRequest struct {
	Message string `json:"message" binding:"required"`
	StackID *uint  `json:"stack_id"`
}

// Send posts a message into a project's chat. Slash commands are
// dispatched; everything else is stored as a plain message.
// POST /api/chat/project/:projectId
func (h *ChatHandler) Send(c *gin.Context) {
	projectID, ok := paramID(c, "projectId")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.chatService.Send(projectID, req.StackID, middleware.GetUserID(c), req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetMessages returns the chat log, optionally scoped to a stack
// GET /api/chat/project/:projectId?stackId=
func (h *ChatHandler) GetMessages(c *gin.Context) {
	projectID, ok := paramID(c, "projectId")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}
	stackID, ok := queryID(c, "stackId")
	if !ok {
		response.BadRequest(c, "invalid stack id")
		return
	}

	messages, err := h.chatService.GetMessages(projectID, stackID, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, messages)
}
