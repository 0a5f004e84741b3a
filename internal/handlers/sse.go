package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stackroom/backend/internal/services"
	"github.com/stackroom/backend/internal/utils"
	"github.com/stackroom/backend/pkg/logger"
	"github.com/stackroom/backend/pkg/response"
)

// SSEHandler streams chat events to connected clients.
type SSEHandler struct {
	hub    *services.EventHub
	access *services.AccessService
}

func NewSSEHandler(hub *services.EventHub, access *services.AccessService) *SSEHandler {
	return &SSEHandler{hub: hub, access: access}
}

// StreamChatEvents pushes a project's chat events over SSE. EventSource
// cannot set headers, so the token may come via query parameter.
// GET /api/events/chat?projectId=&token=
func (h *SSEHandler) StreamChatEvents(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if token == "" {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	claims, err := utils.ParseToken(token)
	if err != nil {
		response.Unauthorized(c, "Invalid token")
		return
	}

	projectID, err := strconv.ParseUint(c.Query("projectId"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	if !h.access.HasAccess(uint(projectID), claims.UserID) {
		response.NotFound(c, "project not found or access denied")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	events, cancel := h.hub.Subscribe(uint(projectID))
	defer cancel()

	logger.Info().Uint("user_id", claims.UserID).Uint64("project_id", projectID).Msg("SSE client connected")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			data, err := json.Marshal(event)
			if err != nil {
				logger.Error().Err(err).Msg("SSE marshal error")
				return true
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			c.Writer.Flush()
			return true
		case <-c.Request.Context().Done():
			logger.Info().Uint64("project_id", projectID).Msg("SSE client disconnected")
			return false
		}
	})
}
