package handlers

import (
	"net/http"
	"strconv"

	"classroom-service/internal/models"
	"classroom-service/internal/services"
	"classroom-service/internal/websocket"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService *services.ChatService
	hub         *websocket.Hub
}

func NewChatHandler(chatService *services.ChatService, hub *websocket.Hub) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		hub:         hub,
	}
}

// Create godoc
// @Summary Post a chat message
// @Description Post into the assignment's thread. Subscribers of the
// assignment topic get a chat_message event.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Param request body models.MessageCreateRequest true "Message text"
// @Success 201 {object} models.MessageResponse "Message posted"
// @Failure 403 {object} models.ErrorResponse "Not a member"
// @Router /assignments/{id}/messages [post]
func (h *ChatHandler) Create(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req models.MessageCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.chatService.Create(assignmentID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.BroadcastToTopic(websocket.AssignmentTopic(assignmentID), websocket.EventChatMessage, resp)
	c.JSON(http.StatusCreated, resp)
}

func (h *ChatHandler) List(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	resp, err := h.chatService.List(assignmentID, userID, offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete soft-deletes a message and tells the thread about it.
func (h *ChatHandler) Delete(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	messageID, ok := paramID(c, "id")
	if !ok {
		return
	}

	resp, err := h.chatService.Delete(messageID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.BroadcastToTopic(websocket.AssignmentTopic(resp.AssignmentID), websocket.EventChatMessageDeleted,
		messageDeletedPayload(messageID))
	c.JSON(http.StatusOK, resp)
}
