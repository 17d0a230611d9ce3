package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-assistant-api/internal/chatbot"
	"github.com/noah-isme/school-assistant-api/internal/models"
	"github.com/noah-isme/school-assistant-api/pkg/logger"
	"github.com/noah-isme/school-assistant-api/pkg/response"
)

type chatRouter interface {
	Route(ctx context.Context, req chatbot.Request) chatbot.Reply
	Info() models.AIStatus
}

// ChatHandler exposes the chat assistant.
type ChatHandler struct {
	bot chatRouter
}

// NewChatHandler constructs ChatHandler.
func NewChatHandler(bot chatRouter) *ChatHandler {
	return &ChatHandler{bot: bot}
}

// Chat godoc
// @Summary Send a chat message
// @Description Routes a free-text message to calendar, attendance or grade queries, or to the language model
// @Tags Chat
// @Accept json
// @Produce json
// @Param payload body models.ChatRequest true "Chat message"
// @Success 200 {object} models.ChatResponse
// @Failure 400 {object} response.Envelope
// @Router /chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	// A signed-in caller always acts as themselves.
	userID := req.UserID
	if claims := claimsFromContext(c); claims != nil {
		userID = claims.UserID
	}

	reply := h.bot.Route(c.Request.Context(), chatbot.Request{Message: req.Message, UserID: userID})
	c.Set(logger.IntentKey, reply.Intent)
	c.JSON(http.StatusOK, models.ChatResponse{Success: true, Response: reply.Text, Intent: reply.Intent})
}

// AIStatus godoc
// @Summary Language model status
// @Tags Chat
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ai/status [get]
func (h *ChatHandler) AIStatus(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.bot.Info(), nil)
}
