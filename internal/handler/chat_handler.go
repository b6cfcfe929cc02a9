package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bijouxelegance/boutique/internal/model"
	"github.com/bijouxelegance/boutique/internal/pkg/errcode"
	"github.com/bijouxelegance/boutique/internal/pkg/response"
	"github.com/bijouxelegance/boutique/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	Message   string                `json:"message"`
	LocalCart []model.LocalCartItem `json:"localCart"`
}

// Ask never fails once the request parses: internal failures come back as a
// degraded turn with Source "fallback", still HTTP 200.
func (h *ChatHandler) Ask(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	turn := h.chat.Handle(c.Request.Context(), req.Message, req.LocalCart)
	response.Success(c, turn)
}
