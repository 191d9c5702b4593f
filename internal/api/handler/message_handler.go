package handler

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/pkg/response"
	"IdeaVault/internal/service"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageSvc service.MessageService
}

func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

func (s *MessageHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	msg, err := s.messageSvc.SendMessage(c.Request.Context(), c.GetUint64("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, msg)
}

func (s *MessageHandler) ListInbox(c *gin.Context) {
	page, pageSize := pageQuery(c)
	list, err := s.messageSvc.ListInbox(c.Request.Context(), c.GetUint64("user_id"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *MessageHandler) GetThread(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	list, err := s.messageSvc.GetThread(c.Request.Context(), c.GetUint64("user_id"), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *MessageHandler) MarkRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.messageSvc.MarkRead(c.Request.Context(), c.GetUint64("user_id"), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *MessageHandler) MarkThreadRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.messageSvc.MarkThreadRead(c.Request.Context(), c.GetUint64("user_id"), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *MessageHandler) UnreadCount(c *gin.Context) {
	res, err := s.messageSvc.UnreadCount(c.Request.Context(), c.GetUint64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
