package handler

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/pkg/response"
	"IdeaVault/internal/service"

	"github.com/gin-gonic/gin"
)

type CollaborationHandler struct {
	collabSvc service.CollaborationService
}

func NewCollaborationHandler(collabSvc service.CollaborationService) *CollaborationHandler {
	return &CollaborationHandler{collabSvc: collabSvc}
}

func (s *CollaborationHandler) RequestCollaboration(c *gin.Context) {
	var req dto.CollaborationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	res, err := s.collabSvc.RequestCollaboration(c.Request.Context(), c.GetUint64("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *CollaborationHandler) ListIncoming(c *gin.Context) {
	page, pageSize := pageQuery(c)
	list, err := s.collabSvc.ListIncoming(c.Request.Context(), c.GetUint64("user_id"), c.Query("status"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *CollaborationHandler) ListOutgoing(c *gin.Context) {
	page, pageSize := pageQuery(c)
	list, err := s.collabSvc.ListOutgoing(c.Request.Context(), c.GetUint64("user_id"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *CollaborationHandler) Accept(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := s.collabSvc.AcceptRequest(c.Request.Context(), c.GetUint64("user_id"), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *CollaborationHandler) Reject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := s.collabSvc.RejectRequest(c.Request.Context(), c.GetUint64("user_id"), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
