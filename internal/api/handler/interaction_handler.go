package handler

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/pkg/response"
	"IdeaVault/internal/service"

	"github.com/gin-gonic/gin"
)

// InteractionHandler 帖子与想法共用一套点赞/评论接口，kind 由路由决定
type InteractionHandler struct {
	interactionSvc service.InteractionService
}

func NewInteractionHandler(interactionSvc service.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactionSvc: interactionSvc}
}

func (s *InteractionHandler) ToggleLike(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		res, err := s.interactionSvc.ToggleLike(c.Request.Context(), c.GetUint64("user_id"), kind, id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, res)
	}
}

func (s *InteractionHandler) GetState(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		res, err := s.interactionSvc.GetInteractionState(c.Request.Context(), c.GetUint64("user_id"), kind, id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, res)
	}
}

func (s *InteractionHandler) CreateComment(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req dto.CommentCreateDTO
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, err)
			return
		}
		comment, err := s.interactionSvc.CreateComment(c.Request.Context(), c.GetUint64("user_id"), kind, id, req.Content)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, comment)
	}
}

func (s *InteractionHandler) ListComments(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		page, pageSize := pageQuery(c)
		list, err := s.interactionSvc.ListComments(c.Request.Context(), c.GetUint64("user_id"), kind, id, page, pageSize)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, list)
	}
}

func (s *InteractionHandler) DeleteComment(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "comment_id")
		if !ok {
			return
		}
		if err := s.interactionSvc.DeleteComment(c.Request.Context(), c.GetUint64("user_id"), kind, id); err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, nil)
	}
}

func (s *InteractionHandler) ToggleFavorite(c *gin.Context) {
	var req dto.ToggleFavoriteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	res, err := s.interactionSvc.ToggleFavorite(c.Request.Context(), c.GetUint64("user_id"), req.ItemType, req.ItemID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *InteractionHandler) ListFavorites(c *gin.Context) {
	page, pageSize := pageQuery(c)
	list, err := s.interactionSvc.ListFavorites(c.Request.Context(), c.GetUint64("user_id"), c.Query("item_type"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}
