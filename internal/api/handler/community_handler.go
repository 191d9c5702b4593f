package handler

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/pkg/response"
	"IdeaVault/internal/service"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	communitySvc service.CommunityService
}

func NewCommunityHandler(communitySvc service.CommunityService) *CommunityHandler {
	return &CommunityHandler{communitySvc: communitySvc}
}

// ListPosts 置顶优先，其次按时间倒序
func (s *CommunityHandler) ListPosts(c *gin.Context) {
	page, pageSize := pageQuery(c)
	res, err := s.communitySvc.ListPosts(c.Request.Context(), c.GetUint64("user_id"), c.Query("channel"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *CommunityHandler) ListChannels(c *gin.Context) {
	list, err := s.communitySvc.ListChannels(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *CommunityHandler) ListUserPosts(c *gin.Context) {
	authorID, ok := paramID(c, "id")
	if !ok {
		return
	}
	page, pageSize := pageQuery(c)
	list, err := s.communitySvc.ListUserPosts(c.Request.Context(), c.GetUint64("user_id"), authorID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *CommunityHandler) GetPost(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	post, err := s.communitySvc.GetPost(c.Request.Context(), c.GetUint64("user_id"), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *CommunityHandler) UpdatePost(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePostDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	post, err := s.communitySvc.UpdatePost(c.Request.Context(), c.GetUint64("user_id"), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *CommunityHandler) DeletePost(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.communitySvc.DeletePost(c.Request.Context(), c.GetUint64("user_id"), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *CommunityHandler) PinPost(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.PinPostDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	err := s.communitySvc.PinPost(c.Request.Context(), c.GetUint64("user_id"), c.GetStringSlice("roles"), id, req.Pinned)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *CommunityHandler) SearchPosts(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	page, pageSize := pageQuery(c)
	list, err := s.communitySvc.SearchPosts(c.Request.Context(), c.GetUint64("user_id"), keyword, c.Query("channel"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}
