package handler

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/pkg/response"
	"IdeaVault/internal/service"

	"github.com/gin-gonic/gin"
)

type IdeaHandler struct {
	ideaSvc service.IdeaService
}

func NewIdeaHandler(ideaSvc service.IdeaService) *IdeaHandler {
	return &IdeaHandler{ideaSvc: ideaSvc}
}

func (s *IdeaHandler) CreateIdea(c *gin.Context) {
	var req dto.CreateIdeaDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	res, err := s.ideaSvc.CreateIdea(c.Request.Context(), c.GetUint64("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// ListIdeas 支持 folder_id 与 drafts 过滤
func (s *IdeaHandler) ListIdeas(c *gin.Context) {
	folderID, ok := optionalUint64(c, "folder_id")
	if !ok {
		return
	}
	drafts, ok := optionalBool(c, "drafts")
	if !ok {
		return
	}
	page, pageSize := pageQuery(c)
	res, err := s.ideaSvc.ListIdeas(c.Request.Context(), c.GetUint64("user_id"), folderID, drafts, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *IdeaHandler) GetIdea(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	idea, err := s.ideaSvc.GetIdea(c.Request.Context(), c.GetUint64("user_id"), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, idea)
}

func (s *IdeaHandler) UpdateIdea(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateIdeaDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	idea, err := s.ideaSvc.UpdateIdea(c.Request.Context(), c.GetUint64("user_id"), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, idea)
}

// DeleteIdea 移入回收站
func (s *IdeaHandler) DeleteIdea(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.ideaSvc.DeleteIdea(c.Request.Context(), c.GetUint64("user_id"), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *IdeaHandler) RestoreIdea(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	idea, err := s.ideaSvc.RestoreIdea(c.Request.Context(), c.GetUint64("user_id"), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, idea)
}

func (s *IdeaHandler) PurgeIdea(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.ideaSvc.PurgeIdea(c.Request.Context(), c.GetUint64("user_id"), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *IdeaHandler) ListTrash(c *gin.Context) {
	page, pageSize := pageQuery(c)
	list, err := s.ideaSvc.ListTrash(c.Request.Context(), c.GetUint64("user_id"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *IdeaHandler) ShareIdea(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ShareIdeaDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrChannelRequired)
		return
	}
	post, err := s.ideaSvc.ShareIdea(c.Request.Context(), c.GetUint64("user_id"), id, req.Channel)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *IdeaHandler) ImportIdea(c *gin.Context) {
	var req dto.ImportIdeaDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	idea, err := s.ideaSvc.ImportIdeaFromURL(c.Request.Context(), c.GetUint64("user_id"), req.URL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, idea)
}

func (s *IdeaHandler) CreateFolder(c *gin.Context) {
	var req dto.FolderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	folder, err := s.ideaSvc.CreateFolder(c.Request.Context(), c.GetUint64("user_id"), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, folder)
}

func (s *IdeaHandler) ListFolders(c *gin.Context) {
	list, err := s.ideaSvc.ListFolders(c.Request.Context(), c.GetUint64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *IdeaHandler) RenameFolder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.FolderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := s.ideaSvc.RenameFolder(c.Request.Context(), c.GetUint64("user_id"), id, req.Name); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *IdeaHandler) DeleteFolder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.ideaSvc.DeleteFolder(c.Request.Context(), c.GetUint64("user_id"), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
