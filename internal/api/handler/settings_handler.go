package handler

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/pkg/response"
	"IdeaVault/internal/pkg/util"
	"IdeaVault/internal/service"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsSvc service.SettingsService
}

func NewSettingsHandler(settingsSvc service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsSvc: settingsSvc}
}

func (s *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := s.settingsSvc.GetSettings(c.Request.Context(), c.GetUint64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, settings)
}

func (s *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}
	settings, err := s.settingsSvc.UpdateSettings(c.Request.Context(), c.GetUint64("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, settings)
}
