package handler

import (
	"IdeaVault/internal/pkg/response"
	"IdeaVault/internal/service"

	"github.com/gin-gonic/gin"
)

type SeedHandler struct {
	seedSvc service.SeedService
}

func NewSeedHandler(seedSvc service.SeedService) *SeedHandler {
	return &SeedHandler{seedSvc: seedSvc}
}

func (s *SeedHandler) PopulateChannels(c *gin.Context) {
	res, err := s.seedSvc.PopulateChannels(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
