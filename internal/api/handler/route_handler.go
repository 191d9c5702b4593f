package handler

import (
	"IdeaVault/internal/pkg/response"
	"IdeaVault/internal/service"

	"github.com/gin-gonic/gin"
)

type RouteHandler struct {
	routeSvc service.RouteService
}

func NewRouteHandler(routeSvc service.RouteService) *RouteHandler {
	return &RouteHandler{routeSvc: routeSvc}
}

// Resolve 客户端导航前询问目标路径是否可达
func (s *RouteHandler) Resolve(c *gin.Context) {
	p := c.Query("path")
	if p == "" {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	res, err := s.routeSvc.ResolveRoute(c.Request.Context(), p, c.GetUint64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
