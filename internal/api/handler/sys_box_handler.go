package handler

import (
	"IdeaVault/internal/pkg/mongo"
	"IdeaVault/internal/pkg/response"
	"IdeaVault/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type SysBoxHandler struct {
	sysBoxService service.SysBoxService
}

func NewSysBoxHandler(s service.SysBoxService) *SysBoxHandler {
	return &SysBoxHandler{sysBoxService: s}
}

// ListNotifications ?unread=true 只看未读，?type= 按通知类型过滤
func (h *SysBoxHandler) ListNotifications(c *gin.Context) {
	page, pageSize := pageQuery(c)
	unread, ok := optionalBool(c, "unread")
	if !ok {
		return
	}
	filter := mongo.NotificationFilter{UnreadOnly: unread != nil && *unread}
	if raw := c.Query("type"); raw != "" {
		t, err := strconv.ParseInt(raw, 10, 8)
		if err != nil || t <= 0 {
			response.Error(c, service.ErrParamInvalid)
			return
		}
		filter.Type = int8(t)
	}

	list, err := h.sysBoxService.ListNotifications(c.Request.Context(), c.GetUint64("user_id"), filter, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (h *SysBoxHandler) UnreadCount(c *gin.Context) {
	unread, err := h.sysBoxService.UnreadCount(c.Request.Context(), c.GetUint64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, unread)
}

func (h *SysBoxHandler) MarkRead(c *gin.Context) {
	err := h.sysBoxService.MarkRead(c.Request.Context(), c.GetUint64("user_id"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *SysBoxHandler) MarkAllRead(c *gin.Context) {
	res, err := h.sysBoxService.MarkAllRead(c.Request.Context(), c.GetUint64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (h *SysBoxHandler) DeleteNotification(c *gin.Context) {
	err := h.sysBoxService.DeleteNotification(c.Request.Context(), c.GetUint64("user_id"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
