package handler

import (
	"IdeaVault/internal/pkg/response"
	"IdeaVault/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

// pageQuery 读取 page / page_size，非法值交给 service 层归一化
func pageQuery(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}

// paramID 解析路径参数中的 ID，失败时直接写回 400
func paramID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return 0, false
	}
	return id, true
}

// optionalUint64 解析可选的查询参数
func optionalUint64(c *gin.Context, name string) (*uint64, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return nil, false
	}
	return &v, true
}

func optionalBool(c *gin.Context, name string) (*bool, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return nil, false
	}
	return &v, true
}
