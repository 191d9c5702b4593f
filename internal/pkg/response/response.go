package response

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/service"
	stdjson "encoding/json"
	"errors"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	Ok                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	PaymentRequired     = 402
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

// Success 成功返回封装
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.Response{
		Code:    Ok,
		Message: "success",
		Data:    data,
	})
}

// Fail 失败返回封装
func Fail(c *gin.Context, businessCode int, message string) {
	FailWithData(c, businessCode, message, nil)
}

// FailWithData 失败并附带数据，例如需要跳转的路由
func FailWithData(c *gin.Context, businessCode int, message string, data interface{}) {
	c.JSON(http.StatusOK, dto.Response{
		Code:    businessCode,
		Message: message,
		Data:    data,
	})
}

// Error 处理错误
func Error(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		Fail(c, BadRequest, service.ErrParamInvalid.Error())
		return
	}

	var unmarshalTypeError *json.UnmarshalTypeError
	var stdTypeError *stdjson.UnmarshalTypeError
	if errors.As(err, &unmarshalTypeError) || errors.As(err, &stdTypeError) {
		Fail(c, BadRequest, "invalid json")
		return
	}

	for known, code := range service.ErrorMap {
		if errors.Is(err, known) {
			Fail(c, code, known.Error())
			return
		}
	}

	log.ErrorContext(c.Request.Context(), "unexpected error", "err", err)
	Fail(c, InternalServerError, service.ErrUnexpected.Error())
}
