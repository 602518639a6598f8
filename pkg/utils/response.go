package utils

import (
	"github.com/gin-gonic/gin"

	"tms-server/pkg/errors"
)

// Response 统一响应结构
// 成功: {"success": true, "data": ...}
// 失败: {"success": false, "message": "..."}
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMessage 带消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(200, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created 创建成功响应（201）
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessRaw 自定义字段的成功响应（认证接口返回 user/accessToken 等顶层字段）
func SuccessRaw(c *gin.Context, body gin.H) {
	body["success"] = true
	c.JSON(200, body)
}

// Error 错误响应，AppError的错误码即HTTP状态码
func Error(c *gin.Context, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		c.JSON(appErr.Code, Response{
			Success: false,
			Message: appErr.Message,
		})
		return
	}

	// 未知错误统一返回500，真实原因只记录在服务端日志
	c.JSON(500, Response{
		Success: false,
		Message: errors.ErrInternalError.Message,
	})
}

// ErrorWithCode 自定义错误响应
func ErrorWithCode(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Success: false,
		Message: message,
	})
}
