// Package response 统一 HTTP JSON 响应结构
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/nexoshop/pkg/logger"
)

// FlashSourceKey 会话中间件注入提示消息读取函数时使用的 gin key
const FlashSourceKey = "response.flash_source"

// Flash 一次性提示消息
type Flash struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// FlashSource 读取并清空当前会话中的提示消息
type FlashSource func() []Flash

// Body 响应体
type Body struct {
	Code      int     `json:"code"`
	Message   string  `json:"message"`
	Data      any     `json:"data,omitempty"`
	Details   string  `json:"details,omitempty"`
	Redirect  string  `json:"redirect,omitempty"`
	Messages  []Flash `json:"messages,omitempty"`
	RequestID string  `json:"request_id,omitempty"`
}

// Success 返回 200 成功响应
func Success(c *gin.Context, data any) {
	write(c, http.StatusOK, Body{Code: 0, Message: "success", Data: data})
}

// Created 返回 201 响应
func Created(c *gin.Context, data any) {
	write(c, http.StatusCreated, Body{Code: 0, Message: "created", Data: data})
}

// ErrorWithStatus 返回指定状态码的错误响应
func ErrorWithStatus(c *gin.Context, status int, message, details string) {
	write(c, status, Body{Code: status, Message: message, Details: details})
}

// NotFound 返回 404
func NotFound(c *gin.Context, message string) {
	ErrorWithStatus(c, http.StatusNotFound, message, "")
}

// BadRequest 返回 400
func BadRequest(c *gin.Context, message string) {
	ErrorWithStatus(c, http.StatusBadRequest, message, "")
}

// InternalError 返回 500，不向客户端暴露错误细节
func InternalError(c *gin.Context) {
	ErrorWithStatus(c, http.StatusInternalServerError, "internal server error", "")
}

// Unauthorized 返回 401 并给出登录地址
func Unauthorized(c *gin.Context, loginURL string) {
	write(c, http.StatusUnauthorized, Body{Code: http.StatusUnauthorized, Message: "login required", Redirect: loginURL})
}

// Redirect 返回 303 并给出跳转地址，data 可携带附加内容
func Redirect(c *gin.Context, location string, data any) {
	c.Header("Location", location)
	write(c, http.StatusSeeOther, Body{Code: 0, Message: "redirect", Redirect: location, Data: data})
}

func write(c *gin.Context, status int, body Body) {
	body.RequestID = logger.RequestID(c.Request.Context())
	if v, ok := c.Get(FlashSourceKey); ok {
		if src, ok := v.(FlashSource); ok {
			body.Messages = src()
		}
	}
	c.AbortWithStatusJSON(status, body)
}
