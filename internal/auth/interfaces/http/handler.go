package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/nexoshop/internal/auth/application"
	"github.com/wyfcoding/nexoshop/internal/session"
	userapp "github.com/wyfcoding/nexoshop/internal/user/application"
	user "github.com/wyfcoding/nexoshop/internal/user/domain"
	"github.com/wyfcoding/nexoshop/pkg/logger"
	"github.com/wyfcoding/nexoshop/pkg/response"
)

// LoginPath 登录路由
const LoginPath = "/accounts/login"

// AuthHandler 登录注册 HTTP 处理器
type AuthHandler struct {
	authService *application.AuthService
}

// NewAuthHandler 创建 HTTP 处理器
func NewAuthHandler(authService *application.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes 注册路由
func (h *AuthHandler) RegisterRoutes(router gin.IRouter) {
	accounts := router.Group("/accounts")
	{
		accounts.POST("/login", h.Login)
		accounts.POST("/register", h.Register)
		accounts.POST("/logout", h.Logout)
		accounts.GET("/me", h.Me)

		debug := accounts.Group("/debug")
		debug.GET("/login-admin", h.DebugLoginAdmin)
		debug.GET("/logout", h.DebugLogout)
	}
}

// RequireAdmin 非管理员会话重定向到登录页，JSON 客户端返回 401
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := session.FromContext(c)
		if s != nil && s.IsAdmin() {
			c.Next()
			return
		}
		login := LoginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		if wantsJSON(c) {
			response.Unauthorized(c, login)
			return
		}
		c.Redirect(http.StatusFound, login)
		c.Abort()
	}
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json") ||
		strings.Contains(c.ContentType(), "application/json")
}

// LoginRequest 登录表单
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// RegisterRequest 注册表单
type RegisterRequest struct {
	Email      string `json:"email" form:"email" binding:"required,email"`
	Password   string `json:"password" form:"password" binding:"required,min=8"`
	FirstName  string `json:"first_name" form:"first_name" binding:"max=50"`
	LastName   string `json:"last_name" form:"last_name" binding:"max=50"`
	Phone      string `json:"phone" form:"phone"`
	Address    string `json:"address" form:"address"`
	City       string `json:"city" form:"city"`
	PostalCode string `json:"postal_code" form:"postal_code"`
}

func badRequest(c *gin.Context, msg string) {
	session.Flash(c, session.FlashError, msg)
	response.BadRequest(c, msg)
}

// Login 登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	u, err := h.authService.Login(c.Request.Context(), session.FromContext(c), req.Email, req.Password)
	switch {
	case errors.Is(err, user.ErrInvalidCredentials), errors.Is(err, user.ErrInactiveUser):
		badRequest(c, err.Error())
		return
	case err != nil:
		logger.Error(c.Request.Context(), "login failed", "error", err)
		response.InternalError(c)
		return
	}
	session.Flash(c, session.FlashSuccess, "Bienvenido, "+u.Email+".")
	response.Success(c, u)
}

// Register 注册并登录
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	u, err := h.authService.Register(c.Request.Context(), session.FromContext(c), userapp.RegisterCommand{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
	})
	switch {
	case errors.Is(err, user.ErrEmailTaken), errors.Is(err, user.ErrInvalidUser):
		badRequest(c, err.Error())
		return
	case err != nil:
		logger.Error(c.Request.Context(), "register failed", "error", err)
		response.InternalError(c)
		return
	}
	session.Flash(c, session.FlashSuccess, "Cuenta creada correctamente.")
	response.Created(c, u)
}

// Logout 退出登录
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), session.FromContext(c)); err != nil {
		logger.Error(c.Request.Context(), "logout failed", "error", err)
		response.InternalError(c)
		return
	}
	response.Redirect(c, "/", nil)
}

// Me 当前会话身份
func (h *AuthHandler) Me(c *gin.Context) {
	s := session.FromContext(c)
	response.Success(c, gin.H{"user_id": s.UserID(), "role": s.Role(), "is_admin": s.IsAdmin()})
}

// DebugLoginAdmin 调试：以管理员登录
func (h *AuthHandler) DebugLoginAdmin(c *gin.Context) {
	if err := h.authService.DebugLoginAdmin(c.Request.Context(), session.FromContext(c)); err != nil {
		h.debugFail(c, err)
		return
	}
	session.Flash(c, session.FlashInfo, "Sesión de administrador (debug) iniciada.")
	response.Redirect(c, "/accounts/admin-lite/products", nil)
}

// DebugLogout 调试：退出
func (h *AuthHandler) DebugLogout(c *gin.Context) {
	if err := h.authService.DebugLogout(c.Request.Context(), session.FromContext(c)); err != nil {
		h.debugFail(c, err)
		return
	}
	response.Redirect(c, "/", nil)
}

func (h *AuthHandler) debugFail(c *gin.Context, err error) {
	if errors.Is(err, application.ErrDebugDisabled) {
		response.NotFound(c, "not found")
		return
	}
	logger.Error(c.Request.Context(), "debug auth failed", "error", err)
	response.InternalError(c)
}
