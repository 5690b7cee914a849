package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/nexoshop/internal/admin/application"
	"github.com/wyfcoding/nexoshop/internal/session"
	userapp "github.com/wyfcoding/nexoshop/internal/user/application"
	user "github.com/wyfcoding/nexoshop/internal/user/domain"
	"github.com/wyfcoding/nexoshop/pkg/logger"
	"github.com/wyfcoding/nexoshop/pkg/response"
	"github.com/wyfcoding/nexoshop/pkg/utils"
)

// AdminHandler 后台顾客管理与销售看板
type AdminHandler struct {
	users     *userapp.UserService
	dashboard *application.DashboardService
}

// NewAdminHandler 创建 HTTP 处理器
func NewAdminHandler(users *userapp.UserService, dashboard *application.DashboardService) *AdminHandler {
	return &AdminHandler{users: users, dashboard: dashboard}
}

// RegisterAdminRoutes 注册后台路由
func (h *AdminHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/sales", h.Sales)

	customers := admin.Group("/customers")
	{
		customers.GET("", h.ListCustomers)
		customers.POST("", h.CreateCustomer)
		customers.GET("/:id", h.GetCustomer)
		customers.PUT("/:id", h.UpdateCustomer)
		customers.POST("/:id", h.UpdateCustomer)
		customers.DELETE("/:id", h.DeleteCustomer)
		customers.POST("/:id/delete", h.DeleteCustomer)
	}
}

func (h *AdminHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, user.ErrInvalidUser),
		errors.Is(err, user.ErrInvalidRole):
		session.Flash(c, session.FlashError, err.Error())
		response.BadRequest(c, err.Error())
	default:
		logger.Error(c.Request.Context(), "admin request failed", "path", c.FullPath(), "error", err)
		response.InternalError(c)
	}
}

// Sales 销售看板
func (h *AdminHandler) Sales(c *gin.Context) {
	d, err := h.dashboard.Sales(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, d)
}

// CustomerRequest 顾客账户表单；编辑时密码留空表示不修改
type CustomerRequest struct {
	Email     string `json:"email" form:"email" binding:"required,email"`
	Password  string `json:"password" form:"password"`
	Role      string `json:"role" form:"role" binding:"omitempty,oneof=customer admin"`
	FirstName string `json:"first_name" form:"first_name" binding:"max=50"`
	LastName  string `json:"last_name" form:"last_name" binding:"max=50"`
	IsActive  bool   `json:"is_active" form:"is_active"`
}

func (r CustomerRequest) command() userapp.CustomerCommand {
	return userapp.CustomerCommand{
		Email:     r.Email,
		Password:  r.Password,
		Role:      r.Role,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		IsActive:  r.IsActive,
	}
}

func bindCustomer(c *gin.Context) (CustomerRequest, bool) {
	var req CustomerRequest
	if err := c.ShouldBind(&req); err != nil {
		session.Flash(c, session.FlashError, err.Error())
		response.BadRequest(c, err.Error())
		return req, false
	}
	return req, true
}

// ListCustomers 顾客列表，支持分页
func (h *AdminHandler) ListCustomers(c *gin.Context) {
	list, err := h.users.ListCustomers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	page := int(utils.ParseUint(c.DefaultQuery("page", "1")))
	size := int(utils.ParseUint(c.DefaultQuery("page_size", "20")))
	items, pagination := utils.Paginate(list, page, size)
	response.Success(c, gin.H{"customers": items, "pagination": pagination})
}

// CreateCustomer 新建顾客
func (h *AdminHandler) CreateCustomer(c *gin.Context) {
	req, ok := bindCustomer(c)
	if !ok {
		return
	}
	u, err := h.users.CreateCustomer(c.Request.Context(), req.command())
	if err != nil {
		h.fail(c, err)
		return
	}
	session.Flash(c, session.FlashSuccess, `Cliente "`+u.Email+`" creado exitosamente.`)
	response.Created(c, u)
}

// GetCustomer 顾客详情
func (h *AdminHandler) GetCustomer(c *gin.Context) {
	u, err := h.users.GetCustomer(c.Request.Context(), utils.ParseUint(c.Param("id")))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, u)
}

// UpdateCustomer 编辑顾客
func (h *AdminHandler) UpdateCustomer(c *gin.Context) {
	req, ok := bindCustomer(c)
	if !ok {
		return
	}
	u, err := h.users.UpdateCustomer(c.Request.Context(), utils.ParseUint(c.Param("id")), req.command())
	if err != nil {
		h.fail(c, err)
		return
	}
	session.Flash(c, session.FlashSuccess, `Cliente "`+u.Email+`" actualizado exitosamente.`)
	response.Success(c, u)
}

// DeleteCustomer 删除顾客
func (h *AdminHandler) DeleteCustomer(c *gin.Context) {
	if err := h.users.DeleteCustomer(c.Request.Context(), utils.ParseUint(c.Param("id"))); err != nil {
		h.fail(c, err)
		return
	}
	session.Flash(c, session.FlashSuccess, "Cliente eliminado exitosamente.")
	response.Redirect(c, "/accounts/admin-lite/customers", nil)
}
