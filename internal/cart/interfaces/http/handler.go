package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/nexoshop/internal/cart/application"
	"github.com/wyfcoding/nexoshop/internal/cart/domain"
	catalog "github.com/wyfcoding/nexoshop/internal/catalog/domain"
	"github.com/wyfcoding/nexoshop/internal/session"
	"github.com/wyfcoding/nexoshop/pkg/logger"
	"github.com/wyfcoding/nexoshop/pkg/response"
	"github.com/wyfcoding/nexoshop/pkg/utils"
)

// CartHandler 购物车 HTTP 处理器
type CartHandler struct {
	cartService *application.CartService
}

// NewCartHandler 创建 HTTP 处理器
func NewCartHandler(cartService *application.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// RegisterRoutes 注册路由
func (h *CartHandler) RegisterRoutes(router gin.IRouter) {
	cart := router.Group("/cart")
	{
		cart.GET("", h.Detail)
		cart.POST("/add/:product_id", h.Add)
		cart.POST("/update/:product_id", h.Update)
		cart.POST("/remove/:product_id", h.Remove)
		cart.POST("/clear", h.Clear)
	}
}

// AddRequest 加入购物车表单
type AddRequest struct {
	Quantity int    `json:"quantity" form:"quantity"`
	Override bool   `json:"override" form:"override"`
	Size     string `json:"size" form:"size"`
}

func (h *CartHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		session.Flash(c, session.FlashError, err.Error())
		response.BadRequest(c, err.Error())
	default:
		logger.Error(c.Request.Context(), "cart request failed", "path", c.FullPath(), "error", err)
		response.InternalError(c)
	}
}

func sessionID(c *gin.Context) string {
	if s := session.FromContext(c); s != nil {
		return s.ID()
	}
	return ""
}

// Detail 购物车详情
func (h *CartHandler) Detail(c *gin.Context) {
	view, err := h.cartService.Detail(c.Request.Context(), sessionID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view)
}

// Add 加入商品；override 为 true 时覆盖数量
func (h *CartHandler) Add(c *gin.Context) {
	req := AddRequest{Quantity: 1}
	if err := c.ShouldBind(&req); err != nil {
		session.Flash(c, session.FlashError, err.Error())
		response.BadRequest(c, err.Error())
		return
	}
	productID := utils.ParseUint(c.Param("product_id"))
	var (
		view *application.CartView
		err  error
	)
	if req.Override {
		view, err = h.cartService.UpdateQuantity(c.Request.Context(), sessionID(c), productID, req.Quantity, req.Size)
	} else {
		view, err = h.cartService.Add(c.Request.Context(), sessionID(c), productID, req.Quantity, req.Size)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	session.Flash(c, session.FlashSuccess, "Producto añadido al carrito.")
	response.Success(c, view)
}

// Update 修改数量，数量小于 1 时按 1 处理
func (h *CartHandler) Update(c *gin.Context) {
	var req AddRequest
	if err := c.ShouldBind(&req); err != nil {
		session.Flash(c, session.FlashError, err.Error())
		response.BadRequest(c, err.Error())
		return
	}
	view, err := h.cartService.UpdateQuantity(c.Request.Context(), sessionID(c), utils.ParseUint(c.Param("product_id")), req.Quantity, req.Size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view)
}

// Remove 移除商品
func (h *CartHandler) Remove(c *gin.Context) {
	var req AddRequest
	_ = c.ShouldBind(&req)
	view, err := h.cartService.Remove(c.Request.Context(), sessionID(c), utils.ParseUint(c.Param("product_id")), req.Size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, view)
}

// Clear 清空购物车
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), sessionID(c)); err != nil {
		h.fail(c, err)
		return
	}
	session.Flash(c, session.FlashInfo, "Carrito vaciado.")
	response.Redirect(c, "/cart", nil)
}
