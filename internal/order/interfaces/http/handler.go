package http

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/wyfcoding/nexoshop/internal/order/application"
	"github.com/wyfcoding/nexoshop/internal/order/domain"
	payment "github.com/wyfcoding/nexoshop/internal/payment/domain"
	"github.com/wyfcoding/nexoshop/internal/session"
	"github.com/wyfcoding/nexoshop/pkg/logger"
	"github.com/wyfcoding/nexoshop/pkg/response"
	"github.com/wyfcoding/nexoshop/pkg/utils"
)

// 后台结账路由
const (
	adminDeliveryPath = "/accounts/admin-lite/checkout/delivery"
	adminPaymentPath  = "/accounts/admin-lite/checkout/payment"
)

// RegisterValidators 注册 order_status 校验规则
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	return v.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		return domain.ValidStatus(fl.Field().String())
	})
}

// CustomerResolver 会话用户对应的顾客 ID
type CustomerResolver interface {
	CustomerID(ctx context.Context, userID uint) (*uint, error)
}

// OrderHandler 订单 HTTP 处理器
type OrderHandler struct {
	checkout  *application.CheckoutService
	admin     *application.OrderAdminService
	customers CustomerResolver
}

// NewOrderHandler 创建 HTTP 处理器
func NewOrderHandler(checkout *application.CheckoutService, admin *application.OrderAdminService, customers CustomerResolver) *OrderHandler {
	return &OrderHandler{checkout: checkout, admin: admin, customers: customers}
}

// RegisterRoutes 注册前台路由
func (h *OrderHandler) RegisterRoutes(router gin.IRouter) {
	orders := router.Group("/orders")
	{
		orders.GET("/create", h.Quote)
		orders.POST("/create", h.Create)
		orders.GET("/payment/:id", h.PaymentPage)
		orders.POST("/payment/:id", h.Pay)
		orders.GET("/created/:id", h.Created)
	}
}

// RegisterAdminRoutes 注册后台路由
func (h *OrderHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.GET("/checkout/delivery", h.AdminDeliveryPage)
	admin.POST("/checkout/delivery", h.AdminDelivery)
	admin.GET("/checkout/payment", h.AdminPaymentPage)
	admin.POST("/checkout/payment", h.AdminPayment)

	admin.GET("/orders", h.AdminList)
	admin.GET("/orders/:id", h.AdminDetail)
	admin.DELETE("/orders/:id", h.AdminDelete)
	admin.POST("/orders/:id/delete", h.AdminDelete)
	admin.POST("/orders/:id/status", h.AdminUpdateStatus)
}

func (h *OrderHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrAddressRequired),
		errors.Is(err, domain.ErrInvalidPayment),
		errors.Is(err, domain.ErrInvalidShipping),
		errors.Is(err, domain.ErrInvalidDelivery),
		errors.Is(err, domain.ErrAlreadyPaid),
		errors.Is(err, payment.ErrPaymentDeclined),
		errors.Is(err, payment.ErrMissingNonce):
		session.Flash(c, session.FlashError, err.Error())
		response.BadRequest(c, err.Error())
	default:
		logger.Error(c.Request.Context(), "order request failed", "path", c.FullPath(), "error", err)
		response.InternalError(c)
	}
}

func sessionID(c *gin.Context) string {
	if s := session.FromContext(c); s != nil {
		return s.ID()
	}
	return ""
}

func (h *OrderHandler) order(c *gin.Context) (*domain.Order, bool) {
	id := utils.ParseUint(c.Param("id"))
	if id == 0 {
		response.NotFound(c, domain.ErrOrderNotFound.Error())
		return nil, false
	}
	o, err := h.checkout.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return o, true
}

// Quote 结账页：购物车与运费报价
func (h *OrderHandler) Quote(c *gin.Context) {
	q, err := h.checkout.Quote(c.Request.Context(), sessionID(c), c.Query("shipping_method"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, q)
}

// Create 提交订单
func (h *OrderHandler) Create(c *gin.Context) {
	var req application.DeliveryData
	if err := c.ShouldBind(&req); err != nil {
		session.Flash(c, session.FlashError, err.Error())
		response.BadRequest(c, err.Error())
		return
	}

	var customerID *uint
	if s := session.FromContext(c); s != nil && s.LoggedIn() {
		id, err := h.customers.CustomerID(c.Request.Context(), s.UserID())
		if err != nil {
			logger.Warn(c.Request.Context(), "resolve customer for checkout failed", "user_id", s.UserID(), "error", err)
		}
		customerID = id
	}

	o, err := h.checkout.Create(c.Request.Context(), sessionID(c), customerID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Redirect(c, "/orders/payment/"+strconv.FormatUint(uint64(o.ID), 10), o)
}

// PaymentPage 支付页
func (h *OrderHandler) PaymentPage(c *gin.Context) {
	if o, ok := h.order(c); ok {
		response.Success(c, o)
	}
}

// PaymentRequest 支付表单
type PaymentRequest struct {
	Nonce string `json:"payment_method_nonce" form:"payment_method_nonce"`
}

// Pay 提交支付
func (h *OrderHandler) Pay(c *gin.Context) {
	o, ok := h.order(c)
	if !ok {
		return
	}
	var req PaymentRequest
	if err := c.ShouldBind(&req); err != nil {
		session.Flash(c, session.FlashError, err.Error())
		response.BadRequest(c, err.Error())
		return
	}
	paid, err := h.checkout.Pay(c.Request.Context(), o.ID, strings.TrimSpace(req.Nonce))
	if err != nil {
		h.fail(c, err)
		return
	}
	session.Flash(c, session.FlashSuccess, "Pago realizado correctamente.")
	response.Redirect(c, "/orders/created/"+strconv.FormatUint(uint64(paid.ID), 10), paid)
}

// Created 下单完成页
func (h *OrderHandler) Created(c *gin.Context) {
	if o, ok := h.order(c); ok {
		response.Success(c, o)
	}
}

func (h *OrderHandler) delivery(c *gin.Context) (*application.DeliveryData, error) {
	s := session.FromContext(c)
	if s == nil {
		return nil, nil
	}
	var d application.DeliveryData
	found, err := s.Get(session.KeyAdminCheckout, &d)
	if err != nil || !found {
		return nil, err
	}
	return &d, nil
}

// AdminDeliveryPage 后台结账第一步：运费估算与已填写的收货信息
func (h *OrderHandler) AdminDeliveryPage(c *gin.Context) {
	q, err := h.checkout.Quote(c.Request.Context(), sessionID(c), domain.ShippingHome)
	if err != nil {
		h.fail(c, err)
		return
	}
	if q.Delivery, err = h.delivery(c); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, q)
}

// AdminDelivery 保存收货信息
func (h *OrderHandler) AdminDelivery(c *gin.Context) {
	var req application.DeliveryData
	if err := c.ShouldBind(&req); err != nil {
		session.Flash(c, session.FlashError, err.Error())
		response.BadRequest(c, err.Error())
		return
	}
	d, err := h.checkout.SaveDelivery(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := session.FromContext(c).Set(session.KeyAdminCheckout, d); err != nil {
		h.fail(c, err)
		return
	}
	response.Redirect(c, adminPaymentPath, d)
}

// AdminPaymentPage 后台结账第二步；没有收货信息时回到第一步
func (h *OrderHandler) AdminPaymentPage(c *gin.Context) {
	d, err := h.delivery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if d == nil {
		response.Redirect(c, adminDeliveryPath, nil)
		return
	}
	q, err := h.checkout.Quote(c.Request.Context(), sessionID(c), d.ShippingMethod)
	if err != nil {
		h.fail(c, err)
		return
	}
	q.Delivery = d
	response.Success(c, q)
}

// AdminPaymentRequest 后台支付方式
type AdminPaymentRequest struct {
	PaymentMethod string `json:"payment_method" form:"payment_method" binding:"required,oneof=cod gateway"`
}

// AdminPayment 生成订单并清理结账数据
func (h *OrderHandler) AdminPayment(c *gin.Context) {
	d, err := h.delivery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if d == nil {
		response.Redirect(c, adminDeliveryPath, nil)
		return
	}
	var req AdminPaymentRequest
	if err := c.ShouldBind(&req); err != nil {
		session.Flash(c, session.FlashError, err.Error())
		response.BadRequest(c, err.Error())
		return
	}

	o, err := h.checkout.AdminPlace(c.Request.Context(), sessionID(c), *d, req.PaymentMethod)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := session.FromContext(c).Delete(session.KeyAdminCheckout); err != nil {
		logger.Warn(c.Request.Context(), "clear admin checkout data failed", "error", err)
	}
	session.Flash(c, session.FlashSuccess, "Pedido "+o.OrderNumber+" creado.")
	response.Created(c, o)
}

// AdminList 订单列表，可按状态过滤
func (h *OrderHandler) AdminList(c *gin.Context) {
	list, err := h.admin.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, list)
}

// AdminDetail 订单详情
func (h *OrderHandler) AdminDetail(c *gin.Context) {
	o, err := h.admin.Detail(c.Request.Context(), utils.ParseUint(c.Param("id")))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, o)
}

// StatusRequest 状态更新表单；paid 出现且非假值时视为已支付
type StatusRequest struct {
	Status string  `json:"status" form:"status" binding:"omitempty,order_status"`
	Paid   *string `json:"paid" form:"paid"`
}

func parseFlag(v *string) *bool {
	if v == nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(*v)) {
	case "", "0", "false", "off", "no":
		return utils.Ptr(false)
	}
	return utils.Ptr(true)
}

// AdminUpdateStatus 更新订单状态
func (h *OrderHandler) AdminUpdateStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBind(&req); err != nil {
		msg := domain.ErrInvalidStatus.Error()
		session.Flash(c, session.FlashError, msg)
		response.BadRequest(c, msg)
		return
	}
	o, err := h.admin.UpdateStatus(c.Request.Context(), utils.ParseUint(c.Param("id")), req.Status, parseFlag(req.Paid))
	if err != nil {
		h.fail(c, err)
		return
	}
	session.Flash(c, session.FlashSuccess, `Estado del pedido actualizado a "`+o.Status+`".`)
	response.Success(c, o)
}

// AdminDelete 删除订单
func (h *OrderHandler) AdminDelete(c *gin.Context) {
	number, err := h.admin.Delete(c.Request.Context(), utils.ParseUint(c.Param("id")))
	if err != nil {
		h.fail(c, err)
		return
	}
	session.Flash(c, session.FlashSuccess, `Pedido "`+number+`" eliminado exitosamente.`)
	response.Redirect(c, "/accounts/admin-lite/orders", nil)
}
