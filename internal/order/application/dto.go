package application

import (
	"github.com/shopspring/decimal"
	cart "github.com/wyfcoding/nexoshop/internal/cart/domain"
	"github.com/wyfcoding/nexoshop/internal/order/domain"
)

// 下单渠道
const (
	ChannelStorefront = "storefront"
	ChannelAdmin      = "admin"
)

// DeliveryData 收货信息；后台结账时整体存入会话
type DeliveryData struct {
	FirstName      string `json:"first_name" form:"first_name" validate:"required,max=50"`
	LastName       string `json:"last_name" form:"last_name" validate:"required,max=50"`
	Email          string `json:"email" form:"email" validate:"required,email"`
	Address        string `json:"address" form:"address" validate:"max=250"`
	PostalCode     string `json:"postal_code" form:"postal_code" validate:"max=20"`
	City           string `json:"city" form:"city" validate:"max=100"`
	Phone          string `json:"phone" form:"phone" validate:"max=30"`
	ShippingMethod string `json:"shipping_method" form:"shipping_method"`
	PaymentMethod  string `json:"payment_method,omitempty" form:"payment_method"`
}

// HasAddress 地址三项是否齐全
func (d DeliveryData) HasAddress() bool {
	return d.Address != "" && d.City != "" && d.PostalCode != ""
}

// Quote 结账报价
type Quote struct {
	Lines                 []cart.ResolvedLine `json:"lines"`
	Subtotal              decimal.Decimal     `json:"subtotal"`
	ShippingMethod        string              `json:"shipping_method"`
	ShippingMethodName    string              `json:"shipping_method_name"`
	ShippingCost          decimal.Decimal     `json:"shipping_cost"`
	Total                 decimal.Decimal     `json:"total"`
	FreeShippingThreshold decimal.Decimal     `json:"free_shipping_threshold"`
	Choices               []domain.Choice     `json:"shipping_choices"`
	Delivery              *DeliveryData       `json:"delivery,omitempty"`
}

// placement 一次下单所需的全部输入
type placement struct {
	SessionID  string
	CustomerID *uint
	Channel    string
	Delivery   DeliveryData
	Status     domain.OrderStatus
	Paid       bool
}

// OrderList 后台订单列表
type OrderList struct {
	Orders         []*domain.Order      `json:"orders"`
	SelectedStatus string               `json:"selected_status,omitempty"`
	Statuses       []domain.OrderStatus `json:"statuses"`
}
