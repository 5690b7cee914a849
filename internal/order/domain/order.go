package domain

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 订单状态
type OrderStatus = string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// Statuses 后台可选的全部状态，按流程顺序
var Statuses = []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// 支付方式
const (
	PaymentCOD     = "cod"
	PaymentGateway = "gateway"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrAddressRequired = errors.New("address, city and postal code are required for home delivery")
	ErrAlreadyPaid     = errors.New("order already paid")
	ErrInvalidPayment  = errors.New("invalid payment method")
	ErrInvalidShipping = errors.New("invalid shipping method")
	ErrInvalidDelivery = errors.New("invalid delivery data")
)

// ValidStatus 状态是否合法
func ValidStatus(s string) bool {
	return slices.Contains(Statuses, s)
}

// Order 订单
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CustomerID      *uint           `gorm:"column:customer_id;index" json:"customer_id,omitempty"`
	OrderNumber     string          `gorm:"column:order_number;type:varchar(40);index" json:"order_number"`
	Status          OrderStatus     `gorm:"column:status;type:varchar(30);not null;default:pending" json:"status"`
	Subtotal        decimal.Decimal `gorm:"column:subtotal;type:decimal(10,2)" json:"subtotal"`
	Taxes           decimal.Decimal `gorm:"column:taxes;type:decimal(10,2)" json:"taxes"`
	ShippingCost    decimal.Decimal `gorm:"column:shipping_cost;type:decimal(10,2)" json:"shipping_cost"`
	Discount        decimal.Decimal `gorm:"column:discount;type:decimal(10,2)" json:"discount"`
	Total           decimal.Decimal `gorm:"column:total;type:decimal(10,2)" json:"total"`
	Paid            bool            `gorm:"column:paid;not null;default:false" json:"paid"`
	ShippingMethod  string          `gorm:"column:shipping_method;type:varchar(30)" json:"shipping_method"`
	PaymentMethod   string          `gorm:"column:payment_method;type:varchar(30)" json:"payment_method"`
	FirstName       string          `gorm:"column:first_name;type:varchar(50)" json:"first_name"`
	LastName        string          `gorm:"column:last_name;type:varchar(50)" json:"last_name"`
	Email           string          `gorm:"column:email;type:varchar(254)" json:"email"`
	Address         string          `gorm:"column:address;type:varchar(250)" json:"address"`
	PostalCode      string          `gorm:"column:postal_code;type:varchar(20)" json:"postal_code"`
	City            string          `gorm:"column:city;type:varchar(100)" json:"city"`
	Phone           string          `gorm:"column:phone;type:varchar(30)" json:"phone"`
	ShippingAddress string          `gorm:"column:shipping_address;type:varchar(250)" json:"shipping_address"`
	TransactionID   string          `gorm:"column:transaction_id;type:varchar(150)" json:"transaction_id,omitempty"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt       time.Time       `json:"created"`
	UpdatedAt       time.Time       `json:"updated"`
}

func (Order) TableName() string { return "orders" }

// OrderNumberFor 根据订单 ID 生成订单号
func OrderNumberFor(id uint) string {
	return fmt.Sprintf("MOCK-%04d", id)
}

// RecalculateTotal total = subtotal + taxes + shipping - discount，最低为 0
func (o *Order) RecalculateTotal() {
	total := o.Subtotal.Add(o.Taxes).Add(o.ShippingCost).Sub(o.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	o.Total = total
}

// ItemsTotal 明细金额合计
func (o *Order) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for i := range o.Items {
		sum = sum.Add(o.Items[i].Cost())
	}
	return sum
}

// Revenue 订单营收：总额为 0 时按明细合计
func (o *Order) Revenue() decimal.Decimal {
	if !o.Total.IsZero() {
		return o.Total
	}
	return o.ItemsTotal()
}

// IsOpen 待处理（pending 或 processing）
func (o *Order) IsOpen() bool {
	return o.Status == StatusPending || o.Status == StatusProcessing
}

// FullName 收货人姓名
func (o *Order) FullName() string {
	return o.FirstName + " " + o.LastName
}

// OrderItem 订单明细
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"column:order_id;index;not null" json:"order_id"`
	ProductID uint            `gorm:"column:product_id;index;not null" json:"product_id"`
	Size      string          `gorm:"column:size;type:varchar(20)" json:"size,omitempty"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(10,2)" json:"price"`
	Quantity  int             `gorm:"column:quantity;not null;default:1" json:"quantity"`
}

func (OrderItem) TableName() string { return "order_items" }

// Cost 明细金额
func (i *OrderItem) Cost() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderFilter 订单查询条件
type OrderFilter struct {
	Status     string
	CustomerID uint
}

// OrderRepository 订单仓储，读取时附带明细；未找到时返回 nil, nil
type OrderRepository interface {
	// Save 保存订单及明细，ID 为 0 时新建并回填
	Save(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id uint) (*Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*Order, error)
	// Delete 先删除明细再删除订单
	Delete(ctx context.Context, id uint) error
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
