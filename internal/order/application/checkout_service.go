package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	cartapp "github.com/wyfcoding/nexoshop/internal/cart/application"
	notification "github.com/wyfcoding/nexoshop/internal/notification/application"
	"github.com/wyfcoding/nexoshop/internal/order/domain"
	payment "github.com/wyfcoding/nexoshop/internal/payment/domain"
	"github.com/wyfcoding/nexoshop/pkg/logger"
	"github.com/wyfcoding/nexoshop/pkg/metrics"
)

// CartProvider 结账所需的购物车操作
type CartProvider interface {
	Detail(ctx context.Context, sid string) (*cartapp.CartView, error)
	Clear(ctx context.Context, sid string) error
	DiscardSaved(ctx context.Context, customerID uint) error
}

// StockKeeper 库存扣减
type StockKeeper interface {
	DecreaseStock(ctx context.Context, productID uint, qty int) error
}

// Notifier 订单确认通知
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, data notification.OrderConfirmation) bool
}

// CheckoutService 前台结账、支付与后台两步结账
type CheckoutService struct {
	orders    domain.OrderRepository
	carts     CartProvider
	stock     StockKeeper
	shipping  domain.ShippingProvider
	gateway   payment.Gateway
	notifier  Notifier
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	validate  *validator.Validate
}

func NewCheckoutService(
	orders domain.OrderRepository,
	carts CartProvider,
	stock StockKeeper,
	shipping domain.ShippingProvider,
	gateway payment.Gateway,
	notifier Notifier,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
) *CheckoutService {
	return &CheckoutService{
		orders:    orders,
		carts:     carts,
		stock:     stock,
		shipping:  shipping,
		gateway:   gateway,
		notifier:  notifier,
		publisher: publisher,
		metrics:   m,
		validate:  validator.New(),
	}
}

func (s *CheckoutService) publish(ctx context.Context, topic string, id uint, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, strconv.FormatUint(uint64(id), 10), event); err != nil {
		logger.Warn(ctx, "publish order event failed", "topic", topic, "order_id", id, "error", err)
	}
}

// Quote 按配送方式计算当前购物车的报价，method 为空时取送货上门
func (s *CheckoutService) Quote(ctx context.Context, sid, method string) (*Quote, error) {
	view, err := s.carts.Detail(ctx, sid)
	if err != nil {
		return nil, err
	}
	if method == "" {
		method = domain.ShippingHome
	}
	table := s.shipping.Table()
	cost := table.Compute(view.Total, method)
	return &Quote{
		Lines:                 view.Lines,
		Subtotal:              view.Total,
		ShippingMethod:        method,
		ShippingMethodName:    table.MethodName(method),
		ShippingCost:          cost,
		Total:                 view.Total.Add(cost),
		FreeShippingThreshold: table.FreeShippingThreshold,
		Choices:               table.Choices(),
	}, nil
}

// normalize 清理收货信息并校验，requireAddress 为 true 时无论配送方式都要求地址
func (s *CheckoutService) normalize(d DeliveryData, requireAddress bool) (DeliveryData, error) {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Address = strings.TrimSpace(d.Address)
	d.PostalCode = strings.TrimSpace(d.PostalCode)
	d.City = strings.TrimSpace(d.City)
	d.Phone = strings.TrimSpace(d.Phone)
	d.ShippingMethod = strings.TrimSpace(d.ShippingMethod)
	if d.ShippingMethod == "" {
		d.ShippingMethod = domain.ShippingHome
	}

	if err := s.validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return d, fmt.Errorf("%w: %s is invalid", domain.ErrInvalidDelivery, verrs[0].Field())
		}
		return d, fmt.Errorf("%w: %v", domain.ErrInvalidDelivery, err)
	}
	if _, ok := s.shipping.Table().Find(d.ShippingMethod); !ok {
		return d, fmt.Errorf("%w: %s", domain.ErrInvalidShipping, d.ShippingMethod)
	}
	if (requireAddress || d.ShippingMethod == domain.ShippingHome) && !d.HasAddress() {
		return d, domain.ErrAddressRequired
	}
	switch d.PaymentMethod {
	case "", domain.PaymentCOD, domain.PaymentGateway:
	default:
		return d, fmt.Errorf("%w: %s", domain.ErrInvalidPayment, d.PaymentMethod)
	}
	return d, nil
}

// Create 前台下单：订单为待处理且未支付
func (s *CheckoutService) Create(ctx context.Context, sid string, customerID *uint, d DeliveryData) (*domain.Order, error) {
	d, err := s.normalize(d, false)
	if err != nil {
		return nil, err
	}
	return s.place(ctx, placement{
		SessionID:  sid,
		CustomerID: customerID,
		Channel:    ChannelStorefront,
		Delivery:   d,
		Status:     domain.StatusPending,
	})
}

// SaveDelivery 后台结账第一步：校验收货信息
func (s *CheckoutService) SaveDelivery(_ context.Context, d DeliveryData) (DeliveryData, error) {
	d.PaymentMethod = ""
	return s.normalize(d, true)
}

// AdminPlace 后台结账第二步：货到付款为处理中，网关支付为待处理且已支付
func (s *CheckoutService) AdminPlace(ctx context.Context, sid string, d DeliveryData, paymentMethod string) (*domain.Order, error) {
	p := placement{SessionID: sid, Channel: ChannelAdmin}
	switch paymentMethod {
	case domain.PaymentCOD:
		p.Status = domain.StatusProcessing
	case domain.PaymentGateway:
		p.Status = domain.StatusPending
		p.Paid = true
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPayment, paymentMethod)
	}
	d.PaymentMethod = paymentMethod
	d, err := s.normalize(d, true)
	if err != nil {
		return nil, err
	}
	p.Delivery = d
	return s.place(ctx, p)
}

// place 由购物车生成订单并完成扣库存、清购物车、通知与事件
func (s *CheckoutService) place(ctx context.Context, p placement) (*domain.Order, error) {
	// 1. 读取购物车
	view, err := s.carts.Detail(ctx, p.SessionID)
	if err != nil {
		return nil, err
	}
	if len(view.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	// 2. 计算金额
	d := p.Delivery
	table := s.shipping.Table()
	shippingCost := table.Compute(view.Total, d.ShippingMethod)
	now := time.Now()
	order := &domain.Order{
		CustomerID:      p.CustomerID,
		Status:          p.Status,
		Subtotal:        view.Total,
		Taxes:           decimal.Zero,
		ShippingCost:    shippingCost,
		Discount:        decimal.Zero,
		Paid:            p.Paid,
		ShippingMethod:  d.ShippingMethod,
		PaymentMethod:   d.PaymentMethod,
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		Email:           d.Email,
		Address:         d.Address,
		PostalCode:      d.PostalCode,
		City:            d.City,
		Phone:           d.Phone,
		ShippingAddress: shippingAddress(d, table),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, l := range view.Lines {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: l.Product.ID,
			Size:      l.Size,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}
	order.RecalculateTotal()

	// 3. 保存订单
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	// 4. 扣减库存
	for _, l := range view.Lines {
		if err := s.stock.DecreaseStock(ctx, l.Product.ID, l.Quantity); err != nil {
			logger.Warn(ctx, "decrease stock failed", "order_id", order.ID, "product_id", l.Product.ID, "error", err)
		}
	}

	// 5. 清空会话购物车与顾客保存的购物车
	if err := s.carts.Clear(ctx, p.SessionID); err != nil {
		logger.Warn(ctx, "clear cart after checkout failed", "order_id", order.ID, "error", err)
	}
	if p.CustomerID != nil {
		if err := s.carts.DiscardSaved(ctx, *p.CustomerID); err != nil {
			logger.Warn(ctx, "discard saved cart failed", "customer_id", *p.CustomerID, "error", err)
		}
	}

	// 6. 通知、指标与事件
	s.notifier.SendOrderConfirmation(ctx, confirmation(order, view, table))
	total, _ := order.Total.Float64()
	s.metrics.RecordOrder(p.Channel, total)
	logger.Info(ctx, "order created", "order_id", order.ID, "order_number", order.OrderNumber,
		"channel", p.Channel, "total", order.Total.StringFixed(2), "status", order.Status)

	s.publish(ctx, domain.TopicOrderCreated, order.ID, domain.OrderCreatedEvent{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Channel:       p.Channel,
		Total:         order.Total.StringFixed(2),
		PaymentMethod: order.PaymentMethod,
		Items:         len(order.Items),
		Timestamp:     now,
	})
	return order, nil
}

func shippingAddress(d DeliveryData, table domain.ShippingTable) string {
	if d.ShippingMethod != domain.ShippingHome {
		return table.MethodName(d.ShippingMethod)
	}
	return fmt.Sprintf("%s, %s %s", d.Address, d.PostalCode, d.City)
}

func confirmation(o *domain.Order, view *cartapp.CartView, table domain.ShippingTable) notification.OrderConfirmation {
	items := make([]notification.ConfirmationItem, 0, len(view.Lines))
	for _, l := range view.Lines {
		items = append(items, notification.ConfirmationItem{
			Name:     l.Product.Name,
			Size:     l.Size,
			Quantity: l.Quantity,
			Price:    l.Price.StringFixed(2),
			Cost:     l.TotalPrice.StringFixed(2),
		})
	}
	return notification.OrderConfirmation{
		OrderNumber:    o.OrderNumber,
		FirstName:      o.FirstName,
		Email:          o.Email,
		Items:          items,
		Subtotal:       o.Subtotal.StringFixed(2),
		ShippingMethod: table.MethodName(o.ShippingMethod),
		ShippingCost:   o.ShippingCost.StringFixed(2),
		Total:          o.Total.StringFixed(2),
	}
}

// GetOrder 按 ID 获取订单
func (s *CheckoutService) GetOrder(ctx context.Context, id uint) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

// Pay 通过支付网关扣款，成功后标记已支付并记录交易号
func (s *CheckoutService) Pay(ctx context.Context, orderID uint, nonce string) (*domain.Order, error) {
	o, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Paid {
		return nil, domain.ErrAlreadyPaid
	}

	res, err := s.gateway.Charge(ctx, payment.ChargeRequest{OrderNumber: o.OrderNumber, Amount: o.Total, Nonce: nonce})
	if err != nil {
		s.metrics.RecordPayment("declined")
		logger.Warn(ctx, "payment failed", "order_id", o.ID, "error", err)
		return nil, err
	}

	o.Paid = true
	o.TransactionID = res.TransactionID
	if o.PaymentMethod == "" {
		o.PaymentMethod = domain.PaymentGateway
	}
	o.UpdatedAt = time.Now()
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save paid order: %w", err)
	}

	s.metrics.RecordPayment("succeeded")
	logger.Info(ctx, "order paid", "order_id", o.ID, "transaction_id", res.TransactionID)
	s.publish(ctx, domain.TopicOrderPaid, o.ID, domain.OrderPaidEvent{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		TransactionID: res.TransactionID,
		Amount:        o.Total.StringFixed(2),
		Timestamp:     o.UpdatedAt,
	})
	return o, nil
}
