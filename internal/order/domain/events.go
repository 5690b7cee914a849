package domain

import "time"

// 事件 topic
const (
	TopicOrderCreated       = "order.created"
	TopicOrderPaid          = "order.paid"
	TopicOrderStatusChanged = "order.status.changed"
	TopicOrderDeleted       = "order.deleted"
)

// OrderCreatedEvent 订单创建事件
type OrderCreatedEvent struct {
	OrderID       uint      `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	Channel       string    `json:"channel"`
	Total         string    `json:"total"`
	PaymentMethod string    `json:"payment_method"`
	Items         int       `json:"items"`
	Timestamp     time.Time `json:"timestamp"`
}

// OrderPaidEvent 订单支付事件
type OrderPaidEvent struct {
	OrderID       uint      `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	TransactionID string    `json:"transaction_id"`
	Amount        string    `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
}

// OrderStatusChangedEvent 订单状态变更事件
type OrderStatusChangedEvent struct {
	OrderID   uint      `json:"order_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	Paid      bool      `json:"paid"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderDeletedEvent 订单删除事件
type OrderDeletedEvent struct {
	OrderID     uint      `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Timestamp   time.Time `json:"timestamp"`
}
