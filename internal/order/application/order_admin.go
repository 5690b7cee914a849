package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/wyfcoding/nexoshop/internal/order/domain"
	"github.com/wyfcoding/nexoshop/pkg/logger"
)

// OrderAdminService 后台订单管理
type OrderAdminService struct {
	orders    domain.OrderRepository
	publisher domain.EventPublisher
}

func NewOrderAdminService(orders domain.OrderRepository, publisher domain.EventPublisher) *OrderAdminService {
	return &OrderAdminService{orders: orders, publisher: publisher}
}

func (s *OrderAdminService) publish(ctx context.Context, topic string, id uint, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, strconv.FormatUint(uint64(id), 10), event); err != nil {
		logger.Warn(ctx, "publish order event failed", "topic", topic, "order_id", id, "error", err)
	}
}

// List 订单列表，status 为空时返回全部
func (s *OrderAdminService) List(ctx context.Context, status string) (*OrderList, error) {
	if status != "" && !domain.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidStatus, status)
	}
	orders, err := s.orders.List(ctx, domain.OrderFilter{Status: status})
	if err != nil {
		return nil, err
	}
	return &OrderList{Orders: orders, SelectedStatus: status, Statuses: domain.Statuses}, nil
}

// All 全部订单，按创建时间倒序
func (s *OrderAdminService) All(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.List(ctx, domain.OrderFilter{})
}

// Detail 订单详情，含明细
func (s *OrderAdminService) Detail(ctx context.Context, id uint) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

// UpdateStatus 更新状态，paid 非 nil 时同时更新支付标记
func (s *OrderAdminService) UpdateStatus(ctx context.Context, id uint, status string, paid *bool) (*domain.Order, error) {
	o, err := s.Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == "" {
		status = o.Status
	}
	if !domain.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidStatus, status)
	}

	old := o.Status
	o.Status = status
	if paid != nil {
		o.Paid = *paid
	}
	o.UpdatedAt = time.Now()
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	logger.Info(ctx, "order status updated", "order_id", o.ID, "old_status", old, "new_status", o.Status, "paid", o.Paid)
	s.publish(ctx, domain.TopicOrderStatusChanged, o.ID, domain.OrderStatusChangedEvent{
		OrderID: o.ID, OldStatus: old, NewStatus: o.Status, Paid: o.Paid, Timestamp: o.UpdatedAt,
	})
	return o, nil
}

// Delete 删除订单及其明细，返回被删除订单的编号
func (s *OrderAdminService) Delete(ctx context.Context, id uint) (string, error) {
	o, err := s.Detail(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return "", fmt.Errorf("delete order: %w", err)
	}
	logger.Info(ctx, "order deleted", "order_id", id, "order_number", o.OrderNumber)
	s.publish(ctx, domain.TopicOrderDeleted, id, domain.OrderDeletedEvent{OrderID: id, OrderNumber: o.OrderNumber, Timestamp: time.Now()})
	return o.OrderNumber, nil
}
