// Package mockdb 基于内存库的订单仓储
package mockdb

import (
	"context"
	"errors"
	"slices"
	"time"

	memdb "github.com/wyfcoding/nexoshop/internal/mockdb"
	"github.com/wyfcoding/nexoshop/internal/order/domain"
)

type orderRepository struct {
	store *memdb.Store
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(store *memdb.Store) domain.OrderRepository {
	return &orderRepository{store: store}
}

// Save 保存订单；明细中 ID 为 0 的行新建，已有明细原样保留
func (r *orderRepository) Save(ctx context.Context, order *domain.Order) error {
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	_ = r.store.Atomic(func() error {
		row := *order
		row.Items = nil
		saved := r.store.Orders.Save(row)
		order.ID = saved.ID
		if order.OrderNumber == "" {
			order.OrderNumber = domain.OrderNumberFor(order.ID)
			r.store.Orders.Update(r.store.Orders.IDIn(order.ID), func(o *domain.Order) { o.OrderNumber = order.OrderNumber })
		}
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
			order.Items[i] = r.store.OrderItems.Save(order.Items[i])
		}
		return nil
	})
	r.store.Persist(ctx, memdb.TableOrders, memdb.TableOrderItems)
	return nil
}

func (r *orderRepository) GetByID(_ context.Context, id uint) (*domain.Order, error) {
	o, err := r.store.Orders.GetByID(id)
	if errors.Is(err, memdb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	o.Items = r.items(o.ID)
	return &o, nil
}

// List 按创建时间倒序，时间相同按 ID 倒序
func (r *orderRepository) List(_ context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	rows := r.store.Orders.Filter(func(o *domain.Order) bool {
		if filter.Status != "" && o.Status != filter.Status {
			return false
		}
		if filter.CustomerID != 0 && (o.CustomerID == nil || *o.CustomerID != filter.CustomerID) {
			return false
		}
		return true
	})
	slices.SortStableFunc(rows, func(a, b domain.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.ID) - int(a.ID)
	})
	out := make([]*domain.Order, len(rows))
	for i := range rows {
		rows[i].Items = r.items(rows[i].ID)
		out[i] = &rows[i]
	}
	return out, nil
}

func (r *orderRepository) items(orderID uint) []domain.OrderItem {
	return r.store.OrderItems.Filter(func(it *domain.OrderItem) bool { return it.OrderID == orderID })
}

func (r *orderRepository) Delete(ctx context.Context, id uint) error {
	_ = r.store.Atomic(func() error {
		r.store.OrderItems.DeleteWhere(func(it *domain.OrderItem) bool { return it.OrderID == id })
		r.store.Orders.Delete(id)
		return nil
	})
	r.store.Persist(ctx, memdb.TableOrderItems, memdb.TableOrders)
	return nil
}
