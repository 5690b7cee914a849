// Package mockdb 基于内存库的保存购物车仓储
package mockdb

import (
	"context"

	"github.com/wyfcoding/nexoshop/internal/cart/domain"
	memdb "github.com/wyfcoding/nexoshop/internal/mockdb"
)

type cartRepository struct {
	store *memdb.Store
}

// NewCartRepository 创建保存购物车仓储
func NewCartRepository(store *memdb.Store) domain.CartRepository {
	return &cartRepository{store: store}
}

func (r *cartRepository) GetByCustomerID(_ context.Context, customerID uint) (*domain.Cart, error) {
	carts := r.store.Carts.Filter(func(c *domain.Cart) bool { return c.CustomerID == customerID })
	if len(carts) == 0 {
		return nil, nil
	}
	c := carts[0]
	c.Items = r.store.CartItems.Filter(func(it *domain.CartItem) bool { return it.CartID == c.ID })
	return &c, nil
}

// Save 整体替换购物车明细
func (r *cartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	_ = r.store.Atomic(func() error {
		row := *cart
		row.Items = nil
		saved := r.store.Carts.Save(row)
		cart.ID = saved.ID

		r.store.CartItems.DeleteWhere(func(it *domain.CartItem) bool { return it.CartID == cart.ID })
		for i := range cart.Items {
			it := cart.Items[i]
			it.ID = 0
			it.CartID = cart.ID
			cart.Items[i] = r.store.CartItems.Create(it)
		}
		return nil
	})
	r.store.Persist(ctx, memdb.TableCarts, memdb.TableCartItems)
	return nil
}

func (r *cartRepository) DeleteByCustomerID(ctx context.Context, customerID uint) error {
	var removed int
	_ = r.store.Atomic(func() error {
		for _, c := range r.store.Carts.Filter(func(c *domain.Cart) bool { return c.CustomerID == customerID }) {
			r.store.CartItems.DeleteWhere(func(it *domain.CartItem) bool { return it.CartID == c.ID })
			removed += r.store.Carts.DeleteWhere(r.store.Carts.IDIn(c.ID))
		}
		return nil
	})
	if removed > 0 {
		r.store.Persist(ctx, memdb.TableCarts, memdb.TableCartItems)
	}
	return nil
}
