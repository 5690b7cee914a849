// Package sessioncart 将会话购物车存放在会话数据存储中
package sessioncart

import (
	"context"
	"fmt"

	"github.com/wyfcoding/nexoshop/internal/cart/domain"
	"github.com/wyfcoding/nexoshop/internal/session"
)

type store struct {
	data session.Store
}

// New 基于会话数据存储的购物车存取
func New(data session.Store) domain.SessionCartStore {
	return &store{data: data}
}

// Load 会话中没有购物车时返回空购物车
func (s *store) Load(ctx context.Context, sessionID string) (*domain.SessionCart, error) {
	cart := domain.NewSessionCart()
	if _, err := s.data.Get(ctx, sessionID, session.KeyCart, cart); err != nil {
		return nil, fmt.Errorf("load session cart: %w", err)
	}
	if cart.Lines == nil {
		cart.Lines = make(map[string]*domain.Line)
	}
	return cart, nil
}

func (s *store) Save(ctx context.Context, sessionID string, cart *domain.SessionCart) error {
	if err := s.data.Set(ctx, sessionID, session.KeyCart, cart); err != nil {
		return fmt.Errorf("save session cart: %w", err)
	}
	return nil
}

func (s *store) Delete(ctx context.Context, sessionID string) error {
	return s.data.Delete(ctx, sessionID, session.KeyCart)
}
