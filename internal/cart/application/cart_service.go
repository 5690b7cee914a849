package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/nexoshop/internal/cart/domain"
	catalog "github.com/wyfcoding/nexoshop/internal/catalog/domain"
	"github.com/wyfcoding/nexoshop/pkg/logger"
	"github.com/wyfcoding/nexoshop/pkg/metrics"
)

// ProductReader 购物车所需的商品查询
type ProductReader interface {
	GetProduct(ctx context.Context, id uint) (*catalog.Product, error)
	ProductsByIDs(ctx context.Context, ids []uint) ([]*catalog.Product, error)
}

// CartView 购物车展示数据
type CartView struct {
	Lines []domain.ResolvedLine `json:"lines"`
	Count int                   `json:"count"`
	Total decimal.Decimal       `json:"total"`
}

// CartService 会话购物车服务
type CartService struct {
	carts     domain.SessionCartStore
	saved     domain.CartRepository
	products  ProductReader
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
}

func NewCartService(
	carts domain.SessionCartStore,
	saved domain.CartRepository,
	products ProductReader,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
) *CartService {
	return &CartService{carts: carts, saved: saved, products: products, publisher: publisher, metrics: m}
}

func (s *CartService) publish(ctx context.Context, topic, sid string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, sid, event); err != nil {
		logger.Warn(ctx, "publish cart event failed", "topic", topic, "error", err)
	}
}

// Load 读取会话购物车
func (s *CartService) Load(ctx context.Context, sid string) (*domain.SessionCart, error) {
	return s.carts.Load(ctx, sid)
}

// View 关联商品并计算合计
func (s *CartService) View(ctx context.Context, cart *domain.SessionCart) (*CartView, error) {
	products, err := s.products.ProductsByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("resolve cart products: %w", err)
	}
	lines := cart.Resolve(products)
	view := &CartView{Lines: lines, Total: decimal.Zero}
	for _, l := range lines {
		view.Count += l.Quantity
		view.Total = view.Total.Add(l.TotalPrice)
	}
	return view, nil
}

// Detail 当前会话的购物车
func (s *CartService) Detail(ctx context.Context, sid string) (*CartView, error) {
	cart, err := s.carts.Load(ctx, sid)
	if err != nil {
		return nil, err
	}
	return s.View(ctx, cart)
}

// Add 加入商品，价格取商品当前实际售价
func (s *CartService) Add(ctx context.Context, sid string, productID uint, qty int, size string) (*CartView, error) {
	if qty < 1 || qty > domain.MaxLineQuantity {
		return nil, domain.ErrInvalidQuantity
	}
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.Load(ctx, sid)
	if err != nil {
		return nil, err
	}
	price := p.EffectivePrice()
	cart.Add(p.ID, qty, false, size, price)
	if err := s.carts.Save(ctx, sid, cart); err != nil {
		return nil, err
	}

	s.metrics.RecordCartMutation("add")
	logger.Debug(ctx, "cart item added", "product_id", p.ID, "size", size, "quantity", qty)
	s.publish(ctx, domain.TopicCartItemAdded, sid, domain.CartItemAddedEvent{
		SessionID: sid, ProductID: p.ID, Size: size, Quantity: qty, Price: price.StringFixed(2), Timestamp: time.Now(),
	})
	return s.View(ctx, cart)
}

// UpdateQuantity 覆盖数量，数量被限制在 [1, MaxLineQuantity]
func (s *CartService) UpdateQuantity(ctx context.Context, sid string, productID uint, qty int, size string) (*CartView, error) {
	qty = min(max(qty, 1), domain.MaxLineQuantity)
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.Load(ctx, sid)
	if err != nil {
		return nil, err
	}
	cart.Add(p.ID, qty, true, size, p.EffectivePrice())
	if err := s.carts.Save(ctx, sid, cart); err != nil {
		return nil, err
	}
	s.metrics.RecordCartMutation("update")
	return s.View(ctx, cart)
}

// Remove 移除一行
func (s *CartService) Remove(ctx context.Context, sid string, productID uint, size string) (*CartView, error) {
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.Load(ctx, sid)
	if err != nil {
		return nil, err
	}
	if cart.Remove(p.ID, size) {
		if err := s.carts.Save(ctx, sid, cart); err != nil {
			return nil, err
		}
		s.metrics.RecordCartMutation("remove")
		s.publish(ctx, domain.TopicCartItemRemoved, sid, domain.CartItemRemovedEvent{
			SessionID: sid, ProductID: p.ID, Size: size, Timestamp: time.Now(),
		})
	}
	return s.View(ctx, cart)
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, sid string) error {
	if err := s.carts.Delete(ctx, sid); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.metrics.RecordCartMutation("clear")
	s.publish(ctx, domain.TopicCartCleared, sid, domain.CartClearedEvent{SessionID: sid, Timestamp: time.Now()})
	return nil
}

// MergeSaved 登录时将顾客保存的购物车并入会话，返回并入的行数
func (s *CartService) MergeSaved(ctx context.Context, sid string, customerID uint) (int, error) {
	saved, err := s.saved.GetByCustomerID(ctx, customerID)
	if err != nil {
		return 0, fmt.Errorf("load saved cart: %w", err)
	}
	if saved == nil || len(saved.Items) == 0 {
		return 0, nil
	}

	ids := make([]uint, 0, len(saved.Items))
	for _, it := range saved.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.ProductsByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	byID := make(map[uint]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	cart, err := s.carts.Load(ctx, sid)
	if err != nil {
		return 0, err
	}
	merged := 0
	for _, it := range saved.Items {
		p, ok := byID[it.ProductID]
		if !ok || it.Quantity < 1 {
			continue
		}
		cart.Add(p.ID, it.Quantity, false, it.Size, p.EffectivePrice())
		merged++
	}
	if merged == 0 {
		return 0, nil
	}
	if err := s.carts.Save(ctx, sid, cart); err != nil {
		return 0, err
	}
	s.metrics.RecordCartMutation("merge")
	logger.Info(ctx, "saved cart merged into session", "customer_id", customerID, "lines", merged)
	return merged, nil
}

// DiscardSaved 删除顾客保存的购物车
func (s *CartService) DiscardSaved(ctx context.Context, customerID uint) error {
	return s.saved.DeleteByCustomerID(ctx, customerID)
}
