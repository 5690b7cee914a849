package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
	catalog "github.com/wyfcoding/nexoshop/internal/catalog/domain"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// MaxLineQuantity 单行最大数量
const MaxLineQuantity = 20

// Line 会话购物车中的一行
type Line struct {
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	ProductID string `json:"product_id"`
	Size      string `json:"size,omitempty"`
}

// SessionCart 存放在会话中的购物车，key 为 "pid" 或 "pid_size"
type SessionCart struct {
	Lines map[string]*Line `json:"lines"`
}

// NewSessionCart 创建空购物车
func NewSessionCart() *SessionCart {
	return &SessionCart{Lines: make(map[string]*Line)}
}

// LineKey 生成购物车行 key
func LineKey(productID uint, size string) string {
	if size == "" {
		return strconv.FormatUint(uint64(productID), 10)
	}
	return fmt.Sprintf("%d_%s", productID, size)
}

// Add 加入商品；override 为 true 时覆盖数量，否则累加。已有行保留首次加入时的价格
func (c *SessionCart) Add(productID uint, qty int, override bool, size string, price decimal.Decimal) {
	if c.Lines == nil {
		c.Lines = make(map[string]*Line)
	}
	key := LineKey(productID, size)
	line, ok := c.Lines[key]
	if !ok {
		line = &Line{
			Price:     price.StringFixed(2),
			ProductID: strconv.FormatUint(uint64(productID), 10),
			Size:      size,
		}
		c.Lines[key] = line
	}
	if override {
		line.Quantity = qty
	} else {
		line.Quantity += qty
	}
}

// Remove 移除一行，不存在时返回 false
func (c *SessionCart) Remove(productID uint, size string) bool {
	key := LineKey(productID, size)
	if _, ok := c.Lines[key]; !ok {
		return false
	}
	delete(c.Lines, key)
	return true
}

// Clear 清空
func (c *SessionCart) Clear() {
	c.Lines = make(map[string]*Line)
}

// Len 商品总件数
func (c *SessionCart) Len() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty 是否为空
func (c *SessionCart) IsEmpty() bool { return len(c.Lines) == 0 }

// Total 合计金额
func (c *SessionCart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.price().Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// ProductIDs 购物车涉及的商品 ID
func (c *SessionCart) ProductIDs() []uint {
	seen := make(map[uint]struct{}, len(c.Lines))
	ids := make([]uint, 0, len(c.Lines))
	for _, l := range c.Lines {
		id := l.productID()
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ResolvedLine 关联商品后的购物车行
type ResolvedLine struct {
	Key        string           `json:"key"`
	Product    *catalog.Product `json:"product"`
	Size       string           `json:"size,omitempty"`
	Quantity   int              `json:"quantity"`
	Price      decimal.Decimal  `json:"price"`
	TotalPrice decimal.Decimal  `json:"total_price"`
}

// Resolve 关联商品，商品已不存在的行被跳过；结果按 key 排序
func (c *SessionCart) Resolve(products []*catalog.Product) []ResolvedLine {
	byID := make(map[uint]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	keys := make([]string, 0, len(c.Lines))
	for k := range c.Lines {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]ResolvedLine, 0, len(keys))
	for _, k := range keys {
		l := c.Lines[k]
		p, ok := byID[l.productID()]
		if !ok {
			continue
		}
		price := l.price()
		out = append(out, ResolvedLine{
			Key:        k,
			Product:    p,
			Size:       l.Size,
			Quantity:   l.Quantity,
			Price:      price,
			TotalPrice: price.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}
	return out
}

func (l *Line) price() decimal.Decimal {
	d, err := decimal.NewFromString(l.Price)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (l *Line) productID() uint {
	id, err := strconv.ParseUint(l.ProductID, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

// SessionCartStore 会话购物车的存取
type SessionCartStore interface {
	Load(ctx context.Context, sessionID string) (*SessionCart, error)
	Save(ctx context.Context, sessionID string, cart *SessionCart) error
	Delete(ctx context.Context, sessionID string) error
}
