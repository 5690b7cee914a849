package domain

import (
	"context"
	"errors"
	"slices"
	"strings"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrBrandNotFound    = errors.New("brand not found")
	ErrInvalidProduct   = errors.New("invalid product")
)

// ProductFilter 商品查询条件，零值字段不参与过滤
type ProductFilter struct {
	CategoryID    uint
	BrandID       uint
	BrandName     string
	Color         string
	Material      string
	AvailableOnly bool
	OutOfStock    bool
	// 名称或描述的大小写不敏感子串匹配
	Query string
	IDs   []uint
	Limit int
}

// Matches 判断商品是否满足条件，BrandName 过滤依赖已填充的 Brand
func (f ProductFilter) Matches(p *Product) bool {
	if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
		return false
	}
	if f.BrandID != 0 && (p.BrandID == nil || *p.BrandID != f.BrandID) {
		return false
	}
	if f.BrandName != "" && p.BrandName() != f.BrandName {
		return false
	}
	if f.Color != "" && p.Color != f.Color {
		return false
	}
	if f.Material != "" && p.Material != f.Material {
		return false
	}
	if f.AvailableOnly && !p.Available {
		return false
	}
	if f.OutOfStock && !p.IsOutOfStock() {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if len(f.IDs) > 0 && !slices.Contains(f.IDs, p.ID) {
		return false
	}
	return true
}

// CategoryRepository 分类仓储，未找到时返回 nil, nil
type CategoryRepository interface {
	List(ctx context.Context) ([]*Category, error)
	GetByID(ctx context.Context, id uint) (*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	// Save ID 为 0 时新建并回填 ID
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uint) error
}

// BrandRepository 品牌仓储
type BrandRepository interface {
	List(ctx context.Context) ([]*Brand, error)
	GetByID(ctx context.Context, id uint) (*Brand, error)
	Save(ctx context.Context, brand *Brand) error
	Delete(ctx context.Context, id uint) error
}

// ProductRepository 商品仓储，读取时填充 Category 与 Brand
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id uint) (*Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*Product, error)
	// Delete 同时删除商品的尺码与图片
	Delete(ctx context.Context, id uint) error

	ListSizes(ctx context.Context, productID uint) ([]*ProductSize, error)
	ReplaceSizes(ctx context.Context, productID uint, sizes []SizeInput) error
	ListImages(ctx context.Context, productID uint) ([]*ProductImage, error)
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
