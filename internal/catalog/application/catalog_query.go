package application

import (
	"context"
	"slices"

	"github.com/wyfcoding/nexoshop/internal/catalog/domain"
)

// CatalogQueryService 商品目录只读查询
type CatalogQueryService struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	brands     domain.BrandRepository
}

func NewCatalogQueryService(products domain.ProductRepository, categories domain.CategoryRepository, brands domain.BrandRepository) *CatalogQueryService {
	return &CatalogQueryService{products: products, categories: categories, brands: brands}
}

// Home 首页：前若干个在售商品
func (s *CatalogQueryService) Home(ctx context.Context) ([]*domain.Product, error) {
	return s.products.List(ctx, domain.ProductFilter{AvailableOnly: true, Limit: HomeLimit})
}

// ListProducts 前台商品列表；分类 slug 不存在时返回 ErrCategoryNotFound
func (s *CatalogQueryService) ListProducts(ctx context.Context, f StorefrontFilter) (*ProductListResult, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	res := &ProductListResult{Categories: categories, Filter: f}
	filter := domain.ProductFilter{
		AvailableOnly: true,
		BrandName:     f.Brand,
		Color:         f.Color,
		Material:      f.Material,
	}
	if f.CategorySlug != "" {
		category, err := s.categories.GetBySlug(ctx, f.CategorySlug)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, domain.ErrCategoryNotFound
		}
		res.Category = category
		filter.CategoryID = category.ID
	}

	if res.Products, err = s.products.List(ctx, filter); err != nil {
		return nil, err
	}

	// 筛选项基于全部在售商品
	all, err := s.products.List(ctx, domain.ProductFilter{AvailableOnly: true})
	if err != nil {
		return nil, err
	}
	res.Facets = facets(all)
	return res, nil
}

func facets(products []*domain.Product) Facets {
	var brands, colors, materials []string
	for _, p := range products {
		if name := p.BrandName(); name != "" {
			brands = append(brands, name)
		}
		if p.Color != "" {
			colors = append(colors, p.Color)
		}
		if p.Material != "" {
			materials = append(materials, p.Material)
		}
	}
	return Facets{Brands: uniqueSorted(brands), Colors: uniqueSorted(colors), Materials: uniqueSorted(materials)}
}

func uniqueSorted(values []string) []string {
	slices.Sort(values)
	out := slices.Compact(values)
	if out == nil {
		return []string{}
	}
	return out
}

// ProductDetail 前台商品详情：ID 与 slug 都须匹配且商品在售
func (s *CatalogQueryService) ProductDetail(ctx context.Context, id uint, slug string) (*ProductDetail, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.Slug != slug || !p.Available {
		return nil, domain.ErrProductNotFound
	}
	return s.detail(ctx, p)
}

func (s *CatalogQueryService) detail(ctx context.Context, p *domain.Product) (*ProductDetail, error) {
	sizes, err := s.products.ListSizes(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	images, err := s.products.ListImages(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &ProductDetail{Product: p, Sizes: sizes, Images: images}, nil
}

// GetProduct 按 ID 获取商品，不检查是否在售
func (s *CatalogQueryService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

// AdminProductDetail 后台商品详情，含尺码
func (s *CatalogQueryService) AdminProductDetail(ctx context.Context, id uint) (*ProductDetail, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, p)
}

// ProductsByIDs 批量获取商品，缺失的 ID 被忽略
func (s *CatalogQueryService) ProductsByIDs(ctx context.Context, ids []uint) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.products.List(ctx, domain.ProductFilter{IDs: ids})
}

// AdminListProducts 后台商品列表
func (s *CatalogQueryService) AdminListProducts(ctx context.Context, f AdminProductFilter) (*AdminProductList, error) {
	filter := domain.ProductFilter{CategoryID: f.CategoryID, Query: f.Query}
	switch f.Status {
	case StatusAvailable:
		filter.AvailableOnly = true
	case StatusOutOfStock:
		filter.OutOfStock = true
	}
	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	brands, err := s.brands.List(ctx)
	if err != nil {
		return nil, err
	}
	return &AdminProductList{Products: products, Categories: categories, Brands: brands, Filter: f}, nil
}

// CountProducts 商品总数与低库存数
func (s *CatalogQueryService) CountProducts(ctx context.Context) (total, lowStock int, err error) {
	products, err := s.products.List(ctx, domain.ProductFilter{})
	if err != nil {
		return 0, 0, err
	}
	for _, p := range products {
		if p.IsLowStock() {
			lowStock++
		}
	}
	return len(products), lowStock, nil
}
