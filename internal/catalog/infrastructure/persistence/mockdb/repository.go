// Package mockdb 基于内存库的商品目录仓储
package mockdb

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/nexoshop/internal/catalog/domain"
	memdb "github.com/wyfcoding/nexoshop/internal/mockdb"
)

func notFound[T any](v T, err error) (*T, error) {
	if errors.Is(err, memdb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// categoryRepository 分类仓储实现
type categoryRepository struct {
	store *memdb.Store
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(store *memdb.Store) domain.CategoryRepository {
	return &categoryRepository{store: store}
}

func (r *categoryRepository) List(_ context.Context) ([]*domain.Category, error) {
	rows := r.store.Categories.All()
	out := make([]*domain.Category, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

func (r *categoryRepository) GetByID(_ context.Context, id uint) (*domain.Category, error) {
	return notFound(r.store.Categories.GetByID(id))
}

func (r *categoryRepository) GetBySlug(_ context.Context, slug string) (*domain.Category, error) {
	rows := r.store.Categories.Filter(func(c *domain.Category) bool { return c.Slug == slug })
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *categoryRepository) Save(ctx context.Context, category *domain.Category) error {
	saved := r.store.Categories.Save(*category)
	category.ID = saved.ID
	r.store.Persist(ctx, memdb.TableCategories)
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	if r.store.Categories.Delete(id) {
		r.store.Persist(ctx, memdb.TableCategories)
	}
	return nil
}

// brandRepository 品牌仓储实现
type brandRepository struct {
	store *memdb.Store
}

// NewBrandRepository 创建品牌仓储
func NewBrandRepository(store *memdb.Store) domain.BrandRepository {
	return &brandRepository{store: store}
}

func (r *brandRepository) List(_ context.Context) ([]*domain.Brand, error) {
	rows := r.store.Brands.All()
	out := make([]*domain.Brand, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

func (r *brandRepository) GetByID(_ context.Context, id uint) (*domain.Brand, error) {
	return notFound(r.store.Brands.GetByID(id))
}

func (r *brandRepository) Save(ctx context.Context, brand *domain.Brand) error {
	saved := r.store.Brands.Save(*brand)
	brand.ID = saved.ID
	r.store.Persist(ctx, memdb.TableBrands)
	return nil
}

func (r *brandRepository) Delete(ctx context.Context, id uint) error {
	if r.store.Brands.Delete(id) {
		r.store.Persist(ctx, memdb.TableBrands)
	}
	return nil
}

// productRepository 商品仓储实现，读取时填充分类与品牌
type productRepository struct {
	store *memdb.Store
}

// NewProductRepository 创建商品仓储
func NewProductRepository(store *memdb.Store) domain.ProductRepository {
	return &productRepository{store: store}
}

func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	now := time.Now()
	if product.ID == 0 || product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	row := *product
	row.Category = nil
	row.Brand = nil
	saved := r.store.Products.Save(row)
	product.ID = saved.ID
	r.store.Persist(ctx, memdb.TableProducts)
	return nil
}

func (r *productRepository) GetByID(_ context.Context, id uint) (*domain.Product, error) {
	p, err := notFound(r.store.Products.GetByID(id))
	if err != nil || p == nil {
		return p, err
	}
	r.resolve(p)
	return p, nil
}

func (r *productRepository) List(_ context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	rows := r.store.Products.All()
	out := make([]*domain.Product, 0, len(rows))
	for i := range rows {
		p := &rows[i]
		r.resolve(p)
		if !filter.Matches(p) {
			continue
		}
		out = append(out, p)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *productRepository) resolve(p *domain.Product) {
	if c, err := r.store.Categories.GetByID(p.CategoryID); err == nil {
		p.Category = &c
	}
	if p.BrandID != nil {
		if b, err := r.store.Brands.GetByID(*p.BrandID); err == nil {
			p.Brand = &b
		}
	}
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	_ = r.store.Atomic(func() error {
		r.store.ProductSizes.DeleteWhere(func(s *domain.ProductSize) bool { return s.ProductID == id })
		r.store.ProductImages.DeleteWhere(func(i *domain.ProductImage) bool { return i.ProductID == id })
		r.store.Products.Delete(id)
		return nil
	})
	r.store.Persist(ctx, memdb.TableProducts, memdb.TableProductSizes, memdb.TableProductImages)
	return nil
}

func (r *productRepository) ListSizes(_ context.Context, productID uint) ([]*domain.ProductSize, error) {
	rows := r.store.ProductSizes.Filter(func(s *domain.ProductSize) bool { return s.ProductID == productID })
	out := make([]*domain.ProductSize, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

func (r *productRepository) ReplaceSizes(ctx context.Context, productID uint, sizes []domain.SizeInput) error {
	_ = r.store.Atomic(func() error {
		r.store.ProductSizes.DeleteWhere(func(s *domain.ProductSize) bool { return s.ProductID == productID })
		for _, in := range sizes {
			r.store.ProductSizes.Create(domain.ProductSize{ProductID: productID, Size: in.Size, Stock: max(0, in.Stock)})
		}
		return nil
	})
	r.store.Persist(ctx, memdb.TableProductSizes)
	return nil
}

func (r *productRepository) ListImages(_ context.Context, productID uint) ([]*domain.ProductImage, error) {
	rows := r.store.ProductImages.Filter(func(i *domain.ProductImage) bool { return i.ProductID == productID })
	out := make([]*domain.ProductImage, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}
