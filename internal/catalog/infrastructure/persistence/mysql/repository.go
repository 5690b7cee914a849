// Package mysql 基于 gorm 的商品目录仓储，MySQL 与 PostgreSQL 共用
package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/nexoshop/internal/catalog/domain"
	"github.com/wyfcoding/nexoshop/pkg/db"
	"gorm.io/gorm"
)

// categoryRepository 分类仓储实现
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(gdb *gorm.DB) domain.CategoryRepository {
	return &categoryRepository{db: gdb}
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	var rows []*domain.Category
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) Save(ctx context.Context, category *domain.Category) error {
	return db.UpsertWithConflict(ctx, r.db, category)
}

func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Category{}, id).Error
}

// brandRepository 品牌仓储实现
type brandRepository struct {
	db *gorm.DB
}

// NewBrandRepository 创建品牌仓储
func NewBrandRepository(gdb *gorm.DB) domain.BrandRepository {
	return &brandRepository{db: gdb}
}

func (r *brandRepository) List(ctx context.Context) ([]*domain.Brand, error) {
	var rows []*domain.Brand
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *brandRepository) GetByID(ctx context.Context, id uint) (*domain.Brand, error) {
	var b domain.Brand
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *brandRepository) Save(ctx context.Context, brand *domain.Brand) error {
	return db.UpsertWithConflict(ctx, r.db, brand)
}

func (r *brandRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Brand{}, id).Error
}

// productRepository 商品仓储实现
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(gdb *gorm.DB) domain.ProductRepository {
	return &productRepository{db: gdb}
}

func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Omit("Category", "Brand").Save(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).Preload("Category").Preload("Brand").First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	query := r.db.WithContext(ctx).Model(&domain.Product{}).Preload("Category").Preload("Brand")
	if filter.CategoryID != 0 {
		query = query.Where("products.category_id = ?", filter.CategoryID)
	}
	if filter.BrandID != 0 {
		query = query.Where("products.brand_id = ?", filter.BrandID)
	}
	if filter.BrandName != "" {
		query = query.Joins("JOIN brands ON brands.id = products.brand_id").Where("brands.name = ?", filter.BrandName)
	}
	if filter.Color != "" {
		query = query.Where("products.color = ?", filter.Color)
	}
	if filter.Material != "" {
		query = query.Where("products.material = ?", filter.Material)
	}
	if filter.AvailableOnly {
		query = query.Where("products.available = ?", true)
	}
	if filter.OutOfStock {
		query = query.Where("products.stock = 0")
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where("LOWER(products.name) LIKE LOWER(?) OR LOWER(products.description) LIKE LOWER(?)", like, like)
	}
	if len(filter.IDs) > 0 {
		query = query.Where("products.id IN ?", filter.IDs)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []*domain.Product
	if err := query.Order("products.id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	return db.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductSize{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Product{}, id).Error
	})
}

func (r *productRepository) ListSizes(ctx context.Context, productID uint) ([]*domain.ProductSize, error) {
	var rows []*domain.ProductSize
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *productRepository) ReplaceSizes(ctx context.Context, productID uint, sizes []domain.SizeInput) error {
	return db.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&domain.ProductSize{}).Error; err != nil {
			return err
		}
		if len(sizes) == 0 {
			return nil
		}
		rows := make([]domain.ProductSize, 0, len(sizes))
		for _, in := range sizes {
			rows = append(rows, domain.ProductSize{ProductID: productID, Size: in.Size, Stock: max(0, in.Stock)})
		}
		return tx.Create(&rows).Error
	})
}

func (r *productRepository) ListImages(ctx context.Context, productID uint) ([]*domain.ProductImage, error) {
	var rows []*domain.ProductImage
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Models AutoMigrate 使用的模型
func Models() []any {
	return []any{&domain.Category{}, &domain.Brand{}, &domain.Product{}, &domain.ProductImage{}, &domain.ProductSize{}}
}
