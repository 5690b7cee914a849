package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/nexoshop/internal/catalog/domain"
	"github.com/wyfcoding/nexoshop/pkg/logger"
	"github.com/wyfcoding/nexoshop/pkg/utils"
)

// CatalogCommandService 处理商品目录相关的写操作
type CatalogCommandService struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	brands     domain.BrandRepository
	publisher  domain.EventPublisher
}

func NewCatalogCommandService(
	products domain.ProductRepository,
	categories domain.CategoryRepository,
	brands domain.BrandRepository,
	publisher domain.EventPublisher,
) *CatalogCommandService {
	return &CatalogCommandService{
		products:   products,
		categories: categories,
		brands:     brands,
		publisher:  publisher,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidProduct, fmt.Sprintf(format, args...))
}

func (s *CatalogCommandService) publish(ctx context.Context, topic string, id uint, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, strconv.FormatUint(uint64(id), 10), event); err != nil {
		logger.Warn(ctx, "publish catalog event failed", "topic", topic, "product_id", id, "error", err)
	}
}

// CreateProduct 新建商品
func (s *CatalogCommandService) CreateProduct(ctx context.Context, cmd ProductCommand) (*domain.Product, error) {
	p := &domain.Product{}
	pending, err := s.apply(ctx, p, cmd)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, p, pending); err != nil {
		return nil, err
	}
	if err := s.products.ReplaceSizes(ctx, p.ID, sizeInputs(cmd.Sizes, cmd.SizeStocks)); err != nil {
		return nil, fmt.Errorf("save sizes: %w", err)
	}

	logger.Info(ctx, "product created", "product_id", p.ID, "name", p.Name)
	s.publish(ctx, domain.TopicProductCreated, p.ID, domain.ProductCreatedEvent{
		ProductID: p.ID, Name: p.Name, Price: p.Price.StringFixed(2), Stock: p.Stock, CategoryID: p.CategoryID, Timestamp: time.Now(),
	})
	return p, nil
}

// UpdateProduct 编辑商品，尺码整体替换
func (s *CatalogCommandService) UpdateProduct(ctx context.Context, id uint, cmd ProductCommand) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	pending, err := s.apply(ctx, p, cmd)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, p, pending); err != nil {
		return nil, err
	}
	if err := s.products.ReplaceSizes(ctx, p.ID, sizeInputs(cmd.Sizes, cmd.SizeStocks)); err != nil {
		return nil, fmt.Errorf("save sizes: %w", err)
	}

	logger.Info(ctx, "product updated", "product_id", p.ID)
	s.publish(ctx, domain.TopicProductUpdated, p.ID, domain.ProductUpdatedEvent{
		ProductID: p.ID, Name: p.Name, Price: p.Price.StringFixed(2), Stock: p.Stock, CategoryID: p.CategoryID, Timestamp: time.Now(),
	})
	return p, nil
}

// newRefs 命令中以 new: 指定、尚未落库的分类与品牌
type newRefs struct {
	category *domain.Category
	brand    *domain.Brand
}

// apply 校验命令并写入商品字段；new: 分类与品牌只在 save 时创建
func (s *CatalogCommandService) apply(ctx context.Context, p *domain.Product, cmd ProductCommand) (newRefs, error) {
	var pending newRefs
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return pending, invalid("name is required")
	}
	if cmd.Price.IsNegative() {
		return pending, invalid("price must not be negative")
	}
	if cmd.Stock < 0 {
		return pending, invalid("stock must not be negative")
	}

	categoryID, category, err := s.resolveCategory(ctx, cmd.Category)
	if err != nil {
		return pending, err
	}
	brandID, brand, err := s.resolveBrand(ctx, cmd.Brand)
	if err != nil {
		return pending, err
	}
	pending = newRefs{category: category, brand: brand}

	p.Name = name
	p.Slug = utils.Slugify(name)
	p.Description = cmd.Description
	p.Price = cmd.Price
	p.OfferPrice = decimal.Zero
	if cmd.OfferPrice.IsPositive() {
		p.OfferPrice = cmd.OfferPrice
	}
	p.Stock = cmd.Stock
	p.Available = cmd.Available
	p.IsFeatured = cmd.IsFeatured
	p.Gender = cmd.Gender
	if p.Gender == "" {
		p.Gender = domain.GenderUnisex
	}
	p.Color = cmd.Color
	p.Material = cmd.Material
	if cmd.ImageURL != "" {
		p.ImageURL = cmd.ImageURL
	}
	p.CategoryID = categoryID
	p.Category = nil
	p.BrandID = brandID
	p.Brand = nil
	return pending, nil
}

// save 先创建 new: 分类与品牌再保存商品，任一步失败时回滚已创建的分类与品牌
func (s *CatalogCommandService) save(ctx context.Context, p *domain.Product, pending newRefs) (err error) {
	var created newRefs
	defer func() {
		if err != nil {
			s.rollback(ctx, created)
		}
	}()

	if pending.category != nil {
		id, err := s.nextCategoryID(ctx)
		if err != nil {
			return err
		}
		pending.category.ID = id
		if err := s.categories.Save(ctx, pending.category); err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		created.category = pending.category
		p.CategoryID = pending.category.ID
		logger.Info(ctx, "category created", "category_id", pending.category.ID, "name", pending.category.Name)
	}
	if pending.brand != nil {
		id, err := s.nextBrandID(ctx)
		if err != nil {
			return err
		}
		pending.brand.ID = id
		if err := s.brands.Save(ctx, pending.brand); err != nil {
			return fmt.Errorf("create brand: %w", err)
		}
		created.brand = pending.brand
		p.BrandID = &pending.brand.ID
		logger.Info(ctx, "brand created", "brand_id", pending.brand.ID, "name", pending.brand.Name)
	}
	if err := s.products.Save(ctx, p); err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	return nil
}

func (s *CatalogCommandService) rollback(ctx context.Context, created newRefs) {
	if created.brand != nil {
		if err := s.brands.Delete(ctx, created.brand.ID); err != nil {
			logger.Error(ctx, "rollback brand failed", "brand_id", created.brand.ID, "error", err)
		}
	}
	if created.category != nil {
		if err := s.categories.Delete(ctx, created.category.ID); err != nil {
			logger.Error(ctx, "rollback category failed", "category_id", created.category.ID, "error", err)
		}
	}
}

func (s *CatalogCommandService) nextCategoryID(ctx context.Context) (uint, error) {
	existing, err := s.categories.List(ctx)
	if err != nil {
		return 0, err
	}
	var maxID uint
	for _, c := range existing {
		maxID = max(maxID, c.ID)
	}
	return maxID + 1, nil
}

func (s *CatalogCommandService) nextBrandID(ctx context.Context) (uint, error) {
	existing, err := s.brands.List(ctx)
	if err != nil {
		return 0, err
	}
	var maxID uint
	for _, b := range existing {
		maxID = max(maxID, b.ID)
	}
	return maxID + 1, nil
}

// resolveCategory 返回已有分类 ID，或待创建的 new: 分类
func (s *CatalogCommandService) resolveCategory(ctx context.Context, value string) (uint, *domain.Category, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil, invalid("category is required")
	}
	if name, ok := strings.CutPrefix(value, NewPrefix); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return 0, nil, invalid("new category name is required")
		}
		return 0, &domain.Category{Name: name, Slug: utils.Slugify(name)}, nil
	}

	id := utils.ParseUint(value)
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return 0, nil, err
	}
	if c == nil {
		return 0, nil, fmt.Errorf("%w: %s", domain.ErrCategoryNotFound, value)
	}
	return c.ID, nil, nil
}

func (s *CatalogCommandService) resolveBrand(ctx context.Context, value string) (*uint, *domain.Brand, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil, nil
	}
	if name, ok := strings.CutPrefix(value, NewPrefix); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, nil, nil
		}
		return nil, &domain.Brand{Name: name}, nil
	}

	id := utils.ParseUint(value)
	b, err := s.brands.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if b == nil {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrBrandNotFound, value)
	}
	return &b.ID, nil, nil
}

// sizeInputs 按下标配对尺码与库存，空尺码忽略
func sizeInputs(sizes, stocks []string) []domain.SizeInput {
	out := make([]domain.SizeInput, 0, len(sizes))
	seen := make(map[string]bool, len(sizes))
	for i, size := range sizes {
		size = strings.TrimSpace(size)
		if size == "" || seen[size] {
			continue
		}
		seen[size] = true
		stock := 0
		if i < len(stocks) {
			if v, err := strconv.Atoi(strings.TrimSpace(stocks[i])); err == nil && v > 0 {
				stock = v
			}
		}
		out = append(out, domain.SizeInput{Size: size, Stock: stock})
	}
	return out
}

// DeleteProduct 删除商品及其尺码、图片，并清理不再被引用的分类与品牌
func (s *CatalogCommandService) DeleteProduct(ctx context.Context, id uint) error {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrProductNotFound
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	event := domain.ProductDeletedEvent{ProductID: id, Timestamp: time.Now()}
	remaining, err := s.products.List(ctx, domain.ProductFilter{CategoryID: p.CategoryID, Limit: 1})
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		if err := s.categories.Delete(ctx, p.CategoryID); err != nil {
			return fmt.Errorf("delete orphan category: %w", err)
		}
		event.RemovedCategoryID = p.CategoryID
	}
	if p.BrandID != nil {
		remaining, err := s.products.List(ctx, domain.ProductFilter{BrandID: *p.BrandID, Limit: 1})
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			if err := s.brands.Delete(ctx, *p.BrandID); err != nil {
				return fmt.Errorf("delete orphan brand: %w", err)
			}
			event.RemovedBrandID = *p.BrandID
		}
	}

	logger.Info(ctx, "product deleted", "product_id", id, "removed_category", event.RemovedCategoryID, "removed_brand", event.RemovedBrandID)
	s.publish(ctx, domain.TopicProductDeleted, id, event)
	return nil
}

// DecreaseStock 扣减库存（最低为 0）
func (s *CatalogCommandService) DecreaseStock(ctx context.Context, productID uint, qty int) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrProductNotFound
	}
	old := p.DecreaseStock(qty)
	if err := s.products.Save(ctx, p); err != nil {
		return fmt.Errorf("save stock: %w", err)
	}
	s.publish(ctx, domain.TopicProductStockChanged, p.ID, domain.ProductStockChangedEvent{
		ProductID: p.ID, OldStock: old, NewStock: p.Stock, Timestamp: time.Now(),
	})
	return nil
}
