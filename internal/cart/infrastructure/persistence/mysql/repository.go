// Package mysql 基于 gorm 的保存购物车仓储
package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/nexoshop/internal/cart/domain"
	"github.com/wyfcoding/nexoshop/pkg/db"
	"gorm.io/gorm"
)

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建保存购物车仓储
func NewCartRepository(gdb *gorm.DB) domain.CartRepository {
	return &cartRepository{db: gdb}
}

func (r *cartRepository) GetByCustomerID(ctx context.Context, customerID uint) (*domain.Cart, error) {
	var c domain.Cart
	err := r.db.WithContext(ctx).Preload("Items").Where("customer_id = ?", customerID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	return db.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(cart).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return nil
		}
		for i := range cart.Items {
			cart.Items[i].ID = 0
			cart.Items[i].CartID = cart.ID
		}
		return tx.Create(&cart.Items).Error
	})
}

func (r *cartRepository) DeleteByCustomerID(ctx context.Context, customerID uint) error {
	return db.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		sub := tx.Model(&domain.Cart{}).Select("id").Where("customer_id = ?", customerID)
		if err := tx.Where("cart_id IN (?)", sub).Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Where("customer_id = ?", customerID).Delete(&domain.Cart{}).Error
	})
}

// Models AutoMigrate 使用的模型
func Models() []any {
	return []any{&domain.Cart{}, &domain.CartItem{}}
}
