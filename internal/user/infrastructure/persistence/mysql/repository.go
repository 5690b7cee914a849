// Package mysql 基于 gorm 的账户与顾客仓储
package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/nexoshop/internal/user/domain"
	"gorm.io/gorm"
)

// userRepository 账户仓储实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建账户仓储
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Save(ctx context.Context, u *domain.UserAccount) error {
	u.Email = domain.NormalizeEmail(u.Email)
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*domain.UserAccount, error) {
	var u domain.UserAccount
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	var u domain.UserAccount
	if err := r.db.WithContext(ctx).Where("email = ?", domain.NormalizeEmail(email)).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) List(ctx context.Context, role string) ([]*domain.UserAccount, error) {
	query := r.db.WithContext(ctx)
	if role != "" {
		query = query.Where("role = ?", role)
	}
	var rows []*domain.UserAccount
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.UserAccount{}, id).Error
}

// customerRepository 顾客资料仓储实现
type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository 创建顾客资料仓储
func NewCustomerRepository(db *gorm.DB) domain.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Save(ctx context.Context, c *domain.Customer) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *customerRepository) GetByID(ctx context.Context, id uint) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.db.WithContext(ctx).Where("LOWER(email) = ?", domain.NormalizeEmail(email)).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	var rows []*domain.Customer
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *customerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Customer{}, id).Error
}

// Models AutoMigrate 使用的模型
func Models() []any {
	return []any{&domain.Customer{}, &domain.UserAccount{}}
}
