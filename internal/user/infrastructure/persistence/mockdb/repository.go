// Package mockdb 基于内存库的账户与顾客仓储
package mockdb

import (
	"context"
	"errors"
	"time"

	memdb "github.com/wyfcoding/nexoshop/internal/mockdb"
	"github.com/wyfcoding/nexoshop/internal/user/domain"
)

// userRepository 账户仓储实现
type userRepository struct {
	store *memdb.Store
}

// NewUserRepository 创建账户仓储
func NewUserRepository(store *memdb.Store) domain.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Save(ctx context.Context, u *domain.UserAccount) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	saved := r.store.Users.Save(*u)
	u.ID = saved.ID
	r.store.Persist(ctx, memdb.TableUsers)
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id uint) (*domain.UserAccount, error) {
	u, err := r.store.Users.GetByID(id)
	if errors.Is(err, memdb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.UserAccount, error) {
	email = domain.NormalizeEmail(email)
	rows := r.store.Users.Filter(func(u *domain.UserAccount) bool {
		return domain.NormalizeEmail(u.Email) == email
	})
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *userRepository) List(_ context.Context, role string) ([]*domain.UserAccount, error) {
	rows := r.store.Users.Filter(func(u *domain.UserAccount) bool {
		return role == "" || u.Role == role
	})
	out := make([]*domain.UserAccount, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if r.store.Users.Delete(id) {
		r.store.Persist(ctx, memdb.TableUsers)
	}
	return nil
}

// customerRepository 顾客资料仓储实现
type customerRepository struct {
	store *memdb.Store
}

// NewCustomerRepository 创建顾客资料仓储
func NewCustomerRepository(store *memdb.Store) domain.CustomerRepository {
	return &customerRepository{store: store}
}

func (r *customerRepository) Save(ctx context.Context, c *domain.Customer) error {
	saved := r.store.Customers.Save(*c)
	c.ID = saved.ID
	r.store.Persist(ctx, memdb.TableCustomers)
	return nil
}

func (r *customerRepository) GetByID(_ context.Context, id uint) (*domain.Customer, error) {
	c, err := r.store.Customers.GetByID(id)
	if errors.Is(err, memdb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	email = domain.NormalizeEmail(email)
	rows := r.store.Customers.Filter(func(c *domain.Customer) bool {
		return domain.NormalizeEmail(c.Email) == email
	})
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *customerRepository) List(_ context.Context) ([]*domain.Customer, error) {
	rows := r.store.Customers.All()
	out := make([]*domain.Customer, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

func (r *customerRepository) Delete(ctx context.Context, id uint) error {
	if r.store.Customers.Delete(id) {
		r.store.Persist(ctx, memdb.TableCustomers)
	}
	return nil
}
