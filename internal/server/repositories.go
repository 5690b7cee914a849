// Package server 组装仓储、应用服务与 HTTP/gRPC 服务器
package server

import (
	"context"

	cartdomain "github.com/wyfcoding/nexoshop/internal/cart/domain"
	cartmock "github.com/wyfcoding/nexoshop/internal/cart/infrastructure/persistence/mockdb"
	cartsql "github.com/wyfcoding/nexoshop/internal/cart/infrastructure/persistence/mysql"
	catalogdomain "github.com/wyfcoding/nexoshop/internal/catalog/domain"
	catalogmock "github.com/wyfcoding/nexoshop/internal/catalog/infrastructure/persistence/mockdb"
	catalogsql "github.com/wyfcoding/nexoshop/internal/catalog/infrastructure/persistence/mysql"
	memdb "github.com/wyfcoding/nexoshop/internal/mockdb"
	orderdomain "github.com/wyfcoding/nexoshop/internal/order/domain"
	ordermock "github.com/wyfcoding/nexoshop/internal/order/infrastructure/persistence/mockdb"
	ordersql "github.com/wyfcoding/nexoshop/internal/order/infrastructure/persistence/mysql"
	userdomain "github.com/wyfcoding/nexoshop/internal/user/domain"
	usermock "github.com/wyfcoding/nexoshop/internal/user/infrastructure/persistence/mockdb"
	usersql "github.com/wyfcoding/nexoshop/internal/user/infrastructure/persistence/mysql"
	"github.com/wyfcoding/nexoshop/pkg/db"
)

// Repositories 各上下文的仓储
type Repositories struct {
	Categories catalogdomain.CategoryRepository
	Brands     catalogdomain.BrandRepository
	Products   catalogdomain.ProductRepository
	Users      userdomain.UserRepository
	Customers  userdomain.CustomerRepository
	Carts      cartdomain.CartRepository
	Orders     orderdomain.OrderRepository

	// Counts 健康检查中的表行数，可为空
	Counts func() map[string]int
}

// MockRepositories 基于 JSON fixture 内存库的仓储
func MockRepositories(store *memdb.Store) Repositories {
	return Repositories{
		Categories: catalogmock.NewCategoryRepository(store),
		Brands:     catalogmock.NewBrandRepository(store),
		Products:   catalogmock.NewProductRepository(store),
		Users:      usermock.NewUserRepository(store),
		Customers:  usermock.NewCustomerRepository(store),
		Carts:      cartmock.NewCartRepository(store),
		Orders:     ordermock.NewOrderRepository(store),
		Counts:     store.Counts,
	}
}

// GormRepositories 基于 MySQL/PostgreSQL 的仓储，migrate 为 true 时先自动建表
func GormRepositories(ctx context.Context, database *db.DB, migrate bool) (Repositories, error) {
	if migrate {
		var models []any
		models = append(models, catalogsql.Models()...)
		models = append(models, usersql.Models()...)
		models = append(models, cartsql.Models()...)
		models = append(models, ordersql.Models()...)
		if err := database.AutoMigrate(ctx, models...); err != nil {
			return Repositories{}, err
		}
	}
	gdb := database.DB
	return Repositories{
		Categories: catalogsql.NewCategoryRepository(gdb),
		Brands:     catalogsql.NewBrandRepository(gdb),
		Products:   catalogsql.NewProductRepository(gdb),
		Users:      usersql.NewUserRepository(gdb),
		Customers:  usersql.NewCustomerRepository(gdb),
		Carts:      cartsql.NewCartRepository(gdb),
		Orders:     ordersql.NewOrderRepository(gdb),
	}, nil
}
