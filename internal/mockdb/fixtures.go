package mockdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/wyfcoding/nexoshop/pkg/logger"
)

// 表名，同时是 data 目录下的文件名（不含扩展名）
const (
	TableCategories    = "categories"
	TableBrands        = "brands"
	TableProducts      = "products"
	TableProductImages = "product_images"
	TableProductSizes  = "product_sizes"
	TableCustomers     = "customers"
	TableUsers         = "users"
	TableCarts         = "carts"
	TableCartItems     = "cart_items"
	TableOrders        = "orders"
	TableOrderItems    = "order_items"

	fileAdmin          = "admin"
	fileLegacyCustomer = "customer"
)

// Fixtures 原始 fixture 数据集
type Fixtures struct {
	Categories    []CategoryRecord
	Brands        []BrandRecord
	Products      []ProductRecord
	ProductImages []ProductImageRecord
	ProductSizes  []ProductSizeRecord
	Admins        []UserRecord
	Customers     []CustomerRecord
	Users         []UserRecord
	Carts         []CartRecord
	CartItems     []CartItemRecord
	Orders        []OrderRecord
	OrderItems    []OrderItemRecord
}

// LoadFixtures 读取 dir 下的 fixture，文件缺失视为空表，格式错误返回带文件名的错误
func LoadFixtures(ctx context.Context, dir string) (*Fixtures, error) {
	f := &Fixtures{}
	loaders := []struct {
		name string
		dest any
	}{
		{TableCategories, &f.Categories},
		{TableBrands, &f.Brands},
		{TableProducts, &f.Products},
		{TableProductImages, &f.ProductImages},
		{TableProductSizes, &f.ProductSizes},
		{fileAdmin, &f.Admins},
		{TableUsers, &f.Users},
		{TableCarts, &f.Carts},
		{TableCartItems, &f.CartItems},
		{TableOrders, &f.Orders},
		{TableOrderItems, &f.OrderItems},
	}
	for _, l := range loaders {
		if _, err := loadFile(ctx, dir, l.name, l.dest); err != nil {
			return nil, err
		}
	}

	found, err := loadFile(ctx, dir, TableCustomers, &f.Customers)
	if err != nil {
		return nil, err
	}
	if !found || len(f.Customers) == 0 {
		if _, err := loadFile(ctx, dir, fileLegacyCustomer, &f.Customers); err != nil {
			return nil, err
		}
	}

	logger.Info(ctx, "mockdb fixtures loaded",
		"dir", dir,
		"categories", len(f.Categories),
		"brands", len(f.Brands),
		"products", len(f.Products),
		"images", len(f.ProductImages),
		"sizes", len(f.ProductSizes),
		"admins", len(f.Admins),
		"customers", len(f.Customers),
		"users", len(f.Users),
		"carts", len(f.Carts),
		"cart_items", len(f.CartItems),
		"orders", len(f.Orders),
		"order_items", len(f.OrderItems),
	)
	return f, nil
}

func loadFile(ctx context.Context, dir, name string, dest any) (bool, error) {
	path := filepath.Join(dir, name+".json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if name != fileLegacyCustomer {
			logger.Warn(ctx, "mockdb fixture not found", "file", path)
		}
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read fixture %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return true, nil
}
