package mockdb

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	cart "github.com/wyfcoding/nexoshop/internal/cart/domain"
	catalog "github.com/wyfcoding/nexoshop/internal/catalog/domain"
	order "github.com/wyfcoding/nexoshop/internal/order/domain"
	user "github.com/wyfcoding/nexoshop/internal/user/domain"
	"github.com/wyfcoding/nexoshop/pkg/logger"
	"github.com/wyfcoding/nexoshop/pkg/metrics"
)

// Store 全部内存表
type Store struct {
	Categories    *Table[catalog.Category]
	Brands        *Table[catalog.Brand]
	Products      *Table[catalog.Product]
	ProductImages *Table[catalog.ProductImage]
	ProductSizes  *Table[catalog.ProductSize]
	Customers     *Table[user.Customer]
	Users         *Table[user.UserAccount]
	Carts         *Table[cart.Cart]
	CartItems     *Table[cart.CartItem]
	Orders        *Table[order.Order]
	OrderItems    *Table[order.OrderItem]

	// 跨表写操作串行执行
	txMu      sync.Mutex
	persister *Persister
	metrics   *metrics.Metrics
}

// NewStore 创建空库
func NewStore() *Store {
	return &Store{
		Categories: NewTable(TableCategories,
			func(r *catalog.Category) uint { return r.ID }, func(r *catalog.Category, id uint) { r.ID = id }),
		Brands: NewTable(TableBrands,
			func(r *catalog.Brand) uint { return r.ID }, func(r *catalog.Brand, id uint) { r.ID = id }),
		Products: NewTable(TableProducts,
			func(r *catalog.Product) uint { return r.ID }, func(r *catalog.Product, id uint) { r.ID = id }),
		ProductImages: NewTable(TableProductImages,
			func(r *catalog.ProductImage) uint { return r.ID }, func(r *catalog.ProductImage, id uint) { r.ID = id }),
		ProductSizes: NewTable(TableProductSizes,
			func(r *catalog.ProductSize) uint { return r.ID }, func(r *catalog.ProductSize, id uint) { r.ID = id }),
		Customers: NewTable(TableCustomers,
			func(r *user.Customer) uint { return r.ID }, func(r *user.Customer, id uint) { r.ID = id }),
		Users: NewTable(TableUsers,
			func(r *user.UserAccount) uint { return r.ID }, func(r *user.UserAccount, id uint) { r.ID = id }),
		Carts: NewTable(TableCarts,
			func(r *cart.Cart) uint { return r.ID }, func(r *cart.Cart, id uint) { r.ID = id }),
		CartItems: NewTable(TableCartItems,
			func(r *cart.CartItem) uint { return r.ID }, func(r *cart.CartItem, id uint) { r.ID = id }),
		Orders: NewTable(TableOrders,
			func(r *order.Order) uint { return r.ID }, func(r *order.Order, id uint) { r.ID = id }),
		OrderItems: NewTable(TableOrderItems,
			func(r *order.OrderItem) uint { return r.ID }, func(r *order.OrderItem, id uint) { r.ID = id }),
	}
}

// Open 从目录加载 fixture 并组装；persist 为 true 时变更写回同一目录
func Open(ctx context.Context, dir string, persist bool, m *metrics.Metrics) (*Store, error) {
	fixtures, err := LoadFixtures(ctx, dir)
	if err != nil {
		return nil, err
	}
	s := NewStore()
	s.metrics = m
	s.Apply(ctx, fixtures)
	if persist {
		s.persister = NewPersister(dir, m)
	}
	return s, nil
}

// SetPersister 设置持久化器，nil 表示不落盘
func (s *Store) SetPersister(p *Persister) { s.persister = p }

// Atomic 串行执行跨表写操作
func (s *Store) Atomic(fn func() error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn()
}

// Counts 各表行数
func (s *Store) Counts() map[string]int {
	return map[string]int{
		TableCategories:    s.Categories.Len(),
		TableBrands:        s.Brands.Len(),
		TableProducts:      s.Products.Len(),
		TableProductImages: s.ProductImages.Len(),
		TableProductSizes:  s.ProductSizes.Len(),
		TableCustomers:     s.Customers.Len(),
		TableUsers:         s.Users.Len(),
		TableCarts:         s.Carts.Len(),
		TableCartItems:     s.CartItems.Len(),
		TableOrders:        s.Orders.Len(),
		TableOrderItems:    s.OrderItems.Len(),
	}
}

func (s *Store) refreshGauges() {
	if s.metrics == nil {
		return
	}
	for table, n := range s.Counts() {
		s.metrics.SetTableRows(table, n)
	}
}

func skip(ctx context.Context, table string, id uint, reason string) {
	logger.Warn(ctx, "mockdb row skipped", "table", table, "id", id, "reason", reason)
}

// Apply 按外键顺序组装全部表；无效行记录告警后跳过，不会失败
func (s *Store) Apply(ctx context.Context, f *Fixtures) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	categories := make([]catalog.Category, 0, len(f.Categories))
	categoryIDs := make(map[uint]bool, len(f.Categories))
	for _, r := range f.Categories {
		categories = append(categories, r.toEntity())
		categoryIDs[r.ID] = true
	}
	s.Categories.BulkSet(categories)

	brands := make([]catalog.Brand, 0, len(f.Brands))
	brandIDs := make(map[uint]bool, len(f.Brands))
	for _, r := range f.Brands {
		brands = append(brands, r.toEntity())
		brandIDs[r.ID] = true
	}
	s.Brands.BulkSet(brands)

	products := make([]catalog.Product, 0, len(f.Products))
	productIDs := make(map[uint]bool, len(f.Products))
	for _, r := range f.Products {
		if !categoryIDs[r.Category] {
			skip(ctx, TableProducts, r.ID, "unknown category")
			continue
		}
		p := r.toEntity()
		if p.BrandID != nil && !brandIDs[*p.BrandID] {
			logger.Warn(ctx, "mockdb brand dropped", "table", TableProducts, "id", r.ID, "brand", *p.BrandID)
			p.BrandID = nil
		}
		products = append(products, p)
		productIDs[p.ID] = true
	}
	s.Products.BulkSet(products)

	images := make([]catalog.ProductImage, 0, len(f.ProductImages))
	for _, r := range f.ProductImages {
		if !productIDs[r.Product] {
			skip(ctx, TableProductImages, r.ID, "unknown product")
			continue
		}
		images = append(images, r.toEntity())
	}
	s.ProductImages.BulkSet(images)

	sizes := make([]catalog.ProductSize, 0, len(f.ProductSizes))
	for _, r := range f.ProductSizes {
		if !productIDs[r.Product] {
			skip(ctx, TableProductSizes, r.ID, "unknown product")
			continue
		}
		sizes = append(sizes, r.toEntity())
	}
	s.ProductSizes.BulkSet(sizes)

	customers := make([]user.Customer, 0, len(f.Customers))
	customerIDs := make(map[uint]bool, len(f.Customers))
	for _, r := range f.Customers {
		customers = append(customers, r.toEntity())
		customerIDs[r.ID] = true
	}
	s.Customers.BulkSet(customers)

	s.Users.BulkSet(buildUsers(ctx, f))

	carts := make([]cart.Cart, 0, len(f.Carts))
	cartIDs := make(map[uint]bool, len(f.Carts))
	for _, r := range f.Carts {
		if !customerIDs[r.Customer] {
			skip(ctx, TableCarts, r.ID, "unknown customer")
			continue
		}
		carts = append(carts, r.toEntity())
		cartIDs[r.ID] = true
	}
	s.Carts.BulkSet(carts)

	cartItems := make([]cart.CartItem, 0, len(f.CartItems))
	for _, r := range f.CartItems {
		if !cartIDs[r.Cart] || !productIDs[r.Product] {
			skip(ctx, TableCartItems, r.ID, "unknown cart or product")
			continue
		}
		cartItems = append(cartItems, r.toEntity())
	}
	s.CartItems.BulkSet(cartItems)

	orders := make([]order.Order, 0, len(f.Orders))
	for _, r := range f.Orders {
		o := r.toEntity()
		if o.CustomerID != nil && !customerIDs[*o.CustomerID] {
			o.CustomerID = nil
		}
		orders = append(orders, o)
	}
	if len(orders) == 0 && len(f.OrderItems) > 0 {
		orders = append(orders, defaultOrder(customers))
	}

	orderIdx := make(map[uint]int, len(orders))
	for i := range orders {
		orderIdx[orders[i].ID] = i
	}
	items := make([]order.OrderItem, 0, len(f.OrderItems))
	totals := make(map[uint]decimal.Decimal, len(orders))
	for _, r := range f.OrderItems {
		if !productIDs[r.Product] {
			skip(ctx, TableOrderItems, r.ID, "unknown product")
			continue
		}
		it := r.toEntity()
		if _, ok := orderIdx[it.OrderID]; !ok {
			if len(orders) == 0 {
				skip(ctx, TableOrderItems, r.ID, "no order to attach")
				continue
			}
			it.OrderID = orders[0].ID
		}
		items = append(items, it)
		totals[it.OrderID] = totals[it.OrderID].Add(it.Cost())
	}
	for i := range orders {
		if !orders[i].Total.IsZero() {
			continue
		}
		if total, ok := totals[orders[i].ID]; ok {
			orders[i].Subtotal = total
			orders[i].Total = total
		}
	}
	s.Orders.BulkSet(orders)
	s.OrderItems.BulkSet(items)

	s.refreshGauges()
	logger.Info(ctx, "mockdb applied",
		"categories", len(categories), "brands", len(brands), "products", len(products),
		"customers", len(customers), "users", s.Users.Len(), "orders", len(orders), "order_items", len(items))
}

// buildUsers users.json 非空时以其为准；否则 admin.json 加上由顾客派生的账户
func buildUsers(ctx context.Context, f *Fixtures) []user.UserAccount {
	var users []user.UserAccount
	if len(f.Users) > 0 {
		for _, r := range f.Users {
			users = append(users, r.toEntity(user.RoleCustomer))
		}
	} else {
		for _, r := range f.Admins {
			users = append(users, r.toEntity(user.RoleAdmin))
		}
		// 派生账户不沿用顾客 ID，统一按顺序分配 max+1
		for _, c := range f.Customers {
			users = append(users, user.UserAccount{
				Email:     c.Email,
				Role:      user.RoleCustomer,
				FirstName: c.FirstName,
				LastName:  c.LastName,
				IsActive:  true,
			})
		}
	}

	var maxID uint
	for _, u := range users {
		maxID = max(maxID, u.ID)
	}
	used := make(map[uint]bool, len(users))
	emails := make(map[string]bool, len(users))
	out := make([]user.UserAccount, 0, len(users))
	for _, u := range users {
		email := user.NormalizeEmail(u.Email)
		if email != "" && emails[email] {
			skip(ctx, TableUsers, u.ID, "duplicate email")
			continue
		}
		if u.ID == 0 || used[u.ID] {
			maxID++
			u.ID = maxID
		}
		used[u.ID] = true
		emails[email] = true
		out = append(out, u)
	}
	return out
}

func defaultOrder(customers []user.Customer) order.Order {
	o := order.Order{
		ID:          1,
		OrderNumber: order.OrderNumberFor(1),
		Status:      order.StatusPending,
	}
	if len(customers) > 0 {
		c := customers[0]
		id := c.ID
		o.CustomerID = &id
		o.FirstName = c.FirstName
		o.LastName = c.LastName
		o.Email = c.Email
		o.Address = c.Address
		o.PostalCode = c.PostalCode
		o.City = c.City
	}
	return o
}

// Persist 将指定表写回 fixture，失败只记录不返回
func (s *Store) Persist(ctx context.Context, tables ...string) {
	s.refreshGauges()
	if s.persister == nil {
		return
	}
	for _, t := range tables {
		s.persister.SaveQuietly(ctx, s, t)
	}
}

// records 返回表的 fixture 记录
func (s *Store) records(table string) (any, bool) {
	switch table {
	case TableCategories:
		return convert(s.Categories.All(), categoryRecord), true
	case TableBrands:
		return convert(s.Brands.All(), brandRecord), true
	case TableProducts:
		return convert(s.Products.All(), productRecord), true
	case TableProductImages:
		return convert(s.ProductImages.All(), productImageRecord), true
	case TableProductSizes:
		return convert(s.ProductSizes.All(), productSizeRecord), true
	case TableCustomers:
		return convert(s.Customers.All(), customerRecord), true
	case TableUsers:
		return convert(s.Users.All(), userRecord), true
	case TableCarts:
		return convert(s.Carts.All(), cartRecord), true
	case TableCartItems:
		return convert(s.CartItems.All(), cartItemRecord), true
	case TableOrders:
		return convert(s.Orders.All(), orderRecord), true
	case TableOrderItems:
		return convert(s.OrderItems.All(), orderItemRecord), true
	default:
		return nil, false
	}
}

// TableNames 全部表名，按外键顺序
func TableNames() []string {
	return []string{
		TableCategories, TableBrands, TableProducts, TableProductImages, TableProductSizes,
		TableCustomers, TableUsers, TableCarts, TableCartItems, TableOrders, TableOrderItems,
	}
}

func convert[T, R any](rows []T, fn func(*T) R) []R {
	out := make([]R, 0, len(rows))
	for i := range rows {
		out = append(out, fn(&rows[i]))
	}
	return out
}

