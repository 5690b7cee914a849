package mockdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	cart "github.com/wyfcoding/nexoshop/internal/cart/domain"
	catalog "github.com/wyfcoding/nexoshop/internal/catalog/domain"
	order "github.com/wyfcoding/nexoshop/internal/order/domain"
	user "github.com/wyfcoding/nexoshop/internal/user/domain"
)

// Money fixture 中的金额：读取时接受字符串、数字、null 或空串，按原精度写出为字符串
type Money struct {
	decimal.Decimal
}

// M 构造 Money
func M(d decimal.Decimal) Money { return Money{Decimal: d} }

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		m.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid money %q: %w", s, err)
	}
	m.Decimal = d
	return nil
}

// CategoryRecord categories.json
type CategoryRecord struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// BrandRecord brands.json
type BrandRecord struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// ProductRecord products.json
type ProductRecord struct {
	ID          uint   `json:"id"`
	Category    uint   `json:"category"`
	Brand       *uint  `json:"brand,omitempty"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Price       Money  `json:"price"`
	Available   *bool  `json:"available"`
	OfferPrice  Money  `json:"offer_price"`
	Gender      string `json:"gender"`
	Color       string `json:"color"`
	Material    string `json:"material"`
	Stock       int    `json:"stock"`
	IsFeatured  bool   `json:"is_featured"`
}

// ProductImageRecord product_images.json
type ProductImageRecord struct {
	ID        uint   `json:"id"`
	Product   uint   `json:"product"`
	ImageURL  string `json:"image_url"`
	IsPrimary bool   `json:"is_primary"`
}

// ProductSizeRecord product_sizes.json
type ProductSizeRecord struct {
	ID      uint   `json:"id"`
	Product uint   `json:"product"`
	Size    string `json:"size"`
	Stock   int    `json:"stock"`
}

// CustomerRecord customers.json
type CustomerRecord struct {
	ID         uint   `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// UserRecord users.json 与 admin.json；ID 可能缺失或重复，组装时修正
type UserRecord struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role,omitempty"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsActive     *bool  `json:"is_active"`
}

// CartRecord carts.json
type CartRecord struct {
	ID       uint `json:"id"`
	Customer uint `json:"customer"`
}

// CartItemRecord cart_items.json
type CartItemRecord struct {
	ID       uint   `json:"id"`
	Cart     uint   `json:"cart"`
	Product  uint   `json:"product"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// OrderRecord orders.json
type OrderRecord struct {
	ID              uint      `json:"id"`
	Customer        *uint     `json:"customer"`
	OrderNumber     string    `json:"order_number"`
	Status          string    `json:"status"`
	Subtotal        Money     `json:"subtotal"`
	Taxes           Money     `json:"taxes"`
	ShippingCost    Money     `json:"shipping_cost"`
	Discount        Money     `json:"discount"`
	Total           Money     `json:"total"`
	Paid            bool      `json:"paid"`
	ShippingMethod  string    `json:"shipping_method"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	Address         string    `json:"address"`
	PostalCode      string    `json:"postal_code"`
	City            string    `json:"city"`
	PaymentMethod   string    `json:"payment_method"`
	ShippingAddress string    `json:"shipping_address"`
	Phone           string    `json:"phone"`
	TransactionID   string    `json:"transaction_id,omitempty"`
	Created         time.Time `json:"created,omitzero"`
}

// OrderItemRecord order_items.json
type OrderItemRecord struct {
	ID       uint   `json:"id"`
	Order    *uint  `json:"order"`
	Product  uint   `json:"product"`
	Size     string `json:"size,omitempty"`
	Price    Money  `json:"price"`
	Quantity *int   `json:"quantity"`
}

// --- record → entity ---

func (r CategoryRecord) toEntity() catalog.Category {
	return catalog.Category{ID: r.ID, Name: r.Name, Slug: r.Slug, Description: r.Description, Image: r.Image}
}

func (r BrandRecord) toEntity() catalog.Brand {
	return catalog.Brand{ID: r.ID, Name: r.Name, ImageURL: r.ImageURL}
}

func (r ProductRecord) toEntity() catalog.Product {
	p := catalog.Product{
		ID:          r.ID,
		CategoryID:  r.Category,
		BrandID:     r.Brand,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
		Price:       r.Price.Decimal,
		OfferPrice:  r.OfferPrice.Decimal,
		Gender:      r.Gender,
		Color:       r.Color,
		Material:    r.Material,
		Stock:       max(0, r.Stock),
		Available:   r.Available == nil || *r.Available,
		IsFeatured:  r.IsFeatured,
		ImageURL:    r.ImageURL,
	}
	if p.Slug == "" {
		p.Slug = strings.ReplaceAll(strings.ToLower(p.Name), " ", "-")
	}
	if p.Gender == "" {
		p.Gender = catalog.GenderUnisex
	}
	return p
}

func (r ProductImageRecord) toEntity() catalog.ProductImage {
	return catalog.ProductImage{ID: r.ID, ProductID: r.Product, ImageURL: r.ImageURL, IsPrimary: r.IsPrimary}
}

func (r ProductSizeRecord) toEntity() catalog.ProductSize {
	return catalog.ProductSize{ID: r.ID, ProductID: r.Product, Size: r.Size, Stock: max(0, r.Stock)}
}

func (r CustomerRecord) toEntity() user.Customer {
	return user.Customer{
		ID: r.ID, FirstName: r.FirstName, LastName: r.LastName, Email: r.Email,
		Phone: r.Phone, Address: r.Address, City: r.City, PostalCode: r.PostalCode,
	}
}

func (r UserRecord) toEntity(defaultRole string) user.UserAccount {
	role := r.Role
	if role == "" {
		role = defaultRole
	}
	var id uint
	if r.ID > 0 {
		id = uint(r.ID)
	}
	return user.UserAccount{
		ID:           id,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         role,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		IsActive:     r.IsActive == nil || *r.IsActive,
	}
}

func (r CartRecord) toEntity() cart.Cart {
	return cart.Cart{ID: r.ID, CustomerID: r.Customer}
}

func (r CartItemRecord) toEntity() cart.CartItem {
	return cart.CartItem{ID: r.ID, CartID: r.Cart, ProductID: r.Product, Size: r.Size, Quantity: r.Quantity}
}

func (r OrderRecord) toEntity() order.Order {
	status := r.Status
	if status == "" {
		status = order.StatusPending
	}
	return order.Order{
		ID:              r.ID,
		CustomerID:      r.Customer,
		OrderNumber:     r.OrderNumber,
		Status:          status,
		Subtotal:        r.Subtotal.Decimal,
		Taxes:           r.Taxes.Decimal,
		ShippingCost:    r.ShippingCost.Decimal,
		Discount:        r.Discount.Decimal,
		Total:           r.Total.Decimal,
		Paid:            r.Paid,
		ShippingMethod:  r.ShippingMethod,
		PaymentMethod:   r.PaymentMethod,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Email:           r.Email,
		Address:         r.Address,
		PostalCode:      r.PostalCode,
		City:            r.City,
		Phone:           r.Phone,
		ShippingAddress: r.ShippingAddress,
		TransactionID:   r.TransactionID,
		CreatedAt:       r.Created,
		UpdatedAt:       r.Created,
	}
}

// toEntity quantity 缺省时为 1，显式 0 保留
func (r OrderItemRecord) toEntity() order.OrderItem {
	qty := 1
	if r.Quantity != nil {
		qty = *r.Quantity
	}
	var orderID uint
	if r.Order != nil {
		orderID = *r.Order
	}
	return order.OrderItem{ID: r.ID, OrderID: orderID, ProductID: r.Product, Size: r.Size, Price: r.Price.Decimal, Quantity: qty}
}

// --- entity → record ---

func categoryRecord(c *catalog.Category) CategoryRecord {
	return CategoryRecord{ID: c.ID, Name: c.Name, Slug: c.Slug, Description: c.Description, Image: c.Image}
}

func brandRecord(b *catalog.Brand) BrandRecord {
	return BrandRecord{ID: b.ID, Name: b.Name, ImageURL: b.ImageURL}
}

func productRecord(p *catalog.Product) ProductRecord {
	available := p.Available
	return ProductRecord{
		ID:          p.ID,
		Category:    p.CategoryID,
		Brand:       p.BrandID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Price:       M(p.Price),
		Available:   &available,
		OfferPrice:  M(p.OfferPrice),
		Gender:      p.Gender,
		Color:       p.Color,
		Material:    p.Material,
		Stock:       p.Stock,
		IsFeatured:  p.IsFeatured,
	}
}

func productImageRecord(i *catalog.ProductImage) ProductImageRecord {
	return ProductImageRecord{ID: i.ID, Product: i.ProductID, ImageURL: i.ImageURL, IsPrimary: i.IsPrimary}
}

func productSizeRecord(s *catalog.ProductSize) ProductSizeRecord {
	return ProductSizeRecord{ID: s.ID, Product: s.ProductID, Size: s.Size, Stock: s.Stock}
}

func customerRecord(c *user.Customer) CustomerRecord {
	return CustomerRecord{
		ID: c.ID, FirstName: c.FirstName, LastName: c.LastName, Email: c.Email,
		Phone: c.Phone, Address: c.Address, City: c.City, PostalCode: c.PostalCode,
	}
}

func userRecord(u *user.UserAccount) UserRecord {
	active := u.IsActive
	return UserRecord{
		ID:           int(u.ID),
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsActive:     &active,
	}
}

func cartRecord(c *cart.Cart) CartRecord {
	return CartRecord{ID: c.ID, Customer: c.CustomerID}
}

func cartItemRecord(i *cart.CartItem) CartItemRecord {
	return CartItemRecord{ID: i.ID, Cart: i.CartID, Product: i.ProductID, Size: i.Size, Quantity: i.Quantity}
}

func orderRecord(o *order.Order) OrderRecord {
	return OrderRecord{
		ID:              o.ID,
		Customer:        o.CustomerID,
		OrderNumber:     o.OrderNumber,
		Status:          o.Status,
		Subtotal:        M(o.Subtotal),
		Taxes:           M(o.Taxes),
		ShippingCost:    M(o.ShippingCost),
		Discount:        M(o.Discount),
		Total:           M(o.Total),
		Paid:            o.Paid,
		ShippingMethod:  o.ShippingMethod,
		FirstName:       o.FirstName,
		LastName:        o.LastName,
		Email:           o.Email,
		Address:         o.Address,
		PostalCode:      o.PostalCode,
		City:            o.City,
		PaymentMethod:   o.PaymentMethod,
		ShippingAddress: o.ShippingAddress,
		Phone:           o.Phone,
		TransactionID:   o.TransactionID,
		Created:         o.CreatedAt,
	}
}

func orderItemRecord(i *order.OrderItem) OrderItemRecord {
	orderID, qty := i.OrderID, i.Quantity
	return OrderItemRecord{ID: i.ID, Order: &orderID, Product: i.ProductID, Size: i.Size, Price: M(i.Price), Quantity: &qty}
}
