package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// 性别取值
const (
	GenderUnisex = "unisex"
	GenderMen    = "men"
	GenderWomen  = "women"
)

// LowStockThreshold 低库存阈值（不含）
const LowStockThreshold = 10

// Category 商品分类
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"column:name;type:varchar(200);not null" json:"name"`
	Slug        string `gorm:"column:slug;type:varchar(200);uniqueIndex" json:"slug"`
	Description string `gorm:"column:description;type:text" json:"description,omitempty"`
	Image       string `gorm:"column:image;type:varchar(500)" json:"image,omitempty"`
}

func (Category) TableName() string { return "categories" }

// Brand 品牌
type Brand struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"column:name;type:varchar(200);not null" json:"name"`
	ImageURL string `gorm:"column:image_url;type:varchar(500)" json:"image_url"`
}

func (Brand) TableName() string { return "brands" }

// Product 商品，Category/Brand 在读取时由仓储填充
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CategoryID  uint            `gorm:"column:category_id;index;not null" json:"category_id"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	BrandID     *uint           `gorm:"column:brand_id;index" json:"brand_id,omitempty"`
	Brand       *Brand          `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	Name        string          `gorm:"column:name;type:varchar(200);not null" json:"name"`
	Slug        string          `gorm:"column:slug;type:varchar(200);index" json:"slug"`
	Description string          `gorm:"column:description;type:text" json:"description"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	OfferPrice  decimal.Decimal `gorm:"column:offer_price;type:decimal(10,2);not null;default:0" json:"offer_price"`
	Gender      string          `gorm:"column:gender;type:varchar(30);default:unisex" json:"gender"`
	Color       string          `gorm:"column:color;type:varchar(50)" json:"color"`
	Material    string          `gorm:"column:material;type:varchar(80)" json:"material"`
	Stock       int             `gorm:"column:stock;not null;default:0" json:"stock"`
	Available   bool            `gorm:"column:available;not null;default:true" json:"available"`
	IsFeatured  bool            `gorm:"column:is_featured;not null;default:false" json:"is_featured"`
	ImageURL    string          `gorm:"column:image_url;type:varchar(500)" json:"image_url"`
	CreatedAt   time.Time       `json:"created"`
	UpdatedAt   time.Time       `json:"updated"`
}

func (Product) TableName() string { return "products" }

// EffectivePrice 有效售价：存在低于原价的优惠价时取优惠价
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.OfferPrice.IsPositive() && p.OfferPrice.LessThan(p.Price) {
		return p.OfferPrice
	}
	return p.Price
}

// IsOutOfStock 是否缺货
func (p *Product) IsOutOfStock() bool { return p.Stock == 0 }

// IsLowStock 是否低库存（有货但少于阈值）
func (p *Product) IsLowStock() bool {
	return p.Stock > 0 && p.Stock < LowStockThreshold
}

// DecreaseStock 扣减库存，最低为 0，返回扣减前的库存
func (p *Product) DecreaseStock(qty int) int {
	old := p.Stock
	p.Stock = max(0, p.Stock-qty)
	return old
}

// BrandName 品牌名称，无品牌时为空
func (p *Product) BrandName() string {
	if p.Brand == nil {
		return ""
	}
	return p.Brand.Name
}

// ProductImage 商品图片
type ProductImage struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `gorm:"column:product_id;index;not null" json:"product_id"`
	ImageURL  string `gorm:"column:image_url;type:varchar(500)" json:"image_url"`
	IsPrimary bool   `gorm:"column:is_primary" json:"is_primary"`
}

func (ProductImage) TableName() string { return "product_images" }

// ProductSize 商品尺码及其库存，(product, size) 唯一
type ProductSize struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `gorm:"column:product_id;uniqueIndex:idx_product_size;not null" json:"product_id"`
	Size      string `gorm:"column:size;type:varchar(20);uniqueIndex:idx_product_size" json:"size"`
	Stock     int    `gorm:"column:stock;not null;default:0" json:"stock"`
}

func (ProductSize) TableName() string { return "product_sizes" }

// SizeInput 编辑商品时提交的尺码
type SizeInput struct {
	Size  string
	Stock int
}
