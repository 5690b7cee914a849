package application

import (
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/nexoshop/internal/catalog/domain"
)

// 后台商品状态过滤
const (
	StatusAvailable  = "available"
	StatusOutOfStock = "out_of_stock"
)

// HomeLimit 首页展示的商品数
const HomeLimit = 8

// NewPrefix 分类或品牌取值以此开头时新建
const NewPrefix = "new:"

// ProductCommand 后台新建或编辑商品
type ProductCommand struct {
	Name        string
	Description string
	Price       decimal.Decimal
	OfferPrice  decimal.Decimal
	Stock       int
	Available   bool
	IsFeatured  bool
	Gender      string
	Color       string
	Material    string
	ImageURL    string
	// 分类 ID 或 "new:<名称>"
	Category string
	// 品牌 ID、"new:<名称>" 或空
	Brand      string
	Sizes      []string
	SizeStocks []string
}

// StorefrontFilter 前台商品列表条件
type StorefrontFilter struct {
	CategorySlug string
	Brand        string
	Color        string
	Material     string
}

// AdminProductFilter 后台商品列表条件
type AdminProductFilter struct {
	CategoryID uint
	Status     string
	Query      string
}

// Facets 前台筛选项
type Facets struct {
	Brands    []string `json:"brands"`
	Colors    []string `json:"colors"`
	Materials []string `json:"materials"`
}

// ProductListResult 前台商品列表
type ProductListResult struct {
	Category   *domain.Category   `json:"category,omitempty"`
	Categories []*domain.Category `json:"categories"`
	Products   []*domain.Product  `json:"products"`
	Facets     Facets             `json:"facets"`
	Filter     StorefrontFilter   `json:"filter"`
}

// ProductDetail 商品详情
type ProductDetail struct {
	Product *domain.Product        `json:"product"`
	Sizes   []*domain.ProductSize  `json:"sizes"`
	Images  []*domain.ProductImage `json:"images"`
}

// AdminProductList 后台商品列表
type AdminProductList struct {
	Products   []*domain.Product  `json:"products"`
	Categories []*domain.Category `json:"categories"`
	Brands     []*domain.Brand    `json:"brands"`
	Filter     AdminProductFilter `json:"filter"`
}
