package domain

import "time"

// 事件 topic
const (
	TopicProductCreated      = "catalog.product.created"
	TopicProductUpdated      = "catalog.product.updated"
	TopicProductDeleted      = "catalog.product.deleted"
	TopicProductStockChanged = "catalog.product.stock_changed"
)

// ProductCreatedEvent 商品创建事件
type ProductCreatedEvent struct {
	ProductID  uint      `json:"product_id"`
	Name       string    `json:"name"`
	Price      string    `json:"price"`
	Stock      int       `json:"stock"`
	CategoryID uint      `json:"category_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// ProductUpdatedEvent 商品更新事件
type ProductUpdatedEvent struct {
	ProductID  uint      `json:"product_id"`
	Name       string    `json:"name"`
	Price      string    `json:"price"`
	Stock      int       `json:"stock"`
	CategoryID uint      `json:"category_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// ProductDeletedEvent 商品删除事件
type ProductDeletedEvent struct {
	ProductID         uint      `json:"product_id"`
	RemovedCategoryID uint      `json:"removed_category_id,omitempty"`
	RemovedBrandID    uint      `json:"removed_brand_id,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// ProductStockChangedEvent 商品库存变更事件
type ProductStockChangedEvent struct {
	ProductID uint      `json:"product_id"`
	OldStock  int       `json:"old_stock"`
	NewStock  int       `json:"new_stock"`
	Timestamp time.Time `json:"timestamp"`
}
