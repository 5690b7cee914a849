package domain

import "context"

// Cart 顾客保存的购物车
type Cart struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CustomerID uint       `gorm:"column:customer_id;uniqueIndex;not null" json:"customer_id"`
	Items      []CartItem `gorm:"foreignKey:CartID" json:"items"`
}

func (Cart) TableName() string { return "carts" }

// CartItem 保存购物车的明细
type CartItem struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CartID    uint   `gorm:"column:cart_id;index;not null" json:"cart_id"`
	ProductID uint   `gorm:"column:product_id;not null" json:"product_id"`
	Size      string `gorm:"column:size;type:varchar(20)" json:"size"`
	Quantity  int    `gorm:"column:quantity;not null" json:"quantity"`
}

func (CartItem) TableName() string { return "cart_items" }

// CartRepository 保存购物车仓储，未找到时返回 nil, nil
type CartRepository interface {
	GetByCustomerID(ctx context.Context, customerID uint) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	DeleteByCustomerID(ctx context.Context, customerID uint) error
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
