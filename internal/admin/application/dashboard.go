// Package application 后台销售看板
package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	order "github.com/wyfcoding/nexoshop/internal/order/domain"
)

// RecentOrdersLimit 看板展示的最近订单数
const RecentOrdersLimit = 10

// OrderSource 全部订单，按创建时间倒序
type OrderSource interface {
	All(ctx context.Context) ([]*order.Order, error)
}

// ProductCounter 商品总数与低库存数
type ProductCounter interface {
	CountProducts(ctx context.Context) (total, lowStock int, err error)
}

// CustomerCounter 顾客账户数
type CustomerCounter interface {
	CountCustomers(ctx context.Context) (int, error)
}

// Dashboard 销售看板数据
type Dashboard struct {
	TotalOrders       int             `json:"total_orders"`
	PaidOrders        int             `json:"paid_orders"`
	PendingOrders     int             `json:"pending_orders"`
	Revenue           decimal.Decimal `json:"revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	TotalProducts     int             `json:"total_products"`
	LowStockProducts  int             `json:"low_stock_products"`
	TotalCustomers    int             `json:"total_customers"`
	RecentOrders      []*order.Order  `json:"recent_orders"`
}

// DashboardService 汇总订单、商品与顾客统计
type DashboardService struct {
	orders    OrderSource
	products  ProductCounter
	customers CustomerCounter
}

func NewDashboardService(orders OrderSource, products ProductCounter, customers CustomerCounter) *DashboardService {
	return &DashboardService{orders: orders, products: products, customers: customers}
}

// Sales 计算看板；订单总额为 0 时按明细求和计入营收
func (s *DashboardService) Sales(ctx context.Context) (*Dashboard, error) {
	orders, err := s.orders.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	d := &Dashboard{TotalOrders: len(orders), Revenue: decimal.Zero, AverageOrderValue: decimal.Zero}
	for _, o := range orders {
		if o.Paid {
			d.PaidOrders++
		}
		if o.IsOpen() {
			d.PendingOrders++
		}
		d.Revenue = d.Revenue.Add(o.Revenue())
	}
	if d.TotalOrders > 0 {
		d.AverageOrderValue = d.Revenue.Div(decimal.NewFromInt(int64(d.TotalOrders))).Round(2)
	}
	d.RecentOrders = orders[:min(len(orders), RecentOrdersLimit)]

	if d.TotalProducts, d.LowStockProducts, err = s.products.CountProducts(ctx); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if d.TotalCustomers, err = s.customers.CountCustomers(ctx); err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	return d, nil
}
