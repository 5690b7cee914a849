package domain

import (
	"github.com/shopspring/decimal"
)

// ShippingHome 送货上门，满额包邮
const ShippingHome = "home"

// ShippingMethod 配送方式
type ShippingMethod struct {
	Code  string          `json:"code"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ShippingTable 运费表
type ShippingTable struct {
	FreeShippingThreshold decimal.Decimal  `json:"free_shipping_threshold"`
	Methods               []ShippingMethod `json:"methods"`
}

// DefaultShippingTable 未配置运费表时的默认值
func DefaultShippingTable() ShippingTable {
	return ShippingTable{
		FreeShippingThreshold: decimal.NewFromInt(50),
		Methods: []ShippingMethod{
			{Code: "home", Name: "Envío a domicilio", Price: decimal.RequireFromString("4.99")},
			{Code: "store", Name: "Recogida en tienda", Price: decimal.Zero},
		},
	}
}

// Find 按编码查找配送方式
func (t ShippingTable) Find(code string) (ShippingMethod, bool) {
	for _, m := range t.Methods {
		if m.Code == code {
			return m, true
		}
	}
	return ShippingMethod{}, false
}

// Compute 计算运费：未知编码回退到第一种方式，送货上门满额免运费
func (t ShippingTable) Compute(subtotal decimal.Decimal, code string) decimal.Decimal {
	if len(t.Methods) == 0 {
		return decimal.Zero
	}
	m, ok := t.Find(code)
	if !ok {
		m = t.Methods[0]
	}
	if code == ShippingHome && subtotal.GreaterThanOrEqual(t.FreeShippingThreshold) {
		return decimal.Zero
	}
	return m.Price
}

// MethodName 配送方式名称，未知时返回编码本身
func (t ShippingTable) MethodName(code string) string {
	if m, ok := t.Find(code); ok {
		return m.Name
	}
	return code
}

// Choice 前端可选项
type Choice struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Choices 全部可选配送方式
func (t ShippingTable) Choices() []Choice {
	out := make([]Choice, 0, len(t.Methods))
	for _, m := range t.Methods {
		out = append(out, Choice{Code: m.Code, Name: m.Name})
	}
	return out
}

// ShippingProvider 提供当前生效的运费表
type ShippingProvider interface {
	Table() ShippingTable
}
