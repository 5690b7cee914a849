package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	p := &Product{Price: decimal.RequireFromString("30.00")}
	assert.True(t, p.EffectivePrice().Equal(decimal.RequireFromString("30")))

	p.OfferPrice = decimal.RequireFromString("24.50")
	assert.True(t, p.EffectivePrice().Equal(decimal.RequireFromString("24.50")))

	// 优惠价不低于原价时忽略
	p.OfferPrice = decimal.RequireFromString("35")
	assert.True(t, p.EffectivePrice().Equal(decimal.RequireFromString("30")))
}

func TestDecreaseStockFloorsAtZero(t *testing.T) {
	p := &Product{Stock: 3}
	old := p.DecreaseStock(5)

	assert.Equal(t, 3, old)
	assert.Equal(t, 0, p.Stock)
	assert.True(t, p.IsOutOfStock())
}

func TestLowStock(t *testing.T) {
	assert.False(t, (&Product{Stock: 0}).IsLowStock())
	assert.True(t, (&Product{Stock: 9}).IsLowStock())
	assert.False(t, (&Product{Stock: 10}).IsLowStock())
}

func TestProductFilterMatches(t *testing.T) {
	brandID := uint(2)
	p := &Product{
		ID: 7, CategoryID: 1, BrandID: &brandID, Brand: &Brand{ID: 2, Name: "Nike"},
		Name: "Camiseta Running", Description: "Tejido técnico", Color: "rojo", Available: true, Stock: 0,
	}

	assert.True(t, ProductFilter{}.Matches(p))
	assert.True(t, ProductFilter{CategoryID: 1, BrandName: "Nike", Color: "rojo"}.Matches(p))
	assert.True(t, ProductFilter{Query: "RUNNING"}.Matches(p))
	assert.True(t, ProductFilter{Query: "técnico"}.Matches(p))
	assert.True(t, ProductFilter{OutOfStock: true, AvailableOnly: true}.Matches(p))
	assert.True(t, ProductFilter{IDs: []uint{3, 7}}.Matches(p))

	assert.False(t, ProductFilter{CategoryID: 2}.Matches(p))
	assert.False(t, ProductFilter{BrandID: 3}.Matches(p))
	assert.False(t, ProductFilter{Material: "algodón"}.Matches(p))
	assert.False(t, ProductFilter{IDs: []uint{1}}.Matches(p))
}
