package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalog "github.com/wyfcoding/nexoshop/internal/catalog/domain"
)

func TestLineKey(t *testing.T) {
	assert.Equal(t, "3", LineKey(3, ""))
	assert.Equal(t, "3_M", LineKey(3, "M"))
}

func TestAddAccumulatesAndOverrides(t *testing.T) {
	c := NewSessionCart()
	c.Add(1, 2, false, "", decimal.RequireFromString("10"))
	c.Add(1, 3, false, "", decimal.RequireFromString("99"))

	require.Contains(t, c.Lines, "1")
	assert.Equal(t, 5, c.Lines["1"].Quantity)
	// 已有行保留首次价格
	assert.Equal(t, "10.00", c.Lines["1"].Price)

	c.Add(1, 1, true, "", decimal.Zero)
	assert.Equal(t, 1, c.Lines["1"].Quantity)
}

func TestSizesAreSeparateLines(t *testing.T) {
	c := NewSessionCart()
	c.Add(1, 1, false, "S", decimal.RequireFromString("10"))
	c.Add(1, 2, false, "M", decimal.RequireFromString("10"))
	c.Add(2, 1, false, "", decimal.RequireFromString("5.50"))

	assert.Len(t, c.Lines, 3)
	assert.Equal(t, 4, c.Len())
	assert.True(t, c.Total().Equal(decimal.RequireFromString("35.50")))
	assert.Equal(t, []uint{1, 2}, c.ProductIDs())

	assert.True(t, c.Remove(1, "S"))
	assert.False(t, c.Remove(1, "S"))
	assert.Equal(t, 3, c.Len())

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.True(t, c.Total().IsZero())
}

func TestResolveSkipsMissingProducts(t *testing.T) {
	c := NewSessionCart()
	c.Add(1, 2, false, "", decimal.RequireFromString("4.25"))
	c.Add(9, 1, false, "", decimal.RequireFromString("1"))

	lines := c.Resolve([]*catalog.Product{{ID: 1, Name: "Gorra"}})

	require.Len(t, lines, 1)
	assert.Equal(t, "Gorra", lines[0].Product.Name)
	assert.True(t, lines[0].TotalPrice.Equal(decimal.RequireFromString("8.50")))
}
