package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "zapatillas-de-running", Slugify("Zapatillas de Running"))
	assert.Equal(t, "camisetas", Slugify("  Camisetas "))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, p := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, 3, p.TotalPages)

	page, _ = Paginate(items, 9, 2)
	assert.Empty(t, page)

	page, p = Paginate(items, 0, 0)
	assert.Equal(t, items, page)
	assert.Equal(t, 1, p.Page)
}

func TestParseUint(t *testing.T) {
	assert.Equal(t, uint(12), ParseUint("12"))
	assert.Equal(t, uint(0), ParseUint("-1"))
	assert.Equal(t, uint(0), ParseUint("abc"))
}

func TestPtrDeref(t *testing.T) {
	assert.Equal(t, 3, Deref(Ptr(3)))
	var p *string
	assert.Equal(t, "", Deref(p))
}
