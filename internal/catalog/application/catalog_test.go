package application

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/wyfcoding/nexoshop/internal/catalog/domain"
	repo "github.com/wyfcoding/nexoshop/internal/catalog/infrastructure/persistence/mockdb"
	memdb "github.com/wyfcoding/nexoshop/internal/mockdb"
	"github.com/wyfcoding/nexoshop/pkg/mq"
	"github.com/wyfcoding/nexoshop/pkg/utils"
)

type CatalogSuite struct {
	suite.Suite
	ctx       context.Context
	store     *memdb.Store
	publisher *mq.MemoryPublisher
	query     *CatalogQueryService
	command   *CatalogCommandService
}

func (s *CatalogSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memdb.NewStore()
	s.store.Categories.BulkSet([]domain.Category{
		{ID: 1, Name: "Camisetas", Slug: "camisetas"},
		{ID: 2, Name: "Gorras", Slug: "gorras"},
	})
	s.store.Brands.BulkSet([]domain.Brand{{ID: 1, Name: "Nexo"}, {ID: 2, Name: "Alba"}})
	s.store.Products.BulkSet([]domain.Product{
		{ID: 1, CategoryID: 1, BrandID: utils.Ptr(uint(1)), Name: "Camiseta Azul", Slug: "camiseta-azul", Price: decimal.NewFromInt(20), Stock: 5, Available: true, Color: "azul", Material: "algodón"},
		{ID: 2, CategoryID: 1, BrandID: utils.Ptr(uint(2)), Name: "Camiseta Roja", Slug: "camiseta-roja", Price: decimal.NewFromInt(22), Stock: 0, Available: true, Color: "rojo", Material: "lino"},
		{ID: 3, CategoryID: 2, Name: "Gorra", Slug: "gorra", Description: "Gorra de verano", Price: decimal.NewFromInt(12), Stock: 30, Available: false},
	})
	s.store.ProductSizes.BulkSet([]domain.ProductSize{{ID: 1, ProductID: 1, Size: "M", Stock: 2}})

	products := repo.NewProductRepository(s.store)
	categories := repo.NewCategoryRepository(s.store)
	brands := repo.NewBrandRepository(s.store)
	s.publisher = &mq.MemoryPublisher{}
	s.query = NewCatalogQueryService(products, categories, brands)
	s.command = NewCatalogCommandService(products, categories, brands, s.publisher)
}

func (s *CatalogSuite) TestHomeListsAvailable() {
	products, err := s.query.Home(s.ctx)
	s.Require().NoError(err)
	s.Len(products, 2)
}

func (s *CatalogSuite) TestListProductsWithFacets() {
	res, err := s.query.ListProducts(s.ctx, StorefrontFilter{CategorySlug: "camisetas", Brand: "Alba"})
	s.Require().NoError(err)
	s.Require().Len(res.Products, 1)
	s.Equal("Camiseta Roja", res.Products[0].Name)
	s.Equal([]string{"Alba", "Nexo"}, res.Facets.Brands)
	s.Equal([]string{"azul", "rojo"}, res.Facets.Colors)
	s.Equal("Camisetas", res.Category.Name)

	_, err = s.query.ListProducts(s.ctx, StorefrontFilter{CategorySlug: "zapatos"})
	s.ErrorIs(err, domain.ErrCategoryNotFound)
}

func (s *CatalogSuite) TestProductDetail() {
	d, err := s.query.ProductDetail(s.ctx, 1, "camiseta-azul")
	s.Require().NoError(err)
	s.Len(d.Sizes, 1)
	s.Equal("Nexo", d.Product.BrandName())

	_, err = s.query.ProductDetail(s.ctx, 1, "otro-slug")
	s.ErrorIs(err, domain.ErrProductNotFound)
	_, err = s.query.ProductDetail(s.ctx, 3, "gorra")
	s.ErrorIs(err, domain.ErrProductNotFound, "unavailable product is hidden")
}

func (s *CatalogSuite) TestAdminListFilters() {
	res, err := s.query.AdminListProducts(s.ctx, AdminProductFilter{Status: StatusOutOfStock})
	s.Require().NoError(err)
	s.Require().Len(res.Products, 1)
	s.Equal(uint(2), res.Products[0].ID)

	res, err = s.query.AdminListProducts(s.ctx, AdminProductFilter{Query: "VERANO"})
	s.Require().NoError(err)
	s.Require().Len(res.Products, 1)
	s.Equal(uint(3), res.Products[0].ID)

	total, low, err := s.query.CountProducts(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Equal(1, low)
}

func (s *CatalogSuite) TestCreateProductWithNewCategoryAndBrand() {
	p, err := s.command.CreateProduct(s.ctx, ProductCommand{
		Name:       "Sudadera Gris",
		Price:      decimal.NewFromInt(40),
		OfferPrice: decimal.NewFromInt(-1),
		Stock:      7,
		Available:  true,
		Category:   "new:Ropa de Abrigo",
		Brand:      "new:Norte",
		Sizes:      []string{"S", "", "L"},
		SizeStocks: []string{"3", "9", "x"},
	})
	s.Require().NoError(err)
	s.Equal(uint(4), p.ID)
	s.Equal("sudadera-gris", p.Slug)
	s.True(p.OfferPrice.IsZero())

	c, err := s.store.Categories.GetByID(3)
	s.Require().NoError(err)
	s.Equal("ropa-de-abrigo", c.Slug)
	s.Require().NotNil(p.BrandID)
	s.Equal(uint(3), *p.BrandID)

	sizes := s.store.ProductSizes.Filter(func(ps *domain.ProductSize) bool { return ps.ProductID == p.ID })
	s.Require().Len(sizes, 2)
	s.Equal("S", sizes[0].Size)
	s.Equal(3, sizes[0].Stock)
	s.Equal(0, sizes[1].Stock)

	s.Contains(s.publisher.Topics(), domain.TopicProductCreated)
}

func (s *CatalogSuite) TestCreateProductValidation() {
	_, err := s.command.CreateProduct(s.ctx, ProductCommand{Category: "1"})
	s.ErrorIs(err, domain.ErrInvalidProduct)

	_, err = s.command.CreateProduct(s.ctx, ProductCommand{Name: "X", Category: "99"})
	s.ErrorIs(err, domain.ErrCategoryNotFound)

	_, err = s.command.CreateProduct(s.ctx, ProductCommand{Name: "X", Category: "1", Brand: "42"})
	s.ErrorIs(err, domain.ErrBrandNotFound)
}

func (s *CatalogSuite) TestFailedCreateLeavesNoNewCategoryOrBrand() {
	_, err := s.command.CreateProduct(s.ctx, ProductCommand{Name: "Botas", Category: "new:Zapatos", Brand: "999"})
	s.ErrorIs(err, domain.ErrBrandNotFound)
	s.Equal(2, s.store.Categories.Len())
	s.Equal(3, s.store.Products.Len())

	failing := NewCatalogCommandService(
		failingProducts{repo.NewProductRepository(s.store)},
		repo.NewCategoryRepository(s.store),
		repo.NewBrandRepository(s.store),
		nil,
	)
	_, err = failing.CreateProduct(s.ctx, ProductCommand{Name: "Botas", Category: "new:Zapatos", Brand: "new:Sur"})
	s.Error(err)
	s.Equal(2, s.store.Categories.Len())
	s.Equal(2, s.store.Brands.Len())
	s.Equal(3, s.store.Products.Len())
}

func (s *CatalogSuite) TestUpdateReplacesSizes() {
	p, err := s.command.UpdateProduct(s.ctx, 1, ProductCommand{
		Name: "Camiseta Azul", Price: decimal.NewFromInt(18), OfferPrice: decimal.NewFromInt(15),
		Stock: 5, Available: true, Category: "1", Brand: "1",
		Sizes: []string{"XL"}, SizeStocks: []string{"4"},
	})
	s.Require().NoError(err)
	s.True(p.EffectivePrice().Equal(decimal.NewFromInt(15)))

	sizes := s.store.ProductSizes.Filter(func(ps *domain.ProductSize) bool { return ps.ProductID == 1 })
	s.Require().Len(sizes, 1)
	s.Equal("XL", sizes[0].Size)

	_, err = s.command.UpdateProduct(s.ctx, 99, ProductCommand{Name: "x", Category: "1"})
	s.ErrorIs(err, domain.ErrProductNotFound)
}

func (s *CatalogSuite) TestDeleteRemovesOrphans() {
	s.Require().NoError(s.command.DeleteProduct(s.ctx, 3))
	_, err := s.store.Categories.GetByID(2)
	s.ErrorIs(err, memdb.ErrNotFound, "category without products is removed")

	s.Require().NoError(s.command.DeleteProduct(s.ctx, 1))
	_, err = s.store.Categories.GetByID(1)
	s.NoError(err, "category still referenced by product 2")
	_, err = s.store.Brands.GetByID(1)
	s.ErrorIs(err, memdb.ErrNotFound)
	s.Equal(0, s.store.ProductSizes.Len())

	s.ErrorIs(s.command.DeleteProduct(s.ctx, 1), domain.ErrProductNotFound)
}

func (s *CatalogSuite) TestDecreaseStockFloorsAtZero() {
	s.Require().NoError(s.command.DecreaseStock(s.ctx, 1, 9))
	p, _ := s.store.Products.GetByID(1)
	s.Equal(0, p.Stock)
	s.Contains(s.publisher.Topics(), domain.TopicProductStockChanged)
}

type failingProducts struct {
	domain.ProductRepository
}

func (failingProducts) Save(context.Context, *domain.Product) error {
	return errors.New("disk full")
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogSuite))
}
