package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/wyfcoding/nexoshop/internal/cart/domain"
	cartrepo "github.com/wyfcoding/nexoshop/internal/cart/infrastructure/persistence/mockdb"
	"github.com/wyfcoding/nexoshop/internal/cart/infrastructure/sessioncart"
	catalogapp "github.com/wyfcoding/nexoshop/internal/catalog/application"
	catalog "github.com/wyfcoding/nexoshop/internal/catalog/domain"
	catalogrepo "github.com/wyfcoding/nexoshop/internal/catalog/infrastructure/persistence/mockdb"
	memdb "github.com/wyfcoding/nexoshop/internal/mockdb"
	"github.com/wyfcoding/nexoshop/internal/session"
	"github.com/wyfcoding/nexoshop/pkg/metrics"
	"github.com/wyfcoding/nexoshop/pkg/mq"
)

type CartSuite struct {
	suite.Suite
	ctx       context.Context
	store     *memdb.Store
	publisher *mq.MemoryPublisher
	svc       *CartService
}

func (s *CartSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memdb.NewStore()
	s.store.Categories.BulkSet([]catalog.Category{{ID: 1, Name: "Camisetas", Slug: "camisetas"}})
	s.store.Products.BulkSet([]catalog.Product{
		{ID: 1, CategoryID: 1, Name: "Camiseta", Price: decimal.NewFromInt(20), OfferPrice: decimal.NewFromInt(15), Stock: 5, Available: true},
		{ID: 2, CategoryID: 1, Name: "Gorra", Price: decimal.RequireFromString("9.50"), Stock: 3, Available: true},
	})
	s.store.Carts.BulkSet([]domain.Cart{{ID: 1, CustomerID: 4}})
	s.store.CartItems.BulkSet([]domain.CartItem{
		{ID: 1, CartID: 1, ProductID: 2, Quantity: 2},
		{ID: 2, CartID: 1, ProductID: 99, Quantity: 1},
	})

	products := catalogrepo.NewProductRepository(s.store)
	query := catalogapp.NewCatalogQueryService(products, catalogrepo.NewCategoryRepository(s.store), catalogrepo.NewBrandRepository(s.store))
	s.publisher = &mq.MemoryPublisher{}
	s.svc = NewCartService(
		sessioncart.New(session.NewMemoryStore(time.Hour)),
		cartrepo.NewCartRepository(s.store),
		query,
		s.publisher,
		metrics.New("cart-test"),
	)
}

func (s *CartSuite) TestAddUsesEffectivePrice() {
	view, err := s.svc.Add(s.ctx, "sid", 1, 2, "M")
	s.Require().NoError(err)
	s.Require().Len(view.Lines, 1)
	s.Equal("1_M", view.Lines[0].Key)
	s.True(view.Total.Equal(decimal.NewFromInt(30)))
	s.Equal(2, view.Count)
	s.Contains(s.publisher.Topics(), domain.TopicCartItemAdded)

	_, err = s.svc.Add(s.ctx, "sid", 1, 0, "")
	s.ErrorIs(err, domain.ErrInvalidQuantity)
	_, err = s.svc.Add(s.ctx, "sid", 42, 1, "")
	s.ErrorIs(err, catalog.ErrProductNotFound)
}

func (s *CartSuite) TestUpdateClampsQuantity() {
	_, err := s.svc.Add(s.ctx, "sid", 2, 3, "")
	s.Require().NoError(err)

	view, err := s.svc.UpdateQuantity(s.ctx, "sid", 2, -4, "")
	s.Require().NoError(err)
	s.Equal(1, view.Count)

	view, err = s.svc.UpdateQuantity(s.ctx, "sid", 2, 500, "")
	s.Require().NoError(err)
	s.Equal(domain.MaxLineQuantity, view.Count)
}

func (s *CartSuite) TestRemoveAndClear() {
	_, err := s.svc.Add(s.ctx, "sid", 1, 1, "")
	s.Require().NoError(err)
	_, err = s.svc.Add(s.ctx, "sid", 2, 1, "")
	s.Require().NoError(err)

	view, err := s.svc.Remove(s.ctx, "sid", 1, "")
	s.Require().NoError(err)
	s.Require().Len(view.Lines, 1)
	s.Equal(uint(2), view.Lines[0].Product.ID)

	_, err = s.svc.Remove(s.ctx, "sid", 77, "")
	s.ErrorIs(err, catalog.ErrProductNotFound)

	s.Require().NoError(s.svc.Clear(s.ctx, "sid"))
	view, err = s.svc.Detail(s.ctx, "sid")
	s.Require().NoError(err)
	s.Empty(view.Lines)
	s.True(view.Total.IsZero())
}

func (s *CartSuite) TestSessionsAreIsolated() {
	_, err := s.svc.Add(s.ctx, "a", 1, 1, "")
	s.Require().NoError(err)
	view, err := s.svc.Detail(s.ctx, "b")
	s.Require().NoError(err)
	s.Empty(view.Lines)
}

func (s *CartSuite) TestMergeSavedSkipsMissingProducts() {
	_, err := s.svc.Add(s.ctx, "sid", 2, 1, "")
	s.Require().NoError(err)

	merged, err := s.svc.MergeSaved(s.ctx, "sid", 4)
	s.Require().NoError(err)
	s.Equal(1, merged)

	view, err := s.svc.Detail(s.ctx, "sid")
	s.Require().NoError(err)
	s.Equal(3, view.Count)

	merged, err = s.svc.MergeSaved(s.ctx, "sid", 99)
	s.Require().NoError(err)
	s.Zero(merged)

	s.Require().NoError(s.svc.DiscardSaved(s.ctx, 4))
	s.Zero(s.store.Carts.Len())
	s.Zero(s.store.CartItems.Len())
}

func TestCartSuite(t *testing.T) {
	suite.Run(t, new(CartSuite))
}
