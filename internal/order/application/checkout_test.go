package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	cartapp "github.com/wyfcoding/nexoshop/internal/cart/application"
	cart "github.com/wyfcoding/nexoshop/internal/cart/domain"
	cartrepo "github.com/wyfcoding/nexoshop/internal/cart/infrastructure/persistence/mockdb"
	"github.com/wyfcoding/nexoshop/internal/cart/infrastructure/sessioncart"
	catalogapp "github.com/wyfcoding/nexoshop/internal/catalog/application"
	catalog "github.com/wyfcoding/nexoshop/internal/catalog/domain"
	catalogrepo "github.com/wyfcoding/nexoshop/internal/catalog/infrastructure/persistence/mockdb"
	memdb "github.com/wyfcoding/nexoshop/internal/mockdb"
	notifyapp "github.com/wyfcoding/nexoshop/internal/notification/application"
	notify "github.com/wyfcoding/nexoshop/internal/notification/domain"
	"github.com/wyfcoding/nexoshop/internal/order/domain"
	orderrepo "github.com/wyfcoding/nexoshop/internal/order/infrastructure/persistence/mockdb"
	"github.com/wyfcoding/nexoshop/internal/order/infrastructure/shipping"
	payment "github.com/wyfcoding/nexoshop/internal/payment/domain"
	payinfra "github.com/wyfcoding/nexoshop/internal/payment/infrastructure"
	"github.com/wyfcoding/nexoshop/internal/session"
	"github.com/wyfcoding/nexoshop/pkg/mq"
	"github.com/wyfcoding/nexoshop/pkg/utils"
)

type recordingSender struct {
	sent []notify.Message
}

func (r *recordingSender) Send(_ context.Context, msg notify.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

type CheckoutSuite struct {
	suite.Suite
	ctx       context.Context
	store     *memdb.Store
	publisher *mq.MemoryPublisher
	sender    *recordingSender
	carts     *cartapp.CartService
	checkout  *CheckoutService
	admin     *OrderAdminService
}

func (s *CheckoutSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memdb.NewStore()
	s.store.Categories.BulkSet([]catalog.Category{{ID: 1, Name: "Camisetas", Slug: "camisetas"}})
	s.store.Products.BulkSet([]catalog.Product{
		{ID: 1, CategoryID: 1, Name: "Camiseta", Price: decimal.NewFromInt(20), Stock: 5, Available: true},
		{ID: 2, CategoryID: 1, Name: "Gorra", Price: decimal.NewFromInt(12), Stock: 1, Available: true},
	})
	s.store.Carts.BulkSet([]cart.Cart{{ID: 1, CustomerID: 3}})
	s.store.CartItems.BulkSet([]cart.CartItem{{ID: 1, CartID: 1, ProductID: 1, Quantity: 1}})

	products := catalogrepo.NewProductRepository(s.store)
	categories := catalogrepo.NewCategoryRepository(s.store)
	brands := catalogrepo.NewBrandRepository(s.store)
	s.publisher = &mq.MemoryPublisher{}
	s.sender = &recordingSender{}

	s.carts = cartapp.NewCartService(
		sessioncart.New(session.NewMemoryStore(time.Hour)),
		cartrepo.NewCartRepository(s.store),
		catalogapp.NewCatalogQueryService(products, categories, brands),
		s.publisher, nil,
	)
	orders := orderrepo.NewOrderRepository(s.store)
	s.checkout = NewCheckoutService(
		orders,
		s.carts,
		catalogapp.NewCatalogCommandService(products, categories, brands, s.publisher),
		shipping.NewStatic(domain.DefaultShippingTable()),
		payinfra.NewSimulatedGateway(),
		notifyapp.NewService(s.sender, "no-reply@example.com", nil),
		s.publisher, nil,
	)
	s.admin = NewOrderAdminService(orders, s.publisher)
}

func (s *CheckoutSuite) fill(sid string) {
	_, err := s.carts.Add(s.ctx, sid, 1, 2, "M")
	s.Require().NoError(err)
	_, err = s.carts.Add(s.ctx, sid, 2, 3, "")
	s.Require().NoError(err)
}

func delivery() DeliveryData {
	return DeliveryData{
		FirstName: "Ana", LastName: "Pérez", Email: "Ana@Example.com",
		Address: "Calle Mayor 1", PostalCode: "28001", City: "Madrid",
		ShippingMethod: domain.ShippingHome,
	}
}

func (s *CheckoutSuite) TestQuoteAppliesFreeShipping() {
	_, err := s.carts.Add(s.ctx, "sid", 2, 1, "")
	s.Require().NoError(err)
	q, err := s.checkout.Quote(s.ctx, "sid", "")
	s.Require().NoError(err)
	s.Equal("4.99", q.ShippingCost.StringFixed(2))
	s.Equal("16.99", q.Total.StringFixed(2))

	s.fill("big")
	q, err = s.checkout.Quote(s.ctx, "big", domain.ShippingHome)
	s.Require().NoError(err)
	s.True(q.ShippingCost.IsZero(), "subtotal 76 is over the threshold")
	s.Len(q.Choices, 2)
}

func (s *CheckoutSuite) TestCreateOrder() {
	s.fill("sid")
	customerID := uint(3)
	o, err := s.checkout.Create(s.ctx, "sid", &customerID, delivery())
	s.Require().NoError(err)

	s.Equal(domain.OrderNumberFor(o.ID), o.OrderNumber)
	s.Equal(domain.StatusPending, o.Status)
	s.False(o.Paid)
	s.Equal("76.00", o.Subtotal.StringFixed(2))
	s.True(o.ShippingCost.IsZero())
	s.True(o.Total.Equal(o.Subtotal.Add(o.Taxes).Add(o.ShippingCost).Sub(o.Discount)))
	s.Equal("ana@example.com", o.Email)
	s.Len(o.Items, 2)

	p1, _ := s.store.Products.GetByID(1)
	p2, _ := s.store.Products.GetByID(2)
	s.Equal(3, p1.Stock)
	s.Equal(0, p2.Stock, "stock floors at zero")

	view, err := s.carts.Detail(s.ctx, "sid")
	s.Require().NoError(err)
	s.Empty(view.Lines)
	s.Zero(s.store.Carts.Len(), "saved cart of the customer is discarded")

	s.Require().Len(s.sender.sent, 1)
	s.Equal("Confirmación de pedido "+o.OrderNumber, s.sender.sent[0].Subject)
	s.Contains(s.publisher.Topics(), domain.TopicOrderCreated)

	got, err := s.checkout.GetOrder(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Len(got.Items, 2)
}

func (s *CheckoutSuite) TestCreateValidation() {
	_, err := s.checkout.Create(s.ctx, "empty", nil, delivery())
	s.ErrorIs(err, domain.ErrEmptyCart)

	s.fill("sid")
	d := delivery()
	d.Address = ""
	_, err = s.checkout.Create(s.ctx, "sid", nil, d)
	s.ErrorIs(err, domain.ErrAddressRequired)

	d.ShippingMethod = "store"
	o, err := s.checkout.Create(s.ctx, "sid", nil, d)
	s.Require().NoError(err, "store pickup does not need an address")
	s.Equal("Recogida en tienda", o.ShippingAddress)

	d.ShippingMethod = "drone"
	_, err = s.checkout.Create(s.ctx, "sid", nil, d)
	s.ErrorIs(err, domain.ErrInvalidShipping)

	d = delivery()
	d.Email = "no-email"
	_, err = s.checkout.Create(s.ctx, "sid", nil, d)
	s.ErrorIs(err, domain.ErrInvalidDelivery)
}

func (s *CheckoutSuite) TestPay() {
	s.fill("sid")
	o, err := s.checkout.Create(s.ctx, "sid", nil, delivery())
	s.Require().NoError(err)

	_, err = s.checkout.Pay(s.ctx, o.ID, "fake-declined-card")
	s.ErrorIs(err, payment.ErrPaymentDeclined)

	paid, err := s.checkout.Pay(s.ctx, o.ID, payinfra.NonceValid)
	s.Require().NoError(err)
	s.True(paid.Paid)
	s.NotEmpty(paid.TransactionID)
	s.Contains(s.publisher.Topics(), domain.TopicOrderPaid)

	_, err = s.checkout.Pay(s.ctx, o.ID, payinfra.NonceValid)
	s.ErrorIs(err, domain.ErrAlreadyPaid)
	_, err = s.checkout.Pay(s.ctx, 999, payinfra.NonceValid)
	s.ErrorIs(err, domain.ErrOrderNotFound)
}

func (s *CheckoutSuite) TestAdminPlace() {
	d, err := s.checkout.SaveDelivery(s.ctx, delivery())
	s.Require().NoError(err)

	s.fill("admin")
	o, err := s.checkout.AdminPlace(s.ctx, "admin", d, domain.PaymentCOD)
	s.Require().NoError(err)
	s.Equal(domain.StatusProcessing, o.Status)
	s.False(o.Paid)

	s.fill("admin")
	o, err = s.checkout.AdminPlace(s.ctx, "admin", d, domain.PaymentGateway)
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, o.Status)
	s.True(o.Paid)

	_, err = s.checkout.AdminPlace(s.ctx, "admin", d, "bitcoin")
	s.ErrorIs(err, domain.ErrInvalidPayment)

	pickup := delivery()
	pickup.ShippingMethod = "store"
	pickup.City = ""
	_, err = s.checkout.SaveDelivery(s.ctx, pickup)
	s.ErrorIs(err, domain.ErrAddressRequired, "admin delivery form always needs the address")
}

func (s *CheckoutSuite) TestAdminOrders() {
	s.fill("sid")
	o, err := s.checkout.Create(s.ctx, "sid", nil, delivery())
	s.Require().NoError(err)

	list, err := s.admin.List(s.ctx, domain.StatusPending)
	s.Require().NoError(err)
	s.Len(list.Orders, 1)
	_, err = s.admin.List(s.ctx, "lost")
	s.ErrorIs(err, domain.ErrInvalidStatus)

	updated, err := s.admin.UpdateStatus(s.ctx, o.ID, domain.StatusShipped, utils.Ptr(true))
	s.Require().NoError(err)
	s.Equal(domain.StatusShipped, updated.Status)
	s.True(updated.Paid)
	_, err = s.admin.UpdateStatus(s.ctx, o.ID, "teleported", nil)
	s.ErrorIs(err, domain.ErrInvalidStatus)

	number, err := s.admin.Delete(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(o.OrderNumber, number)
	_, err = s.admin.Detail(s.ctx, o.ID)
	s.ErrorIs(err, domain.ErrOrderNotFound)
	s.Zero(s.store.OrderItems.Len())
}

func TestCheckoutSuite(t *testing.T) {
	suite.Run(t, new(CheckoutSuite))
}
