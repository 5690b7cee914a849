package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	catalog "github.com/wyfcoding/nexoshop/internal/catalog/domain"
	memdb "github.com/wyfcoding/nexoshop/internal/mockdb"
	notify "github.com/wyfcoding/nexoshop/internal/notification/infrastructure"
	order "github.com/wyfcoding/nexoshop/internal/order/domain"
	"github.com/wyfcoding/nexoshop/internal/order/infrastructure/shipping"
	payinfra "github.com/wyfcoding/nexoshop/internal/payment/infrastructure"
	"github.com/wyfcoding/nexoshop/internal/session"
	user "github.com/wyfcoding/nexoshop/internal/user/domain"
	"github.com/wyfcoding/nexoshop/pkg/config"
	"github.com/wyfcoding/nexoshop/pkg/metrics"
	"github.com/wyfcoding/nexoshop/pkg/mq"
	"github.com/wyfcoding/nexoshop/pkg/response"
)

type RouterSuite struct {
	suite.Suite
	store     *memdb.Store
	publisher *mq.MemoryPublisher
	router    *gin.Engine
	cookie    *http.Cookie
}

func (s *RouterSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.store = memdb.NewStore()
	s.store.Categories.BulkSet([]catalog.Category{{ID: 1, Name: "Camisetas", Slug: "camisetas"}})
	s.store.Products.BulkSet([]catalog.Product{
		{ID: 1, CategoryID: 1, Name: "Camiseta", Slug: "camiseta", Price: decimal.NewFromInt(20), Stock: 5, Available: true},
	})
	s.store.Users.BulkSet([]user.UserAccount{{ID: 1, Email: "admin@example.com", Role: user.RoleAdmin, IsActive: true}})
	s.publisher = &mq.MemoryPublisher{}

	cfg := &config.Config{
		ServiceName: "storefront-test",
		Debug:       true,
		UseMockDB:   true,
		Session:     config.SessionConfig{Secret: "test-secret", CookieName: "nexo_session", TTL: time.Hour},
		Mail:        config.MailConfig{From: "no-reply@example.com"},
		Metrics:     config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	router, err := NewRouter(cfg, MockRepositories(s.store), Infra{
		Sessions:  session.NewMemoryStore(time.Hour),
		Shipping:  shipping.NewStatic(order.DefaultShippingTable()),
		Gateway:   payinfra.NewSimulatedGateway(),
		Sender:    notify.NewConsoleSender(),
		Publisher: s.publisher,
		Metrics:   metrics.New("storefront_test"),
	})
	s.Require().NoError(err)
	s.router = router
	s.cookie = nil
}

// do 发送请求并携带上一次响应签发的会话 Cookie
func (s *RouterSuite) do(method, target string, form url.Values, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "nexo_session" {
			s.cookie = ck
		}
	}
	return w
}

func (s *RouterSuite) body(w *httptest.ResponseRecorder) response.Body {
	var b response.Body
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &b))
	return b
}

func (s *RouterSuite) TestHealthAndMetrics() {
	w := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"products":1`)

	w = s.do(http.MethodGet, "/metrics", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestAdminRequiresLogin() {
	w := s.do(http.MethodGet, "/accounts/admin-lite/products", nil, "Accept", "application/json")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("/accounts/login?next=%2Faccounts%2Fadmin-lite%2Fproducts", s.body(w).Redirect)

	w = s.do(http.MethodGet, "/accounts/admin-lite/sales", nil)
	s.Equal(http.StatusFound, w.Code)
	s.True(strings.HasPrefix(w.Header().Get("Location"), "/accounts/login?next="))

	w = s.do(http.MethodGet, "/accounts/debug/login-admin", nil)
	s.Equal(http.StatusSeeOther, w.Code)

	w = s.do(http.MethodGet, "/accounts/admin-lite/products", nil)
	s.Equal(http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/accounts/admin-lite/sales", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestCatalogAndCartNotFound() {
	w := s.do(http.MethodGet, "/products/99/nada", nil)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/products/category/inexistente", nil)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/cart/add/99", url.Values{"quantity": {"1"}})
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/cart/add/1", url.Values{"quantity": {"21"}})
	s.Equal(http.StatusBadRequest, w.Code)
	s.NotEmpty(s.body(w).Messages, "error flash rendered with the response")
}

func (s *RouterSuite) TestCheckoutAndPay() {
	w := s.do(http.MethodPost, "/cart/add/1", url.Values{"quantity": {"2"}, "size": {"M"}})
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/orders/create?shipping_method=home", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/orders/create", url.Values{
		"first_name": {"Ana"}, "last_name": {"Pérez"}, "email": {"ana@example.com"},
		"address": {"Calle Mayor 1"}, "postal_code": {"28001"}, "city": {"Madrid"},
		"shipping_method": {"home"},
	})
	s.Require().Equal(http.StatusSeeOther, w.Code)
	location := w.Header().Get("Location")
	s.True(strings.HasPrefix(location, "/orders/payment/"))
	id := strings.TrimPrefix(location, "/orders/payment/")

	p, err := s.store.Products.GetByID(1)
	s.Require().NoError(err)
	s.Equal(3, p.Stock)

	w = s.do(http.MethodPost, location, url.Values{"payment_method_nonce": {"fake-declined-nonce"}})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, location, url.Values{"payment_method_nonce": {payinfra.NonceValid}})
	s.Require().Equal(http.StatusSeeOther, w.Code)
	s.Equal("/orders/created/"+id, w.Header().Get("Location"))

	w = s.do(http.MethodPost, location, url.Values{"payment_method_nonce": {payinfra.NonceValid}})
	s.Equal(http.StatusBadRequest, w.Code, "already paid")

	w = s.do(http.MethodGet, "/cart", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"count":0`)
	s.Contains(s.publisher.Topics(), order.TopicOrderPaid)
}

func (s *RouterSuite) TestAdminCheckoutAndOrders() {
	s.do(http.MethodGet, "/accounts/debug/login-admin", nil)

	w := s.do(http.MethodGet, "/accounts/admin-lite/checkout/payment", nil)
	s.Equal(http.StatusSeeOther, w.Code)
	s.Equal("/accounts/admin-lite/checkout/delivery", w.Header().Get("Location"))

	s.do(http.MethodPost, "/cart/add/1", url.Values{"quantity": {"1"}})
	w = s.do(http.MethodPost, "/accounts/admin-lite/checkout/delivery", url.Values{
		"first_name": {"Luis"}, "last_name": {"Gómez"}, "email": {"luis@example.com"},
		"address": {"Gran Vía 2"}, "postal_code": {"28013"}, "city": {"Madrid"},
		"shipping_method": {"store"},
	})
	s.Require().Equal(http.StatusSeeOther, w.Code)

	w = s.do(http.MethodPost, "/accounts/admin-lite/checkout/payment", url.Values{"payment_method": {"cod"}})
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/accounts/admin-lite/checkout/payment", nil)
	s.Equal(http.StatusSeeOther, w.Code, "checkout data cleared")

	orders := s.store.Orders.All()
	s.Require().Len(orders, 1)
	target := "/accounts/admin-lite/orders/" + strconv.FormatUint(uint64(orders[0].ID), 10)

	w = s.do(http.MethodPost, target+"/status", url.Values{"status": {"lost"}})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, target+"/status", url.Values{"status": {order.StatusShipped}, "paid": {"on"}})
	s.Require().Equal(http.StatusOK, w.Code)
	o, err := s.store.Orders.GetByID(orders[0].ID)
	s.Require().NoError(err)
	s.Equal(order.StatusShipped, o.Status)
	s.True(o.Paid)

	w = s.do(http.MethodGet, "/accounts/admin-lite/orders?status=bogus", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, target, nil)
	s.Equal(http.StatusSeeOther, w.Code)
	w = s.do(http.MethodGet, target, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestAdminCustomers() {
	s.do(http.MethodGet, "/accounts/debug/login-admin", nil)

	w := s.do(http.MethodPost, "/accounts/admin-lite/customers", url.Values{
		"email": {"eva@example.com"}, "password": {"clave-larga"}, "is_active": {"true"},
	})
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/accounts/admin-lite/customers", url.Values{"email": {"eva@example.com"}})
	s.Equal(http.StatusBadRequest, w.Code, "duplicate email")

	w = s.do(http.MethodGet, "/accounts/admin-lite/customers/2", nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/accounts/admin-lite/customers/1", nil)
	s.Equal(http.StatusNotFound, w.Code, "admin accounts are not customers")

	w = s.do(http.MethodDelete, "/accounts/admin-lite/customers/2", nil)
	s.Equal(http.StatusSeeOther, w.Code)
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}
