package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	adminapp "github.com/wyfcoding/nexoshop/internal/admin/application"
	adminhttp "github.com/wyfcoding/nexoshop/internal/admin/interfaces/http"
	authapp "github.com/wyfcoding/nexoshop/internal/auth/application"
	authhttp "github.com/wyfcoding/nexoshop/internal/auth/interfaces/http"
	cartapp "github.com/wyfcoding/nexoshop/internal/cart/application"
	"github.com/wyfcoding/nexoshop/internal/cart/infrastructure/sessioncart"
	carthttp "github.com/wyfcoding/nexoshop/internal/cart/interfaces/http"
	catalogapp "github.com/wyfcoding/nexoshop/internal/catalog/application"
	cataloghttp "github.com/wyfcoding/nexoshop/internal/catalog/interfaces/http"
	notifyapp "github.com/wyfcoding/nexoshop/internal/notification/application"
	notify "github.com/wyfcoding/nexoshop/internal/notification/domain"
	orderapp "github.com/wyfcoding/nexoshop/internal/order/application"
	orderdomain "github.com/wyfcoding/nexoshop/internal/order/domain"
	orderhttp "github.com/wyfcoding/nexoshop/internal/order/interfaces/http"
	payment "github.com/wyfcoding/nexoshop/internal/payment/domain"
	"github.com/wyfcoding/nexoshop/internal/session"
	userapp "github.com/wyfcoding/nexoshop/internal/user/application"
	"github.com/wyfcoding/nexoshop/pkg/config"
	"github.com/wyfcoding/nexoshop/pkg/metrics"
	"github.com/wyfcoding/nexoshop/pkg/middleware"
	"github.com/wyfcoding/nexoshop/pkg/mq"
	"github.com/wyfcoding/nexoshop/pkg/ratelimit"
)

// AdminPrefix 后台路由前缀
const AdminPrefix = "/accounts/admin-lite"

// Infra 外部依赖
type Infra struct {
	Sessions  session.Store
	Shipping  orderdomain.ShippingProvider
	Gateway   payment.Gateway
	Sender    notify.Sender
	Publisher mq.Publisher
	Limiter   ratelimit.RateLimiter
	Metrics   *metrics.Metrics
}

// NewRouter 组装应用服务并注册全部路由
func NewRouter(cfg *config.Config, repos Repositories, infra Infra) (*gin.Engine, error) {
	if err := orderhttp.RegisterValidators(); err != nil {
		return nil, err
	}

	pub := infra.Publisher
	m := infra.Metrics

	catalogQuery := catalogapp.NewCatalogQueryService(repos.Products, repos.Categories, repos.Brands)
	catalogCommand := catalogapp.NewCatalogCommandService(repos.Products, repos.Categories, repos.Brands, pub)
	users := userapp.NewUserService(repos.Users, repos.Customers, pub)
	carts := cartapp.NewCartService(sessioncart.New(infra.Sessions), repos.Carts, catalogQuery, pub, m)
	notifier := notifyapp.NewService(infra.Sender, cfg.Mail.From, m)
	checkout := orderapp.NewCheckoutService(repos.Orders, carts, catalogCommand, infra.Shipping, infra.Gateway, notifier, pub, m)
	orderAdmin := orderapp.NewOrderAdminService(repos.Orders, pub)
	dashboard := adminapp.NewDashboardService(orderAdmin, catalogQuery, users)
	auth := authapp.NewAuthService(users, carts, cfg.Debug && cfg.UseMockDB)

	sessions := session.NewManager(infra.Sessions, session.Options{
		Secret:     cfg.Session.Secret,
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	})

	router := gin.New()
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	if m != nil {
		router.Use(middleware.GinMetricsMiddleware(m))
	}
	router.Use(middleware.RateLimitMiddleware(infra.Limiter, cfg.RateLimit))

	// 健康检查与指标不经过会话
	router.GET("/health", func(c *gin.Context) {
		body := gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		}
		if repos.Counts != nil {
			body["tables"] = repos.Counts()
		}
		c.JSON(http.StatusOK, body)
	})
	if cfg.Metrics.Enabled && m != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	site := router.Group("", sessions.Middleware())

	catalogHandler := cataloghttp.NewCatalogHandler(catalogQuery, catalogCommand)
	cartHandler := carthttp.NewCartHandler(carts)
	orderHandler := orderhttp.NewOrderHandler(checkout, orderAdmin, auth)
	authHandler := authhttp.NewAuthHandler(auth)
	adminHandler := adminhttp.NewAdminHandler(users, dashboard)

	catalogHandler.RegisterRoutes(site)
	cartHandler.RegisterRoutes(site)
	orderHandler.RegisterRoutes(site)
	authHandler.RegisterRoutes(site)

	admin := site.Group(AdminPrefix, authhttp.RequireAdmin())
	admin.GET("", func(c *gin.Context) {
		c.Redirect(http.StatusFound, AdminPrefix+"/products")
	})
	catalogHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	adminHandler.RegisterAdminRoutes(admin)

	return router, nil
}

// NewHTTPServer 包装为 http.Server
func NewHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}
