// Storefront 主程序
// 功能：服装网店前台与简易后台，数据来自 JSON fixture 内存库或 MySQL/PostgreSQL
// 架构：基于 DDD + Gin + gRPC 健康检查 + Kafka 领域事件
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	memdb "github.com/wyfcoding/nexoshop/internal/mockdb"
	notifydomain "github.com/wyfcoding/nexoshop/internal/notification/domain"
	notify "github.com/wyfcoding/nexoshop/internal/notification/infrastructure"
	"github.com/wyfcoding/nexoshop/internal/order/infrastructure/shipping"
	payment "github.com/wyfcoding/nexoshop/internal/payment/domain"
	payinfra "github.com/wyfcoding/nexoshop/internal/payment/infrastructure"
	"github.com/wyfcoding/nexoshop/internal/server"
	"github.com/wyfcoding/nexoshop/internal/session"
	"github.com/wyfcoding/nexoshop/pkg/cache"
	"github.com/wyfcoding/nexoshop/pkg/config"
	"github.com/wyfcoding/nexoshop/pkg/db"
	"github.com/wyfcoding/nexoshop/pkg/grpcclient"
	"github.com/wyfcoding/nexoshop/pkg/logger"
	"github.com/wyfcoding/nexoshop/pkg/metrics"
	"github.com/wyfcoding/nexoshop/pkg/mq"
	"github.com/wyfcoding/nexoshop/pkg/ratelimit"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "configs/storefront/config.toml", "path to config file")
	healthcheck := flag.Bool("healthcheck", false, "probe the local gRPC health service and exit")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if *healthcheck {
		os.Exit(probe(cfg))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting Storefront",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
		"driver", cfg.Database.Driver,
	)
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 3. 初始化指标
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.ServiceName)
	}

	// 4. 初始化数据源
	var repos server.Repositories
	if cfg.UseMockDB {
		store, err := memdb.Open(ctx, cfg.Database.DataDir, cfg.Database.Persist, m)
		if err != nil {
			logger.Fatal(ctx, "Failed to load fixtures", "dir", cfg.Database.DataDir, "error", err)
		}
		repos = server.MockRepositories(store)
	} else {
		database, err := db.Init(db.Config{
			Driver:             cfg.Database.Driver,
			DSN:                cfg.Database.DSN,
			MaxOpenConns:       cfg.Database.MaxOpenConns,
			MaxIdleConns:       cfg.Database.MaxIdleConns,
			ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
			LogEnabled:         cfg.Database.LogEnabled,
			SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to initialize database", "error", err)
		}
		defer database.Close()
		if repos, err = server.GormRepositories(ctx, database, cfg.Database.AutoMigrate); err != nil {
			logger.Fatal(ctx, "Failed to migrate database", "error", err)
		}
	}

	// 5. 初始化 Redis（会话或限流需要时）
	var redisCache *cache.RedisCache
	if cfg.Session.Store == "redis" || (cfg.RateLimit.Enabled && cfg.RateLimit.Backend == "redis") {
		redisCache, err = cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ConnTimeout:  cfg.Redis.ConnTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to initialize Redis", "error", err)
		}
		defer redisCache.Close()
	}

	g, gctx := errgroup.WithContext(ctx)

	// 6. 会话存储
	var sessions session.Store
	if cfg.Session.Store == "redis" {
		sessions = session.NewRedisStore(redisCache, cfg.Session.TTL)
	} else {
		memory := session.NewMemoryStore(cfg.Session.TTL)
		g.Go(func() error {
			memory.Run(gctx, time.Minute)
			return nil
		})
		sessions = memory
	}

	// 7. 限流器
	var limiter ratelimit.RateLimiter
	if cfg.RateLimit.Backend == "redis" && redisCache != nil {
		limiter = ratelimit.NewRedisRateLimiter(redisCache.GetClient())
	} else {
		limiter = ratelimit.NewLocalRateLimiter()
	}

	// 8. 领域事件发布
	var publisher mq.Publisher = mq.LogPublisher{}
	if cfg.Kafka.Enabled {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to initialize Kafka producer", "error", err)
		}
		defer producer.Close()
		publisher = mq.NewKafkaPublisher(producer)
	}

	// 9. 运费表
	shippingTable, err := shipping.NewFileProvider(ctx, cfg.Shipping.File)
	if err != nil {
		logger.Fatal(ctx, "Failed to load shipping table", "file", cfg.Shipping.File, "error", err)
	}
	if cfg.Shipping.Watch {
		g.Go(func() error {
			if err := shippingTable.Watch(gctx); err != nil {
				logger.Warn(gctx, "shipping table watcher stopped", "error", err)
			}
			return nil
		})
	}

	// 10. 邮件与支付网关
	var sender notifydomain.Sender = notify.NewConsoleSender()
	if cfg.Mail.Backend == "smtp" {
		sender = notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
		})
	}
	var gateway payment.Gateway = payinfra.NewSimulatedGateway()
	if cfg.Payment.Gateway == "http" {
		gateway = payinfra.NewHTTPGateway(payinfra.HTTPConfig{
			BaseURL: cfg.Payment.BaseURL,
			APIKey:  cfg.Payment.APIKey,
			Timeout: cfg.Payment.Timeout,
			Retries: cfg.Payment.Retries,
		})
	}

	// 11. 创建 HTTP 服务器
	router, err := server.NewRouter(cfg, repos, server.Infra{
		Sessions:  sessions,
		Shipping:  shippingTable,
		Gateway:   gateway,
		Sender:    sender,
		Publisher: publisher,
		Limiter:   limiter,
		Metrics:   m,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to build router", "error", err)
	}
	httpServer := server.NewHTTPServer(cfg, router)

	g.Go(func() error {
		logger.Info(gctx, "Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// 12. 创建 gRPC 服务器
	if cfg.GRPC.Enabled {
		grpcServer, health := server.NewGRPCServer(cfg.ServiceName)
		listener, err := net.Listen("tcp", cfg.GRPC.Addr())
		if err != nil {
			logger.Fatal(ctx, "Failed to listen on gRPC address", "error", err)
		}
		g.Go(func() error {
			logger.Info(gctx, "Starting gRPC server", "addr", cfg.GRPC.Addr())
			return grpcServer.Serve(listener)
		})
		g.Go(func() error {
			<-gctx.Done()
			health.Shutdown()
			grpcServer.GracefulStop()
			return nil
		})
	}

	// 13. 优雅关停
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "Shutting down Storefront")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(context.Background(), "Storefront stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info(context.Background(), "Storefront stopped")
}

// probe 检查本机 gRPC 健康服务，返回进程退出码
func probe(cfg *config.Config) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	target := net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.GRPC.Port))
	err := grpcclient.Probe(ctx, grpcclient.ClientConfig{Target: target, ConnTimeout: 3, RequestTimeout: 3, MaxRetries: 2, RetryDelay: 200}, cfg.ServiceName)
	if err != nil {
		logger.Error(ctx, "Health check failed", "target", target, "error", err)
		return 1
	}
	return 0
}
