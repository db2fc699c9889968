// @title           Storefront API
// @version         1.0
// @description     商品目录、购物车、下单与客户管理接口
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/controller"
	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/task"
	"storefront/pkg/database"
	"storefront/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "storefront",
		Usage: "storefront backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径 (yaml/json/toml)",
				EnvVars: []string{"STOREFRONT_CONFIG"},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "启动 HTTP 服务和定时任务",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "执行数据库迁移",
				Action: migrate,
			},
			{
				Name:  "create-admin",
				Usage: "创建管理员账号",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
				},
				Action: createAdmin,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	Config      *config.Config
	Log         *zap.Logger
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers router.Controllers
	Dispatcher  *notify.Dispatcher
	// 需要在退出时关闭的通知渠道
	closers []interface{ Close() error }
}

// Repositories 仓库集合
type Repositories struct {
	Collection   repository.CollectionRepository
	Product      repository.ProductRepository
	Promotion    repository.PromotionRepository
	Review       repository.ReviewRepository
	Cart         repository.CartRepository
	Customer     repository.CustomerRepository
	Order        repository.OrderRepository
	Tag          repository.TagRepository
	User         repository.UserRepository
	Notification repository.NotificationLogRepository
	Checkout     *repository.CheckoutUnitOfWork
}

// Services 服务集合
type Services struct {
	User       *service.UserService
	Collection *service.CollectionService
	Product    *service.ProductService
	Review     *service.ReviewService
	Cart       *service.CartService
	Customer   *service.CustomerService
	Order      *service.OrderService
	Tag        *service.TagService
}

// ==================== 命令 ====================

func serve(c *cli.Context) error {
	deps, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer deps.Close()

	if err := database.Migrate(deps.DB, model.All()...); err != nil {
		return err
	}

	deps.Repos = initRepositories(deps.DB)
	deps.Dispatcher = initDispatcher(deps)
	deps.Services = initServices(deps)
	deps.Controllers = initControllers(deps.Services)

	tm := task.NewTaskManager(&task.TaskManagerDeps{
		CartCleaner: deps.Services.Cart,
		Log:         deps.Log,
	}, &task.TaskManagerConfig{
		CartCleanupSpec: deps.Config.Task.CartCleanupCron,
		CartMaxAge:      deps.Config.Task.CartMaxAge,
	})
	if err := tm.Start(); err != nil {
		return fmt.Errorf("start tasks: %w", err)
	}
	defer tm.Stop()

	gin.SetMode(deps.Config.Server.Mode)
	r, err := router.New(router.Options{
		Log:                deps.Log,
		CartCreateInterval: deps.Config.RateLimit.CartCreateInterval,
	}, deps.Controllers)
	if err != nil {
		return err
	}

	return startServer(deps, r)
}

func migrate(c *cli.Context) error {
	deps, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer deps.Close()

	if err := database.Migrate(deps.DB, model.All()...); err != nil {
		return err
	}
	deps.Log.Info("migration finished", zap.Int("models", len(model.All())))
	return nil
}

func createAdmin(c *cli.Context) error {
	deps, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer deps.Close()

	if err := database.Migrate(deps.DB, model.All()...); err != nil {
		return err
	}

	users := service.NewUserService(repository.NewUserRepository(deps.DB))
	user, err := users.CreateAdmin(c.Context, c.String("username"), c.String("password"), c.String("email"))
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	deps.Log.Info("admin created", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return nil
}

// ==================== 初始化 ====================

// bootstrap 加载配置、日志和数据库，各命令共用
func bootstrap(c *cli.Context) (*Dependencies, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		return nil, err
	}

	db, err := database.Open(database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		LogLevel:        cfg.Database.LogLevel,
		MaxIdleConns:    cfg.Database.MaxIdle,
		MaxOpenConns:    cfg.Database.MaxOpen,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	if err := middleware.RegisterAuditCallbacks(db); err != nil {
		return nil, err
	}

	jwtCfg := middleware.DefaultJWTConfig()
	if cfg.JWT.Secret != "" {
		jwtCfg.SecretKey = cfg.JWT.Secret
	} else {
		log.Warn("jwt.secret not set, using development secret")
	}
	jwtCfg.AccessTokenTTL = cfg.JWT.AccessTTL
	jwtCfg.RefreshTokenTTL = cfg.JWT.RefreshTTL
	if cfg.JWT.Issuer != "" {
		jwtCfg.Issuer = cfg.JWT.Issuer
	}
	middleware.SetJWTConfig(jwtCfg)

	return &Dependencies{Config: cfg, Log: log, DB: db}, nil
}

// Close 释放外部连接
func (d *Dependencies) Close() {
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			d.Log.Warn("close notifier", zap.Error(err))
		}
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = d.Log.Sync()
}

// initRepositories 初始化所有仓库
func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Collection:   repository.NewCollectionRepository(db),
		Product:      repository.NewProductRepository(db),
		Promotion:    repository.NewPromotionRepository(db),
		Review:       repository.NewReviewRepository(db),
		Cart:         repository.NewCartRepository(db),
		Customer:     repository.NewCustomerRepository(db),
		Order:        repository.NewOrderRepository(db),
		Tag:          repository.NewTagRepository(db),
		User:         repository.NewUserRepository(db),
		Notification: repository.NewNotificationLogRepository(db),
		Checkout:     repository.NewCheckoutUnitOfWork(db),
	}
}

// initDispatcher 按配置组装下单通知渠道，日志渠道始终启用
func initDispatcher(deps *Dependencies) *notify.Dispatcher {
	cfg := deps.Config.Notify
	handlers := []notify.Handler{notify.NewLogHandler(deps.Log)}

	if len(cfg.WebhookURLs) > 0 {
		handlers = append(handlers, notify.NewWebhookHandler(notify.WebhookOptions{
			URLs:    cfg.WebhookURLs,
			Timeout: cfg.WebhookTimeout,
		}))
	}

	if len(cfg.KafkaBrokers) > 0 {
		h := notify.NewKafkaHandler(cfg.KafkaBrokers, cfg.KafkaTopic)
		handlers = append(handlers, h)
		deps.closers = append(deps.closers, h)
	}

	if cfg.RedisAddr != "" {
		h := notify.NewRedisHandler(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), cfg.RedisChannel)
		handlers = append(handlers, h)
		deps.closers = append(deps.closers, h)
	}

	deps.Log.Info("order notifiers configured", zap.Int("handlers", len(handlers)))
	return notify.NewDispatcher(deps.Log, deps.Repos.Notification, handlers...)
}

// initServices 初始化所有服务
func initServices(deps *Dependencies) *Services {
	repos := deps.Repos

	tags := service.NewTagService(repos.Tag)
	tags.RegisterEntity(service.EntityProduct, repos.Product.Exists)
	tags.RegisterEntity(service.EntityCollection, repos.Collection.Exists)
	tags.RegisterEntity(service.EntityCustomer, func(ctx context.Context, id int64) (bool, error) {
		return found(repos.Customer.GetByID(ctx, id))
	})
	tags.RegisterEntity(service.EntityOrder, func(ctx context.Context, id int64) (bool, error) {
		return found(repos.Order.GetByID(ctx, id))
	})

	return &Services{
		User:       service.NewUserService(repos.User),
		Collection: service.NewCollectionService(repos.Collection, repos.Product),
		Product:    service.NewProductService(repos.Product, repos.Collection, repos.Promotion),
		Review:     service.NewReviewService(repos.Review, repos.Product),
		Cart:       service.NewCartService(repos.Cart, repos.Product, deps.Log),
		Customer:   service.NewCustomerService(repos.Customer, repos.User, deps.Log),
		Order:      service.NewOrderService(repos.Checkout, repos.Order, repos.Customer, deps.Dispatcher, deps.Log),
		Tag:        tags,
	}
}

// found 把按 ID 查询的结果转换为是否存在
func found[T any](_ *T, err error) (bool, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

// initControllers 初始化所有控制器
func initControllers(svc *Services) router.Controllers {
	return router.Controllers{
		Auth:       controller.NewAuthController(svc.User),
		Collection: controller.NewCollectionController(svc.Collection),
		Product:    controller.NewProductController(svc.Product),
		Review:     controller.NewReviewController(svc.Review),
		Cart:       controller.NewCartController(svc.Cart),
		Order:      controller.NewOrderController(svc.Order),
		Customer:   controller.NewCustomerController(svc.Customer),
		Tag:        controller.NewTagController(svc.Tag),
		Admin:      controller.NewAdminController(svc.Product, svc.Customer),
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务，收到退出信号后优雅关闭
func startServer(deps *Dependencies, r *gin.Engine) error {
	port := deps.Config.Server.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		deps.Log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		deps.Log.Info("shutting down", zap.String("signal", sig.String()))
	}

	timeout := deps.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	deps.Log.Info("server exited")
	return nil
}
