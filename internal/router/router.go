package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"storefront/internal/api/dto"
	"storefront/internal/controller"
	"storefront/internal/middleware"

	_ "storefront/docs"
)

// Controllers 路由需要的全部控制器
type Controllers struct {
	Auth       *controller.AuthController
	Collection *controller.CollectionController
	Product    *controller.ProductController
	Review     *controller.ReviewController
	Cart       *controller.CartController
	Order      *controller.OrderController
	Customer   *controller.CustomerController
	Tag        *controller.TagController
	Admin      *controller.AdminController
}

// Options 路由级配置
type Options struct {
	Log *zap.Logger
	// 同一 IP 创建购物车的最小间隔，0 表示不限制
	CartCreateInterval time.Duration
	Limiter            *middleware.CooldownLimiter
}

// New 创建 gin 引擎并注册全局中间件与路由
func New(opts Options, ctl Controllers) (*gin.Engine, error) {
	if err := dto.RegisterValidators(); err != nil {
		return nil, err
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Limiter == nil {
		opts.Limiter = middleware.NewCooldownLimiter()
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(opts.Log.Named("http")),
		middleware.Recovery(opts.Log),
	)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Not found."})
	})

	InitRoutes(r, opts, ctl)
	return r, nil
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, opts Options, ctl Controllers) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := middleware.JWTAuth()
	admin := []gin.HandlerFunc{middleware.JWTAuth(), middleware.RequireAdmin()}
	withAdmin := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, admin...), h)
	}

	// 2. API 路由组，带 token 时注入身份
	api := r.Group("/api", middleware.OptionalAuth())
	{
		// auth 账号
		auth := api.Group("/auth")
		{
			auth.POST("/register", ctl.Auth.Register)
			auth.POST("/login", ctl.Auth.Login)
			auth.POST("/refresh", ctl.Auth.RefreshToken)
			auth.GET("/me", authed, ctl.Auth.Profile)
		}

		// collections 集合，读公开，写需管理员
		collections := api.Group("/collections")
		{
			collections.GET("", ctl.Collection.List)
			collections.GET("/:id", ctl.Collection.Get)
			collections.POST("", withAdmin(ctl.Collection.Create)...)
			collections.PUT("/:id", withAdmin(ctl.Collection.Update)...)
			collections.DELETE("/:id", withAdmin(ctl.Collection.Delete)...)
		}

		// products 商品与评价
		products := api.Group("/products")
		{
			products.GET("", ctl.Product.List)
			products.GET("/:id", ctl.Product.Get)
			products.POST("", withAdmin(ctl.Product.Create)...)
			products.PUT("/:id", withAdmin(ctl.Product.Update)...)
			products.PATCH("/:id", withAdmin(ctl.Product.Patch)...)
			products.DELETE("/:id", withAdmin(ctl.Product.Delete)...)

			// 评价不做权限限制
			products.GET("/:id/reviews", ctl.Review.List)
			products.POST("/:id/reviews", ctl.Review.Create)
			products.GET("/:id/reviews/:review_id", ctl.Review.Get)
			products.PUT("/:id/reviews/:review_id", ctl.Review.Update)
			products.PATCH("/:id/reviews/:review_id", ctl.Review.Patch)
			products.DELETE("/:id/reviews/:review_id", ctl.Review.Delete)
		}

		// carts 匿名购物车
		carts := api.Group("/carts")
		{
			carts.POST("", middleware.CooldownByIP(opts.Limiter, "cart_create", opts.CartCreateInterval), ctl.Cart.Create)
			carts.GET("/:id", ctl.Cart.Get)
			carts.DELETE("/:id", ctl.Cart.Delete)
			carts.GET("/:id/items", ctl.Cart.ListItems)
			carts.POST("/:id/items", ctl.Cart.AddItem)
			carts.GET("/:id/items/:item_id", ctl.Cart.GetItem)
			carts.PATCH("/:id/items/:item_id", ctl.Cart.UpdateItem)
			carts.DELETE("/:id/items/:item_id", ctl.Cart.DeleteItem)
		}

		// orders 需登录，修改与删除仅管理员
		orders := api.Group("/orders", authed)
		{
			orders.GET("", ctl.Order.List)
			orders.POST("", ctl.Order.Create)
			orders.GET("/:id", ctl.Order.Get)
			orders.PUT("/:id", withAdmin(ctl.Order.Update)...)
			orders.PATCH("/:id", withAdmin(ctl.Order.Update)...)
			orders.DELETE("/:id", withAdmin(ctl.Order.Delete)...)
		}

		// customers 需登录，me 以外仅管理员
		customers := api.Group("/customers", authed)
		{
			customers.GET("/me", ctl.Customer.Me)
			customers.PUT("/me", ctl.Customer.UpdateMe)
			customers.GET("/me/address", ctl.Customer.MyAddress)
			customers.PUT("/me/address", ctl.Customer.SaveMyAddress)

			customers.GET("", withAdmin(ctl.Customer.List)...)
			customers.POST("", withAdmin(ctl.Customer.Create)...)
			customers.GET("/:id", withAdmin(ctl.Customer.Get)...)
			customers.PUT("/:id", withAdmin(ctl.Customer.Update)...)
			customers.PATCH("/:id", withAdmin(ctl.Customer.Patch)...)
			customers.DELETE("/:id", withAdmin(ctl.Customer.Delete)...)
		}

		// tags 通用标签
		tags := api.Group("/tags")
		{
			tags.GET("", ctl.Tag.ListTags)
			tags.GET("/:entity_type/:entity_id", ctl.Tag.TagsFor)
			tags.POST("/:entity_type/:entity_id", withAdmin(ctl.Tag.Attach)...)
			tags.DELETE("/items/:id", withAdmin(ctl.Tag.Detach)...)
		}

		// admin 后台
		adminGroup := api.Group("/admin", admin...)
		{
			adminGroup.GET("/products", ctl.Admin.ListProducts)
			adminGroup.PATCH("/products/:id/price", ctl.Admin.SetPrice)
			adminGroup.PUT("/products/:id/promotions", ctl.Admin.AssignPromotions)
			adminGroup.GET("/promotions", ctl.Admin.ListPromotions)
			adminGroup.POST("/promotions", ctl.Admin.CreatePromotion)
			adminGroup.GET("/customers", ctl.Admin.ListCustomers)
			adminGroup.PATCH("/customers/:id/membership", ctl.Admin.SetMembership)
		}
	}
}
