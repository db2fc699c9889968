package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/api/dto"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/pkg/database"
)

// ==================== 测试辅助 ====================

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Config{Driver: database.DriverSQLite, DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err, "连接测试数据库失败")
	require.NoError(t, database.Migrate(db, model.All()...), "数据库迁移失败")
	return db
}

// services 测试用的服务集合，共享同一个库
type services struct {
	db          *gorm.DB
	collections *CollectionService
	products    *ProductService
	reviews     *ReviewService
	carts       *CartService
	customers   *CustomerService
	orders      *OrderService
	tags        *TagService
	users       *UserService
}

func newServices(t *testing.T, notifier Notifier) *services {
	t.Helper()
	db := setupServiceTestDB(t)
	log := zap.NewNop()

	collectionRepo := repository.NewCollectionRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	cartRepo := repository.NewCartRepository(db)

	return &services{
		db:          db,
		collections: NewCollectionService(collectionRepo, productRepo),
		products:    NewProductService(productRepo, collectionRepo, repository.NewPromotionRepository(db)),
		reviews:     NewReviewService(repository.NewReviewRepository(db), productRepo),
		carts:       NewCartService(cartRepo, productRepo, log),
		customers:   NewCustomerService(customerRepo, userRepo, log),
		orders:      NewOrderService(repository.NewCheckoutUnitOfWork(db), orderRepo, customerRepo, notifier, log),
		tags:        NewTagService(repository.NewTagRepository(db)),
		users:       NewUserService(userRepo),
	}
}

func (s *services) seedCollection(t *testing.T, title string) *model.Collection {
	t.Helper()
	c := &model.Collection{Title: title}
	require.NoError(t, s.db.Create(c).Error)
	return c
}

func (s *services) seedProduct(t *testing.T, collectionID int64, title, price string) *model.Product {
	t.Helper()
	p := &model.Product{
		Title:        title,
		Slug:         Slugify(title),
		UnitPrice:    decimal.RequireFromString(price),
		Inventory:    10,
		CollectionID: collectionID,
	}
	require.NoError(t, s.db.Omit("Promotions", "Collection").Create(p).Error)
	return p
}

func (s *services) seedUser(t *testing.T, username string, staff bool) *model.User {
	t.Helper()
	u := &model.User{
		Username:  username,
		Password:  "x",
		Email:     username + "@example.com",
		FirstName: "First",
		LastName:  "Last",
		IsStaff:   staff,
		IsActive:  true,
	}
	require.NoError(t, s.db.Create(u).Error)
	return u
}

// cartWith 新建购物车并加入商品
func (s *services) cartWith(t *testing.T, items map[int64]int) string {
	t.Helper()
	ctx := context.Background()
	cart, err := s.carts.Create(ctx)
	require.NoError(t, err)
	for productID, qty := range items {
		_, err := s.carts.AddItem(ctx, cart.ID, &dto.AddCartItemRequest{ProductID: productID, Quantity: qty})
		require.NoError(t, err)
	}
	return cart.ID
}

func ptr[T any](v T) *T { return &v }

func mustDecimal(s string) decimal.Decimal { return decimal.RequireFromString(s) }
