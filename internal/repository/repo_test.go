package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storefront/internal/model"
	"storefront/pkg/database"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.Open(database.Config{Driver: database.DriverSQLite, DSN: ":memory:", LogLevel: "silent"})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := database.Migrate(db, model.All()...); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func seedCollection(t *testing.T, db *gorm.DB, title string) *model.Collection {
	c := &model.Collection{Title: title}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("创建集合失败: %v", err)
	}
	return c
}

func seedProduct(t *testing.T, db *gorm.DB, collectionID int64, title, price string) *model.Product {
	p := &model.Product{
		Title:        title,
		Slug:         title,
		UnitPrice:    decimal.RequireFromString(price),
		Inventory:    10,
		CollectionID: collectionID,
	}
	if err := db.Omit("Promotions", "Collection").Create(p).Error; err != nil {
		t.Fatalf("创建商品失败: %v", err)
	}
	return p
}

// ==================== Collection ====================

func TestCollectionRepo_ProductsCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCollectionRepository(db)
	ctx := context.Background()

	books := seedCollection(t, db, "Books")
	empty := seedCollection(t, db, "Apparel")
	seedProduct(t, db, books.ID, "A", "10")
	seedProduct(t, db, books.ID, "B", "20")

	got, err := repo.GetByID(ctx, books.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ProductsCount != 2 {
		t.Errorf("ProductsCount = %d, want 2", got.ProductsCount)
	}

	list, total, err := repo.List(ctx, Pagination{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("List() total = %d len = %d, want 2", total, len(list))
	}
	// 按标题排序
	if list[0].ID != empty.ID || list[0].ProductsCount != 0 {
		t.Errorf("List()[0] = %+v, want Apparel with 0 products", list[0])
	}
	if list[1].ProductsCount != 2 {
		t.Errorf("List()[1].ProductsCount = %d, want 2", list[1].ProductsCount)
	}
}

func TestCollectionRepo_ClearFeaturedProduct(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCollectionRepository(db)
	ctx := context.Background()

	c := seedCollection(t, db, "Books")
	p := seedProduct(t, db, c.ID, "A", "10")
	c.FeaturedProductID = &p.ID
	if err := repo.Update(ctx, c); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if err := repo.ClearFeaturedProduct(ctx, p.ID); err != nil {
		t.Fatalf("ClearFeaturedProduct() error = %v", err)
	}
	got, _ := repo.GetByID(ctx, c.ID)
	if got.FeaturedProductID != nil {
		t.Errorf("FeaturedProductID = %v, want nil", *got.FeaturedProductID)
	}
}

// ==================== Product ====================

func TestProductRepo_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	c1 := seedCollection(t, db, "Kitchen")
	c2 := seedCollection(t, db, "Garden")
	seedProduct(t, db, c1.ID, "Coffee Mug", "12.50")
	seedProduct(t, db, c1.ID, "Tea Pot", "30")
	seedProduct(t, db, c2.ID, "Garden Hose", "45")

	desc := "A sturdy mug for tea"
	withDesc := seedProduct(t, db, c2.ID, "Planter", "8")
	withDesc.Description = &desc
	if err := repo.Update(ctx, withDesc); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	tests := []struct {
		name   string
		filter ProductFilter
		want   []string
	}{
		{"全部按标题", ProductFilter{}, []string{"Coffee Mug", "Garden Hose", "Planter", "Tea Pot"}},
		{"按集合", ProductFilter{CollectionID: &c1.ID}, []string{"Coffee Mug", "Tea Pot"}},
		{"搜索标题或描述，不区分大小写", ProductFilter{Search: "MUG"}, []string{"Coffee Mug", "Planter"}},
		{"价格区间", ProductFilter{PriceGT: decPtr("10"), PriceLT: decPtr("40")}, []string{"Coffee Mug", "Tea Pot"}},
		{"价格降序", ProductFilter{Ordering: "-unit_price"}, []string{"Garden Hose", "Tea Pot", "Coffee Mug", "Planter"}},
		{"分页", ProductFilter{Pagination: Pagination{Page: 2, PageSize: 3}}, []string{"Tea Pot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, _, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			var titles []string
			for _, p := range products {
				titles = append(titles, p.Title)
			}
			if len(titles) != len(tt.want) {
				t.Fatalf("List() = %v, want %v", titles, tt.want)
			}
			for i := range titles {
				if titles[i] != tt.want[i] {
					t.Errorf("List()[%d] = %s, want %s", i, titles[i], tt.want[i])
				}
			}
		})
	}
}

func TestProductRepo_DeleteRestrictedByOrderItems(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	c := seedCollection(t, db, "Kitchen")
	p := seedProduct(t, db, c.ID, "Mug", "10")

	user := &model.User{Username: "u", Password: "x", Email: "u@example.com", IsActive: true}
	db.Create(user)
	customer := &model.Customer{UserID: user.ID, Email: "u@example.com", Membership: model.MembershipBronze}
	db.Omit("Address").Create(customer)
	order := &model.Order{CustomerID: customer.ID, PaymentStatus: model.PaymentStatusPending}
	db.Omit("Customer", "Items").Create(order)
	db.Omit("Product").Create(&model.OrderItem{OrderID: order.ID, ProductID: p.ID, Quantity: 1, UnitPrice: p.UnitPrice})

	count, err := repo.CountOrderItems(ctx, p.ID)
	if err != nil || count != 1 {
		t.Fatalf("CountOrderItems() = %d, %v; want 1", count, err)
	}

	_, err = repo.Delete(ctx, p.ID)
	if !errors.Is(err, gorm.ErrForeignKeyViolated) {
		t.Errorf("Delete() error = %v, want ErrForeignKeyViolated", err)
	}
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// ==================== Cart ====================

func TestCartRepo_IncrementAndTotals(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	c := seedCollection(t, db, "Kitchen")
	p := seedProduct(t, db, c.ID, "Mug", "5.00")

	cart := &model.Cart{}
	if err := repo.Create(ctx, cart); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(cart.ID) != 36 {
		t.Fatalf("cart.ID = %q, want uuid", cart.ID)
	}

	rows, err := repo.IncrementItem(ctx, cart.ID, p.ID, 2)
	if err != nil || rows != 0 {
		t.Fatalf("IncrementItem() on empty cart = %d, %v", rows, err)
	}
	if err := repo.CreateItem(ctx, &model.CartItem{CartID: cart.ID, ProductID: p.ID, Quantity: 2}); err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	rows, err = repo.IncrementItem(ctx, cart.ID, p.ID, 3)
	if err != nil || rows != 1 {
		t.Fatalf("IncrementItem() = %d, %v", rows, err)
	}

	// 唯一约束
	err = repo.CreateItem(ctx, &model.CartItem{CartID: cart.ID, ProductID: p.ID, Quantity: 1})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("CreateItem() duplicate error = %v, want ErrDuplicatedKey", err)
	}

	got, err := repo.GetByID(ctx, cart.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 5 {
		t.Fatalf("Items = %+v, want one item with quantity 5", got.Items)
	}
	if !got.TotalPrice().Equal(decimal.RequireFromString("25")) {
		t.Errorf("TotalPrice() = %s, want 25", got.TotalPrice())
	}
}

// dryRunPostgres 只生成 SQL 不连库，用来检查行锁子句
func dryRunPostgres(t *testing.T) (*gorm.DB, *[]string) {
	db, err := gorm.Open(postgres.Open("host=localhost user=u dbname=d sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	if err != nil {
		t.Fatalf("打开 dry-run 连接失败: %v", err)
	}
	var statements []string
	err = db.Callback().Query().After("gorm:query").Register("test:capture", func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
	})
	if err != nil {
		t.Fatalf("注册回调失败: %v", err)
	}
	return db, &statements
}

func TestCartRepo_LockClauses(t *testing.T) {
	db, statements := dryRunPostgres(t)
	repo := NewCartRepository(db)
	ctx := context.Background()
	const cartID = "3f2b8c1e-9d4a-4e7b-8a61-2c5d9e0f1a2b"

	tests := []struct {
		name   string
		run    func() error
		locked bool
	}{
		{"Lock", func() error { _, err := repo.Lock(ctx, cartID); return err }, true},
		{"LockItems", func() error { _, err := repo.LockItems(ctx, cartID); return err }, true},
		{"ListItems", func() error { _, err := repo.ListItems(ctx, cartID); return err }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			*statements = nil
			// dry-run 下 First 没有结果会返回 ErrRecordNotFound，只关心生成的 SQL
			if err := tt.run(); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				t.Fatalf("%s() error = %v", tt.name, err)
			}
			if len(*statements) == 0 {
				t.Fatalf("%s() 没有生成查询", tt.name)
			}
			sql := (*statements)[0]
			if got := strings.Contains(sql, "FOR UPDATE"); got != tt.locked {
				t.Errorf("%s() SQL = %q, FOR UPDATE = %v, want %v", tt.name, sql, got, tt.locked)
			}
		})
	}
}

func TestCartRepo_LockItemsSQLite(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	c := seedCollection(t, db, "Kitchen")
	mug := seedProduct(t, db, c.ID, "Mug", "5.00")
	bowl := seedProduct(t, db, c.ID, "Bowl", "7.00")

	cart := &model.Cart{}
	if err := repo.Create(ctx, cart); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for _, p := range []*model.Product{mug, bowl} {
		if err := repo.CreateItem(ctx, &model.CartItem{CartID: cart.ID, ProductID: p.ID, Quantity: 1}); err != nil {
			t.Fatalf("CreateItem() error = %v", err)
		}
	}

	items, err := repo.LockItems(ctx, cart.ID)
	if err != nil {
		t.Fatalf("LockItems() error = %v", err)
	}
	if len(items) != 2 || items[0].ProductID != mug.ID || items[1].ProductID != bowl.ID {
		t.Fatalf("LockItems() = %+v, want mug then bowl", items)
	}
	if items[1].Product == nil || !items[1].Product.UnitPrice.Equal(decimal.RequireFromString("7")) {
		t.Errorf("LockItems() product not preloaded: %+v", items[1].Product)
	}
}

func TestCartRepo_DeleteCreatedBefore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	c := seedCollection(t, db, "Kitchen")
	p := seedProduct(t, db, c.ID, "Mug", "5.00")

	old := &model.Cart{CreatedAt: time.Now().Add(-48 * time.Hour)}
	fresh := &model.Cart{}
	repo.Create(ctx, old)
	repo.Create(ctx, fresh)
	repo.CreateItem(ctx, &model.CartItem{CartID: old.ID, ProductID: p.ID, Quantity: 1})

	n, err := repo.DeleteCreatedBefore(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteCreatedBefore() error = %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	if ok, _ := repo.Exists(ctx, fresh.ID); !ok {
		t.Error("fresh cart should survive")
	}
	if cnt, _ := repo.CountItems(ctx, old.ID); cnt != 0 {
		t.Errorf("items of deleted cart = %d, want 0", cnt)
	}
}

// ==================== Tag ====================

func TestTagRepo_DuplicatesKept(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	sale := &model.Tag{Label: "sale"}
	repo.CreateTag(ctx, sale)

	for i := 0; i < 2; i++ {
		if err := repo.CreateTaggedItem(ctx, &model.TaggedItem{TagID: sale.ID, ContentType: "product", ObjectID: 7}); err != nil {
			t.Fatalf("CreateTaggedItem() error = %v", err)
		}
	}
	repo.CreateTaggedItem(ctx, &model.TaggedItem{TagID: sale.ID, ContentType: "collection", ObjectID: 7})

	tags, err := repo.TagsFor(ctx, "product", 7)
	if err != nil {
		t.Fatalf("TagsFor() error = %v", err)
	}
	if len(tags) != 2 || tags[0].Label != "sale" || tags[1].Label != "sale" {
		t.Errorf("TagsFor() = %+v, want sale twice", tags)
	}
}

// ==================== Customer ====================

func TestCustomerRepo_UpsertAddress(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	customer := &model.Customer{UserID: 1, Email: "a@example.com", Membership: model.MembershipBronze}
	if err := repo.Create(ctx, customer); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.UpsertAddress(ctx, &model.Address{CustomerID: customer.ID, Street: "1 Main", City: "Oslo"}); err != nil {
		t.Fatalf("UpsertAddress() error = %v", err)
	}
	if err := repo.UpsertAddress(ctx, &model.Address{CustomerID: customer.ID, Street: "2 Side", City: "Bergen", Zip: "5003"}); err != nil {
		t.Fatalf("UpsertAddress() second error = %v", err)
	}

	got, err := repo.GetByID(ctx, customer.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Address == nil || got.Address.City != "Bergen" || got.Address.Zip != "5003" {
		t.Errorf("Address = %+v, want Bergen/5003", got.Address)
	}

	rows, err := repo.Delete(ctx, customer.ID)
	if err != nil || rows != 1 {
		t.Fatalf("Delete() = %d, %v", rows, err)
	}
	if _, err := repo.GetAddress(ctx, customer.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("address should be gone, got %v", err)
	}
}

func TestCustomerRepo_EmailTaken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &model.Customer{UserID: 1, Email: "a@example.com", Membership: model.MembershipBronze}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		email string
		want  bool
	}{
		{"a@example.com", true},
		{"b@example.com", false},
	}
	for _, tt := range tests {
		got, err := repo.EmailTaken(ctx, tt.email)
		if err != nil {
			t.Fatalf("EmailTaken(%q) error = %v", tt.email, err)
		}
		if got != tt.want {
			t.Errorf("EmailTaken(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}
