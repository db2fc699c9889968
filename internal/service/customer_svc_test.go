package service

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/api/dto"
	"storefront/internal/model"
	"storefront/internal/repository"
)

func TestCustomerService_MeAutoCreate(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()
	user := svc.seedUser(t, "alice", false)

	first, err := svc.customers.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, first.UserID)
	assert.Equal(t, "alice@example.com", first.Email)
	assert.Equal(t, "First", first.FirstName)
	assert.Equal(t, model.MembershipBronze, first.Membership)

	second, err := svc.customers.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "重复访问不应再创建")

	var count int64
	svc.db.Model(&model.Customer{}).Count(&count)
	assert.EqualValues(t, 1, count)

	_, err = svc.customers.Me(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerService_AutoCreateTruncatesByRune(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()
	col := svc.seedCollection(t, "Kitchen")
	mug := svc.seedProduct(t, col.ID, "Mug", "10")

	longName := "A" + strings.Repeat("Ж", 40)
	seed := func(username string) *model.User {
		u := svc.seedUser(t, username, false)
		require.NoError(t, svc.db.Model(u).Updates(map[string]interface{}{
			"first_name": longName,
			"last_name":  strings.Repeat("é", 31),
		}).Error)
		return u
	}

	check := func(t *testing.T, c *model.Customer) {
		t.Helper()
		assert.True(t, utf8.ValidString(c.FirstName), "first_name 不应包含半个字符")
		assert.True(t, utf8.ValidString(c.LastName))
		assert.Equal(t, 30, utf8.RuneCountInString(c.FirstName))
		assert.Equal(t, "A"+strings.Repeat("Ж", 29), c.FirstName)
		assert.Equal(t, strings.Repeat("é", 30), c.LastName)
	}

	t.Run("me", func(t *testing.T) {
		u := seed("boris")
		c, err := svc.customers.Me(ctx, u.ID)
		require.NoError(t, err)
		check(t, c)
	})

	t.Run("下单时创建", func(t *testing.T) {
		u := seed("vera")
		order, err := svc.orders.PlaceOrder(ctx, u.ID, svc.cartWith(t, map[int64]int{mug.ID: 1}))
		require.NoError(t, err)

		c, err := svc.customers.Get(ctx, order.CustomerID)
		require.NoError(t, err)
		check(t, c)
	})

	assert.Equal(t, "Жé", truncate("Жé", 2))
	assert.Equal(t, "Ж", truncate("Жé", 1))
}

func TestCustomerService_UpdateMe(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()
	user := svc.seedUser(t, "alice", false)
	birth := dto.NewDate(time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC))

	got, err := svc.customers.UpdateMe(ctx, user.ID, &dto.MeUpdateRequest{
		Phone:     ptr("555-0100"),
		BirthDate: &birth,
	})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", got.Phone)
	require.NotNil(t, got.BirthDate)
	assert.Equal(t, 1990, got.BirthDate.Year())
	assert.Equal(t, model.MembershipBronze, got.Membership)
}

func TestCustomerService_Address(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()
	user := svc.seedUser(t, "alice", false)

	_, err := svc.customers.MyAddress(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.customers.SaveMyAddress(ctx, user.ID, &dto.AddressRequest{Street: "1 Main St", City: "Springfield"})
	require.NoError(t, err)
	_, err = svc.customers.SaveMyAddress(ctx, user.ID, &dto.AddressRequest{Street: "2 Elm St", City: "Shelbyville", Zip: "12345"})
	require.NoError(t, err)

	got, err := svc.customers.MyAddress(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "2 Elm St", got.Street)
	assert.Equal(t, "12345", got.Zip)

	// 删除顾客时地址一并删除
	customer, err := svc.customers.Me(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, svc.customers.Delete(ctx, customer.ID))

	var count int64
	svc.db.Model(&model.Address{}).Count(&count)
	assert.Zero(t, count)
}

func TestCustomerService_AdminCreate(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()
	alice := svc.seedUser(t, "alice", false)
	bob := svc.seedUser(t, "bob", false)

	created, err := svc.customers.Create(ctx, &dto.CustomerRequest{
		UserID:    alice.ID,
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice.smith@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, model.MembershipBronze, created.Membership)

	tests := []struct {
		name  string
		req   dto.CustomerRequest
		field string
	}{
		{"账号不存在", dto.CustomerRequest{UserID: 999, FirstName: "X", LastName: "Y", Email: "x@example.com"}, "user_id"},
		{"账号已有档案", dto.CustomerRequest{UserID: alice.ID, FirstName: "X", LastName: "Y", Email: "x@example.com"}, "user_id"},
		{"邮箱重复", dto.CustomerRequest{UserID: bob.ID, FirstName: "Bob", LastName: "Y", Email: "alice.smith@example.com"}, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.customers.Create(ctx, &tt.req)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestCustomerService_AutoCreateEmailTaken(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()
	col := svc.seedCollection(t, "Kitchen")
	mug := svc.seedProduct(t, col.ID, "Mug", "10")
	alice := svc.seedUser(t, "alice", false)
	bob := svc.seedUser(t, "bob", false)

	// 管理员给 alice 建档时用了 bob 的邮箱
	_, err := svc.customers.Create(ctx, &dto.CustomerRequest{
		UserID:    alice.ID,
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     bob.Email,
	})
	require.NoError(t, err)

	assertEmailTaken := func(t *testing.T, err error) {
		t.Helper()
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.ErrorIs(t, err, ErrCustomerEmailTaken)
		assert.Equal(t, ErrCustomerEmailTaken.Error(), ve.Fields["email"])
	}

	t.Run("me", func(t *testing.T) {
		_, err := svc.customers.Me(ctx, bob.ID)
		assertEmailTaken(t, err)
	})

	t.Run("下单", func(t *testing.T) {
		cartID := svc.cartWith(t, map[int64]int{mug.ID: 1})
		_, err := svc.orders.PlaceOrder(ctx, bob.ID, cartID)
		assertEmailTaken(t, err)

		var orders int64
		svc.db.Model(&model.Order{}).Count(&orders)
		assert.Zero(t, orders)

		_, err = svc.carts.Get(ctx, cartID)
		assert.NoError(t, err, "失败时购物车应保留")
	})

	var customers int64
	svc.db.Model(&model.Customer{}).Count(&customers)
	assert.EqualValues(t, 1, customers)
}

func TestCustomerService_ListOrderingAndMembership(t *testing.T) {
	svc := newServices(t, nil)
	ctx := context.Background()

	for _, name := range []string{"zed", "amy", "kim"} {
		u := svc.seedUser(t, name, false)
		_, err := svc.customers.Create(ctx, &dto.CustomerRequest{UserID: u.ID, FirstName: name, LastName: "X", Email: u.Email})
		require.NoError(t, err)
	}

	list, total, err := svc.customers.List(ctx, repository.Pagination{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"amy", "kim", "zed"}, []string{list[0].FirstName, list[1].FirstName, list[2].FirstName})

	got, err := svc.customers.SetMembership(ctx, list[0].ID, model.MembershipGold)
	require.NoError(t, err)
	assert.Equal(t, model.MembershipGold, got.Membership)

	_, err = svc.customers.SetMembership(ctx, list[0].ID, "P")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = svc.customers.SetMembership(ctx, 999, model.MembershipSilver)
	assert.ErrorIs(t, err, ErrNotFound)
}
