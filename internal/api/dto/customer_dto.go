package dto

import "storefront/internal/model"

// CustomerRequest 后台创建/整体更新顾客
type CustomerRequest struct {
	UserID     int64  `json:"user_id" binding:"required,gte=1"`
	FirstName  string `json:"first_name" binding:"required,max=30"`
	LastName   string `json:"last_name" binding:"required,max=30"`
	Email      string `json:"email" binding:"required,email,max=254"`
	Phone      string `json:"phone" binding:"max=255"`
	BirthDate  *Date  `json:"birth_date"`
	Membership string `json:"membership" binding:"omitempty,oneof=B S G"`
}

// CustomerPatchRequest 后台部分更新顾客
type CustomerPatchRequest struct {
	FirstName  *string `json:"first_name" binding:"omitempty,max=30"`
	LastName   *string `json:"last_name" binding:"omitempty,max=30"`
	Email      *string `json:"email" binding:"omitempty,email,max=254"`
	Phone      *string `json:"phone" binding:"omitempty,max=255"`
	BirthDate  *Date   `json:"birth_date"`
	Membership *string `json:"membership" binding:"omitempty,oneof=B S G"`
}

// MeUpdateRequest 顾客修改自己的资料，会员等级与邮箱不可自改
type MeUpdateRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=30"`
	LastName  *string `json:"last_name" binding:"omitempty,max=30"`
	Phone     *string `json:"phone" binding:"omitempty,max=255"`
	BirthDate *Date   `json:"birth_date"`
}

type MembershipRequest struct {
	Membership string `json:"membership" binding:"required,oneof=B S G"`
}

type AddressRequest struct {
	Street string `json:"street" binding:"required,max=255"`
	City   string `json:"city" binding:"required,max=255"`
	Zip    string `json:"zip" binding:"max=20"`
}

type AddressResponse struct {
	Street string `json:"street"`
	City   string `json:"city"`
	Zip    string `json:"zip"`
}

func NewAddressResponse(a *model.Address) *AddressResponse {
	if a == nil {
		return nil
	}
	return &AddressResponse{Street: a.Street, City: a.City, Zip: a.Zip}
}

type CustomerResponse struct {
	ID         int64            `json:"id"`
	UserID     int64            `json:"user_id"`
	FirstName  string           `json:"first_name"`
	LastName   string           `json:"last_name"`
	Email      string           `json:"email"`
	Phone      string           `json:"phone"`
	BirthDate  *Date            `json:"birth_date"`
	Membership string           `json:"membership"`
	Address    *AddressResponse `json:"address"`
}

func NewCustomerResponse(c *model.Customer) CustomerResponse {
	return CustomerResponse{
		ID:         c.ID,
		UserID:     c.UserID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Phone:      c.Phone,
		BirthDate:  datePtr(c.BirthDate),
		Membership: c.Membership,
		Address:    NewAddressResponse(c.Address),
	}
}

// AdminCustomerRow 后台顾客列表行
type AdminCustomerRow struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Membership string `json:"membership"`
}
