package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ==================== 业务错误 ====================
// 文案直接返回给客户端

var (
	ErrNotFound = errors.New("Not found.")

	ErrProductProtected    = errors.New("Product cannot be deleted as it is associated with an order item.")
	ErrCollectionProtected = errors.New("Collection cannot be deleted as it has one or more products associated with it.")
	ErrCustomerProtected   = errors.New("Customer cannot be deleted as it has one or more orders associated with it.")
	ErrCustomerEmailTaken  = errors.New("customer with this email already exists.")

	ErrCartNotFound    = errors.New("Cart with given ID was not found")
	ErrCartEmpty       = errors.New("Cart is empty")
	ErrProductNotFound = errors.New("Product with given ID was not found")

	ErrUnknownEntityType = errors.New("Unknown entity type.")

	ErrInvalidCredentials = errors.New("No active account found with the given credentials")
	ErrUserDisabled       = errors.New("User account is disabled.")
	ErrInvalidToken       = errors.New("Token is invalid or expired")
	ErrUsernameExists     = errors.New("A user with that username already exists.")
	ErrEmailExists        = errors.New("A user with that email already exists.")
)

// ValidationError 字段级校验错误，对应 400
type ValidationError struct {
	Fields map[string]string
	// 可选的底层哨兵错误，便于 errors.Is 判断
	Err error
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// fieldError 单字段错误
func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// fieldSentinel 单字段错误，消息取自哨兵错误
func fieldSentinel(field string, sentinel error) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: sentinel.Error()}, Err: sentinel}
}

// doesNotExist 外键字段指向不存在的记录
func doesNotExist(field string, id int64) *ValidationError {
	return fieldError(field, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
}

// notFound 把 gorm 的记录不存在转换为 ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
