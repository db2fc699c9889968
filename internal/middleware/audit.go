package middleware

import (
	"context"
	"reflect"

	"gorm.io/gorm"
)

// ==================== 审计上下文 ====================

type auditContextKey struct{}

// AuditInfo 当前操作人
type AuditInfo struct {
	UserID   int64
	Username string
}

// WithAuditInfo 注入操作人到 context，认证中间件在解析 token 后调用
func WithAuditInfo(ctx context.Context, userID int64, username string) context.Context {
	return context.WithValue(ctx, auditContextKey{}, &AuditInfo{
		UserID:   userID,
		Username: username,
	})
}

// GetAuditInfo 从 context 获取操作人
func GetAuditInfo(ctx context.Context) *AuditInfo {
	if ctx == nil {
		return nil
	}
	if info, ok := ctx.Value(auditContextKey{}).(*AuditInfo); ok {
		return info
	}
	return nil
}

// ==================== GORM 回调 ====================

const (
	auditFieldCreatedBy = "CreatedBy"
	auditFieldUpdatedBy = "UpdatedBy"
)

// RegisterAuditCallbacks 注册审计回调
// 带 CreatedBy/UpdatedBy 字段的模型 (model.AuditMixin) 在写入时自动填充
func RegisterAuditCallbacks(db *gorm.DB) error {
	err := db.Callback().Create().Before("gorm:create").Register("audit:create", func(tx *gorm.DB) {
		info := GetAuditInfo(tx.Statement.Context)
		if info == nil || tx.Statement.Schema == nil {
			return
		}
		fillOnCreate(tx, auditFieldCreatedBy, info.UserID)
		fillOnCreate(tx, auditFieldUpdatedBy, info.UserID)
	})
	if err != nil {
		return err
	}

	return db.Callback().Update().Before("gorm:update").Register("audit:update", func(tx *gorm.DB) {
		info := GetAuditInfo(tx.Statement.Context)
		if info == nil || tx.Statement.Schema == nil {
			return
		}
		if tx.Statement.Schema.LookUpField(auditFieldUpdatedBy) == nil {
			return
		}
		// SetColumn 同时兼容 struct 与 map 形式的更新
		tx.Statement.SetColumn(auditFieldUpdatedBy, info.UserID, true)
	})
}

// fillOnCreate 仅填充零值字段，支持批量插入
func fillOnCreate(tx *gorm.DB, fieldName string, value int64) {
	field := tx.Statement.Schema.LookUpField(fieldName)
	if field == nil {
		return
	}

	ctx := tx.Statement.Context
	rv := tx.Statement.ReflectValue
	switch rv.Kind() {
	case reflect.Struct:
		if _, isZero := field.ValueOf(ctx, rv); isZero {
			_ = field.Set(ctx, rv, value)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			elem := reflect.Indirect(rv.Index(i))
			if _, isZero := field.ValueOf(ctx, elem); isZero {
				_ = field.Set(ctx, elem, value)
			}
		}
	}
}
