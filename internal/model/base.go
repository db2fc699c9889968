package model

// AuditMixin 审计字段，由 GORM 回调根据请求身份自动填充
type AuditMixin struct {
	CreatedBy int64 `gorm:"index;default:0;comment:创建人ID"`
	UpdatedBy int64 `gorm:"default:0;comment:更新人ID"`
}

// All 需要迁移的全部模型，顺序无关，GORM 会按依赖排序
func All() []interface{} {
	return []interface{}{
		&User{},
		&Collection{},
		&Product{},
		&Promotion{},
		&Review{},
		&Customer{},
		&Address{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&Tag{},
		&TaggedItem{},
		&NotificationLog{},
	}
}
