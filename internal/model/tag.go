package model

// Tag 通用标签
type Tag struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Label string `gorm:"size:255;not null;index"`
}

func (Tag) TableName() string {
	return "tags"
}

// TaggedItem 标签挂载记录
// ContentType 为实体的符号名 (product/collection/...)，ObjectID 为实体主键，不做外键约束
type TaggedItem struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	TagID       int64  `gorm:"index;not null"`
	Tag         *Tag   `gorm:"constraint:OnDelete:CASCADE"`
	ContentType string `gorm:"size:100;not null;index:idx_tagged_object,priority:1"`
	ObjectID    int64  `gorm:"not null;index:idx_tagged_object,priority:2"`
}

func (TaggedItem) TableName() string {
	return "tagged_items"
}
