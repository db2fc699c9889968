package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/model"
)

// TagRepository 标签仓储接口
type TagRepository interface {
	CreateTag(ctx context.Context, tag *model.Tag) error
	GetTag(ctx context.Context, id int64) (*model.Tag, error)
	FindTagByLabel(ctx context.Context, label string) (*model.Tag, error)
	ListTags(ctx context.Context) ([]model.Tag, error)

	CreateTaggedItem(ctx context.Context, item *model.TaggedItem) error
	// TagsFor 返回挂在实体上的全部标签，重复挂载会重复返回，按挂载顺序
	TagsFor(ctx context.Context, contentType string, objectID int64) ([]model.Tag, error)
	DeleteTaggedItem(ctx context.Context, id int64) (int64, error)

	Transaction(ctx context.Context, fn func(txRepo TagRepository) error) error
}

type tagRepo struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepo{db: db}
}

func (r *tagRepo) CreateTag(ctx context.Context, tag *model.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *tagRepo) GetTag(ctx context.Context, id int64) (*model.Tag, error) {
	var tag model.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepo) FindTagByLabel(ctx context.Context, label string) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.WithContext(ctx).Where("label = ?", label).Order("id ASC").First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *tagRepo) ListTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).Order("label ASC, id ASC").Find(&tags).Error
	return tags, err
}

func (r *tagRepo) CreateTaggedItem(ctx context.Context, item *model.TaggedItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (r *tagRepo) TagsFor(ctx context.Context, contentType string, objectID int64) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).
		Table("tagged_items").
		Select("tags.id, tags.label").
		Joins("JOIN tags ON tags.id = tagged_items.tag_id").
		Where("tagged_items.content_type = ? AND tagged_items.object_id = ?", contentType, objectID).
		Order("tagged_items.id ASC").
		Scan(&tags).Error
	return tags, err
}

func (r *tagRepo) DeleteTaggedItem(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&model.TaggedItem{}, id)
	return result.RowsAffected, result.Error
}

func (r *tagRepo) Transaction(ctx context.Context, fn func(txRepo TagRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&tagRepo{db: tx})
	})
}
