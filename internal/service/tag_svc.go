package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"

	"storefront/internal/api/dto"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// 内置实体类型
const (
	EntityProduct    = "product"
	EntityCollection = "collection"
	EntityCustomer   = "customer"
	EntityOrder      = "order"
)

// EntityResolver 判断实体是否存在
type EntityResolver func(ctx context.Context, id int64) (bool, error)

// TagService 通用标签，实体类型由调用方显式注册
type TagService struct {
	tagRepo repository.TagRepository

	mu        sync.RWMutex
	resolvers map[string]EntityResolver
}

func NewTagService(tagRepo repository.TagRepository) *TagService {
	return &TagService{
		tagRepo:   tagRepo,
		resolvers: make(map[string]EntityResolver),
	}
}

// RegisterEntity 注册实体类型，同名覆盖
func (s *TagService) RegisterEntity(entityType string, resolver EntityResolver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolvers[entityType] = resolver
}

// EntityTypes 已注册的实体类型
func (s *TagService) EntityTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	types := make([]string, 0, len(s.resolvers))
	for t := range s.resolvers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func (s *TagService) resolver(entityType string) (EntityResolver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.resolvers[entityType]
	if !ok {
		return nil, fieldSentinel("entity_type", ErrUnknownEntityType)
	}
	return r, nil
}

// Attach 给实体挂标签，允许重复挂载
func (s *TagService) Attach(ctx context.Context, entityType string, entityID int64, req *dto.AttachTagRequest) (*model.TaggedItem, error) {
	resolve, err := s.resolver(entityType)
	if err != nil {
		return nil, err
	}

	label := strings.TrimSpace(req.Label)
	if req.TagID == nil && label == "" {
		return nil, fieldError("tag_id", "Either tag_id or label is required.")
	}

	exists, err := resolve(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	item := &model.TaggedItem{ContentType: entityType, ObjectID: entityID}
	err = s.tagRepo.Transaction(ctx, func(txRepo repository.TagRepository) error {
		tag, err := s.lookupTag(ctx, txRepo, req.TagID, label)
		if err != nil {
			return err
		}
		item.TagID = tag.ID
		item.Tag = tag
		return txRepo.CreateTaggedItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// lookupTag tag_id 优先，其次按 label 查找或创建
func (s *TagService) lookupTag(ctx context.Context, repo repository.TagRepository, tagID *int64, label string) (*model.Tag, error) {
	if tagID != nil {
		tag, err := repo.GetTag(ctx, *tagID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, doesNotExist("tag_id", *tagID)
		}
		return tag, err
	}

	tag, err := repo.FindTagByLabel(ctx, label)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	tag = &model.Tag{Label: label}
	if err := repo.CreateTag(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// TagsFor 实体上的全部标签，按挂载顺序，重复保留
func (s *TagService) TagsFor(ctx context.Context, entityType string, entityID int64) ([]model.Tag, error) {
	if _, err := s.resolver(entityType); err != nil {
		return nil, err
	}
	return s.tagRepo.TagsFor(ctx, entityType, entityID)
}

func (s *TagService) Detach(ctx context.Context, taggedItemID int64) error {
	rows, err := s.tagRepo.DeleteTaggedItem(ctx, taggedItemID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TagService) ListTags(ctx context.Context) ([]model.Tag, error) {
	return s.tagRepo.ListTags(ctx)
}
