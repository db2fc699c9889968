package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/api/dto"
	"storefront/internal/repository"
)

func newTagTestService(t *testing.T) (*services, *TagService) {
	t.Helper()
	svc := newServices(t, nil)
	tags := svc.tags
	tags.RegisterEntity(EntityProduct, repository.NewProductRepository(svc.db).Exists)
	tags.RegisterEntity(EntityCollection, repository.NewCollectionRepository(svc.db).Exists)
	return svc, tags
}

func TestTagService_AttachByLabelAndID(t *testing.T) {
	svc, tags := newTagTestService(t)
	ctx := context.Background()
	col := svc.seedCollection(t, "Kitchen")
	p := svc.seedProduct(t, col.ID, "Mug", "5")

	first, err := tags.Attach(ctx, EntityProduct, p.ID, &dto.AttachTagRequest{Label: "gift"})
	require.NoError(t, err)
	require.NotNil(t, first.Tag)
	assert.Equal(t, "gift", first.Tag.Label)

	// 同名 label 复用已有标签
	second, err := tags.Attach(ctx, EntityCollection, col.ID, &dto.AttachTagRequest{Label: "gift"})
	require.NoError(t, err)
	assert.Equal(t, first.TagID, second.TagID)

	// 重复挂载允许并保留
	_, err = tags.Attach(ctx, EntityProduct, p.ID, &dto.AttachTagRequest{TagID: &first.TagID})
	require.NoError(t, err)

	got, err := tags.TagsFor(ctx, EntityProduct, p.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.TagID, got[0].ID)
	assert.Equal(t, first.TagID, got[1].ID)

	all, err := tags.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTagService_Errors(t *testing.T) {
	svc, tags := newTagTestService(t)
	ctx := context.Background()
	col := svc.seedCollection(t, "Kitchen")

	_, err := tags.Attach(ctx, "planet", 1, &dto.AttachTagRequest{Label: "x"})
	assert.ErrorIs(t, err, ErrUnknownEntityType)

	_, err = tags.TagsFor(ctx, "planet", 1)
	assert.ErrorIs(t, err, ErrUnknownEntityType)

	_, err = tags.Attach(ctx, EntityProduct, 999, &dto.AttachTagRequest{Label: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = tags.Attach(ctx, EntityCollection, col.ID, &dto.AttachTagRequest{TagID: ptr(int64(42))})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "tag_id")

	_, err = tags.Attach(ctx, EntityCollection, col.ID, &dto.AttachTagRequest{})
	require.ErrorAs(t, err, &ve)

	assert.ErrorIs(t, tags.Detach(ctx, 12345), ErrNotFound)
}

func TestTagService_Detach(t *testing.T) {
	svc, tags := newTagTestService(t)
	ctx := context.Background()
	col := svc.seedCollection(t, "Kitchen")

	item, err := tags.Attach(ctx, EntityCollection, col.ID, &dto.AttachTagRequest{Label: "seasonal"})
	require.NoError(t, err)

	require.NoError(t, tags.Detach(ctx, item.ID))

	got, err := tags.TagsFor(ctx, EntityCollection, col.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, []string{EntityCollection, EntityProduct}, tags.EntityTypes())
}
