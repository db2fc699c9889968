package dto

import "storefront/internal/model"

// AttachTagRequest tag_id 与 label 二选一，label 不存在时自动创建
type AttachTagRequest struct {
	TagID *int64 `json:"tag_id" binding:"omitempty,gte=1"`
	Label string `json:"label" binding:"omitempty,max=255"`
}

type TagResponse struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

func NewTagResponse(t *model.Tag) TagResponse {
	return TagResponse{ID: t.ID, Label: t.Label}
}

type TaggedItemResponse struct {
	ID         int64       `json:"id"`
	Tag        TagResponse `json:"tag"`
	EntityType string      `json:"entity_type"`
	EntityID   int64       `json:"entity_id"`
}

func NewTaggedItemResponse(item *model.TaggedItem) TaggedItemResponse {
	resp := TaggedItemResponse{
		ID:         item.ID,
		EntityType: item.ContentType,
		EntityID:   item.ObjectID,
	}
	if item.Tag != nil {
		resp.Tag = NewTagResponse(item.Tag)
	}
	return resp
}
