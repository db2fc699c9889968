package repository

import (
	"context"

	"gorm.io/gorm"

	"storefront/internal/model"
)

// NotificationLogRepository 通知投递记录仓储
type NotificationLogRepository interface {
	Create(ctx context.Context, log *model.NotificationLog) error
	ListByOrder(ctx context.Context, orderID int64) ([]model.NotificationLog, error)
}

type notificationLogRepo struct {
	db *gorm.DB
}

func NewNotificationLogRepository(db *gorm.DB) NotificationLogRepository {
	return &notificationLogRepo{db: db}
}

func (r *notificationLogRepo) Create(ctx context.Context, log *model.NotificationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *notificationLogRepo) ListByOrder(ctx context.Context, orderID int64) ([]model.NotificationLog, error) {
	var logs []model.NotificationLog
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&logs).Error
	return logs, err
}
