package model

import (
	"time"

	"gorm.io/datatypes"
)

// 通知投递状态
const (
	NotificationDelivered = "delivered"
	NotificationFailed    = "failed"
)

// NotificationLog 下单通知投递记录，每个 handler 一行
type NotificationLog struct {
	ID        int64          `gorm:"primaryKey;autoIncrement"`
	Event     string         `gorm:"size:64;not null"`
	Handler   string         `gorm:"size:64;not null;index"`
	OrderID   int64          `gorm:"index;not null"`
	Status    string         `gorm:"size:16;not null;index"`
	Error     string         `gorm:"size:1024"`
	Payload   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}
