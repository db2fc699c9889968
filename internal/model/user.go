package model

import "time"

// 系统角色
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User 登录账号
type User struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Username  string `gorm:"size:150;uniqueIndex;not null"`
	Password  string `gorm:"size:255;not null"` // bcrypt 哈希
	Email     string `gorm:"size:254;uniqueIndex;not null"`
	FirstName string `gorm:"size:150"`
	LastName  string `gorm:"size:150"`
	IsStaff   bool   `gorm:"not null;default:false"`
	IsActive  bool   `gorm:"not null;default:true"`

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (User) TableName() string {
	return "users"
}

// Role JWT 中使用的角色
func (u *User) Role() string {
	if u.IsStaff {
		return RoleAdmin
	}
	return RoleCustomer
}
