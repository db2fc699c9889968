package model

import "time"

// 会员等级
const (
	MembershipBronze = "B"
	MembershipSilver = "S"
	MembershipGold   = "G"
)

// Memberships 合法等级及展示名
var Memberships = map[string]string{
	MembershipBronze: "Bronze",
	MembershipSilver: "Silver",
	MembershipGold:   "Gold",
}

// Customer 顾客档案，与登录账号一对一
type Customer struct {
	ID         int64      `gorm:"primaryKey;autoIncrement"`
	UserID     int64      `gorm:"uniqueIndex;not null"`
	FirstName  string     `gorm:"size:30;index:idx_customer_name,priority:2"`
	LastName   string     `gorm:"size:30;index:idx_customer_name,priority:1"`
	Email      string     `gorm:"size:254;uniqueIndex;not null"`
	Phone      string     `gorm:"size:255"`
	BirthDate  *time.Time `gorm:"type:date"`
	Membership string     `gorm:"size:1;not null;default:B"`

	Address *Address `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

func (Customer) TableName() string {
	return "customers"
}

// Address 收货地址，主键即顾客 ID
type Address struct {
	CustomerID int64  `gorm:"primaryKey;autoIncrement:false"`
	Street     string `gorm:"size:255;not null"`
	City       string `gorm:"size:255;not null"`
	Zip        string `gorm:"size:20;not null;default:''"`
}

func (Address) TableName() string {
	return "addresses"
}
