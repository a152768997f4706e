package models

import (
	"time"
)

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string     `gorm:"unique;not null"          json:"email"`
	Mobile       string     `gorm:"unique;not null"          json:"mobile"`
	PasswordHash string     `gorm:"not null"                 json:"-"`
	IsActive     bool       `gorm:"default:true"             json:"is_active"`
	IsStaff      bool       `gorm:"default:false"            json:"is_staff"`
	OTP          *string    `gorm:"size:6"                   json:"-"`
	OTPCreatedAt *time.Time `json:"-"`
}

type Product struct {
	ID    uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string  `gorm:"not null"                 json:"name"`
	Price float64 `gorm:"not null"                 json:"price"`
}

// Cart is created lazily, one per user.
type Cart struct {
	ID     uint `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID uint `gorm:"uniqueIndex;not null"        json:"user_id"`
	User   User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type CartItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"              json:"id"`
	CartID    uint    `gorm:"uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	Cart      Cart    `gorm:"constraint:OnDelete:CASCADE"           json:"-"`
	ProductID uint    `gorm:"uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Product   Product `gorm:"constraint:OnDelete:CASCADE"           json:"-"`
	Quantity  int     `gorm:"default:1"                             json:"quantity"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	JTI       string `gorm:"index;not null"  json:"jti"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}
