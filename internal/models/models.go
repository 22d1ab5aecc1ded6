package models

import (
	"time"
)

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"  json:"id"`
	Username     string     `gorm:"size:80;unique;not null"  json:"username"`
	PasswordHash string     `gorm:"not null"                 json:"-"`
	Products     []Product  `gorm:"foreignKey:UserID"        json:"-"`
	CartItems    []CartItem `gorm:"foreignKey:UserID"        json:"-"`
}

type Product struct {
	ID          uint       `gorm:"primaryKey;autoIncrement"     json:"id"`
	Name        string     `gorm:"size:80;not null;uniqueIndex" json:"name"`
	Price       float64    `gorm:"not null"                     json:"price"`
	Description *string    `gorm:"type:text"                    json:"description"`
	Created     time.Time  `gorm:"autoCreateTime;not null"      json:"created"`
	Updated     *time.Time `                                    json:"updated"`
	UserID      uint       `gorm:"index;not null"               json:"user_id"`
}

// CartItem keeps a copy of the product name and description taken when the
// item was added. ProductID has no foreign key: deleting a product leaves
// its cart items in place.
type CartItem struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint    `gorm:"index;not null"           json:"user_id"`
	ProductID   uint    `gorm:"index;not null"           json:"product_id"`
	Name        string  `gorm:"size:80;not null"         json:"name"`
	Description *string `gorm:"type:text"                json:"description"`
}

type Session struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    uint      `gorm:"index;not null"     json:"user_id"`
	ExpiresAt int64     `gorm:"not null"           json:"expires_at"`
	Revoked   bool      `gorm:"default:false"      json:"revoked"`
	CreatedAt time.Time `                          json:"created_at"`
}

func All() []any {
	return []any{&User{}, &Product{}, &CartItem{}, &Session{}}
}
