package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name        string          `gorm:"not null"                      json:"name"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null"   json:"price"`
	Description *string         `                                     json:"description"`
	ImageURL    *string         `gorm:"column:image_url"              json:"image_url"`
	CreatedAt   time.Time       `gorm:"index"                         json:"created_at"`
	UpdatedAt   time.Time       `                                     json:"updated_at"`
}

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null"                 json:"name"`
	Email     string    `gorm:"uniqueIndex;not null"     json:"email"`
	Password  string    `gorm:"not null"                 json:"-"`
	Role      string    `gorm:"not null;default:user"    json:"role"`
	CreatedAt time.Time `                                json:"created_at"`
}

type Admin struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null"                 json:"name"`
	Email     string    `gorm:"uniqueIndex;not null"     json:"email"`
	Password  string    `gorm:"not null"                 json:"-"`
	Role      string    `gorm:"not null;default:admin"   json:"role"`
	CreatedAt time.Time `                                json:"created_at"`
}

func (p *Product) Image() string {
	if p.ImageURL == nil {
		return ""
	}
	return *p.ImageURL
}

// MarshalJSON renders price with exactly two decimals, the way a numeric(10,2)
// column reads back ("12.00", not "12").
func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		Price string `json:"price"`
	}{product: product(p), Price: p.Price.StringFixed(2)})
}
