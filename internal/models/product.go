package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product é item de estoque vendido na comanda.
type Product struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	StudioID uint `gorm:"index" json:"studio_id"`

	Name   string          `gorm:"size:100;not null" json:"name"`
	SKU    string          `gorm:"size:40" json:"sku"`
	Price  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock  int             `gorm:"not null;default:0" json:"stock"`
	Active bool            `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
