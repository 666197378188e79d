package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CommandOpen     = "open"
	CommandPaid     = "paid"
	CommandCanceled = "canceled"

	ItemService = "service"
	ItemProduct = "product"
)

// Command é a comanda/venda aberta no caixa.
type Command struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	StudioID uint `gorm:"index" json:"studio_id"`

	ClientID      *uint `json:"client_id"`
	AppointmentID *uint `json:"appointment_id"`

	Status string          `gorm:"size:20;default:'open';index" json:"status"`
	Total  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`

	Items   []CommandItem  `gorm:"foreignKey:CommandID" json:"items"`
	Entries []PaymentEntry `gorm:"foreignKey:CommandID" json:"entries,omitempty"`

	PaidAt     *time.Time `json:"paid_at"`
	CanceledAt *time.Time `json:"canceled_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CommandItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CommandID uint `gorm:"index;not null" json:"command_id"`

	Kind           string          `gorm:"size:10;not null" json:"kind"`
	RefID          uint            `json:"ref_id"`
	ProfessionalID *uint           `json:"professional_id"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Quantity       int             `gorm:"not null;default:1" json:"quantity"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`

	CreatedAt time.Time `json:"created_at"`
}
