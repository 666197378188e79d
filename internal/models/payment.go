package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PaymentMethod é a configuração de forma de pagamento do studio.
// CreditRates guarda as faixas de parcelamento (somente crédito).
type PaymentMethod struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	StudioID uint `gorm:"index" json:"studio_id"`

	Category        string          `gorm:"size:10;not null" json:"category"`
	Name            string          `gorm:"size:60;not null" json:"name"`
	Rate            decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"rate"`
	MaxInstallments int             `gorm:"default:1" json:"max_installments"`
	CreditRates     datatypes.JSON  `gorm:"type:jsonb" json:"credit_rates"`
	Active          bool            `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaymentEntry é um pagamento parcial gravado no fechamento da comanda.
type PaymentEntry struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	StudioID  uint `gorm:"index" json:"studio_id"`
	CommandID uint `gorm:"index;not null" json:"command_id"`

	Category     string          `gorm:"size:10;not null" json:"category"`
	MethodID     uint            `json:"method_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	FeeRate      decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"fee_rate"`
	FeeAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"fee_amount"`
	NetAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"net_amount"`
	Installments int             `gorm:"default:1" json:"installments"`

	IdempotencyKey string `gorm:"size:64;uniqueIndex;not null" json:"idempotency_key"`

	CreatedAt time.Time `json:"created_at"`
}

// FinancialTransaction é a linha do livro caixa gerada por cada pagamento.
type FinancialTransaction struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	StudioID       uint            `gorm:"index" json:"studio_id"`
	CommandID      *uint           `gorm:"index" json:"command_id"`
	PaymentEntryID *uint           `json:"payment_entry_id"`
	Type           string          `gorm:"size:10;not null" json:"type"`
	Category       string          `gorm:"size:10" json:"category"`
	Description    string          `gorm:"size:255" json:"description"`
	GrossAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"gross_amount"`
	FeeAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"fee_amount"`
	NetAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"net_amount"`
	OccurredAt     time.Time       `json:"occurred_at"`

	CreatedAt time.Time `json:"created_at"`
}
