package dto

import "github.com/shopspring/decimal"

type CommandItemDTO struct {
	Kind           string `json:"kind" binding:"required,oneof=service product"`
	RefID          uint   `json:"ref_id" binding:"required"`
	ProfessionalID *uint  `json:"professional_id"`
	Quantity       int    `json:"quantity"`
}

type OpenCommandDTO struct {
	ClientID      *uint `json:"client_id"`
	AppointmentID *uint `json:"appointment_id"`
}

type PaymentEntryDTO struct {
	MethodID       uint            `json:"method_id" binding:"required"`
	Amount         decimal.Decimal `json:"amount"`
	Installments   int             `json:"installments"`
	IdempotencyKey string          `json:"idempotency_key" binding:"required,max=64"`
}

// FinishCommandDTO leva todas as entradas do caixa num único pedido.
type FinishCommandDTO struct {
	Entries []PaymentEntryDTO `json:"entries" binding:"required,min=1,dive"`
}

type FinishResultDTO struct {
	CommandID uint            `json:"command_id"`
	Status    string          `json:"status"`
	Gross     decimal.Decimal `json:"gross"`
	Fee       decimal.Decimal `json:"fee"`
	Net       decimal.Decimal `json:"net"`
	Replayed  bool            `json:"replayed"`
}
