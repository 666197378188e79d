package models

import "time"

// Client é o cadastro de cliente do studio, sem login. O telefone fica
// só com dígitos e é a chave usada pelo agendamento online.
type Client struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	StudioID uint `gorm:"index:idx_client_studio_phone,priority:1;index" json:"studio_id"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Phone string `gorm:"size:20;index:idx_client_studio_phone,priority:2" json:"phone"`
	Email string `gorm:"size:100" json:"email,omitempty"`
	Notes string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
