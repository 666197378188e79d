package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

// AppointmentDTO é o formato plano que a agenda consome.
type AppointmentDTO struct {
	ID               int64           `json:"id"`
	ProfessionalID   uint            `json:"professional_id"`
	ProfessionalName string          `json:"professional_name,omitempty"`
	ClientID         *uint           `json:"client_id"`
	ClientName       string          `json:"client_name,omitempty"`
	StartTime        time.Time       `json:"start_time"`
	EndTime          time.Time       `json:"end_time"`
	Status           string          `json:"status"`
	ServiceIDs       []uint          `json:"service_ids,omitempty"`
	ServiceName      string          `json:"service_name"`
	ServicePrice     decimal.Decimal `json:"service_price"`
	ServiceDuration  int             `json:"service_duration"`
	ServiceColor     string          `json:"service_color,omitempty"`
	Origin           string          `json:"origin,omitempty"`
	Notes            string          `json:"notes,omitempty"`
}

// AppointmentWriteDTO é o corpo de criação/substituição.
type AppointmentWriteDTO struct {
	ProfessionalID uint       `json:"professional_id"`
	ClientID       *uint      `json:"client_id"`
	ServiceIDs     []uint     `json:"service_ids"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	Status         string     `json:"status,omitempty"`
	Notes          string     `json:"notes,omitempty"`
}

type StatusDTO struct {
	Status string `json:"status"`
}

// FromAppointment achata o modelo. serviceIDs vem do snapshot do serviço composto.
func FromAppointment(ap models.Appointment, serviceIDs []uint) AppointmentDTO {
	out := AppointmentDTO{
		ID:               int64(ap.ID),
		ProfessionalID:   ap.ProfessionalID,
		ProfessionalName: ap.Professional.Name,
		ClientID:         ap.ClientID,
		StartTime:        ap.StartTime,
		EndTime:          ap.EndTime,
		Status:           ap.Status,
		ServiceIDs:       serviceIDs,
		ServiceName:      ap.ServiceName,
		ServicePrice:     ap.ServicePrice,
		ServiceDuration:  ap.ServiceDuration,
		ServiceColor:     ap.ServiceColor,
		Origin:           ap.Origin,
		Notes:            ap.Notes,
	}
	if ap.ClientID != nil {
		out.ClientName = ap.Client.Name
	}
	return out
}
