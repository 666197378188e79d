package appointment

import (
	"fmt"
	"time"
)

// ValidationError aponta o campo que impediu o salvamento.
type ValidationError struct {
	Field string
	Code  string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Code)
}

// Draft é o que o editor envia para criar ou substituir um agendamento.
// Bloqueios são drafts com Status blocked: sem cliente e sem serviços.
type Draft struct {
	ProfessionalID uint
	ClientID       *uint
	ServiceIDs     []uint
	Start          time.Time
	End            time.Time
	Status         Status
	Notes          string
}

func (d Draft) IsBlock() bool {
	return d.Status == StatusBlocked
}

// Validate roda antes de qualquer escrita. Quando End vier zerado ele precisa
// ser derivado da duração do serviço composto antes de chamar Validate.
func (d Draft) Validate() error {
	if d.ProfessionalID == 0 {
		return ValidationError{Field: "professional_id", Code: "required"}
	}

	if d.IsBlock() {
		if d.ClientID != nil {
			return ValidationError{Field: "client_id", Code: "block_with_client"}
		}
	} else {
		if d.ClientID == nil || *d.ClientID == 0 {
			return ValidationError{Field: "client_id", Code: "required"}
		}
		if len(d.ServiceIDs) == 0 {
			return ValidationError{Field: "service_ids", Code: "required"}
		}
	}

	if d.Start.IsZero() {
		return ValidationError{Field: "start_time", Code: "required"}
	}
	if !d.End.After(d.Start) {
		return ValidationError{Field: "end_time", Code: "end_before_start"}
	}
	return nil
}

// WithDuration preenche End a partir da duração quando ele não foi informado.
func (d Draft) WithDuration(minutes int) Draft {
	if d.End.IsZero() && minutes > 0 {
		d.End = d.Start.Add(time.Duration(minutes) * time.Minute)
	}
	return d
}
