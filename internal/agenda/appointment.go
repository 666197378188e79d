// Package agenda keeps the client-side copy of the visible appointments and
// coordinates optimistic writes against the backend.
package agenda

import (
	"time"

	domain "github.com/BruksfildServices01/studio-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/studio-scheduler/internal/dto"
	"github.com/BruksfildServices01/studio-scheduler/internal/grid"
)

// Appointment é o registro local. IDs negativos são temporários e ainda
// não existem no servidor.
type Appointment = dto.AppointmentDTO

func IsTemp(id int64) bool {
	return id < 0
}

// Draft converte o registro para a validação de domínio, derivando o fim
// pela duração do serviço quando ele não veio preenchido.
func Draft(a Appointment) domain.Draft {
	d := domain.Draft{
		ProfessionalID: a.ProfessionalID,
		ClientID:       a.ClientID,
		ServiceIDs:     a.ServiceIDs,
		Start:          a.StartTime,
		End:            a.EndTime,
		Status:         domain.Status(a.Status),
		Notes:          a.Notes,
	}
	return d.WithDuration(a.ServiceDuration)
}

func GridItem(a Appointment) grid.Item {
	return grid.Item{
		ID:               a.ID,
		ProfessionalID:   a.ProfessionalID,
		ProfessionalName: a.ProfessionalName,
		Start:            a.StartTime,
		End:              a.EndTime,
	}
}

func overlaps(a Appointment, from, to time.Time) bool {
	return a.StartTime.Before(to) && a.EndTime.After(from)
}
