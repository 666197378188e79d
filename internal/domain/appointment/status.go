package appointment

import (
	"strings"
	"time"

	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled         Status = "scheduled"
	StatusConfirmed         Status = "confirmed"
	StatusConfirmedWhatsApp Status = "confirmed_whatsapp"
	StatusArrived           Status = "arrived"
	StatusInProgress        Status = "in_progress"
	StatusCompleted         Status = "completed"
	StatusNoShow            Status = "no_show"
	StatusCanceled          Status = "canceled"
	StatusBlocked           Status = "blocked"
	StatusWaitlisted        Status = "waitlisted"
)

var allStatuses = []Status{
	StatusScheduled,
	StatusConfirmed,
	StatusConfirmedWhatsApp,
	StatusArrived,
	StatusInProgress,
	StatusCompleted,
	StatusNoShow,
	StatusCanceled,
	StatusBlocked,
	StatusWaitlisted,
}

func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range allStatuses {
		if v == st {
			return st, nil
		}
	}
	return "", httperr.ErrBusiness("invalid_status")
}

// InitialStatus é o status de todo agendamento novo (bloqueios à parte)
func InitialStatus() Status {
	return StatusScheduled
}

// recommended é só a ordem sugerida na tela; qualquer troca é permitida.
var recommended = map[Status]Status{
	StatusScheduled:         StatusConfirmed,
	StatusConfirmed:         StatusArrived,
	StatusConfirmedWhatsApp: StatusArrived,
	StatusArrived:           StatusInProgress,
	StatusInProgress:        StatusCompleted,
}

// RecommendedNext devolve o próximo status sugerido, se houver.
func RecommendedNext(current Status) (Status, bool) {
	next, ok := recommended[current]
	return next, ok
}

// OccupiesTime indica se o status ocupa o horário do profissional.
func OccupiesTime(s Status) bool {
	switch s {
	case StatusCanceled, StatusNoShow, StatusWaitlisted:
		return false
	}
	return true
}

// FreeStatuses são os status ignorados na checagem de conflito.
func FreeStatuses() []string {
	return []string{string(StatusCanceled), string(StatusNoShow), string(StatusWaitlisted)}
}

// ===============================
// Domain Actions
// ===============================

// ApplyStatus troca o status sem restringir a origem e mantém os carimbos
// de conclusão/cancelamento coerentes com o novo status.
func ApplyStatus(ap *models.Appointment, next Status, now time.Time) error {
	if next == StatusBlocked && ap.ClientID != nil {
		return ValidationError{Field: "status", Code: "block_with_client"}
	}

	ap.Status = string(next)

	switch next {
	case StatusCompleted:
		ap.CompletedAt = &now
		ap.CancelledAt = nil
	case StatusCanceled:
		ap.CancelledAt = &now
		ap.CompletedAt = nil
	default:
		ap.CompletedAt = nil
		ap.CancelledAt = nil
	}
	return nil
}
