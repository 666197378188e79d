package appointment

import (
	"time"

	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

// Shift é o expediente de um dia já posicionado no calendário.
type Shift struct {
	Start      time.Time
	End        time.Time
	LunchStart time.Time
	LunchEnd   time.Time
	HasLunch   bool
}

// ShiftOn converte o expediente cadastrado ("15:04") para o dia informado,
// no fuso do próprio dia. Devolve false quando o profissional não atende.
func ShiftOn(wh *models.WorkingHours, day time.Time) (Shift, bool) {
	if wh == nil || !wh.Active || wh.StartTime == "" || wh.EndTime == "" {
		return Shift{}, false
	}

	parseHM := func(hm string) (time.Time, bool) {
		t, err := time.Parse("15:04", hm)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(
			day.Year(), day.Month(), day.Day(),
			t.Hour(), t.Minute(), 0, 0,
			day.Location(),
		), true
	}

	var s Shift
	var ok1, ok2 bool
	s.Start, ok1 = parseHM(wh.StartTime)
	s.End, ok2 = parseHM(wh.EndTime)
	if !ok1 || !ok2 || !s.End.After(s.Start) {
		return Shift{}, false
	}

	if wh.LunchStart != "" && wh.LunchEnd != "" {
		ls, ok3 := parseHM(wh.LunchStart)
		le, ok4 := parseHM(wh.LunchEnd)
		if ok3 && ok4 && le.After(ls) {
			s.LunchStart, s.LunchEnd, s.HasLunch = ls, le, true
		}
	}
	return s, true
}

// Fits diz se [start, end) cabe no expediente sem invadir o almoço.
func (s Shift) Fits(start, end time.Time) bool {
	if start.Before(s.Start) || end.After(s.End) {
		return false
	}
	if s.HasLunch && start.Before(s.LunchEnd) && end.After(s.LunchStart) {
		return false
	}
	return true
}

// IsWithinWorkingHours valida se um horário está dentro do expediente
// incluindo pausa de almoço (regra de domínio)
func IsWithinWorkingHours(wh *models.WorkingHours, start, end time.Time) bool {
	shift, ok := ShiftOn(wh, start)
	if !ok {
		return false
	}
	return shift.Fits(start, end)
}
