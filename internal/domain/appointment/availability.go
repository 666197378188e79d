package appointment

import (
	"sort"
	"time"

	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

type AvailabilityInput struct {
	StudioID       uint
	ProfessionalID uint
	ServiceIDs     []uint
	Date           time.Time
}

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// FreeSlots percorre o expediente em passos de step e devolve os intervalos
// de tamanho duration que não batem com almoço nem com horários ocupados.
// Slots que começam antes de notBefore são descartados.
func FreeSlots(
	shift Shift,
	duration time.Duration,
	step time.Duration,
	busy []models.Appointment,
	notBefore time.Time,
) []TimeSlot {
	if duration <= 0 {
		return []TimeSlot{}
	}
	if step <= 0 {
		step = duration
	}

	sort.Slice(busy, func(i, j int) bool {
		return busy[i].StartTime.Before(busy[j].StartTime)
	})

	slots := []TimeSlot{}

	for cur := shift.Start; !cur.Add(duration).After(shift.End); cur = cur.Add(step) {
		slotStart := cur
		slotEnd := cur.Add(duration)

		if slotStart.Before(notBefore) {
			continue
		}

		// almoço
		if shift.HasLunch && slotStart.Before(shift.LunchEnd) && slotEnd.After(shift.LunchStart) {
			continue
		}

		conflict := false
		for _, ap := range busy {
			if !ap.StartTime.Before(slotEnd) {
				break
			}
			if !OccupiesTime(Status(ap.Status)) {
				continue
			}
			if slotStart.Before(ap.EndTime) && slotEnd.After(ap.StartTime) {
				conflict = true
				break
			}
		}

		if !conflict {
			slots = append(slots, TimeSlot{
				Start: slotStart.Format("15:04"),
				End:   slotEnd.Format("15:04"),
			})
		}
	}

	return slots
}
