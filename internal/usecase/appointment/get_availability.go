package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/studio-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/studio-scheduler/internal/timezone"
)

type GetAvailability struct {
	repo domain.Repository
	now  func() time.Time
}

func NewGetAvailability(repo domain.Repository) *GetAvailability {
	return &GetAvailability{repo: repo, now: time.Now}
}

// Execute devolve os horários livres do profissional para o serviço composto.
// O passo é o encaixe da grade do studio.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.TimeSlot, error) {

	studio, err := uc.repo.GetStudioByID(ctx, in.StudioID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.repo.GetProfessional(ctx, studio.ID, in.ProfessionalID); err != nil {
		return nil, notFound(err, "professional_not_found")
	}

	services, err := uc.repo.ListServicesByIDs(ctx, studio.ID, in.ServiceIDs)
	if err != nil {
		return nil, err
	}
	composite, err := domain.Compose(services)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(studio.Timezone)
	day := time.Date(in.Date.Year(), in.Date.Month(), in.Date.Day(), 0, 0, 0, 0, loc)

	wh, err := uc.repo.GetWorkingHours(ctx, in.ProfessionalID, int(day.Weekday()))
	if err != nil {
		return []domain.TimeSlot{}, nil
	}
	shift, ok := domain.ShiftOn(wh, day)
	if !ok {
		return []domain.TimeSlot{}, nil
	}

	busy, err := uc.repo.ListAppointmentsForPeriod(
		ctx,
		studio.ID,
		in.ProfessionalID,
		day,
		day.AddDate(0, 0, 1),
	)
	if err != nil {
		return nil, err
	}

	step := time.Duration(studio.SlotMinutes) * time.Minute
	notBefore := uc.now().In(loc).Add(time.Duration(studio.MinAdvanceMinutes) * time.Minute)

	return domain.FreeSlots(
		shift,
		time.Duration(composite.DurationMin)*time.Minute,
		step,
		busy,
		notBefore,
	), nil
}

