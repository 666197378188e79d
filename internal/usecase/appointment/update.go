package appointment

import (
	"context"

	"github.com/BruksfildServices01/studio-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/studio-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/studio-scheduler/internal/metrics"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	"github.com/BruksfildServices01/studio-scheduler/internal/tenant"
	"github.com/BruksfildServices01/studio-scheduler/internal/timezone"
)

// UpdateAppointment substitui o agendamento inteiro. Os serviços são
// recompostos a partir dos ids recebidos, nunca somados ao snapshot antigo.
type UpdateAppointment struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	metrics *metrics.Metrics
}

func NewUpdateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	m *metrics.Metrics,
) *UpdateAppointment {
	return &UpdateAppointment{
		repo:    repo,
		audit:   audit,
		metrics: m,
	}
}

func (uc *UpdateAppointment) Execute(
	ctx context.Context,
	appointmentID uint,
	in WriteInput,
) (ap *models.Appointment, err error) {
	defer func() { uc.metrics.ObserveAppointment("update", err) }()

	if !in.Tenant.Valid() {
		return nil, tenant.ErrMissing
	}

	ap, err = uc.repo.GetAppointment(ctx, in.Tenant.StudioID, appointmentID)
	if err != nil {
		return nil, notFound(err, "appointment_not_found")
	}

	if in.Status == "" {
		in.Status = ap.Status
	}

	p, err := prepare(ctx, uc.repo, in, ap.ID)
	if err != nil {
		return nil, err
	}

	if err := p.apply(ap, timezone.NowIn(p.studio.Timezone)); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		StudioID: p.studio.ID,
		UserID:   in.Tenant.UserRef(),
		Action:   "appointment_updated",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return uc.repo.GetAppointment(ctx, p.studio.ID, ap.ID)
}
