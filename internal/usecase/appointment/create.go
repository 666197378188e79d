package appointment

import (
	"context"

	"github.com/BruksfildServices01/studio-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/studio-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/studio-scheduler/internal/metrics"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	"github.com/BruksfildServices01/studio-scheduler/internal/timezone"
)

type CreateAppointment struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	metrics *metrics.Metrics
}

func NewCreateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	m *metrics.Metrics,
) *CreateAppointment {
	return &CreateAppointment{
		repo:    repo,
		audit:   audit,
		metrics: m,
	}
}

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in WriteInput,
) (ap *models.Appointment, err error) {
	defer func() { uc.metrics.ObserveAppointment("create", err) }()

	p, err := prepare(ctx, uc.repo, in, 0)
	if err != nil {
		return nil, err
	}

	ap = &models.Appointment{Origin: "internal"}
	if err := p.apply(ap, timezone.NowIn(p.studio.Timezone)); err != nil {
		return nil, err
	}

	if err := uc.repo.CreateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		StudioID: p.studio.ID,
		UserID:   in.Tenant.UserRef(),
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{"status": ap.Status},
	})

	// devolve com profissional e cliente carregados
	return uc.repo.GetAppointment(ctx, p.studio.ID, ap.ID)
}
