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

// SetStatus troca somente o status. Qualquer status pode ir para qualquer outro.
type SetStatus struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	metrics *metrics.Metrics
}

func NewSetStatus(
	repo domain.Repository,
	audit *audit.Dispatcher,
	m *metrics.Metrics,
) *SetStatus {
	return &SetStatus{
		repo:    repo,
		audit:   audit,
		metrics: m,
	}
}

func (uc *SetStatus) Execute(
	ctx context.Context,
	t tenant.Context,
	appointmentID uint,
	status string,
) (ap *models.Appointment, err error) {
	defer func() { uc.metrics.ObserveAppointment("status", err) }()

	if !t.Valid() {
		return nil, tenant.ErrMissing
	}

	next, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	studio, err := uc.repo.GetStudioByID(ctx, t.StudioID)
	if err != nil {
		return nil, err
	}

	ap, err = uc.repo.GetAppointment(ctx, t.StudioID, appointmentID)
	if err != nil {
		return nil, notFound(err, "appointment_not_found")
	}

	previous := ap.Status
	if err := domain.ApplyStatus(ap, next, timezone.NowIn(studio.Timezone)); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		StudioID: t.StudioID,
		UserID:   t.UserRef(),
		Action:   "appointment_status_changed",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{"from": previous, "to": ap.Status},
	})

	return ap, nil
}
