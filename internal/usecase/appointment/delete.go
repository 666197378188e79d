package appointment

import (
	"context"

	"github.com/BruksfildServices01/studio-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/studio-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/studio-scheduler/internal/metrics"
	"github.com/BruksfildServices01/studio-scheduler/internal/tenant"
)

type DeleteAppointment struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	metrics *metrics.Metrics
}

func NewDeleteAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	m *metrics.Metrics,
) *DeleteAppointment {
	return &DeleteAppointment{
		repo:    repo,
		audit:   audit,
		metrics: m,
	}
}

func (uc *DeleteAppointment) Execute(
	ctx context.Context,
	t tenant.Context,
	appointmentID uint,
) (err error) {
	defer func() { uc.metrics.ObserveAppointment("delete", err) }()

	if !t.Valid() {
		return tenant.ErrMissing
	}

	if err := uc.repo.DeleteAppointment(ctx, t.StudioID, appointmentID); err != nil {
		return notFound(err, "appointment_not_found")
	}

	uc.audit.Dispatch(audit.Event{
		StudioID: t.StudioID,
		UserID:   t.UserRef(),
		Action:   "appointment_deleted",
		Entity:   "appointment",
		EntityID: &appointmentID,
	})

	return nil
}
