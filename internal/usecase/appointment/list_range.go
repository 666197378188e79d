package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/studio-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	"github.com/BruksfildServices01/studio-scheduler/internal/tenant"
)

// MaxRange cobre a grade mensal (até 6 semanas) com folga.
const MaxRange = 62 * 24 * time.Hour

type ListRange struct {
	repo domain.Repository
}

func NewListRange(repo domain.Repository) *ListRange {
	return &ListRange{repo: repo}
}

// Execute lista [from, to) do studio; professionalID 0 traz todos.
func (uc *ListRange) Execute(
	ctx context.Context,
	t tenant.Context,
	from time.Time,
	to time.Time,
	professionalID uint,
) ([]models.Appointment, error) {

	if !t.Valid() {
		return nil, tenant.ErrMissing
	}
	if !to.After(from) {
		return nil, httperr.ErrBusiness("invalid_range")
	}
	if to.Sub(from) > MaxRange {
		return nil, httperr.ErrBusiness("range_too_large")
	}

	return uc.repo.ListAppointmentsForPeriod(ctx, t.StudioID, professionalID, from, to)
}
