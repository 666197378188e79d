package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/studio-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	"github.com/BruksfildServices01/studio-scheduler/internal/tenant"
	"github.com/BruksfildServices01/studio-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

// WriteInput é o corpo completo de criação ou substituição.
// End zerado é derivado da duração do serviço composto.
type WriteInput struct {
	Tenant tenant.Context

	ProfessionalID uint
	ClientID       *uint
	ServiceIDs     []uint

	Start  time.Time
	End    time.Time
	Status string
	Notes  string
}

// prepared é o resultado validado, pronto para gravar.
type prepared struct {
	studio    *models.Studio
	draft     domain.Draft
	composite domain.Composite
}

// ======================================================
// PREPARE
// ======================================================

// prepare valida o draft e recompõe os serviços do zero. Nada é gravado aqui.
func prepare(
	ctx context.Context,
	repo domain.Repository,
	in WriteInput,
	exceptID uint,
) (*prepared, error) {

	// --------------------------------------------------
	// 1️⃣ Tenant + status
	// --------------------------------------------------
	if !in.Tenant.Valid() {
		return nil, tenant.ErrMissing
	}

	status := domain.InitialStatus()
	if in.Status != "" {
		s, err := domain.ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		status = s
	}

	draft := domain.Draft{
		ProfessionalID: in.ProfessionalID,
		ClientID:       in.ClientID,
		ServiceIDs:     in.ServiceIDs,
		Start:          in.Start,
		End:            in.End,
		Status:         status,
		Notes:          in.Notes,
	}
	if draft.IsBlock() {
		draft.ServiceIDs = nil
	}

	// campos obrigatórios antes de qualquer consulta
	candidate := draft
	if candidate.End.IsZero() && !candidate.IsBlock() {
		candidate.End = candidate.Start.Add(time.Minute)
	}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2️⃣ Studio no fuso correto
	// --------------------------------------------------
	studio, err := repo.GetStudioByID(ctx, in.Tenant.StudioID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(studio.Timezone)
	draft.Start = draft.Start.In(loc)
	if !draft.End.IsZero() {
		draft.End = draft.End.In(loc)
	}

	// --------------------------------------------------
	// 3️⃣ Profissional e cliente do mesmo studio
	// --------------------------------------------------
	if _, err := repo.GetProfessional(ctx, studio.ID, draft.ProfessionalID); err != nil {
		return nil, notFound(err, "professional_not_found")
	}

	if draft.ClientID != nil {
		if _, err := repo.GetClient(ctx, studio.ID, *draft.ClientID); err != nil {
			return nil, notFound(err, "client_not_found")
		}
	}

	// --------------------------------------------------
	// 4️⃣ Serviço composto (sempre recalculado)
	// --------------------------------------------------
	var composite domain.Composite
	if !draft.IsBlock() {
		services, err := repo.ListServicesByIDs(ctx, studio.ID, draft.ServiceIDs)
		if err != nil {
			return nil, err
		}
		composite, err = domain.Compose(services)
		if err != nil {
			return nil, err
		}
		draft = draft.WithDuration(composite.DurationMin)
	}

	if err := draft.Validate(); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 5️⃣ Conflito (somente studios que não aceitam sobreposição)
	// --------------------------------------------------
	if !studio.AllowOverlap && domain.OccupiesTime(draft.Status) {
		if err := repo.AssertNoTimeConflict(
			ctx,
			draft.ProfessionalID,
			draft.Start,
			draft.End,
			exceptID,
		); err != nil {
			return nil, err
		}
	}

	return &prepared{studio: studio, draft: draft, composite: composite}, nil
}

// apply copia o draft preparado para o modelo, substituindo tudo.
func (p *prepared) apply(ap *models.Appointment, now time.Time) error {
	ap.StudioID = p.studio.ID
	ap.ProfessionalID = p.draft.ProfessionalID
	ap.ClientID = p.draft.ClientID
	ap.StartTime = p.draft.Start
	ap.EndTime = p.draft.End
	ap.Notes = p.draft.Notes

	if p.draft.IsBlock() {
		ap.ServiceName = ""
		ap.ServicePrice = decimal.Zero
		ap.ServiceDuration = int(p.draft.End.Sub(p.draft.Start).Minutes())
		ap.ServiceColor = ""
		ap.Services = nil
	} else if err := p.composite.ApplyTo(ap); err != nil {
		return err
	}

	if ap.Status == string(p.draft.Status) {
		return nil
	}
	return domain.ApplyStatus(ap, p.draft.Status, now)
}

func notFound(err error, code string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrBusiness(code)
	}
	return err
}
