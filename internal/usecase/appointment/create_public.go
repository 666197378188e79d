package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/studio-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/studio-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/metrics"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	"github.com/BruksfildServices01/studio-scheduler/internal/timezone"
	"github.com/BruksfildServices01/studio-scheduler/internal/validators"
)

// ======================================================
// INPUT
// ======================================================

type CreatePublicAppointmentInput struct {
	Slug           string
	ProfessionalID uint

	ClientName  string
	ClientPhone string
	ClientEmail string

	ServiceIDs []uint

	Date  string
	Time  string
	Notes string
}

// ======================================================
// USE CASE
// ======================================================

// CreatePublicAppointment é o agendamento online pela página do studio.
// Diferente da recepção, exige antecedência mínima, expediente e horário livre.
type CreatePublicAppointment struct {
	repo    domain.Repository
	audit   *audit.Dispatcher
	metrics *metrics.Metrics
}

func NewCreatePublicAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	m *metrics.Metrics,
) *CreatePublicAppointment {
	return &CreatePublicAppointment{
		repo:    repo,
		audit:   audit,
		metrics: m,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreatePublicAppointment) Execute(
	ctx context.Context,
	in CreatePublicAppointmentInput,
) (ap *models.Appointment, err error) {
	defer func() { uc.metrics.ObserveAppointment("create_public", err) }()

	phone := validators.NormalizePhone(in.ClientPhone)
	if phone == "" {
		return nil, httperr.ErrBusiness("invalid_phone")
	}

	// --------------------------------------------------
	// 1️⃣ Studio
	// --------------------------------------------------
	studio, err := uc.repo.GetStudioBySlug(ctx, in.Slug)
	if err != nil {
		return nil, notFound(err, "studio_not_found")
	}

	// --------------------------------------------------
	// 2️⃣ Data / hora no timezone do studio
	// --------------------------------------------------
	start, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.Date+" "+in.Time,
		timezone.Location(studio.Timezone),
	)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	// --------------------------------------------------
	// 3️⃣ Antecedência mínima
	// --------------------------------------------------
	minAdvance := studio.MinAdvanceMinutes
	if minAdvance <= 0 {
		minAdvance = 120
	}

	now := timezone.NowIn(studio.Timezone)
	if start.Before(now.Add(time.Duration(minAdvance) * time.Minute)) {
		return nil, httperr.ErrBusiness("too_soon")
	}

	// --------------------------------------------------
	// 4️⃣ Profissional + serviços
	// --------------------------------------------------
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

	end := start.Add(time.Duration(composite.DurationMin) * time.Minute)

	// --------------------------------------------------
	// 5️⃣ Working hours + almoço
	// --------------------------------------------------
	wh, err := uc.repo.GetWorkingHours(ctx, in.ProfessionalID, int(start.Weekday()))
	if err != nil || !domain.IsWithinWorkingHours(wh, start, end) {
		return nil, httperr.ErrBusiness("outside_working_hours")
	}

	// --------------------------------------------------
	// 6️⃣ Conflito de horário (sempre, mesmo com sobreposição liberada)
	// --------------------------------------------------
	if err := uc.repo.AssertNoTimeConflict(ctx, in.ProfessionalID, start, end, 0); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 7️⃣ Cliente (get or create)
	// --------------------------------------------------
	client, err := uc.repo.GetOrCreateClient(
		ctx,
		studio.ID,
		in.ClientName,
		phone,
		in.ClientEmail,
	)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 8️⃣ Criação do agendamento
	// --------------------------------------------------
	clientID := client.ID
	ap = &models.Appointment{
		StudioID:       studio.ID,
		ProfessionalID: in.ProfessionalID,
		ClientID:       &clientID,
		StartTime:      start,
		EndTime:        end,
		Status:         string(domain.InitialStatus()),
		Origin:         "online",
		Notes:          in.Notes,
	}
	if err := composite.ApplyTo(ap); err != nil {
		return nil, err
	}

	if err := uc.repo.CreateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 9️⃣ Auditoria
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		StudioID: studio.ID,
		Action:   "appointment_created_online",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
