package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/studio-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/studio-scheduler/internal/dto"
	"github.com/BruksfildServices01/studio-scheduler/internal/grid"
	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
	"github.com/BruksfildServices01/studio-scheduler/internal/tenant"
	"github.com/BruksfildServices01/studio-scheduler/internal/timezone"
)

// ======================================================
// OUTPUT
// ======================================================

type ScheduleColumn struct {
	grid.Column
	Boxes []grid.Box `json:"boxes"`
}

type Schedule struct {
	View         grid.ViewMode        `json:"view"`
	From         time.Time            `json:"from"`
	To           time.Time            `json:"to"`
	Height       float64              `json:"height"`
	NowTop       *float64             `json:"now_top,omitempty"`
	Columns      []ScheduleColumn     `json:"columns"`
	Appointments []dto.AppointmentDTO `json:"appointments"`
	Dropped      int                  `json:"dropped"`
}

type ScheduleInput struct {
	Tenant         tenant.Context
	View           string
	Date           string
	ProfessionalID uint
}

// ======================================================
// USE CASE
// ======================================================

type GetSchedule struct {
	repo domain.Repository
	now  func() time.Time
}

func NewGetSchedule(repo domain.Repository) *GetSchedule {
	return &GetSchedule{repo: repo, now: time.Now}
}

// Geometry monta a geometria da grade com a janela do studio.
func Geometry(studio *models.Studio) grid.Geometry {
	g := grid.DefaultGeometry()
	if studio.DayEndHour > studio.DayStartHour && studio.DayStartHour >= 0 && studio.DayEndHour <= 24 {
		g.DayStartHour = studio.DayStartHour
		g.DayEndHour = studio.DayEndHour
	}
	if studio.SlotMinutes > 0 {
		g.SnapMinutes = studio.SlotMinutes
	}
	return g
}

func (uc *GetSchedule) Execute(
	ctx context.Context,
	in ScheduleInput,
) (*Schedule, error) {

	// --------------------------------------------------
	// 1️⃣ Visão + data de referência no fuso do studio
	// --------------------------------------------------
	if !in.Tenant.Valid() {
		return nil, tenant.ErrMissing
	}

	view, err := grid.ParseView(in.View)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_view")
	}

	studio, err := uc.repo.GetStudioByID(ctx, in.Tenant.StudioID)
	if err != nil {
		return nil, err
	}
	loc := timezone.Location(studio.Timezone)
	now := uc.now().In(loc)

	ref := now
	if in.Date != "" {
		ref, err = time.ParseInLocation("2006-01-02", in.Date, loc)
		if err != nil {
			return nil, httperr.ErrBusiness("invalid_date")
		}
	}

	// --------------------------------------------------
	// 2️⃣ Colunas
	// --------------------------------------------------
	var resources []grid.Resource
	if view == grid.ViewProfessional {
		pros, err := uc.repo.ListProfessionals(ctx, studio.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range pros {
			if in.ProfessionalID != 0 && p.ID != in.ProfessionalID {
				continue
			}
			resources = append(resources, grid.Resource{
				ID:        p.ID,
				Name:      p.Name,
				AvatarURL: p.AvatarURL,
				Role:      p.JobTitle,
			})
		}
	}
	cols := grid.Resolve(view, ref, resources)

	// --------------------------------------------------
	// 3️⃣ Agendamentos do intervalo
	// --------------------------------------------------
	from, to := grid.Range(view, ref)
	apps, err := uc.repo.ListAppointmentsForPeriod(ctx, studio.ID, in.ProfessionalID, from, to)
	if err != nil {
		return nil, err
	}

	items := make([]grid.Item, 0, len(apps))
	out := make([]dto.AppointmentDTO, 0, len(apps))
	for _, ap := range apps {
		items = append(items, grid.Item{
			ID:               int64(ap.ID),
			ProfessionalID:   ap.ProfessionalID,
			ProfessionalName: ap.Professional.Name,
			Start:            ap.StartTime.In(loc),
			End:              ap.EndTime.In(loc),
		})
		out = append(out, ToDTO(ap))
	}

	// --------------------------------------------------
	// 4️⃣ Posicionamento por coluna
	// --------------------------------------------------
	geo := Geometry(studio)
	byCol, dropped := grid.Assign(view, cols, items)

	sched := &Schedule{
		View:         view,
		From:         from,
		To:           to,
		Height:       geo.Height(),
		Columns:      make([]ScheduleColumn, 0, len(cols)),
		Appointments: out,
		Dropped:      dropped,
	}
	for _, c := range cols {
		sched.Columns = append(sched.Columns, ScheduleColumn{
			Column: c,
			Boxes:  geo.Layout(byCol[c.Key]),
		})
	}

	if !now.Before(from) && now.Before(to) {
		if top, ok := geo.NowIndicator(now); ok {
			sched.NowTop = &top
		}
	}

	return sched, nil
}

// ToDTO achata o agendamento com os ids do serviço composto.
func ToDTO(ap models.Appointment) dto.AppointmentDTO {
	var ids []uint
	if snaps, err := domain.Constituents(&ap); err == nil {
		for _, s := range snaps {
			ids = append(ids, s.ID)
		}
	}
	return dto.FromAppointment(ap, ids)
}
