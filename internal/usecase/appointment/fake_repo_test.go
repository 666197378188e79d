package appointment

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/studio-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

// fakeRepo guarda tudo em memória, indexado por id.
type fakeRepo struct {
	studio        models.Studio
	professionals map[uint]models.User
	clients       map[uint]models.Client
	services      map[uint]models.Service
	hours         map[uint]models.WorkingHours
	appointments  map[uint]models.Appointment
	nextID        uint

	conflictChecks int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		studio: models.Studio{
			ID:                1,
			Slug:              "studio-bela",
			Timezone:          "America/Sao_Paulo",
			DayStartHour:      8,
			DayEndHour:        20,
			SlotMinutes:       15,
			AllowOverlap:      true,
			MinAdvanceMinutes: 120,
		},
		professionals: map[uint]models.User{
			10: {ID: 10, StudioID: 1, Name: "Ana", Active: true, Schedulable: true},
			11: {ID: 11, StudioID: 1, Name: "Bia", Active: true, Schedulable: true},
		},
		clients: map[uint]models.Client{
			20: {ID: 20, StudioID: 1, Name: "Carla", Phone: "11999990000"},
		},
		services: map[uint]models.Service{
			30: {ID: 30, StudioID: 1, Name: "Corte", DurationMin: 30, Price: dec("60"), Color: "#f00", Active: true},
			31: {ID: 31, StudioID: 1, Name: "Escova", DurationMin: 45, Price: dec("80"), Color: "#0f0", Active: true},
		},
		hours:        map[uint]models.WorkingHours{},
		appointments: map[uint]models.Appointment{},
		nextID:       100,
	}
}

func (r *fakeRepo) GetStudioByID(_ context.Context, id uint) (*models.Studio, error) {
	if id != r.studio.ID {
		return nil, gorm.ErrRecordNotFound
	}
	s := r.studio
	return &s, nil
}

func (r *fakeRepo) GetStudioBySlug(_ context.Context, slug string) (*models.Studio, error) {
	if slug != r.studio.Slug {
		return nil, gorm.ErrRecordNotFound
	}
	s := r.studio
	return &s, nil
}

func (r *fakeRepo) GetProfessional(_ context.Context, studioID, id uint) (*models.User, error) {
	u, ok := r.professionals[id]
	if !ok || u.StudioID != studioID {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *fakeRepo) ListProfessionals(_ context.Context, studioID uint) ([]models.User, error) {
	var out []models.User
	for _, u := range r.professionals {
		if u.StudioID == studioID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeRepo) ListServicesByIDs(_ context.Context, studioID uint, ids []uint) ([]models.Service, error) {
	out := make([]models.Service, 0, len(ids))
	for _, id := range ids {
		s, ok := r.services[id]
		if !ok || s.StudioID != studioID {
			return nil, httperr.ErrBusiness("service_not_found")
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeRepo) GetClient(_ context.Context, studioID, id uint) (*models.Client, error) {
	c, ok := r.clients[id]
	if !ok || c.StudioID != studioID {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *fakeRepo) GetOrCreateClient(_ context.Context, studioID uint, name, phone, email string) (*models.Client, error) {
	for _, c := range r.clients {
		if c.StudioID == studioID && c.Phone == phone {
			return &c, nil
		}
	}
	r.nextID++
	c := models.Client{ID: r.nextID, StudioID: studioID, Name: name, Phone: phone, Email: email}
	r.clients[c.ID] = c
	return &c, nil
}

func (r *fakeRepo) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	r.nextID++
	ap.ID = r.nextID
	r.appointments[ap.ID] = *ap
	return nil
}

func (r *fakeRepo) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	if _, ok := r.appointments[ap.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.appointments[ap.ID] = *ap
	return nil
}

func (r *fakeRepo) DeleteAppointment(_ context.Context, studioID, id uint) error {
	ap, ok := r.appointments[id]
	if !ok || ap.StudioID != studioID {
		return gorm.ErrRecordNotFound
	}
	delete(r.appointments, id)
	return nil
}

func (r *fakeRepo) GetAppointment(_ context.Context, studioID, id uint) (*models.Appointment, error) {
	ap, ok := r.appointments[id]
	if !ok || ap.StudioID != studioID {
		return nil, gorm.ErrRecordNotFound
	}
	ap.Professional = r.professionals[ap.ProfessionalID]
	if ap.ClientID != nil {
		ap.Client = r.clients[*ap.ClientID]
	}
	return &ap, nil
}

func (r *fakeRepo) AssertNoTimeConflict(_ context.Context, professionalID uint, start, end time.Time, exceptID uint) error {
	r.conflictChecks++
	for _, ap := range r.appointments {
		if ap.ID == exceptID || ap.ProfessionalID != professionalID {
			continue
		}
		if !domain.OccupiesTime(domain.Status(ap.Status)) {
			continue
		}
		if ap.StartTime.Before(end) && ap.EndTime.After(start) {
			return httperr.ErrBusiness("time_conflict")
		}
	}
	return nil
}

func (r *fakeRepo) GetWorkingHours(_ context.Context, professionalID uint, weekday int) (*models.WorkingHours, error) {
	wh, ok := r.hours[professionalID]
	if !ok || wh.Weekday != weekday {
		return nil, gorm.ErrRecordNotFound
	}
	return &wh, nil
}

func (r *fakeRepo) ListAppointmentsForPeriod(_ context.Context, studioID, professionalID uint, start, end time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.StudioID != studioID {
			continue
		}
		if professionalID != 0 && ap.ProfessionalID != professionalID {
			continue
		}
		if ap.StartTime.Before(start) || !ap.StartTime.Before(end) {
			continue
		}
		ap.Professional = r.professionals[ap.ProfessionalID]
		out = append(out, ap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

var _ domain.Repository = (*fakeRepo)(nil)

// morningShift é o expediente 09:00-12:00 sem almoço.
func morningShift(weekday int) models.WorkingHours {
	return models.WorkingHours{
		ProfessionalID: 10,
		Weekday:        weekday,
		StartTime:      "09:00",
		EndTime:        "12:00",
		Active:         true,
	}
}
