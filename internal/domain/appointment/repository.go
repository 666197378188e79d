package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

// Repository concentra o acesso a dados da agenda. Todo método recebe o
// studio explicitamente; nada é lido de estado global.
type Repository interface {
	// -------- Studio --------
	GetStudioByID(
		ctx context.Context,
		id uint,
	) (*models.Studio, error)

	GetStudioBySlug(
		ctx context.Context,
		slug string,
	) (*models.Studio, error)

	// -------- Professional --------
	GetProfessional(
		ctx context.Context,
		studioID uint,
		professionalID uint,
	) (*models.User, error)

	ListProfessionals(
		ctx context.Context,
		studioID uint,
	) ([]models.User, error)

	// -------- Service --------
	ListServicesByIDs(
		ctx context.Context,
		studioID uint,
		ids []uint,
	) ([]models.Service, error)

	// -------- Client --------
	GetClient(
		ctx context.Context,
		studioID uint,
		clientID uint,
	) (*models.Client, error)

	GetOrCreateClient(
		ctx context.Context,
		studioID uint,
		name string,
		phone string,
		email string,
	) (*models.Client, error)

	// -------- Appointment --------
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	DeleteAppointment(
		ctx context.Context,
		studioID uint,
		appointmentID uint,
	) error

	GetAppointment(
		ctx context.Context,
		studioID uint,
		appointmentID uint,
	) (*models.Appointment, error)

	// exceptID ignora o próprio agendamento ao editar
	AssertNoTimeConflict(
		ctx context.Context,
		professionalID uint,
		start time.Time,
		end time.Time,
		exceptID uint,
	) error

	// -------- Availability --------
	GetWorkingHours(
		ctx context.Context,
		professionalID uint,
		weekday int,
	) (*models.WorkingHours, error)

	// professionalID == 0 lista o studio inteiro
	ListAppointmentsForPeriod(
		ctx context.Context,
		studioID uint,
		professionalID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)
}
