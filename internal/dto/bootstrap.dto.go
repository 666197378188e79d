package dto

import (
	"time"

	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

type ProfessionalDTO struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	JobTitle  string `json:"job_title,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func FromProfessional(u models.User) ProfessionalDTO {
	return ProfessionalDTO{
		ID:        u.ID,
		Name:      u.Name,
		Role:      u.Role,
		JobTitle:  u.JobTitle,
		AvatarURL: u.AvatarURL,
	}
}

// Bootstrap é o pacote inicial da sessão, cacheado por studio.
type Bootstrap struct {
	Studio         models.Studio          `json:"studio"`
	Professionals  []ProfessionalDTO      `json:"professionals"`
	Services       []models.Service       `json:"services"`
	PaymentMethods []models.PaymentMethod `json:"payment_methods"`
	SyncedAt       time.Time              `json:"synced_at"`
	FromCache      bool                   `json:"from_cache"`
}
