package appointment

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

// ServiceSnapshot guarda cada serviço como ele era no momento do salvamento.
type ServiceSnapshot struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	DurationMin int             `json:"duration_min"`
	Color       string          `json:"color,omitempty"`
}

// Composite é o serviço exibido no agendamento: nomes concatenados,
// preços e durações somados. É calculado uma vez e nunca re-derivado.
type Composite struct {
	Name         string
	Price        decimal.Decimal
	DurationMin  int
	Color        string
	Constituents []ServiceSnapshot
}

// Compose monta o serviço composto na ordem recebida.
func Compose(services []models.Service) (Composite, error) {
	if len(services) == 0 {
		return Composite{}, ValidationError{Field: "service_ids", Code: "required"}
	}

	c := Composite{Price: decimal.Zero}
	names := make([]string, 0, len(services))

	for _, s := range services {
		if s.Price.IsNegative() || s.DurationMin <= 0 {
			return Composite{}, ValidationError{Field: "service_ids", Code: "invalid_service"}
		}

		names = append(names, s.Name)
		c.Price = c.Price.Add(s.Price)
		c.DurationMin += s.DurationMin
		if c.Color == "" {
			c.Color = s.Color
		}

		c.Constituents = append(c.Constituents, ServiceSnapshot{
			ID:          s.ID,
			Name:        s.Name,
			Price:       s.Price,
			DurationMin: s.DurationMin,
			Color:       s.Color,
		})
	}

	c.Name = strings.Join(names, " + ")
	return c, nil
}

// ApplyTo grava o snapshot no agendamento, substituindo o anterior.
func (c Composite) ApplyTo(ap *models.Appointment) error {
	raw, err := json.Marshal(c.Constituents)
	if err != nil {
		return err
	}

	ap.ServiceName = c.Name
	ap.ServicePrice = c.Price
	ap.ServiceDuration = c.DurationMin
	ap.ServiceColor = c.Color
	ap.Services = datatypes.JSON(raw)
	return nil
}

// Constituents lê de volta os serviços gravados no snapshot.
func Constituents(ap *models.Appointment) ([]ServiceSnapshot, error) {
	if len(ap.Services) == 0 {
		return nil, nil
	}
	var out []ServiceSnapshot
	if err := json.Unmarshal(ap.Services, &out); err != nil {
		return nil, err
	}
	return out, nil
}
