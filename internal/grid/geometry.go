// Package grid holds the pure computations behind the appointment grid:
// time to pixel geometry, column resolution, overlap lanes and popover placement.
package grid

import (
	"math"
	"time"
)

// Geometry mapeia horários do dia para pixels dentro da janela configurada.
type Geometry struct {
	DayStartHour  int
	DayEndHour    int
	PxPerMinute   float64
	SnapMinutes   int
	ItemGap       float64
	MinItemHeight float64
}

// DefaultGeometry: 08:00–20:00, 80px por hora, encaixe de 15 minutos.
func DefaultGeometry() Geometry {
	return Geometry{
		DayStartHour:  8,
		DayEndHour:    20,
		PxPerMinute:   80.0 / 60.0,
		SnapMinutes:   15,
		ItemGap:       2,
		MinItemHeight: 12,
	}
}

func minutesOfDay(t time.Time) float64 {
	return float64(t.Hour()*60+t.Minute()) +
		float64(t.Second())/60 +
		float64(t.Nanosecond())/float64(time.Minute)
}

func (g Geometry) windowStart() float64 { return float64(g.DayStartHour * 60) }
func (g Geometry) windowEnd() float64   { return float64(g.DayEndHour * 60) }

// WindowMinutes é a duração total da janela.
func (g Geometry) WindowMinutes() float64 {
	return g.windowEnd() - g.windowStart()
}

// Height é a altura em pixels da coluna inteira.
func (g Geometry) Height() float64 {
	return g.WindowMinutes() * g.PxPerMinute
}

// PixelTop devolve o deslocamento vertical de t a partir do início da janela.
// Horários fora da janela produzem valores negativos ou acima de Height;
// cabe ao chamador usar InWindow/Clamp antes de desenhar.
func (g Geometry) PixelTop(t time.Time) float64 {
	return (minutesOfDay(t) - g.windowStart()) * g.PxPerMinute
}

// PixelHeight é a altura bruta de um intervalo.
func (g Geometry) PixelHeight(start, end time.Time) float64 {
	return end.Sub(start).Minutes() * g.PxPerMinute
}

// BoxHeight desconta o espaçamento entre itens, respeitando a altura mínima.
func (g Geometry) BoxHeight(start, end time.Time) float64 {
	return math.Max(g.PixelHeight(start, end)-g.ItemGap, g.MinItemHeight)
}

func (g Geometry) InWindow(t time.Time) bool {
	m := minutesOfDay(t)
	return m >= g.windowStart() && m <= g.windowEnd()
}

// Clamp traz t para dentro da janela, no mesmo dia.
func (g Geometry) Clamp(t time.Time) time.Time {
	m := minutesOfDay(t)
	switch {
	case m < g.windowStart():
		return atMinutes(t, g.windowStart())
	case m > g.windowEnd():
		return atMinutes(t, g.windowEnd())
	}
	return t
}

// NowIndicator posiciona a linha de "agora"; fora da janela ela fica oculta.
func (g Geometry) NowIndicator(now time.Time) (float64, bool) {
	if !g.InWindow(now) {
		return 0, false
	}
	return g.PixelTop(now), true
}

func (g Geometry) snap() float64 {
	if g.SnapMinutes <= 0 {
		return 1
	}
	return float64(g.SnapMinutes)
}

// ClickToTime converte um clique na coluna do dia em um horário candidato,
// arredondado ao encaixe mais próximo e limitado à janela.
func (g Geometry) ClickToTime(day time.Time, offsetPx float64) time.Time {
	if g.PxPerMinute <= 0 {
		return atMinutes(day, g.windowStart())
	}

	raw := offsetPx / g.PxPerMinute
	snapped := math.Round(raw/g.snap()) * g.snap()
	snapped = math.Max(0, math.Min(snapped, g.WindowMinutes()))

	return atMinutes(day, g.windowStart()+snapped)
}

// Snap arredonda t ao encaixe mais próximo. Aplicar duas vezes não muda o resultado.
func (g Geometry) Snap(t time.Time) time.Time {
	m := minutesOfDay(t)
	return atMinutes(t, math.Round(m/g.snap())*g.snap())
}

// DayBounds devolve início e fim da janela no dia de t.
func (g Geometry) DayBounds(day time.Time) (time.Time, time.Time) {
	return atMinutes(day, g.windowStart()), atMinutes(day, g.windowEnd())
}

func atMinutes(day time.Time, minutes float64) time.Time {
	y, mo, d := day.Date()
	base := time.Date(y, mo, d, 0, 0, 0, 0, day.Location())
	return base.Add(time.Duration(math.Round(minutes * float64(time.Minute))))
}
