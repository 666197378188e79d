package grid

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type ViewMode string

const (
	ViewDay          ViewMode = "day"
	ViewWeek         ViewMode = "week"
	ViewMonth        ViewMode = "month"
	ViewProfessional ViewMode = "professional"
)

const dateKey = "2006-01-02"

func ParseView(s string) (ViewMode, error) {
	switch v := ViewMode(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewDay, ViewWeek, ViewMonth, ViewProfessional:
		return v, nil
	case "":
		return ViewProfessional, nil
	}
	return "", fmt.Errorf("grid: unknown view %q", s)
}

// Resource é o dono de uma coluna no modo por profissional.
type Resource struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      string `json:"role,omitempty"`
}

type Column struct {
	Key            string    `json:"key"`
	Label          string    `json:"label"`
	Date           time.Time `json:"date"`
	ProfessionalID uint      `json:"professional_id,omitempty"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
}

// Item é o mínimo que a grade precisa saber de um agendamento.
type Item struct {
	ID               int64     `json:"id"`
	ProfessionalID   uint      `json:"professional_id"`
	ProfessionalName string    `json:"professional_name"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek devolve a segunda-feira da semana de t.
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}

func monthCells(ref time.Time) (time.Time, int) {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	last := first.AddDate(0, 1, -1)
	start := StartOfWeek(first)
	end := StartOfWeek(last).AddDate(0, 0, 7)
	return start, int(end.Sub(start).Hours()/24 + 0.5)
}

// Range devolve o intervalo [from, to) que a visão precisa carregar.
func Range(view ViewMode, ref time.Time) (time.Time, time.Time) {
	switch view {
	case ViewWeek:
		from := StartOfWeek(ref)
		return from, from.AddDate(0, 0, 7)
	case ViewMonth:
		from, days := monthCells(ref)
		return from, from.AddDate(0, 0, days)
	default:
		from := startOfDay(ref)
		return from, from.AddDate(0, 0, 1)
	}
}

var weekdayLabels = [...]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

func dayColumn(d time.Time) Column {
	return Column{
		Key:   d.Format(dateKey),
		Label: fmt.Sprintf("%s %02d/%02d", weekdayLabels[d.Weekday()], d.Day(), int(d.Month())),
		Date:  d,
	}
}

// Resolve monta as colunas ordenadas da visão. No modo por profissional a
// chave é o id do profissional; nos demais, a data do dia.
func Resolve(view ViewMode, ref time.Time, resources []Resource) []Column {
	day := startOfDay(ref)

	switch view {
	case ViewProfessional:
		cols := make([]Column, 0, len(resources))
		for _, r := range resources {
			cols = append(cols, Column{
				Key:            strconv.FormatUint(uint64(r.ID), 10),
				Label:          r.Name,
				Date:           day,
				ProfessionalID: r.ID,
				AvatarURL:      r.AvatarURL,
			})
		}
		return cols

	case ViewWeek:
		start := StartOfWeek(ref)
		cols := make([]Column, 0, 7)
		for i := 0; i < 7; i++ {
			cols = append(cols, dayColumn(start.AddDate(0, 0, i)))
		}
		return cols

	case ViewMonth:
		start, days := monthCells(ref)
		cols := make([]Column, 0, days)
		for i := 0; i < days; i++ {
			cols = append(cols, dayColumn(start.AddDate(0, 0, i)))
		}
		return cols
	}

	return []Column{dayColumn(day)}
}

// Assign distribui os itens nas colunas. Cada item vai para no máximo uma
// coluna; os que não casam com nenhuma são descartados e contados.
func Assign(view ViewMode, cols []Column, items []Item) (map[string][]Item, int) {
	out := make(map[string][]Item, len(cols))
	dropped := 0

	if view == ViewProfessional {
		byID := make(map[uint]Column, len(cols))
		byName := make(map[string]Column, len(cols))
		for _, c := range cols {
			byID[c.ProfessionalID] = c
			byName[strings.ToLower(strings.TrimSpace(c.Label))] = c
		}

		for _, it := range items {
			col, ok := byID[it.ProfessionalID]
			if it.ProfessionalID == 0 || !ok {
				// compatibilidade com registros sem id do profissional
				col, ok = byName[strings.ToLower(strings.TrimSpace(it.ProfessionalName))]
			}
			if !ok || !sameDay(it.Start, col.Date) {
				dropped++
				continue
			}
			out[col.Key] = append(out[col.Key], it)
		}
		return out, dropped
	}

	keys := make(map[string]struct{}, len(cols))
	var loc *time.Location
	for _, c := range cols {
		keys[c.Key] = struct{}{}
		loc = c.Date.Location()
	}

	for _, it := range items {
		start := it.Start
		if loc != nil {
			start = start.In(loc)
		}
		key := start.Format(dateKey)
		if _, ok := keys[key]; !ok {
			dropped++
			continue
		}
		out[key] = append(out[key], it)
	}
	return out, dropped
}

func sameDay(t, day time.Time) bool {
	t = t.In(day.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
