package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/BruksfildServices01/studio-scheduler/internal/agenda"
	"github.com/BruksfildServices01/studio-scheduler/internal/grid"
)

const cellWidth = 18

// tolerância em pixels para arredondamento de ponto flutuante
const pxEpsilon = 0.5

// board é tudo que a renderização precisa, já calculado pela grade.
type board struct {
	View     grid.ViewMode
	Geometry grid.Geometry
	Columns  []grid.Column
	Assigned map[string][]grid.Item
	ByID     map[int64]agenda.Appointment
	Dropped  int
}

func newBoard(view grid.ViewMode, g grid.Geometry, cols []grid.Column, items []agenda.Appointment) board {
	b := board{
		View:     view,
		Geometry: g,
		Columns:  cols,
		ByID:     make(map[int64]agenda.Appointment, len(items)),
	}
	gridItems := make([]grid.Item, 0, len(items))
	for _, a := range items {
		b.ByID[a.ID] = a
		gridItems = append(gridItems, agenda.GridItem(a))
	}
	b.Assigned, b.Dropped = grid.Assign(view, cols, gridItems)
	return b
}

func (b board) render(w io.Writer) {
	if b.View == grid.ViewMonth {
		b.renderMonth(w)
	} else {
		b.renderColumns(w)
	}
	if b.Dropped > 0 {
		fmt.Fprintf(w, "\n%d agendamento(s) fora das colunas visíveis\n", b.Dropped)
	}
}

// label resume o agendamento no espaço de uma célula.
func (b board) label(id int64) string {
	a, ok := b.ByID[id]
	if !ok {
		return fmt.Sprintf("#%d", id)
	}
	name := a.ClientName
	if name == "" {
		name = a.ServiceName
	}
	if name == "" {
		name = a.Status
	}
	prefix := fmt.Sprintf("#%d ", a.ID)
	if agenda.IsTemp(a.ID) {
		prefix = "* "
	}
	return prefix + name
}

func fit(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		if width <= 1 {
			return string(r[:width])
		}
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(r))
}

// renderColumns desenha uma linha por slot da janela do dia.
func (b board) renderColumns(w io.Writer) {
	g := b.Geometry
	slot := g.SnapMinutes
	if slot <= 0 {
		slot = 15
	}
	rowPx := float64(slot) * g.PxPerMinute

	boxes := make([][]grid.Box, len(b.Columns))
	for i, col := range b.Columns {
		boxes[i] = g.Layout(b.Assigned[col.Key])
	}

	fmt.Fprint(w, "      ")
	for _, col := range b.Columns {
		fmt.Fprint(w, "│", fit(col.Label, cellWidth))
	}
	fmt.Fprintln(w)

	rows := int(g.WindowMinutes()) / slot
	for r := 0; r < rows; r++ {
		top := float64(r) * rowPx
		bottom := top + rowPx
		minutes := g.DayStartHour*60 + r*slot
		fmt.Fprintf(w, "%02d:%02d ", minutes/60, minutes%60)

		for i := range b.Columns {
			fmt.Fprint(w, "│", fit(b.cell(boxes[i], top, bottom), cellWidth))
		}
		fmt.Fprintln(w)
	}
}

// cell mostra o item que começa na linha, ou a continuação dele.
func (b board) cell(boxes []grid.Box, top, bottom float64) string {
	var starting, covering []grid.Box
	for _, bx := range boxes {
		if bx.Top < bottom-pxEpsilon && bx.Top+bx.Height > top+pxEpsilon {
			covering = append(covering, bx)
			if bx.Top >= top-pxEpsilon {
				starting = append(starting, bx)
			}
		}
	}
	if len(covering) == 0 {
		return ""
	}
	if len(starting) == 0 {
		return "┆"
	}

	sort.Slice(starting, func(i, j int) bool { return starting[i].Lane < starting[j].Lane })
	text := b.label(starting[0].Item.ID)
	if extra := len(covering) - 1; extra > 0 {
		text = fmt.Sprintf("%s +%d", text, extra)
	}
	return text
}

// renderMonth mostra as células do mês em semanas, com o total do dia.
func (b board) renderMonth(w io.Writer) {
	for i, col := range b.Columns {
		n := len(b.Assigned[col.Key])
		text := fmt.Sprintf("%02d", col.Date.Day())
		if n > 0 {
			text = fmt.Sprintf("%s (%d)", text, n)
		}
		fmt.Fprint(w, fit(text, 10))
		if (i+1)%7 == 0 {
			fmt.Fprintln(w)
		}
	}
	if len(b.Columns)%7 != 0 {
		fmt.Fprintln(w)
	}
}

// renderList é a saída de status/delete/new: uma linha por agendamento.
func renderList(w io.Writer, items []agenda.Appointment, loc *time.Location) {
	for _, a := range items {
		fmt.Fprintf(w, "%-6d %s-%s  %-12s %-20s %s\n",
			a.ID,
			a.StartTime.In(loc).Format("02/01 15:04"),
			a.EndTime.In(loc).Format("15:04"),
			a.Status,
			a.ProfessionalName,
			a.ClientName,
		)
	}
}
