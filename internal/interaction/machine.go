// Package interaction models the grid's popovers as a single-focus state
// machine: at most one menu, editor or detail popover is open at a time.
package interaction

import (
	"errors"
	"sync"
	"time"

	domain "github.com/BruksfildServices01/studio-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/studio-scheduler/internal/grid"
)

type Mode string

const (
	ModeIdle        Mode = "idle"
	ModeContextMenu Mode = "context_menu"
	ModeEditor      Mode = "editor"
	ModeDetail      Mode = "detail"
)

type EditorKind string

const (
	EditorAppointment EditorKind = "appointment"
	EditorBlock       EditorKind = "block"
	EditorSale        EditorKind = "sale"
)

var ErrInvalidTransition = errors.New("interaction: invalid transition")

// State é a foto imutável do que está aberto.
type State struct {
	Mode Mode `json:"mode"`

	// menu de contexto e editor
	Time           time.Time  `json:"time,omitempty"`
	ProfessionalID uint       `json:"professional_id,omitempty"`
	Editor         EditorKind `json:"editor,omitempty"`

	// detalhe e edição de existente
	AppointmentID int64 `json:"appointment_id,omitempty"`

	Placement *grid.Placement `json:"placement,omitempty"`
}

func (s State) IsIdle() bool { return s.Mode == ModeIdle }

// Transition é um passo ordenado. Abrir algo com outra coisa aberta gera
// sempre dois passos: fechar a atual e abrir a nova.
type Transition struct {
	From State
	To   State
}

// Sizes são as dimensões dos popovers usadas no posicionamento.
type Sizes struct {
	Viewport grid.Size
	Menu     grid.Size
	Detail   grid.Size
	Margin   float64
}

func DefaultSizes() Sizes {
	return Sizes{
		Viewport: grid.Size{W: 1280, H: 800},
		Menu:     grid.Size{W: 200, H: 140},
		Detail:   grid.Size{W: 320, H: 260},
		Margin:   8,
	}
}

type Machine struct {
	mu       sync.Mutex
	state    State
	sizes    Sizes
	onChange func(Transition)
}

func NewMachine(sizes Sizes, onChange func(Transition)) *Machine {
	return &Machine{
		state:    State{Mode: ModeIdle},
		sizes:    sizes,
		onChange: onChange,
	}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// move aplica a sequência "fecha a atual, abre a próxima" numa só chamada.
func (m *Machine) move(next State) []Transition {
	var steps []Transition

	if !m.state.IsIdle() && !next.IsIdle() {
		idle := State{Mode: ModeIdle}
		steps = append(steps, Transition{From: m.state, To: idle})
		m.state = idle
	}
	steps = append(steps, Transition{From: m.state, To: next})
	m.state = next

	if m.onChange != nil {
		for _, s := range steps {
			m.onChange(s)
		}
	}
	return steps
}

func (m *Machine) place(anchor grid.Rect, pop grid.Size) *grid.Placement {
	p := grid.Place(anchor, pop, m.sizes.Viewport, m.sizes.Margin)
	return &p
}

// ClickSlot abre o menu de contexto de um horário vazio.
func (m *Machine) ClickSlot(at time.Time, professionalID uint, anchor grid.Rect) []Transition {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.move(State{
		Mode:           ModeContextMenu,
		Time:           at,
		ProfessionalID: professionalID,
		Placement:      m.place(anchor, m.sizes.Menu),
	})
}

// Choose abre o editor escolhido no menu, já com horário e profissional.
func (m *Machine) Choose(kind EditorKind) ([]Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Mode != ModeContextMenu {
		return nil, ErrInvalidTransition
	}
	switch kind {
	case EditorAppointment, EditorBlock, EditorSale:
	default:
		return nil, ErrInvalidTransition
	}

	next := State{
		Mode:           ModeEditor,
		Editor:         kind,
		Time:           m.state.Time,
		ProfessionalID: m.state.ProfessionalID,
	}
	// menu → editor é uma troca de foco, não dois popovers
	steps := []Transition{{From: m.state, To: next}}
	m.state = next
	if m.onChange != nil {
		m.onChange(steps[0])
	}
	return steps, nil
}

// ClickAppointment abre o detalhe de um agendamento existente.
func (m *Machine) ClickAppointment(id int64, anchor grid.Rect) []Transition {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.move(State{
		Mode:          ModeDetail,
		AppointmentID: id,
		Placement:     m.place(anchor, m.sizes.Detail),
	})
}

// Edit troca o detalhe pelo editor do mesmo agendamento.
func (m *Machine) Edit() ([]Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Mode != ModeDetail {
		return nil, ErrInvalidTransition
	}
	next := State{Mode: ModeEditor, Editor: EditorAppointment, AppointmentID: m.state.AppointmentID}
	steps := []Transition{{From: m.state, To: next}}
	m.state = next
	if m.onChange != nil {
		m.onChange(steps[0])
	}
	return steps, nil
}

// Intent é a ação pedida a partir do detalhe, executada por quem chamou.
type Intent struct {
	AppointmentID int64
	Delete        bool
	Status        domain.Status
}

// Delete e ChangeStatus fecham o detalhe e devolvem o que deve ser feito.
func (m *Machine) Delete() (Intent, error) {
	return m.fromDetail(func(id int64) Intent { return Intent{AppointmentID: id, Delete: true} })
}

func (m *Machine) ChangeStatus(status domain.Status) (Intent, error) {
	if _, err := domain.ParseStatus(string(status)); err != nil {
		return Intent{}, err
	}
	return m.fromDetail(func(id int64) Intent { return Intent{AppointmentID: id, Status: status} })
}

func (m *Machine) fromDetail(build func(int64) Intent) (Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Mode != ModeDetail {
		return Intent{}, ErrInvalidTransition
	}
	in := build(m.state.AppointmentID)
	m.move(State{Mode: ModeIdle})
	return in, nil
}

// Save fecha o editor e devolve o estado que ele tinha para o envio.
func (m *Machine) Save() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Mode != ModeEditor {
		return State{}, ErrInvalidTransition
	}
	editing := m.state
	m.move(State{Mode: ModeIdle})
	return editing, nil
}

// Close volta para idle de qualquer estado (cancelar, esc, clique fora).
func (m *Machine) Close() []Transition {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.IsIdle() {
		return nil
	}
	return m.move(State{Mode: ModeIdle})
}
